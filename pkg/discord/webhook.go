package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/frag7/intake-api/pkg/circuitbreaker"
	"github.com/frag7/intake-api/pkg/retry"
)

// ErrMissingWebhookURL indicates the webhook target was never configured.
var ErrMissingWebhookURL = fmt.Errorf("discord: webhook URL is not configured")

// Embed field colors used by the intake announcements.
const (
	ColorNewCell = 0xeab308
	ColorJoin    = 0x3b82f6
)

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type Footer struct {
	Text string `json:"text"`
}

type Embed struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Color       int     `json:"color,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
	Footer      *Footer `json:"footer,omitempty"`
	Timestamp   string  `json:"timestamp,omitempty"`
}

type Message struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

// Client posts messages to a single Discord webhook. Outbound calls run behind
// a circuit breaker and a short exponential backoff so a flapping webhook
// cannot stall admission handling.
type Client struct {
	webhookURL string
	httpClient *http.Client
	breaker    circuitbreaker.CircuitBreaker
	retrier    retry.RetryPolicy
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(webhookURL string, opts ...Option) *Client {
	c := &Client{
		webhookURL: strings.TrimSpace(webhookURL),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		breaker:    circuitbreaker.NewCircuitBreaker(nil),
		retrier: retry.NewExponentialBackoff(&retry.Config{
			MaxAttempts: 2,
			BaseDelay:   200 * time.Millisecond,
			MaxDelay:    2 * time.Second,
			Multiplier:  2.0,
		}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether a webhook target exists. Callers should treat an
// unconfigured client as a deployment configuration error.
func (c *Client) Configured() bool {
	return c.webhookURL != ""
}

// Post delivers one message. Delivery is best-effort; callers decide whether a
// failure matters.
func (c *Client) Post(ctx context.Context, msg *Message) error {
	if !c.Configured() {
		return ErrMissingWebhookURL
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("discord: encode message: %w", err)
	}

	return c.breaker.Call(func() error {
		return c.retrier.Execute(func() error {
			return c.send(ctx, body)
		})
	})
}

func (c *Client) send(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("discord: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("discord: webhook request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("discord: webhook returned status %d: %s", resp.StatusCode, string(snippet))
	}

	return nil
}
