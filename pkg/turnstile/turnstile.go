package turnstile

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultVerifyURL is Cloudflare's Turnstile siteverify endpoint.
const DefaultVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

// ErrMissingSecret indicates the server-side secret key was never configured.
var ErrMissingSecret = fmt.Errorf("turnstile: secret key is not configured")

// ErrChallengeFailed indicates the challenge provider rejected the token.
var ErrChallengeFailed = fmt.Errorf("turnstile: challenge verification failed")

// Verifier checks that a client-supplied challenge token belongs to a human.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

type Client struct {
	secret     string
	verifyURL  string
	httpClient *http.Client
}

type Option func(*Client)

// WithVerifyURL overrides the siteverify endpoint, mainly for tests.
func WithVerifyURL(u string) Option {
	return func(c *Client) { c.verifyURL = u }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(secret string, opts ...Option) *Client {
	c := &Client{
		secret:     strings.TrimSpace(secret),
		verifyURL:  DefaultVerifyURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type verifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify posts the token and caller IP to the siteverify endpoint. A nil error
// means the submitter passed the challenge.
func (c *Client) Verify(ctx context.Context, token, remoteIP string) error {
	if c.secret == "" {
		return ErrMissingSecret
	}

	form := url.Values{}
	form.Set("secret", c.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("turnstile: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("turnstile: verify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("turnstile: verify endpoint returned status %d", resp.StatusCode)
	}

	var outcome verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&outcome); err != nil {
		return fmt.Errorf("turnstile: decode verify response: %w", err)
	}

	if !outcome.Success {
		return fmt.Errorf("%w: %s", ErrChallengeFailed, strings.Join(outcome.ErrorCodes, ", "))
	}

	return nil
}
