package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/frag7/intake-api/config"
	"github.com/frag7/intake-api/config/router"
	"github.com/frag7/intake-api/domain/monitoring"
	"github.com/frag7/intake-api/domain/signal"
	"github.com/frag7/intake-api/domain/status"
	"github.com/frag7/intake-api/internal/log"
	"github.com/frag7/intake-api/internal/models"
	"github.com/frag7/intake-api/pkg/discord"
	"github.com/frag7/intake-api/pkg/turnstile"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const botToken = "bot-token"

// fakeVerifier passes every challenge except the well-known bot token.
type fakeVerifier struct{}

func (fakeVerifier) Verify(ctx context.Context, token, remoteIP string) error {
	if token == botToken {
		return turnstile.ErrChallengeFailed
	}
	return nil
}

// webhookRecorder captures everything posted to the fake Discord endpoint.
type webhookRecorder struct {
	mu       sync.Mutex
	messages []discord.Message
}

func (wr *webhookRecorder) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var msg discord.Message
		_ = json.Unmarshal(body, &msg)

		wr.mu.Lock()
		wr.messages = append(wr.messages, msg)
		wr.mu.Unlock()

		w.WriteHeader(http.StatusNoContent)
	}
}

func (wr *webhookRecorder) last() *discord.Message {
	wr.mu.Lock()
	defer wr.mu.Unlock()
	if len(wr.messages) == 0 {
		return nil
	}
	msg := wr.messages[len(wr.messages)-1]
	return &msg
}

func (wr *webhookRecorder) reset() {
	wr.mu.Lock()
	defer wr.mu.Unlock()
	wr.messages = nil
}

type SignalAPITestSuite struct {
	suite.Suite
	db            *gorm.DB
	server        *httptest.Server
	webhookServer *httptest.Server
	recorder      *webhookRecorder
	baseURL       string
	logger        *log.Logger
	appConfig     *config.ApplicationConfig
}

func (suite *SignalAPITestSuite) SetupSuite() {
	var err error
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	err = suite.db.AutoMigrate(&models.QueueEntry{})
	suite.Require().NoError(err)

	suite.logger = log.NewLoggerWithJSONOutput()

	suite.recorder = &webhookRecorder{}
	suite.webhookServer = httptest.NewServer(suite.recorder.handler())

	suite.appConfig = &config.ApplicationConfig{
		DB:     suite.db,
		Logger: suite.logger,
	}

	suite.appConfig.RouterService = router.CreateRouterService(suite.logger, nil, &router.RouterConfig{
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    30 * time.Second,
	})

	notifier := signal.NewDiscordNotifier(suite.logger, discord.NewClient(suite.webhookServer.URL))

	rs := suite.appConfig.RouterService
	rs.MountController(monitoring.NewMonitoringController(suite.db, suite.logger, nil))
	rs.MountController(signal.NewSignalController(suite.db, suite.logger, fakeVerifier{}, notifier))
	rs.MountController(status.NewStatusController(suite.db, suite.logger))

	suite.server = httptest.NewServer(rs.GetEngine())
	suite.baseURL = suite.server.URL
}

func (suite *SignalAPITestSuite) TearDownSuite() {
	if suite.server != nil {
		suite.server.Close()
	}
	if suite.webhookServer != nil {
		suite.webhookServer.Close()
	}
	if suite.db != nil {
		sqlDB, _ := suite.db.DB()
		sqlDB.Close()
	}
}

func (suite *SignalAPITestSuite) SetupTest() {
	suite.db.Exec("DELETE FROM queue_entries")
	suite.recorder.reset()
}

func (suite *SignalAPITestSuite) submitSignal(name, email, region, skillset string) *http.Response {
	requestBody := map[string]string{
		"yourName":              name,
		"yourEmail":             email,
		"location":              region,
		"skillset":              skillset,
		"cf-turnstile-response": "human-token",
	}

	jsonBody, _ := json.Marshal(requestBody)

	resp, err := http.Post(suite.baseURL+"/v1/signals", "application/json", bytes.NewBuffer(jsonBody))
	suite.Require().NoError(err)
	return resp
}

func (suite *SignalAPITestSuite) regionStatus() map[string]map[string]float64 {
	resp, err := http.Get(suite.baseURL + "/v1/status")
	suite.Require().NoError(err)
	defer resp.Body.Close()

	suite.Equal(http.StatusOK, resp.StatusCode)

	var response struct {
		Data map[string]map[string]float64 `json:"data"`
	}
	suite.Require().NoError(json.NewDecoder(resp.Body).Decode(&response))
	return response.Data
}

func (suite *SignalAPITestSuite) TestHealthCheck() {
	resp, err := http.Get(suite.baseURL + "/health")
	suite.Require().NoError(err)
	defer resp.Body.Close()

	suite.Equal(http.StatusOK, resp.StatusCode)

	var response map[string]interface{}
	suite.Require().NoError(json.NewDecoder(resp.Body).Decode(&response))

	suite.Equal(float64(200), response["code"])
	suite.Contains(response["message"], "health check completed")
}

func (suite *SignalAPITestSuite) TestSubmitSignalAcknowledged() {
	resp := suite.submitSignal("Ada", "ada@example.com", "east", "backend-go")
	defer resp.Body.Close()

	suite.Equal(http.StatusCreated, resp.StatusCode)

	var response map[string]interface{}
	suite.Require().NoError(json.NewDecoder(resp.Body).Decode(&response))

	suite.Equal(float64(201), response["code"])
	data := response["data"].(map[string]interface{})
	suite.Equal(true, data["received"])

	// One announcement, no pod embed.
	msg := suite.recorder.last()
	suite.Require().NotNil(msg)
	suite.Len(msg.Embeds, 1)
}

func (suite *SignalAPITestSuite) TestSubmitSignalRejectsBots() {
	requestBody := map[string]string{
		"yourName":              "R. Obot",
		"yourEmail":             "bot@example.com",
		"location":              "east",
		"skillset":              "backend-go",
		"cf-turnstile-response": botToken,
	}
	jsonBody, _ := json.Marshal(requestBody)

	resp, err := http.Post(suite.baseURL+"/v1/signals", "application/json", bytes.NewBuffer(jsonBody))
	suite.Require().NoError(err)
	defer resp.Body.Close()

	suite.Equal(http.StatusForbidden, resp.StatusCode)

	// Rejected submissions never reach the store.
	var count int64
	suite.db.Model(&models.QueueEntry{}).Count(&count)
	suite.Equal(int64(0), count)
}

func (suite *SignalAPITestSuite) TestSubmitSignalValidationError() {
	requestBody := map[string]string{
		"yourName":  "Ada",
		"yourEmail": "not-an-email",
		"location":  "east",
	}
	jsonBody, _ := json.Marshal(requestBody)

	resp, err := http.Post(suite.baseURL+"/v1/signals", "application/json", bytes.NewBuffer(jsonBody))
	suite.Require().NoError(err)
	defer resp.Body.Close()

	suite.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (suite *SignalAPITestSuite) TestPodFormsOnFourthCompatibleSignal() {
	// 2 TECH + 1 BIZ: composition unmet, everyone waits.
	for i, skillset := range []string{"backend-go", "frontend-ts", "biz-ops"} {
		resp := suite.submitSignal(fmt.Sprintf("member-%d", i), fmt.Sprintf("m%d@example.com", i), "east", skillset)
		suite.Equal(http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	counts := suite.regionStatus()
	suite.Require().Contains(counts, "east")
	suite.Equal(float64(2), counts["east"]["tech"])
	suite.Equal(float64(1), counts["east"]["biz"])

	// The third TECH completes the pod.
	resp := suite.submitSignal("closer", "closer@example.com", "east", "systems-rust")
	suite.Equal(http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// The waiting pool drained; east disappears from the aggregate.
	counts = suite.regionStatus()
	suite.NotContains(counts, "east")

	// All four entries share one pod.
	var assigned []models.QueueEntry
	suite.Require().NoError(suite.db.Where("status = ?", models.StatusAssigned).Find(&assigned).Error)
	suite.Len(assigned, models.PodSize)

	podID := assigned[0].PodID
	suite.Require().NotNil(podID)
	for _, entry := range assigned {
		suite.Require().NotNil(entry.PodID)
		suite.Equal(*podID, *entry.PodID)
	}

	// The final announcement carries the pod descriptor with all 4 members.
	msg := suite.recorder.last()
	suite.Require().NotNil(msg)
	suite.Require().Len(msg.Embeds, 2)
	suite.Contains(msg.Embeds[1].Title, "POD FORMED")
	suite.Len(msg.Embeds[1].Fields, models.PodSize)
}

func (suite *SignalAPITestSuite) TestRegionsDoNotMix() {
	for i, skillset := range []string{"backend-go", "frontend-ts", "systems-rust"} {
		resp := suite.submitSignal(fmt.Sprintf("east-%d", i), fmt.Sprintf("e%d@example.com", i), "east", skillset)
		suite.Equal(http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	// The BIZ candidate lands in another region: no pod anywhere.
	resp := suite.submitSignal("west-biz", "w@example.com", "west", "biz-ops")
	suite.Equal(http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	counts := suite.regionStatus()
	suite.Equal(float64(3), counts["east"]["tech"])
	suite.Equal(float64(1), counts["west"]["biz"])

	var assigned int64
	suite.db.Model(&models.QueueEntry{}).Where("status = ?", models.StatusAssigned).Count(&assigned)
	suite.Equal(int64(0), assigned)
}

func (suite *SignalAPITestSuite) TestStorageFailureStillAcknowledges() {
	// Simulate a dead store.
	suite.Require().NoError(suite.db.Migrator().DropTable(&models.QueueEntry{}))
	defer func() {
		suite.Require().NoError(suite.db.AutoMigrate(&models.QueueEntry{}))
	}()

	resp := suite.submitSignal("Ada", "ada@example.com", "east", "backend-go")
	defer resp.Body.Close()

	// Fail-open: the submitter still sees success.
	suite.Equal(http.StatusCreated, resp.StatusCode)

	// But the operator channel carries the failure flag.
	msg := suite.recorder.last()
	suite.Require().NotNil(msg)
	suite.Require().Len(msg.Embeds, 1)

	found := false
	for _, field := range msg.Embeds[0].Fields {
		if field.Name == "⚠️ Database" {
			found = true
		}
	}
	suite.True(found, "expected the database failure flag in the notification")
}

func TestSignalAPITestSuite(t *testing.T) {
	suite.Run(t, new(SignalAPITestSuite))
}
