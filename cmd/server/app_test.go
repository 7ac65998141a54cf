package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/agent-api/internal/config"
	"github.com/phrazzld/agent-api/internal/history"
	"github.com/phrazzld/agent-api/internal/platform/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "debug", ShutdownTimeout: time.Second},
		LLM:    config.LLMConfig{ModelName: "gemini-2.0-flash", RetryDelaySeconds: 1},
		Calendar: config.CalendarConfig{
			BaseURL:        "https://www.googleapis.com/calendar/v3/",
			CalendarID:     "primary",
			UpcomingWindow: time.Hour,
			Timeout:        time.Second,
		},
		Mail: config.MailConfig{
			BaseURL:           "https://api.sendgrid.com",
			FromAddress:       "agent@example.com",
			FallbackRecipient: "fallback@example.com",
			Timeout:           time.Second,
		},
		Scheduler: config.SchedulerConfig{
			DigestRecipient:      "digest@example.com",
			DigestHour:           9,
			MeetingCheckInterval: time.Minute,
			ReminderWindow:       15 * time.Minute,
			ReminderDedup:        true,
			DedupCacheSize:       16,
		},
	}
}

func newTestApp(t *testing.T, cfg *config.Config) (*application, http.Handler) {
	t.Helper()

	_, l := logger.NewTestLogger()
	app, err := newApplication(context.Background(), cfg, l)
	require.NoError(t, err)
	t.Cleanup(func() { app.cleanup(context.Background()) })

	router, err := app.setupRouter()
	require.NoError(t, err)
	return app, router
}

func TestConfigIsValid(t *testing.T) {
	require.NoError(t, config.Validate(testConfig()))
}

func TestNewApplication_InMemoryMocks(t *testing.T) {
	app, _ := newTestApp(t, testConfig())

	assert.IsType(t, &history.MemoryStore{}, app.history)
	assert.True(t, app.calendar.Mock())
	assert.True(t, app.mailer.Mock())
	assert.True(t, app.interpreter.Offline())
	assert.Nil(t, app.scheduler)
	assert.Nil(t, app.provider)
}

func TestRouter_SubmitAndList(t *testing.T) {
	_, router := newTestApp(t, testConfig())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/emails",
		strings.NewReader(`{"to":"bob@example.com","subject":"Hi","body":"There"}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Tasks []struct {
			Type   string `json:"type"`
			Status string `json:"status"`
		} `json:"tasks"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Tasks, 1)
	assert.Equal(t, "email", body.Tasks[0].Type)
	assert.Equal(t, "completed", body.Tasks[0].Status)
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Enabled = true
	_, router := newTestApp(t, cfg)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/tasks",
		strings.NewReader(`{"description":"tidy desk","priority":2,"type":"other"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "agent_tasks_dispatched")
}

func TestRouter_NoMetricsWhenDisabled(t *testing.T) {
	_, router := newTestApp(t, testConfig())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApplication_SchedulerLifecycle(t *testing.T) {
	cfg := testConfig()
	cfg.Scheduler.Enabled = true
	app, _ := newTestApp(t, cfg)
	require.NotNil(t, app.scheduler)

	require.NoError(t, app.agent.StartScheduler(context.Background()))
	app.agent.StopScheduler()
	app.agent.StopScheduler()
}
