package mail

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/agent-api/internal/config"
)

// sentMail is the subset of the mail/send payload the tests inspect.
type sentMail struct {
	Personalizations []struct {
		To []struct {
			Email string `json:"email"`
		} `json:"to"`
	} `json:"personalizations"`
	From struct {
		Email string `json:"email"`
	} `json:"from"`
	Subject string `json:"subject"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
}

func newTestClient(t *testing.T, handler http.Handler, maxRetries int) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c, err := NewClient(logger, config.MailConfig{
		SendGridAPIKey: "sg-key",
		BaseURL:        srv.URL + "/",
		FromAddress:    "agent@example.com",
		MaxRetries:     maxRetries,
		Timeout:        5 * time.Second,
	})
	require.NoError(t, err)
	c.retryBase = time.Millisecond
	return c
}

func TestMockClient(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c, err := NewClient(logger, config.MailConfig{})
	require.NoError(t, err)

	assert.True(t, c.Mock())
	assert.NoError(t, c.SendEmail(context.Background(), "a@x.com", "Hi", "Body"))
}

func TestSendEmail(t *testing.T) {
	t.Parallel()

	var got sentMail
	var auth, path, contentType, agent string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		contentType = r.Header.Get("Content-Type")
		agent = r.Header.Get("User-Agent")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	})
	c := newTestClient(t, handler, 0)

	require.NoError(t, c.SendEmail(context.Background(), "bob@x.com", "Status", "All green"))

	assert.Equal(t, "Bearer sg-key", auth)
	assert.Equal(t, "/v3/mail/send", path)
	assert.Equal(t, "application/json", contentType)
	assert.Contains(t, agent, "sendgrid/")
	require.Len(t, got.Personalizations, 1)
	require.Len(t, got.Personalizations[0].To, 1)
	assert.Equal(t, "bob@x.com", got.Personalizations[0].To[0].Email)
	assert.Equal(t, "agent@example.com", got.From.Email)
	assert.Equal(t, "Status", got.Subject)
	require.Len(t, got.Content, 1)
	assert.Equal(t, "text/plain", got.Content[0].Type)
	assert.Equal(t, "All green", got.Content[0].Value)
}

func TestSendEmail_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	})
	c := newTestClient(t, handler, 3)

	require.NoError(t, c.SendEmail(context.Background(), "a@x.com", "Hi", "Body"))
	assert.Equal(t, int32(3), calls.Load())
}

func TestSendEmail_GivesUp(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})
	c := newTestClient(t, handler, 2)

	err := c.SendEmail(context.Background(), "a@x.com", "Hi", "Body")

	assert.ErrorIs(t, err, ErrSendFailed)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSendEmail_ClientErrorNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"errors":[{"message":"bad to"}]}`)
	})
	c := newTestClient(t, handler, 3)

	err := c.SendEmail(context.Background(), "not-an-email", "Hi", "Body")

	require.ErrorIs(t, err, ErrSendFailed)
	assert.Contains(t, err.Error(), "400")
	assert.Equal(t, int32(1), calls.Load())
}
