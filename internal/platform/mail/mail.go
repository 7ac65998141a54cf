// Package mail sends email through the SendGrid v3 mail/send endpoint.
// Without an API key it runs as a logging mock that accepts every message.
package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sethvargo/go-retry"

	"github.com/phrazzld/agent-api/internal/config"
)

const sendPath = "/v3/mail/send"

// ErrSendFailed wraps every failed delivery.
var ErrSendFailed = errors.New("failed to send email")

// Client is a mail collaborator.
type Client struct {
	rest       *rest.Client
	baseURL    string
	apiKey     string
	from       string
	maxRetries uint64
	retryBase  time.Duration
	logger     *slog.Logger
}

// NewClient creates a mail Client. An empty cfg.SendGridAPIKey yields a mock.
func NewClient(logger *slog.Logger, cfg config.MailConfig) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	c := &Client{
		rest:       &rest.Client{HTTPClient: &http.Client{Timeout: timeout}},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.SendGridAPIKey,
		from:       cfg.FromAddress,
		maxRetries: uint64(maxRetries),
		retryBase:  500 * time.Millisecond,
		logger:     logger.With("component", "mail"),
	}

	if c.Mock() {
		c.logger.Warn("SendGrid API key not configured, using mock implementation")
	}
	return c, nil
}

// Mock reports whether the client makes no API calls.
func (c *Client) Mock() bool {
	return c.apiKey == ""
}

// SendEmail delivers a plain-text message. Server errors, rate limiting and
// transport failures are retried with exponential backoff.
func (c *Client) SendEmail(ctx context.Context, to, subject, body string) error {
	log := c.logger.With("to", to, "subject", subject)

	if c.Mock() {
		log.InfoContext(ctx, "mock mailer accepted email", "body_length", len(body))
		return nil
	}

	message := sgmail.NewV3MailInit(
		sgmail.NewEmail("", c.from),
		subject,
		sgmail.NewEmail("", to),
		sgmail.NewContent("text/plain", body),
	)
	request := sendgrid.GetRequest(c.apiKey, sendPath, c.baseURL)
	request.Method = rest.Post
	request.Body = sgmail.GetRequestBody(message)

	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.retryBase))
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		return c.send(ctx, request)
	})
	if err != nil {
		log.ErrorContext(ctx, "failed to send email", "error", err, "attempts", attempt)
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	log.InfoContext(ctx, "email sent", "attempts", attempt)
	return nil
}

// send performs one request. Retryable failures are marked for go-retry.
func (c *Client) send(ctx context.Context, request rest.Request) error {
	resp, err := c.rest.SendWithContext(ctx, request)
	if err != nil {
		return retry.RetryableError(err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	statusErr := fmt.Errorf("sendgrid returned %d: %s", resp.StatusCode, truncate(strings.TrimSpace(resp.Body), 1024))
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return retry.RetryableError(statusErr)
	}
	return statusErr
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
