// Package calendar schedules meetings and lists upcoming events through the
// Google Calendar v3 API. Without an API token it runs as a logging mock that
// accepts every meeting and reports no events.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/phrazzld/agent-api/internal/config"
	"github.com/phrazzld/agent-api/internal/domain"
)

const maxUpcomingEvents = 50

// ErrScheduleFailed wraps every failed meeting insert.
var ErrScheduleFailed = errors.New("failed to schedule meeting")

// ErrListFailed wraps every failed event listing.
var ErrListFailed = errors.New("failed to list upcoming events")

// Client is a calendar collaborator.
type Client struct {
	service    *gcal.Service
	calendarID string
	window     time.Duration
	clock      clockwork.Clock
	logger     *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithClock sets the clock used to bound the upcoming-events query.
func WithClock(c clockwork.Clock) Option {
	return func(cl *Client) {
		cl.clock = c
	}
}

// NewClient creates a calendar Client. An empty cfg.APIKey yields a mock.
func NewClient(ctx context.Context, logger *slog.Logger, cfg config.CalendarConfig, opts ...Option) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	c := &Client{
		calendarID: cfg.CalendarID,
		window:     cfg.UpcomingWindow,
		clock:      clockwork.NewRealClock(),
		logger:     logger.With("component", "calendar"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.calendarID == "" {
		c.calendarID = "primary"
	}
	if c.window <= 0 {
		c.window = time.Hour
	}

	if cfg.APIKey == "" {
		c.logger.WarnContext(ctx, "Google Calendar API key not configured, using mock implementation")
		return c, nil
	}

	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cfg.APIKey,
		TokenType:   "Bearer",
	}))
	if cfg.Timeout > 0 {
		httpClient.Timeout = cfg.Timeout
	}

	serviceOpts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if cfg.BaseURL != "" {
		serviceOpts = append(serviceOpts, option.WithEndpoint(ensureTrailingSlash(cfg.BaseURL)))
	}

	service, err := gcal.NewService(ctx, serviceOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	c.service = service

	return c, nil
}

// Mock reports whether the client makes no API calls.
func (c *Client) Mock() bool {
	return c.service == nil
}

// ScheduleMeeting inserts an event with the attendees invited.
func (c *Client) ScheduleMeeting(
	ctx context.Context,
	attendees []string,
	start time.Time,
	duration time.Duration,
	title string,
) error {
	log := c.logger.With(
		"title", title,
		"attendees", strings.Join(attendees, ","),
		"start", start,
		"duration", duration)

	if c.Mock() {
		log.InfoContext(ctx, "mock calendar accepted meeting")
		return nil
	}

	event := &gcal.Event{
		Summary: title,
		Start: &gcal.EventDateTime{
			DateTime: start.UTC().Format(time.RFC3339),
			TimeZone: "UTC",
		},
		End: &gcal.EventDateTime{
			DateTime: start.Add(duration).UTC().Format(time.RFC3339),
			TimeZone: "UTC",
		},
	}
	for _, email := range attendees {
		event.Attendees = append(event.Attendees, &gcal.EventAttendee{Email: email})
	}

	created, err := c.service.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		log.ErrorContext(ctx, "failed to schedule meeting", "error", err)
		return fmt.Errorf("%w: %v", ErrScheduleFailed, err)
	}

	log.InfoContext(ctx, "meeting scheduled", "event_id", created.Id)
	return nil
}

// UpcomingEvents lists timed events starting within the configured window.
// All-day events are skipped.
func (c *Client) UpcomingEvents(ctx context.Context) ([]domain.CalendarEvent, error) {
	if c.Mock() {
		c.logger.DebugContext(ctx, "mock calendar has no upcoming events")
		return []domain.CalendarEvent{}, nil
	}

	now := c.clock.Now()
	resp, err := c.service.Events.List(c.calendarID).
		TimeMin(now.UTC().Format(time.RFC3339)).
		TimeMax(now.Add(c.window).UTC().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(maxUpcomingEvents).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrListFailed, err)
	}

	events := make([]domain.CalendarEvent, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Start == nil || item.Start.DateTime == "" {
			continue
		}
		start, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			c.logger.WarnContext(ctx, "skipping event with unparseable start",
				"event_id", item.Id,
				"start", item.Start.DateTime)
			continue
		}
		events = append(events, domain.CalendarEvent{Title: item.Summary, StartTime: start.UTC()})
	}

	return events, nil
}

func ensureTrailingSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}
