package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "github.com/phrazzld/agent-api"

// Metrics holds the instruments recorded by the dispatcher and scheduler.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	tasksDispatched  metric.Int64Counter
	dispatchDuration metric.Float64Histogram
	jobRuns          metric.Int64Counter
	remindersSent    metric.Int64Counter
}

// NewMetrics creates the instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	tasksDispatched, err := meter.Int64Counter(
		"agent_tasks_dispatched",
		metric.WithDescription("Tasks dispatched, by type and final status"),
		metric.WithUnit("{task}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks_dispatched counter: %w", err)
	}

	dispatchDuration, err := meter.Float64Histogram(
		"agent_tasks_dispatch_duration",
		metric.WithDescription("Time spent dispatching a task in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatch_duration histogram: %w", err)
	}

	jobRuns, err := meter.Int64Counter(
		"agent_scheduler_job_runs",
		metric.WithDescription("Scheduler job executions, by job and outcome"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create job_runs counter: %w", err)
	}

	remindersSent, err := meter.Int64Counter(
		"agent_scheduler_reminders_sent",
		metric.WithDescription("Reminder emails sent by the scheduler"),
		metric.WithUnit("{email}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create reminders_sent counter: %w", err)
	}

	return &Metrics{
		tasksDispatched:  tasksDispatched,
		dispatchDuration: dispatchDuration,
		jobRuns:          jobRuns,
		remindersSent:    remindersSent,
	}, nil
}

// NewNoopMetrics returns Metrics backed by a no-op meter.
func NewNoopMetrics() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider().Meter(meterName))
	return m
}

// RecordDispatch records one finished dispatch.
func (m *Metrics) RecordDispatch(ctx context.Context, taskType, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("type", taskType),
		attribute.String("status", status),
	)
	m.tasksDispatched.Add(ctx, 1, attrs)
	m.dispatchDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordJobRun records one scheduler job execution. outcome is one of
// "ok", "error", "panic" or "skipped".
func (m *Metrics) RecordJobRun(ctx context.Context, job, outcome string) {
	if m == nil {
		return
	}
	m.jobRuns.Add(ctx, 1, metric.WithAttributes(
		attribute.String("job", job),
		attribute.String("outcome", outcome),
	))
}

// RecordReminder records a reminder email of the given kind.
func (m *Metrics) RecordReminder(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.remindersSent.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// Provider bundles the meter provider and the scrape handler.
type Provider struct {
	MeterProvider *sdkmetric.MeterProvider
	Handler       http.Handler
}

// Meter returns the application meter.
func (p *Provider) Meter() metric.Meter {
	return p.MeterProvider.Meter(meterName)
}

// Shutdown flushes and stops the meter provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.MeterProvider.Shutdown(ctx)
}

// NewPrometheusProvider creates a meter provider that exports to a dedicated
// Prometheus registry, and an HTTP handler serving that registry.
func NewPrometheusProvider() (*Provider, error) {
	registry := prometheus.NewRegistry()

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))

	return &Provider{
		MeterProvider: provider,
		Handler:       promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}, nil
}
