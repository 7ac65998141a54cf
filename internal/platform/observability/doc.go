// Package observability wires OpenTelemetry metrics for task dispatch and
// scheduler jobs, and exposes them to Prometheus through the OTel Prometheus
// exporter.
package observability
