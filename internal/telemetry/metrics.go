package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics
type Metrics struct {
	RequestCounter      metric.Int64Counter
	RequestDuration     metric.Float64Histogram
	SessionsCreated     metric.Int64Counter
	EnhancementsApplied metric.Int64Counter
	CampaignsLaunched   metric.Int64Counter
	EntriesPublished    metric.Int64Counter
	AuditEventsLogged   metric.Int64Counter
}

// InitMetrics initializes all application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("social-campaign-platform")

	requestCounter, err := meter.Int64Counter(
		"http.requests.total",
		metric.WithDescription("Total HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	sessionsCreated, err := meter.Int64Counter(
		"wizard.sessions.created",
		metric.WithDescription("Total wizard sessions created"),
	)
	if err != nil {
		return nil, err
	}

	enhancementsApplied, err := meter.Int64Counter(
		"enhance.rules.applied",
		metric.WithDescription("Total enhancement rules applied to drafts"),
	)
	if err != nil {
		return nil, err
	}

	campaignsLaunched, err := meter.Int64Counter(
		"campaigns.launched",
		metric.WithDescription("Total campaigns launched"),
	)
	if err != nil {
		return nil, err
	}

	entriesPublished, err := meter.Int64Counter(
		"campaigns.entries.published",
		metric.WithDescription("Total campaign entries published by the worker"),
	)
	if err != nil {
		return nil, err
	}

	auditEventsLogged, err := meter.Int64Counter(
		"audit.events.logged",
		metric.WithDescription("Total audit events logged"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RequestCounter:      requestCounter,
		RequestDuration:     requestDuration,
		SessionsCreated:     sessionsCreated,
		EnhancementsApplied: enhancementsApplied,
		CampaignsLaunched:   campaignsLaunched,
		EntriesPublished:    entriesPublished,
		AuditEventsLogged:   auditEventsLogged,
	}, nil
}

// RecordRequest records one HTTP request with its route and status.
func (m *Metrics) RecordRequest(ctx context.Context, route string, status int, seconds float64) {
	attrs := metric.WithAttributes(
		attribute.String("route", route),
		attribute.Int("status", status),
	)
	m.RequestCounter.Add(ctx, 1, attrs)
	m.RequestDuration.Record(ctx, seconds, attrs)
}
