package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SyncMetricsMeterName is the name used for the sync metrics meter
const SyncMetricsMeterName = "github.com/sapo-cl/mercadopublico-monitor/sync"

// Trigger values recorded with sync metrics
const (
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
	TriggerStartup  = "startup"
)

// SyncMetrics holds the OpenTelemetry instruments for sync cycles
type SyncMetrics struct {
	syncDuration      metric.Float64Histogram
	tendersWritten    metric.Int64Counter
	enrichmentResults metric.Int64Counter
	expiredDeleted    metric.Int64Counter
	skippedRuns       metric.Int64Counter
}

// NewSyncMetrics creates the sync instruments on the given provider.
// If provider is nil, it returns nil (no-op metrics).
func NewSyncMetrics(provider metric.MeterProvider) (*SyncMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(SyncMetricsMeterName)

	syncDuration, err := meter.Float64Histogram(
		"mp_monitor_sync_duration_seconds",
		metric.WithDescription("Duration of the fetch and reconcile phase in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.5, 1, 2.5, 5, 10, 30, 60, 120, 300),
	)
	if err != nil {
		return nil, err
	}

	tendersWritten, err := meter.Int64Counter(
		"mp_monitor_tenders_written_total",
		metric.WithDescription("Tenders upserted or deleted by reconciliation"),
		metric.WithUnit("{tender}"),
	)
	if err != nil {
		return nil, err
	}

	enrichmentResults, err := meter.Int64Counter(
		"mp_monitor_enrichment_records_total",
		metric.WithDescription("Enrichment records by outcome"),
		metric.WithUnit("{tender}"),
	)
	if err != nil {
		return nil, err
	}

	expiredDeleted, err := meter.Int64Counter(
		"mp_monitor_expired_deleted_total",
		metric.WithDescription("Expired tenders removed by cleanup"),
		metric.WithUnit("{tender}"),
	)
	if err != nil {
		return nil, err
	}

	skippedRuns, err := meter.Int64Counter(
		"mp_monitor_sync_skipped_total",
		metric.WithDescription("Sync triggers rejected because a cycle was already running"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	return &SyncMetrics{
		syncDuration:      syncDuration,
		tendersWritten:    tendersWritten,
		enrichmentResults: enrichmentResults,
		expiredDeleted:    expiredDeleted,
		skippedRuns:       skippedRuns,
	}, nil
}

// RecordSyncDuration records how long Phase 1 took
func (m *SyncMetrics) RecordSyncDuration(ctx context.Context, trigger string, duration time.Duration, success bool) {
	if m == nil {
		return
	}

	m.syncDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("trigger", trigger),
		attribute.Bool("success", success),
	))
}

// RecordReconcile records the store writes of a reconciliation pass
func (m *SyncMetrics) RecordReconcile(ctx context.Context, upserted, deleted, failed int) {
	if m == nil {
		return
	}

	for op, n := range map[string]int{"upsert": upserted, "delete": deleted, "failed": failed} {
		if n == 0 {
			continue
		}
		m.tendersWritten.Add(ctx, int64(n), metric.WithAttributes(attribute.String("operation", op)))
	}
}

// RecordEnrichment records one count per enrichment outcome
func (m *SyncMetrics) RecordEnrichment(ctx context.Context, outcomes map[string]int) {
	if m == nil {
		return
	}

	for outcome, n := range outcomes {
		if n == 0 {
			continue
		}
		m.enrichmentResults.Add(ctx, int64(n), metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

// RecordExpiredDeleted records the rows removed by a cleanup run
func (m *SyncMetrics) RecordExpiredDeleted(ctx context.Context, deleted int64) {
	if m == nil {
		return
	}
	m.expiredDeleted.Add(ctx, deleted)
}

// RecordSkipped records a trigger rejected by the single-flight guard
func (m *SyncMetrics) RecordSkipped(ctx context.Context, trigger string) {
	if m == nil {
		return
	}
	m.skippedRuns.Add(ctx, 1, metric.WithAttributes(attribute.String("trigger", trigger)))
}
