package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
	"k8s.io/utils/clock"

	"github.com/sapo-cl/mercadopublico-monitor/internal/mercadopublico"
	"github.com/sapo-cl/mercadopublico-monitor/internal/otel"
	"github.com/sapo-cl/mercadopublico-monitor/internal/store"
	"github.com/sapo-cl/mercadopublico-monitor/internal/tender"
)

// Result contains the result of a successful Phase 1
type Result struct {
	// Date is the day that was fetched, at midnight in the configured location
	Date time.Time
	// Fetched is the number of summaries returned by the remote API
	Fetched int
	// Eligible are the summaries that passed the validity filter, in remote order
	Eligible []mercadopublico.Tender
	// Reconcile reports the store writes of the pass
	Reconcile ReconcileReport
}

// Manager performs the domain half of a sync cycle
//
//go:generate mockgen -destination=mocks/mock_manager.go -package=mocks github.com/sapo-cl/mercadopublico-monitor/internal/sync Manager
type Manager interface {
	// PerformSync fetches yesterday's summaries, filters them and reconciles the store
	PerformSync(ctx context.Context) (*Result, *Error)

	// Enrich fetches and merges the detail of every eligible summary
	Enrich(ctx context.Context, eligible []mercadopublico.Tender) BatchReport

	// CleanupExpired deletes every stored tender whose close date is in the past
	CleanupExpired(ctx context.Context) (int64, error)
}

// Option configures the default manager
type Option func(*defaultSyncManager)

// WithClock sets the clock used for validity, timestamps and pacing
func WithClock(clk clock.Clock) Option {
	return func(m *defaultSyncManager) {
		m.clock = clk
	}
}

// WithLocation sets the location remote timestamps and the fetch date are interpreted in
func WithLocation(loc *time.Location) Option {
	return func(m *defaultSyncManager) {
		m.location = loc
	}
}

// WithDetailDelay sets the pause between two detail requests
func WithDetailDelay(d time.Duration) Option {
	return func(m *defaultSyncManager) {
		m.detailDelay = d
	}
}

// WithProgressEvery sets how often enrichment progress is logged
func WithProgressEvery(n int) Option {
	return func(m *defaultSyncManager) {
		m.progressEvery = n
	}
}

// WithTracer sets the OpenTelemetry tracer. If not set, tracing is disabled.
func WithTracer(tracer trace.Tracer) Option {
	return func(m *defaultSyncManager) {
		m.tracer = tracer
	}
}

// defaultSyncManager is the default implementation of Manager
type defaultSyncManager struct {
	client mercadopublico.Client
	store  store.TenderStore

	clock         clock.Clock
	location      *time.Location
	detailDelay   time.Duration
	progressEvery int
	tracer        trace.Tracer

	validator  *tender.Validator
	reconciler *Reconciler
	enricher   *Enricher
}

// NewDefaultSyncManager creates a Manager over the remote client and the store
func NewDefaultSyncManager(client mercadopublico.Client, s store.TenderStore, opts ...Option) Manager {
	m := &defaultSyncManager{
		client:        client,
		store:         s,
		clock:         clock.RealClock{},
		location:      time.Local,
		detailDelay:   DefaultDetailDelay,
		progressEvery: DefaultProgressEvery,
	}
	for _, opt := range opts {
		opt(m)
	}

	normalizer := tender.NewNormalizer(m.location)
	m.validator = tender.NewValidator(normalizer, m.clock)
	m.reconciler = NewReconciler(s, normalizer, m.clock)
	m.enricher = NewEnricher(client, s, m.clock,
		WithEnricherDelay(m.detailDelay),
		WithEnricherProgressEvery(m.progressEvery),
		WithEnricherTracer(m.tracer),
	)

	return m
}

// PerformSync runs Phase 1. A fetch failure leaves the store untouched.
func (m *defaultSyncManager) PerformSync(ctx context.Context) (*Result, *Error) {
	ctx, span := otel.StartSpan(ctx, m.tracer, "sync.PerformSync")
	defer span.End()

	date := FetchDate(m.clock.Now(), m.location)
	span.SetAttributes(otel.AttrSyncDate.String(date.Format(time.DateOnly)))

	slog.Info("Starting sync operation", "date", date.Format(time.DateOnly))

	resp, err := m.client.FetchByDate(ctx, date)
	if err != nil {
		otel.RecordError(span, err)
		slog.Warn("Fetch operation failed, no data this round", "date", date.Format(time.DateOnly), "error", err)
		return nil, &Error{
			Err:             err,
			Message:         fmt.Sprintf("Fetch failed: %v", err),
			ConditionType:   ConditionSourceAvailable,
			ConditionReason: ReasonFetchFailed,
		}
	}

	all := resp.Listado
	eligible := m.validator.FilterEligible(all)
	slog.Info("Tender summaries fetched",
		"date", date.Format(time.DateOnly),
		"fetched", len(all),
		"eligible", len(eligible))

	report := m.reconciler.Reconcile(ctx, all, eligible)
	span.SetAttributes(
		otel.AttrResultCount.Int(len(all)),
		otel.AttrUpserted.Int(report.Upserted),
		otel.AttrDeleted.Int(report.Deleted),
	)
	slog.Info("Reconciliation completed",
		"deleted", report.Deleted,
		"upserted", report.Upserted,
		"failed", report.Failed)

	return &Result{
		Date:      date,
		Fetched:   len(all),
		Eligible:  eligible,
		Reconcile: report,
	}, nil
}

// Enrich runs Phase 2
func (m *defaultSyncManager) Enrich(ctx context.Context, eligible []mercadopublico.Tender) BatchReport {
	return m.enricher.Enrich(ctx, eligible)
}

// CleanupExpired deletes tenders that closed before now
func (m *defaultSyncManager) CleanupExpired(ctx context.Context) (int64, error) {
	ctx, span := otel.StartSpan(ctx, m.tracer, "sync.CleanupExpired")
	defer span.End()

	now := m.clock.Now()
	deleted, err := m.store.DeleteClosedBefore(ctx, now)
	if err != nil {
		otel.RecordError(span, err)
		return 0, fmt.Errorf("failed to delete expired tenders: %w", err)
	}

	span.SetAttributes(otel.AttrDeleted.Int64(deleted))
	slog.Info("Expired tenders cleaned up", "deleted", deleted, "cutoff", now)
	return deleted, nil
}

// FetchDate returns yesterday relative to now, at midnight in loc. The remote
// API may reject today's date when clocks are skewed, so the day is always the
// previous one.
func FetchDate(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	y, mo, d := now.In(loc).AddDate(0, 0, -1).Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, loc)
}
