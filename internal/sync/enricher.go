package sync

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
	"k8s.io/utils/clock"

	"github.com/sapo-cl/mercadopublico-monitor/internal/mercadopublico"
	"github.com/sapo-cl/mercadopublico-monitor/internal/otel"
	"github.com/sapo-cl/mercadopublico-monitor/internal/store"
	"github.com/sapo-cl/mercadopublico-monitor/internal/tender"
)

const (
	// DefaultDetailDelay separates two detail requests to respect the remote rate limit
	DefaultDetailDelay = 3 * time.Second

	// DefaultProgressEvery is how many records pass between progress log lines
	DefaultProgressEvery = 50

	// DefaultRecordTimeout bounds the work on one record once it has started
	DefaultRecordTimeout = 2 * time.Minute
)

// Enricher fetches the detail of each summary and merges it into the stored record
type Enricher struct {
	client        mercadopublico.Client
	store         store.TenderStore
	clock         clock.Clock
	tracer        trace.Tracer
	delay         time.Duration
	progressEvery int
	recordTimeout time.Duration
}

// EnricherOption configures an Enricher
type EnricherOption func(*Enricher)

// WithEnricherDelay sets the pause between two detail requests. Zero or a
// negative value disables pacing.
func WithEnricherDelay(d time.Duration) EnricherOption {
	return func(e *Enricher) {
		e.delay = d
	}
}

// WithEnricherProgressEvery sets how many records pass between progress log
// lines. Zero disables progress logging.
func WithEnricherProgressEvery(n int) EnricherOption {
	return func(e *Enricher) {
		e.progressEvery = n
	}
}

// WithEnricherRecordTimeout bounds the work on a single record
func WithEnricherRecordTimeout(d time.Duration) EnricherOption {
	return func(e *Enricher) {
		if d > 0 {
			e.recordTimeout = d
		}
	}
}

// WithEnricherTracer sets the OpenTelemetry tracer. If not set, tracing is disabled.
func WithEnricherTracer(tracer trace.Tracer) EnricherOption {
	return func(e *Enricher) {
		e.tracer = tracer
	}
}

// NewEnricher creates an Enricher with the default pacing unless opts override it
func NewEnricher(client mercadopublico.Client, s store.TenderStore, clk clock.Clock, opts ...EnricherOption) *Enricher {
	if clk == nil {
		clk = clock.RealClock{}
	}
	e := &Enricher{
		client:        client,
		store:         s,
		clock:         clk,
		delay:         DefaultDetailDelay,
		progressEvery: DefaultProgressEvery,
		recordTimeout: DefaultRecordTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich processes eligible in order, pausing between records. When ctx is
// cancelled the pause returns early and the batch stops; the record being
// processed at that moment still completes.
func (e *Enricher) Enrich(ctx context.Context, eligible []mercadopublico.Tender) BatchReport {
	report := BatchReport{Total: len(eligible)}
	if len(eligible) == 0 {
		return report
	}

	slog.Info("Starting enrichment", "count", len(eligible), "delay", e.delay)
	started := e.clock.Now()

	for i := range eligible {
		if !e.pause(ctx, i > 0) {
			report.Cancelled = true
			report.Remaining = len(eligible) - i
			slog.Info("Enrichment cancelled",
				"processed", i,
				"remaining", report.Remaining,
				"succeeded", report.Succeeded,
				"failed", report.Failed)
			return report
		}

		report.add(e.enrichOne(ctx, &eligible[i]))

		if e.progressEvery > 0 && (i+1)%e.progressEvery == 0 {
			slog.Info("Enrichment progress", "processed", i+1, "total", len(eligible))
		}
	}

	slog.Info("Enrichment completed",
		"total", report.Total,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"skipped", report.Skipped,
		"duration", e.clock.Since(started))
	return report
}

// pause waits for the pacing delay when wait is set. It reports false when
// ctx is done before or during the wait.
func (e *Enricher) pause(ctx context.Context, wait bool) bool {
	if ctx.Err() != nil {
		return false
	}
	if !wait || e.delay <= 0 {
		return true
	}
	select {
	case <-ctx.Done():
		return false
	case <-e.clock.After(e.delay):
		return true
	}
}

// enrichOne runs detached from cancellation so a started record is never cut
// short; recordTimeout bounds it instead.
func (e *Enricher) enrichOne(parent context.Context, summary *mercadopublico.Tender) RecordOutcome {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), e.recordTimeout)
	defer cancel()

	code := summary.CodigoExterno
	ctx, span := otel.StartSpan(ctx, e.tracer, "sync.enrichRecord")
	span.SetAttributes(otel.AttrTenderCode.String(code))
	defer span.End()

	detail, err := e.client.FetchDetail(ctx, code)
	if err != nil {
		otel.RecordError(span, err)
		slog.Warn("Failed to fetch tender detail", "code", code, "error", err)
		return OutcomeFailed
	}

	stored, err := e.store.Find(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		slog.Debug("Tender vanished before enrichment, skipping", "code", code)
		return OutcomeSkipped
	}
	if err != nil {
		otel.RecordError(span, err)
		slog.Error("Failed to load tender for enrichment", "code", code, "error", err)
		return OutcomeFailed
	}

	tender.MergeDetail(stored, detail, e.clock.Now())
	err = e.store.Update(ctx, stored)
	if errors.Is(err, store.ErrNotFound) {
		slog.Debug("Tender deleted during enrichment, skipping", "code", code)
		return OutcomeSkipped
	}
	if err != nil {
		otel.RecordError(span, err)
		slog.Error("Failed to store enriched tender", "code", code, "error", err)
		return OutcomeFailed
	}

	span.SetAttributes(otel.AttrItemCount.Int(len(stored.Items)))
	return OutcomeSucceeded
}
