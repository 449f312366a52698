package sync

import (
	"context"
	"log/slog"

	"k8s.io/utils/clock"

	"github.com/sapo-cl/mercadopublico-monitor/internal/mercadopublico"
	"github.com/sapo-cl/mercadopublico-monitor/internal/store"
	"github.com/sapo-cl/mercadopublico-monitor/internal/tender"
)

// Reconciler aligns the store with a fetched batch of summaries
type Reconciler struct {
	store      store.TenderStore
	normalizer *tender.Normalizer
	clock      clock.PassiveClock
}

// NewReconciler creates a Reconciler
func NewReconciler(s store.TenderStore, normalizer *tender.Normalizer, clk clock.PassiveClock) *Reconciler {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if normalizer == nil {
		normalizer = tender.NewNormalizer(nil)
	}
	return &Reconciler{store: s, normalizer: normalizer, clock: clk}
}

// Reconcile deletes stored records whose summary in all reports a status other
// than Published, then upserts every eligible summary. Per-record errors are
// logged and counted; they never stop the pass.
func (r *Reconciler) Reconcile(ctx context.Context, all, eligible []mercadopublico.Tender) ReconcileReport {
	var report ReconcileReport

	for i := range all {
		switch r.removeIfUnpublished(ctx, &all[i]) {
		case OutcomeSucceeded:
			report.Deleted++
		case OutcomeFailed:
			report.Failed++
		case OutcomeSkipped:
		}
	}

	for i := range eligible {
		if r.upsert(ctx, &eligible[i]) == OutcomeSucceeded {
			report.Upserted++
		} else {
			report.Failed++
		}
	}

	return report
}

func (r *Reconciler) removeIfUnpublished(ctx context.Context, summary *mercadopublico.Tender) RecordOutcome {
	status, ok := summary.Status()
	if !ok || status == tender.StatusPublished {
		return OutcomeSkipped
	}

	code := summary.CodigoExterno
	exists, err := r.store.Exists(ctx, code)
	if err != nil {
		slog.Error("Failed to check stored tender", "code", code, "error", err)
		return OutcomeFailed
	}
	if !exists {
		return OutcomeSkipped
	}

	if err := r.store.Delete(ctx, code); err != nil {
		slog.Error("Failed to delete tender", "code", code, "error", err)
		return OutcomeFailed
	}
	slog.Info("Deleted tender no longer published", "code", code, "status", status)
	return OutcomeSucceeded
}

func (r *Reconciler) upsert(ctx context.Context, summary *mercadopublico.Tender) RecordOutcome {
	t := r.normalizer.FromRemote(summary, r.clock.Now())
	if err := r.store.Upsert(ctx, t); err != nil {
		slog.Error("Failed to upsert tender", "code", t.Code, "error", err)
		return OutcomeFailed
	}
	return OutcomeSucceeded
}
