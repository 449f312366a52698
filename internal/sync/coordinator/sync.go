package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/sapo-cl/mercadopublico-monitor/internal/mercadopublico"
	"github.com/sapo-cl/mercadopublico-monitor/internal/otel"
	"github.com/sapo-cl/mercadopublico-monitor/internal/status"
	pkgsync "github.com/sapo-cl/mercadopublico-monitor/internal/sync"
	"github.com/sapo-cl/mercadopublico-monitor/internal/telemetry"
)

// RunSync runs a scheduled cycle
func (c *defaultCoordinator) RunSync(ctx context.Context) RunOutcome {
	return c.runSync(ctx, telemetry.TriggerSchedule)
}

// TriggerManual runs an operator-initiated cycle and returns once Phase 1 is done
func (c *defaultCoordinator) TriggerManual(ctx context.Context) RunOutcome {
	return c.runSync(ctx, telemetry.TriggerManual)
}

// TriggerAsync starts a cycle in the background. The guard is taken before
// returning so that two concurrent callers cannot both get TriggerStarted.
func (c *defaultCoordinator) TriggerAsync() TriggerResult {
	if !c.running.CompareAndSwap(false, true) {
		c.logSkipped(c.ctx, telemetry.TriggerManual)
		return TriggerAlreadyInProgress
	}

	if !c.spawn(func() { c.performSync(c.ctx, telemetry.TriggerManual) }) {
		c.running.Store(false)
		slog.Info("Sync trigger rejected, coordinator is stopping")
		return TriggerShuttingDown
	}
	return TriggerStarted
}

func (c *defaultCoordinator) runSync(ctx context.Context, trigger string) RunOutcome {
	if !c.running.CompareAndSwap(false, true) {
		c.logSkipped(ctx, trigger)
		return RunSkipped
	}
	return c.performSync(ctx, trigger)
}

func (c *defaultCoordinator) logSkipped(ctx context.Context, trigger string) {
	slog.Info("Sync already in progress, skipping",
		"trigger", trigger,
		"reason", pkgsync.ReasonAlreadyInProgress)
	c.syncMetrics.RecordSkipped(ctx, trigger)
}

// performSync runs Phase 1 with the guard held and releases it on return.
// Enrichment is started on a tracked goroutine bound to the coordinator
// lifecycle, so it keeps running after the guard is released.
func (c *defaultCoordinator) performSync(ctx context.Context, trigger string) RunOutcome {
	// registered first so it runs after the final status is recorded
	defer c.running.Store(false)

	c.loadStatus(ctx)

	runID := uuid.NewString()
	ctx, span := otel.StartSpan(ctx, c.tracer, "coordinator.RunSync")
	defer span.End()
	span.SetAttributes(otel.AttrRunID.String(runID), otel.AttrTrigger.String(trigger))

	logger := slog.With("run_id", runID, "trigger", trigger)
	start := c.clock.Now()

	var attemptCount int
	c.updateStatus(ctx, func(s *status.SyncStatus) {
		s.Phase = status.SyncPhaseSyncing
		s.Message = "Sync in progress"
		s.RunID = runID
		s.LastAttempt = &start
		s.AttemptCount++
		attemptCount = s.AttemptCount
	})

	// Replaced below once the outcome is known
	finish := func(s *status.SyncStatus) {
		s.Phase = status.SyncPhaseFailed
		s.Message = "Unexpected failure while syncing tenders"
	}
	defer func() {
		c.updateStatus(context.WithoutCancel(ctx), finish)
	}()

	logger.Info("Starting sync operation", "attempt", attemptCount)

	result, syncErr := c.manager.PerformSync(ctx)
	duration := c.clock.Since(start)

	if syncErr != nil {
		finish = func(s *status.SyncStatus) {
			s.Phase = status.SyncPhaseFailed
			s.Message = syncErr.Message
		}
		otel.RecordError(span, syncErr)
		logger.Error("Sync failed",
			"reason", syncErr.ConditionReason,
			"error", syncErr.Message,
			"duration", duration)
		c.syncMetrics.RecordSyncDuration(ctx, trigger, duration, false)
		return RunFailed
	}

	now := c.clock.Now()
	finish = func(s *status.SyncStatus) {
		s.Phase = status.SyncPhaseComplete
		s.Message = "Sync completed successfully"
		s.LastSyncTime = &now
		s.SyncedDate = result.Date.Format(time.DateOnly)
		s.Fetched = result.Fetched
		s.Eligible = len(result.Eligible)
		s.Deleted = result.Reconcile.Deleted
		s.Upserted = result.Reconcile.Upserted
		s.Failed = result.Reconcile.Failed
		s.AttemptCount = 0
	}

	logger.Info("Sync completed successfully",
		"date", result.Date.Format(time.DateOnly),
		"fetched", result.Fetched,
		"eligible", len(result.Eligible),
		"upserted", result.Reconcile.Upserted,
		"deleted", result.Reconcile.Deleted,
		"duration", duration)
	c.syncMetrics.RecordSyncDuration(ctx, trigger, duration, true)
	c.syncMetrics.RecordReconcile(ctx, result.Reconcile.Upserted, result.Reconcile.Deleted, result.Reconcile.Failed)

	if len(result.Eligible) > 0 {
		c.startEnrichment(ctx, runID, result.Eligible)
	}
	return RunCompleted
}

// startEnrichment hands the batch to a detached goroutine. The goroutine is
// not covered by the sync guard and may overlap the next Phase 1.
func (c *defaultCoordinator) startEnrichment(parent context.Context, runID string, eligible []mercadopublico.Tender) {
	link := trace.LinkFromContext(parent)
	logger := slog.With("run_id", runID)

	started := c.spawn(func() {
		ctx, span := otel.StartSpan(c.ctx, c.tracer, "coordinator.Enrich", trace.WithLinks(link))
		defer span.End()
		span.SetAttributes(otel.AttrRunID.String(runID))

		logger.Info("Starting enrichment", "total", len(eligible))
		report := c.manager.Enrich(ctx, eligible)
		finishedAt := c.clock.Now()

		c.updateStatus(context.WithoutCancel(ctx), func(s *status.SyncStatus) {
			s.LastEnrichment = &status.EnrichmentStatus{
				RunID:      runID,
				Succeeded:  report.Succeeded,
				Failed:     report.Failed,
				Skipped:    report.Skipped,
				Cancelled:  report.Cancelled,
				Remaining:  report.Remaining,
				FinishedAt: &finishedAt,
			}
		})
		c.syncMetrics.RecordEnrichment(context.WithoutCancel(ctx), map[string]int{
			pkgsync.OutcomeSucceeded.String(): report.Succeeded,
			pkgsync.OutcomeFailed.String():    report.Failed,
			pkgsync.OutcomeSkipped.String():   report.Skipped,
			"cancelled":                       report.Remaining,
		})

		logger.Info("Enrichment finished",
			"total", report.Total,
			"succeeded", report.Succeeded,
			"failed", report.Failed,
			"skipped", report.Skipped,
			"cancelled", report.Cancelled)
	})
	if !started {
		logger.Warn("Coordinator stopping, enrichment not started", "total", len(eligible))
	}
}

// CleanupExpired deletes expired tenders and records the outcome
func (c *defaultCoordinator) CleanupExpired(ctx context.Context) (int64, error) {
	c.loadStatus(ctx)

	deleted, err := c.manager.CleanupExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("cleanup failed: %w", err)
	}

	now := c.clock.Now()
	c.updateStatus(ctx, func(s *status.SyncStatus) {
		s.LastCleanupTime = &now
		s.LastCleanupDeleted = deleted
	})
	c.syncMetrics.RecordExpiredDeleted(ctx, deleted)
	return deleted, nil
}

// Status returns a copy of the tracked status
func (c *defaultCoordinator) Status() status.SyncStatus {
	c.statusMu.RLock()
	defer c.statusMu.RUnlock()
	return *c.status.Clone()
}

// loadStatus seeds the tracked status from persistence once. A status left
// in Syncing by a previous process is reported as failed.
func (c *defaultCoordinator) loadStatus(ctx context.Context) {
	c.statusLoaded.Do(func() {
		loaded, err := c.statusPersistence.LoadStatus(ctx)
		if err != nil {
			slog.Warn("Failed to load sync status, starting fresh", "error", err)
			return
		}
		if loaded == nil {
			return
		}
		if loaded.Phase == status.SyncPhaseSyncing {
			loaded.Phase = status.SyncPhaseFailed
			loaded.Message = "Sync interrupted by shutdown"
		}

		c.statusMu.Lock()
		c.status = *loaded
		c.statusMu.Unlock()
	})
}

// updateStatus applies fn under the status lock and persists the result.
// Persistence errors are logged and do not fail the cycle.
func (c *defaultCoordinator) updateStatus(ctx context.Context, fn func(*status.SyncStatus)) {
	c.statusMu.Lock()
	defer c.statusMu.Unlock()

	fn(&c.status)
	if err := c.statusPersistence.SaveStatus(ctx, c.status.Clone()); err != nil {
		slog.Warn("Failed to persist sync status", "phase", c.status.Phase, "error", err)
	}
}
