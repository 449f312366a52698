package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/trace"
	"k8s.io/utils/clock"

	"github.com/sapo-cl/mercadopublico-monitor/internal/config"
	"github.com/sapo-cl/mercadopublico-monitor/internal/status"
	pkgsync "github.com/sapo-cl/mercadopublico-monitor/internal/sync"
	"github.com/sapo-cl/mercadopublico-monitor/internal/telemetry"
)

// RunOutcome is the result of a synchronous sync trigger
type RunOutcome int

const (
	// RunCompleted means Phase 1 finished and enrichment was handed off
	RunCompleted RunOutcome = iota
	// RunFailed means Phase 1 could not fetch or reconcile; the store is unchanged
	RunFailed
	// RunSkipped means another cycle held the guard; nothing was done
	RunSkipped
)

func (o RunOutcome) String() string {
	switch o {
	case RunCompleted:
		return "completed"
	case RunFailed:
		return "failed"
	case RunSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// TriggerResult is the result of an asynchronous sync trigger
type TriggerResult int

const (
	// TriggerStarted means a cycle was started in the background
	TriggerStarted TriggerResult = iota
	// TriggerAlreadyInProgress means a cycle was running; the trigger was dropped
	TriggerAlreadyInProgress
	// TriggerShuttingDown means the coordinator is stopping and accepts no work
	TriggerShuttingDown
)

func (r TriggerResult) String() string {
	switch r {
	case TriggerStarted:
		return "started"
	case TriggerAlreadyInProgress:
		return "already in progress"
	case TriggerShuttingDown:
		return "shutting down"
	default:
		return "unknown"
	}
}

// Coordinator schedules and runs sync and cleanup cycles
//
//go:generate mockgen -destination=mocks/mock_coordinator.go -package=mocks github.com/sapo-cl/mercadopublico-monitor/internal/sync/coordinator Coordinator
type Coordinator interface {
	// Start runs the sync and cleanup schedules. Blocks until ctx is
	// cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop cancels the schedules and any running enrichment, then waits for
	// them to return
	Stop() error

	// Wait blocks until every background task started so far has returned
	Wait()

	// RunSync runs Phase 1 and hands the eligible batch to a background
	// enrichment. Returns RunSkipped without waiting when a cycle holds the guard.
	RunSync(ctx context.Context) RunOutcome

	// TriggerManual is RunSync for operator-initiated runs
	TriggerManual(ctx context.Context) RunOutcome

	// TriggerAsync starts a cycle in the background unless one is running.
	// Never queues.
	TriggerAsync() TriggerResult

	// CleanupExpired deletes expired tenders. Not guarded by the sync guard.
	CleanupExpired(ctx context.Context) (int64, error)

	// Status returns a snapshot of the tracked sync status
	Status() status.SyncStatus
}

// defaultCoordinator is the default implementation of Coordinator
type defaultCoordinator struct {
	manager           pkgsync.Manager
	statusPersistence status.StatusPersistence

	clock           clock.Clock
	location        *time.Location
	syncInterval    time.Duration
	cleanupInterval time.Duration
	runOnStart      bool
	tracer          trace.Tracer
	syncMetrics     *telemetry.SyncMetrics

	// Lifecycle management. ctx outlives any single trigger and is
	// cancelled by Stop.
	ctx        context.Context
	cancelFunc context.CancelFunc
	started    atomic.Bool
	done       chan struct{}

	// running is the single-flight guard. It covers Phase 1 only.
	running atomic.Bool

	// tasks tracks detached work: enrichment batches and async triggers
	tasksMu  sync.Mutex
	stopping bool
	tasks    sync.WaitGroup

	statusMu     sync.RWMutex
	status       status.SyncStatus
	statusLoaded sync.Once
}

// Option is a function that configures the coordinator
type Option func(*defaultCoordinator)

// WithSyncMetrics sets the sync metrics for the coordinator
func WithSyncMetrics(metrics *telemetry.SyncMetrics) Option {
	return func(c *defaultCoordinator) {
		c.syncMetrics = metrics
	}
}

// WithClock sets the clock that drives the schedules
func WithClock(clk clock.Clock) Option {
	return func(c *defaultCoordinator) {
		c.clock = clk
	}
}

// WithTracer sets the OpenTelemetry tracer. If not set, tracing is disabled.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *defaultCoordinator) {
		c.tracer = tracer
	}
}

// New creates a coordinator over the sync manager. Schedule settings are
// read from cfg; invalid values fall back to the defaults with a warning.
func New(
	manager pkgsync.Manager,
	statusPersistence status.StatusPersistence,
	cfg *config.SyncConfig,
	opts ...Option,
) Coordinator {
	if cfg == nil {
		cfg = &config.SyncConfig{}
	}
	if statusPersistence == nil {
		statusPersistence = status.NewNoopStatusPersistence()
	}

	loc, err := cfg.GetLocation()
	if err != nil {
		slog.Warn("Invalid timezone, using local time", "timezone", cfg.Timezone, "error", err)
		loc = time.Local
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &defaultCoordinator{
		manager:           manager,
		statusPersistence: statusPersistence,
		clock:             clock.RealClock{},
		location:          loc,
		syncInterval:      cfg.GetInterval(),
		cleanupInterval:   cfg.GetCleanupInterval(),
		runOnStart:        cfg.RunOnStart,
		ctx:               ctx,
		cancelFunc:        cancel,
		done:              make(chan struct{}),
		status:            status.SyncStatus{Phase: status.SyncPhaseIdle},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Start runs the sync and cleanup schedules until ctx is cancelled or Stop is called
func (c *defaultCoordinator) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return fmt.Errorf("coordinator already started")
	}
	defer func() {
		close(c.done)
		slog.Info("Background sync coordinator shutting down")
	}()

	slog.Info("Starting background sync coordinator",
		"sync_interval", c.syncInterval,
		"cleanup_interval", c.cleanupInterval,
		"timezone", c.location.String(),
		"run_on_start", c.runOnStart)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.ctx, cancel)
	defer stop()

	c.loadStatus(runCtx)

	if c.runOnStart {
		c.runSync(runCtx, telemetry.TriggerStartup)
	}

	var loops sync.WaitGroup
	loops.Add(2)
	go func() {
		defer loops.Done()
		c.runSchedule(runCtx, "sync", c.syncInterval, func(ctx context.Context) {
			c.runSync(ctx, telemetry.TriggerSchedule)
		})
	}()
	go func() {
		defer loops.Done()
		c.runSchedule(runCtx, "cleanup", c.cleanupInterval, func(ctx context.Context) {
			if _, err := c.CleanupExpired(ctx); err != nil {
				slog.Error("Scheduled cleanup failed", "error", err)
			}
		})
	}()

	<-runCtx.Done()
	loops.Wait()
	slog.Info("Sync coordinator stopping")
	return nil
}

// Stop cancels the lifecycle context and waits for the schedules and all
// background tasks to return. Safe to call before Start and more than once.
func (c *defaultCoordinator) Stop() error {
	c.tasksMu.Lock()
	c.stopping = true
	c.tasksMu.Unlock()

	slog.Info("Stopping sync coordinator")
	c.cancelFunc()

	if c.started.Load() {
		<-c.done
	}
	c.tasks.Wait()
	return nil
}

// Wait blocks until every background task started so far has returned
func (c *defaultCoordinator) Wait() {
	c.tasks.Wait()
}

// spawn runs fn on a tracked goroutine. Returns false once Stop has been called.
func (c *defaultCoordinator) spawn(fn func()) bool {
	c.tasksMu.Lock()
	defer c.tasksMu.Unlock()

	if c.stopping {
		return false
	}

	c.tasks.Add(1)
	go func() {
		defer c.tasks.Done()
		fn()
	}()
	return true
}

// runSchedule calls fn at every aligned instant until ctx is done. A run that
// overruns its slot moves to the next aligned instant; missed slots are not replayed.
func (c *defaultCoordinator) runSchedule(ctx context.Context, job string, interval time.Duration, fn func(context.Context)) {
	for {
		now := c.clock.Now()
		next := nextRun(now, interval, c.location)
		slog.Debug("Next run scheduled", "job", job, "at", next)

		select {
		case <-ctx.Done():
			return
		case <-c.clock.After(next.Sub(now)):
			fn(ctx)
		}
	}
}
