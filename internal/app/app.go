// Package app wires the tender monitor together and manages its lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sapo-cl/mercadopublico-monitor/internal/app/storage"
	"github.com/sapo-cl/mercadopublico-monitor/internal/config"
)

// MonitorApp encapsulates the components of a running monitor: the sync
// coordinator and the HTTP server in front of the tender store
type MonitorApp struct {
	config         *config.Config
	components     *AppComponents
	httpServer     *http.Server
	storageFactory storage.Factory

	stopped  chan struct{}
	stopOnce sync.Once
	stopErr  error
}

// Start runs the sync coordinator and the HTTP server until ctx is cancelled,
// Stop is called, or either of them fails. A failure of one stops the other.
func (app *MonitorApp) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := app.components.Coordinator.Start(gctx); err != nil {
			return fmt.Errorf("sync coordinator failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		slog.Info("Server listening", "address", app.httpServer.Addr)
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	// the server does not watch gctx itself
	g.Go(func() error {
		select {
		case <-app.stopped:
			return nil
		case <-gctx.Done():
		}
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), defaultShutdownTimeout)
		defer cancel()
		if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Stop stops the coordinator, which cancels any running enrichment, then
// shuts down the HTTP server and releases the store. Only the first call does
// anything; later calls return the first result.
func (app *MonitorApp) Stop(timeout time.Duration) error {
	app.stopOnce.Do(func() {
		slog.Info("Shutting down monitor")
		close(app.stopped)

		var errs []error
		if err := app.components.Coordinator.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop sync coordinator: %w", err))
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server forced to shutdown: %w", err))
		}

		if app.storageFactory != nil {
			app.storageFactory.Cleanup()
		}

		app.stopErr = errors.Join(errs...)
		if app.stopErr == nil {
			slog.Info("Monitor shutdown complete")
		}
	})
	return app.stopErr
}

// GetConfig returns the application configuration
func (app *MonitorApp) GetConfig() *config.Config {
	return app.config
}

// GetHTTPServer returns the HTTP server
func (app *MonitorApp) GetHTTPServer() *http.Server {
	return app.httpServer
}

// Components returns the wired components; the CLI uses them to run one-off
// cycles without serving HTTP
func (app *MonitorApp) Components() *AppComponents {
	return app.components
}
