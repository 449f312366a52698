// Package status provides sync status tracking and persistence.
package status

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

//go:generate mockgen -destination=mocks/mock_status_persistence.go -package=mocks github.com/sapo-cl/mercadopublico-monitor/internal/status StatusPersistence

// StatusPersistence defines the interface for sync status persistence
//
//nolint:revive // This name is fine
type StatusPersistence interface {
	// SaveStatus saves the sync status to persistent storage
	SaveStatus(ctx context.Context, status *SyncStatus) error

	// LoadStatus loads the sync status from persistent storage.
	// Returns an Idle SyncStatus if nothing was saved yet (first run)
	LoadStatus(ctx context.Context) (*SyncStatus, error)
}

// fileStatusPersistence implements StatusPersistence using a local JSON file
type fileStatusPersistence struct {
	path string
}

// NewFileStatusPersistence creates a file-based status persistence writing to path
func NewFileStatusPersistence(path string) StatusPersistence {
	return &fileStatusPersistence{path: path}
}

// SaveStatus writes the status through a temporary file and an atomic rename
func (f *fileStatusPersistence) SaveStatus(_ context.Context, status *SyncStatus) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0750); err != nil {
		return fmt.Errorf("failed to create status directory: %w", err)
	}

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status data: %w", err)
	}

	tempPath := f.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary status file: %w", err)
	}

	if err := os.Rename(tempPath, f.path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename status file: %w", err)
	}

	return nil
}

// LoadStatus reads the status file. A missing file yields an Idle status.
func (f *fileStatusPersistence) LoadStatus(_ context.Context) (*SyncStatus, error) {
	// #nosec G304 -- path comes from operator configuration
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &SyncStatus{Phase: SyncPhaseIdle}, nil
		}
		return nil, fmt.Errorf("failed to read status file: %w", err)
	}

	var status SyncStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status data: %w", err)
	}
	if status.Phase == "" {
		status.Phase = SyncPhaseIdle
	}

	return &status, nil
}

// noopStatusPersistence keeps nothing; used when no status file is configured
type noopStatusPersistence struct{}

// NewNoopStatusPersistence returns a StatusPersistence that discards writes
func NewNoopStatusPersistence() StatusPersistence {
	return noopStatusPersistence{}
}

func (noopStatusPersistence) SaveStatus(context.Context, *SyncStatus) error {
	return nil
}

func (noopStatusPersistence) LoadStatus(context.Context) (*SyncStatus, error) {
	return &SyncStatus{Phase: SyncPhaseIdle}, nil
}
