package status

import "time"

// SyncPhase represents the current phase of a synchronization operation
type SyncPhase string

const (
	// SyncPhaseIdle means no sync has run since the status was created
	SyncPhaseIdle SyncPhase = "Idle"

	// SyncPhaseSyncing means sync is currently in progress
	SyncPhaseSyncing SyncPhase = "Syncing"

	// SyncPhaseComplete means sync completed successfully
	SyncPhaseComplete SyncPhase = "Complete"

	// SyncPhaseFailed means sync failed
	SyncPhaseFailed SyncPhase = "Failed"
)

// SyncStatus represents the current state of tender synchronization
type SyncStatus struct {
	// Phase represents the current synchronization phase
	Phase SyncPhase `json:"phase"`

	// Message provides additional information about the sync status
	Message string `json:"message,omitempty"`

	// RunID identifies the cycle that last wrote this status
	RunID string `json:"runId,omitempty"`

	// LastAttempt is the timestamp of the last sync attempt
	LastAttempt *time.Time `json:"lastAttempt,omitempty"`

	// AttemptCount is the number of sync attempts since last success
	AttemptCount int `json:"attemptCount,omitempty"`

	// LastSyncTime is the timestamp of the last successful sync
	LastSyncTime *time.Time `json:"lastSyncTime,omitempty"`

	// SyncedDate is the day (yyyy-mm-dd) fetched by the last successful sync
	SyncedDate string `json:"syncedDate,omitempty"`

	// Counters of the last successful Phase 1
	Fetched  int `json:"fetched"`
	Eligible int `json:"eligible"`
	Deleted  int `json:"deleted"`
	Upserted int `json:"upserted"`
	Failed   int `json:"failed"`

	// LastEnrichment is the outcome of the last finished enrichment batch
	LastEnrichment *EnrichmentStatus `json:"lastEnrichment,omitempty"`

	// LastCleanupTime and LastCleanupDeleted describe the last expired-tender purge
	LastCleanupTime    *time.Time `json:"lastCleanupTime,omitempty"`
	LastCleanupDeleted int64      `json:"lastCleanupDeleted,omitempty"`
}

// EnrichmentStatus summarizes an enrichment batch
type EnrichmentStatus struct {
	RunID      string     `json:"runId,omitempty"`
	Succeeded  int        `json:"succeeded"`
	Failed     int        `json:"failed"`
	Skipped    int        `json:"skipped"`
	Cancelled  bool       `json:"cancelled,omitempty"`
	Remaining  int        `json:"remaining,omitempty"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

// Clone returns a deep copy of s
func (s *SyncStatus) Clone() *SyncStatus {
	if s == nil {
		return nil
	}
	c := *s
	c.LastAttempt = cloneTime(s.LastAttempt)
	c.LastSyncTime = cloneTime(s.LastSyncTime)
	c.LastCleanupTime = cloneTime(s.LastCleanupTime)
	if s.LastEnrichment != nil {
		e := *s.LastEnrichment
		e.FinishedAt = cloneTime(s.LastEnrichment.FinishedAt)
		c.LastEnrichment = &e
	}
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
