package sync

// Sync reason constants
const (
	// ReasonAlreadyInProgress is reported when a trigger finds a cycle running
	ReasonAlreadyInProgress = "sync-already-in-progress"

	// ReasonFetchFailed means the remote list could not be retrieved; the
	// cycle is treated as "no data this round"
	ReasonFetchFailed = "fetch-failed"

	// ReasonCompleted marks a finished Phase 1
	ReasonCompleted = "sync-completed"
)

// Condition types reported on sync errors
const (
	// ConditionSourceAvailable indicates whether the remote API answered
	ConditionSourceAvailable = "SourceAvailable"

	// ConditionSyncSuccessful indicates whether the last sync was successful
	ConditionSyncSuccessful = "SyncSuccessful"
)

// Error represents a structured sync failure with condition information
type Error struct {
	Err             error
	Message         string
	ConditionType   string
	ConditionReason string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}
