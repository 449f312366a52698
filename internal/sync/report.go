package sync

// RecordOutcome is the result of processing a single record in a batch
type RecordOutcome int

const (
	// OutcomeSucceeded means the record was written
	OutcomeSucceeded RecordOutcome = iota
	// OutcomeFailed means a fetch or store call failed for the record
	OutcomeFailed
	// OutcomeSkipped means there was nothing to do, e.g. the record vanished
	OutcomeSkipped
)

func (o RecordOutcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// ReconcileReport counts what a Phase 1 pass did to the store
type ReconcileReport struct {
	Deleted  int `json:"deleted"`
	Upserted int `json:"upserted"`
	Failed   int `json:"failed"`
}

// Total is the number of store writes: deletions plus upserts
func (r ReconcileReport) Total() int {
	return r.Deleted + r.Upserted
}

// BatchReport summarizes an enrichment batch
type BatchReport struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`

	// Cancelled is set when the batch stopped early; Remaining records were not attempted
	Cancelled bool `json:"cancelled,omitempty"`
	Remaining int  `json:"remaining,omitempty"`
}

// Processed is the number of records attempted
func (b BatchReport) Processed() int {
	return b.Succeeded + b.Failed + b.Skipped
}

func (b *BatchReport) add(o RecordOutcome) {
	switch o {
	case OutcomeSucceeded:
		b.Succeeded++
	case OutcomeFailed:
		b.Failed++
	case OutcomeSkipped:
		b.Skipped++
	}
}
