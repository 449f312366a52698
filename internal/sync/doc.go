// Package sync implements the tender synchronization engine.
//
// A sync cycle has two phases:
//
//   - Phase 1 (Manager.PerformSync) lists yesterday's tenders from the remote
//     API, keeps the eligible ones (published and closing in the future), deletes
//     stored tenders whose remote status is no longer published and upserts the
//     eligible ones so they are immediately visible.
//   - Phase 2 (Manager.Enrich) fetches the detail of each eligible tender, one
//     at a time with a pause between requests, and merges buyer data,
//     description and the complete item list into the stored record.
//
// Per-record failures are logged and counted in a ReconcileReport or
// BatchReport; they never abort a batch. Only the failure to list the day's
// tenders ends a cycle, reported as an *Error with ReasonFetchFailed.
//
// # Coordinator Package
//
// The sync/coordinator subpackage schedules cycles and cleanups, owns the
// single-flight guard around Phase 1 and runs Phase 2 in the background. The
// guard does not cover Phase 2: a later Phase 1 may start while a previous
// enrichment batch is still draining. Both phases write whole records through
// the store's atomic upsert, so interleaving resolves as last writer wins.
package sync
