// Package coordinator schedules and runs tender synchronization.
//
// It sits on top of sync.Manager, which owns the domain logic, and adds:
//
//   - hourly sync and daily cleanup schedules aligned to the wall clock
//   - the single-flight guard shared by scheduled and manual triggers
//   - the lifecycle of detached enrichment batches
//   - status tracking and persistence
//
// # Cycle
//
// A cycle takes the guard, runs Phase 1 (fetch, filter, reconcile)
// synchronously, starts Phase 2 (enrichment) on a goroutine and releases the
// guard as soon as Phase 1 returns. A trigger that finds the guard held is
// dropped with an info log; triggers never queue.
//
//	coord := coordinator.New(manager, status.NewFileStatusPersistence(path), &cfg.Sync)
//	go func() { _ = coord.Start(ctx) }()
//	...
//	switch coord.TriggerAsync() {
//	case coordinator.TriggerStarted:
//	case coordinator.TriggerAlreadyInProgress:
//	}
//	...
//	_ = coord.Stop()
//
// # Overlapping enrichment
//
// The guard does not cover Phase 2. A batch that is still draining when the
// next hour starts runs alongside that cycle's Phase 1, and both write the
// same records.
//
// Every Phase 1 upsert rebuilds a record from its summary, and summaries
// carry no items and usually no buyer or region. Any record Phase 1 touches
// therefore loses its merged detail (items, buyer name and RUT, region and
// full description) until a later Phase 2 reaches it again. This happens on
// every hourly cycle, not only when batches overlap, so between the end of
// Phase 1 and the enrichment of a record, readers see summary data for it.
//
// Phase 2 writes with store.TenderStore.Update, so a record that Phase 1
// deleted while its detail was being fetched stays deleted and is counted
// as skipped.
//
// # Shutdown
//
// Enrichment goroutines are bound to the coordinator lifecycle rather than to
// the trigger that started them. Stop cancels that lifecycle, which stops any
// batch between records, and waits for the schedules and every batch to
// return.
package coordinator
