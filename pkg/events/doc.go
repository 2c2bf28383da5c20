// Package events delivers domain events after the originating transaction has
// durably committed, re-establishing tenant isolation for each handler.
//
// The core problem it solves: side-effect logic must run only after
// durability is guaranteed, on a worker where the originating request's
// tenant binding has already unwound. Ambient context does not survive that
// hand-off, so every envelope carries its tenant schema and org id as
// explicit payload fields, and the worker rebinds a fresh scope from them
// before invoking business logic.
//
// # Flow
//
//	rec, _ := events.NewRecorder(storage)
//
//	tx, _ := db.Begin(ctx)
//	defer tx.Rollback(ctx)
//	// ... writes ...
//	_ = rec.Record(ctx, InvoiceIssued{ID: id})  // captures tenant scope
//	if err := tx.Commit(ctx); err != nil {
//		rec.Discard()
//		return err
//	}
//	_ = rec.Dispatch(ctx)  // after commit, never before
//
// A worker registered with a typed handler picks the envelope up later,
// possibly in another process:
//
//	worker.RegisterHandlers(events.NewHandler(func(ctx context.Context, e InvoiceIssued) error {
//		// tenancy.SchemaFromContext(ctx) is the originating tenant's schema
//		return notify(ctx, e)
//	}))
//
// # Failure semantics
//
// A handler error or panic is logged and isolated: it never affects the
// committed transaction and never blocks sibling envelopes. Failed envelopes
// retry until MaxAttempts, then park as failed for inspection. An envelope
// without a tenant schema runs its handler unbound (assumed tenant-agnostic)
// and is logged as a warning rather than promoted to neutral-schema access.
//
// Two Storage implementations ship: MemoryStorage for tests and local runs,
// and PGStorage, a durable outbox over the events_outbox table with
// SKIP LOCKED claiming for multi-worker deployments.
package events
