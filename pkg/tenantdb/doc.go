// Package tenantdb enforces tenant isolation at the storage-connection level.
//
// It wraps a single tenant-agnostic pgx pool and applies the isolation
// strategy of the scope bound in the context (see the tenancy package) on
// every checkout:
//
//   - DEDICATED tier: Acquire switches the connection's search_path to the
//     tenant's schema (sanitized input only) and Release resets it to the
//     neutral schema before the connection returns to the pool. A connection
//     whose reset fails is destroyed, never recycled.
//   - SHARED tier: the namespace is left alone; BeginTx activates the tenant
//     row filter instead, setting the transaction-local app.tenant_id
//     parameter that row-security policies match against. A SHARED scope with
//     no organization bound fails the transaction rather than silently
//     querying every tenant's rows.
//   - Neutral (no binding): plain checkouts against the public schema.
//
// Stamp writes the tenant_id discriminator onto new shared-schema entities so
// the row filter has something to match. ShouldFilter serves repositories
// that inject the discriminator predicate into SQL explicitly.
//
// Typical transaction flow:
//
//	tx, err := db.Begin(ctx)
//	if err != nil {
//		return err
//	}
//	defer tx.Rollback(ctx)
//
//	invoice := &Invoice{...}
//	if err := tenantdb.Stamp(ctx, invoice); err != nil {
//		return err
//	}
//	// ... INSERT using tx ...
//	return tx.Commit(ctx)
package tenantdb
