package tenantdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/praxisworks/tenantcore/pkg/tenancy"
)

// TenantFilterKey is the transaction-local configuration parameter carrying
// the bound organization id. Row-security policies on shared-schema tables
// read it:
//
//	CREATE POLICY tenant_filter ON tenant_shared.projects
//	    USING (tenant_id = current_setting('app.tenant_id', true));
//
// The parameter is set with set_config(..., true), so it is scoped to the
// transaction and can never leak to the next checkout of the same connection.
const TenantFilterKey = "app.tenant_id"

// Tx is a tenant-scoped transaction. Commit and Rollback release the
// underlying connection back through the isolator.
type Tx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Begin starts a read-write transaction for the scope bound in ctx.
func (db *DB) Begin(ctx context.Context) (Tx, error) {
	return db.BeginTx(ctx, pgx.TxOptions{})
}

// BeginRead starts a read-only transaction. Apart from the access mode it
// behaves identically to Begin, including row filter activation.
func (db *DB) BeginRead(ctx context.Context) (Tx, error) {
	return db.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
}

// BeginTx starts a transaction and activates the tenant row filter exactly
// once, at transaction begin, if and only if the bound scope is SHARED-tier.
// For DEDICATED-tier scopes the activator is a deliberate no-op: isolation is
// already total at the namespace level, and a redundant filter there would
// only hide wiring mistakes. A SHARED-tier scope without an organization id
// is an invariant violation and fails the transaction before it starts.
func (db *DB) BeginTx(ctx context.Context, opts pgx.TxOptions) (Tx, error) {
	desc, bound := tenancy.DescriptorFromContext(ctx)
	if bound && desc.Tier == tenancy.TierShared && desc.OrgID == "" {
		return nil, ErrSharedScopeMissingOrg
	}

	c, err := db.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := c.conn.BeginTx(ctx, opts)
	if err != nil {
		c.Release()
		return nil, err
	}

	if bound && desc.Tier == tenancy.TierShared {
		if _, err := tx.Exec(ctx, "SELECT set_config($1, $2, true)", TenantFilterKey, desc.OrgID); err != nil {
			_ = tx.Rollback(ctx)
			c.Release()
			return nil, fmt.Errorf("activate tenant row filter: %w", err)
		}
	}

	return &scopedTx{tx: tx, conn: c}, nil
}

type scopedTx struct {
	tx   pgx.Tx
	conn *Conn
}

func (t *scopedTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return t.tx.Exec(ctx, sql, args...)
}

func (t *scopedTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return t.tx.Query(ctx, sql, args...)
}

func (t *scopedTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return t.tx.QueryRow(ctx, sql, args...)
}

func (t *scopedTx) Commit(ctx context.Context) error {
	err := t.tx.Commit(ctx)
	t.conn.Release()
	return err
}

// Rollback is safe to defer after Commit: a closed transaction is not an
// error, and the connection is released exactly once either way.
func (t *scopedTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	t.conn.Release()
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

// ShouldFilter reports whether queries in this scope must be constrained by
// the tenant discriminator, and the organization id to constrain on. It backs
// repositories that inject the predicate explicitly instead of relying on row
// security, keeping both mechanisms parameterized from the same binding.
func ShouldFilter(ctx context.Context) (string, bool, error) {
	desc, bound := tenancy.DescriptorFromContext(ctx)
	if !bound || desc.Tier != tenancy.TierShared {
		return "", false, nil
	}
	if desc.OrgID == "" {
		return "", false, ErrSharedScopeMissingOrg
	}
	return desc.OrgID, true, nil
}
