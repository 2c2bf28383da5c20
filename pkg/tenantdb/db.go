package tenantdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/praxisworks/tenantcore/pkg/tenancy"
)

// DB hands out tenant-scoped connections from a shared, tenant-agnostic pool.
// Safety rests entirely on acquire/release symmetry: for DEDICATED-tier
// scopes the connection's search_path is switched on checkout and reset to
// the neutral schema before the connection re-enters the pool.
type DB struct {
	pool         pool
	logger       *slog.Logger
	resetTimeout time.Duration
}

// Option configures a DB.
type Option func(*DB)

// WithLogger sets the logger used for release-path failures.
func WithLogger(logger *slog.Logger) Option {
	return func(db *DB) {
		if logger != nil {
			db.logger = logger
		}
	}
}

// WithResetTimeout bounds the search_path reset executed on release.
func WithResetTimeout(d time.Duration) Option {
	return func(db *DB) {
		if d > 0 {
			db.resetTimeout = d
		}
	}
}

// New wraps a pgx pool. The pool itself stays tenant-agnostic; every checkout
// goes through Acquire so no connection can carry one tenant's namespace into
// another tenant's work.
func New(pgPool *pgxpool.Pool, opts ...Option) *DB {
	return newDB(pgxPool{pool: pgPool}, opts...)
}

func newDB(p pool, opts ...Option) *DB {
	db := &DB{
		pool:         p,
		logger:       slog.Default(),
		resetTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// Conn is a checked-out connection. It must be released exactly once.
type Conn struct {
	db     *DB
	conn   conn
	scoped bool
	done   bool
}

// Acquire checks out a connection for the scope bound in ctx. DEDICATED-tier
// scopes get their schema activated via a single SET search_path statement
// built from validator-sanitized input only. SHARED-tier and neutral scopes
// leave the namespace untouched; their isolation happens at transaction level.
func (db *DB) Acquire(ctx context.Context) (*Conn, error) {
	desc, bound := tenancy.DescriptorFromContext(ctx)

	raw, err := db.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	c := &Conn{db: db, conn: raw}
	if bound && desc.Tier == tenancy.TierDedicated {
		schema, err := tenancy.SanitizeSchemaName(desc.SchemaName)
		if err != nil {
			raw.Release()
			return nil, err
		}
		stmt := "SET search_path TO " + pgx.Identifier{schema}.Sanitize()
		if _, err := raw.Exec(ctx, stmt); err != nil {
			// Namespace state is unknown; discard rather than pool it.
			raw.Destroy()
			return nil, errors.Join(ErrAcquireScoped, err)
		}
		c.scoped = true
	}
	return c, nil
}

func (c *Conn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return c.conn.Exec(ctx, sql, args...)
}

func (c *Conn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return c.conn.Query(ctx, sql, args...)
}

func (c *Conn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return c.conn.QueryRow(ctx, sql, args...)
}

// Release resets the namespace to neutral and returns the connection to the
// pool. A connection whose reset fails is destroyed instead of pooled: a
// pooled connection must never surface another tenant's schema on its next
// checkout. Release is idempotent.
func (c *Conn) Release() {
	if c.done {
		return
	}
	c.done = true

	if !c.scoped {
		c.conn.Release()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.db.resetTimeout)
	defer cancel()

	stmt := "SET search_path TO " + pgx.Identifier{tenancy.NeutralSchema}.Sanitize()
	if _, err := c.conn.Exec(ctx, stmt); err != nil {
		c.db.logger.Error("failed to reset search_path on release, destroying connection",
			slog.String("error", err.Error()))
		c.conn.Destroy()
		return
	}
	c.conn.Release()
}

// Healthcheck returns a probe compatible with health endpoints: it verifies a
// neutral checkout round-trips through the pool.
func (db *DB) Healthcheck() func(context.Context) error {
	return func(ctx context.Context) error {
		c, err := db.Acquire(ctx)
		if err != nil {
			return fmt.Errorf("tenantdb healthcheck: %w", err)
		}
		defer c.Release()
		_, err = c.Exec(ctx, "SELECT 1")
		return err
	}
}
