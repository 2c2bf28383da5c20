package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/google/uuid"
)

// PGStorage is the durable outbox implementation over the events_outbox table
// in the neutral schema. Envelopes survive process restarts, and Claim uses
// row locking so multiple workers never double-deliver.
//
// The table is tenant-agnostic on purpose: tenant identity travels in the
// envelope columns, not in namespace placement, because the worker that
// delivers an envelope re-binds from those columns.
type PGStorage struct {
	pool *pgxpool.Pool
}

// NewPGStorage creates storage over an unscoped pool.
func NewPGStorage(pool *pgxpool.Pool) *PGStorage {
	return &PGStorage{pool: pool}
}

const appendQuery = `INSERT INTO public.events_outbox
(id, name, tenant_schema, org_id, payload, status, attempts, max_attempts, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

// Append implements Storage.
func (s *PGStorage) Append(ctx context.Context, envelopes ...*Envelope) error {
	batch := &pgx.Batch{}
	for _, env := range envelopes {
		batch.Queue(appendQuery,
			env.ID, env.Name, env.TenantSchema, env.OrgID, env.Payload,
			StatusPending, env.Attempts, env.MaxAttempts, env.OccurredAt)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("append outbox envelopes: %w", err)
	}
	return nil
}

// A processing row whose lock has expired belongs to a crashed worker; it is
// claimable again, otherwise those envelopes would be lost forever.
const claimQuery = `UPDATE public.events_outbox SET
	status = $1,
	locked_by = $2,
	locked_until = now() + make_interval(secs => $3)
WHERE id = (
	SELECT id FROM public.events_outbox
	WHERE (status = $4 OR status = $1)
	  AND (locked_until IS NULL OR locked_until < now())
	ORDER BY occurred_at
	FOR UPDATE SKIP LOCKED
	LIMIT 1
)
RETURNING id, name, tenant_schema, org_id, payload, status, attempts, max_attempts, occurred_at`

// Claim implements Storage.
func (s *PGStorage) Claim(ctx context.Context, workerID uuid.UUID, lockDuration time.Duration) (*Envelope, error) {
	env := &Envelope{}
	err := s.pool.QueryRow(ctx, claimQuery, StatusProcessing, workerID, lockDuration.Seconds(), StatusPending).
		Scan(&env.ID, &env.Name, &env.TenantSchema, &env.OrgID, &env.Payload,
			&env.Status, &env.Attempts, &env.MaxAttempts, &env.OccurredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoEventToClaim
		}
		return nil, fmt.Errorf("claim outbox envelope: %w", err)
	}
	return env, nil
}

const completeQuery = `UPDATE public.events_outbox
SET status = $1, locked_until = NULL, processed_at = now()
WHERE id = $2`

// Complete implements Storage.
func (s *PGStorage) Complete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.pool.Exec(ctx, completeQuery, StatusCompleted, id); err != nil {
		return fmt.Errorf("complete outbox envelope: %w", err)
	}
	return nil
}

const failQuery = `UPDATE public.events_outbox SET
	attempts = attempts + 1,
	last_error = $1,
	locked_until = NULL,
	status = CASE WHEN attempts + 1 >= max_attempts THEN $2::text ELSE $3::text END
WHERE id = $4`

// Fail implements Storage.
func (s *PGStorage) Fail(ctx context.Context, id uuid.UUID, errMsg string) error {
	if _, err := s.pool.Exec(ctx, failQuery, errMsg, StatusFailed, StatusPending, id); err != nil {
		return fmt.Errorf("fail outbox envelope: %w", err)
	}
	return nil
}
