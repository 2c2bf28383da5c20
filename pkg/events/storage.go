package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Storage persists envelopes between the committing transaction and the
// consuming worker.
type Storage interface {
	// Append stores new pending envelopes. Called by the recorder after the
	// originating transaction has committed.
	Append(ctx context.Context, envelopes ...*Envelope) error

	// Claim atomically takes the next pending envelope, locking it for
	// lockDuration. Returns ErrNoEventToClaim when nothing is due.
	Claim(ctx context.Context, workerID uuid.UUID, lockDuration time.Duration) (*Envelope, error)

	// Complete marks an envelope as delivered.
	Complete(ctx context.Context, id uuid.UUID) error

	// Fail records a handler failure. The envelope is retried until its
	// attempts are exhausted, then parked as failed.
	Fail(ctx context.Context, id uuid.UUID, errMsg string) error
}
