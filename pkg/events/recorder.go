package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/praxisworks/tenantcore/pkg/tenancy"
)

// Recorder collects domain events raised during one unit of work. Events are
// held in memory until the owning transaction commits, then handed to storage
// with Dispatch; a rolled-back transaction simply discards them. One recorder
// belongs to one transaction and must not be shared across units of work.
type Recorder struct {
	storage Storage

	mu         sync.Mutex
	pending    []*Envelope
	dispatched bool
}

// NewRecorder creates a recorder writing to storage on dispatch.
func NewRecorder(storage Storage) (*Recorder, error) {
	if storage == nil {
		return nil, ErrStorageNil
	}
	return &Recorder{storage: storage}, nil
}

// Record queues an event named after the payload's struct type. The tenant
// schema and org id bound in ctx are captured into the envelope at record
// time; an unbound ctx produces a tenant-agnostic envelope.
func (r *Recorder) Record(ctx context.Context, payload any) error {
	if payload == nil {
		return ErrPayloadNil
	}
	return r.RecordNamed(ctx, qualifiedStructName(payload), payload)
}

// RecordNamed queues an event under an explicit name.
func (r *Recorder) RecordNamed(ctx context.Context, name string, payload any) error {
	if payload == nil {
		return ErrPayloadNil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", name, err)
	}

	env := &Envelope{
		ID:          uuid.New(),
		Name:        name,
		Payload:     raw,
		Status:      StatusPending,
		MaxAttempts: DefaultMaxAttempts,
		OccurredAt:  time.Now(),
	}

	// Capture the scope explicitly: the handler will run after this binding
	// has unwound, on a worker that re-binds from these fields.
	if desc, ok := tenancy.DescriptorFromContext(ctx); ok {
		env.TenantSchema = desc.SchemaName
		env.OrgID = desc.OrgID
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dispatched {
		return ErrAlreadyDispatched
	}
	r.pending = append(r.pending, env)
	return nil
}

// Dispatch hands the collected events to storage. Call it strictly after the
// originating transaction has committed: dispatch failures are the caller's
// to log, and must never roll back the committed write.
func (r *Recorder) Dispatch(ctx context.Context) error {
	r.mu.Lock()
	if r.dispatched {
		r.mu.Unlock()
		return ErrAlreadyDispatched
	}
	r.dispatched = true
	pending := r.pending
	r.pending = nil
	r.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}
	return r.storage.Append(ctx, pending...)
}

// Discard drops the collected events, for the rollback path.
func (r *Recorder) Discard() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = nil
	r.dispatched = true
}

// Len reports how many events are queued.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
