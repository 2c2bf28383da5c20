package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage is an in-process Storage for tests and local development.
type MemoryStorage struct {
	mu        sync.Mutex
	envelopes map[uuid.UUID]*Envelope
	order     []uuid.UUID
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{envelopes: make(map[uuid.UUID]*Envelope)}
}

// Append implements Storage.
func (ms *MemoryStorage) Append(_ context.Context, envelopes ...*Envelope) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	for _, env := range envelopes {
		cp := *env
		cp.Status = StatusPending
		ms.envelopes[cp.ID] = &cp
		ms.order = append(ms.order, cp.ID)
	}
	return nil
}

// Claim implements Storage. Envelopes are claimed in append order. A
// processing envelope whose lock has expired belongs to a crashed worker and
// is claimable again.
func (ms *MemoryStorage) Claim(_ context.Context, _ uuid.UUID, lockDuration time.Duration) (*Envelope, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	for _, id := range ms.order {
		env := ms.envelopes[id]
		switch env.Status {
		case StatusPending:
			if env.LockedUntil != nil && env.LockedUntil.After(now) {
				continue
			}
		case StatusProcessing:
			if env.LockedUntil == nil || env.LockedUntil.After(now) {
				continue
			}
		default:
			continue
		}
		until := now.Add(lockDuration)
		env.Status = StatusProcessing
		env.LockedUntil = &until
		cp := *env
		return &cp, nil
	}
	return nil, ErrNoEventToClaim
}

// Complete implements Storage.
func (ms *MemoryStorage) Complete(_ context.Context, id uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if env, ok := ms.envelopes[id]; ok {
		env.Status = StatusCompleted
		env.LockedUntil = nil
	}
	return nil
}

// Fail implements Storage. The envelope returns to pending until its attempts
// run out, then parks as failed.
func (ms *MemoryStorage) Fail(_ context.Context, id uuid.UUID, errMsg string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	env, ok := ms.envelopes[id]
	if !ok {
		return nil
	}
	env.Attempts++
	env.LastError = &errMsg
	env.LockedUntil = nil
	if env.Attempts >= env.MaxAttempts {
		env.Status = StatusFailed
	} else {
		env.Status = StatusPending
	}
	return nil
}

// Snapshot returns a copy of one envelope, for assertions.
func (ms *MemoryStorage) Snapshot(id uuid.UUID) (*Envelope, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	env, ok := ms.envelopes[id]
	if !ok {
		return nil, false
	}
	cp := *env
	return &cp, true
}

// Pending counts envelopes still awaiting delivery.
func (ms *MemoryStorage) Pending() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	n := 0
	for _, env := range ms.envelopes {
		if env.Status == StatusPending || env.Status == StatusProcessing {
			n++
		}
	}
	return n
}
