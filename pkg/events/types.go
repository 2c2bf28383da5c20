package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status tracks an envelope through the dispatch lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// DefaultMaxAttempts is how many times a handler may fail before the
// envelope is parked as failed.
const DefaultMaxAttempts int8 = 3

// Envelope is a domain event queued for delivery after the originating
// transaction commits. TenantSchema and OrgID travel inside the payload
// explicitly: by the time a handler runs, the originating request's scope has
// already unwound, and ambient context must never be trusted to survive a
// worker hand-off.
type Envelope struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	TenantSchema string          `json:"tenant_schema,omitempty"`
	OrgID        string          `json:"org_id,omitempty"`
	Payload      json.RawMessage `json:"payload"`
	Status       Status          `json:"status"`
	Attempts     int8            `json:"attempts"`
	MaxAttempts  int8            `json:"max_attempts"`
	LockedUntil  *time.Time      `json:"locked_until,omitempty"`
	LastError    *string         `json:"last_error,omitempty"`
	OccurredAt   time.Time       `json:"occurred_at"`
}
