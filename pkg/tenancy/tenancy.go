package tenancy

import (
	"time"

	"github.com/google/uuid"
)

// Tier selects the data-isolation strategy for a tenant.
type Tier string

const (
	// TierShared keeps the tenant's rows in the shared schema, isolated by a
	// discriminator column plus a transaction-scoped row filter.
	TierShared Tier = "shared"

	// TierDedicated gives the tenant its own schema, isolated by switching the
	// connection's search_path on checkout.
	TierDedicated Tier = "dedicated"
)

// Descriptor is the resolved isolation descriptor for one organization.
// It is immutable once resolved; exactly one of the two isolation strategies
// applies to it, selected by Tier.
type Descriptor struct {
	OrgID      string    `json:"org_id"`
	SchemaName string    `json:"schema_name"`
	Tier       Tier      `json:"tier"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
}

// Member is the current user's identity inside the bound organization.
type Member struct {
	ID   uuid.UUID `json:"id"`
	Role string    `json:"role"`
}

// Claim is the verified identity claim handed in by the authentication layer.
// Credential verification itself happens upstream; this subsystem only consumes
// the result.
type Claim interface {
	// OrgID returns the external organization identifier, or "" for requests
	// that carry no organization (public or platform-level calls).
	OrgID() string

	// SubjectID returns the authenticated member's id, or uuid.Nil when the
	// request is not tied to a member (service-to-service calls).
	SubjectID() uuid.UUID
}
