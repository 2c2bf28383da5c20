package tenancy

import (
	"context"

	"github.com/google/uuid"
)

// Directory maps external organization identifiers to isolation descriptors.
// Implementations must be queryable without a tenant context already bound
// (the directory is used to establish one), so they always execute against the
// neutral schema.
type Directory interface {
	// Resolve returns the descriptor for the given external org id.
	// Returns ErrOrgNotProvisioned if no mapping exists.
	Resolve(ctx context.Context, orgID string) (*Descriptor, error)
}

// MemberDirectory resolves the authenticated subject to a membership inside
// the already-bound organization. It runs as a secondary resolution after the
// tenant binding is in place.
type MemberDirectory interface {
	// ResolveMember returns the member record for subjectID within orgID.
	// Returns ErrMemberNotFound if the subject has no membership there.
	ResolveMember(ctx context.Context, orgID string, subjectID uuid.UUID) (*Member, error)
}

// DirectoryFunc adapts a function to the Directory interface.
type DirectoryFunc func(ctx context.Context, orgID string) (*Descriptor, error)

func (f DirectoryFunc) Resolve(ctx context.Context, orgID string) (*Descriptor, error) {
	return f(ctx, orgID)
}
