package tenancy

import "errors"

var (
	// ErrOrgNotProvisioned is returned when an org claim has no directory entry.
	// The request must be rejected at the boundary; it never falls through to
	// the neutral schema.
	ErrOrgNotProvisioned = errors.New("organization not provisioned")

	// ErrInactiveOrg is returned when the organization exists but is suspended.
	ErrInactiveOrg = errors.New("organization is suspended")

	// ErrInvalidSchemaName is returned by SanitizeSchemaName for any schema
	// string outside the allowed shape. Treated as a security fault: the
	// operation that would have used the name is aborted.
	ErrInvalidSchemaName = errors.New("invalid tenant schema name")

	// ErrNoOrgInScope is returned when code expects an organization to be
	// bound but none is. This is an invariant violation, not a user error.
	ErrNoOrgInScope = errors.New("no organization bound in scope")

	// ErrNoMemberInScope is returned when code expects a member identity to be
	// bound but none is. Like ErrNoOrgInScope it signals a routing or wiring
	// bug rather than an access denial.
	ErrNoMemberInScope = errors.New("no member bound in scope")

	// ErrMemberNotFound is returned by a MemberDirectory when the claim's
	// subject has no membership in the bound organization.
	ErrMemberNotFound = errors.New("member not found in organization")
)
