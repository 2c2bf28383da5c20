package tenantdb

import "errors"

var (
	// ErrSharedScopeMissingOrg is returned when a SHARED-tier scope reaches
	// the storage layer without an organization id bound. Skipping the row
	// filter silently would expose every tenant's rows, so the transaction
	// fails instead.
	ErrSharedScopeMissingOrg = errors.New("shared-tier scope has no organization bound")

	// ErrAcquireScoped is returned when switching a checked-out connection to
	// the tenant's namespace fails.
	ErrAcquireScoped = errors.New("failed to scope connection to tenant schema")
)
