package tenantdb

import (
	"context"

	"github.com/praxisworks/tenantcore/pkg/tenancy"
)

// TenantAware marks entities that live in the shared schema and carry the
// tenant_id discriminator column. Dedicated-schema entities do not implement
// it; schema-level separation already isolates them.
type TenantAware interface {
	TenantID() string
	SetTenantID(orgID string)
}

// Stamp sets the discriminator on a new entity before its first persistence.
// For SHARED-tier scopes the bound organization id is stamped; for DEDICATED
// and neutral scopes the discriminator stays unset. An already-stamped entity
// is left alone: the stamp is written once, at creation.
//
// Repositories call Stamp before the INSERT; without the stamp the row filter
// would have nothing to match on.
func Stamp(ctx context.Context, e TenantAware) error {
	desc, bound := tenancy.DescriptorFromContext(ctx)
	if !bound || desc.Tier != tenancy.TierShared {
		return nil
	}
	if desc.OrgID == "" {
		return ErrSharedScopeMissingOrg
	}
	if e.TenantID() == "" {
		e.SetTenantID(desc.OrgID)
	}
	return nil
}
