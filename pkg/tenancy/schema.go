package tenancy

import (
	"fmt"
	"regexp"
)

const (
	// NeutralSchema is the namespace used when no tenant is bound. It also
	// holds the platform-global tables (org_schema_mapping among them).
	NeutralSchema = "public"

	// SharedSchema is the single namespace holding rows for every SHARED-tier
	// tenant, discriminated by tenant_id.
	SharedSchema = "tenant_shared"
)

// dedicatedSchemaRe is the only accepted shape for per-tenant schema names.
var dedicatedSchemaRe = regexp.MustCompile(`^tenant_[0-9a-f]{12}$`)

// SanitizeSchemaName validates a schema name before it may be spliced into a
// raw SQL statement. It accepts only the two well-known literals and names
// matching the dedicated-schema pattern; everything else is rejected with
// ErrInvalidSchemaName. Every consumer that switches a connection's namespace
// must go through this function first.
func SanitizeSchemaName(raw string) (string, error) {
	switch raw {
	case NeutralSchema, SharedSchema:
		return raw, nil
	}
	if dedicatedSchemaRe.MatchString(raw) {
		return raw, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSchemaName, raw)
}

// TierForSchema derives the isolation tier implied by a schema name.
// The mapping table stores only the schema name; the tier is a function of it.
func TierForSchema(schema string) Tier {
	if schema == SharedSchema {
		return TierShared
	}
	return TierDedicated
}
