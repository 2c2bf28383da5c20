package tenancy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxisworks/tenantcore/pkg/tenancy"
)

func TestSanitizeSchemaName(t *testing.T) {
	t.Parallel()

	t.Run("accepts well-known literals and dedicated pattern", func(t *testing.T) {
		t.Parallel()

		for _, valid := range []string{"public", "tenant_shared", "tenant_0123456789ab", "tenant_aaaaaaaaaaaa"} {
			got, err := tenancy.SanitizeSchemaName(valid)
			require.NoError(t, err, valid)
			assert.Equal(t, valid, got)
		}
	})

	t.Run("rejects everything else", func(t *testing.T) {
		t.Parallel()

		invalid := []string{
			"",
			"tenant_shared; DROP TABLE x",
			"TENANT_ABC",
			"tenant_0123456789AB",  // uppercase hex
			"tenant_0123456789abc", // too long
			"tenant_0123456789a",   // too short
			"public; --",
			`tenant_"aaaaaaaaaaaa"`,
			"pg_catalog",
		}
		for _, raw := range invalid {
			got, err := tenancy.SanitizeSchemaName(raw)
			require.ErrorIs(t, err, tenancy.ErrInvalidSchemaName, raw)
			assert.Empty(t, got)
		}
	})
}

func TestTierForSchema(t *testing.T) {
	t.Parallel()

	assert.Equal(t, tenancy.TierShared, tenancy.TierForSchema("tenant_shared"))
	assert.Equal(t, tenancy.TierDedicated, tenancy.TierForSchema("tenant_0123456789ab"))
}
