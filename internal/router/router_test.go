package router_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxisworks/tenantcore/internal/router"
	"github.com/praxisworks/tenantcore/pkg/requestid"
	"github.com/praxisworks/tenantcore/pkg/tenancy"
)

type staticDirectory map[string]*tenancy.Descriptor

func (d staticDirectory) Resolve(_ context.Context, orgID string) (*tenancy.Descriptor, error) {
	desc, ok := d[orgID]
	if !ok {
		return nil, tenancy.ErrOrgNotProvisioned
	}
	return desc, nil
}

type staticMembers map[uuid.UUID]*tenancy.Member

func (m staticMembers) ResolveMember(_ context.Context, _ string, subject uuid.UUID) (*tenancy.Member, error) {
	member, ok := m[subject]
	if !ok {
		return nil, tenancy.ErrMemberNotFound
	}
	return member, nil
}

func testDeps() (router.Deps, uuid.UUID) {
	memberID := uuid.New()
	return router.Deps{
		Claims: router.HeaderClaims,
		Directory: staticDirectory{
			"org_1": {
				OrgID:      "org_1",
				SchemaName: "tenant_0123456789ab",
				Tier:       tenancy.TierDedicated,
				Active:     true,
				CreatedAt:  time.Now(),
			},
		},
		Members: staticMembers{
			memberID: {ID: memberID, Role: "admin"},
		},
	}, memberID
}

func TestRouter_Healthz(t *testing.T) {
	t.Parallel()

	deps, _ := testDeps()
	deps.ReadinessProbes = []func(context.Context) error{
		func(context.Context) error { return nil },
	}
	handler := router.New(deps)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, router.HealthPath, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "READY", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(requestid.Header))
}

func TestRouter_HealthzNotReady(t *testing.T) {
	t.Parallel()

	deps, _ := testDeps()
	deps.ReadinessProbes = []func(context.Context) error{
		func(context.Context) error { return errors.New("pg down") },
	}
	handler := router.New(deps)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, router.HealthPath, nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRouter_ScopeBound(t *testing.T) {
	t.Parallel()

	deps, memberID := testDeps()
	handler := router.New(deps)

	req := httptest.NewRequest(http.MethodGet, "/v1/scope", nil)
	req.Header.Set("X-Org-ID", "org_1")
	req.Header.Set("X-Subject-ID", memberID.String())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"org_id":"org_1","schema":"tenant_0123456789ab","tier":"dedicated","member":{"id":"`+memberID.String()+`","role":"admin"}}`,
		rec.Body.String())
}

func TestRouter_ScopeUnbound(t *testing.T) {
	t.Parallel()

	deps, _ := testDeps()
	handler := router.New(deps)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/scope", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"scope_not_bound"}`, rec.Body.String())
}

func TestRouter_UnprovisionedOrg(t *testing.T) {
	t.Parallel()

	deps, _ := testDeps()
	handler := router.New(deps)

	req := httptest.NewRequest(http.MethodGet, "/v1/scope", nil)
	req.Header.Set("X-Org-ID", "org_unknown")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"organization_not_provisioned"}`, rec.Body.String())
}

func TestHeaderClaims(t *testing.T) {
	t.Parallel()

	t.Run("no org header means no claim", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		claim, err := router.HeaderClaims(req)
		require.NoError(t, err)
		assert.Nil(t, claim)
	})

	t.Run("invalid subject id is dropped, org kept", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Org-ID", "org_1")
		req.Header.Set("X-Subject-ID", "not-a-uuid")

		claim, err := router.HeaderClaims(req)
		require.NoError(t, err)
		require.NotNil(t, claim)
		assert.Equal(t, "org_1", claim.OrgID())
		assert.Equal(t, uuid.Nil, claim.SubjectID())
	})
}
