package tenancy

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// ClaimFunc extracts the verified identity claim from a request. A nil claim
// (with nil error) means the request carries no identity; the request then
// proceeds without a tenant binding.
type ClaimFunc func(r *http.Request) (Claim, error)

// Middleware is the request boundary binder: it resolves the claim's org id
// through the directory (normally a ResolutionCache), rejects requests for
// unprovisioned or suspended organizations, and runs the rest of the request
// inside a tenant binding. When a member directory is configured, the claim's
// subject is resolved within the bound organization and bound as well, so
// downstream authorization checks can read the role from the scope.
//
// An unresolvable org is always a rejection; the request never falls through
// to the neutral schema.
func Middleware(claims ClaimFunc, directory Directory, opts ...Option) func(http.Handler) http.Handler {
	cfg := &config{
		errorHandler:  DefaultErrorHandler,
		requireActive: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	resolve := directory
	if cfg.cache != nil {
		resolve = NewResolutionCacheWithStore(directory, cfg.cache)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			claim, err := claims(r)
			if err != nil {
				cfg.errorHandler(w, r, err)
				return
			}
			if claim == nil || claim.OrgID() == "" {
				next.ServeHTTP(w, r)
				return
			}

			desc, err := resolve.Resolve(r.Context(), claim.OrgID())
			if err != nil {
				cfg.errorHandler(w, r, err)
				return
			}
			if cfg.requireActive && !desc.Active {
				cfg.errorHandler(w, r, ErrInactiveOrg)
				return
			}

			ctx := WithDescriptor(r.Context(), desc)

			if cfg.members != nil && claim.SubjectID() != uuid.Nil {
				member, err := cfg.members.ResolveMember(ctx, desc.OrgID, claim.SubjectID())
				if err != nil {
					cfg.errorHandler(w, r, err)
					return
				}
				ctx = WithMember(ctx, member)
			}

			if cfg.logger != nil {
				cfg.logger.DebugContext(ctx, "tenant scope bound",
					slog.String("org_id", desc.OrgID),
					slog.String("schema", desc.SchemaName))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireScope ensures a tenant binding is present, for routes that must not
// run unbound. The error surfaces as an invariant violation, not a 404.
func RequireScope(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = DefaultErrorHandler
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := DescriptorFromContext(r.Context()); !ok {
				errorHandler(w, r, ErrNoOrgInScope)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// DefaultErrorHandler translates the tenancy error taxonomy into HTTP
// responses with machine-readable codes. Invariant violations map to 500s so
// operators can tell wiring bugs apart from legitimate access denials.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrOrgNotProvisioned):
		writeError(w, http.StatusForbidden, "organization_not_provisioned")
	case errors.Is(err, ErrInactiveOrg):
		writeError(w, http.StatusForbidden, "organization_suspended")
	case errors.Is(err, ErrMemberNotFound):
		writeError(w, http.StatusForbidden, "membership_not_found")
	case errors.Is(err, ErrInvalidSchemaName):
		writeError(w, http.StatusInternalServerError, "invalid_tenant_schema")
	case errors.Is(err, ErrNoOrgInScope), errors.Is(err, ErrNoMemberInScope):
		writeError(w, http.StatusInternalServerError, "scope_not_bound")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error")
	}
}

func writeError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + code + `"}`))
}
