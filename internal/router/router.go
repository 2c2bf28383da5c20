package router

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/praxisworks/tenantcore/pkg/httpserver"
	"github.com/praxisworks/tenantcore/pkg/requestid"
	"github.com/praxisworks/tenantcore/pkg/tenancy"
)

// HealthPath bypasses tenant binding so probes work without credentials.
const HealthPath = "/healthz"

// Deps carries everything the HTTP boundary needs. Claims and Directory are
// required; the rest is optional.
type Deps struct {
	Logger    *slog.Logger
	Claims    tenancy.ClaimFunc
	Directory tenancy.Directory
	Members   tenancy.MemberDirectory
	Cache     tenancy.Cache

	// ReadinessProbes back the /healthz endpoint (pg, redis).
	ReadinessProbes []func(context.Context) error
}

// New assembles the boundary router: recovery, request ids, tenant binding,
// health probes, and the scope introspection endpoint. Application modules
// mount their own routers on top via the returned chi.Router.
func New(deps Deps) chi.Router {
	log := deps.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	opts := []tenancy.Option{
		tenancy.WithSkipPaths(HealthPath),
		tenancy.WithLogger(log),
	}
	if deps.Cache != nil {
		opts = append(opts, tenancy.WithCache(deps.Cache))
	}
	if deps.Members != nil {
		opts = append(opts, tenancy.WithMemberDirectory(deps.Members))
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(tenancy.Middleware(deps.Claims, deps.Directory, opts...))

	r.Get(HealthPath, httpserver.HealthCheckHandler(log, deps.ReadinessProbes...))

	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(tenancy.RequireScope(nil))
		v1.Get("/scope", scopeHandler)
	})

	return r
}

type scopeResponse struct {
	OrgID  string `json:"org_id"`
	Schema string `json:"schema"`
	Tier   string `json:"tier"`
	Member *struct {
		ID   uuid.UUID `json:"id"`
		Role string    `json:"role"`
	} `json:"member,omitempty"`
}

// scopeHandler echoes the binding the middleware established, for debugging
// tenant routing from the outside.
func scopeHandler(w http.ResponseWriter, r *http.Request) {
	desc, ok := tenancy.DescriptorFromContext(r.Context())
	if !ok {
		tenancy.DefaultErrorHandler(w, r, tenancy.ErrNoOrgInScope)
		return
	}

	resp := scopeResponse{
		OrgID:  desc.OrgID,
		Schema: desc.SchemaName,
		Tier:   string(desc.Tier),
	}
	if member, err := tenancy.MemberFromContext(r.Context()); err == nil {
		resp.Member = &struct {
			ID   uuid.UUID `json:"id"`
			Role string    `json:"role"`
		}{ID: member.ID, Role: member.Role}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(resp)
}
