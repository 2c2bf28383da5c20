// Package tenancy implements tenant resolution and request-scoped context
// propagation for a multi-tenant backend sharing one database server.
//
// Every organization is isolated by one of two strategies, selected per tenant
// by its Descriptor.Tier:
//
//   - TierDedicated: the tenant owns a schema matching ^tenant_[0-9a-f]{12}$;
//     isolation happens by switching the connection's search_path.
//   - TierShared: the tenant's rows live in the tenant_shared schema with a
//     tenant_id discriminator column; isolation happens through a
//     transaction-scoped row filter.
//
// Exactly one of the two mechanisms is active for any bound tenant, never both
// and never neither. The unauthenticated/neutral case has no tenant context at
// all and operates on the public schema.
//
// # Resolution
//
// A Directory maps external org ids to descriptors; PGDirectory backs it with
// the org_schema_mapping table. ResolutionCache wraps any Directory with
// read-through, compute-once-per-key caching; concurrent first-time lookups
// of the same org perform a single directory query.
//
// # Context propagation
//
// The request scope rides on context.Context: WithDescriptor and WithMember
// bind values for the dynamic extent of a call graph, and the binding unwinds
// on every exit path because contexts are immutable. Accessors fail fast when
// a required value is unbound; SchemaFromContext alone falls back to
// NeutralSchema, the deliberate default for unauthenticated and internal
// calls. Work handed to another goroutine must re-bind explicitly; tenant
// context never leaks across workers (see the events package).
//
// # Request boundary
//
// Middleware binds the scope at the HTTP boundary:
//
//	mw := tenancy.Middleware(claimFromSession, tenancy.NewResolutionCache(dir),
//		tenancy.WithMemberDirectory(members),
//		tenancy.WithSkipPaths("/healthz"),
//	)
//	router.Use(mw)
//
// A claim whose organization has no directory entry is rejected with a 403 and
// the machine-readable code "organization_not_provisioned"; the request never
// falls back to the neutral schema.
//
// # Schema name safety
//
// SanitizeSchemaName is the single guard between stored schema names and raw
// SQL. Anything that splices a schema name into a statement must pass the name
// through it first.
package tenancy
