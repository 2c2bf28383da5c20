// Package pg bootstraps the shared PostgreSQL pool: env-driven configuration,
// connection with retry, neutral-schema migrations via goose, a healthcheck
// probe, and error classifiers used by the tenancy directory and the outbox.
//
// The pool this package opens is tenant-agnostic by design. Anything that
// runs on behalf of a tenant must check connections out through the tenantdb
// package, which applies and clears the tenant's namespace per checkout.
package pg
