package tenancy

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Private key types prevent collisions with other packages' context values.
type (
	descriptorCtxKey struct{}
	memberCtxKey     struct{}
	customerCtxKey   struct{}
)

// WithDescriptor binds a tenant descriptor for the remainder of the call graph
// rooted at the returned context. Bindings nest: an inner WithDescriptor
// shadows the outer one and the outer value is visible again once the inner
// context goes out of scope. Nothing is ever mutated in place.
func WithDescriptor(ctx context.Context, d *Descriptor) context.Context {
	return context.WithValue(ctx, descriptorCtxKey{}, d)
}

// WithGlobalScope binds the neutral schema explicitly. Use it where code
// intentionally operates on platform-global data, so that intent stays
// distinguishable from "nothing was ever bound".
func WithGlobalScope(ctx context.Context) context.Context {
	return WithDescriptor(ctx, &Descriptor{SchemaName: NeutralSchema, Active: true})
}

// DescriptorFromContext retrieves the bound tenant descriptor.
func DescriptorFromContext(ctx context.Context) (*Descriptor, bool) {
	d, ok := ctx.Value(descriptorCtxKey{}).(*Descriptor)
	if !ok || d == nil {
		return nil, false
	}
	return d, true
}

// SchemaFromContext returns the bound tenant schema name. Unlike every other
// accessor in this package it does not fail when nothing is bound: the neutral
// schema is the deliberate default for unauthenticated and internal calls.
func SchemaFromContext(ctx context.Context) string {
	if d, ok := DescriptorFromContext(ctx); ok && d.SchemaName != "" {
		return d.SchemaName
	}
	return NeutralSchema
}

// OrgIDFromContext returns the bound external organization id. Reading it with
// no organization bound is an invariant violation and fails fast with
// ErrNoOrgInScope rather than returning a zero value.
func OrgIDFromContext(ctx context.Context) (string, error) {
	d, ok := DescriptorFromContext(ctx)
	if !ok || d.OrgID == "" {
		return "", ErrNoOrgInScope
	}
	return d.OrgID, nil
}

// WithMember binds the current member identity and org-level role.
func WithMember(ctx context.Context, m *Member) context.Context {
	return context.WithValue(ctx, memberCtxKey{}, m)
}

// MemberFromContext returns the bound member identity. Fails fast with
// ErrNoMemberInScope when none is bound so that routing bugs surface as
// invariant violations instead of nil dereferences downstream.
func MemberFromContext(ctx context.Context) (*Member, error) {
	m, ok := ctx.Value(memberCtxKey{}).(*Member)
	if !ok || m == nil {
		return nil, ErrNoMemberInScope
	}
	return m, nil
}

// RoleFromContext returns the bound member's org-level role.
func RoleFromContext(ctx context.Context) (string, error) {
	m, err := MemberFromContext(ctx)
	if err != nil {
		return "", err
	}
	return m.Role, nil
}

// WithCustomer binds a customer-portal contact id for portal requests.
func WithCustomer(ctx context.Context, customerID uuid.UUID) context.Context {
	return context.WithValue(ctx, customerCtxKey{}, customerID)
}

// CustomerFromContext retrieves the portal contact id, if any. Customer scope
// is optional, so absence is not an error.
func CustomerFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(customerCtxKey{}).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.UUID{}, false
	}
	return id, true
}

// LoggerExtractor returns a logger ContextExtractor injecting the bound
// tenant's org id and schema into every log record.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		d, ok := DescriptorFromContext(ctx)
		if !ok || d.OrgID == "" {
			return slog.Attr{}, false
		}
		return slog.Group("tenant",
			slog.String("org_id", d.OrgID),
			slog.String("schema", d.SchemaName),
		), true
	}
}

// MemberLoggerExtractor returns a logger ContextExtractor injecting the bound
// member id into every log record.
func MemberLoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		m, err := MemberFromContext(ctx)
		if err != nil {
			return slog.Attr{}, false
		}
		return slog.String("member_id", m.ID.String()), true
	}
}
