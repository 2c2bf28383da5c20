package tenancy

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGDirectory is the persistent tenant directory backed by the
// org_schema_mapping table in the neutral schema. Rows are created once at
// provisioning time and are read-only from this subsystem's perspective.
type PGDirectory struct {
	pool *pgxpool.Pool
}

// NewPGDirectory creates a directory over the given pool. The pool must be a
// plain, unscoped pool: directory lookups happen before any tenant is bound
// and must never run on a tenant-scoped connection.
func NewPGDirectory(pool *pgxpool.Pool) *PGDirectory {
	return &PGDirectory{pool: pool}
}

const resolveQuery = `SELECT schema_name, active, created_at
FROM public.org_schema_mapping
WHERE external_org_id = $1`

// Resolve implements Directory.
func (d *PGDirectory) Resolve(ctx context.Context, orgID string) (*Descriptor, error) {
	if orgID == "" {
		return nil, ErrOrgNotProvisioned
	}

	desc := &Descriptor{OrgID: orgID}
	err := d.pool.QueryRow(ctx, resolveQuery, orgID).
		Scan(&desc.SchemaName, &desc.Active, &desc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrOrgNotProvisioned, orgID)
		}
		return nil, fmt.Errorf("resolve org %q: %w", orgID, err)
	}

	// A corrupt mapping row must never become part of a raw SQL statement.
	schema, err := SanitizeSchemaName(desc.SchemaName)
	if err != nil {
		return nil, err
	}
	desc.SchemaName = schema
	desc.Tier = TierForSchema(schema)

	return desc, nil
}

// PGMemberDirectory resolves memberships from the org_members table in the
// neutral schema.
type PGMemberDirectory struct {
	pool *pgxpool.Pool
}

// NewPGMemberDirectory creates a member directory over the given unscoped pool.
func NewPGMemberDirectory(pool *pgxpool.Pool) *PGMemberDirectory {
	return &PGMemberDirectory{pool: pool}
}

const resolveMemberQuery = `SELECT role
FROM public.org_members
WHERE external_org_id = $1 AND subject_id = $2`

// ResolveMember implements MemberDirectory.
func (d *PGMemberDirectory) ResolveMember(ctx context.Context, orgID string, subjectID uuid.UUID) (*Member, error) {
	member := &Member{ID: subjectID}
	err := d.pool.QueryRow(ctx, resolveMemberQuery, orgID, subjectID).Scan(&member.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: subject %s in org %s", ErrMemberNotFound, subjectID, orgID)
		}
		return nil, fmt.Errorf("resolve member %s in org %q: %w", subjectID, orgID, err)
	}
	return member, nil
}
