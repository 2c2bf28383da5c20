package router

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/praxisworks/tenantcore/pkg/tenancy"
)

const (
	orgHeader     = "X-Org-ID"
	subjectHeader = "X-Subject-ID"
)

type headerClaim struct {
	org     string
	subject uuid.UUID
}

func (c headerClaim) OrgID() string        { return c.org }
func (c headerClaim) SubjectID() uuid.UUID { return c.subject }

// HeaderClaims reads the identity a trusted gateway injected after verifying
// the caller: X-Org-ID for the organization and X-Subject-ID for the member.
// It must only be used behind a gateway that strips these headers from
// external traffic. Requests without X-Org-ID carry no claim.
func HeaderClaims(r *http.Request) (tenancy.Claim, error) {
	org := r.Header.Get(orgHeader)
	if org == "" {
		return nil, nil
	}

	claim := headerClaim{org: org}
	if raw := r.Header.Get(subjectHeader); raw != "" {
		id, err := uuid.Parse(raw)
		if err == nil {
			claim.subject = id
		}
	}
	return claim, nil
}
