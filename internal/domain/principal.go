// Package domain – resolved principal identities.
//
// A Principal is the outcome of validating a session token. It is built fresh
// on every successful authentication, lives only as long as its connection,
// and is never persisted by the messaging core.
package domain

import "fmt"

// PrincipalKind is the closed set of identities that may hold a connection.
// SenderSystem is a sender kind only: the platform itself authoring audit
// messages, never a connected party.
type PrincipalKind string

const (
	KindEmployer   PrincipalKind = "employer"
	KindCandidate  PrincipalKind = "candidate"
	KindConsultant PrincipalKind = "consultant"
	KindAdmin      PrincipalKind = "admin"

	SenderSystem PrincipalKind = "system"
)

// Valid reports whether k is a connectable principal kind.
func (k PrincipalKind) Valid() bool {
	switch k {
	case KindEmployer, KindCandidate, KindConsultant, KindAdmin:
		return true
	}
	return false
}

// Principal is the resolved, authenticated identity of a connected party.
//
// Fields:
//   - Kind: which of the four principal variants this is.
//   - ID: stable identifier of the underlying account.
//   - Email / Name: display attributes.
//   - OrganizationID: set only for employer principals.
//   - RegionIDs: set only for regional admins; empty for all other admins.
type Principal struct {
	Kind           PrincipalKind
	ID             string
	Email          string
	Name           string
	OrganizationID string
	RegionIDs      []string
}

// Identity returns the composite key under which this principal's live
// connection is addressed.
func (p *Principal) Identity() ConnIdentity {
	return ConnIdentity{Kind: p.Kind, ID: p.ID}
}

// ConnIdentity is the (kind, id) pair addressing a specific principal's live
// connection. At most one connection is registered under a given identity at
// any instant.
type ConnIdentity struct {
	Kind PrincipalKind
	ID   string
}

// String renders the identity as "kind:id", handy for log fields and map
// diagnostics.
func (ci ConnIdentity) String() string {
	return fmt.Sprintf("%s:%s", ci.Kind, ci.ID)
}
