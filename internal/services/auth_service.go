// Package services – AuthService
//
// This file implements the principal resolver: it turns the session cookies
// present on a connection handshake into one resolved Principal, or
// ErrUnauthenticated. Four credential slots are checked in a fixed priority
// order (employer, candidate, consultant, admin), short-circuiting on the
// first slot that is present and validly resolved.
//
// Each slot validates the same way: look up the session by token, reject if
// absent or expired, fetch the owning account, reject if absent, then bump
// the session's last-activity timestamp (best effort) and build the
// Principal. Regional admins additionally get their assigned region IDs.
//
// Resolution is total: every failure collapses to ErrUnauthenticated so the
// connection handler never has to distinguish "bad token" from "expired"
// on the wire. The distinction is preserved in server-side logs.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/talentwire/go-messaging-core/internal/domain"
	"github.com/talentwire/go-messaging-core/internal/repo"
)

// Credentials carries the raw cookie values found on the handshake request.
// Empty strings mean the cookie was absent.
type Credentials struct {
	EmployerToken   string
	CandidateToken  string
	ConsultantToken string
	AdminToken      string
}

// AuthService resolves raw credentials into principals.
type AuthService struct {
	DB  *gorm.DB
	Log zerolog.Logger

	// now is swapped in tests to pin expiry checks.
	now func() time.Time
}

// NewAuthService constructs an AuthService.
func NewAuthService(db *gorm.DB, log zerolog.Logger) *AuthService {
	return &AuthService{DB: db, Log: log, now: func() time.Time { return time.Now().UTC() }}
}

// credentialSlot binds one cookie to its resolution function. Slot order is
// the wire-contract priority order.
type credentialSlot struct {
	kind    domain.PrincipalKind
	token   func(Credentials) string
	resolve func(ctx context.Context, s *AuthService, token string) (*domain.Principal, error)
}

var credentialSlots = []credentialSlot{
	{domain.KindEmployer, func(c Credentials) string { return c.EmployerToken }, resolveEmployer},
	{domain.KindCandidate, func(c Credentials) string { return c.CandidateToken }, resolveCandidate},
	{domain.KindConsultant, func(c Credentials) string { return c.ConsultantToken }, resolveConsultant},
	{domain.KindAdmin, func(c Credentials) string { return c.AdminToken }, resolveAdmin},
}

// Resolve walks the credential slots in priority order and returns the first
// validly resolved Principal. A slot whose cookie is absent is skipped; a
// slot whose cookie is present but invalid fails resolution outright, which
// matches first-match-wins semantics on the handshake.
func (s *AuthService) Resolve(ctx context.Context, creds Credentials) (*domain.Principal, error) {
	tr := otel.Tracer("services/AuthService")
	ctx, span := tr.Start(ctx, "Resolve")
	defer span.End()

	for _, slot := range credentialSlots {
		token := slot.token(creds)
		if token == "" {
			continue
		}
		p, err := slot.resolve(ctx, s, token)
		if err != nil {
			s.Log.Warn().
				Str("kind", string(slot.kind)).
				Err(err).
				Msg("credential slot rejected")
			return nil, ErrUnauthenticated
		}
		span.SetAttributes(
			attribute.String("principal.kind", string(p.Kind)),
			attribute.String("principal.id", p.ID),
		)
		return p, nil
	}
	return nil, ErrUnauthenticated
}

// checkExpiry returns ErrUnauthenticated when the session expiry is at or
// before now.
func (s *AuthService) checkExpiry(expiresAt time.Time) error {
	if !expiresAt.After(s.now()) {
		return ErrUnauthenticated
	}
	return nil
}

func resolveEmployer(ctx context.Context, s *AuthService, token string) (*domain.Principal, error) {
	sess, err := repo.GetEmployerSession(ctx, s.DB, token)
	if err != nil {
		return nil, err
	}
	if err := s.checkExpiry(sess.ExpiresAt); err != nil {
		return nil, err
	}
	owner, err := repo.GetEmployer(ctx, s.DB, sess.EmployerID)
	if err != nil {
		return nil, err
	}
	s.touch(ctx, &domain.EmployerSession{}, token)
	return &domain.Principal{
		Kind:           domain.KindEmployer,
		ID:             owner.ID,
		Email:          owner.Email,
		Name:           owner.Name,
		OrganizationID: owner.OrganizationID,
	}, nil
}

func resolveCandidate(ctx context.Context, s *AuthService, token string) (*domain.Principal, error) {
	sess, err := repo.GetCandidateSession(ctx, s.DB, token)
	if err != nil {
		return nil, err
	}
	if err := s.checkExpiry(sess.ExpiresAt); err != nil {
		return nil, err
	}
	owner, err := repo.GetCandidate(ctx, s.DB, sess.CandidateID)
	if err != nil {
		return nil, err
	}
	s.touch(ctx, &domain.CandidateSession{}, token)
	return &domain.Principal{
		Kind:  domain.KindCandidate,
		ID:    owner.ID,
		Email: owner.Email,
		Name:  owner.Name,
	}, nil
}

func resolveConsultant(ctx context.Context, s *AuthService, token string) (*domain.Principal, error) {
	sess, err := repo.GetConsultantSession(ctx, s.DB, token)
	if err != nil {
		return nil, err
	}
	if err := s.checkExpiry(sess.ExpiresAt); err != nil {
		return nil, err
	}
	owner, err := repo.GetConsultant(ctx, s.DB, sess.ConsultantID)
	if err != nil {
		return nil, err
	}
	s.touch(ctx, &domain.ConsultantSession{}, token)
	return &domain.Principal{
		Kind:  domain.KindConsultant,
		ID:    owner.ID,
		Email: owner.Email,
		Name:  owner.Name,
	}, nil
}

func resolveAdmin(ctx context.Context, s *AuthService, token string) (*domain.Principal, error) {
	sess, err := repo.GetAdminSession(ctx, s.DB, token)
	if err != nil {
		return nil, err
	}
	if err := s.checkExpiry(sess.ExpiresAt); err != nil {
		return nil, err
	}
	owner, err := repo.GetAdminUser(ctx, s.DB, sess.AdminID)
	if err != nil {
		return nil, err
	}

	// Regional admins see only their assigned regions; everyone else gets
	// an empty list.
	var regions []string
	if owner.Role == domain.AdminRoleRegional {
		regions, err = repo.ListAdminRegionIDs(ctx, s.DB, owner.ID)
		if err != nil {
			return nil, err
		}
	}

	s.touch(ctx, &domain.AdminSession{}, token)
	return &domain.Principal{
		Kind:      domain.KindAdmin,
		ID:        owner.ID,
		Email:     owner.Email,
		Name:      owner.Name,
		RegionIDs: regions,
	}, nil
}

// touch bumps the session's last-activity timestamp. A failed bump is logged
// and ignored; it never fails authentication.
func (s *AuthService) touch(ctx context.Context, model any, token string) {
	if err := repo.TouchSession(ctx, s.DB, model, token, s.now()); err != nil {
		s.Log.Warn().Err(err).Msg("session activity bump failed")
	}
}
