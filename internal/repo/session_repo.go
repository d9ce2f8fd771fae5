// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides lookups for the four session tables and
// their owning accounts, consumed by the principal resolver.
//
// Sessions are validated, never issued, by the messaging core. Each lookup
// returns ErrNotFound for an absent token; expiry is enforced by the caller
// so the "expired" and "absent" cases stay distinguishable in logs.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/talentwire/go-messaging-core/internal/domain"
)

// GetEmployerSession fetches an employer session by token.
func GetEmployerSession(ctx context.Context, db *gorm.DB, token string) (*domain.EmployerSession, error) {
	var s domain.EmployerSession
	if err := db.WithContext(ctx).Where("token = ?", token).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// GetCandidateSession fetches a candidate session by token.
func GetCandidateSession(ctx context.Context, db *gorm.DB, token string) (*domain.CandidateSession, error) {
	var s domain.CandidateSession
	if err := db.WithContext(ctx).Where("token = ?", token).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// GetConsultantSession fetches a consultant session by token.
func GetConsultantSession(ctx context.Context, db *gorm.DB, token string) (*domain.ConsultantSession, error) {
	var s domain.ConsultantSession
	if err := db.WithContext(ctx).Where("token = ?", token).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// GetAdminSession fetches an admin session by token.
func GetAdminSession(ctx context.Context, db *gorm.DB, token string) (*domain.AdminSession, error) {
	var s domain.AdminSession
	if err := db.WithContext(ctx).Where("token = ?", token).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// TouchSession bumps the last-activity timestamp on the session row backing
// model (one of the four session types). Best effort on the caller's side;
// a failed bump must not fail authentication.
func TouchSession(ctx context.Context, db *gorm.DB, model any, token string, at time.Time) error {
	return db.WithContext(ctx).
		Model(model).
		Where("token = ?", token).
		Update("last_active_at", at).Error
}

// GetEmployer fetches an employer account by ID.
func GetEmployer(ctx context.Context, db *gorm.DB, id string) (*domain.Employer, error) {
	var e domain.Employer
	if err := db.WithContext(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// GetCandidate fetches a candidate account by ID.
func GetCandidate(ctx context.Context, db *gorm.DB, id string) (*domain.Candidate, error) {
	var c domain.Candidate
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// GetConsultant fetches a consultant account by ID.
func GetConsultant(ctx context.Context, db *gorm.DB, id string) (*domain.Consultant, error) {
	var c domain.Consultant
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// GetAdminUser fetches an admin account by ID.
func GetAdminUser(ctx context.Context, db *gorm.DB, id string) (*domain.AdminUser, error) {
	var a domain.AdminUser
	if err := db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAdminRegionIDs returns the region IDs assigned to a regional admin.
// Non-regional admins have no rows and get an empty slice.
func ListAdminRegionIDs(ctx context.Context, db *gorm.DB, adminID string) ([]string, error) {
	var ids []string
	err := db.WithContext(ctx).
		Model(&domain.AdminRegion{}).
		Where("admin_id = ?", adminID).
		Order("region_id ASC").
		Pluck("region_id", &ids).Error
	return ids, err
}
