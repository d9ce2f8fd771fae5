// Package domain – session and account records read during authentication.
//
// The messaging core never creates sessions; it only validates pre-issued
// tokens against these tables and refreshes their last-activity timestamp.
// Session issuance (login) lives in the surrounding application.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Admin roles. Regional admins carry an explicit region assignment list.
const (
	AdminRoleSuper    = "super"
	AdminRoleRegional = "regional"
)

// EmployerSession is a session issued to an organization user.
type EmployerSession struct {
	Token        string    `gorm:"type:char(64);primaryKey"`
	EmployerID   string    `gorm:"type:varchar(64);not null;index"`
	ExpiresAt    time.Time `gorm:"not null;index"`
	LastActiveAt time.Time
	CreatedAt    time.Time
}

// TableName returns the database table name for EmployerSession.
func (EmployerSession) TableName() string { return "employer_sessions" }

// CandidateSession is a session issued to a candidate.
type CandidateSession struct {
	Token        string    `gorm:"type:char(64);primaryKey"`
	CandidateID  string    `gorm:"type:varchar(64);not null;index"`
	ExpiresAt    time.Time `gorm:"not null;index"`
	LastActiveAt time.Time
	CreatedAt    time.Time
}

// TableName returns the database table name for CandidateSession.
func (CandidateSession) TableName() string { return "candidate_sessions" }

// ConsultantSession is a session issued to a consultant.
type ConsultantSession struct {
	Token        string    `gorm:"type:char(64);primaryKey"`
	ConsultantID string    `gorm:"type:varchar(64);not null;index"`
	ExpiresAt    time.Time `gorm:"not null;index"`
	LastActiveAt time.Time
	CreatedAt    time.Time
}

// TableName returns the database table name for ConsultantSession.
func (ConsultantSession) TableName() string { return "consultant_sessions" }

// AdminSession is a session issued to a platform admin.
type AdminSession struct {
	Token        string    `gorm:"type:char(64);primaryKey"`
	AdminID      string    `gorm:"type:varchar(64);not null;index"`
	ExpiresAt    time.Time `gorm:"not null;index"`
	LastActiveAt time.Time
	CreatedAt    time.Time
}

// TableName returns the database table name for AdminSession.
func (AdminSession) TableName() string { return "admin_sessions" }

// Employer is an organization user account.
type Employer struct {
	ID             string         `gorm:"type:varchar(64);primaryKey"`
	OrganizationID string         `gorm:"type:varchar(64);not null;index"`
	Email          string         `gorm:"type:varchar(255);not null"`
	Name           string         `gorm:"type:varchar(255);not null"`
	CreatedAt      time.Time
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

// TableName returns the database table name for Employer.
func (Employer) TableName() string { return "employers" }

// Candidate is a candidate account.
type Candidate struct {
	ID        string         `gorm:"type:varchar(64);primaryKey"`
	Email     string         `gorm:"type:varchar(255);not null"`
	Name      string         `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName returns the database table name for Candidate.
func (Candidate) TableName() string { return "candidates" }

// Consultant is a consultant account.
type Consultant struct {
	ID        string         `gorm:"type:varchar(64);primaryKey"`
	Email     string         `gorm:"type:varchar(255);not null"`
	Name      string         `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName returns the database table name for Consultant.
func (Consultant) TableName() string { return "consultants" }

// AdminUser is a platform admin account. Regional admins are linked to their
// assigned regions through AdminRegion join rows.
type AdminUser struct {
	ID        string         `gorm:"type:varchar(64);primaryKey"`
	Email     string         `gorm:"type:varchar(255);not null"`
	Name      string         `gorm:"type:varchar(255);not null"`
	Role      string         `gorm:"type:varchar(16);not null;default:'super'"`
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName returns the database table name for AdminUser.
func (AdminUser) TableName() string { return "admin_users" }

// AdminRegion assigns a region to a regional admin.
type AdminRegion struct {
	ID       string `gorm:"type:char(36);primaryKey"`
	AdminID  string `gorm:"type:varchar(64);not null;index;uniqueIndex:ux_admin_region"`
	RegionID string `gorm:"type:varchar(64);not null;uniqueIndex:ux_admin_region"`
}

// TableName returns the database table name for AdminRegion.
func (AdminRegion) TableName() string { return "admin_regions" }
