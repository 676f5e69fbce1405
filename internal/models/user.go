package models

import "time"

type User struct {
	BaseModel
	Email        string   `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string   `gorm:"not null" json:"-"`
	Role         UserRole `gorm:"type:varchar(20);not null" json:"role"`
	FirstName    string   `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName     string   `gorm:"type:varchar(100);not null" json:"last_name"`

	// Relations — exactly one of these is set, depending on Role.
	Candidate *Candidate `gorm:"foreignKey:UserID" json:"candidate,omitempty"`
	Employer  *Employer  `gorm:"foreignKey:UserID" json:"employer,omitempty"`
}

// Candidate holds the candidate-specific payload of a user account.
type Candidate struct {
	BaseModel
	UserID          string     `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	CIN             string     `gorm:"type:varchar(20);uniqueIndex;not null" json:"cin"`
	CurrentPosition string     `gorm:"type:varchar(150)" json:"current_position"`
	CVPath          *string    `json:"cv_path,omitempty"`
	CVUploadedAt    *time.Time `json:"cv_uploaded_at,omitempty"`
}

// HasCV reports whether a CV blob has been uploaded for this candidate.
func (c *Candidate) HasCV() bool {
	return c.CVPath != nil && *c.CVPath != ""
}

// Employer holds the employer-specific payload of a user account.
type Employer struct {
	BaseModel
	UserID      string `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	CompanyName string `gorm:"type:varchar(150);not null" json:"company_name"`
	Sector      string `gorm:"type:varchar(100)" json:"sector"`
	FiscalID    string `gorm:"type:varchar(30);uniqueIndex;not null" json:"fiscal_id"`
}

type PasswordResetToken struct {
	BaseModel
	UserID    string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Token     string    `gorm:"not null;uniqueIndex" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
}

// Expired reports whether the token can no longer be used.
func (t *PasswordResetToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
