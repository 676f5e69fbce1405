package models

import "time"

type Offer struct {
	BaseModel
	EmployerID  string      `gorm:"type:uuid;not null;index" json:"employer_id"`
	Title       string      `gorm:"type:varchar(150);not null" json:"title"`
	Description string      `gorm:"type:text;not null" json:"description"`
	Location    string      `gorm:"type:varchar(150)" json:"location"`
	PublishedAt time.Time   `gorm:"not null" json:"published_at"`
	ExpiresAt   time.Time   `gorm:"not null" json:"expires_at"`
	Status      OfferStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`

	Employer     *Employer     `gorm:"foreignKey:EmployerID" json:"employer,omitempty"`
	Applications []Application `gorm:"foreignKey:OfferID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsActive reports whether the offer still accepts applications.
func (o *Offer) IsActive() bool {
	return o.Status == OfferStatusActive
}

// MatchingText is the text sent to the scoring service for this offer.
func (o *Offer) MatchingText() string {
	return o.Title + " " + o.Description
}
