package models

import "time"

type Application struct {
	BaseModel
	CandidateID      string            `gorm:"type:uuid;not null;uniqueIndex:idx_candidate_offer" json:"candidate_id"`
	OfferID          string            `gorm:"type:uuid;not null;uniqueIndex:idx_candidate_offer;index" json:"offer_id"`
	SubmittedAt      time.Time         `gorm:"not null" json:"submitted_at"`
	Status           ApplicationStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Decision         Decision          `gorm:"type:varchar(20)" json:"decision,omitempty"`
	MotivationLetter string            `gorm:"type:text;not null" json:"motivation_letter"`
	Score            float64           `gorm:"type:decimal(5,4);not null;default:0" json:"score"`

	Candidate *Candidate `gorm:"foreignKey:CandidateID" json:"candidate,omitempty"`
	Offer     *Offer     `gorm:"foreignKey:OfferID" json:"offer,omitempty"`
}

// IsPending reports whether the application can still be decided or withdrawn.
func (a *Application) IsPending() bool {
	return a.Status == ApplicationStatusPending
}
