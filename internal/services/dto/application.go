package dto

import (
	"time"

	"emploi_backend/internal/models"
)

type SubmitApplicationRequest struct {
	OfferID          string `json:"offer_id" binding:"required"`
	MotivationLetter string `json:"motivation_letter"`
}

type DecideApplicationRequest struct {
	Decision string `json:"decision" binding:"required"`
}

// ApplicationDetails is the employer-facing view of one application, with
// nested candidate and offer summaries.
type ApplicationDetails struct {
	ID               string                   `json:"id"`
	Status           models.ApplicationStatus `json:"status"`
	Decision         models.Decision          `json:"decision,omitempty"`
	SubmittedAt      time.Time                `json:"submitted_at"`
	MotivationLetter string                   `json:"motivation_letter"`
	Score            float64                  `json:"score"`
	ScorePercentage  int                      `json:"score_percentage"`
	Candidate        *CandidateSummary        `json:"candidate,omitempty"`
	Offer            *OfferSummary            `json:"offer,omitempty"`
}

type CandidateSummary struct {
	ID              string `json:"id"`
	CurrentPosition string `json:"current_position,omitempty"`
	HasCV           bool   `json:"has_cv"`
}

type OfferSummary struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Location    string             `json:"location,omitempty"`
	PublishedAt time.Time          `json:"published_at"`
	ExpiresAt   time.Time          `json:"expires_at"`
	Status      models.OfferStatus `json:"status"`
}

func NewApplicationDetails(app *models.Application) *ApplicationDetails {
	details := &ApplicationDetails{
		ID:               app.ID,
		Status:           app.Status,
		Decision:         app.Decision,
		SubmittedAt:      app.SubmittedAt,
		MotivationLetter: app.MotivationLetter,
		Score:            app.Score,
		ScorePercentage:  ScoreToPercentage(app.Score),
	}

	if app.Candidate != nil {
		details.Candidate = &CandidateSummary{
			ID:              app.Candidate.ID,
			CurrentPosition: app.Candidate.CurrentPosition,
			HasCV:           app.Candidate.HasCV(),
		}
	}
	if app.Offer != nil {
		details.Offer = NewOfferSummary(app.Offer)
	}

	return details
}

func NewOfferSummary(offer *models.Offer) *OfferSummary {
	return &OfferSummary{
		ID:          offer.ID,
		Title:       offer.Title,
		Location:    offer.Location,
		PublishedAt: offer.PublishedAt,
		ExpiresAt:   offer.ExpiresAt,
		Status:      offer.Status,
	}
}
