package dto

import (
	"math"

	"emploi_backend/internal/models"
)

// Compatibility tiers derived from the matching score.
const (
	CompatibilityHigh    = "HIGH"
	CompatibilityMedium  = "MEDIUM"
	CompatibilityLow     = "LOW"
	CompatibilityUnknown = "UNKNOWN"
)

// OfferRecommendation is one ranked entry of the recommendation list.
type OfferRecommendation struct {
	Offer           *OfferSummary `json:"offer"`
	Score           *float64      `json:"score"`
	ScorePercentage int           `json:"score_percentage"`
	Compatibility   string        `json:"compatibility"`
}

func NewOfferRecommendation(offer *models.Offer) *OfferRecommendation {
	rec := &OfferRecommendation{
		Offer: NewOfferSummary(offer),
	}
	rec.SetScore(nil)
	return rec
}

// SetScore stores the score and keeps the derived tier and percentage in sync.
func (r *OfferRecommendation) SetScore(score *float64) {
	r.Score = score

	if score == nil {
		r.ScorePercentage = 0
		r.Compatibility = CompatibilityUnknown
		return
	}

	r.ScorePercentage = ScoreToPercentage(*score)
	switch {
	case *score >= 0.7:
		r.Compatibility = CompatibilityHigh
	case *score >= 0.4:
		r.Compatibility = CompatibilityMedium
	default:
		r.Compatibility = CompatibilityLow
	}
}

// ScoreToPercentage converts a [0,1] score to a rounded percentage.
func ScoreToPercentage(score float64) int {
	return int(math.Round(score * 100))
}
