package services

import (
	"context"
	"sort"

	"emploi_backend/internal/logger"
	"emploi_backend/internal/matching"
	"emploi_backend/internal/repositories"
	"emploi_backend/internal/services/dto"
	"emploi_backend/internal/storage"
	"emploi_backend/pkg/apperrors"
)

const (
	defaultRecommendationLimit = 10
	maxRecommendationLimit     = 20
)

type RecommendationService interface {
	RecommendOffers(ctx context.Context, candidateID string) ([]*dto.OfferRecommendation, error)
	RecommendTopOffers(ctx context.Context, candidateID string, limit int) ([]*dto.OfferRecommendation, error)
}

type RecommendationServiceImpl struct {
	userRepo  repositories.UserRepository
	offerRepo repositories.OfferRepository
	scorer    matching.Scorer
	store     storage.Storage
}

func NewRecommendationService(
	userRepo repositories.UserRepository,
	offerRepo repositories.OfferRepository,
	scorer matching.Scorer,
	store storage.Storage,
) RecommendationService {
	return &RecommendationServiceImpl{
		userRepo:  userRepo,
		offerRepo: offerRepo,
		scorer:    scorer,
		store:     store,
	}
}

// RecommendOffers scores every active offer against the candidate's CV and
// returns the best matches, at most ten.
func (s *RecommendationServiceImpl) RecommendOffers(ctx context.Context, candidateID string) ([]*dto.OfferRecommendation, error) {
	return s.recommend(ctx, candidateID, defaultRecommendationLimit)
}

// RecommendTopOffers is RecommendOffers with a caller-chosen list size,
// clamped to [1,20].
func (s *RecommendationServiceImpl) RecommendTopOffers(ctx context.Context, candidateID string, limit int) ([]*dto.OfferRecommendation, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > maxRecommendationLimit {
		limit = maxRecommendationLimit
	}
	return s.recommend(ctx, candidateID, limit)
}

func (s *RecommendationServiceImpl) recommend(ctx context.Context, candidateID string, limit int) ([]*dto.OfferRecommendation, error) {
	candidate, err := s.userRepo.FindCandidateByID(candidateID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NewNotFound("candidate", "Candidate not found")
		}
		return nil, apperrors.InternalError(err)
	}

	// Without a CV there is nothing to match against; no scorer call is made.
	if !candidate.HasCV() {
		return []*dto.OfferRecommendation{}, nil
	}

	cvPath, err := s.store.AbsolutePath(*candidate.CVPath)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	offers, err := s.offerRepo.FindActive()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	recommendations := make([]*dto.OfferRecommendation, 0, len(offers))
	for i := range offers {
		offer := &offers[i]

		score, err := s.scorer.Score(ctx, cvPath, offer.MatchingText())
		if err != nil {
			// One unscorable offer must not sink the whole list.
			logger.WithError(err).Warn("offer skipped in recommendations", "offer_id", offer.ID)
			continue
		}

		rec := dto.NewOfferRecommendation(offer)
		rec.SetScore(&score)
		recommendations = append(recommendations, rec)
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return *recommendations[i].Score > *recommendations[j].Score
	})

	if len(recommendations) > limit {
		recommendations = recommendations[:limit]
	}
	return recommendations, nil
}
