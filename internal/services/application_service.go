package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"emploi_backend/internal/logger"
	"emploi_backend/internal/matching"
	"emploi_backend/internal/models"
	"emploi_backend/internal/repositories"
	"emploi_backend/internal/services/dto"
	"emploi_backend/internal/storage"
	"emploi_backend/pkg/apperrors"
)

const (
	motivationLetterMinLen = 50
	motivationLetterMaxLen = 2000
)

type ApplicationService interface {
	Submit(ctx context.Context, email string, req *dto.SubmitApplicationRequest) (*models.Application, error)
	ListForCandidate(email string) ([]models.Application, error)
	ListForOffer(email, offerID string) ([]models.Application, error)
	GetByID(email, applicationID string) (*models.Application, error)
	GetDetailsForOffer(email, offerID string) ([]*dto.ApplicationDetails, error)
	CheckApplied(email, offerID string) (bool, error)
	Decide(email, applicationID, decision string) (*models.Application, error)
	Withdraw(email, applicationID string) error
	RankByOffer(offerID string) ([]models.Application, error)
	RecalculateAllScores(ctx context.Context) (int, error)
}

type ApplicationServiceImpl struct {
	appRepo   repositories.ApplicationRepository
	offerRepo repositories.OfferRepository
	userRepo  repositories.UserRepository
	policy    *AccessPolicy
	scorer    matching.Scorer
	store     storage.Storage
}

func NewApplicationService(
	appRepo repositories.ApplicationRepository,
	offerRepo repositories.OfferRepository,
	userRepo repositories.UserRepository,
	policy *AccessPolicy,
	scorer matching.Scorer,
	store storage.Storage,
) ApplicationService {
	return &ApplicationServiceImpl{
		appRepo:   appRepo,
		offerRepo: offerRepo,
		userRepo:  userRepo,
		policy:    policy,
		scorer:    scorer,
		store:     store,
	}
}

// Submit creates a pending application for an active offer. When the
// candidate has a CV the compatibility score is computed synchronously; a
// scoring failure never blocks the submission and leaves the score at zero.
func (s *ApplicationServiceImpl) Submit(ctx context.Context, email string, req *dto.SubmitApplicationRequest) (*models.Application, error) {
	_, candidate, err := s.policy.RequireCandidate(email)
	if err != nil {
		return nil, err
	}

	offer, err := s.offerRepo.FindByID(req.OfferID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrOfferNotFound) {
			return nil, apperrors.NewNotFound("offer", "Offer not found")
		}
		return nil, apperrors.InternalError(err)
	}
	if !offer.IsActive() {
		return nil, apperrors.NewInvalidState("application", "This offer no longer accepts applications")
	}

	letter, err := validateMotivationLetter(req.MotivationLetter)
	if err != nil {
		return nil, err
	}

	exists, err := s.appRepo.ExistsByCandidateAndOffer(candidate.ID, offer.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if exists {
		return nil, apperrors.NewConflict("application", "You have already applied to this offer")
	}

	application := &models.Application{
		CandidateID:      candidate.ID,
		OfferID:          offer.ID,
		SubmittedAt:      time.Now(),
		Status:           models.ApplicationStatusPending,
		MotivationLetter: letter,
		Score:            0.0,
	}

	if candidate.HasCV() {
		application.Score = s.scoreCandidate(ctx, candidate, offer)
	}

	if err := s.appRepo.Create(application); err != nil {
		if apperrors.Is(err, repositories.ErrApplicationAlreadyExists) {
			return nil, apperrors.NewConflict("application", "You have already applied to this offer")
		}
		return nil, apperrors.InternalError(err)
	}

	return application, nil
}

func (s *ApplicationServiceImpl) ListForCandidate(email string) ([]models.Application, error) {
	_, candidate, err := s.policy.RequireCandidate(email)
	if err != nil {
		return nil, err
	}

	applications, err := s.appRepo.FindByCandidate(candidate.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return applications, nil
}

func (s *ApplicationServiceImpl) ListForOffer(email, offerID string) ([]models.Application, error) {
	if _, err := s.requireOwnedOffer(email, offerID); err != nil {
		return nil, err
	}

	applications, err := s.appRepo.FindByOffer(offerID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return applications, nil
}

// GetByID returns the application to its candidate or to the employer owning
// the offer; anyone else is refused.
func (s *ApplicationServiceImpl) GetByID(email, applicationID string) (*models.Application, error) {
	user, err := s.policy.ResolveUser(email)
	if err != nil {
		return nil, err
	}

	application, err := s.findApplication(applicationID)
	if err != nil {
		return nil, err
	}

	switch user.Role {
	case models.UserRoleCandidate:
		if user.Candidate == nil {
			return nil, apperrors.NewRoleMismatch("This operation requires a candidate account")
		}
		if err := s.policy.RequireApplicationOwner(user.Candidate, application); err != nil {
			return nil, err
		}
	case models.UserRoleEmployer:
		if user.Employer == nil {
			return nil, apperrors.NewRoleMismatch("This operation requires an employer account")
		}
		offer, err := s.applicationOffer(application)
		if err != nil {
			return nil, err
		}
		if err := s.policy.RequireOfferOwner(user.Employer, offer); err != nil {
			return nil, err
		}
	default:
		return nil, apperrors.NewForbidden("You cannot access this application")
	}

	return application, nil
}

// GetDetailsForOffer returns the employer-facing view of an offer's
// applications, best score first.
func (s *ApplicationServiceImpl) GetDetailsForOffer(email, offerID string) ([]*dto.ApplicationDetails, error) {
	if _, err := s.requireOwnedOffer(email, offerID); err != nil {
		return nil, err
	}

	applications, err := s.appRepo.FindByOfferOrderByScoreDesc(offerID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	details := make([]*dto.ApplicationDetails, 0, len(applications))
	for i := range applications {
		details = append(details, dto.NewApplicationDetails(&applications[i]))
	}
	return details, nil
}

func (s *ApplicationServiceImpl) CheckApplied(email, offerID string) (bool, error) {
	_, candidate, err := s.policy.RequireCandidate(email)
	if err != nil {
		return false, err
	}

	applied, err := s.appRepo.ExistsByCandidateAndOffer(candidate.ID, offerID)
	if err != nil {
		return false, apperrors.InternalError(err)
	}
	return applied, nil
}

// Decide records the employer's decision. The status write is conditional on
// the application still being pending, so concurrent decisions cannot both
// succeed.
func (s *ApplicationServiceImpl) Decide(email, applicationID, decision string) (*models.Application, error) {
	_, employer, err := s.policy.RequireEmployer(email)
	if err != nil {
		return nil, err
	}

	application, err := s.findApplication(applicationID)
	if err != nil {
		return nil, err
	}

	offer, err := s.applicationOffer(application)
	if err != nil {
		return nil, err
	}
	if err := s.policy.RequireOfferOwner(employer, offer); err != nil {
		return nil, err
	}

	status, mapped, err := mapDecision(decision)
	if err != nil {
		return nil, err
	}

	if err := s.appRepo.UpdateStatusIfPending(application.ID, status, mapped); err != nil {
		switch {
		case apperrors.Is(err, repositories.ErrApplicationAlreadyDecided):
			return nil, apperrors.NewInvalidState("application", "This application has already been processed")
		case apperrors.Is(err, repositories.ErrApplicationNotFound):
			return nil, apperrors.NewNotFound("application", "Application not found")
		default:
			return nil, apperrors.InternalError(err)
		}
	}

	application.Status = status
	application.Decision = mapped
	return application, nil
}

// Withdraw removes the candidate's own pending application.
func (s *ApplicationServiceImpl) Withdraw(email, applicationID string) error {
	_, candidate, err := s.policy.RequireCandidate(email)
	if err != nil {
		return err
	}

	application, err := s.findApplication(applicationID)
	if err != nil {
		return err
	}
	if err := s.policy.RequireApplicationOwner(candidate, application); err != nil {
		return err
	}

	if err := s.appRepo.DeleteIfPending(application.ID); err != nil {
		switch {
		case apperrors.Is(err, repositories.ErrApplicationAlreadyDecided):
			return apperrors.NewInvalidState("application", "Only pending applications can be withdrawn")
		case apperrors.Is(err, repositories.ErrApplicationNotFound):
			return apperrors.NewNotFound("application", "Application not found")
		default:
			return apperrors.InternalError(err)
		}
	}

	return nil
}

// RankByOffer returns the offer's applications ordered by score, best first.
// Authorization is the caller's concern; the employer-facing endpoints go
// through GetDetailsForOffer instead.
func (s *ApplicationServiceImpl) RankByOffer(offerID string) ([]models.Application, error) {
	applications, err := s.appRepo.FindByOfferOrderByScoreDesc(offerID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return applications, nil
}

// RecalculateAllScores recomputes the score of every application whose
// candidate has a CV. One failing row never aborts the batch: it is logged
// and skipped. Returns the number of rows updated.
func (s *ApplicationServiceImpl) RecalculateAllScores(ctx context.Context) (int, error) {
	applications, err := s.appRepo.FindAll()
	if err != nil {
		return 0, apperrors.InternalError(err)
	}

	updated := 0
	for i := range applications {
		application := &applications[i]

		if application.Candidate == nil || !application.Candidate.HasCV() {
			continue
		}
		if application.Offer == nil {
			logger.Warn("application without offer skipped during recompute", "application_id", application.ID)
			continue
		}

		score := s.scoreCandidate(ctx, application.Candidate, application.Offer)
		if err := s.appRepo.UpdateScore(application.ID, score); err != nil {
			logger.WithError(err).Warn("failed to persist recomputed score", "application_id", application.ID)
			continue
		}
		updated++
	}

	logger.Info("score recompute finished", "total", len(applications), "updated", updated)
	return updated, nil
}

// --- Helpers ---

func (s *ApplicationServiceImpl) scoreCandidate(ctx context.Context, candidate *models.Candidate, offer *models.Offer) float64 {
	cvPath, err := s.store.AbsolutePath(*candidate.CVPath)
	if err != nil {
		logger.WithError(err).Warn("failed to resolve CV path", "candidate_id", candidate.ID)
		return 0.0
	}
	return matching.ScoreOrZero(ctx, s.scorer, cvPath, offer.MatchingText())
}

func (s *ApplicationServiceImpl) findApplication(applicationID string) (*models.Application, error) {
	application, err := s.appRepo.FindByID(applicationID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrApplicationNotFound) {
			return nil, apperrors.NewNotFound("application", "Application not found")
		}
		return nil, apperrors.InternalError(err)
	}
	return application, nil
}

func (s *ApplicationServiceImpl) applicationOffer(application *models.Application) (*models.Offer, error) {
	if application.Offer != nil {
		return application.Offer, nil
	}

	offer, err := s.offerRepo.FindByID(application.OfferID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrOfferNotFound) {
			return nil, apperrors.NewNotFound("offer", "Offer not found")
		}
		return nil, apperrors.InternalError(err)
	}
	return offer, nil
}

func (s *ApplicationServiceImpl) requireOwnedOffer(email, offerID string) (*models.Offer, error) {
	_, employer, err := s.policy.RequireEmployer(email)
	if err != nil {
		return nil, err
	}

	offer, err := s.offerRepo.FindByID(offerID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrOfferNotFound) {
			return nil, apperrors.NewNotFound("offer", "Offer not found")
		}
		return nil, apperrors.InternalError(err)
	}

	if err := s.policy.RequireOfferOwner(employer, offer); err != nil {
		return nil, err
	}
	return offer, nil
}

// validateMotivationLetter trims and length-checks the letter, returning the
// trimmed text that gets persisted.
func validateMotivationLetter(letter string) (string, error) {
	trimmed := strings.TrimSpace(letter)
	if trimmed == "" {
		return "", apperrors.NewValidation("Motivation letter is required")
	}

	length := utf8.RuneCountInString(trimmed)
	if length < motivationLetterMinLen {
		return "", apperrors.NewValidation("Motivation letter must contain at least 50 characters")
	}
	if length > motivationLetterMaxLen {
		return "", apperrors.NewValidation("Motivation letter must contain at most 2000 characters")
	}

	return trimmed, nil
}

// mapDecision translates the employer's decision into the resulting status.
// Anything but the two known decisions is a validation error.
func mapDecision(decision string) (models.ApplicationStatus, models.Decision, error) {
	switch models.Decision(strings.ToLower(strings.TrimSpace(decision))) {
	case models.DecisionAccepted:
		return models.ApplicationStatusAccepted, models.DecisionAccepted, nil
	case models.DecisionRejected:
		return models.ApplicationStatusRejected, models.DecisionRejected, nil
	default:
		return "", "", apperrors.NewValidation("decision must be accepted or rejected")
	}
}
