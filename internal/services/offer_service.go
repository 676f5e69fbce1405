package services

import (
	"time"

	"emploi_backend/internal/models"
	"emploi_backend/internal/repositories"
	"emploi_backend/internal/services/dto"
	"emploi_backend/pkg/apperrors"
)

type OfferService interface {
	Create(email string, req *dto.CreateOfferRequest) (*models.Offer, error)
	Update(email, offerID string, req *dto.UpdateOfferRequest) (*models.Offer, error)
	Close(email, offerID string) (*models.Offer, error)
	Delete(email, offerID string) error
	GetByID(offerID string) (*models.Offer, error)
	ListActive() ([]models.Offer, error)
	ListForEmployer(email string) ([]models.Offer, error)
	Search(req *dto.OfferSearchRequest) (*dto.OfferListResponse, error)
}

type OfferServiceImpl struct {
	offerRepo repositories.OfferRepository
	policy    *AccessPolicy
}

func NewOfferService(offerRepo repositories.OfferRepository, policy *AccessPolicy) OfferService {
	return &OfferServiceImpl{
		offerRepo: offerRepo,
		policy:    policy,
	}
}

// Create publishes a new offer. The publication date is set here and never
// changes afterwards.
func (s *OfferServiceImpl) Create(email string, req *dto.CreateOfferRequest) (*models.Offer, error) {
	_, employer, err := s.policy.RequireEmployer(email)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if !req.ExpiresAt.After(now) {
		return nil, apperrors.NewValidation("expires_at must be in the future")
	}

	offer := &models.Offer{
		EmployerID:  employer.ID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		PublishedAt: now,
		ExpiresAt:   req.ExpiresAt,
		Status:      models.OfferStatusActive,
	}

	if err := s.offerRepo.Create(offer); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return offer, nil
}

func (s *OfferServiceImpl) Update(email, offerID string, req *dto.UpdateOfferRequest) (*models.Offer, error) {
	offer, _, err := s.requireOwnedOffer(email, offerID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		offer.Title = *req.Title
	}
	if req.Description != nil {
		offer.Description = *req.Description
	}
	if req.Location != nil {
		offer.Location = *req.Location
	}
	if req.ExpiresAt != nil {
		if !req.ExpiresAt.After(time.Now()) {
			return nil, apperrors.NewValidation("expires_at must be in the future")
		}
		offer.ExpiresAt = *req.ExpiresAt
	}

	if err := s.offerRepo.Update(offer); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return offer, nil
}

func (s *OfferServiceImpl) Close(email, offerID string) (*models.Offer, error) {
	offer, _, err := s.requireOwnedOffer(email, offerID)
	if err != nil {
		return nil, err
	}

	if err := s.offerRepo.UpdateStatus(offer.ID, models.OfferStatusClosed); err != nil {
		return nil, apperrors.InternalError(err)
	}
	offer.Status = models.OfferStatusClosed
	return offer, nil
}

// Delete removes the offer and all of its applications.
func (s *OfferServiceImpl) Delete(email, offerID string) error {
	offer, _, err := s.requireOwnedOffer(email, offerID)
	if err != nil {
		return err
	}

	if err := s.offerRepo.Delete(offer.ID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *OfferServiceImpl) GetByID(offerID string) (*models.Offer, error) {
	offer, err := s.offerRepo.FindByID(offerID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrOfferNotFound) {
			return nil, apperrors.NewNotFound("offer", "Offer not found")
		}
		return nil, apperrors.InternalError(err)
	}
	return offer, nil
}

func (s *OfferServiceImpl) ListActive() ([]models.Offer, error) {
	offers, err := s.offerRepo.FindActive()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return offers, nil
}

func (s *OfferServiceImpl) ListForEmployer(email string) ([]models.Offer, error) {
	_, employer, err := s.policy.RequireEmployer(email)
	if err != nil {
		return nil, err
	}

	offers, err := s.offerRepo.FindByEmployer(employer.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return offers, nil
}

func (s *OfferServiceImpl) Search(req *dto.OfferSearchRequest) (*dto.OfferListResponse, error) {
	filter := repositories.OfferFilter{
		Title:    req.Title,
		Location: req.Location,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}

	offers, total, err := s.offerRepo.Search(filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.OfferListResponse{
		Offers:   offers,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// requireOwnedOffer loads the offer and checks the caller owns it.
func (s *OfferServiceImpl) requireOwnedOffer(email, offerID string) (*models.Offer, *models.Employer, error) {
	_, employer, err := s.policy.RequireEmployer(email)
	if err != nil {
		return nil, nil, err
	}

	offer, err := s.GetByID(offerID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.policy.RequireOfferOwner(employer, offer); err != nil {
		return nil, nil, err
	}
	return offer, employer, nil
}
