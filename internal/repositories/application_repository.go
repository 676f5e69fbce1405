package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"emploi_backend/internal/models"
)

var (
	ErrApplicationNotFound       = errors.New("application not found")
	ErrApplicationAlreadyExists  = errors.New("application already exists for this offer")
	ErrApplicationAlreadyDecided = errors.New("application already decided")
)

type ApplicationRepository interface {
	Create(application *models.Application) error
	FindByID(id string) (*models.Application, error)
	FindByCandidate(candidateID string) ([]models.Application, error)
	FindByOffer(offerID string) ([]models.Application, error)
	FindByOfferOrderByScoreDesc(offerID string) ([]models.Application, error)
	FindAll() ([]models.Application, error)
	ExistsByCandidateAndOffer(candidateID, offerID string) (bool, error)
	UpdateScore(applicationID string, score float64) error
	UpdateStatusIfPending(applicationID string, status models.ApplicationStatus, decision models.Decision) error
	DeleteIfPending(applicationID string) error
}

type ApplicationRepositoryImpl struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &ApplicationRepositoryImpl{db: db}
}

func (r *ApplicationRepositoryImpl) Create(application *models.Application) error {
	var count int64
	err := r.db.Model(&models.Application{}).
		Where("candidate_id = ? AND offer_id = ?", application.CandidateID, application.OfferID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrApplicationAlreadyExists
	}

	return r.db.Create(application).Error
}

func (r *ApplicationRepositoryImpl) FindByID(id string) (*models.Application, error) {
	var application models.Application
	err := r.db.Preload("Candidate").Preload("Offer").
		First(&application, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &application, nil
}

func (r *ApplicationRepositoryImpl) FindByCandidate(candidateID string) ([]models.Application, error) {
	var applications []models.Application
	err := r.db.Preload("Offer").
		Where("candidate_id = ?", candidateID).
		Order("submitted_at DESC").Find(&applications).Error
	return applications, err
}

func (r *ApplicationRepositoryImpl) FindByOffer(offerID string) ([]models.Application, error) {
	var applications []models.Application
	err := r.db.Preload("Candidate").
		Where("offer_id = ?", offerID).
		Order("submitted_at DESC").Find(&applications).Error
	return applications, err
}

// FindByOfferOrderByScoreDesc returns the offer's applications best match
// first; equal scores keep submission order.
func (r *ApplicationRepositoryImpl) FindByOfferOrderByScoreDesc(offerID string) ([]models.Application, error) {
	var applications []models.Application
	err := r.db.Preload("Candidate").
		Where("offer_id = ?", offerID).
		Order("score DESC, submitted_at ASC").Find(&applications).Error
	return applications, err
}

func (r *ApplicationRepositoryImpl) FindAll() ([]models.Application, error) {
	var applications []models.Application
	err := r.db.Preload("Candidate").Preload("Offer").Find(&applications).Error
	return applications, err
}

func (r *ApplicationRepositoryImpl) ExistsByCandidateAndOffer(candidateID, offerID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Application{}).
		Where("candidate_id = ? AND offer_id = ?", candidateID, offerID).
		Count(&count).Error
	return count > 0, err
}

func (r *ApplicationRepositoryImpl) UpdateScore(applicationID string, score float64) error {
	result := r.db.Model(&models.Application{}).Where("id = ?", applicationID).Updates(map[string]interface{}{
		"score":      score,
		"updated_at": time.Now(),
	})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

// UpdateStatusIfPending writes the decision only when the row is still
// pending, so two concurrent decisions cannot both win.
func (r *ApplicationRepositoryImpl) UpdateStatusIfPending(applicationID string, status models.ApplicationStatus, decision models.Decision) error {
	result := r.db.Model(&models.Application{}).
		Where("id = ? AND status = ?", applicationID, models.ApplicationStatusPending).
		Updates(map[string]interface{}{
			"status":     status,
			"decision":   decision,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.pendingConflict(applicationID)
	}
	return nil
}

// DeleteIfPending removes the application only while it is still pending.
func (r *ApplicationRepositoryImpl) DeleteIfPending(applicationID string) error {
	result := r.db.
		Where("id = ? AND status = ?", applicationID, models.ApplicationStatusPending).
		Delete(&models.Application{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.pendingConflict(applicationID)
	}
	return nil
}

// pendingConflict distinguishes a missing row from one that was already
// decided, after a conditional write matched nothing.
func (r *ApplicationRepositoryImpl) pendingConflict(applicationID string) error {
	var count int64
	if err := r.db.Model(&models.Application{}).Where("id = ?", applicationID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrApplicationNotFound
	}
	return ErrApplicationAlreadyDecided
}
