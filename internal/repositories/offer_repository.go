package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"emploi_backend/internal/models"
)

var ErrOfferNotFound = errors.New("offer not found")

type OfferRepository interface {
	Create(offer *models.Offer) error
	FindByID(id string) (*models.Offer, error)
	Update(offer *models.Offer) error
	UpdateStatus(offerID string, status models.OfferStatus) error
	Delete(offerID string) error
	FindActive() ([]models.Offer, error)
	FindByEmployer(employerID string) ([]models.Offer, error)
	Search(criteria OfferFilter) ([]models.Offer, int64, error)
	FindAll() ([]models.Offer, error)
}

type OfferFilter struct {
	Title    string
	Location string
	Page     int
	PageSize int
}

type OfferRepositoryImpl struct {
	db *gorm.DB
}

func NewOfferRepository(db *gorm.DB) OfferRepository {
	return &OfferRepositoryImpl{db: db}
}

func (r *OfferRepositoryImpl) Create(offer *models.Offer) error {
	return r.db.Create(offer).Error
}

func (r *OfferRepositoryImpl) FindByID(id string) (*models.Offer, error) {
	var offer models.Offer
	err := r.db.Preload("Employer").First(&offer, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, err
	}
	return &offer, nil
}

// Update persists the mutable offer fields. PublishedAt is immutable and
// never written here.
func (r *OfferRepositoryImpl) Update(offer *models.Offer) error {
	result := r.db.Model(offer).Updates(map[string]interface{}{
		"title":       offer.Title,
		"description": offer.Description,
		"location":    offer.Location,
		"expires_at":  offer.ExpiresAt,
		"status":      offer.Status,
		"updated_at":  time.Now(),
	})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOfferNotFound
	}
	return nil
}

func (r *OfferRepositoryImpl) UpdateStatus(offerID string, status models.OfferStatus) error {
	result := r.db.Model(&models.Offer{}).Where("id = ?", offerID).Updates(map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOfferNotFound
	}
	return nil
}

// Delete removes the offer and its applications in one transaction.
func (r *OfferRepositoryImpl) Delete(offerID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("offer_id = ?", offerID).Delete(&models.Application{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", offerID).Delete(&models.Offer{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrOfferNotFound
		}
		return nil
	})
}

func (r *OfferRepositoryImpl) FindActive() ([]models.Offer, error) {
	var offers []models.Offer
	err := r.db.Where("status = ?", models.OfferStatusActive).
		Order("published_at DESC").Find(&offers).Error
	return offers, err
}

func (r *OfferRepositoryImpl) FindByEmployer(employerID string) ([]models.Offer, error) {
	var offers []models.Offer
	err := r.db.Where("employer_id = ?", employerID).
		Order("published_at DESC").Find(&offers).Error
	return offers, err
}

func (r *OfferRepositoryImpl) Search(criteria OfferFilter) ([]models.Offer, int64, error) {
	var offers []models.Offer
	query := r.db.Model(&models.Offer{}).Where("status = ?", models.OfferStatusActive)

	if criteria.Title != "" {
		query = query.Where("title ILIKE ?", "%"+criteria.Title+"%")
	}
	if criteria.Location != "" {
		query = query.Where("location ILIKE ?", "%"+criteria.Location+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if criteria.Page < 1 {
		criteria.Page = 1
	}
	if criteria.PageSize < 1 {
		criteria.PageSize = 20
	}

	limit := criteria.PageSize
	offset := (criteria.Page - 1) * criteria.PageSize

	err := query.Order("published_at DESC").Limit(limit).Offset(offset).Find(&offers).Error
	return offers, total, err
}

func (r *OfferRepositoryImpl) FindAll() ([]models.Offer, error) {
	var offers []models.Offer
	err := r.db.Order("published_at DESC").Find(&offers).Error
	return offers, err
}
