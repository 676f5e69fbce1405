package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"emploi_backend/internal/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrTokenNotFound     = errors.New("password reset token not found")
)

type UserRepository interface {
	// User operations
	FindByID(id string) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
	Create(user *models.User) error
	Update(user *models.User) error
	UpdatePassword(userID, passwordHash string) error
	Delete(userID string) error
	ExistsByEmail(email string) (bool, error)

	// Payload operations
	FindCandidateByID(id string) (*models.Candidate, error)
	UpdateCandidate(candidate *models.Candidate) error
	UpdateEmployer(employer *models.Employer) error
	ExistsByCIN(cin string) (bool, error)
	ExistsByFiscalID(fiscalID string) (bool, error)

	// PasswordResetToken operations
	CreateResetToken(token *models.PasswordResetToken) error
	FindResetToken(token string) (*models.PasswordResetToken, error)
	DeleteResetToken(token string) error
	DeleteUserResetTokens(userID string) error
}

type UserRepositoryImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &UserRepositoryImpl{db: db}
}

// User operations

func (r *UserRepositoryImpl) FindByID(id string) (*models.User, error) {
	var user models.User
	err := r.db.Preload("Candidate").Preload("Employer").
		First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Preload("Candidate").Preload("Employer").
		First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Create persists the user together with its candidate or employer payload
// in one transaction.
func (r *UserRepositoryImpl) Create(user *models.User) error {
	var existing models.User
	if err := r.db.Where("email = ?", user.Email).First(&existing).Error; err == nil {
		return ErrUserAlreadyExists
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(user).Error
	})
}

func (r *UserRepositoryImpl) Update(user *models.User) error {
	result := r.db.Model(user).Updates(map[string]interface{}{
		"email":      user.Email,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"updated_at": time.Now(),
	})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) UpdatePassword(userID, passwordHash string) error {
	result := r.db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"password_hash": passwordHash,
		"updated_at":    time.Now(),
	})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) Delete(userID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.PasswordResetToken{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Candidate{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Employer{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", userID).Delete(&models.User{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

func (r *UserRepositoryImpl) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// Payload operations

func (r *UserRepositoryImpl) FindCandidateByID(id string) (*models.Candidate, error) {
	var candidate models.Candidate
	err := r.db.First(&candidate, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &candidate, nil
}

func (r *UserRepositoryImpl) UpdateCandidate(candidate *models.Candidate) error {
	result := r.db.Model(candidate).Updates(map[string]interface{}{
		"current_position": candidate.CurrentPosition,
		"cv_path":          candidate.CVPath,
		"cv_uploaded_at":   candidate.CVUploadedAt,
		"updated_at":       time.Now(),
	})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) UpdateEmployer(employer *models.Employer) error {
	result := r.db.Model(employer).Updates(map[string]interface{}{
		"company_name": employer.CompanyName,
		"sector":       employer.Sector,
		"updated_at":   time.Now(),
	})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) ExistsByCIN(cin string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Candidate{}).Where("cin = ?", cin).Count(&count).Error
	return count > 0, err
}

func (r *UserRepositoryImpl) ExistsByFiscalID(fiscalID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Employer{}).Where("fiscal_id = ?", fiscalID).Count(&count).Error
	return count > 0, err
}

// PasswordResetToken operations

func (r *UserRepositoryImpl) CreateResetToken(token *models.PasswordResetToken) error {
	return r.db.Create(token).Error
}

func (r *UserRepositoryImpl) FindResetToken(token string) (*models.PasswordResetToken, error) {
	var resetToken models.PasswordResetToken
	err := r.db.Where("token = ?", token).First(&resetToken).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &resetToken, nil
}

func (r *UserRepositoryImpl) DeleteResetToken(token string) error {
	return r.db.Where("token = ?", token).Delete(&models.PasswordResetToken{}).Error
}

func (r *UserRepositoryImpl) DeleteUserResetTokens(userID string) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.PasswordResetToken{}).Error
}
