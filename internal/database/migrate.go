package database

import (
	"gorm.io/gorm"

	"emploi_backend/internal/models"
)

// Migrate applies the schema for all domain entities. Order matters because
// of the foreign keys.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Candidate{},
		&models.Employer{},
		&models.PasswordResetToken{},
		&models.Offer{},
		&models.Application{},
	)
}
