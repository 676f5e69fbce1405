package dto

import (
	"time"

	"emploi_backend/internal/models"
)

// RegisterRequest covers both roles; role-specific fields are enforced by
// the service.
type RegisterRequest struct {
	Email     string          `json:"email" binding:"required,email"`
	Password  string          `json:"password" binding:"required,min=6"`
	Role      models.UserRole `json:"role" binding:"required,oneof=candidate employer"`
	FirstName string          `json:"first_name" binding:"required"`
	LastName  string          `json:"last_name" binding:"required"`

	// Candidate fields
	CIN             string `json:"cin,omitempty" binding:"required_if=Role candidate"`
	CurrentPosition string `json:"current_position,omitempty"`

	// Employer fields
	CompanyName string `json:"company_name,omitempty" binding:"required_if=Role employer"`
	Sector      string `json:"sector,omitempty"`
	FiscalID    string `json:"fiscal_id,omitempty" binding:"required_if=Role employer"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken string  `json:"access_token"`
	User        UserDTO `json:"user"`
}

type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type PasswordResetConfirm struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

type UserDTO struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	Role      models.UserRole `json:"role"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	CreatedAt time.Time       `json:"created_at"`
}

func NewUserDTO(user *models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Email:     user.Email,
		Role:      user.Role,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		CreatedAt: user.CreatedAt,
	}
}
