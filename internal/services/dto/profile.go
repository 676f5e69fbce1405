package dto

import "emploi_backend/internal/models"

type UpdateCandidateProfileRequest struct {
	FirstName       string `json:"first_name" binding:"required"`
	LastName        string `json:"last_name" binding:"required"`
	CurrentPosition string `json:"current_position,omitempty"`
}

type UpdateEmployerProfileRequest struct {
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	CompanyName string `json:"company_name" binding:"required"`
	Sector      string `json:"sector,omitempty"`
}

// ProfileResponse carries the account plus its role payload.
type ProfileResponse struct {
	User      UserDTO           `json:"user"`
	Candidate *models.Candidate `json:"candidate,omitempty"`
	Employer  *models.Employer  `json:"employer,omitempty"`
}

func NewProfileResponse(user *models.User) *ProfileResponse {
	return &ProfileResponse{
		User:      NewUserDTO(user),
		Candidate: user.Candidate,
		Employer:  user.Employer,
	}
}
