package dto

import (
	"time"

	"emploi_backend/internal/models"
)

type CreateOfferRequest struct {
	Title       string    `json:"title" binding:"required,max=150"`
	Description string    `json:"description" binding:"required"`
	Location    string    `json:"location,omitempty"`
	ExpiresAt   time.Time `json:"expires_at" binding:"required"`
}

// UpdateOfferRequest updates only the fields that are present.
type UpdateOfferRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Location    *string    `json:"location,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

type OfferSearchRequest struct {
	Title    string `form:"title"`
	Location string `form:"location"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

type OfferListResponse struct {
	Offers   []models.Offer `json:"offers"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}
