package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"emploi_backend/internal/middleware"
	"emploi_backend/internal/models"
	"emploi_backend/internal/services"
	"emploi_backend/internal/services/dto"
)

type OfferHandler struct {
	*BaseHandler
	offerService services.OfferService
}

func NewOfferHandler(base *BaseHandler, offerService services.OfferService) *OfferHandler {
	return &OfferHandler{
		BaseHandler:  base,
		offerService: offerService,
	}
}

func (h *OfferHandler) RegisterRoutes(rg *gin.RouterGroup) {
	jobs := rg.Group("/jobs")
	{
		jobs.GET("", h.ListActive)
		jobs.GET("/search", h.Search)
		jobs.GET("/:id", h.GetByID)
	}

	owned := rg.Group("/jobs")
	owned.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(models.UserRoleEmployer))
	{
		owned.POST("", h.Create)
		owned.GET("/mine", h.ListMine)
		owned.PUT("/:id", h.Update)
		owned.PATCH("/:id/close", h.Close)
		owned.DELETE("/:id", h.Delete)
	}
}

func (h *OfferHandler) Create(c *gin.Context) {
	email, ok := h.RequireEmail(c)
	if !ok {
		return
	}

	var req dto.CreateOfferRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	offer, err := h.offerService.Create(email, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, offer)
}

func (h *OfferHandler) Update(c *gin.Context) {
	email, ok := h.RequireEmail(c)
	if !ok {
		return
	}

	var req dto.UpdateOfferRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	offer, err := h.offerService.Update(email, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, offer)
}

func (h *OfferHandler) Close(c *gin.Context) {
	email, ok := h.RequireEmail(c)
	if !ok {
		return
	}

	offer, err := h.offerService.Close(email, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, offer)
}

func (h *OfferHandler) Delete(c *gin.Context) {
	email, ok := h.RequireEmail(c)
	if !ok {
		return
	}

	if err := h.offerService.Delete(email, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Offer deleted"})
}

func (h *OfferHandler) GetByID(c *gin.Context) {
	offer, err := h.offerService.GetByID(c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, offer)
}

func (h *OfferHandler) ListActive(c *gin.Context) {
	offers, err := h.offerService.ListActive()
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"offers": offers})
}

func (h *OfferHandler) ListMine(c *gin.Context) {
	email, ok := h.RequireEmail(c)
	if !ok {
		return
	}

	offers, err := h.offerService.ListForEmployer(email)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"offers": offers})
}

func (h *OfferHandler) Search(c *gin.Context) {
	var req dto.OfferSearchRequest
	if !h.BindAndValidateQuery(c, &req) {
		return
	}

	result, err := h.offerService.Search(&req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
