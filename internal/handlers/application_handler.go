package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"emploi_backend/internal/middleware"
	"emploi_backend/internal/models"
	"emploi_backend/internal/services"
	"emploi_backend/internal/services/dto"
)

type ApplicationHandler struct {
	*BaseHandler
	applicationService services.ApplicationService
}

func NewApplicationHandler(base *BaseHandler, applicationService services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		BaseHandler:        base,
		applicationService: applicationService,
	}
}

func (h *ApplicationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	applications := rg.Group("/applications")
	applications.Use(middleware.AuthMiddleware())
	{
		applications.GET("/:id", h.GetByID)

		candidate := applications.Group("")
		candidate.Use(middleware.RoleMiddleware(models.UserRoleCandidate))
		{
			candidate.POST("", h.Submit)
			candidate.GET("/mine", h.ListMine)
			candidate.GET("/check/:offerId", h.CheckApplied)
			candidate.DELETE("/:id", h.Withdraw)
		}

		employer := applications.Group("")
		employer.Use(middleware.RoleMiddleware(models.UserRoleEmployer))
		{
			employer.GET("/job/:offerId", h.ListForOffer)
			employer.GET("/job/:offerId/details", h.DetailsForOffer)
			employer.PATCH("/:id/decision", h.Decide)
			employer.POST("/recalculate-scores", h.RecalculateScores)
		}
	}
}

func (h *ApplicationHandler) Submit(c *gin.Context) {
	email, ok := h.RequireEmail(c)
	if !ok {
		return
	}

	var req dto.SubmitApplicationRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	application, err := h.applicationService.Submit(c.Request.Context(), email, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, application)
}

func (h *ApplicationHandler) ListMine(c *gin.Context) {
	email, ok := h.RequireEmail(c)
	if !ok {
		return
	}

	applications, err := h.applicationService.ListForCandidate(email)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"applications": applications})
}

func (h *ApplicationHandler) ListForOffer(c *gin.Context) {
	email, ok := h.RequireEmail(c)
	if !ok {
		return
	}

	applications, err := h.applicationService.ListForOffer(email, c.Param("offerId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"applications": applications})
}

func (h *ApplicationHandler) DetailsForOffer(c *gin.Context) {
	email, ok := h.RequireEmail(c)
	if !ok {
		return
	}

	details, err := h.applicationService.GetDetailsForOffer(email, c.Param("offerId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"applications": details})
}

func (h *ApplicationHandler) GetByID(c *gin.Context) {
	email, ok := h.RequireEmail(c)
	if !ok {
		return
	}

	application, err := h.applicationService.GetByID(email, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, application)
}

func (h *ApplicationHandler) CheckApplied(c *gin.Context) {
	email, ok := h.RequireEmail(c)
	if !ok {
		return
	}

	applied, err := h.applicationService.CheckApplied(email, c.Param("offerId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"applied": applied})
}

func (h *ApplicationHandler) Decide(c *gin.Context) {
	email, ok := h.RequireEmail(c)
	if !ok {
		return
	}

	var req dto.DecideApplicationRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	application, err := h.applicationService.Decide(email, c.Param("id"), req.Decision)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, application)
}

func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	email, ok := h.RequireEmail(c)
	if !ok {
		return
	}

	if err := h.applicationService.Withdraw(email, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Application withdrawn"})
}

func (h *ApplicationHandler) RecalculateScores(c *gin.Context) {
	updated, err := h.applicationService.RecalculateAllScores(c.Request.Context())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}
