package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"emploi_backend/internal/middleware"
	"emploi_backend/internal/models"
	"emploi_backend/internal/services"
	"emploi_backend/pkg/apperrors"
)

type RecommendationHandler struct {
	*BaseHandler
	recommendationService services.RecommendationService
}

func NewRecommendationHandler(base *BaseHandler, recommendationService services.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		BaseHandler:           base,
		recommendationService: recommendationService,
	}
}

func (h *RecommendationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	recommendations := rg.Group("/recommendations")
	recommendations.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(models.UserRoleCandidate))
	{
		recommendations.GET("/candidate/:id", h.Recommend)
		recommendations.GET("/candidate/:id/top/:limit", h.RecommendTop)
	}
}

func (h *RecommendationHandler) Recommend(c *gin.Context) {
	recs, err := h.recommendationService.RecommendOffers(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}

func (h *RecommendationHandler) RecommendTop(c *gin.Context) {
	limit, err := strconv.Atoi(c.Param("limit"))
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("limit must be an integer"))
		return
	}

	recs, err := h.recommendationService.RecommendTopOffers(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}
