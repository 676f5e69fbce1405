package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"emploi_backend/internal/middleware"
	"emploi_backend/internal/models"
	"emploi_backend/internal/services"
	"emploi_backend/internal/services/dto"
	"emploi_backend/pkg/apperrors"
)

type ProfileHandler struct {
	*BaseHandler
	profileService services.ProfileService
	maxCVSize      int64
}

func NewProfileHandler(base *BaseHandler, profileService services.ProfileService, maxCVSize int64) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler:    base,
		profileService: profileService,
		maxCVSize:      maxCVSize,
	}
}

func (h *ProfileHandler) RegisterRoutes(rg *gin.RouterGroup) {
	profile := rg.Group("/profile")
	profile.Use(middleware.AuthMiddleware())
	{
		profile.GET("", h.GetProfile)
		profile.PUT("/candidate", middleware.RoleMiddleware(models.UserRoleCandidate), h.UpdateCandidateProfile)
		profile.PUT("/employer", middleware.RoleMiddleware(models.UserRoleEmployer), h.UpdateEmployerProfile)

		cv := profile.Group("/cv")
		{
			cv.POST("", middleware.RoleMiddleware(models.UserRoleCandidate), h.UploadCV)
			cv.GET("", middleware.RoleMiddleware(models.UserRoleCandidate), h.DownloadCV)
			cv.DELETE("", middleware.RoleMiddleware(models.UserRoleCandidate), h.DeleteCV)
		}
	}

	candidates := rg.Group("/candidates")
	candidates.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(models.UserRoleEmployer))
	{
		candidates.GET("/:id/cv", h.DownloadCandidateCV)
	}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	email, ok := h.RequireEmail(c)
	if !ok {
		return
	}

	profile, err := h.profileService.GetProfile(email)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) UpdateCandidateProfile(c *gin.Context) {
	email, ok := h.RequireEmail(c)
	if !ok {
		return
	}

	var req dto.UpdateCandidateProfileRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	profile, err := h.profileService.UpdateCandidateProfile(email, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) UpdateEmployerProfile(c *gin.Context) {
	email, ok := h.RequireEmail(c)
	if !ok {
		return
	}

	var req dto.UpdateEmployerProfileRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	profile, err := h.profileService.UpdateEmployerProfile(email, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) UploadCV(c *gin.Context) {
	email, ok := h.RequireEmail(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("A 'file' form field is required"))
		return
	}
	if fileHeader.Size > h.maxCVSize {
		apperrors.HandleError(c, apperrors.NewBadRequestError("File is too large"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.HandleServiceError(c, apperrors.InternalError(err))
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if err := h.profileService.UploadCV(c.Request.Context(), email, fileHeader.Filename, contentType, file); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "CV uploaded"})
}

func (h *ProfileHandler) DownloadCV(c *gin.Context) {
	email, ok := h.RequireEmail(c)
	if !ok {
		return
	}

	reader, filename, err := h.profileService.OpenCV(c.Request.Context(), email)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	defer reader.Close()

	h.streamAttachment(c, reader, filename)
}

func (h *ProfileHandler) DeleteCV(c *gin.Context) {
	email, ok := h.RequireEmail(c)
	if !ok {
		return
	}

	if err := h.profileService.DeleteCV(c.Request.Context(), email); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "CV deleted"})
}

func (h *ProfileHandler) DownloadCandidateCV(c *gin.Context) {
	email, ok := h.RequireEmail(c)
	if !ok {
		return
	}

	reader, filename, err := h.profileService.OpenCandidateCV(c.Request.Context(), email, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	defer reader.Close()

	h.streamAttachment(c, reader, filename)
}

func (h *ProfileHandler) streamAttachment(c *gin.Context, reader io.Reader, filename string) {
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)
	io.Copy(c.Writer, reader)
}
