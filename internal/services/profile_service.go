package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"emploi_backend/internal/config"
	"emploi_backend/internal/models"
	"emploi_backend/internal/repositories"
	"emploi_backend/internal/services/dto"
	"emploi_backend/internal/storage"
	"emploi_backend/pkg/apperrors"
)

type ProfileService interface {
	GetProfile(email string) (*dto.ProfileResponse, error)
	UpdateCandidateProfile(email string, req *dto.UpdateCandidateProfileRequest) (*dto.ProfileResponse, error)
	UpdateEmployerProfile(email string, req *dto.UpdateEmployerProfileRequest) (*dto.ProfileResponse, error)

	UploadCV(ctx context.Context, email, filename, contentType string, reader io.Reader) error
	DeleteCV(ctx context.Context, email string) error
	OpenCV(ctx context.Context, email string) (io.ReadCloser, string, error)
	OpenCandidateCV(ctx context.Context, employerEmail, candidateID string) (io.ReadCloser, string, error)
}

type ProfileServiceImpl struct {
	userRepo repositories.UserRepository
	policy   *AccessPolicy
	store    storage.Storage
	cfg      *config.Config
}

func NewProfileService(userRepo repositories.UserRepository, policy *AccessPolicy, store storage.Storage, cfg *config.Config) ProfileService {
	return &ProfileServiceImpl{
		userRepo: userRepo,
		policy:   policy,
		store:    store,
		cfg:      cfg,
	}
}

func (s *ProfileServiceImpl) GetProfile(email string) (*dto.ProfileResponse, error) {
	user, err := s.policy.ResolveUser(email)
	if err != nil {
		return nil, err
	}
	return dto.NewProfileResponse(user), nil
}

func (s *ProfileServiceImpl) UpdateCandidateProfile(email string, req *dto.UpdateCandidateProfileRequest) (*dto.ProfileResponse, error) {
	user, candidate, err := s.policy.RequireCandidate(email)
	if err != nil {
		return nil, err
	}

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	if err := s.userRepo.Update(user); err != nil {
		return nil, apperrors.InternalError(err)
	}

	candidate.CurrentPosition = req.CurrentPosition
	if err := s.userRepo.UpdateCandidate(candidate); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return dto.NewProfileResponse(user), nil
}

func (s *ProfileServiceImpl) UpdateEmployerProfile(email string, req *dto.UpdateEmployerProfileRequest) (*dto.ProfileResponse, error) {
	user, employer, err := s.policy.RequireEmployer(email)
	if err != nil {
		return nil, err
	}

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	if err := s.userRepo.Update(user); err != nil {
		return nil, apperrors.InternalError(err)
	}

	employer.CompanyName = req.CompanyName
	employer.Sector = req.Sector
	if err := s.userRepo.UpdateEmployer(employer); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return dto.NewProfileResponse(user), nil
}

// UploadCV stores the CV blob and records its path on the candidate,
// replacing any previous upload.
func (s *ProfileServiceImpl) UploadCV(ctx context.Context, email, filename, contentType string, reader io.Reader) error {
	_, candidate, err := s.policy.RequireCandidate(email)
	if err != nil {
		return err
	}

	if !s.allowedCVType(contentType) {
		return apperrors.ErrInvalidCVFileType
	}

	oldPath := ""
	if candidate.HasCV() {
		oldPath = *candidate.CVPath
	}

	path := fmt.Sprintf("cv/%s%s", candidate.ID, strings.ToLower(filepath.Ext(filename)))
	if err := s.store.Save(ctx, path, reader, contentType); err != nil {
		return apperrors.InternalError(err)
	}

	now := time.Now()
	candidate.CVPath = &path
	candidate.CVUploadedAt = &now
	if err := s.userRepo.UpdateCandidate(candidate); err != nil {
		return apperrors.InternalError(err)
	}

	if oldPath != "" && oldPath != path {
		s.store.Delete(ctx, oldPath)
	}

	return nil
}

func (s *ProfileServiceImpl) DeleteCV(ctx context.Context, email string) error {
	_, candidate, err := s.policy.RequireCandidate(email)
	if err != nil {
		return err
	}

	if !candidate.HasCV() {
		return apperrors.ErrCVNotFound
	}

	path := *candidate.CVPath
	candidate.CVPath = nil
	candidate.CVUploadedAt = nil
	if err := s.userRepo.UpdateCandidate(candidate); err != nil {
		return apperrors.InternalError(err)
	}

	if err := s.store.Delete(ctx, path); err != nil {
		return apperrors.InternalError(err)
	}

	return nil
}

// OpenCV streams the caller's own CV.
func (s *ProfileServiceImpl) OpenCV(ctx context.Context, email string) (io.ReadCloser, string, error) {
	_, candidate, err := s.policy.RequireCandidate(email)
	if err != nil {
		return nil, "", err
	}
	return s.openCandidateBlob(ctx, candidate)
}

// OpenCandidateCV streams another candidate's CV; only employers may do this.
func (s *ProfileServiceImpl) OpenCandidateCV(ctx context.Context, employerEmail, candidateID string) (io.ReadCloser, string, error) {
	_, _, err := s.policy.RequireEmployer(employerEmail)
	if err != nil {
		return nil, "", err
	}

	candidate, err := s.userRepo.FindCandidateByID(candidateID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, "", apperrors.NewNotFound("candidate", "Candidate not found")
		}
		return nil, "", apperrors.InternalError(err)
	}

	return s.openCandidateBlob(ctx, candidate)
}

func (s *ProfileServiceImpl) openCandidateBlob(ctx context.Context, candidate *models.Candidate) (io.ReadCloser, string, error) {
	if !candidate.HasCV() {
		return nil, "", apperrors.ErrCVNotFound
	}

	path := *candidate.CVPath
	exists, err := s.store.Exists(ctx, path)
	if err != nil {
		return nil, "", apperrors.InternalError(err)
	}
	if !exists {
		return nil, "", apperrors.ErrCVNotFound
	}

	reader, err := s.store.Get(ctx, path)
	if err != nil {
		return nil, "", apperrors.InternalError(err)
	}
	return reader, filepath.Base(path), nil
}

func (s *ProfileServiceImpl) allowedCVType(contentType string) bool {
	for _, allowed := range s.cfg.Upload.AllowedTypes {
		if contentType == allowed {
			return true
		}
	}
	return false
}
