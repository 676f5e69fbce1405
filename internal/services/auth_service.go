package services

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"emploi_backend/internal/auth"
	"emploi_backend/internal/email"
	"emploi_backend/internal/logger"
	"emploi_backend/internal/models"
	"emploi_backend/internal/repositories"
	"emploi_backend/internal/services/dto"
	"emploi_backend/pkg/apperrors"
)

type AuthService interface {
	Register(req *dto.RegisterRequest) (*dto.UserDTO, error)
	Login(req *dto.LoginRequest) (*dto.LoginResponse, error)
	RequestPasswordReset(email string) error
	ResetPassword(token, newPassword string) error
}

type AuthServiceImpl struct {
	userRepo      repositories.UserRepository
	emailProvider email.Provider
}

func NewAuthService(userRepo repositories.UserRepository, emailProvider email.Provider) AuthService {
	return &AuthServiceImpl{
		userRepo:      userRepo,
		emailProvider: emailProvider,
	}
}

// Register creates the account and its role payload in one transaction.
func (s *AuthServiceImpl) Register(req *dto.RegisterRequest) (*dto.UserDTO, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.ErrWeakPassword
	}

	if err := s.checkUniqueness(req); err != nil {
		return nil, err
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Role:         req.Role,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	}

	switch req.Role {
	case models.UserRoleCandidate:
		if req.CIN == "" {
			return nil, apperrors.NewValidation("cin is required for candidate accounts")
		}
		user.Candidate = &models.Candidate{
			CIN:             req.CIN,
			CurrentPosition: req.CurrentPosition,
		}
	case models.UserRoleEmployer:
		if req.CompanyName == "" {
			return nil, apperrors.NewValidation("company_name is required for employer accounts")
		}
		if req.FiscalID == "" {
			return nil, apperrors.NewValidation("fiscal_id is required for employer accounts")
		}
		user.Employer = &models.Employer{
			CompanyName: req.CompanyName,
			Sector:      req.Sector,
			FiscalID:    req.FiscalID,
		}
	default:
		return nil, apperrors.NewValidation("role must be candidate or employer")
	}

	if err := s.userRepo.Create(user); err != nil {
		if apperrors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, apperrors.InternalError(err)
	}

	userDTO := dto.NewUserDTO(user)
	return &userDTO, nil
}

// Login checks the credentials and issues an access token.
func (s *AuthServiceImpl) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	accessToken, err := auth.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.LoginResponse{
		AccessToken: accessToken,
		User:        dto.NewUserDTO(user),
	}, nil
}

// RequestPasswordReset issues a reset token and mails it. Unknown addresses
// are reported as success so accounts cannot be enumerated.
func (s *AuthServiceImpl) RequestPasswordReset(emailAddr string) error {
	user, err := s.userRepo.FindByEmail(emailAddr)
	if err != nil {
		return nil
	}

	token := generateRandomToken()

	// One active token per user.
	if err := s.userRepo.DeleteUserResetTokens(user.ID); err != nil {
		return apperrors.InternalError(err)
	}

	resetToken := &models.PasswordResetToken{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(1 * time.Hour),
	}
	if err := s.userRepo.CreateResetToken(resetToken); err != nil {
		return apperrors.InternalError(err)
	}

	s.sendPasswordResetEmail(user.Email, token)
	return nil
}

// ResetPassword consumes the token and replaces the password.
func (s *AuthServiceImpl) ResetPassword(token, newPassword string) error {
	resetToken, err := s.userRepo.FindResetToken(token)
	if err != nil {
		if apperrors.Is(err, repositories.ErrTokenNotFound) {
			return apperrors.ErrInvalidToken
		}
		return apperrors.InternalError(err)
	}

	if resetToken.Expired(time.Now()) {
		s.userRepo.DeleteResetToken(token)
		return apperrors.ErrInvalidToken
	}

	if err := auth.ValidatePassword(newPassword); err != nil {
		return apperrors.ErrWeakPassword
	}

	hashedPassword, err := auth.HashPassword(newPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}

	if err := s.userRepo.UpdatePassword(resetToken.UserID, hashedPassword); err != nil {
		return apperrors.InternalError(err)
	}

	if err := s.userRepo.DeleteUserResetTokens(resetToken.UserID); err != nil {
		logger.WithError(err).Warn("failed to purge reset tokens", "user_id", resetToken.UserID)
	}

	return nil
}

// --- Helpers ---

func (s *AuthServiceImpl) checkUniqueness(req *dto.RegisterRequest) error {
	exists, err := s.userRepo.ExistsByEmail(req.Email)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if exists {
		return apperrors.ErrEmailAlreadyExists
	}

	if req.Role == models.UserRoleCandidate && req.CIN != "" {
		exists, err := s.userRepo.ExistsByCIN(req.CIN)
		if err != nil {
			return apperrors.InternalError(err)
		}
		if exists {
			return apperrors.ErrCINAlreadyExists
		}
	}

	if req.Role == models.UserRoleEmployer && req.FiscalID != "" {
		exists, err := s.userRepo.ExistsByFiscalID(req.FiscalID)
		if err != nil {
			return apperrors.InternalError(err)
		}
		if exists {
			return apperrors.ErrFiscalIDAlreadyExists
		}
	}

	return nil
}

func (s *AuthServiceImpl) sendPasswordResetEmail(emailAddr, token string) {
	if s.emailProvider == nil {
		return
	}

	go func() {
		if err := s.emailProvider.SendPasswordReset(emailAddr, token); err != nil {
			logger.WithError(err).Warn("failed to send password reset email")
		}
	}()
}

func generateRandomToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return hex.EncodeToString([]byte(time.Now().String()))
	}
	return hex.EncodeToString(b)
}
