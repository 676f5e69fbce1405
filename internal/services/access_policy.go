package services

import (
	"emploi_backend/internal/models"
	"emploi_backend/internal/repositories"
	"emploi_backend/pkg/apperrors"
)

// AccessPolicy centralizes identity resolution, role checks and ownership
// checks. Every violation is an error; callers never get silently filtered
// results.
type AccessPolicy struct {
	userRepo repositories.UserRepository
}

func NewAccessPolicy(userRepo repositories.UserRepository) *AccessPolicy {
	return &AccessPolicy{userRepo: userRepo}
}

// ResolveUser maps the authenticated email to the account.
func (p *AccessPolicy) ResolveUser(email string) (*models.User, error) {
	user, err := p.userRepo.FindByEmail(email)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NewNotFound("user", "Account not found")
		}
		return nil, apperrors.InternalError(err)
	}
	return user, nil
}

// RequireCandidate resolves the email and fails unless it is a candidate
// account with its payload row.
func (p *AccessPolicy) RequireCandidate(email string) (*models.User, *models.Candidate, error) {
	user, err := p.ResolveUser(email)
	if err != nil {
		return nil, nil, err
	}
	if user.Role != models.UserRoleCandidate || user.Candidate == nil {
		return nil, nil, apperrors.NewRoleMismatch("This operation requires a candidate account")
	}
	return user, user.Candidate, nil
}

// RequireEmployer resolves the email and fails unless it is an employer
// account with its payload row.
func (p *AccessPolicy) RequireEmployer(email string) (*models.User, *models.Employer, error) {
	user, err := p.ResolveUser(email)
	if err != nil {
		return nil, nil, err
	}
	if user.Role != models.UserRoleEmployer || user.Employer == nil {
		return nil, nil, apperrors.NewRoleMismatch("This operation requires an employer account")
	}
	return user, user.Employer, nil
}

// RequireOfferOwner fails unless the employer owns the offer.
func (p *AccessPolicy) RequireOfferOwner(employer *models.Employer, offer *models.Offer) error {
	if offer.EmployerID != employer.ID {
		return apperrors.NewForbidden("You do not own this offer")
	}
	return nil
}

// RequireApplicationOwner fails unless the candidate submitted the
// application.
func (p *AccessPolicy) RequireApplicationOwner(candidate *models.Candidate, application *models.Application) error {
	if application.CandidateID != candidate.ID {
		return apperrors.NewForbidden("You do not own this application")
	}
	return nil
}
