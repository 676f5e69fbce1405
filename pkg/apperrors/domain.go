package apperrors

import (
	"net/http"
)

// Factories and predefined errors for the job-board domain. Repository
// sentinels are translated into these at the service layer so handlers only
// ever see AppError.

// --- Factories ---

// NewNotFound reports a missing User, Offer or Application.
func NewNotFound(domain, message string) *AppError {
	return New(CodeNotFound, domain, message, http.StatusNotFound)
}

// NewRoleMismatch is used when the operation requires a candidate but the
// caller is an employer, or vice versa.
func NewRoleMismatch(message string) *AppError {
	return New(CodeRoleMismatch, "auth", message, http.StatusForbidden)
}

// NewForbidden is used when the caller has the right role but does not own
// the resource.
func NewForbidden(message string) *AppError {
	return New(CodeForbidden, "auth", message, http.StatusForbidden)
}

func NewConflict(domain, message string) *AppError {
	return New(CodeConflict, domain, message, http.StatusConflict)
}

// NewInvalidState reports an operation that is not allowed in the entity's
// current lifecycle state (offer not active, application already decided).
func NewInvalidState(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusConflict)
}

func NewValidation(message string) *AppError {
	return New(CodeValidationFailed, "validation", message, http.StatusBadRequest)
}

// --- Predefined errors ---

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"An account with this email already exists",
	http.StatusConflict,
)

var ErrCINAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"An account with this national ID already exists",
	http.StatusConflict,
)

var ErrFiscalIDAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"An account with this fiscal registration already exists",
	http.StatusConflict,
)

var ErrWeakPassword = New(
	CodeValidationFailed,
	"validation",
	"Password is too weak. Minimum 6 characters required.",
	http.StatusBadRequest,
)

var ErrInvalidCVFileType = New(
	CodeValidationFailed,
	"validation",
	"Only PDF, DOC and DOCX files are accepted",
	http.StatusUnsupportedMediaType,
)

var ErrCVNotFound = New(
	CodeNotFound,
	"profile",
	"No CV found for this candidate",
	http.StatusNotFound,
)
