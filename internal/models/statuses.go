package models

type UserRole string
type OfferStatus string
type ApplicationStatus string
type Decision string

const (
	UserRoleCandidate UserRole = "candidate"
	UserRoleEmployer  UserRole = "employer"

	OfferStatusActive OfferStatus = "active"
	OfferStatusClosed OfferStatus = "closed"

	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusAccepted ApplicationStatus = "accepted"
	ApplicationStatusRejected ApplicationStatus = "rejected"

	DecisionAccepted Decision = "accepted"
	DecisionRejected Decision = "rejected"
)
