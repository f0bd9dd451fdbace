package types

import "errors"

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrCommunityHeadNotFound = errors.New("community head not found")
	ErrDonationNotFound      = errors.New("donation not found")
	ErrJobNotFound           = errors.New("job not found")
	ErrWorkerNotFound        = errors.New("worker not found")
	ErrApplicationNotFound   = errors.New("application not found")
	ErrWorkshopNotFound      = errors.New("workshop not found")

	ErrEmailTaken           = errors.New("email already registered")
	ErrDuplicateApplication = errors.New("worker already applied to this job")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrInsufficientFunds    = errors.New("insufficient csr balance")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidCredentials   = errors.New("invalid credentials")
)
