package domain

import "errors"

// Engine error taxonomy. Every failure aborts the whole operation; nothing is
// retried internally.
var (
	ErrNotFound = errors.New("record not found")

	// state conflicts
	ErrPropertyNotAvailable = errors.New("property not available")
	ErrRentalNotActive      = errors.New("rental not active")
	ErrAlreadyInitialized   = errors.New("platform already initialized")

	// funds
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	// authorization
	ErrUnauthorized = errors.New("unauthorized")

	// schedule
	ErrPaymentNotDue = errors.New("payment not due")

	// arguments
	ErrInvalidTransfer  = errors.New("invalid transfer")
	ErrInvalidExtension = errors.New("invalid extension")
	ErrInvalidRenewal   = errors.New("invalid renewal")
	ErrInvalidListing   = errors.New("invalid listing terms")
)
