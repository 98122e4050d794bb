package app

import (
	"context"
	"errors"
	"fmt"

	"rentledger/internal/domain"
	"rentledger/internal/oracle"
)

// Cache keys shared by the query service and the mutation-side invalidation.
func listingKey(id int64) string { return fmt.Sprintf("listing:%d", id) }
func rentalKey(id string) string { return fmt.Sprintf("rental:%s", id) }

const (
	platformKey = "platform"
	// One cached browse page, sliced per requested limit, so a single Del
	// covers every limit a caller may ask for.
	availableKey = "listings:available"
)

func invalidateListing(ctx context.Context, c domain.Cache, id int64) {
	if c == nil {
		return
	}
	_ = c.Del(ctx, listingKey(id))
	// availability flips change the browse page
	_ = c.Del(ctx, availableKey)
}

func invalidateRental(ctx context.Context, c domain.Cache, id string) {
	if c == nil {
		return
	}
	_ = c.Del(ctx, rentalKey(id))
}

func invalidatePlatform(ctx context.Context, c domain.Cache) {
	if c == nil {
		return
	}
	_ = c.Del(ctx, platformKey)
}

// outcome maps an operation result to a stable metric label.
func outcome(err error) string {
	var ve *oracle.ValidationError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &ve):
		return "validation_failed"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrPropertyNotAvailable):
		return "property_not_available"
	case errors.Is(err, domain.ErrRentalNotActive):
		return "rental_not_active"
	case errors.Is(err, domain.ErrAlreadyInitialized):
		return "already_initialized"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrInvalidPaymentMethod):
		return "invalid_payment_method"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domain.ErrPaymentNotDue):
		return "payment_not_due"
	case errors.Is(err, domain.ErrInvalidTransfer):
		return "invalid_transfer"
	case errors.Is(err, domain.ErrInvalidExtension):
		return "invalid_extension"
	case errors.Is(err, domain.ErrInvalidRenewal):
		return "invalid_renewal"
	case errors.Is(err, domain.ErrInvalidListing):
		return "invalid_listing"
	default:
		return "error"
	}
}
