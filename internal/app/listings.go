package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"rentledger/internal/adapters/observability"
	"rentledger/internal/domain"
	"rentledger/internal/oracle"
)

type ListingService struct {
	store domain.Store
	cache domain.Cache
	now   domain.Clock
}

func NewListingService(s domain.Store, c domain.Cache, clock domain.Clock) *ListingService {
	if clock == nil {
		clock = time.Now
	}
	return &ListingService{store: s, cache: c, now: clock}
}

// Initialize creates the platform singleton with zeroed counters. Done once;
// a second call fails.
func (s *ListingService) Initialize(ctx context.Context, authority string) error {
	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		if _, err := tx.Platform(ctx); err == nil {
			return domain.ErrAlreadyInitialized
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return tx.InsertPlatform(ctx, domain.Platform{Authority: authority})
	})
	observability.ObserveEngine("initialize", outcome(err))
	if err == nil {
		invalidatePlatform(ctx, s.cache)
		log.Info().Str("authority", authority).Msg("platform initialized")
	}
	return err
}

type CreateListingInput struct {
	Title          string
	Description    string
	Location       string
	Price          int64
	Deposit        int64
	Size           int
	Rooms          int
	Bathrooms      int
	Floor          int
	TotalFloors    int
	ContractLength int
	MoveInDate     int64
	Amenities      []string
}

// Create admits a listing through the validation gate, assigns the next
// sequential id and bumps the platform listing counter, all in one unit.
func (s *ListingService) Create(ctx context.Context, landlord string, in CreateListingInput) (domain.Listing, error) {
	var out domain.Listing
	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		// amounts must be non-negative before they reach the escrow and
		// refund arithmetic
		if in.Price < 0 || in.Deposit < 0 || in.ContractLength <= 0 {
			return domain.ErrInvalidListing
		}
		if err := oracle.Validate(in.Location, in.Price, in.Size, in.Rooms, in.Bathrooms, in.Floor, in.TotalFloors); err != nil {
			return err
		}
		p, err := tx.Platform(ctx)
		if err != nil {
			return err
		}
		now := s.now().Unix()
		out = domain.Listing{
			ID:             p.TotalListings + 1,
			Landlord:       landlord,
			Title:          in.Title,
			Description:    in.Description,
			Location:       in.Location,
			Price:          in.Price,
			Deposit:        in.Deposit,
			Size:           in.Size,
			Rooms:          in.Rooms,
			Bathrooms:      in.Bathrooms,
			Floor:          in.Floor,
			TotalFloors:    in.TotalFloors,
			ContractLength: in.ContractLength,
			MoveInDate:     in.MoveInDate,
			Amenities:      in.Amenities,
			IsAvailable:    true,
			IsVerified:     false,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := tx.InsertListing(ctx, out); err != nil {
			return err
		}
		p.TotalListings++
		return tx.PutPlatform(ctx, p)
	})
	observability.ObserveEngine("create_listing", outcome(err))
	if err != nil {
		return domain.Listing{}, err
	}
	invalidateListing(ctx, s.cache, out.ID)
	invalidatePlatform(ctx, s.cache)
	log.Info().Int64("listing", out.ID).Str("landlord", landlord).Str("location", in.Location).Msg("listing created")
	return out, nil
}

// Verify flips is_verified. Platform authority only. No further checks in
// this version; the gate already ran at creation.
func (s *ListingService) Verify(ctx context.Context, caller string, id int64) error {
	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		p, err := tx.Platform(ctx)
		if err != nil {
			return err
		}
		if caller != p.Authority {
			return domain.ErrUnauthorized
		}
		l, err := tx.Listing(ctx, id)
		if err != nil {
			return err
		}
		l.IsVerified = true
		l.UpdatedAt = s.now().Unix()
		return tx.PutListing(ctx, l)
	})
	observability.ObserveEngine("verify_listing", outcome(err))
	if err == nil {
		invalidateListing(ctx, s.cache, id)
		log.Info().Int64("listing", id).Msg("listing verified")
	}
	return err
}
