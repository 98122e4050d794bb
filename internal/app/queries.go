package app

import (
	"context"
	"time"

	"rentledger/internal/domain"
)

type QueryService struct {
	store    domain.Store
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(s domain.Store, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{store: s, cache: c, cacheTTL: ttl}
}

func (s *QueryService) Platform(ctx context.Context) (domain.Platform, error) {
	var p domain.Platform
	if ok, _ := s.cache.Get(ctx, platformKey, &p); ok {
		return p, nil
	}
	p, err := s.store.GetPlatform(ctx)
	if err != nil {
		return domain.Platform{}, err
	}
	_ = s.cache.Set(ctx, platformKey, p, int(s.cacheTTL.Seconds()))
	return p, nil
}

func (s *QueryService) GetListing(ctx context.Context, id int64) (domain.Listing, error) {
	key := listingKey(id)
	var l domain.Listing
	if ok, _ := s.cache.Get(ctx, key, &l); ok {
		return l, nil
	}
	l, err := s.store.GetListing(ctx, id)
	if err != nil {
		return domain.Listing{}, err
	}
	_ = s.cache.Set(ctx, key, l, int(s.cacheTTL.Seconds()))
	return l, nil
}

// browseMax bounds the cached browse page; the HTTP edge caps requested
// limits at the same value.
const browseMax = 200

func (s *QueryService) ListAvailable(ctx context.Context, limit int) ([]domain.Listing, error) {
	if limit <= 0 || limit > browseMax {
		limit = 50
	}
	var ls []domain.Listing
	if ok, _ := s.cache.Get(ctx, availableKey, &ls); ok {
		return page(ls, limit), nil
	}
	ls, err := s.store.ListAvailable(ctx, browseMax)
	if err != nil {
		return nil, err
	}
	// cache a copy so callers can't mutate the cached slice
	cached := make([]domain.Listing, len(ls))
	copy(cached, ls)
	_ = s.cache.Set(ctx, availableKey, cached, int(s.cacheTTL.Seconds()))
	return page(ls, limit), nil
}

func page(ls []domain.Listing, limit int) []domain.Listing {
	if len(ls) > limit {
		return ls[:limit]
	}
	return ls
}

func (s *QueryService) GetRental(ctx context.Context, id string) (domain.Rental, error) {
	key := rentalKey(id)
	var r domain.Rental
	if ok, _ := s.cache.Get(ctx, key, &r); ok {
		return r, nil
	}
	r, err := s.store.GetRental(ctx, id)
	if err != nil {
		return domain.Rental{}, err
	}
	_ = s.cache.Set(ctx, key, r, int(s.cacheTTL.Seconds()))
	return r, nil
}

// ListingRentals returns a listing's full rental history, any status.
// Uncached: history reads are rare and unbounded.
func (s *QueryService) ListingRentals(ctx context.Context, listingID int64) ([]domain.Rental, error) {
	return s.store.ListRentalsForListing(ctx, listingID)
}

func (s *QueryService) RentalEvents(ctx context.Context, rentalID string, limit int) ([]domain.Event, error) {
	return s.store.ListEvents(ctx, rentalID, limit)
}
