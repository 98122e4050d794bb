package app_test

import (
	"context"
	"sort"

	"rentledger/internal/domain"
)

// fakeStore is an in-memory ledger substrate. InTx snapshots state up front
// and restores it on error, mirroring the all-or-nothing commit contract.
type fakeStore struct {
	platform *domain.Platform
	listings map[int64]domain.Listing
	rentals  map[string]domain.Rental
	balances map[string]int64 // address|currency
	events   []domain.Event
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		listings: map[int64]domain.Listing{},
		rentals:  map[string]domain.Rental{},
		balances: map[string]int64{},
	}
}

func balKey(address, currency string) string { return address + "|" + currency }

func (f *fakeStore) snapshot() *fakeStore {
	s := newFakeStore()
	if f.platform != nil {
		p := *f.platform
		s.platform = &p
	}
	for k, v := range f.listings {
		s.listings[k] = v
	}
	for k, v := range f.rentals {
		s.rentals[k] = v
	}
	for k, v := range f.balances {
		s.balances[k] = v
	}
	s.events = append(s.events, f.events...)
	return s
}

func (f *fakeStore) restore(s *fakeStore) {
	f.platform = s.platform
	f.listings = s.listings
	f.rentals = s.rentals
	f.balances = s.balances
	f.events = s.events
}

func (f *fakeStore) InTx(ctx context.Context, fn func(tx domain.Tx) error) error {
	snap := f.snapshot()
	if err := fn(f); err != nil {
		f.restore(snap)
		return err
	}
	return nil
}

// ---- Tx ----

func (f *fakeStore) Platform(ctx context.Context) (domain.Platform, error) {
	if f.platform == nil {
		return domain.Platform{}, domain.ErrNotFound
	}
	return *f.platform, nil
}

func (f *fakeStore) InsertPlatform(ctx context.Context, p domain.Platform) error {
	f.platform = &p
	return nil
}

func (f *fakeStore) PutPlatform(ctx context.Context, p domain.Platform) error {
	f.platform = &p
	return nil
}

func (f *fakeStore) Listing(ctx context.Context, id int64) (domain.Listing, error) {
	l, ok := f.listings[id]
	if !ok {
		return domain.Listing{}, domain.ErrNotFound
	}
	return l, nil
}

func (f *fakeStore) InsertListing(ctx context.Context, l domain.Listing) error {
	f.listings[l.ID] = l
	return nil
}

func (f *fakeStore) PutListing(ctx context.Context, l domain.Listing) error {
	f.listings[l.ID] = l
	return nil
}

func (f *fakeStore) Rental(ctx context.Context, id string) (domain.Rental, error) {
	r, ok := f.rentals[id]
	if !ok {
		return domain.Rental{}, domain.ErrNotFound
	}
	return r, nil
}

func (f *fakeStore) InsertRental(ctx context.Context, r domain.Rental) error {
	f.rentals[r.ID] = r
	return nil
}

func (f *fakeStore) PutRental(ctx context.Context, r domain.Rental) error {
	f.rentals[r.ID] = r
	return nil
}

func (f *fakeStore) Balance(ctx context.Context, address, currency string) (int64, error) {
	return f.balances[balKey(address, currency)], nil
}

func (f *fakeStore) Move(ctx context.Context, from, to, currency string, amount int64) error {
	if f.balances[balKey(from, currency)] < amount {
		return domain.ErrInsufficientFunds
	}
	f.balances[balKey(from, currency)] -= amount
	f.balances[balKey(to, currency)] += amount
	return nil
}

func (f *fakeStore) Credit(ctx context.Context, address, currency string, amount int64) error {
	f.balances[balKey(address, currency)] += amount
	return nil
}

func (f *fakeStore) InsertEvent(ctx context.Context, e domain.Event) error {
	f.events = append(f.events, e)
	return nil
}

// ---- reads ----

func (f *fakeStore) GetPlatform(ctx context.Context) (domain.Platform, error) {
	return f.Platform(ctx)
}

func (f *fakeStore) GetListing(ctx context.Context, id int64) (domain.Listing, error) {
	return f.Listing(ctx, id)
}

func (f *fakeStore) ListAvailable(ctx context.Context, limit int) ([]domain.Listing, error) {
	var out []domain.Listing
	for _, l := range f.listings {
		if l.IsAvailable {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) GetRental(ctx context.Context, id string) (domain.Rental, error) {
	return f.Rental(ctx, id)
}

func (f *fakeStore) ListRentalsForListing(ctx context.Context, listingID int64) ([]domain.Rental, error) {
	var out []domain.Rental
	for _, r := range f.rentals {
		if r.ListingID == listingID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out, nil
}

func (f *fakeStore) ListActiveRentals(ctx context.Context) ([]domain.Rental, error) {
	var out []domain.Rental
	for _, r := range f.rentals {
		if r.Status == domain.RentalStatusActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) ListEvents(ctx context.Context, rentalID string, limit int) ([]domain.Event, error) {
	var out []domain.Event
	for _, e := range f.events {
		if e.RentalID == rentalID {
			out = append(out, e)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) Balances(ctx context.Context, address string) (map[string]int64, error) {
	out := map[string]int64{}
	for _, cur := range []string{"NATIVE", "TOKEN"} {
		if b, ok := f.balances[balKey(address, cur)]; ok {
			out[cur] = b
		}
	}
	return out, nil
}

// fakeCache is a map-backed domain.Cache for query-service tests.
type fakeCache struct {
	store map[string]any
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.store == nil {
		return false, nil
	}
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *domain.Listing:
		*d = v.(domain.Listing)
	case *domain.Rental:
		*d = v.(domain.Rental)
	case *domain.Platform:
		*d = v.(domain.Platform)
	case *[]domain.Listing:
		*d = v.([]domain.Listing)
	}
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}
