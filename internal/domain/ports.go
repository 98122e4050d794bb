package domain

import (
	"context"
	"time"
)

// Clock is the engine's current-time source. Injected so tests can pin it.
type Clock func() time.Time

// Tx is one atomic unit of the ledger substrate: every mutation made through
// it commits together with the triggering operation or not at all. Record
// reads take row locks, so concurrent mutations of the same Listing or
// Rental serialize instead of producing lost updates.
type Tx interface {
	// Platform singleton
	Platform(ctx context.Context) (Platform, error)
	InsertPlatform(ctx context.Context, p Platform) error
	PutPlatform(ctx context.Context, p Platform) error

	Listing(ctx context.Context, id int64) (Listing, error)
	InsertListing(ctx context.Context, l Listing) error
	PutListing(ctx context.Context, l Listing) error

	Rental(ctx context.Context, id string) (Rental, error)
	InsertRental(ctx context.Context, r Rental) error
	PutRental(ctx context.Context, r Rental) error

	// Fund transfer collaborator: wallet rows live on the same transaction
	// so fund movement and state mutation are one atomic unit.
	Balance(ctx context.Context, address, currency string) (int64, error)
	Move(ctx context.Context, from, to, currency string, amount int64) error
	Credit(ctx context.Context, address, currency string, amount int64) error

	InsertEvent(ctx context.Context, e Event) error
}

type Store interface {
	// InTx runs fn inside one transaction; a non-nil error rolls every
	// mutation back.
	InTx(ctx context.Context, fn func(tx Tx) error) error

	// Read paths (no locks)
	GetPlatform(ctx context.Context) (Platform, error)
	GetListing(ctx context.Context, id int64) (Listing, error)
	ListAvailable(ctx context.Context, limit int) ([]Listing, error)
	GetRental(ctx context.Context, id string) (Rental, error)
	ListRentalsForListing(ctx context.Context, listingID int64) ([]Rental, error)
	ListActiveRentals(ctx context.Context) ([]Rental, error)
	ListEvents(ctx context.Context, rentalID string, limit int) ([]Event, error)
	Balances(ctx context.Context, address string) (map[string]int64, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
