package app_test

import (
	"context"
	"testing"
	"time"

	"rentledger/internal/app"
	"rentledger/internal/domain"
)

func TestGetListing_CacheMissThenHit(t *testing.T) {
	f := newFakeStore()
	f.listings[42] = domain.Listing{ID: 42, Title: "Corner loft", IsAvailable: true}
	cache := &fakeCache{}
	q := app.NewQueryService(f, cache, 10*time.Minute)

	// miss populates the cache
	l, err := q.GetListing(context.Background(), 42)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if l.ID != 42 || l.Title != "Corner loft" {
		t.Fatalf("unexpected listing: %+v", l)
	}

	// mutate the store to prove the second read is served from cache
	f.listings[42] = domain.Listing{ID: 42, Title: "SHOULD NOT SEE THIS"}

	l2, err := q.GetListing(context.Background(), 42)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if l2.Title != "Corner loft" {
		t.Fatalf("expected cached title, got %s", l2.Title)
	}
}

func TestGetRental_Cache(t *testing.T) {
	f := newFakeStore()
	id := domain.RentalID(1, "tenant-a", 0)
	f.rentals[id] = domain.Rental{ID: id, Tenant: "tenant-a", Status: domain.RentalStatusActive}
	cache := &fakeCache{}
	q := app.NewQueryService(f, cache, 10*time.Minute)

	r, err := q.GetRental(context.Background(), id)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if r.Tenant != "tenant-a" {
		t.Fatalf("unexpected rental: %+v", r)
	}

	f.rentals[id] = domain.Rental{ID: id, Tenant: "changed"}
	r2, _ := q.GetRental(context.Background(), id)
	if r2.Tenant != "tenant-a" {
		t.Fatalf("expected cached tenant, got %s", r2.Tenant)
	}
}

func TestListAvailable_CopiesBeforeCaching(t *testing.T) {
	f := newFakeStore()
	f.listings[1] = domain.Listing{ID: 1, Title: "A", IsAvailable: true}
	f.listings[2] = domain.Listing{ID: 2, Title: "B", IsAvailable: false}
	cache := &fakeCache{}
	q := app.NewQueryService(f, cache, 10*time.Minute)

	out, err := q.ListAvailable(context.Background(), 50)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(out) != 1 || out[0].ID != 1 {
		t.Fatalf("unexpected page: %+v", out)
	}

	// mutating the returned slice must not poison the cached copy
	out[0].Title = "mutated"
	out2, _ := q.ListAvailable(context.Background(), 50)
	if out2[0].Title != "A" {
		t.Fatalf("cached value was aliased: %+v", out2)
	}
}

func TestListAvailable_InvalidationCoversEveryLimit(t *testing.T) {
	f := newFakeStore()
	f.platform = &domain.Platform{Authority: authority, TotalListings: 2}
	f.listings[1] = domain.Listing{ID: 1, Landlord: landlord, Price: 300, Deposit: 1000, ContractLength: 6, IsAvailable: true}
	f.listings[2] = domain.Listing{ID: 2, Landlord: landlord, Price: 300, Deposit: 1000, ContractLength: 6, IsAvailable: true}
	f.balances[balKey(tenantA, "NATIVE")] = 10_000
	cache := &fakeCache{}
	q := app.NewQueryService(f, cache, 10*time.Minute)
	rentals := app.NewRentalService(f, cache, fixedClock(1000))

	// prime the browse page at a limit outside any fixed invalidation set
	out, err := q.ListAvailable(context.Background(), 7)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("unexpected page: %+v", out)
	}

	// renting flips listing 1 unavailable and must evict the browse page
	if _, err := rentals.Create(context.Background(), 1, tenantA, domain.PaymentNative); err != nil {
		t.Fatalf("rent: %v", err)
	}

	out2, err := q.ListAvailable(context.Background(), 7)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(out2) != 1 || out2[0].ID != 2 {
		t.Fatalf("stale browse page after availability flip: %+v", out2)
	}
}

func TestPlatformCounters(t *testing.T) {
	f := newFakeStore()
	f.platform = &domain.Platform{Authority: "auth", TotalListings: 3, TotalVolume: 900}
	q := app.NewQueryService(f, &fakeCache{}, time.Minute)

	p, err := q.Platform(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if p.TotalListings != 3 || p.TotalVolume != 900 {
		t.Fatalf("unexpected platform: %+v", p)
	}
}
