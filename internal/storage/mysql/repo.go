package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"rentledger/internal/domain"
)

// Store is the ledger substrate: every engine operation runs inside one
// transaction via InTx, so record mutations and fund movements commit
// together or not at all.
type Store struct{ db *sql.DB }

func New(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) InTx(ctx context.Context, fn func(tx domain.Tx) error) error {
	txn, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(&tx{q: txn}); err != nil {
		_ = txn.Rollback()
		return err
	}
	if err := txn.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type tx struct{ q *sql.Tx }

// ---- platform ----

func scanPlatform(row *sql.Row) (domain.Platform, error) {
	var p domain.Platform
	err := row.Scan(&p.Authority, &p.TotalListings, &p.TotalRentals, &p.TotalVolume)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Platform{}, domain.ErrNotFound
	}
	return p, err
}

func (t *tx) Platform(ctx context.Context) (domain.Platform, error) {
	return scanPlatform(t.q.QueryRowContext(ctx, getPlatformForUpdate))
}

func (t *tx) InsertPlatform(ctx context.Context, p domain.Platform) error {
	_, err := t.q.ExecContext(ctx, insertPlatformSQL, p.Authority, p.TotalListings, p.TotalRentals, p.TotalVolume)
	return err
}

func (t *tx) PutPlatform(ctx context.Context, p domain.Platform) error {
	_, err := t.q.ExecContext(ctx, updatePlatformSQL, p.Authority, p.TotalListings, p.TotalRentals, p.TotalVolume)
	return err
}

func (s *Store) GetPlatform(ctx context.Context) (domain.Platform, error) {
	return scanPlatform(s.db.QueryRowContext(ctx, getPlatformSQL))
}

// ---- listings ----

type rowScanner interface{ Scan(dest ...any) error }

func scanListing(r rowScanner) (domain.Listing, error) {
	var l domain.Listing
	var amenities []byte
	err := r.Scan(&l.ID, &l.Landlord, &l.Title, &l.Description, &l.Location,
		&l.Price, &l.Deposit, &l.Size, &l.Rooms, &l.Bathrooms, &l.Floor,
		&l.TotalFloors, &l.ContractLength, &l.MoveInDate, &amenities,
		&l.IsAvailable, &l.IsVerified, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Listing{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Listing{}, err
	}
	if len(amenities) > 0 {
		_ = json.Unmarshal(amenities, &l.Amenities)
	}
	return l, nil
}

func listingArgs(l domain.Listing) []any {
	amenities, _ := json.Marshal(l.Amenities)
	return []any{l.Landlord, l.Title, l.Description, l.Location, l.Price, l.Deposit,
		l.Size, l.Rooms, l.Bathrooms, l.Floor, l.TotalFloors, l.ContractLength,
		l.MoveInDate, string(amenities), l.IsAvailable, l.IsVerified,
		l.CreatedAt, l.UpdatedAt}
}

func (t *tx) Listing(ctx context.Context, id int64) (domain.Listing, error) {
	return scanListing(t.q.QueryRowContext(ctx, getListingForUpdate, id))
}

func (t *tx) InsertListing(ctx context.Context, l domain.Listing) error {
	args := append([]any{l.ID}, listingArgs(l)...)
	_, err := t.q.ExecContext(ctx, insertListingSQL, args...)
	return err
}

func (t *tx) PutListing(ctx context.Context, l domain.Listing) error {
	args := append(listingArgs(l), l.ID)
	_, err := t.q.ExecContext(ctx, updateListingSQL, args...)
	return err
}

func (s *Store) GetListing(ctx context.Context, id int64) (domain.Listing, error) {
	return scanListing(s.db.QueryRowContext(ctx, getListingSQL, id))
}

func (s *Store) ListAvailable(ctx context.Context, limit int) ([]domain.Listing, error) {
	if limit <= 0 {
		limit = 50
	}
	return collectListings(s.db.QueryContext(ctx, listAvailableSQL, limit))
}

func collectListings(rows *sql.Rows, err error) ([]domain.Listing, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// ---- rentals ----

func scanRental(r rowScanner) (domain.Rental, error) {
	var rn domain.Rental
	err := r.Scan(&rn.ID, &rn.ListingID, &rn.Landlord, &rn.Tenant, &rn.Price,
		&rn.Deposit, &rn.ContractLength, &rn.StartDate, &rn.EndDate,
		&rn.NextPaymentDate, &rn.Status, &rn.PaymentMethod, &rn.CreatedAt, &rn.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Rental{}, domain.ErrNotFound
	}
	return rn, err
}

func rentalArgs(r domain.Rental) []any {
	return []any{r.ListingID, r.Landlord, r.Tenant, r.Price, r.Deposit,
		r.ContractLength, r.StartDate, r.EndDate, r.NextPaymentDate,
		string(r.Status), string(r.PaymentMethod), r.CreatedAt, r.UpdatedAt}
}

func (t *tx) Rental(ctx context.Context, id string) (domain.Rental, error) {
	return scanRental(t.q.QueryRowContext(ctx, getRentalForUpdate, id))
}

func (t *tx) InsertRental(ctx context.Context, r domain.Rental) error {
	args := append([]any{r.ID}, rentalArgs(r)...)
	_, err := t.q.ExecContext(ctx, insertRentalSQL, args...)
	return err
}

func (t *tx) PutRental(ctx context.Context, r domain.Rental) error {
	args := append(rentalArgs(r), r.ID)
	_, err := t.q.ExecContext(ctx, updateRentalSQL, args...)
	return err
}

func (s *Store) GetRental(ctx context.Context, id string) (domain.Rental, error) {
	return scanRental(s.db.QueryRowContext(ctx, getRentalSQL, id))
}

func (s *Store) ListRentalsForListing(ctx context.Context, listingID int64) ([]domain.Rental, error) {
	return collectRentals(s.db.QueryContext(ctx, listRentalsForListingSQL, listingID))
}

func (s *Store) ListActiveRentals(ctx context.Context) ([]domain.Rental, error) {
	return collectRentals(s.db.QueryContext(ctx, listActiveRentalsSQL))
}

func collectRentals(rows *sql.Rows, err error) ([]domain.Rental, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Rental
	for rows.Next() {
		r, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ---- wallet ----

func (t *tx) Balance(ctx context.Context, address, currency string) (int64, error) {
	var bal int64
	err := t.q.QueryRowContext(ctx, getBalanceForUpdate, address, currency).Scan(&bal)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil // unopened account: zero balance
	}
	return bal, err
}

// Move debits the sender and credits the recipient inside the current
// transaction. The sender row is locked by the balance read; the substrate
// still refuses an overdraft even if the engine forgot to check.
func (t *tx) Move(ctx context.Context, from, to, currency string, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("negative transfer amount %d", amount)
	}
	bal, err := t.Balance(ctx, from, currency)
	if err != nil {
		return err
	}
	if bal < amount {
		return domain.ErrInsufficientFunds
	}
	if _, err := t.q.ExecContext(ctx, debitSQL, amount, from, currency); err != nil {
		return err
	}
	return t.Credit(ctx, to, currency, amount)
}

func (t *tx) Credit(ctx context.Context, address, currency string, amount int64) error {
	_, err := t.q.ExecContext(ctx, creditSQL, address, currency, amount)
	return err
}

func (s *Store) Balances(ctx context.Context, address string) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, balancesSQL, address)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int64{}
	for rows.Next() {
		var cur string
		var bal int64
		if err := rows.Scan(&cur, &bal); err != nil {
			return nil, err
		}
		out[cur] = bal
	}
	return out, rows.Err()
}

// ---- audit events ----

func (t *tx) InsertEvent(ctx context.Context, e domain.Event) error {
	fields, _ := json.Marshal(e.Fields)
	_, err := t.q.ExecContext(ctx, insertEventSQL, e.ID, e.Type, e.RentalID, e.Actor, string(fields), e.CreatedAt)
	return err
}

func (s *Store) ListEvents(ctx context.Context, rentalID string, limit int) ([]domain.Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, listEventsSQL, rentalID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Event
	for rows.Next() {
		var e domain.Event
		var fields []byte
		if err := rows.Scan(&e.ID, &e.Type, &e.RentalID, &e.Actor, &fields, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(fields) > 0 {
			_ = json.Unmarshal(fields, &e.Fields)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
