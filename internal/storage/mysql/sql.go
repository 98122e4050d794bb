package mysql

// platform is a single row (id = 1). FOR UPDATE serializes every operation
// that touches the counters.
const (
	insertPlatformSQL = `
INSERT INTO platform (id, authority, total_listings, total_rentals, total_volume)
VALUES (1, ?, ?, ?, ?)
`
	getPlatformSQL       = `SELECT authority, total_listings, total_rentals, total_volume FROM platform WHERE id = 1`
	getPlatformForUpdate = getPlatformSQL + ` FOR UPDATE`
	updatePlatformSQL    = `
UPDATE platform
SET authority = ?, total_listings = ?, total_rentals = ?, total_volume = ?
WHERE id = 1
`
)

const (
	insertListingSQL = `
INSERT INTO listings
  (id, landlord, title, description, location, price, deposit, size, rooms,
   bathrooms, floor, total_floors, contract_length, move_in_date, amenities,
   is_available, is_verified, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`
	listingCols = `id, landlord, title, description, location, price, deposit, size, rooms,
  bathrooms, floor, total_floors, contract_length, move_in_date, amenities,
  is_available, is_verified, created_at, updated_at`

	getListingSQL       = `SELECT ` + listingCols + ` FROM listings WHERE id = ?`
	getListingForUpdate = getListingSQL + ` FOR UPDATE`
	updateListingSQL    = `
UPDATE listings
SET landlord = ?, title = ?, description = ?, location = ?, price = ?, deposit = ?,
    size = ?, rooms = ?, bathrooms = ?, floor = ?, total_floors = ?,
    contract_length = ?, move_in_date = ?, amenities = ?,
    is_available = ?, is_verified = ?, created_at = ?, updated_at = ?
WHERE id = ?
`
	listAvailableSQL = `SELECT ` + listingCols + ` FROM listings WHERE is_available = 1 ORDER BY id LIMIT ?`
)

const (
	insertRentalSQL = `
INSERT INTO rentals
  (id, listing_id, landlord, tenant, price, deposit, contract_length,
   start_date, end_date, next_payment_date, status, payment_method,
   created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`
	rentalCols = `id, listing_id, landlord, tenant, price, deposit, contract_length,
  start_date, end_date, next_payment_date, status, payment_method,
  created_at, updated_at`

	getRentalSQL       = `SELECT ` + rentalCols + ` FROM rentals WHERE id = ?`
	getRentalForUpdate = getRentalSQL + ` FOR UPDATE`
	updateRentalSQL    = `
UPDATE rentals
SET listing_id = ?, landlord = ?, tenant = ?, price = ?, deposit = ?,
    contract_length = ?, start_date = ?, end_date = ?, next_payment_date = ?,
    status = ?, payment_method = ?, created_at = ?, updated_at = ?
WHERE id = ?
`
	listRentalsForListingSQL = `SELECT ` + rentalCols + ` FROM rentals WHERE listing_id = ? ORDER BY created_at, id`
	listActiveRentalsSQL     = `SELECT ` + rentalCols + ` FROM rentals WHERE status = 'ACTIVE' ORDER BY next_payment_date`
)

// wallet_accounts is the fund-transfer collaborator's ledger. Debits lock
// the sender row first; credits upsert.
const (
	getBalanceSQL       = `SELECT balance FROM wallet_accounts WHERE address = ? AND currency = ?`
	getBalanceForUpdate = getBalanceSQL + ` FOR UPDATE`
	debitSQL            = `UPDATE wallet_accounts SET balance = balance - ? WHERE address = ? AND currency = ?`
	creditSQL           = `
INSERT INTO wallet_accounts (address, currency, balance)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE balance = balance + VALUES(balance)
`
	balancesSQL = `SELECT currency, balance FROM wallet_accounts WHERE address = ?`
)

const (
	insertEventSQL = `
INSERT INTO rental_events (id, type, rental_id, actor, fields, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`
	listEventsSQL = `
SELECT id, type, rental_id, actor, fields, created_at
FROM rental_events
WHERE rental_id = ?
ORDER BY created_at DESC, id
LIMIT ?
`
)
