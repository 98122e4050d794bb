package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

type RentalStatus string

const (
	RentalStatusActive     RentalStatus = "ACTIVE"
	RentalStatusTerminated RentalStatus = "TERMINATED"
	// RentalStatusExpired exists for rentals observed past their end date.
	// No engine operation sets it; expiry is detected lazily by readers
	// and the sweeper, never enforced.
	RentalStatusExpired RentalStatus = "EXPIRED"
)

type PaymentMethod string

const (
	PaymentNative PaymentMethod = "NATIVE"
	PaymentToken  PaymentMethod = "TOKEN"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentNative || m == PaymentToken
}

// Currency names the wallet currency this payment method settles in.
func (m PaymentMethod) Currency() string { return string(m) }

type Rental struct {
	ID              string
	ListingID       int64
	Landlord        string
	Tenant          string
	Price           int64
	Deposit         int64
	ContractLength  int // months
	StartDate       int64
	EndDate         int64
	NextPaymentDate int64
	Status          RentalStatus
	PaymentMethod   PaymentMethod
	CreatedAt       int64
	UpdatedAt       int64
}

// RentalID derives the rental identifier from its stable keys: the listing,
// the founding tenant and the platform rental sequence at creation. Including
// the sequence keeps ids unique across a listing's rental history.
func RentalID(listingID int64, tenant string, seq int64) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("rental:%d:%s:%d", listingID, tenant, seq)))
	return hex.EncodeToString(sum[:])
}
