package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"rentledger/internal/adapters/observability"
	"rentledger/internal/domain"
)

const (
	day          = int64(24 * 60 * 60)
	paymentCycle = 30 * day // fixed 30-day cadence regardless of calendar month
	maxExtension = 60       // days
)

type RentalService struct {
	store domain.Store
	cache domain.Cache
	now   domain.Clock
}

func NewRentalService(s domain.Store, c domain.Cache, clock domain.Clock) *RentalService {
	if clock == nil {
		clock = time.Now
	}
	return &RentalService{store: s, cache: c, now: clock}
}

// rail adapts the wallet rows of the current transaction to one payment
// method's currency. The native and token variants share every line of state
// logic; only the currency differs.
type rail struct {
	tx       domain.Tx
	currency string
}

func railFor(tx domain.Tx, m domain.PaymentMethod) rail {
	return rail{tx: tx, currency: m.Currency()}
}

func (r rail) balance(ctx context.Context, account string) (int64, error) {
	return r.tx.Balance(ctx, account, r.currency)
}

func (r rail) transfer(ctx context.Context, from, to string, amount int64) error {
	return r.tx.Move(ctx, from, to, r.currency, amount)
}

// Create rents a listing: one atomic unit moving deposit+price from tenant
// to landlord, creating the Active rental, flipping the listing unavailable
// and bumping the platform counters.
func (s *RentalService) Create(ctx context.Context, listingID int64, tenant string, method domain.PaymentMethod) (domain.Rental, error) {
	var out domain.Rental
	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		if !method.Valid() {
			return domain.ErrInvalidPaymentMethod
		}
		l, err := tx.Listing(ctx, listingID)
		if err != nil {
			return err
		}
		if !l.IsAvailable {
			return domain.ErrPropertyNotAvailable
		}
		p, err := tx.Platform(ctx)
		if err != nil {
			return err
		}

		pay := railFor(tx, method)
		total := l.Deposit + l.Price
		bal, err := pay.balance(ctx, tenant)
		if err != nil {
			return err
		}
		if bal < total {
			return domain.ErrInsufficientFunds
		}
		if err := pay.transfer(ctx, tenant, l.Landlord, total); err != nil {
			return err
		}

		now := s.now().Unix()
		out = domain.Rental{
			ID:              domain.RentalID(listingID, tenant, p.TotalRentals),
			ListingID:       listingID,
			Landlord:        l.Landlord,
			Tenant:          tenant,
			Price:           l.Price,
			Deposit:         l.Deposit,
			ContractLength:  l.ContractLength,
			StartDate:       now,
			EndDate:         now + int64(l.ContractLength)*paymentCycle,
			NextPaymentDate: now + paymentCycle,
			Status:          domain.RentalStatusActive,
			PaymentMethod:   method,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := tx.InsertRental(ctx, out); err != nil {
			return err
		}

		l.IsAvailable = false
		l.UpdatedAt = now
		if err := tx.PutListing(ctx, l); err != nil {
			return err
		}

		p.TotalRentals++
		p.TotalVolume += total
		return tx.PutPlatform(ctx, p)
	})
	observability.ObserveEngine("rent_property", outcome(err))
	if err != nil {
		return domain.Rental{}, err
	}
	invalidateListing(ctx, s.cache, listingID)
	invalidateRental(ctx, s.cache, out.ID)
	invalidatePlatform(ctx, s.cache)
	log.Info().Str("rental", out.ID).Int64("listing", listingID).Str("tenant", tenant).
		Str("method", string(method)).Msg("rental created")
	return out, nil
}

// PayRent settles one cycle's rent and advances next_payment_date by exactly
// 30 days. Rent-due is detected lazily: nothing here fires on a schedule.
func (s *RentalService) PayRent(ctx context.Context, rentalID, caller string, method domain.PaymentMethod) (domain.Rental, error) {
	var out domain.Rental
	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		r, err := tx.Rental(ctx, rentalID)
		if err != nil {
			return err
		}
		if r.Status != domain.RentalStatusActive {
			return domain.ErrRentalNotActive
		}
		if method != r.PaymentMethod {
			return domain.ErrInvalidPaymentMethod
		}
		if caller != r.Tenant {
			return domain.ErrUnauthorized
		}
		now := s.now().Unix()
		if now < r.NextPaymentDate {
			return domain.ErrPaymentNotDue
		}

		pay := railFor(tx, r.PaymentMethod)
		bal, err := pay.balance(ctx, r.Tenant)
		if err != nil {
			return err
		}
		if bal < r.Price {
			return domain.ErrInsufficientFunds
		}
		if err := pay.transfer(ctx, r.Tenant, r.Landlord, r.Price); err != nil {
			return err
		}

		r.NextPaymentDate += paymentCycle
		r.UpdatedAt = now
		if err := tx.PutRental(ctx, r); err != nil {
			return err
		}

		p, err := tx.Platform(ctx)
		if err != nil {
			return err
		}
		p.TotalVolume += r.Price
		if err := tx.PutPlatform(ctx, p); err != nil {
			return err
		}
		out = r
		return nil
	})
	observability.ObserveEngine("pay_rent", outcome(err))
	if err != nil {
		return domain.Rental{}, err
	}
	invalidateRental(ctx, s.cache, rentalID)
	invalidatePlatform(ctx, s.cache)
	log.Info().Str("rental", rentalID).Int64("next_payment", out.NextPaymentDate).Msg("rent paid")
	return out, nil
}

// Terminate ends an Active rental. Tenant-initiated: deposit forfeit, no
// movement. Landlord-initiated: refund deposit plus the pro-rated remainder,
// remaining days clamped at zero so a rental past its end date refunds the
// deposit only.
func (s *RentalService) Terminate(ctx context.Context, rentalID, caller string) (domain.Rental, error) {
	var out domain.Rental
	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		r, err := tx.Rental(ctx, rentalID)
		if err != nil {
			return err
		}
		if r.Status != domain.RentalStatusActive {
			return domain.ErrRentalNotActive
		}
		if caller != r.Landlord && caller != r.Tenant {
			return domain.ErrUnauthorized
		}
		now := s.now().Unix()

		if caller == r.Landlord {
			remainingDays := (r.EndDate - now) / day
			if remainingDays < 0 {
				remainingDays = 0
			}
			refund := r.Deposit + r.Price*remainingDays/30
			pay := railFor(tx, r.PaymentMethod)
			if err := pay.transfer(ctx, r.Landlord, r.Tenant, refund); err != nil {
				return err
			}
		}

		r.Status = domain.RentalStatusTerminated
		r.UpdatedAt = now
		if err := tx.PutRental(ctx, r); err != nil {
			return err
		}

		l, err := tx.Listing(ctx, r.ListingID)
		if err != nil {
			return err
		}
		l.IsAvailable = true
		l.UpdatedAt = now
		if err := tx.PutListing(ctx, l); err != nil {
			return err
		}
		out = r
		return nil
	})
	observability.ObserveEngine("terminate_rental", outcome(err))
	if err != nil {
		return domain.Rental{}, err
	}
	invalidateRental(ctx, s.cache, rentalID)
	invalidateListing(ctx, s.cache, out.ListingID)
	log.Info().Str("rental", rentalID).Str("by", caller).Msg("rental terminated")
	return out, nil
}

// Adjust overwrites price and end date. Landlord or tenant; the new values
// are taken as agreed between the parties, no bound checks.
func (s *RentalService) Adjust(ctx context.Context, rentalID, caller string, newPrice, newEndDate int64, reason string) error {
	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		r, err := tx.Rental(ctx, rentalID)
		if err != nil {
			return err
		}
		if caller != r.Landlord && caller != r.Tenant {
			return domain.ErrUnauthorized
		}
		if r.Status != domain.RentalStatusActive {
			return domain.ErrRentalNotActive
		}
		now := s.now().Unix()
		r.Price = newPrice
		r.EndDate = newEndDate
		r.UpdatedAt = now
		if err := tx.PutRental(ctx, r); err != nil {
			return err
		}
		return tx.InsertEvent(ctx, domain.Event{
			ID:       uuid.NewString(),
			Type:     domain.EventRentalAdjusted,
			RentalID: rentalID,
			Actor:    caller,
			Fields: map[string]any{
				"new_price":    newPrice,
				"new_end_date": newEndDate,
				"reason":       reason,
			},
			CreatedAt: now,
		})
	})
	observability.ObserveEngine("adjust_rental", outcome(err))
	if err == nil {
		invalidateRental(ctx, s.cache, rentalID)
		log.Info().Str("rental", rentalID).Int64("price", newPrice).Str("reason", reason).Msg("rental adjusted")
	}
	return err
}

// Renew extends the term by whole months at a new price. Tenant only. The
// renewal amount is booked to total_volume although no transfer happens at
// renewal time; an accounting convention, not a fund movement.
func (s *RentalService) Renew(ctx context.Context, rentalID, caller string, months int, newPrice int64, autoRenew bool) error {
	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		r, err := tx.Rental(ctx, rentalID)
		if err != nil {
			return err
		}
		if caller != r.Tenant {
			return domain.ErrUnauthorized
		}
		if r.Status != domain.RentalStatusActive {
			return domain.ErrRentalNotActive
		}
		// a renewal only ever lengthens the term and grows total_volume
		if months <= 0 || newPrice < 0 {
			return domain.ErrInvalidRenewal
		}
		now := s.now().Unix()
		r.EndDate += int64(months) * paymentCycle
		r.Price = newPrice
		r.ContractLength = months
		r.UpdatedAt = now
		if err := tx.PutRental(ctx, r); err != nil {
			return err
		}
		if err := tx.InsertEvent(ctx, domain.Event{
			ID:       uuid.NewString(),
			Type:     domain.EventRentalRenewed,
			RentalID: rentalID,
			Actor:    caller,
			Fields: map[string]any{
				"months":       months,
				"new_price":    newPrice,
				"new_end_date": r.EndDate,
				"auto_renew":   autoRenew,
			},
			CreatedAt: now,
		}); err != nil {
			return err
		}
		p, err := tx.Platform(ctx)
		if err != nil {
			return err
		}
		p.TotalVolume += newPrice * int64(months)
		return tx.PutPlatform(ctx, p)
	})
	observability.ObserveEngine("renew_rental", outcome(err))
	if err == nil {
		invalidateRental(ctx, s.cache, rentalID)
		invalidatePlatform(ctx, s.cache)
		log.Info().Str("rental", rentalID).Int("months", months).Msg("rental renewed")
	}
	return err
}

// Transfer reassigns the tenancy to a new tenant. Tenant only; every other
// field is preserved. The fee is recorded in the event, never moved: fee
// settlement is the caller's wallet layer's business.
func (s *RentalService) Transfer(ctx context.Context, rentalID, caller, newTenant string, transferFee int64) error {
	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		r, err := tx.Rental(ctx, rentalID)
		if err != nil {
			return err
		}
		if caller != r.Tenant {
			return domain.ErrUnauthorized
		}
		if r.Status != domain.RentalStatusActive {
			return domain.ErrRentalNotActive
		}
		if newTenant == r.Tenant {
			return domain.ErrInvalidTransfer
		}
		now := s.now().Unix()
		oldTenant := r.Tenant
		r.Tenant = newTenant
		r.UpdatedAt = now
		if err := tx.PutRental(ctx, r); err != nil {
			return err
		}
		return tx.InsertEvent(ctx, domain.Event{
			ID:       uuid.NewString(),
			Type:     domain.EventRentalTransferred,
			RentalID: rentalID,
			Actor:    caller,
			Fields: map[string]any{
				"old_tenant":   oldTenant,
				"new_tenant":   newTenant,
				"transfer_fee": transferFee,
			},
			CreatedAt: now,
		})
	})
	observability.ObserveEngine("transfer_rental", outcome(err))
	if err == nil {
		invalidateRental(ctx, s.cache, rentalID)
		log.Info().Str("rental", rentalID).Str("new_tenant", newTenant).Msg("rental transferred")
	}
	return err
}

// Extend pushes the end date by up to 60 days. Tenant only.
func (s *RentalService) Extend(ctx context.Context, rentalID, caller string, days int, reason string) error {
	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		r, err := tx.Rental(ctx, rentalID)
		if err != nil {
			return err
		}
		if caller != r.Tenant {
			return domain.ErrUnauthorized
		}
		if r.Status != domain.RentalStatusActive {
			return domain.ErrRentalNotActive
		}
		if days <= 0 || days > maxExtension {
			return domain.ErrInvalidExtension
		}
		now := s.now().Unix()
		r.EndDate += int64(days) * day
		r.UpdatedAt = now
		if err := tx.PutRental(ctx, r); err != nil {
			return err
		}
		return tx.InsertEvent(ctx, domain.Event{
			ID:       uuid.NewString(),
			Type:     domain.EventRentalExtended,
			RentalID: rentalID,
			Actor:    caller,
			Fields: map[string]any{
				"days":         days,
				"new_end_date": r.EndDate,
				"reason":       reason,
			},
			CreatedAt: now,
		})
	})
	observability.ObserveEngine("extend_rental", outcome(err))
	if err == nil {
		invalidateRental(ctx, s.cache, rentalID)
		log.Info().Str("rental", rentalID).Int("days", days).Msg("rental extended")
	}
	return err
}
