package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"rentledger/internal/adapters/observability"
	"rentledger/internal/domain"
)

// WalletService is the admin face of the fund-transfer collaborator: balance
// reads for the UI and platform-authority credits for funding accounts.
type WalletService struct {
	store domain.Store
}

func NewWalletService(s domain.Store) *WalletService {
	return &WalletService{store: s}
}

func (s *WalletService) Balances(ctx context.Context, address string) (map[string]int64, error) {
	return s.store.Balances(ctx, address)
}

// Fund credits an account in one currency. Platform authority only.
func (s *WalletService) Fund(ctx context.Context, caller, address string, method domain.PaymentMethod, amount int64) error {
	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		if !method.Valid() {
			return domain.ErrInvalidPaymentMethod
		}
		p, err := tx.Platform(ctx)
		if err != nil {
			return err
		}
		if caller != p.Authority {
			return domain.ErrUnauthorized
		}
		return tx.Credit(ctx, address, method.Currency(), amount)
	})
	observability.ObserveEngine("fund_wallet", outcome(err))
	if err == nil {
		log.Info().Str("address", address).Str("currency", method.Currency()).Int64("amount", amount).Msg("wallet funded")
	}
	return err
}
