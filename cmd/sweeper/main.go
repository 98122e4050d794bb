// The sweeper reports Active rentals whose rent is due or whose end date has
// passed. Report-only: rent-due and expiry are detected lazily by callers,
// and the engine never transitions a rental to Expired on its own.
package main

import (
	"context"
	"database/sql"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"rentledger/internal/adapters/observability"
	"rentledger/internal/domain"
	"rentledger/internal/shared"
	mysqlstore "rentledger/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)
	log.Info().Int("workers", cfg.SweepWorkers).Msg("sweeper starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}

	store := mysqlstore.New(db)
	rentals, err := store.ListActiveRentals(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("list active rentals failed")
	}

	now := time.Now().Unix()
	sem := semaphore.NewWeighted(int64(cfg.SweepWorkers))
	var wg sync.WaitGroup

	var due, past int64
	var mu sync.Mutex

	for _, r := range rentals {
		r := r
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}
		wg.Add(1)
		go func(rn domain.Rental) {
			defer wg.Done()
			defer sem.Release(1)

			switch {
			case now > rn.EndDate:
				mu.Lock()
				past++
				mu.Unlock()
				log.Warn().Str("rental", rn.ID).Int64("end_date", rn.EndDate).
					Str("tenant", rn.Tenant).Msg("rental past end date")
			case now >= rn.NextPaymentDate:
				mu.Lock()
				due++
				mu.Unlock()
				log.Info().Str("rental", rn.ID).Int64("next_payment", rn.NextPaymentDate).
					Str("tenant", rn.Tenant).Msg("rent due")
			}
		}(r)
	}

	wg.Wait()
	log.Info().Int("active", len(rentals)).Int64("due", due).Int64("past_end", past).Msg("sweep completed")
}
