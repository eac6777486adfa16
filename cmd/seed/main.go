// Command seed loads the initial currency table. Rates are relative to the
// configured base currency and can be re-run to refresh them.
package main

import (
	"context"
	"log"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/kitabu/kitabu/internal/adapter/persistence"
	"github.com/kitabu/kitabu/internal/config"
	"github.com/kitabu/kitabu/internal/domain"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := persistence.Open(cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMaxIdleTime)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	currencies := []*domain.Currency{
		{Code: cfg.BaseCurrency, Name: "Base currency", RateToBase: decimal.NewFromInt(1), UpdatedAt: now},
		{Code: "KES", Name: "Kenyan Shilling", RateToBase: decimal.RequireFromString("0.0078"), UpdatedAt: now},
		{Code: "EUR", Name: "Euro", RateToBase: decimal.RequireFromString("1.09"), UpdatedAt: now},
		{Code: "GBP", Name: "Pound Sterling", RateToBase: decimal.RequireFromString("1.27"), UpdatedAt: now},
	}

	repo := persistence.NewCurrencyRepository(db)
	ctx := context.Background()
	for _, c := range currencies {
		if err := repo.Upsert(ctx, c); err != nil {
			log.Fatalf("failed to seed currency %s: %v", c.Code, err)
		}
	}

	configured, err := repo.List(ctx)
	if err != nil {
		log.Fatalf("failed to list currencies: %v", err)
	}
	for _, c := range configured {
		log.Printf("currency %s (rate %s)", c.Code, c.RateToBase)
	}
}
