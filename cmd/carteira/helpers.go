package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/carteira-app/carteira/internal/common"
	"github.com/carteira-app/carteira/internal/config"
	"github.com/carteira-app/carteira/internal/ledger"
	"github.com/carteira-app/carteira/internal/storage"
)

// openLedger initializes storage, runs migrations and restores the ledger.
// The returned cleanup closes the database.
func openLedger(ctx context.Context) (*ledger.Ledger, func(), error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	opts := []ledger.Option{}
	if policy := viper.GetString("ledger.balance_policy"); policy != "" {
		opts = append(opts, ledger.WithBalancePolicy(ledger.BalancePolicy(policy)))
	}
	if maxInstallments := viper.GetInt("ledger.max_installments"); maxInstallments > 0 {
		opts = append(opts, ledger.WithMaxInstallments(maxInstallments))
	}

	led, err := ledger.Load(ctx, store, opts...)
	if err != nil {
		common.LogError(err, "failed to restore ledger", common.Fields{"db_path": dbPath})
		_ = store.Close()
		return nil, nil, err
	}

	common.LogDebug("ledger ready", common.Fields{"db_path": dbPath})
	return led, func() { _ = store.Close() }, nil
}

// parseAmount reads a positive decimal amount from a CLI argument.
func parseAmount(arg string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(arg)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q: %w", arg, err)
	}
	return amount, nil
}

// parseDate reads a YYYY-MM-DD date, defaulting to today when empty.
func parseDate(arg string) (time.Time, error) {
	if arg == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	date, err := time.ParseInLocation("2006-01-02", arg, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", arg, err)
	}
	return date, nil
}
