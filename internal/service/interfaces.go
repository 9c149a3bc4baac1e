// Package service defines the contracts between the ledger core, its
// persistence layer, and the CLI.
package service

import (
	"context"
	"time"

	"github.com/carteira-app/carteira/internal/model"
)

// TransactionFilter narrows pending-transaction listings. Nil or zero fields
// are ignored.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Origin    model.OriginType
	Category  string
}

// Matches reports whether a transaction passes the filter.
func (f *TransactionFilter) Matches(txn *model.Transaction) bool {
	if f == nil {
		return true
	}
	if f.StartDate != nil && txn.Date.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && txn.Date.After(*f.EndDate) {
		return false
	}
	if f.Origin != "" && txn.Origin != f.Origin {
		return false
	}
	if f.Category != "" && txn.Category != f.Category {
		return false
	}
	return true
}

// SettlementResult reports the accounts and transactions a settlement batch
// touched, in id order.
type SettlementResult struct {
	UpdatedAccounts     []model.Account
	UpdatedTransactions []model.Transaction
}

// SnapshotStore is the persistence contract for whole-ledger snapshots.
// Save replaces every collection; Load returns complete state. The ledger
// writes through on every mutation, so in-memory state is never behind disk.
type SnapshotStore interface {
	Load(ctx context.Context) (*model.Snapshot, error)
	Save(ctx context.Context, snap *model.Snapshot) error
	Migrate(ctx context.Context) error
	Close() error
}
