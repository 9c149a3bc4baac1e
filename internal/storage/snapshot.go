package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carteira-app/carteira/internal/model"
)

// Amounts are stored as TEXT so decimal values round-trip exactly.

// Save replaces every collection with the snapshot's contents in one SQL
// transaction. Persistence is a full overwrite, not an append log, matching
// the ledger's save-everything-on-mutation contract.
func (s *SQLiteStore) Save(ctx context.Context, snap *model.Snapshot) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSnapshot(snap); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"accounts", "cards", "categories", "transactions", "counters"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, a := range snap.Accounts {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO accounts (id, name, balance) VALUES (?, ?, ?)`,
			a.ID, a.Name, a.Balance.String())
		if err != nil {
			return fmt.Errorf("failed to insert account %d: %w", a.ID, err)
		}
	}

	for _, c := range snap.Cards {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO cards (id, name, credit_limit, closing_day, due_day) VALUES (?, ?, ?, ?, ?)`,
			c.ID, c.Name, c.Limit.String(), c.ClosingDay, c.DueDay)
		if err != nil {
			return fmt.Errorf("failed to insert card %d: %w", c.ID, err)
		}
	}

	for _, c := range snap.Categories {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO categories (id, name) VALUES (?, ?)`,
			c.ID, c.Name)
		if err != nil {
			return fmt.Errorf("failed to insert category %d: %w", c.ID, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (
			id, date, kind, category, description, amount,
			origin_type, origin_id, paid, invoice_date, parcel_index, parcel_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, t := range snap.Transactions {
		var invoiceDate any
		if t.InvoiceDate != nil {
			invoiceDate = *t.InvoiceDate
		}
		var parcelIndex, parcelCount any
		if t.Parcel != nil {
			parcelIndex = t.Parcel.Index
			parcelCount = t.Parcel.Count
		}
		_, err := stmt.ExecContext(ctx,
			t.ID, t.Date, string(t.Kind), t.Category, t.Description, t.Amount.String(),
			string(t.Origin), t.OriginID, t.Paid, invoiceDate, parcelIndex, parcelCount)
		if err != nil {
			return fmt.Errorf("failed to insert transaction %d: %w", t.ID, err)
		}
	}

	counters := map[string]int64{
		"account":     snap.Counters.Account,
		"card":        snap.Counters.Card,
		"category":    snap.Counters.Category,
		"transaction": snap.Counters.Transaction,
	}
	for name, value := range counters {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO counters (name, value) VALUES (?, ?)`, name, value)
		if err != nil {
			return fmt.Errorf("failed to insert counter %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	slog.Debug("snapshot saved",
		"accounts", len(snap.Accounts),
		"cards", len(snap.Cards),
		"transactions", len(snap.Transactions))
	return nil
}

// Load reads the complete ledger state. An empty database yields an empty
// snapshot with zeroed counters.
func (s *SQLiteStore) Load(ctx context.Context) (*model.Snapshot, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	snap := &model.Snapshot{}
	var err error

	if snap.Accounts, err = s.loadAccounts(ctx); err != nil {
		return nil, err
	}
	if snap.Cards, err = s.loadCards(ctx); err != nil {
		return nil, err
	}
	if snap.Categories, err = s.loadCategories(ctx); err != nil {
		return nil, err
	}
	if snap.Transactions, err = s.loadTransactions(ctx); err != nil {
		return nil, err
	}
	if snap.Counters, err = s.loadCounters(ctx); err != nil {
		return nil, err
	}

	return snap, nil
}

func (s *SQLiteStore) loadAccounts(ctx context.Context) ([]model.Account, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, balance FROM accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		var balance string
		if err := rows.Scan(&a.ID, &a.Name, &balance); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		if a.Balance, err = decimal.NewFromString(balance); err != nil {
			return nil, fmt.Errorf("failed to parse balance for account %d: %w", a.ID, err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (s *SQLiteStore) loadCards(ctx context.Context) ([]model.Card, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, credit_limit, closing_day, due_day FROM cards ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cards []model.Card
	for rows.Next() {
		var c model.Card
		var limit string
		if err := rows.Scan(&c.ID, &c.Name, &limit, &c.ClosingDay, &c.DueDay); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		if c.Limit, err = decimal.NewFromString(limit); err != nil {
			return nil, fmt.Errorf("failed to parse limit for card %d: %w", c.ID, err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

func (s *SQLiteStore) loadCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *SQLiteStore) loadTransactions(ctx context.Context) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, kind, category, description, amount,
		       origin_type, origin_id, paid, invoice_date, parcel_index, parcel_count
		FROM transactions
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		var t model.Transaction
		var kind, origin, amount string
		var category, description sql.NullString
		var invoiceDate sql.NullTime
		var parcelIndex, parcelCount sql.NullInt64

		err := rows.Scan(
			&t.ID, &t.Date, &kind, &category, &description, &amount,
			&origin, &t.OriginID, &t.Paid, &invoiceDate, &parcelIndex, &parcelCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		t.Kind = model.TransactionKind(kind)
		t.Origin = model.OriginType(origin)
		t.Category = category.String
		t.Description = description.String
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("failed to parse amount for transaction %d: %w", t.ID, err)
		}
		if invoiceDate.Valid {
			d := invoiceDate.Time.In(time.UTC)
			t.InvoiceDate = &d
		}
		if parcelIndex.Valid && parcelCount.Valid {
			t.Parcel = &model.Parcel{
				Index: int(parcelIndex.Int64),
				Count: int(parcelCount.Int64),
			}
		}

		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (s *SQLiteStore) loadCounters(ctx context.Context) (model.Counters, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, value FROM counters`)
	if err != nil {
		return model.Counters{}, fmt.Errorf("failed to query counters: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var counters model.Counters
	for rows.Next() {
		var name string
		var value int64
		if err := rows.Scan(&name, &value); err != nil {
			return model.Counters{}, fmt.Errorf("failed to scan counter: %w", err)
		}
		switch name {
		case "account":
			counters.Account = value
		case "card":
			counters.Card = value
		case "category":
			counters.Category = value
		case "transaction":
			counters.Transaction = value
		}
	}
	return counters, rows.Err()
}
