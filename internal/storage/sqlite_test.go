package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carteira-app/carteira/internal/model"
)

func createTestStore(t *testing.T) (*SQLiteStore, func()) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

func testSnapshot() *model.Snapshot {
	invoiceDate := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)
	return &model.Snapshot{
		Accounts: []model.Account{
			{ID: 1, Name: "Checking", Balance: decimal.RequireFromString("1000.50")},
			{ID: 2, Name: "Savings", Balance: decimal.NewFromInt(250)},
		},
		Cards: []model.Card{
			{ID: 1, Name: "Visa", Limit: decimal.NewFromInt(5000), ClosingDay: 10, DueDay: 20},
		},
		Categories: []model.Category{
			{ID: 1, Name: "food"},
		},
		Transactions: []model.Transaction{
			{
				ID:          1,
				Date:        time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
				Kind:        model.KindIncome,
				Category:    "salary",
				Description: "payday",
				Amount:      decimal.NewFromInt(300),
				Origin:      model.OriginAccount,
				OriginID:    1,
			},
			{
				ID:          2,
				Date:        time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
				Kind:        model.KindExpense,
				Category:    "electronics",
				Description: "headphones 1/1",
				Amount:      decimal.RequireFromString("-59.90"),
				Origin:      model.OriginCard,
				OriginID:    1,
				InvoiceDate: &invoiceDate,
				Parcel:      &model.Parcel{Index: 1, Count: 1},
			},
		},
		Counters: model.Counters{Account: 2, Card: 1, Category: 1, Transaction: 2},
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStore(t)
	defer cleanup()

	want := testSnapshot()
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)

	require.Len(t, got.Accounts, 2)
	assert.Equal(t, "Checking", got.Accounts[0].Name)
	assert.True(t, got.Accounts[0].Balance.Equal(decimal.RequireFromString("1000.50")), "decimal balances round-trip exactly")

	require.Len(t, got.Cards, 1)
	assert.Equal(t, 10, got.Cards[0].ClosingDay)
	assert.Equal(t, 20, got.Cards[0].DueDay)
	assert.True(t, got.Cards[0].Limit.Equal(decimal.NewFromInt(5000)))

	require.Len(t, got.Categories, 1)
	assert.Equal(t, "food", got.Categories[0].Name)

	require.Len(t, got.Transactions, 2)
	income := got.Transactions[0]
	assert.Equal(t, model.KindIncome, income.Kind)
	assert.Equal(t, model.OriginAccount, income.Origin)
	assert.False(t, income.Paid)
	assert.Nil(t, income.InvoiceDate)
	assert.Nil(t, income.Parcel)

	charge := got.Transactions[1]
	assert.Equal(t, model.OriginCard, charge.Origin)
	assert.True(t, charge.Amount.Equal(decimal.RequireFromString("-59.90")))
	require.NotNil(t, charge.InvoiceDate)
	assert.Equal(t, "2024-03-20", charge.InvoiceDate.Format("2006-01-02"))
	require.NotNil(t, charge.Parcel)
	assert.Equal(t, model.Parcel{Index: 1, Count: 1}, *charge.Parcel)

	assert.Equal(t, want.Counters, got.Counters)
}

func TestLoadEmptyDatabase(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStore(t)
	defer cleanup()

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Accounts)
	assert.Empty(t, snap.Cards)
	assert.Empty(t, snap.Categories)
	assert.Empty(t, snap.Transactions)
	assert.Equal(t, model.Counters{}, snap.Counters)
}

func TestSaveReplacesWholeCollections(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStore(t)
	defer cleanup()

	require.NoError(t, store.Save(ctx, testSnapshot()))

	// A second save with fewer records fully replaces the first.
	smaller := &model.Snapshot{
		Accounts: []model.Account{
			{ID: 5, Name: "Only", Balance: decimal.NewFromInt(10)},
		},
		Counters: model.Counters{Account: 5},
	}
	require.NoError(t, store.Save(ctx, smaller))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Accounts, 1)
	assert.Equal(t, int64(5), got.Accounts[0].ID)
	assert.Empty(t, got.Cards)
	assert.Empty(t, got.Transactions)
	assert.Equal(t, int64(5), got.Counters.Account)
	assert.Equal(t, int64(0), got.Counters.Transaction)
}

func TestSaveRejectsInvalidSnapshots(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStore(t)
	defer cleanup()

	t.Run("nil snapshot", func(t *testing.T) {
		err := store.Save(ctx, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNilParameter)
	})

	t.Run("card transaction without invoice metadata", func(t *testing.T) {
		snap := testSnapshot()
		snap.Transactions[1].InvoiceDate = nil
		err := store.Save(ctx, snap)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidRecord)
	})

	t.Run("account transaction carrying invoice metadata", func(t *testing.T) {
		snap := testSnapshot()
		d := time.Date(2024, time.April, 20, 0, 0, 0, 0, time.UTC)
		snap.Transactions[0].InvoiceDate = &d
		err := store.Save(ctx, snap)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidRecord)
	})

	t.Run("zero id", func(t *testing.T) {
		snap := testSnapshot()
		snap.Accounts[0].ID = 0
		err := store.Save(ctx, snap)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidRecord)
	})
}

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStore(t)
	defer cleanup()

	// createTestStore already migrated once.
	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.Save(ctx, testSnapshot()))
}

func TestStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.Save(ctx, testSnapshot()))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	require.NoError(t, reopened.Migrate(ctx))

	got, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got.Accounts, 2)
	assert.Len(t, got.Transactions, 2)
	assert.Equal(t, int64(2), got.Counters.Transaction)
}
