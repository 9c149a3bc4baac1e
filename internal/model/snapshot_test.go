package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionClone(t *testing.T) {
	invoiceDate := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)
	original := Transaction{
		ID:          1,
		Date:        time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
		Kind:        KindExpense,
		Amount:      decimal.NewFromInt(-100),
		Origin:      OriginCard,
		OriginID:    1,
		InvoiceDate: &invoiceDate,
		Parcel:      &Parcel{Index: 1, Count: 3},
	}

	clone := original.Clone()
	*clone.InvoiceDate = time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)
	clone.Parcel.Index = 9

	assert.True(t, original.InvoiceDate.Equal(invoiceDate), "clone must not alias the invoice date")
	assert.Equal(t, 1, original.Parcel.Index, "clone must not alias the parcel")
}

func TestSnapshotClone(t *testing.T) {
	invoiceDate := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)
	snap := &Snapshot{
		Accounts: []Account{{ID: 1, Name: "Checking", Balance: decimal.NewFromInt(1000)}},
		Cards:    []Card{{ID: 1, Name: "Visa", Limit: decimal.NewFromInt(5000), ClosingDay: 10, DueDay: 20}},
		Transactions: []Transaction{
			{
				ID:          1,
				Date:        time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
				Kind:        KindExpense,
				Amount:      decimal.NewFromInt(-100),
				Origin:      OriginCard,
				OriginID:    1,
				InvoiceDate: &invoiceDate,
				Parcel:      &Parcel{Index: 1, Count: 1},
			},
		},
		Counters: Counters{Account: 1, Card: 1, Transaction: 1},
	}

	clone := snap.Clone()
	require.Len(t, clone.Transactions, 1)

	clone.Accounts[0].Balance = decimal.Zero
	clone.Transactions[0].Paid = true
	*clone.Transactions[0].InvoiceDate = time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, snap.Accounts[0].Balance.Equal(decimal.NewFromInt(1000)))
	assert.False(t, snap.Transactions[0].Paid)
	assert.True(t, snap.Transactions[0].InvoiceDate.Equal(invoiceDate))
	assert.Equal(t, snap.Counters, clone.Counters)
}
