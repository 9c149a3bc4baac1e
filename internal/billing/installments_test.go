package billing

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carteira-app/carteira/internal/common"
	"github.com/carteira-app/carteira/internal/model"
)

func testCard() model.Card {
	return model.Card{
		ID:         1,
		Name:       "Visa",
		Limit:      decimal.NewFromInt(5000),
		ClosingDay: 10,
		DueDay:     20,
	}
}

func TestAllocateSingleParcel(t *testing.T) {
	allocator := NewAllocator(0)

	installments, err := allocator.Allocate(
		decimal.RequireFromString("59.90"),
		date(2024, time.March, 5),
		1,
		testCard(),
		nil,
	)
	require.NoError(t, err)
	require.Len(t, installments, 1)

	// A single parcel behaves exactly like a plain card charge.
	assert.True(t, installments[0].Amount.Equal(decimal.RequireFromString("-59.90")))
	assert.Equal(t, model.Parcel{Index: 1, Count: 1}, installments[0].Parcel)
	assert.True(t, installments[0].InvoiceDate.Equal(date(2024, time.March, 20)))
}

func TestAllocateEvenSplit(t *testing.T) {
	allocator := NewAllocator(0)

	installments, err := allocator.Allocate(
		decimal.NewFromInt(300),
		date(2024, time.March, 5),
		3,
		testCard(),
		nil,
	)
	require.NoError(t, err)
	require.Len(t, installments, 3)

	wantDates := []time.Time{
		date(2024, time.March, 20),
		date(2024, time.April, 20),
		date(2024, time.May, 20),
	}
	for i, inst := range installments {
		assert.True(t, inst.Amount.Equal(decimal.NewFromInt(-100)), "installment %d amount %s", i, inst.Amount)
		assert.True(t, inst.InvoiceDate.Equal(wantDates[i]), "installment %d date %s", i, inst.InvoiceDate)
		assert.Equal(t, model.Parcel{Index: i + 1, Count: 3}, inst.Parcel)
	}
}

func TestAllocateRoundingRemainderGoesToLast(t *testing.T) {
	allocator := NewAllocator(0)

	// 100 / 3 = 33.33 with a 0.01 remainder.
	installments, err := allocator.Allocate(
		decimal.NewFromInt(100),
		date(2024, time.January, 2),
		3,
		testCard(),
		nil,
	)
	require.NoError(t, err)
	require.Len(t, installments, 3)

	assert.True(t, installments[0].Amount.Equal(decimal.RequireFromString("-33.33")))
	assert.True(t, installments[1].Amount.Equal(decimal.RequireFromString("-33.33")))
	assert.True(t, installments[2].Amount.Equal(decimal.RequireFromString("-33.34")))
}

func TestAllocateExactnessSweep(t *testing.T) {
	allocator := NewAllocator(0)
	totals := []string{"0.01", "0.99", "10", "100", "123.45", "999.99", "1234.56"}

	for _, totalStr := range totals {
		total := decimal.RequireFromString(totalStr)
		for parcels := 1; parcels <= DefaultMaxInstallments; parcels++ {
			t.Run(fmt.Sprintf("total=%s parcels=%d", totalStr, parcels), func(t *testing.T) {
				installments, err := allocator.Allocate(total, date(2024, time.March, 5), parcels, testCard(), nil)
				require.NoError(t, err)
				require.Len(t, installments, parcels)

				sum := decimal.Zero
				for i, inst := range installments {
					sum = sum.Add(inst.Amount)
					if i > 0 {
						want := AddMonths(installments[i-1].InvoiceDate, 1)
						assert.True(t, inst.InvoiceDate.Equal(want),
							"installment %d due %s, want %s", i, inst.InvoiceDate, want)
					}
				}
				assert.True(t, sum.Equal(total.Neg()), "sum %s, want %s", sum, total.Neg())
			})
		}
	}
}

func TestAllocateChosenBaseInvoice(t *testing.T) {
	allocator := NewAllocator(0)

	// Caller pushes the purchase onto the following invoice.
	base := date(2024, time.April, 20)
	installments, err := allocator.Allocate(
		decimal.NewFromInt(200),
		date(2024, time.March, 5),
		2,
		testCard(),
		&base,
	)
	require.NoError(t, err)
	require.Len(t, installments, 2)

	assert.True(t, installments[0].InvoiceDate.Equal(date(2024, time.April, 20)))
	assert.True(t, installments[1].InvoiceDate.Equal(date(2024, time.May, 20)))
}

func TestAllocateChosenBaseInvoicePastDay28(t *testing.T) {
	allocator := NewAllocator(0)

	// A month-end base would make successive installments drift across
	// cycles (Mar 31 -> May 1), so it is rejected up front.
	base := date(2024, time.March, 31)
	_, err := allocator.Allocate(
		decimal.NewFromInt(300),
		date(2024, time.March, 5),
		3,
		testCard(),
		&base,
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidCycleConfig)
}

func TestAllocateInvalidParcelCount(t *testing.T) {
	allocator := NewAllocator(12)

	for _, parcels := range []int{0, -1, 13} {
		_, err := allocator.Allocate(decimal.NewFromInt(100), date(2024, time.March, 5), parcels, testCard(), nil)
		require.Error(t, err, "parcels=%d", parcels)
		assert.ErrorIs(t, err, common.ErrInvalidParcelCount)
	}
}

func TestAllocateInvalidTotal(t *testing.T) {
	allocator := NewAllocator(0)

	for _, total := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-50)} {
		_, err := allocator.Allocate(total, date(2024, time.March, 5), 2, testCard(), nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrInvalidAmount)
	}
}

func TestAllocateInvalidCardCycle(t *testing.T) {
	allocator := NewAllocator(0)
	card := testCard()
	card.ClosingDay = 31

	_, err := allocator.Allocate(decimal.NewFromInt(100), date(2024, time.March, 5), 2, card, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidCycleConfig)
}
