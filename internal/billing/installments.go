package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carteira-app/carteira/internal/common"
	"github.com/carteira-app/carteira/internal/model"
)

// DefaultMaxInstallments is the largest plan the entry form offers.
const DefaultMaxInstallments = 48

// Installment is one dated share of a card purchase. Amount is already
// negated, ready to become an expense ledger entry.
type Installment struct {
	InvoiceDate time.Time
	Amount      decimal.Decimal
	Parcel      model.Parcel
}

// Allocator splits card purchases into installments billed to successive
// invoices.
type Allocator struct {
	MaxInstallments int
}

// NewAllocator creates an allocator with the given installment cap.
// Non-positive caps fall back to DefaultMaxInstallments.
func NewAllocator(maxInstallments int) *Allocator {
	if maxInstallments <= 0 {
		maxInstallments = DefaultMaxInstallments
	}
	return &Allocator{MaxInstallments: maxInstallments}
}

// Allocate splits total across parcels installments, one per billing cycle.
// The split is even at two decimal places with the final installment
// absorbing the rounding remainder, so the amounts always sum to exactly
// -total. When baseInvoice is nil the purchase date and card cycle determine
// the first invoice.
func (a *Allocator) Allocate(total decimal.Decimal, purchaseDate time.Time, parcels int, card model.Card, baseInvoice *time.Time) ([]Installment, error) {
	if parcels < 1 || parcels > a.MaxInstallments {
		return nil, fmt.Errorf("%w: %d (must be between 1 and %d)", common.ErrInvalidParcelCount, parcels, a.MaxInstallments)
	}
	if !total.IsPositive() {
		return nil, fmt.Errorf("%w: purchase total must be positive, got %s", common.ErrInvalidAmount, total)
	}

	var base time.Time
	if baseInvoice != nil {
		// Due days are capped at 28 so AddMonths never clamps; a chosen
		// base past that would drift the schedule across cycles.
		if day := baseInvoice.Day(); day < 1 || day > 28 {
			return nil, fmt.Errorf("%w: invoice day %d must be between 1 and 28", common.ErrInvalidCycleConfig, day)
		}
		base = *baseInvoice
	} else {
		cycle, err := ComputeInvoiceCycle(purchaseDate, card.ClosingDay, card.DueDay)
		if err != nil {
			return nil, err
		}
		base = cycle.Current
	}

	share := total.DivRound(decimal.NewFromInt(int64(parcels)), 2)

	installments := make([]Installment, parcels)
	for i := 0; i < parcels; i++ {
		amount := share
		if i == parcels-1 {
			// The last installment reconciles the plan with the total.
			amount = total.Sub(share.Mul(decimal.NewFromInt(int64(parcels - 1))))
		}
		installments[i] = Installment{
			Amount:      amount.Neg(),
			InvoiceDate: AddMonths(base, i),
			Parcel:      model.Parcel{Index: i + 1, Count: parcels},
		}
	}

	return installments, nil
}
