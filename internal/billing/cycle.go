// Package billing computes credit-card invoice cycles and installment plans.
package billing

import (
	"fmt"
	"time"

	"github.com/carteira-app/carteira/internal/common"
)

// InvoiceCycle holds the due date of the invoice a purchase bills to and the
// due date of the invoice after it.
type InvoiceCycle struct {
	Current time.Time
	Next    time.Time
}

// ComputeInvoiceCycle determines which invoice a purchase belongs to.
// A purchase on or before the closing day bills to the cycle closing this
// month; anything later rolls into next month's invoice. Day parameters must
// be in 1..28.
func ComputeInvoiceCycle(purchaseDate time.Time, closingDay, dueDay int) (InvoiceCycle, error) {
	if closingDay < 1 || closingDay > 28 {
		return InvoiceCycle{}, fmt.Errorf("%w: closing day %d must be between 1 and 28", common.ErrInvalidCycleConfig, closingDay)
	}
	if dueDay < 1 || dueDay > 28 {
		return InvoiceCycle{}, fmt.Errorf("%w: due day %d must be between 1 and 28", common.ErrInvalidCycleConfig, dueDay)
	}

	year, month, day := purchaseDate.Date()
	current := time.Date(year, month, dueDay, 0, 0, 0, 0, purchaseDate.Location())
	if day > closingDay {
		current = AddMonths(current, 1)
	}

	return InvoiceCycle{
		Current: current,
		Next:    AddMonths(current, 1),
	}, nil
}

// AddMonths advances a due date by whole calendar months, keeping the
// day-of-month. No clamping is needed because due days never exceed 28.
func AddMonths(t time.Time, months int) time.Time {
	return time.Date(t.Year(), t.Month()+time.Month(months), t.Day(), 0, 0, 0, 0, t.Location())
}
