package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind distinguishes money in from money out.
type TransactionKind string

// Transaction kinds.
const (
	KindExpense TransactionKind = "expense"
	KindIncome  TransactionKind = "income"
)

// OriginType says whether a transaction was entered against an account
// (immediate funds) or a card (deferred, invoice-tracked).
type OriginType string

// Transaction origins.
const (
	OriginAccount OriginType = "account"
	OriginCard    OriginType = "card"
)

// Parcel identifies one installment of a card purchase: Index runs 1..Count.
type Parcel struct {
	Index int
	Count int
}

// Transaction is a single ledger entry. Amount is signed: income positive,
// expense negative. InvoiceDate and Parcel are set exactly when the
// transaction originates from a card.
type Transaction struct {
	Date        time.Time
	InvoiceDate *time.Time
	Parcel      *Parcel
	Kind        TransactionKind
	Category    string
	Description string
	Origin      OriginType
	Amount      decimal.Decimal
	ID          int64
	OriginID    int64
	Paid        bool
}

// IsCardOrigin reports whether the entry belongs to a card invoice.
func (t *Transaction) IsCardOrigin() bool {
	return t.Origin == OriginCard
}

// Clone returns a deep copy so callers can hold transactions without
// aliasing ledger-owned state.
func (t *Transaction) Clone() Transaction {
	out := *t
	if t.InvoiceDate != nil {
		d := *t.InvoiceDate
		out.InvoiceDate = &d
	}
	if t.Parcel != nil {
		p := *t.Parcel
		out.Parcel = &p
	}
	return out
}
