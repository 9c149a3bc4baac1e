package model

import "github.com/shopspring/decimal"

// Account is a source of funds whose balance only moves through ledger
// operations: transaction creation under the immediate policy, or settlement.
type Account struct {
	Name    string
	Balance decimal.Decimal
	ID      int64
}
