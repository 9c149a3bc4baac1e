package model

import "github.com/shopspring/decimal"

// Card holds the billing cycle parameters for a credit card. ClosingDay and
// DueDay are calendar days of month restricted to 1..28 so month-length
// clamping never applies.
type Card struct {
	Name       string
	Limit      decimal.Decimal
	ID         int64
	ClosingDay int
	DueDay     int
}
