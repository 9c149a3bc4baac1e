package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/carteira-app/carteira/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrInvalidRecord  = errors.New("invalid record")
	ErrInvalidCounter = errors.New("counter cannot be negative")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateSnapshot checks a snapshot before it replaces persisted state.
func validateSnapshot(snap *model.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("%w: snapshot", ErrNilParameter)
	}

	for i := range snap.Accounts {
		if snap.Accounts[i].ID < 1 {
			return fmt.Errorf("%w: account at index %d has id %d", ErrInvalidRecord, i, snap.Accounts[i].ID)
		}
	}
	for i := range snap.Cards {
		if snap.Cards[i].ID < 1 {
			return fmt.Errorf("%w: card at index %d has id %d", ErrInvalidRecord, i, snap.Cards[i].ID)
		}
	}
	for i := range snap.Transactions {
		t := &snap.Transactions[i]
		if t.ID < 1 {
			return fmt.Errorf("%w: transaction at index %d has id %d", ErrInvalidRecord, i, t.ID)
		}
		if t.Date.IsZero() {
			return fmt.Errorf("%w: transaction %d has no date", ErrInvalidRecord, t.ID)
		}
		// Invoice metadata travels with card origin and only card origin.
		if t.IsCardOrigin() && (t.InvoiceDate == nil || t.Parcel == nil) {
			return fmt.Errorf("%w: card transaction %d missing invoice metadata", ErrInvalidRecord, t.ID)
		}
		if t.Origin == model.OriginAccount && (t.InvoiceDate != nil || t.Parcel != nil) {
			return fmt.Errorf("%w: account transaction %d carries invoice metadata", ErrInvalidRecord, t.ID)
		}
	}

	if snap.Counters.Account < 0 || snap.Counters.Card < 0 ||
		snap.Counters.Category < 0 || snap.Counters.Transaction < 0 {
		return ErrInvalidCounter
	}

	return nil
}
