package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/carteira-app/carteira/internal/common"
	"github.com/carteira-app/carteira/internal/model"
	"github.com/carteira-app/carteira/internal/service"
)

// Settle transitions the given pending transactions to paid and applies
// their balance effects. Account-origin entries move their own account's
// balance and ignore the payer; card-origin entries require payingAccountID
// and debit that account. Already-paid ids are skipped, so resubmitting a
// batch is safe. The batch is validated in full before any state changes:
// on error the ledger is untouched.
func (l *Ledger) Settle(ctx context.Context, ids []int64, payingAccountID *int64) (*service.SettlementResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var payer *model.Account
	if payingAccountID != nil {
		var ok bool
		payer, ok = l.accounts[*payingAccountID]
		if !ok {
			return nil, fmt.Errorf("%w: paying account id %d", common.ErrAccountNotFound, *payingAccountID)
		}
	}

	// Validation pass: resolve everything before mutating anything.
	seen := make(map[int64]bool, len(ids))
	pending := make([]*model.Transaction, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		txn, ok := l.transactions[id]
		if !ok {
			return nil, fmt.Errorf("%w: id %d", common.ErrTransactionNotFound, id)
		}
		if txn.Paid {
			continue
		}
		switch txn.Origin {
		case model.OriginCard:
			if payer == nil {
				return nil, fmt.Errorf("%w: transaction %d is card-originated", common.ErrPayingAccountRequired, id)
			}
		case model.OriginAccount:
			if _, ok := l.accounts[txn.OriginID]; !ok {
				return nil, fmt.Errorf("%w: id %d", common.ErrAccountNotFound, txn.OriginID)
			}
		}
		pending = append(pending, txn)
	}

	touched := make(map[int64]*model.Account)
	result := &service.SettlementResult{}
	for _, txn := range pending {
		target := payer
		if txn.Origin == model.OriginAccount {
			target = l.accounts[txn.OriginID]
		}

		// Balance first, paid flag second: a settled entry always has its
		// balance effect applied.
		target.Balance = target.Balance.Add(txn.Amount)
		txn.Paid = true

		touched[target.ID] = target
		result.UpdatedTransactions = append(result.UpdatedTransactions, txn.Clone())
	}

	if err := l.persistLocked(ctx); err != nil {
		return nil, err
	}

	for _, account := range touched {
		result.UpdatedAccounts = append(result.UpdatedAccounts, *account)
	}
	sort.Slice(result.UpdatedAccounts, func(i, j int) bool {
		return result.UpdatedAccounts[i].ID < result.UpdatedAccounts[j].ID
	})
	sort.Slice(result.UpdatedTransactions, func(i, j int) bool {
		return result.UpdatedTransactions[i].ID < result.UpdatedTransactions[j].ID
	})

	slog.Debug("settlement batch applied",
		"requested", len(ids),
		"settled", len(result.UpdatedTransactions),
		"accounts", len(result.UpdatedAccounts))
	return result, nil
}
