// Package ledger owns the account, card and transaction collections and
// every operation that mutates them. All mutation funnels through a single
// mutex per instance; callers never touch the collections directly.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carteira-app/carteira/internal/billing"
	"github.com/carteira-app/carteira/internal/common"
	"github.com/carteira-app/carteira/internal/model"
	"github.com/carteira-app/carteira/internal/service"
)

// BalancePolicy decides when an account-origin transaction moves its
// account's balance. The policy is uniform per ledger instance.
type BalancePolicy string

// Balance policies. Deferred is the default: every entry starts pending and
// balances move only at settlement. Immediate applies account-origin entries
// at creation; card entries are always deferred to their invoice.
const (
	PolicyDeferred  BalancePolicy = "deferred"
	PolicyImmediate BalancePolicy = "immediate"
)

// Option configures a Ledger.
type Option func(*Ledger)

// WithStore attaches a persistence backend. Every successful mutation is
// written through before the operation returns. When the write-through
// fails the in-memory mutation is kept and the error reported, so retrying
// a creation call records a second entry; the next successful mutation
// persists everything.
func WithStore(store service.SnapshotStore) Option {
	return func(l *Ledger) { l.store = store }
}

// WithBalancePolicy selects when account-origin entries affect balances.
func WithBalancePolicy(p BalancePolicy) Option {
	return func(l *Ledger) { l.policy = p }
}

// WithMaxInstallments caps the number of parcels a card purchase may carry.
func WithMaxInstallments(n int) Option {
	return func(l *Ledger) { l.allocator = billing.NewAllocator(n) }
}

// Ledger is the authoritative in-memory state for accounts, cards,
// categories and transactions.
type Ledger struct {
	store        service.SnapshotStore
	accounts     map[int64]*model.Account
	cards        map[int64]*model.Card
	categories   map[int64]*model.Category
	transactions map[int64]*model.Transaction
	allocator    *billing.Allocator
	policy       BalancePolicy
	counters     model.Counters
	mu           sync.Mutex
}

// New creates an empty ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		accounts:     make(map[int64]*model.Account),
		cards:        make(map[int64]*model.Card),
		categories:   make(map[int64]*model.Category),
		transactions: make(map[int64]*model.Transaction),
		allocator:    billing.NewAllocator(billing.DefaultMaxInstallments),
		policy:       PolicyDeferred,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load creates a ledger backed by store and restores its last snapshot.
func Load(ctx context.Context, store service.SnapshotStore, opts ...Option) (*Ledger, error) {
	l := New(append([]Option{WithStore(store)}, opts...)...)

	snap, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger snapshot: %w", err)
	}
	l.restore(snap)

	slog.Debug("ledger restored",
		"accounts", len(l.accounts),
		"cards", len(l.cards),
		"transactions", len(l.transactions))
	return l, nil
}

func (l *Ledger) restore(snap *model.Snapshot) {
	for i := range snap.Accounts {
		a := snap.Accounts[i]
		l.accounts[a.ID] = &a
	}
	for i := range snap.Cards {
		c := snap.Cards[i]
		l.cards[c.ID] = &c
	}
	for i := range snap.Categories {
		c := snap.Categories[i]
		l.categories[c.ID] = &c
	}
	for i := range snap.Transactions {
		t := snap.Transactions[i].Clone()
		l.transactions[t.ID] = &t
	}
	l.counters = snap.Counters

	// Counters restored from older snapshots may trail the collections;
	// never hand out an id twice.
	for id := range l.accounts {
		if id > l.counters.Account {
			l.counters.Account = id
		}
	}
	for id := range l.cards {
		if id > l.counters.Card {
			l.counters.Card = id
		}
	}
	for id := range l.categories {
		if id > l.counters.Category {
			l.counters.Category = id
		}
	}
	for id := range l.transactions {
		if id > l.counters.Transaction {
			l.counters.Transaction = id
		}
	}
}

// CreateAccount adds an account with an opening balance.
func (l *Ledger) CreateAccount(ctx context.Context, name string, openingBalance decimal.Decimal) (*model.Account, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: account name cannot be empty", common.ErrInvalidConfig)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.counters.Account++
	account := &model.Account{
		ID:      l.counters.Account,
		Name:    name,
		Balance: openingBalance,
	}
	l.accounts[account.ID] = account

	if err := l.persistLocked(ctx); err != nil {
		return nil, err
	}

	out := *account
	return &out, nil
}

// CreateCard adds a card after validating its billing cycle configuration.
func (l *Ledger) CreateCard(ctx context.Context, name string, limit decimal.Decimal, closingDay, dueDay int) (*model.Card, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: card name cannot be empty", common.ErrInvalidConfig)
	}
	// Reject bad cycle days at creation so purchases never hit them.
	if _, err := billing.ComputeInvoiceCycle(time.Now(), closingDay, dueDay); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.counters.Card++
	card := &model.Card{
		ID:         l.counters.Card,
		Name:       name,
		Limit:      limit,
		ClosingDay: closingDay,
		DueDay:     dueDay,
	}
	l.cards[card.ID] = card

	if err := l.persistLocked(ctx); err != nil {
		return nil, err
	}

	out := *card
	return &out, nil
}

// CreateCategory adds a category.
func (l *Ledger) CreateCategory(ctx context.Context, name string) (*model.Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: category name cannot be empty", common.ErrInvalidConfig)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, existing := range l.categories {
		if existing.Name == name {
			out := *existing
			return &out, nil
		}
	}

	l.counters.Category++
	category := &model.Category{
		ID:   l.counters.Category,
		Name: name,
	}
	l.categories[category.ID] = category

	if err := l.persistLocked(ctx); err != nil {
		return nil, err
	}

	out := *category
	return &out, nil
}

// CreateAccountTransaction records an entry against an account. Under the
// immediate policy the balance moves here and the entry is created paid;
// under the deferred policy it stays pending until settled. An error from
// the write-through leaves the entry in memory, so callers should not
// blindly retry (see WithStore).
func (l *Ledger) CreateAccountTransaction(ctx context.Context, accountID int64, kind model.TransactionKind, category, description string, date time.Time, amount decimal.Decimal) (*model.Transaction, error) {
	if kind != model.KindExpense && kind != model.KindIncome {
		return nil, fmt.Errorf("%w: unknown transaction kind %q", common.ErrInvalidConfig, kind)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive, got %s", common.ErrInvalidAmount, amount)
	}
	if date.IsZero() {
		return nil, fmt.Errorf("%w: transaction date is required", common.ErrInvalidConfig)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	account, ok := l.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", common.ErrAccountNotFound, accountID)
	}

	signed := amount
	if kind == model.KindExpense {
		signed = amount.Neg()
	}

	l.counters.Transaction++
	txn := &model.Transaction{
		ID:          l.counters.Transaction,
		Date:        date,
		Kind:        kind,
		Category:    category,
		Description: description,
		Amount:      signed,
		Origin:      model.OriginAccount,
		OriginID:    accountID,
	}

	if l.policy == PolicyImmediate {
		account.Balance = account.Balance.Add(signed)
		txn.Paid = true
	}
	l.transactions[txn.ID] = txn

	if err := l.persistLocked(ctx); err != nil {
		return nil, err
	}

	out := txn.Clone()
	return &out, nil
}

// CreateCardTransaction records a card purchase as one pending expense entry
// per installment, each billed to a successive invoice. chosenInvoiceDate
// overrides the first invoice; when nil the card's cycle decides. An error
// from the write-through leaves the entries in memory, so callers should
// not blindly retry (see WithStore).
func (l *Ledger) CreateCardTransaction(ctx context.Context, cardID int64, category, description string, date time.Time, total decimal.Decimal, parcels int, chosenInvoiceDate *time.Time) ([]model.Transaction, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("%w: purchase date is required", common.ErrInvalidConfig)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	card, ok := l.cards[cardID]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", common.ErrCardNotFound, cardID)
	}

	installments, err := l.allocator.Allocate(total, date, parcels, *card, chosenInvoiceDate)
	if err != nil {
		return nil, err
	}

	created := make([]model.Transaction, 0, len(installments))
	for _, inst := range installments {
		l.counters.Transaction++
		invoiceDate := inst.InvoiceDate
		parcel := inst.Parcel
		txn := &model.Transaction{
			ID:          l.counters.Transaction,
			Date:        date,
			Kind:        model.KindExpense,
			Category:    category,
			Description: description,
			Amount:      inst.Amount,
			Origin:      model.OriginCard,
			OriginID:    cardID,
			InvoiceDate: &invoiceDate,
			Parcel:      &parcel,
		}
		l.transactions[txn.ID] = txn
		created = append(created, txn.Clone())
	}

	if err := l.persistLocked(ctx); err != nil {
		return nil, err
	}

	slog.Debug("card purchase recorded",
		"card_id", cardID,
		"total", total.String(),
		"parcels", parcels)
	return created, nil
}

// ListPending returns unpaid transactions, newest first, ties broken by
// descending id so later entries of the same day come first.
func (l *Ledger) ListPending(_ context.Context, filter *service.TransactionFilter) ([]model.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []model.Transaction
	for _, txn := range l.transactions {
		if txn.Paid || !filter.Matches(txn) {
			continue
		}
		out = append(out, txn.Clone())
	}
	sortNewestFirst(out)
	return out, nil
}

// ListPaid returns settled transactions, newest first, capped at limit when
// limit is positive.
func (l *Ledger) ListPaid(_ context.Context, limit int) ([]model.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []model.Transaction
	for _, txn := range l.transactions {
		if !txn.Paid {
			continue
		}
		out = append(out, txn.Clone())
	}
	sortNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Accounts returns all accounts in id order.
func (l *Ledger) Accounts(_ context.Context) ([]model.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]model.Account, 0, len(l.accounts))
	for _, a := range l.accounts {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Cards returns all cards in id order.
func (l *Ledger) Cards(_ context.Context) ([]model.Card, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]model.Card, 0, len(l.cards))
	for _, c := range l.cards {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Categories returns all categories in id order.
func (l *Ledger) Categories(_ context.Context) ([]model.Category, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]model.Category, 0, len(l.categories))
	for _, c := range l.categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Snapshot returns a deep copy of the complete ledger state, compatible with
// whole-collection replace persistence.
func (l *Ledger) Snapshot() *model.Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

func (l *Ledger) snapshotLocked() *model.Snapshot {
	snap := &model.Snapshot{Counters: l.counters}
	for _, a := range l.accounts {
		snap.Accounts = append(snap.Accounts, *a)
	}
	for _, c := range l.cards {
		snap.Cards = append(snap.Cards, *c)
	}
	for _, c := range l.categories {
		snap.Categories = append(snap.Categories, *c)
	}
	for _, t := range l.transactions {
		snap.Transactions = append(snap.Transactions, t.Clone())
	}
	sort.Slice(snap.Accounts, func(i, j int) bool { return snap.Accounts[i].ID < snap.Accounts[j].ID })
	sort.Slice(snap.Cards, func(i, j int) bool { return snap.Cards[i].ID < snap.Cards[j].ID })
	sort.Slice(snap.Categories, func(i, j int) bool { return snap.Categories[i].ID < snap.Categories[j].ID })
	sort.Slice(snap.Transactions, func(i, j int) bool { return snap.Transactions[i].ID < snap.Transactions[j].ID })
	return snap
}

// persistLocked writes the full snapshot through to the store. The caller
// must hold the mutex. In-memory state stays ahead of disk on failure, never
// behind.
func (l *Ledger) persistLocked(ctx context.Context) error {
	if l.store == nil {
		return nil
	}
	if err := l.store.Save(ctx, l.snapshotLocked()); err != nil {
		return fmt.Errorf("failed to persist ledger snapshot: %w", err)
	}
	return nil
}

func sortNewestFirst(txns []model.Transaction) {
	sort.Slice(txns, func(i, j int) bool {
		if txns[i].Date.Equal(txns[j].Date) {
			return txns[i].ID > txns[j].ID
		}
		return txns[i].Date.After(txns[j].Date)
	})
}
