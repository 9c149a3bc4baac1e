package model

// Counters carries the per-collection id generators. Ids are assigned
// atomically with insertion and persisted with the collections so restores
// never reuse an id.
type Counters struct {
	Account     int64
	Card        int64
	Category    int64
	Transaction int64
}

// Snapshot is the complete ledger state. Persistence replaces whole
// collections on every save, so the snapshot is the unit of durability.
type Snapshot struct {
	Accounts     []Account
	Cards        []Card
	Categories   []Category
	Transactions []Transaction
	Counters     Counters
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		Accounts:     make([]Account, len(s.Accounts)),
		Cards:        make([]Card, len(s.Cards)),
		Categories:   make([]Category, len(s.Categories)),
		Transactions: make([]Transaction, 0, len(s.Transactions)),
		Counters:     s.Counters,
	}
	copy(out.Accounts, s.Accounts)
	copy(out.Cards, s.Cards)
	copy(out.Categories, s.Categories)
	for i := range s.Transactions {
		out.Transactions = append(out.Transactions, s.Transactions[i].Clone())
	}
	return out
}
