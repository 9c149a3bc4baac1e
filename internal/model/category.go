package model

// Category labels transactions for reporting. Categories are free-form
// strings on transactions; the persisted collection exists so the snapshot
// contract covers everything collaborators store.
type Category struct {
	Name string
	ID   int64
}
