package ledger

import (
	"sort"

	"payments-engine/internal/domain"
)

// Ledger is the in-memory authoritative state: one record per client account
// ever created and one per disputable transaction ever accepted. It is pure
// storage with map semantics; all validation lives in the processor.
//
// The ledger is exclusively owned by the single goroutine driving the
// processor and is not safe for concurrent use.
type Ledger struct {
	accounts     map[domain.ClientID]*domain.Account
	transactions map[domain.TxID]*domain.StoredTransaction
}

// Ensure the ledger satisfies the store contracts.
var (
	_ domain.AccountStore     = (*Ledger)(nil)
	_ domain.TransactionStore = (*Ledger)(nil)
)

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{
		accounts:     make(map[domain.ClientID]*domain.Account),
		transactions: make(map[domain.TxID]*domain.StoredTransaction),
	}
}

// GetOrCreateAccount returns the account for id, creating an empty, unlocked
// one on first reference.
func (l *Ledger) GetOrCreateAccount(id domain.ClientID) *domain.Account {
	if acc, ok := l.accounts[id]; ok {
		return acc
	}
	acc := domain.NewAccount(id)
	l.accounts[id] = acc
	return acc
}

// GetAccount returns the account for id without creating one.
func (l *Ledger) GetAccount(id domain.ClientID) (*domain.Account, bool) {
	acc, ok := l.accounts[id]
	return acc, ok
}

// GetTransaction returns the stored transaction for id, if any.
func (l *Ledger) GetTransaction(id domain.TxID) (*domain.StoredTransaction, bool) {
	tx, ok := l.transactions[id]
	return tx, ok
}

// PutTransaction records a disputable transaction under id.
func (l *Ledger) PutTransaction(id domain.TxID, tx domain.StoredTransaction) {
	stored := tx
	l.transactions[id] = &stored
}

// Snapshot returns a copy of every account, sorted ascending by client id so
// that output order is deterministic.
func (l *Ledger) Snapshot() []domain.Account {
	out := make([]domain.Account, 0, len(l.accounts))
	for _, acc := range l.accounts {
		out = append(out, *acc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
