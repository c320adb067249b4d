package domain

import "github.com/shopspring/decimal"

// Account is the state of one client's funds. Total is never stored: it is
// always derived from Available and Held, so the two can never diverge.
type Account struct {
	ID        ClientID
	Available decimal.Decimal
	Held      decimal.Decimal
	Locked    bool
}

// NewAccount creates an empty, unlocked account for a client.
func NewAccount(id ClientID) *Account {
	return &Account{
		ID:        id,
		Available: decimal.Zero,
		Held:      decimal.Zero,
	}
}

// Total is the sum of available and held funds.
func (a *Account) Total() decimal.Decimal {
	return a.Available.Add(a.Held)
}

// AccountStore gives keyed access to client accounts.
type AccountStore interface {
	// GetOrCreateAccount returns the account for id, creating an empty one
	// on first reference.
	GetOrCreateAccount(id ClientID) *Account
	// GetAccount is a read-only probe that never creates an account.
	GetAccount(id ClientID) (*Account, bool)
	// Snapshot returns a copy of every account, ascending by client id.
	Snapshot() []Account
}
