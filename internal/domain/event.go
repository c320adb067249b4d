package domain

import "github.com/shopspring/decimal"

// ClientID identifies a client account.
type ClientID uint16

// TxID identifies a transaction globally, across all clients.
type TxID uint32

// EventType is the kind of an input event.
type EventType string

const (
	EventDeposit    EventType = "deposit"
	EventWithdrawal EventType = "withdrawal"
	EventDispute    EventType = "dispute"
	EventResolve    EventType = "resolve"
	EventChargeback EventType = "chargeback"
)

// Event is one well-typed record from the input stream. Amount is set only
// for deposits and withdrawals; dispute-lifecycle events carry none.
type Event struct {
	Type   EventType
	Client ClientID
	Tx     TxID
	Amount *decimal.Decimal
}
