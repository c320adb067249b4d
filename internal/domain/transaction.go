package domain

import "github.com/shopspring/decimal"

// TxKind is the kind of a stored transaction. Only deposits and withdrawals
// are stored, because only those can be disputed later.
type TxKind string

const (
	TxDeposit    TxKind = "deposit"
	TxWithdrawal TxKind = "withdrawal"
)

// TxStatus is the dispute state of a stored transaction.
//
// Normal --dispute--> Disputed --resolve--> Normal
// Disputed --chargeback--> ChargedBack (terminal)
type TxStatus string

const (
	TxNormal      TxStatus = "normal"
	TxDisputed    TxStatus = "disputed"
	TxChargedBack TxStatus = "charged_back"
)

// StoredTransaction is a previously accepted deposit or withdrawal, kept so
// that later dispute-lifecycle events can refer back to it by id. Client is
// authoritative for dispute-ownership checks.
type StoredTransaction struct {
	Client ClientID
	Amount decimal.Decimal
	Kind   TxKind
	Status TxStatus
}

// TransactionStore gives keyed access to stored transactions.
type TransactionStore interface {
	GetTransaction(id TxID) (*StoredTransaction, bool)
	PutTransaction(id TxID, tx StoredTransaction)
}
