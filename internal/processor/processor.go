package processor

import (
	"io"
	"log/slog"

	"payments-engine/internal/domain"
	"payments-engine/internal/ledger"
)

// RejectReason says why an event was discarded.
type RejectReason string

const (
	ReasonMissingAmount     RejectReason = "missing_amount"
	ReasonNegativeAmount    RejectReason = "negative_amount"
	ReasonAccountLocked     RejectReason = "account_locked"
	ReasonDuplicateTx       RejectReason = "duplicate_tx"
	ReasonInsufficientFunds RejectReason = "insufficient_funds"
	ReasonUnknownTx         RejectReason = "unknown_tx"
	ReasonUnknownClient     RejectReason = "unknown_client"
	ReasonClientMismatch    RejectReason = "client_mismatch"
	ReasonWrongStatus       RejectReason = "wrong_status"
	ReasonUnknownType       RejectReason = "unknown_type"
)

// Outcome is the result of applying one event. Rejections are routine
// outcomes of a best-effort stream: they never mutate state and never stop
// processing of subsequent events.
type Outcome struct {
	Applied bool
	Reason  RejectReason
}

func applied() Outcome { return Outcome{Applied: true} }

func rejected(reason RejectReason) Outcome { return Outcome{Reason: reason} }

// Stats counts applied and rejected events for one processor.
type Stats struct {
	Applied  uint64
	Rejected uint64
	ByReason map[RejectReason]uint64
}

// Processor applies events one at a time, strictly in delivery order,
// against the ledger. Order is what gives the dispute lifecycle meaning, so
// the processor must stay the single writer of its ledger.
type Processor struct {
	ledger *ledger.Ledger
	logger *slog.Logger
	stats  Stats
}

// New creates a processor over the given ledger.
func New(l *ledger.Ledger, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Processor{
		ledger: l,
		logger: logger,
		stats:  Stats{ByReason: make(map[RejectReason]uint64)},
	}
}

// Apply runs the type-specific state-transition rule for one event and
// reports whether it was applied or silently discarded.
func (p *Processor) Apply(ev domain.Event) Outcome {
	var out Outcome

	switch ev.Type {
	case domain.EventDeposit:
		out = p.applyDeposit(ev)
	case domain.EventWithdrawal:
		out = p.applyWithdrawal(ev)
	case domain.EventDispute:
		out = p.applyDispute(ev)
	case domain.EventResolve:
		out = p.applyResolve(ev)
	case domain.EventChargeback:
		out = p.applyChargeback(ev)
	default:
		out = rejected(ReasonUnknownType)
	}

	p.record(ev, out)
	return out
}

// Stats returns a copy of the counters accumulated so far.
func (p *Processor) Stats() Stats {
	out := Stats{
		Applied:  p.stats.Applied,
		Rejected: p.stats.Rejected,
		ByReason: make(map[RejectReason]uint64, len(p.stats.ByReason)),
	}
	for reason, n := range p.stats.ByReason {
		out.ByReason[reason] = n
	}
	return out
}

func (p *Processor) record(ev domain.Event, out Outcome) {
	if out.Applied {
		p.stats.Applied++
		return
	}

	p.stats.Rejected++
	p.stats.ByReason[out.Reason]++
	p.logger.Debug("event rejected",
		"type", ev.Type,
		"client", ev.Client,
		"tx", ev.Tx,
		"reason", out.Reason,
	)
}

func (p *Processor) applyDeposit(ev domain.Event) Outcome {
	if ev.Amount == nil {
		return rejected(ReasonMissingAmount)
	}
	if ev.Amount.IsNegative() {
		return rejected(ReasonNegativeAmount)
	}
	if _, ok := p.ledger.GetTransaction(ev.Tx); ok {
		return rejected(ReasonDuplicateTx)
	}

	acc := p.ledger.GetOrCreateAccount(ev.Client)
	if acc.Locked {
		return rejected(ReasonAccountLocked)
	}

	acc.Available = acc.Available.Add(*ev.Amount)
	p.ledger.PutTransaction(ev.Tx, domain.StoredTransaction{
		Client: ev.Client,
		Amount: *ev.Amount,
		Kind:   domain.TxDeposit,
		Status: domain.TxNormal,
	})
	return applied()
}

func (p *Processor) applyWithdrawal(ev domain.Event) Outcome {
	if ev.Amount == nil {
		return rejected(ReasonMissingAmount)
	}
	if ev.Amount.IsNegative() {
		return rejected(ReasonNegativeAmount)
	}
	if _, ok := p.ledger.GetTransaction(ev.Tx); ok {
		return rejected(ReasonDuplicateTx)
	}

	acc := p.ledger.GetOrCreateAccount(ev.Client)
	if acc.Locked {
		return rejected(ReasonAccountLocked)
	}
	// No overdraft: the whole withdrawal is rejected, never a partial one.
	if ev.Amount.GreaterThan(acc.Available) {
		return rejected(ReasonInsufficientFunds)
	}

	acc.Available = acc.Available.Sub(*ev.Amount)
	p.ledger.PutTransaction(ev.Tx, domain.StoredTransaction{
		Client: ev.Client,
		Amount: *ev.Amount,
		Kind:   domain.TxWithdrawal,
		Status: domain.TxNormal,
	})
	return applied()
}

func (p *Processor) applyDispute(ev domain.Event) Outcome {
	tx, acc, out := p.resolveReference(ev)
	if !out.Applied {
		return out
	}
	if tx.Status != domain.TxNormal {
		return rejected(ReasonWrongStatus)
	}
	if acc.Locked {
		return rejected(ReasonAccountLocked)
	}

	// The hold is taken from available regardless of the original kind.
	// Disputing a withdrawal legitimately drives available negative: the
	// withdrawn funds are no longer there to move.
	acc.Available = acc.Available.Sub(tx.Amount)
	acc.Held = acc.Held.Add(tx.Amount)
	tx.Status = domain.TxDisputed
	return applied()
}

func (p *Processor) applyResolve(ev domain.Event) Outcome {
	tx, acc, out := p.resolveReference(ev)
	if !out.Applied {
		return out
	}
	if tx.Status != domain.TxDisputed {
		return rejected(ReasonWrongStatus)
	}
	if acc.Locked {
		return rejected(ReasonAccountLocked)
	}

	acc.Held = acc.Held.Sub(tx.Amount)
	acc.Available = acc.Available.Add(tx.Amount)
	tx.Status = domain.TxNormal
	return applied()
}

func (p *Processor) applyChargeback(ev domain.Event) Outcome {
	tx, acc, out := p.resolveReference(ev)
	if !out.Applied {
		return out
	}
	if tx.Status != domain.TxDisputed {
		return rejected(ReasonWrongStatus)
	}
	if acc.Locked {
		return rejected(ReasonAccountLocked)
	}

	// Held funds are gone for good; available is untouched. The account is
	// frozen permanently and the transaction can never transition again.
	acc.Held = acc.Held.Sub(tx.Amount)
	acc.Locked = true
	tx.Status = domain.TxChargedBack
	return applied()
}

// resolveReference looks up the stored transaction a dispute-lifecycle event
// refers to, plus the owning account. Lookups never create accounts: only
// deposits and withdrawals do that.
func (p *Processor) resolveReference(ev domain.Event) (*domain.StoredTransaction, *domain.Account, Outcome) {
	tx, ok := p.ledger.GetTransaction(ev.Tx)
	if !ok {
		return nil, nil, rejected(ReasonUnknownTx)
	}
	if tx.Client != ev.Client {
		return nil, nil, rejected(ReasonClientMismatch)
	}
	acc, ok := p.ledger.GetAccount(ev.Client)
	if !ok {
		return nil, nil, rejected(ReasonUnknownClient)
	}
	return tx, acc, applied()
}
