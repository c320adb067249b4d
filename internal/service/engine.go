package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"payments-engine/internal/domain"
	"payments-engine/internal/ingest"
	"payments-engine/internal/ledger"
	"payments-engine/internal/processor"
	"payments-engine/internal/report"
)

// eventBuffer lets ingestion run ahead of the processor without ever
// reordering: there is exactly one channel and one consumer.
const eventBuffer = 1024

// Summary describes one engine run.
type Summary struct {
	RunID            string
	EventsApplied    uint64
	EventsRejected   uint64
	RowsSkipped      int
	Accounts         int
	RejectedByReason map[processor.RejectReason]uint64
}

// Engine wires ingestion, processing and reporting for a single run over a
// fresh ledger.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates an engine that logs through logger.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{logger: logger}
}

// Run consumes the event stream from input and writes the final account
// table to output. Ingestion runs on its own goroutine, but events reach the
// processor through a single ordered channel and are applied strictly one at
// a time in delivery order.
func (e *Engine) Run(ctx context.Context, input io.Reader, output io.Writer) (*Summary, error) {
	runID := uuid.New().String()
	logger := e.logger.With("run_id", runID)

	led := ledger.New()
	proc := processor.New(led, logger)
	reader := ingest.NewReader(logger)

	events := make(chan domain.Event, eventBuffer)

	g, ctx := errgroup.WithContext(ctx)

	var skipped int
	g.Go(func() error {
		defer close(events)
		n, err := reader.Stream(ctx, input, events)
		skipped = n
		return err
	})

	g.Go(func() error {
		for ev := range events {
			proc.Apply(ev)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	accounts := led.Snapshot()
	if err := report.WriteAccounts(output, accounts); err != nil {
		return nil, err
	}

	stats := proc.Stats()
	summary := &Summary{
		RunID:            runID,
		EventsApplied:    stats.Applied,
		EventsRejected:   stats.Rejected,
		RowsSkipped:      skipped,
		Accounts:         len(accounts),
		RejectedByReason: stats.ByReason,
	}

	logger.Info("run completed",
		"events_applied", summary.EventsApplied,
		"events_rejected", summary.EventsRejected,
		"rows_skipped", summary.RowsSkipped,
		"accounts", summary.Accounts,
	)
	return summary, nil
}
