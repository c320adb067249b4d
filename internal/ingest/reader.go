package ingest

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"payments-engine/internal/domain"
	apperrors "payments-engine/internal/errors"
)

// Reader turns a delimited text source into an ordered stream of typed
// events. Structurally malformed rows (unknown type, unparsable ids or
// amount, missing columns) end here: they are skipped and counted, never
// fatal, and the processor never sees them.
type Reader struct {
	logger *slog.Logger
}

// NewReader creates a reader that logs skipped rows through logger.
func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Reader{logger: logger}
}

// Stream reads events from rd and sends them to out in file order. It
// returns the number of rows skipped as malformed. Only an unreadable header
// is a run-level error.
//
// Rows may pad fields with whitespace, and dispute-lifecycle rows may leave
// the amount column empty or drop it entirely, so fields are trimmed and
// record arity is not enforced.
func (r *Reader) Stream(ctx context.Context, rd io.Reader, out chan<- domain.Event) (int, error) {
	cr := csv.NewReader(rd)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	cols, err := r.readHeader(cr)
	if err != nil {
		return 0, err
	}

	skipped := 0
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			r.logger.Warn("skipping unreadable row", "line", line, "error", err)
			continue
		}

		ev, ok := r.parseRow(cols, row, line)
		if !ok {
			skipped++
			continue
		}

		select {
		case out <- ev:
		case <-ctx.Done():
			return skipped, ctx.Err()
		}
	}

	return skipped, nil
}

// columns holds the index of each known column in the header, -1 if absent.
type columns struct {
	typ    int
	client int
	tx     int
	amount int
}

func (r *Reader) readHeader(cr *csv.Reader) (columns, error) {
	header, err := cr.Read()
	if err != nil {
		return columns{}, apperrors.NewAppError(apperrors.InvalidInput, "cannot read csv header").WithDetails(err.Error())
	}

	cols := columns{typ: -1, client: -1, tx: -1, amount: -1}
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "type":
			cols.typ = i
		case "client":
			cols.client = i
		case "tx":
			cols.tx = i
		case "amount":
			cols.amount = i
		}
	}

	// The amount column is optional in the header; amount-bearing events
	// from such a file simply carry no amount and are discarded downstream.
	if cols.typ < 0 || cols.client < 0 || cols.tx < 0 {
		return columns{}, apperrors.NewAppError(apperrors.InvalidInput,
			"csv header must name the type, client and tx columns")
	}
	return cols, nil
}

func (r *Reader) parseRow(cols columns, row []string, line int) (domain.Event, bool) {
	typ, ok := parseEventType(field(row, cols.typ))
	if !ok {
		r.logger.Warn("skipping row with unknown event type", "line", line, "type", field(row, cols.typ))
		return domain.Event{}, false
	}

	client, err := strconv.ParseUint(field(row, cols.client), 10, 16)
	if err != nil {
		r.logger.Warn("skipping row with bad client id", "line", line, "error", err)
		return domain.Event{}, false
	}

	tx, err := strconv.ParseUint(field(row, cols.tx), 10, 32)
	if err != nil {
		r.logger.Warn("skipping row with bad tx id", "line", line, "error", err)
		return domain.Event{}, false
	}

	ev := domain.Event{
		Type:   typ,
		Client: domain.ClientID(client),
		Tx:     domain.TxID(tx),
	}

	if raw := field(row, cols.amount); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			r.logger.Warn("skipping row with bad amount", "line", line, "error", err)
			return domain.Event{}, false
		}
		ev.Amount = &amount
	}

	return ev, true
}

func parseEventType(s string) (domain.EventType, bool) {
	switch domain.EventType(s) {
	case domain.EventDeposit, domain.EventWithdrawal, domain.EventDispute,
		domain.EventResolve, domain.EventChargeback:
		return domain.EventType(s), true
	default:
		return "", false
	}
}

// field fetches and trims column i of row, tolerating short rows.
func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
