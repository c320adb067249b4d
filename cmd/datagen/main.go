// Command datagen produces a random event CSV together with the account
// table an engine run over it must produce. The expected table comes from
// feeding the generated stream through the real processor, so the pair can
// drive end-to-end and stress tests.
package main

import (
	"encoding/csv"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/shopspring/decimal"

	"payments-engine/internal/domain"
	"payments-engine/internal/ledger"
	"payments-engine/internal/processor"
	"payments-engine/internal/report"
)

type genRow struct {
	Type   domain.EventType `csv:"type"`
	Client domain.ClientID  `csv:"client"`
	Tx     domain.TxID      `csv:"tx"`
	Amount string           `csv:"amount"`
}

// txRef remembers an accepted deposit or withdrawal so later rows can
// dispute, resolve or charge it back against the right client.
type txRef struct {
	tx     domain.TxID
	client domain.ClientID
}

func main() {
	var (
		clients      = flag.Int("clients", 50, "number of distinct clients")
		events       = flag.Int("events", 1000, "number of event rows to generate")
		seed         = flag.Int64("seed", time.Now().UnixNano(), "rng seed, for reproducible files")
		inputPath    = flag.String("input", "e2e_input.csv", "where to write the event csv")
		expectedPath = flag.String("expected", "e2e_expected_output.csv", "where to write the expected account table")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	if err := generate(*clients, *events, *seed, *inputPath, *expectedPath); err != nil {
		logger.Error("generation failed", "error", err)
		os.Exit(1)
	}

	logger.Info("generated test pair",
		"events", *events,
		"clients", *clients,
		"seed", *seed,
		"input", *inputPath,
		"expected", *expectedPath,
	)
}

func generate(clients, events int, seed int64, inputPath, expectedPath string) error {
	rng := rand.New(rand.NewSource(seed))

	led := ledger.New()
	proc := processor.New(led, nil)

	inputFile, err := os.Create(inputPath)
	if err != nil {
		return err
	}
	defer inputFile.Close()

	cw := csv.NewWriter(inputFile)
	enc := csvutil.NewEncoder(cw)

	var disputable []txRef

	for txID := domain.TxID(1); txID <= domain.TxID(events); txID++ {
		ev := nextEvent(rng, clients, txID, disputable)

		row := genRow{Type: ev.Type, Client: ev.Client, Tx: ev.Tx}
		if ev.Amount != nil {
			row.Amount = ev.Amount.StringFixed(2)
		}
		if err := enc.Encode(row); err != nil {
			return err
		}

		out := proc.Apply(ev)
		if out.Applied && (ev.Type == domain.EventDeposit || ev.Type == domain.EventWithdrawal) {
			disputable = append(disputable, txRef{tx: ev.Tx, client: ev.Client})
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	expectedFile, err := os.Create(expectedPath)
	if err != nil {
		return err
	}
	defer expectedFile.Close()

	return report.WriteAccounts(expectedFile, led.Snapshot())
}

// nextEvent picks a weighted random event. Deposits dominate so most
// dispute-lifecycle rows land on an existing transaction; before any
// transaction is stored only deposits are generated.
func nextEvent(rng *rand.Rand, clients int, txID domain.TxID, disputable []txRef) domain.Event {
	roll := rng.Intn(100)
	if len(disputable) == 0 {
		roll = 0
	}

	switch {
	case roll < 50:
		amount := decimal.New(int64(rng.Intn(999_999)+1), -2)
		return domain.Event{
			Type:   domain.EventDeposit,
			Client: domain.ClientID(rng.Intn(clients) + 1),
			Tx:     txID,
			Amount: &amount,
		}
	case roll < 70:
		amount := decimal.New(int64(rng.Intn(99_999)+1), -2)
		return domain.Event{
			Type:   domain.EventWithdrawal,
			Client: domain.ClientID(rng.Intn(clients) + 1),
			Tx:     txID,
			Amount: &amount,
		}
	case roll < 85:
		ref := disputable[rng.Intn(len(disputable))]
		return domain.Event{Type: domain.EventDispute, Client: ref.client, Tx: ref.tx}
	case roll < 95:
		ref := disputable[rng.Intn(len(disputable))]
		return domain.Event{Type: domain.EventResolve, Client: ref.client, Tx: ref.tx}
	default:
		ref := disputable[rng.Intn(len(disputable))]
		return domain.Event{Type: domain.EventChargeback, Client: ref.client, Tx: ref.tx}
	}
}
