package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"payments-engine/internal/domain"
	"payments-engine/internal/ledger"
	"payments-engine/internal/processor"
	"payments-engine/internal/report"
	"payments-engine/internal/service"
)

type EndToEndTestSuite struct {
	suite.Suite
	engine *service.Engine
}

func (s *EndToEndTestSuite) SetupSuite() {
	s.engine = service.NewEngine(nil)
}

func (s *EndToEndTestSuite) run(input string) string {
	var out bytes.Buffer
	_, err := s.engine.Run(context.Background(), strings.NewReader(input), &out)
	s.Require().NoError(err)
	return out.String()
}

func (s *EndToEndTestSuite) TestMixedStream() {
	input := "type, client, tx, amount\n" +
		"deposit, 1, 1, 10.00\n" +
		"deposit, 2, 2, 20.00\n" +
		"deposit, 1, 3, 5.00\n" +
		"withdrawal, 1, 4, 3.00\n" +
		"dispute, 1, 1,\n" +
		"resolve, 1, 1,\n" +
		"dispute, 2, 2,\n" +
		"chargeback, 2, 2,\n" +
		"deposit, 2, 5, 99.00\n" + // locked, no-op
		"withdrawal, 3, 6, 50.00\n" // insufficient, account still created

	want := "client,available,held,total,locked\n" +
		"1,12.00,0.00,12.00,false\n" +
		"2,0.00,0.00,0.00,true\n" +
		"3,0.00,0.00,0.00,false\n"
	s.Equal(want, s.run(input))
}

func (s *EndToEndTestSuite) TestDisputedWithdrawalGoesNegative() {
	input := "type,client,tx,amount\n" +
		"deposit,1,1,100.00\n" +
		"withdrawal,1,2,60.00\n" +
		"dispute,1,2,\n"

	want := "client,available,held,total,locked\n" +
		"1,-20.00,60.00,40.00,false\n"
	s.Equal(want, s.run(input))
}

func (s *EndToEndTestSuite) TestCrossClientDisputeIgnored() {
	input := "type,client,tx,amount\n" +
		"deposit,1,1,10.00\n" +
		"dispute,2,1,\n"

	want := "client,available,held,total,locked\n" +
		"1,10.00,0.00,10.00,false\n"
	s.Equal(want, s.run(input))
}

// TestRandomStreamMatchesOracle replays a generated pseudo-random stream
// through the engine and checks the output against a table computed by
// applying the same events directly.
func (s *EndToEndTestSuite) TestRandomStreamMatchesOracle() {
	const (
		numClients = 25
		numEvents  = 5000
		seed       = 1
	)

	rng := rand.New(rand.NewSource(seed))
	led := ledger.New()
	proc := processor.New(led, nil)

	var input bytes.Buffer
	cw := csv.NewWriter(&input)
	s.Require().NoError(cw.Write([]string{"type", "client", "tx", "amount"}))

	var disputable []domain.Event
	for txID := domain.TxID(1); txID <= numEvents; txID++ {
		ev := randomEvent(rng, numClients, txID, disputable)

		amount := ""
		if ev.Amount != nil {
			amount = ev.Amount.StringFixed(2)
		}
		s.Require().NoError(cw.Write([]string{
			string(ev.Type),
			fmt.Sprintf("%d", ev.Client),
			fmt.Sprintf("%d", ev.Tx),
			amount,
		}))

		out := proc.Apply(ev)
		if out.Applied && ev.Amount != nil {
			disputable = append(disputable, ev)
		}
	}
	cw.Flush()
	s.Require().NoError(cw.Error())

	var expected bytes.Buffer
	s.Require().NoError(report.WriteAccounts(&expected, led.Snapshot()))

	s.Equal(expected.String(), s.run(input.String()))
}

func randomEvent(rng *rand.Rand, clients int, txID domain.TxID, disputable []domain.Event) domain.Event {
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
		return domain.Event{Type: domain.EventDispute, Client: ref.Client, Tx: ref.Tx}
	case roll < 95:
		ref := disputable[rng.Intn(len(disputable))]
		return domain.Event{Type: domain.EventResolve, Client: ref.Client, Tx: ref.Tx}
	default:
		ref := disputable[rng.Intn(len(disputable))]
		return domain.Event{Type: domain.EventChargeback, Client: ref.Client, Tx: ref.Tx}
	}
}

func TestEndToEndTestSuite(t *testing.T) {
	suite.Run(t, new(EndToEndTestSuite))
}

func TestOutputIsDeterministicAcrossRuns(t *testing.T) {
	input := "type,client,tx,amount\n" +
		"deposit,8,1,1.00\n" +
		"deposit,2,2,2.00\n" +
		"deposit,5,3,3.00\n"

	engine := service.NewEngine(nil)

	var first string
	for i := 0; i < 5; i++ {
		var out bytes.Buffer
		_, err := engine.Run(context.Background(), strings.NewReader(input), &out)
		require.NoError(t, err)
		if i == 0 {
			first = out.String()
			continue
		}
		assert.Equal(t, first, out.String())
	}
}
