package report

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/shopspring/decimal"

	"payments-engine/internal/domain"
	apperrors "payments-engine/internal/errors"
)

// accountRow is the output shape of one final account.
type accountRow struct {
	Client    domain.ClientID `csv:"client"`
	Available string          `csv:"available"`
	Held      string          `csv:"held"`
	Total     string          `csv:"total"`
	Locked    bool            `csv:"locked"`
}

// WriteAccounts renders the final account table as CSV, one row per account,
// in the order given.
func WriteAccounts(w io.Writer, accounts []domain.Account) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	for i := range accounts {
		acc := &accounts[i]
		row := accountRow{
			Client:    acc.ID,
			Available: FormatAmount(acc.Available),
			Held:      FormatAmount(acc.Held),
			Total:     FormatAmount(acc.Total()),
			Locked:    acc.Locked,
		}
		if err := enc.Encode(row); err != nil {
			return apperrors.NewAppError(apperrors.OutputError, "cannot write account row").WithDetails(err.Error())
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return apperrors.NewAppError(apperrors.OutputError, "cannot flush account table").WithDetails(err.Error())
	}
	return nil
}

// FormatAmount renders v with at least two fractional digits while keeping
// any extra precision: 12 becomes "12.00", 1.2345 stays "1.2345".
func FormatAmount(v decimal.Decimal) string {
	s := v.String() // trims insignificant trailing zeros
	i := strings.IndexByte(s, '.')
	if i < 0 || len(s)-i-1 < 2 {
		// Fewer than two fractional digits, so fixing the scale cannot round.
		return v.StringFixed(2)
	}
	return s
}
