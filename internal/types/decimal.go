package types

import (
	"strings"

	ierr "github.com/meterflow/meterflow/internal/errors"
	"github.com/shopspring/decimal"
)

var half = decimal.NewFromFloat(0.5)

// RoundHalfUp rounds d to the given number of decimal places with ties
// rounded toward positive infinity (12.345 -> 12.35, -12.345 -> -12.34).
// shopspring only ships half-away-from-zero (Round) and banker's rounding
// (RoundBank), so this is built from shift/floor which is exact for any
// precision.
func RoundHalfUp(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Shift(places).Add(half).Floor().Shift(-places)
}

// ParseDecimal parses a spreadsheet numeric literal into an exact decimal.
// Thousands separators and surrounding whitespace are tolerated since the
// value may have passed through spreadsheet formatting.
func ParseDecimal(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if cleaned == "" {
		return decimal.Zero, ierr.NewError("empty numeric literal").
			WithHint("The cell holds no numeric value").
			Mark(ierr.ErrValidation)
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, ierr.WithError(err).
			WithHintf("Could not parse %q as a decimal", s).
			Mark(ierr.ErrValidation)
	}
	return d, nil
}
