package transaction

import (
	"github.com/shopspring/decimal"
)

// PaiseFromFloat converts a decimal currency amount into paise, rounding to
// two decimal places. Going through decimal avoids the drift of multiplying
// floats directly (e.g. 40.55*100 -> 4054.9999...).
func PaiseFromFloat(amount float64) int64 {
	return decimal.NewFromFloat(amount).Round(2).Mul(decimal.NewFromInt(100)).IntPart()
}

// PaiseToFloat converts paise back to decimal currency units for reporting.
func PaiseToFloat(paise int64) float64 {
	f, _ := decimal.NewFromInt(paise).Div(decimal.NewFromInt(100)).Float64()
	return f
}

// ParsePaise parses a decimal amount string (e.g. "5000", "5000.50") into paise.
func ParsePaise(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}

	return d.Round(2).Mul(decimal.NewFromInt(100)).IntPart(), nil
}
