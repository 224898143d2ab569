package s3_metrics

import "github.com/shopspring/decimal"

var (
	hundred = decimal.NewFromInt(100)
	million = decimal.NewFromInt(1_000_000)
	three   = decimal.NewFromInt(3)

	// Epsilon replaces a zero high-low range so the ratios stay finite
	Epsilon = decimal.NewFromFloat(1e-9)
)

// Round rounds half away from zero on the decimal value of v
func Round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func out(d decimal.Decimal, places int32) float64 {
	return d.Round(places).InexactFloat64()
}

// pct returns num / den × 100
func pct(num, den decimal.Decimal) decimal.Decimal {
	return num.Div(den).Mul(hundred)
}

// rangeDenominator is high - low, or Epsilon when the bar has no range
func rangeDenominator(high, low decimal.Decimal) decimal.Decimal {
	rng := high.Sub(low)
	if rng.IsZero() {
		return Epsilon
	}
	return rng
}
