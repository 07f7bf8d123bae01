package valve

import "math"

// Decimal precision bounds accepted by Round.
const (
	MinDecimals = 0
	MaxDecimals = 9
)

// Round rounds x to d decimal digits, half away from zero.
// d must already be within [MinDecimals, MaxDecimals].
func Round(x float64, d int) float64 {
	p := math.Pow(10, float64(d))
	return math.Round(x*p) / p
}

// ClampDecimals restricts d to [MinDecimals, MaxDecimals].
func ClampDecimals(d int) int {
	if d < MinDecimals {
		return MinDecimals
	}
	if d > MaxDecimals {
		return MaxDecimals
	}
	return d
}
