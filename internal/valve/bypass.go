package valve

import (
	"fmt"
	"math"
)

// Bypass returns the single-valve bypass percentage
//
//	bypass / (bypass + main) * 100
//
// rounded to d decimals. The inputs are either machine counts or total
// consumption rates of the two outputs; both must be finite and
// non-negative with a positive total.
func Bypass(bypass, main float64, d int) (float64, error) {
	for _, v := range []float64{bypass, main} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return 0, fmt.Errorf("%w: values must be finite and non-negative", ErrInvalidBypass)
		}
	}
	total := bypass + main
	if total <= 0 {
		return 0, fmt.Errorf("%w: total cannot be 0", ErrInvalidBypass)
	}
	if math.IsInf(total, 0) {
		return 0, fmt.Errorf("%w: total overflows", ErrInvalidBypass)
	}
	return Round(bypass/total*100, ClampDecimals(d)), nil
}
