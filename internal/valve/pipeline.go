package valve

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// LinearEqual returns the valve percentages for m machines with equal
// consumption, each taking an equal share of the original flow:
//
//	C_i = 100 / (m - i + 1),  i = 1..m
//
// The result is non-decreasing and always ends at 100. m <= 0 yields an
// empty list.
func LinearEqual(m, d int) []float64 {
	if m <= 0 {
		return []float64{}
	}
	out := make([]float64, m)
	for i := 0; i < m; i++ {
		remaining := m - i
		out[i] = Round(100/float64(remaining), d)
	}
	return out
}

// LinearUnequal returns the valve percentages for machines with individual
// demand rates. Each machine takes its share of the remaining downstream
// demand:
//
//	C_i = r_i / (r_i + r_{i+1} + ... + r_m) * 100
//
// A zero rate on a zero remaining demand evaluates to 0 (the valve stays
// closed on a dead tail). A non-zero rate over a zero suffix only happens
// with negative input and returns ErrZeroSuffixSum. Rates whose total
// overflows float64 return ErrInvalidRateList.
func LinearUnequal(rates []float64, d int) ([]float64, error) {
	n := len(rates)
	suffix := make([]float64, n+1)
	for i := n - 1; i >= 0; i-- {
		suffix[i] = suffix[i+1] + rates[i]
	}
	if math.IsInf(suffix[0], 0) {
		return nil, errSumOverflow
	}

	out := make([]float64, n)
	for i, r := range rates {
		if suffix[i] == 0 {
			if r != 0 {
				return nil, fmt.Errorf("%w: machine #%d", ErrZeroSuffixSum, i+1)
			}
			out[i] = 0
			continue
		}
		out[i] = Round(r/suffix[i]*100, d)
	}
	return out, nil
}

// SplitPercent is the split-valve percentage for n machines with equal rates
// when the first l machines sit on the left branch. The right branch is the
// bypass port, so the result is the share of flow sent right.
// Callers guarantee n > 0 and 0 <= l <= n.
func SplitPercent(n, l int) float64 {
	right := n - l
	return float64(right) * 100 / float64(n)
}

// SplitPercentRates is SplitPercent weighted by demand: the right segment's
// share of the total rate. Callers guarantee a positive total.
func SplitPercentRates(rates []float64, l int) float64 {
	total := floats.Sum(rates)
	if total == 0 {
		return 0
	}
	return floats.Sum(rates[l:]) / total * 100
}
