package valve

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// ParseRates converts a comma-separated rate list into exactly n values.
//
// Tokens are trimmed and empty tokens are dropped, so "1, 2,,3" is three
// rates. Any failure wraps ErrInvalidRateList and names the violated
// constraint: wrong count, a value that is not a finite non-negative number,
// or a total that is not positive or not finite.
func ParseRates(text string, n int) ([]float64, error) {
	var tokens []string
	for _, tok := range strings.Split(text, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			tokens = append(tokens, tok)
		}
	}
	if len(tokens) != n {
		return nil, countError(n, len(tokens))
	}

	rates := make([]float64, len(tokens))
	for i, tok := range tokens {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, signError(i)
		}
		rates[i] = v
	}
	if err := ValidateRates(rates, n); err != nil {
		return nil, err
	}
	return rates, nil
}

// ValidateRates applies the ParseRates constraints to an already numeric list.
func ValidateRates(rates []float64, n int) error {
	if len(rates) != n {
		return countError(n, len(rates))
	}
	for i, r := range rates {
		if math.IsNaN(r) || math.IsInf(r, 0) || r < 0 {
			return signError(i)
		}
	}
	total := floats.Sum(rates)
	if total <= 0 {
		return fmt.Errorf("%w: rates must sum to more than 0", ErrInvalidRateList)
	}
	if math.IsInf(total, 0) {
		return errSumOverflow
	}
	return nil
}

// errSumOverflow is returned when finite rates add up past float64 range.
var errSumOverflow = fmt.Errorf("%w: rates sum overflows", ErrInvalidRateList)

func countError(want, got int) error {
	return fmt.Errorf("%w: expected %d rates, got %d", ErrInvalidRateList, want, got)
}

// signError reports the 1-based position of the offending rate.
func signError(i int) error {
	return fmt.Errorf("%w: rate #%d must be a finite non-negative number", ErrInvalidRateList, i+1)
}
