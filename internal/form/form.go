package form

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/obsidianstack/valvecalc/internal/valve"
)

// Query parameter and form field names shared by the HTML form, the GET
// API and the CLI help text.
const (
	FieldMachines   = "machines"
	FieldDecimals   = "decimals"
	FieldAsymmetric = "asymmetric"
	FieldSplit      = "split"
	FieldUnequal    = "unequal"
	FieldRates      = "rates"
)

// maxExactInt is the largest integer a float64 represents exactly.
const maxExactInt = 1 << 53

// Fields holds the raw, unvalidated form inputs.
type Fields struct {
	Machines     string
	Decimals     string
	Asymmetric   bool
	SplitPoint   string
	UnequalRates bool
	Rates        string
}

// Options tunes parsing. The zero value means default decimals 0 and no
// machine limit.
type Options struct {
	DefaultDecimals int
	MaxMachines     int
}

// FromValues reads Fields from url.Values (query string or posted form).
// A checkbox counts as ticked when present with any value other than
// "false", "off" or "0".
func FromValues(v url.Values) Fields {
	return Fields{
		Machines:     v.Get(FieldMachines),
		Decimals:     v.Get(FieldDecimals),
		Asymmetric:   checked(v, FieldAsymmetric),
		SplitPoint:   v.Get(FieldSplit),
		UnequalRates: checked(v, FieldUnequal),
		Rates:        v.Get(FieldRates),
	}
}

// Parse validates f and builds the calculation config.
func Parse(f Fields, opts Options) (valve.Config, error) {
	var cfg valve.Config

	n, ok := parseInt(f.Machines)
	if !ok || n <= 0 {
		return cfg, valve.ErrInvalidMachineCount
	}
	if opts.MaxMachines > 0 && n > opts.MaxMachines {
		return cfg, fmt.Errorf("%w: at most %d machines", valve.ErrInvalidMachineCount, opts.MaxMachines)
	}
	cfg.MachineCount = n

	if f.Asymmetric {
		l, ok := parseInt(f.SplitPoint)
		if !ok || l < 0 || l > n {
			return valve.Config{}, valve.ErrInvalidSplitPoint
		}
		cfg.Asymmetric = true
		cfg.SplitPoint = l
	}

	if f.UnequalRates {
		rates, err := valve.ParseRates(f.Rates, n)
		if err != nil {
			return valve.Config{}, err
		}
		cfg.UnequalRates = true
		cfg.Rates = rates
	}

	cfg.Decimals = ParseDecimals(f.Decimals, opts.DefaultDecimals)
	return cfg, nil
}

// ParseDecimals reads the precision field. Blank input uses def, finite
// numbers are truncated toward zero, anything else is 0. The result is
// always within [0, 9].
func ParseDecimals(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return valve.ClampDecimals(def)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	v = math.Max(-100, math.Min(100, math.Trunc(v)))
	return valve.ClampDecimals(int(v))
}

// parseInt accepts finite numbers with no fractional part: "4" and "4.0"
// parse, "4.5", "NaN" and "" do not.
func parseInt(s string) (int, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if v != math.Trunc(v) || math.Abs(v) > maxExactInt {
		return 0, false
	}
	return int(v), true
}

func checked(v url.Values, key string) bool {
	if !v.Has(key) {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(v.Get(key))) {
	case "false", "off", "0":
		return false
	default:
		return true
	}
}
