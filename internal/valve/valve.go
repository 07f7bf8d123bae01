package valve

import (
	"errors"
	"fmt"
)

// Validation errors returned by Compute and the helpers it calls.
// Callers match them with errors.Is; the wrapped message names the exact
// constraint that failed.
var (
	ErrInvalidMachineCount = errors.New("invalid machine count")
	ErrInvalidSplitPoint   = errors.New("invalid split point")
	ErrInvalidRateList     = errors.New("invalid rate list")
	ErrZeroSuffixSum       = errors.New("zero suffix sum")
	ErrInvalidBypass       = errors.New("invalid bypass input")
)

// Segment identifies which part of the layout a valve belongs to.
type Segment string

const (
	SegmentSplit    Segment = "split"
	SegmentPipeline Segment = "pipeline"
	SegmentLeft     Segment = "left"
	SegmentRight    Segment = "right"
)

// Config is the input of one calculation.
type Config struct {
	// MachineCount is the total number of machines (N). Must be > 0.
	MachineCount int `json:"machine_count"`

	// Decimals is the rounding precision. Out-of-range values are clamped
	// to [0, 9], never rejected.
	Decimals int `json:"decimals"`

	// Asymmetric enables the split valve. SplitPoint is ignored otherwise.
	Asymmetric bool `json:"asymmetric"`

	// SplitPoint is the number of machines on the left branch, in [0, N].
	SplitPoint int `json:"split_point"`

	// UnequalRates switches both the split valve and the pipelines to
	// rate-weighted formulas. Rates is ignored otherwise.
	UnequalRates bool `json:"unequal_rates"`

	// Rates holds one non-negative demand per machine, len == MachineCount.
	Rates []float64 `json:"rates,omitempty"`
}

// Valve is one labelled percentage in a Report.
type Valve struct {
	Label   string  `json:"label"` // "C1", "C2", ...
	Index   int     `json:"index"` // 1-based position across all segments
	Segment Segment `json:"segment"`
	Percent float64 `json:"percent"`
}

// Report is the result of Compute. It echoes the validated input and lists
// the valves in order: the split valve first (asymmetric mode), then the
// left pipeline, then the right pipeline.
//
// Pipeline is set when the split is off; Left, Right and SplitPercent when it
// is on. Valves always carries the full ordered list.
type Report struct {
	MachineCount int       `json:"machine_count"`
	Decimals     int       `json:"decimals"`
	Asymmetric   bool      `json:"asymmetric"`
	UnequalRates bool      `json:"unequal_rates"`
	SplitPoint   *int      `json:"split_point,omitempty"`
	Rates        []float64 `json:"rates,omitempty"`

	SplitPercent *float64  `json:"split_percent,omitempty"`
	Pipeline     []float64 `json:"pipeline,omitempty"`
	Left         []float64 `json:"left,omitempty"`
	Right        []float64 `json:"right,omitempty"`

	Valves []Valve `json:"valves"`

	// JunctionHint is true when any valve sits at exactly 50 or 100, which
	// can usually be built with a junction or a turn instead.
	JunctionHint bool `json:"junction_hint"`
}

// Mode returns a short name for the toggle combination, e.g.
// "asymmetric-unequal". Used as a metric label and in text output.
func (c Config) Mode() string {
	split := "linear"
	if c.Asymmetric {
		split = "asymmetric"
	}
	rates := "equal"
	if c.UnequalRates {
		rates = "unequal"
	}
	return split + "-" + rates
}

// Validate checks cfg in the fixed order used by Compute and returns the
// first violation.
func (c Config) Validate() error {
	if c.MachineCount <= 0 {
		return ErrInvalidMachineCount
	}
	if c.Asymmetric && (c.SplitPoint < 0 || c.SplitPoint > c.MachineCount) {
		return ErrInvalidSplitPoint
	}
	if c.UnequalRates {
		if err := ValidateRates(c.Rates, c.MachineCount); err != nil {
			return err
		}
	}
	return nil
}

// Compute validates cfg and returns the valve report.
// No partial report is ever returned alongside an error.
func Compute(cfg Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := ClampDecimals(cfg.Decimals)
	rep := &Report{
		MachineCount: cfg.MachineCount,
		Decimals:     d,
		Asymmetric:   cfg.Asymmetric,
		UnequalRates: cfg.UnequalRates,
	}
	if cfg.UnequalRates {
		rep.Rates = append([]float64(nil), cfg.Rates...)
	}

	if !cfg.Asymmetric {
		pipeline, err := linear(cfg.MachineCount, rep.Rates, d)
		if err != nil {
			return nil, err
		}
		rep.Pipeline = pipeline
		rep.appendValves(SegmentPipeline, pipeline)
		rep.JunctionHint = hasJunctionValue(rep.Valves)
		return rep, nil
	}

	l := cfg.SplitPoint
	rep.SplitPoint = &l

	var split float64
	var leftRates, rightRates []float64
	if cfg.UnequalRates {
		split = SplitPercentRates(rep.Rates, l)
		leftRates, rightRates = rep.Rates[:l], rep.Rates[l:]
	} else {
		split = SplitPercent(cfg.MachineCount, l)
	}
	split = Round(split, d)
	rep.SplitPercent = &split

	left, err := linear(l, leftRates, d)
	if err != nil {
		return nil, fmt.Errorf("left pipeline: %w", err)
	}
	right, err := linear(cfg.MachineCount-l, rightRates, d)
	if err != nil {
		return nil, fmt.Errorf("right pipeline: %w", err)
	}
	rep.Left, rep.Right = left, right

	rep.appendValves(SegmentSplit, []float64{split})
	rep.appendValves(SegmentLeft, left)
	rep.appendValves(SegmentRight, right)
	rep.JunctionHint = hasJunctionValue(rep.Valves)
	return rep, nil
}

// linear solves one pipeline segment of m machines. rates is nil in
// equal-rate mode.
func linear(m int, rates []float64, d int) ([]float64, error) {
	if rates == nil {
		return LinearEqual(m, d), nil
	}
	return LinearUnequal(rates, d)
}

func (r *Report) appendValves(seg Segment, values []float64) {
	for _, v := range values {
		idx := len(r.Valves) + 1
		r.Valves = append(r.Valves, Valve{
			Label:   fmt.Sprintf("C%d", idx),
			Index:   idx,
			Segment: seg,
			Percent: v,
		})
	}
}

// Segment returns the valves belonging to seg, in order.
func (r *Report) Segment(seg Segment) []Valve {
	var out []Valve
	for _, v := range r.Valves {
		if v.Segment == seg {
			out = append(out, v)
		}
	}
	return out
}

func hasJunctionValue(valves []Valve) bool {
	for _, v := range valves {
		if v.Percent == 50 || v.Percent == 100 {
			return true
		}
	}
	return false
}
