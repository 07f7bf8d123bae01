package form

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obsidianstack/valvecalc/internal/valve"
)

func TestParse_Linear(t *testing.T) {
	cfg, err := Parse(Fields{Machines: "4", Decimals: "3"}, Options{})
	require.NoError(t, err)

	assert.Equal(t, valve.Config{MachineCount: 4, Decimals: 3}, cfg)
}

func TestParse_AllToggles(t *testing.T) {
	cfg, err := Parse(Fields{
		Machines:     " 4.0 ",
		Decimals:     "2",
		Asymmetric:   true,
		SplitPoint:   "1",
		UnequalRates: true,
		Rates:        "1, 2, 3, 4",
	}, Options{})
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.MachineCount)
	assert.True(t, cfg.Asymmetric)
	assert.Equal(t, 1, cfg.SplitPoint)
	assert.True(t, cfg.UnequalRates)
	assert.Equal(t, []float64{1, 2, 3, 4}, cfg.Rates)
	assert.Equal(t, 2, cfg.Decimals)
}

func TestParse_MachineCount(t *testing.T) {
	for _, in := range []string{"", "0", "-3", "2.5", "abc", "NaN", "Inf", "1e300"} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(Fields{Machines: in}, Options{})
			assert.ErrorIs(t, err, valve.ErrInvalidMachineCount)
		})
	}
}

func TestParse_MaxMachines(t *testing.T) {
	_, err := Parse(Fields{Machines: "11"}, Options{MaxMachines: 10})
	require.ErrorIs(t, err, valve.ErrInvalidMachineCount)
	assert.Contains(t, err.Error(), "at most 10 machines")

	_, err = Parse(Fields{Machines: "10"}, Options{MaxMachines: 10})
	assert.NoError(t, err)
}

func TestParse_SplitPoint(t *testing.T) {
	for _, in := range []string{"", "-1", "6", "1.5", "x"} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(Fields{Machines: "5", Asymmetric: true, SplitPoint: in}, Options{})
			assert.ErrorIs(t, err, valve.ErrInvalidSplitPoint)
		})
	}

	for _, in := range []string{"0", "5"} {
		cfg, err := Parse(Fields{Machines: "5", Asymmetric: true, SplitPoint: in}, Options{})
		require.NoError(t, err, in)
		assert.True(t, cfg.Asymmetric)
	}
}

func TestParse_SplitIgnoredWhenUnticked(t *testing.T) {
	cfg, err := Parse(Fields{Machines: "5", SplitPoint: "garbage", Rates: "garbage"}, Options{})
	require.NoError(t, err)
	assert.False(t, cfg.Asymmetric)
	assert.False(t, cfg.UnequalRates)
	assert.Nil(t, cfg.Rates)
}

func TestParse_Rates(t *testing.T) {
	tests := []struct {
		name    string
		rates   string
		wantMsg string
	}{
		{"count", "1,2", "expected 3 rates, got 2"},
		{"sign", "1,-2,3", "rate #2"},
		{"sum", "0,0,0", "sum to more than 0"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(Fields{Machines: "3", UnequalRates: true, Rates: tc.rates}, Options{})
			require.ErrorIs(t, err, valve.ErrInvalidRateList)
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

func TestParse_ValidationOrder(t *testing.T) {
	// Bad machine count wins over a bad split and bad rates.
	_, err := Parse(Fields{Machines: "0", Asymmetric: true, SplitPoint: "-1", UnequalRates: true}, Options{})
	assert.ErrorIs(t, err, valve.ErrInvalidMachineCount)

	// Bad split wins over bad rates.
	_, err = Parse(Fields{Machines: "3", Asymmetric: true, SplitPoint: "9", UnequalRates: true}, Options{})
	assert.ErrorIs(t, err, valve.ErrInvalidSplitPoint)
}

func TestParseDecimals(t *testing.T) {
	tests := []struct {
		in   string
		def  int
		want int
	}{
		{"", 0, 0},
		{"", 3, 3},
		{"  ", 12, 9},
		{"5", 0, 5},
		{"4.7", 0, 4},
		{"-2", 3, 0},
		{"42", 0, 9},
		{"abc", 3, 0},
		{"NaN", 3, 0},
		{"1e308", 0, 9},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ParseDecimals(tc.in, tc.def), "ParseDecimals(%q, %d)", tc.in, tc.def)
	}
}

func TestFromValues(t *testing.T) {
	v := url.Values{}
	v.Set(FieldMachines, "5")
	v.Set(FieldDecimals, "1")
	v.Set(FieldAsymmetric, "on")
	v.Set(FieldSplit, "2")
	v.Set(FieldUnequal, "false")
	v.Set(FieldRates, "1,2,3,4,5")

	f := FromValues(v)
	assert.Equal(t, Fields{
		Machines:     "5",
		Decimals:     "1",
		Asymmetric:   true,
		SplitPoint:   "2",
		UnequalRates: false,
		Rates:        "1,2,3,4,5",
	}, f)
}

func TestFromValues_BareCheckbox(t *testing.T) {
	v, err := url.ParseQuery("machines=3&unequal&rates=1,1,2")
	require.NoError(t, err)

	cfg, err := Parse(FromValues(v), Options{})
	require.NoError(t, err)
	assert.True(t, cfg.UnequalRates)
	assert.Equal(t, []float64{1, 1, 2}, cfg.Rates)
}
