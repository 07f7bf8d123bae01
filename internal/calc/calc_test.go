package calc

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obsidianstack/valvecalc/internal/config"
	"github.com/obsidianstack/valvecalc/internal/form"
	"github.com/obsidianstack/valvecalc/internal/metrics"
	"github.com/obsidianstack/valvecalc/internal/valve"
)

func newService(t *testing.T, mutate func(*config.Config)) (*Service, *metrics.Metrics) {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	m := metrics.New()
	return New(config.NewHolder(cfg), m), m
}

func TestCompute(t *testing.T) {
	svc, m := newService(t, nil)

	rep, err := svc.Compute(valve.Config{MachineCount: 4})
	require.NoError(t, err)
	assert.Equal(t, []float64{25, 33, 50, 100}, rep.Pipeline)

	n, err := testutil.GatherAndCount(m.Registry(), metrics.CalculationsName)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCompute_MaxMachines(t *testing.T) {
	svc, _ := newService(t, func(c *config.Config) { c.Calculator.MaxMachines = 3 })

	_, err := svc.Compute(valve.Config{MachineCount: 4})
	require.ErrorIs(t, err, valve.ErrInvalidMachineCount)
	assert.Contains(t, err.Error(), "at most 3 machines")

	_, err = svc.Compute(valve.Config{MachineCount: 3})
	assert.NoError(t, err)
}

func TestComputeFields_DefaultDecimals(t *testing.T) {
	svc, _ := newService(t, func(c *config.Config) { c.Calculator.DefaultDecimals = 2 })

	rep, err := svc.ComputeFields(form.Fields{Machines: "3"})
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Decimals)
	assert.Equal(t, []float64{33.33, 50, 100}, rep.Pipeline)
}

func TestComputeFields_Invalid(t *testing.T) {
	svc, m := newService(t, nil)

	_, err := svc.ComputeFields(form.Fields{Machines: "3", Asymmetric: true, SplitPoint: "7"})
	require.ErrorIs(t, err, valve.ErrInvalidSplitPoint)

	got := testutil.ToFloat64(m.Calculations().WithLabelValues("asymmetric-equal", metrics.ResultInvalidInput))
	assert.Equal(t, 1.0, got)
}

func TestBypass(t *testing.T) {
	svc, _ := newService(t, nil)

	pct, err := svc.Bypass(1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 33.333, pct)

	_, err = svc.Bypass(0, 0, 3)
	assert.ErrorIs(t, err, valve.ErrInvalidBypass)
}
