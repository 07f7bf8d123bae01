package calc

import (
	"fmt"
	"log/slog"

	"github.com/obsidianstack/valvecalc/internal/config"
	"github.com/obsidianstack/valvecalc/internal/form"
	"github.com/obsidianstack/valvecalc/internal/metrics"
	"github.com/obsidianstack/valvecalc/internal/valve"
)

// ModeBypass labels single-valve calculations in metrics.
const ModeBypass = "bypass"

// Service runs calculations against the current configuration.
type Service struct {
	cfg     *config.Holder
	metrics *metrics.Metrics
}

// New returns a Service reading limits from h. m may be nil.
func New(h *config.Holder, m *metrics.Metrics) *Service {
	return &Service{cfg: h, metrics: m}
}

// Options returns the form parsing options derived from the current config.
func (s *Service) Options() form.Options {
	c := s.cfg.Get().Calculator
	return form.Options{DefaultDecimals: c.DefaultDecimals, MaxMachines: c.MaxMachines}
}

// DefaultDecimals returns the precision used when none is supplied.
func (s *Service) DefaultDecimals() int {
	return s.cfg.Get().Calculator.DefaultDecimals
}

// Compute validates cfg against the machine limit and runs valve.Compute.
func (s *Service) Compute(cfg valve.Config) (*valve.Report, error) {
	rep, err := s.compute(cfg)
	s.observe(cfg.Mode(), err)
	return rep, err
}

func (s *Service) compute(cfg valve.Config) (*valve.Report, error) {
	if max := s.cfg.Get().Calculator.MaxMachines; max > 0 && cfg.MachineCount > max {
		return nil, fmt.Errorf("%w: at most %d machines", valve.ErrInvalidMachineCount, max)
	}
	return valve.Compute(cfg)
}

// ComputeFields parses raw form fields and computes the report.
func (s *Service) ComputeFields(f form.Fields) (*valve.Report, error) {
	cfg, err := form.Parse(f, s.Options())
	if err != nil {
		mode := valve.Config{Asymmetric: f.Asymmetric, UnequalRates: f.UnequalRates}.Mode()
		s.observe(mode, err)
		return nil, err
	}
	return s.Compute(cfg)
}

// Bypass computes a single split-valve percentage.
func (s *Service) Bypass(bypass, main float64, decimals int) (float64, error) {
	pct, err := valve.Bypass(bypass, main, decimals)
	s.observe(ModeBypass, err)
	return pct, err
}

func (s *Service) observe(mode string, err error) {
	if s.metrics != nil {
		s.metrics.ObserveCalculation(mode, err)
	}
	if err != nil {
		slog.Debug("calc: rejected", "mode", mode, "err", err)
	}
}
