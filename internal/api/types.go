package api

import (
	"net/http"

	"github.com/obsidianstack/valvecalc/internal/valve"
)

// ValvesRequest is the body of POST /api/v1/valves. Decimals is optional;
// when omitted the configured default precision is used.
type ValvesRequest struct {
	MachineCount int       `json:"machine_count"`
	Decimals     *int      `json:"decimals,omitempty"`
	Asymmetric   bool      `json:"asymmetric"`
	SplitPoint   int       `json:"split_point"`
	UnequalRates bool      `json:"unequal_rates"`
	Rates        []float64 `json:"rates,omitempty"`
}

// Config converts the request into a calculation config.
func (r ValvesRequest) Config(defaultDecimals int) valve.Config {
	d := defaultDecimals
	if r.Decimals != nil {
		d = *r.Decimals
	}
	return valve.Config{
		MachineCount: r.MachineCount,
		Decimals:     d,
		Asymmetric:   r.Asymmetric,
		SplitPoint:   r.SplitPoint,
		UnequalRates: r.UnequalRates,
		Rates:        r.Rates,
	}
}

// ValvesResponse wraps a valve.Report for render.Render.
type ValvesResponse struct {
	*valve.Report
}

// Render implements render.Renderer.
func (ValvesResponse) Render(http.ResponseWriter, *http.Request) error { return nil }

// BypassRequest is the body of POST /api/v1/bypass.
type BypassRequest struct {
	Bypass   float64 `json:"bypass"`
	Main     float64 `json:"main"`
	Decimals *int    `json:"decimals,omitempty"`
}

// BypassResponse is the single-valve result.
type BypassResponse struct {
	Percent  float64 `json:"percent"`
	Decimals int     `json:"decimals"`
}

// Render implements render.Renderer.
func (BypassResponse) Render(http.ResponseWriter, *http.Request) error { return nil }

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Render implements render.Renderer.
func (HealthResponse) Render(http.ResponseWriter, *http.Request) error { return nil }

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
