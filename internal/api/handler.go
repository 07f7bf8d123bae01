package api

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/obsidianstack/valvecalc/internal/calc"
	"github.com/obsidianstack/valvecalc/internal/form"
	"github.com/obsidianstack/valvecalc/internal/report"
	"github.com/obsidianstack/valvecalc/internal/valve"
)

// promContentType is the Prometheus text exposition content type.
const promContentType = "text/plain; version=0.0.4; charset=utf-8"

// Handler serves /api/v1/*.
type Handler struct {
	svc     *calc.Service
	version string
}

// NewHandler creates a Handler. Use Register to attach it to a router.
func NewHandler(svc *calc.Service, version string) *Handler {
	return &Handler{svc: svc, version: version}
}

// New returns a standalone router serving only the API routes.
func New(svc *calc.Service, version string) http.Handler {
	r := chi.NewRouter()
	NewHandler(svc, version).Register(r)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonErr(w, r, http.StatusNotFound, "not found", "")
	})
	return r
}

// Register mounts the /api/v1 routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			jsonErr(w, r, http.StatusMethodNotAllowed, "method not allowed", "")
		})
		r.Get("/health", h.health)
		r.Post("/valves", h.postValves)
		r.Get("/valves", h.getValves)
		r.Get("/valves/metrics", h.valvesMetrics)
		r.Post("/bypass", h.bypass)
	})
}

// --- route handlers ---------------------------------------------------------

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	_ = render.Render(w, r, HealthResponse{Status: "ok", Version: h.version})
}

// postValves handles POST /api/v1/valves with a JSON config body.
func (h *Handler) postValves(w http.ResponseWriter, r *http.Request) {
	var req ValvesRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		jsonErr(w, r, http.StatusBadRequest, "invalid request body: "+err.Error(), "bad_request")
		return
	}

	rep, err := h.svc.Compute(req.Config(h.svc.DefaultDecimals()))
	if err != nil {
		calcErr(w, r, err)
		return
	}
	_ = render.Render(w, r, ValvesResponse{rep})
}

// getValves handles GET /api/v1/valves with form-style query parameters.
func (h *Handler) getValves(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.ComputeFields(queryFields(r.URL.Query()))
	if err != nil {
		calcErr(w, r, err)
		return
	}
	_ = render.Render(w, r, ValvesResponse{rep})
}

// valvesMetrics handles GET /api/v1/valves/metrics.
func (h *Handler) valvesMetrics(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.ComputeFields(queryFields(r.URL.Query()))
	if err != nil {
		calcErr(w, r, err)
		return
	}
	w.Header().Set("Content-Type", promContentType)
	_ = report.WriteProm(w, rep)
}

// bypass handles POST /api/v1/bypass.
func (h *Handler) bypass(w http.ResponseWriter, r *http.Request) {
	var req BypassRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		jsonErr(w, r, http.StatusBadRequest, "invalid request body: "+err.Error(), "bad_request")
		return
	}

	d := h.svc.DefaultDecimals()
	if req.Decimals != nil {
		d = valve.ClampDecimals(*req.Decimals)
	}
	pct, err := h.svc.Bypass(req.Bypass, req.Main, d)
	if err != nil {
		calcErr(w, r, err)
		return
	}
	_ = render.Render(w, r, BypassResponse{Percent: pct, Decimals: d})
}

// --- helpers ----------------------------------------------------------------

// queryFields reads form fields from a query string. Passing split or rates
// implies the matching toggle unless the toggle is given explicitly.
func queryFields(q url.Values) form.Fields {
	f := form.FromValues(q)
	if !q.Has(form.FieldAsymmetric) && q.Has(form.FieldSplit) {
		f.Asymmetric = true
	}
	if !q.Has(form.FieldUnequal) && q.Has(form.FieldRates) {
		f.UnequalRates = true
	}
	return f
}

// ErrorCode returns a stable machine-readable code for a calculation error.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, valve.ErrInvalidMachineCount):
		return "invalid_machine_count"
	case errors.Is(err, valve.ErrInvalidSplitPoint):
		return "invalid_split_point"
	case errors.Is(err, valve.ErrInvalidRateList):
		return "invalid_rate_list"
	case errors.Is(err, valve.ErrZeroSuffixSum):
		return "zero_suffix_sum"
	case errors.Is(err, valve.ErrInvalidBypass):
		return "invalid_bypass"
	default:
		return "internal"
	}
}

func calcErr(w http.ResponseWriter, r *http.Request, err error) {
	code := ErrorCode(err)
	if code == "internal" {
		jsonErr(w, r, http.StatusInternalServerError, "internal error", code)
		return
	}
	jsonErr(w, r, http.StatusUnprocessableEntity, err.Error(), code)
}

func jsonResp(w http.ResponseWriter, r *http.Request, code int, v interface{}) {
	render.Status(r, code)
	render.JSON(w, r, v)
}

func jsonErr(w http.ResponseWriter, r *http.Request, code int, msg, errCode string) {
	jsonResp(w, r, code, ErrorResponse{Error: msg, Code: errCode})
}
