// Package api implements the valvecalc REST API.
//
// Endpoints (all JSON unless noted):
//
//	GET  /api/v1/health          liveness and build version
//	POST /api/v1/valves          ValvesRequest body -> valve.Report
//	GET  /api/v1/valves          form-style query (machines, decimals, split, rates) -> valve.Report
//	GET  /api/v1/valves/metrics  same query, Prometheus text exposition
//	POST /api/v1/bypass          BypassRequest body -> BypassResponse
//
// Validation failures return 422 with an ErrorResponse whose code names the
// failed check. Malformed bodies return 400.
package api
