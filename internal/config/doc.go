// Package config loads the valvecalc configuration from a YAML file and the
// environment.
//
// Config fields:
//   - Calculator.DefaultDecimals: precision used when the decimals field is blank (default 0)
//   - Calculator.MaxMachines: largest machine count adapters accept (default 10000)
//   - Server.HTTPPort: port for the web form, REST API and websocket (default 8080)
//   - Server.GRPCPort: port for the gRPC calculator service, 0 disables it (default 50051)
//   - Server.Auth.Mode: "apikey" or "none"
//   - Server.Auth.KeyEnv: environment variable holding the expected API key
//   - Server.Auth.Header: HTTP header name (default "x-api-key")
//   - Server.CORSOrigins: browser origins allowed to call the API (default none)
//   - Server.LiveInterval: websocket re-send period, 0 disables (default 0)
//   - Logging.Level / Format: slog level and handler (default info / json)
//
// Load(path) applies defaults, then the YAML file (skipped when path is
// empty), then VALVECALC_* environment overrides, then validates.
package config
