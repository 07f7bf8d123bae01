// Package cli implements the valvecalc command line.
//
// Each subcommand keeps its flags in an Options struct with Bind, Complete,
// Validate and Run. compute, bypass, interactive and serve accept --config;
// without it they run on defaults plus VALVECALC_* environment overrides.
package cli
