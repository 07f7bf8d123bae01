// Package calc is the entry point every adapter (CLI, web form, REST API,
// websocket, gRPC) uses to run the valve calculator. It applies the
// configured limits and default precision, records the outcome in metrics
// and logs failures.
package calc
