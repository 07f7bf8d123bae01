// Package metrics exposes process metrics for the valvecalc server:
// calculation outcomes per mode and HTTP request counts and latency per route.
package metrics
