// Package server assembles the valvecalc HTTP and gRPC surfaces.
//
// Routes on the HTTP port:
//
//	/              calculator form page (web)
//	/api/v1/...    REST API (api), API key and CORS applied
//	/ws/calc       live calculator websocket (ws), API key applied
//	/metrics       Prometheus process metrics
//
// When server.grpc_port is non-zero the gRPC calculator (rpc) listens there.
// Run blocks until its context is cancelled and then shuts both down.
package server
