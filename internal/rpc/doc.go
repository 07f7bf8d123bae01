// Package rpc exposes the calculator over gRPC.
//
// The service valvecalc.v1.Calculator has two unary methods, Compute and
// Bypass. Requests and responses are google.protobuf.Struct values carrying
// the same JSON documents the REST API uses (api.ValvesRequest in,
// valve.Report out), so no generated stubs are needed. Validation failures
// map to codes.InvalidArgument.
//
// NewServer wires the service, the standard grpc.health.v1 health service
// and the API key interceptor. Client is the matching caller used by
// `valvecalc compute --remote`.
package rpc
