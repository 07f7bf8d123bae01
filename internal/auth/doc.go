// Package auth guards the valvecalc server surfaces with a shared API key.
//
// Middleware(mode, header, key) wraps HTTP handlers. The key is read from the
// named header, or from the api_key query parameter so browser websocket
// clients (which cannot set headers) can connect. Failures return 401 with a
// JSON error body.
//
// APIKeyInterceptor(mode, header, key) is the gRPC equivalent and returns
// codes.Unauthenticated.
//
// When mode != "apikey" or key == "", both pass every request through.
package auth
