package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func serve(t *testing.T, h http.Handler, target string, headers map[string]string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr.Code
}

func TestMiddleware(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		key     string
		target  string
		headers map[string]string
		want    int
	}{
		{"mode none", "none", "secret", "/api/v1/health", nil, http.StatusOK},
		{"empty key", "apikey", "", "/api/v1/health", nil, http.StatusUnauthorized},
		{"empty key with header", "apikey", "", "/api/v1/health", map[string]string{"x-api-key": "anything"}, http.StatusUnauthorized},
		{"correct header", "apikey", "secret", "/api/v1/health", map[string]string{"x-api-key": "secret"}, http.StatusOK},
		{"query fallback", "apikey", "secret", "/ws/calc?api_key=secret", nil, http.StatusOK},
		{"wrong header", "apikey", "secret", "/api/v1/health", map[string]string{"x-api-key": "nope"}, http.StatusUnauthorized},
		{"missing", "apikey", "secret", "/api/v1/health", nil, http.StatusUnauthorized},
		{"wrong query", "apikey", "secret", "/ws/calc?api_key=x", nil, http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := Middleware(tc.mode, "x-api-key", tc.key)(okHandler)
			if got := serve(t, h, tc.target, tc.headers); got != tc.want {
				t.Errorf("status: got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestMiddleware_CustomHeader(t *testing.T) {
	h := Middleware("apikey", "X-Valve-Token", "tok")(okHandler)
	if got := serve(t, h, "/api/v1/valves", map[string]string{"X-Valve-Token": "tok"}); got != http.StatusOK {
		t.Errorf("status: got %d, want 200", got)
	}
}

// passHandler is a grpc.UnaryHandler that returns ("ok", nil).
func passHandler(ctx context.Context, req interface{}) (interface{}, error) {
	return "ok", nil
}

func TestAPIKeyInterceptor(t *testing.T) {
	tests := []struct {
		name     string
		mode     string
		key      string
		md       metadata.MD
		wantCode codes.Code
	}{
		{"mode none", "none", "secret", nil, codes.OK},
		{"empty key", "apikey", "", nil, codes.Unauthenticated},
		{"empty key with metadata", "apikey", "", metadata.Pairs("x-api-key", "anything"), codes.Unauthenticated},
		{"correct", "apikey", "secret", metadata.Pairs("x-api-key", "secret"), codes.OK},
		{"wrong", "apikey", "secret", metadata.Pairs("x-api-key", "wrong"), codes.Unauthenticated},
		{"missing header", "apikey", "secret", metadata.MD{}, codes.Unauthenticated},
		{"no metadata", "apikey", "secret", nil, codes.Unauthenticated},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			if tc.md != nil {
				ctx = metadata.NewIncomingContext(ctx, tc.md)
			}
			i := APIKeyInterceptor(tc.mode, "X-Api-Key", tc.key)
			res, err := i(ctx, nil, &grpc.UnaryServerInfo{}, passHandler)
			if code := status.Code(err); code != tc.wantCode {
				t.Fatalf("code: got %v, want %v", code, tc.wantCode)
			}
			if tc.wantCode == codes.OK && res != "ok" {
				t.Errorf("result: got %v, want ok", res)
			}
		})
	}
}
