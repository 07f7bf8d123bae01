package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"google.golang.org/grpc"

	"github.com/obsidianstack/valvecalc/internal/api"
	"github.com/obsidianstack/valvecalc/internal/auth"
	"github.com/obsidianstack/valvecalc/internal/calc"
	"github.com/obsidianstack/valvecalc/internal/config"
	"github.com/obsidianstack/valvecalc/internal/metrics"
	"github.com/obsidianstack/valvecalc/internal/rpc"
	"github.com/obsidianstack/valvecalc/internal/web"
	"github.com/obsidianstack/valvecalc/internal/ws"
)

const gracefulShutdownTimeout = 5 * time.Second

// Server owns the listeners for one valvecalc process.
type Server struct {
	cfg     *config.Holder
	svc     *calc.Service
	metrics *metrics.Metrics
	hub     *ws.Hub
	router  http.Handler
	grpc    *grpc.Server
}

// New builds the handlers from the config held in h. Auth, CORS and the
// live interval are read once; calculator limits follow config reloads.
func New(h *config.Holder, version string) (*Server, error) {
	cfg := h.Get()
	if a := cfg.Server.Auth; a.Enabled() && a.Key() == "" {
		slog.Warn("server: auth.mode is apikey but the key variable is empty, rejecting all API calls",
			"key_env", a.KeyEnv)
	}
	m := metrics.New()
	svc := calc.New(h, m)

	page, err := web.New(svc)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:     h,
		svc:     svc,
		metrics: m,
		hub:     ws.New(svc, cfg.Server.LiveInterval),
	}
	s.router = s.routes(page, version, cfg.Server)
	if cfg.Server.GRPCPort != 0 {
		s.grpc = rpc.NewServer(svc, cfg.Server.Auth)
	}
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes(page *web.Handler, version string, sc config.ServerConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(
		chiMiddleware.RequestID,
		chiMiddleware.RealIP,
		requestLogger,
		chiMiddleware.Recoverer,
		s.metrics.Middleware,
	)

	r.Handle("/metrics", s.metrics.Handler())
	r.Handle("/", page)

	r.Group(func(r chi.Router) {
		if len(sc.CORSOrigins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: sc.CORSOrigins,
				AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
				AllowedHeaders: []string{"Content-Type", sc.Auth.EffectiveHeader()},
				MaxAge:         300,
			}))
		}
		r.Use(auth.Middleware(sc.Auth.Mode, sc.Auth.EffectiveHeader(), sc.Auth.Key()))

		api.NewHandler(s.svc, version).Register(r)
		r.Handle("/ws/calc", s.hub)
	})

	return r
}

// Run serves HTTP (and gRPC when enabled) until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	sc := s.cfg.Get().Server

	httpLis, err := net.Listen("tcp", fmt.Sprintf(":%d", sc.HTTPPort))
	if err != nil {
		return fmt.Errorf("server: listen on http port %d: %w", sc.HTTPPort, err)
	}
	var grpcLis net.Listener
	if s.grpc != nil {
		grpcLis, err = net.Listen("tcp", fmt.Sprintf(":%d", sc.GRPCPort))
		if err != nil {
			httpLis.Close()
			return fmt.Errorf("server: listen on grpc port %d: %w", sc.GRPCPort, err)
		}
	}
	return s.Serve(ctx, httpLis, grpcLis)
}

// Serve runs on the given listeners. grpcLis may be nil.
func (s *Server) Serve(ctx context.Context, httpLis, grpcLis net.Listener) error {
	go s.hub.Run(ctx)

	errCh := make(chan error, 2)

	if grpcLis != nil && s.grpc != nil {
		go func() {
			slog.Info("gRPC calculator listening", "addr", grpcLis.Addr().String())
			if err := s.grpc.Serve(grpcLis); err != nil {
				errCh <- fmt.Errorf("server: grpc: %w", err)
			}
		}()
	}

	httpSrv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("HTTP server listening", "addr", httpLis.Addr().String())
		if err := httpSrv.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server: http: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	slog.Info("valvecalc server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	if s.grpc != nil {
		s.grpc.GracefulStop()
	}
	httpSrv.SetKeepAlivesEnabled(false)
	if err := httpSrv.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("server: http shutdown: %w", err)
	}
	return runErr
}

// requestLogger logs one line per request at debug level, and at warn or
// error for 4xx and 5xx responses.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		attrs := []any{
			"request_id", chiMiddleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"latency", time.Since(start),
			"response_bytes", ww.BytesWritten(),
		}
		switch {
		case ww.Status() >= 500:
			slog.Error("http: request completed", attrs...)
		case ww.Status() >= 400:
			slog.Warn("http: request completed", attrs...)
		default:
			slog.Debug("http: request completed", attrs...)
		}
	})
}
