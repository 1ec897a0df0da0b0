// Package http serves transactions as JSON over a chi router.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	applog "tally/internal/log"
	"tally/internal/middleware/cors"
	"tally/internal/middleware/ratelimit"
	"tally/internal/middleware/recovery"
	"tally/internal/middleware/security"
	"tally/internal/middleware/trace"
	"tally/internal/source"
)

// Options wires the server to its sources.
type Options struct {
	// Transactions backs /api/transactions (the configured DATA_BACKEND).
	Transactions source.TransactionLister
	// Demo backs /api/demoTransactions regardless of DATA_BACKEND.
	Demo source.TransactionLister
	// Ready is pinged by /readyz; nil means always ready.
	Ready source.Pinger

	Logger             *applog.Logger
	CORSAllowedOrigins []string
	// RateLimitPerMinute caps /api requests per client IP; 0 disables it.
	RateLimitPerMinute int
}

type Server struct {
	http.Server
	tracer       *trace.Middleware
	limiter      *ratelimit.Limiter
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		tracer: trace.NewMiddleware(logger, extractClientIP),
	}

	r := chi.NewRouter()
	r.Use(s.tracer.Middleware)
	r.Use(recovery.Middleware(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusInternalServerError, "Internal server error")
	}))
	r.Use(cors.Middleware(opts.CORSAllowedOrigins))
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", readyHandler(opts.Ready))

	r.Route("/api", func(r chi.Router) {
		if opts.RateLimitPerMinute > 0 {
			s.limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute})
			r.Use(s.limiter.Middleware(extractClientIP, func(w http.ResponseWriter, r *http.Request) {
				WriteError(w, r, http.StatusTooManyRequests, "Rate limit exceeded")
			}))
		}
		if opts.Transactions != nil {
			r.Get("/transactions", listHandler(opts.Transactions, msgTransactionsFailed))
		}
		if opts.Demo != nil {
			r.Get("/demoTransactions", listHandler(opts.Demo, msgDemoTransactionsFailed))
		}
	})

	s.Handler = r
	return s
}

// Metrics returns request counters from the trace middleware.
func (s *Server) Metrics() trace.Metrics {
	return s.tracer.GetMetrics()
}

// Shutdown gracefully shuts down the server and its background goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
