package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tonghaoch/transaction-service-go/internal/api"
	"github.com/tonghaoch/transaction-service-go/internal/config"
	"github.com/tonghaoch/transaction-service-go/internal/handler"
	mw "github.com/tonghaoch/transaction-service-go/internal/middleware"
)

const writeTimeout = 10 * time.Second

// DefaultRateLimitMaxWait leaves a queued request enough of the write
// timeout to be answered.
const DefaultRateLimitMaxWait = writeTimeout - 2*time.Second

// Options configures the HTTP server.
type Options struct {
	Port             int
	RateLimitSeconds int
	RateLimitWait    bool
	// RateLimitMaxWait caps how long a waiting request is queued. Zero, or
	// anything above DefaultRateLimitMaxWait, means DefaultRateLimitMaxWait.
	RateLimitMaxWait time.Duration
}

func (o Options) rateLimitMaxWait() time.Duration {
	if o.RateLimitMaxWait <= 0 || o.RateLimitMaxWait > DefaultRateLimitMaxWait {
		return DefaultRateLimitMaxWait
	}
	return o.RateLimitMaxWait
}

// New creates a new HTTP server with all routes and middleware configured.
func New(opts Options) *http.Server {
	addr := fmt.Sprintf(":%d", opts.Port)
	slog.Info("server starting", "address", addr)

	return &http.Server{
		Addr:         addr,
		Handler:      NewRouter(opts),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  120 * time.Second,
	}
}

// NewRouter builds the chi router serving the service endpoints.
func NewRouter(opts Options) http.Handler {
	cfg := config.Get()
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Api-Key", api.RequestIDHeader},
		ExposedHeaders:   []string{api.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.Recoverer)
	r.Use(mw.Auth)

	limiter := mw.NewRateLimiter(opts.RateLimitSeconds, opts.RateLimitWait, opts.rateLimitMaxWait())

	r.Get("/", handler.Welcome)
	r.Get("/health", handler.Health)
	r.With(limiter.Middleware).Post("/transactions/total", handler.TransactionsTotal)
	r.Get("/api/stats", handler.Stats)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		api.WriteErrorMessage(w, http.StatusNotFound, api.TypeInvalidRequest, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		api.WriteErrorMessage(w, http.StatusMethodNotAllowed, api.TypeInvalidRequest, "Method not allowed")
	})

	return r
}

// requestID tags each request with an ID, echoed in the response header.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := api.RequestID(r)
		w.Header().Set(api.RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(api.WithRequestID(r.Context(), id)))
	})
}

// requestLogger is a simple request logging middleware.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).String(),
			"request_id", api.RequestIDFrom(r.Context()),
		)
	})
}
