// Package http exposes the ledger as a JSON API.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"daara/internal/cache"
	"daara/internal/log"
	"daara/internal/services"
)

const defaultWriteLimit = 120 // per client per minute

type Server struct {
	http.Server
	ledger  *services.LedgerService
	logger  *log.Logger
	limiter *rateLimiter
	headers HeadersConfig
	now     func() time.Time
}

type Option func(*Server)

// WithWriteLimit caps mutating requests per client per minute.
func WithWriteLimit(perMinute int) Option {
	return func(s *Server) { s.limiter = newRateLimiter(perMinute, time.Minute) }
}

// WithClock replaces time.Now, used for the default dashboard year.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, ledger *services.LedgerService, logger *log.Logger, opts ...Option) *Server {
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		ledger:  ledger,
		logger:  logger.WithComponent(log.ComponentHTTP),
		limiter: newRateLimiter(defaultWriteLimit, time.Minute),
		headers: DefaultHeadersConfig(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.limiter.now = s.now
	s.Handler = s.routes()
	return s
}

// Limiter exposes the rate limiter's stale-client sweep to a janitor.
func (s *Server) Limiter() cache.Cleaner { return s.limiter }

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(log.Middleware(s.logger))
	r.Use(log.RequestIDMiddleware(func(r *http.Request) string {
		return middleware.GetReqID(r.Context())
	}))
	r.Use(accessLog)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders(s.headers))
	r.Use(s.limitWrites)

	r.Get("/healthz", handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/records", s.handleListRecords)
		r.Route("/records/{year}/{month}", func(r chi.Router) {
			r.Get("/", s.handleGetRecord)
			r.Delete("/", s.handleDeleteRecord)
			r.Get("/export.csv", s.handleExportCSV)
			r.Get("/export.xlsx", s.handleExportXLSX)
			r.Put("/funds/{fund}", s.handleSetPriorBalance)
			r.Post("/carry-forward", s.handleCarryForward)
			r.Post("/{list}", s.handleAddEntry)
			r.Patch("/{list}/{id}", s.handleUpdateEntry)
			r.Delete("/{list}/{id}", s.handleRemoveEntry)
		})
		r.Get("/report.xlsx", s.handlePeriodReport)

		r.Get("/balances", s.handleBalances)
		r.Get("/years", s.handleYears)
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/search", s.handleSearch)

		r.Get("/config", s.handleGetConfig)
		r.Put("/config", s.handleUpdateConfig)
		r.Post("/config/members", s.handleAddMember)
		r.Delete("/config/members/{index}", s.handleRemoveMember)

		r.Get("/filters", s.handleGetFilters)
		r.Put("/filters", s.handleSaveFilters)

		r.Get("/backup", s.handleExportBackup)
		r.Put("/backup", s.handleImportBackup)
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
