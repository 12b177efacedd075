// Package http serves the dashboard page and the JSON endpoints it polls.
package http

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"previaje/internal/core"
	plog "previaje/internal/log"
	"previaje/internal/metrics"
	"previaje/internal/middleware/ratelimit"
	"previaje/internal/middleware/security"
	"previaje/internal/middleware/trace"
	"previaje/internal/view"
	appweb "previaje/web"
)

// Dataset is what the server reads from the loaded tables.
type Dataset interface {
	view.Data
	Beneficiaries() []core.Beneficiary
	WriteGeometry(w io.Writer) (int, error)
	GeometrySize() int
}

// Options configures a Server.
type Options struct {
	Addr string

	// RateLimitPerMinute bounds /api requests per client; zero disables it.
	RateLimitPerMinute int

	Logger  *plog.Logger
	Metrics *metrics.Metrics
}

type Server struct {
	http.Server
	templates   *template.Template
	data        Dataset
	controller  *view.Controller
	table       []tableRow
	logger      *plog.Logger
	metrics     *metrics.Metrics
	rateLimiter *ratelimit.Limiter

	started      time.Time
	ready        atomic.Bool
	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(d Dataset, opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = plog.Default(plog.ComponentHTTP)
	}
	logger = logger.WithComponent(plog.ComponentHTTP)

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}

	s := &Server{
		templates:  t,
		data:       d,
		controller: view.NewController(d, logger, opts.Metrics),
		table:      beneficiaryTable(d.Beneficiaries()),
		logger:     logger,
		metrics:    opts.Metrics,
		started:    time.Now(),
	}
	if opts.RateLimitPerMinute > 0 {
		s.rateLimiter = ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
			OnReject:          s.onRateLimited,
		})
	}

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.routes(static),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.ready.Store(true)
	return s, nil
}

func (s *Server) routes(static fs.FS) http.Handler {
	r := chi.NewRouter()
	r.Use(trace.NewMiddleware(s.logger, security.ClientIP, s.metrics).Middleware)
	r.Use(chimw.Recoverer)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		if s.rateLimiter != nil {
			r.Use(s.rateLimiter.Middleware(security.ClientIP, s.writeRateLimited))
		}
		r.Get("/figures", s.handleFigures)
		r.Get("/geometry", s.handleGeometry)
		r.Get("/slider", s.handleSlider)
	})

	r.With(security.StaticAssetMiddleware(3600)).
		Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	return r
}

func (s *Server) onRateLimited(clientIP string) {
	s.metrics.IncrementRateLimited()
	s.logger.Warn("Rate limit exceeded", plog.FieldClientIP, clientIP)
}

func (s *Server) writeRateLimited(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
}

// Shutdown marks the server not ready and drains connections. Safe to call
// more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.ready.Store(false)
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
