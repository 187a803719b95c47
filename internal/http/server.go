package http

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"flousi/internal/analytics"
	"flousi/internal/backend"
	"flousi/internal/cache"
	"flousi/internal/i18n"
	"flousi/internal/log"
	"flousi/internal/middleware/ratelimit"
	"flousi/internal/middleware/security"
	"flousi/internal/middleware/trace"
	"flousi/internal/render"
	"flousi/internal/services"
	appweb "flousi/web"
)

const (
	defaultMaxSessions = 500
	defaultSessionTTL  = 30 * time.Minute
	readyTimeout       = 5 * time.Second
)

// HealthChecker is implemented by the messaging client.
type HealthChecker interface {
	Healthy() bool
}

// Sizer reports the number of entries in a cache.
type Sizer interface {
	Size() int
}

// Dependencies are the collaborators the server routes to. Analytics and
// Renderer are required; the rest may be left nil.
type Dependencies struct {
	Analytics *analytics.Service
	Renderer  *render.Renderer
	Refresh   *services.RefreshService
	Ping      backend.PingFunc
	Messaging HealthChecker
	// AnalyticsCache is only read for metrics and cleanup.
	AnalyticsCache Sizer
	Logger         *log.Logger

	DefaultLocale      i18n.Locale
	DefaultUser        string
	RateLimitPerMinute int
	MaxSessions        int
	SessionTTL         time.Duration
}

// Server wraps http.Server with the analytics routes.
type Server struct {
	http.Server

	analytics *analytics.Service
	renderer  *render.Renderer
	refresh   *services.RefreshService
	ping      backend.PingFunc
	messaging HealthChecker
	dataCache Sizer

	defaultLocale i18n.Locale
	defaultUser   string

	sessions *cache.LRUCache[*analytics.Screen]
	caches   *cache.Manager

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	logger     *log.Logger
	appMetrics *appMetrics
}

type appMetrics struct {
	uptime          time.Time
	reports         int64
	fallbackReports int64
	sessionsCreated int64
	webhookEvents   int64
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Dependencies) (*Server, error) {
	if deps.Analytics == nil {
		return nil, errors.New("analytics service is required")
	}
	if deps.Renderer == nil {
		return nil, errors.New("renderer is required")
	}
	if deps.Logger == nil {
		deps.Logger = log.Discard()
	}
	if deps.DefaultLocale == "" {
		deps.DefaultLocale = i18n.French
	}
	if deps.MaxSessions <= 0 {
		deps.MaxSessions = defaultMaxSessions
	}
	if deps.SessionTTL <= 0 {
		deps.SessionTTL = defaultSessionTTL
	}

	logger := deps.Logger.WithComponent(log.ComponentHTTP)
	s := &Server{
		analytics:     deps.Analytics,
		renderer:      deps.Renderer,
		refresh:       deps.Refresh,
		ping:          deps.Ping,
		messaging:     deps.Messaging,
		dataCache:     deps.AnalyticsCache,
		defaultLocale: deps.DefaultLocale,
		defaultUser:   deps.DefaultUser,
		sessions:      cache.NewLRUCache[*analytics.Screen](deps.MaxSessions, deps.SessionTTL),
		caches:        cache.NewManager(deps.Logger),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: deps.RateLimitPerMinute,
			Logger:            deps.Logger,
		}),
		securityDetector: security.NewDetector(deps.Logger),
		logger:           logger,
		appMetrics:       &appMetrics{uptime: time.Now()},
	}
	s.traceMiddleware = trace.NewMiddleware(deps.Logger, s.securityDetector.ExtractClientIP)

	s.caches.Register(s.sessions)
	if c, ok := deps.AnalyticsCache.(cache.Cleaner); ok {
		s.caches.Register(c)
	}
	s.caches.StartCleanup(time.Minute)

	mux := http.NewServeMux()
	if err := s.routes(mux); err != nil {
		s.caches.Stop()
		s.rateLimiter.Stop()
		return nil, err
	}

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	var handler http.Handler = mux
	handler = headers.Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)
	handler = s.securityDetector.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(mux *http.ServeMux) error {
	sub, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return err
	}
	static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
	mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.Handle("GET /api/analytics", s.limited(s.handleAnalytics))
	mux.Handle("GET /api/analytics/summary", s.limited(s.handleSummary))
	mux.Handle("GET /api/analytics/donut.svg", s.limited(s.handleDonutSVG))

	sessions := log.ComponentMiddleware(log.ComponentSession)
	mux.Handle("POST /api/sessions", sessions(s.limited(s.handleCreateSession)))
	mux.Handle("GET /api/sessions/{id}", sessions(s.limited(s.handleGetSession)))
	mux.Handle("DELETE /api/sessions/{id}", sessions(s.limited(s.handleDeleteSession)))
	mux.Handle("POST /api/sessions/{id}/tap", sessions(s.limited(s.handleSessionTap)))
	mux.Handle("POST /api/sessions/{id}/mode", sessions(s.limited(s.handleSessionMode)))
	mux.Handle("POST /api/sessions/{id}/period", sessions(s.limited(s.handleSessionPeriod)))

	mux.Handle("POST /api/webhooks/transactions", s.limited(s.handleTransactionsWebhook))
	return nil
}

// limited applies the per-client rate limit to API routes.
func (s *Server) limited(h http.HandlerFunc) http.Handler {
	onLimit := func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, please try again later").Write(w)
	}
	return s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, onLimit)(h)
}

// Shutdown stops background cleanup and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server", log.FieldOperation, log.OpShutdown)
	s.rateLimiter.Stop()
	s.caches.Stop()
	return s.Server.Shutdown(ctx)
}
