package http

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"flousi/internal/log"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().NoStore().Data(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).Round(time.Second).String(),
	}).Write(w)
}

// handleReady checks the data source. Messaging is reported but never makes
// the server unready: reads keep working without it.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.ping == nil {
		checks["data_source"] = "not_checked"
	} else if err := s.ping(ctx); err != nil {
		s.logger.WarnContext(ctx, "Readiness check failed", log.FieldError, err)
		checks["data_source"] = "failed"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["data_source"] = "ok"
	}

	switch {
	case s.messaging == nil:
		checks["messaging"] = "not_configured"
	case s.messaging.Healthy():
		checks["messaging"] = "ok"
	default:
		checks["messaging"] = "degraded"
	}

	checks["sessions"] = map[string]any{"entries": s.sessions.Size()}
	checks["rate_limiter"] = map[string]any{"active_clients": s.rateLimiter.ActiveClients()}

	NewJSONResponse().Status(httpStatus).NoStore().Data(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics exposes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	traceMetrics := s.traceMiddleware.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	securityMetrics := s.securityDetector.GetMetrics()
	cacheEntries := 0
	if s.dataCache != nil {
		cacheEntries = s.dataCache.Size()
	}

	metric := func(name, help, kind string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}

	metric("http_requests_total", "Total number of HTTP requests", "counter", traceMetrics.TotalRequests)
	metric("http_server_errors_total", "HTTP responses with a 5xx status", "counter", traceMetrics.ServerErrors)
	metric("http_request_duration_avg_microseconds", "Average request duration", "gauge", traceMetrics.AverageResponseTime)
	metric("analytics_reports_total", "Reports served", "counter", atomic.LoadInt64(&s.appMetrics.reports))
	metric("analytics_fallback_reports_total", "Reports served from fallback data", "counter", atomic.LoadInt64(&s.appMetrics.fallbackReports))
	metric("analytics_sessions_created_total", "Analytics sessions created", "counter", atomic.LoadInt64(&s.appMetrics.sessionsCreated))
	metric("analytics_sessions", "Live analytics sessions", "gauge", s.sessions.Size())
	metric("analytics_cache_entries", "Cached category breakdowns", "gauge", cacheEntries)
	metric("webhook_events_total", "Transaction webhook events accepted", "counter", atomic.LoadInt64(&s.appMetrics.webhookEvents))
	metric("rate_limit_hits_total", "Total rate limit hits", "counter", rateLimitMetrics.TotalHits)
	metric("active_rate_limit_clients", "Currently tracked rate limit clients", "gauge", rateLimitMetrics.ClientCount)
	metric("suspicious_requests_total", "Total suspicious requests detected", "counter", securityMetrics.SuspiciousRequests)
	metric("uptime_seconds", "Application uptime in seconds", "gauge", fmt.Sprintf("%.0f", time.Since(s.appMetrics.uptime).Seconds()))
}
