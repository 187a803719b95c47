package http

import (
	"bytes"
	"net/http"
	"sync/atomic"

	"flousi/internal/analytics"
	"flousi/internal/core"
	"flousi/internal/i18n"
	"flousi/internal/log"
)

// reportResponse is a report with its amounts formatted for the caller's locale.
type reportResponse struct {
	analytics.Report
	Locale         i18n.Locale `json:"locale"`
	FormattedTotal string      `json:"formatted_total"`
}

type sessionResponse struct {
	SessionID string         `json:"session_id"`
	Report    reportResponse `json:"report"`
}

func (s *Server) present(r analytics.Report, prefs i18n.Preferences) reportResponse {
	atomic.AddInt64(&s.appMetrics.reports, 1)
	if r.FromFallback {
		atomic.AddInt64(&s.appMetrics.fallbackReports, 1)
	}
	r.FormatAmounts(prefs.FormatAmount)
	return reportResponse{Report: r, Locale: prefs.Locale, FormattedTotal: prefs.FormatAmount(r.Total)}
}

// report parses the stateless query parameters and builds the report.
func (s *Server) report(r *http.Request) (analytics.Report, error) {
	values := r.URL.Query()
	q, err := ParseQuery(values, s.defaultUser)
	if err != nil {
		return analytics.Report{}, err
	}
	selected, err := ParseIndex(values, "selected")
	if err != nil {
		return analytics.Report{}, err
	}
	return s.analytics.Report(r.Context(), q, selected)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusForError(err)
	switch {
	case status == statusClientClosedRequest:
		// Nobody is left to read the response.
		log.FromContext(r.Context()).DebugContext(r.Context(), "Client went away", log.FieldOperation, op, log.FieldPath, r.URL.Path)
		w.WriteHeader(status)
		return
	case status >= http.StatusInternalServerError:
		fields := log.NewFields().
			WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "", "").
			WithErrorType(errorTypeFor(err))
		log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(), "Analytics request failed", err, log.ComponentHTTP, op, fields)
	}
	ErrorResponse(status, messageForError(err)).NoStore().Write(w)
}

// handleIndex renders the server-side analytics screen.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	prefs := ParsePreferences(r, s.defaultLocale)
	rep, err := s.report(r)
	if err != nil {
		status := statusForError(err)
		if status == statusClientClosedRequest {
			w.WriteHeader(status)
			return
		}
		if status >= http.StatusInternalServerError {
			s.logger.ErrorContext(r.Context(), "Analytics page failed", log.FieldError, err, log.FieldErrorType, errorTypeFor(err))
		}
		http.Error(w, messageForError(err), status)
		return
	}
	atomic.AddInt64(&s.appMetrics.reports, 1)

	var buf bytes.Buffer
	if err := s.renderer.Page(&buf, rep, s.analytics.Layout(), prefs); err != nil {
		s.logger.ErrorContext(r.Context(), "Analytics page template failed", log.FieldError, err, log.FieldErrorType, log.ErrorTypeInternal, log.FieldOperation, log.OpRender)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Language", string(prefs.Locale))
	_, _ = buf.WriteTo(w)
}

// handleAnalytics returns the report for a query without keeping state.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	rep, err := s.report(r)
	if err != nil {
		s.writeError(w, r, log.OpFetch, err)
		return
	}
	NewJSONResponse().NoStore().Data(s.present(rep, ParsePreferences(r, s.defaultLocale))).Write(w)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	q, err := ParseQuery(r.URL.Query(), s.defaultUser)
	if err != nil {
		s.writeError(w, r, log.OpFetch, err)
		return
	}
	sum, err := s.analytics.Summary(r.Context(), q.UserID, q.Period)
	if err != nil {
		s.writeError(w, r, log.OpFetch, err)
		return
	}
	prefs := ParsePreferences(r, s.defaultLocale)
	NewJSONResponse().NoStore().Data(struct {
		core.Summary
		Formatted map[string]string `json:"formatted"`
	}{
		Summary: sum,
		Formatted: map[string]string{
			"income":   prefs.FormatAmount(sum.Income),
			"expenses": prefs.FormatAmount(sum.Expenses),
			"net":      prefs.FormatAmount(sum.Net),
		},
	}).Write(w)
}

// handleDonutSVG draws the chart for a query as an SVG document.
func (s *Server) handleDonutSVG(w http.ResponseWriter, r *http.Request) {
	rep, err := s.report(r)
	if err != nil {
		s.writeError(w, r, log.OpRender, err)
		return
	}
	atomic.AddInt64(&s.appMetrics.reports, 1)

	var buf bytes.Buffer
	if err := s.renderer.DonutSVG(&buf, rep, s.analytics.Layout(), ParsePreferences(r, s.defaultLocale)); err != nil {
		s.logger.ErrorContext(r.Context(), "Donut template failed", log.FieldError, err, log.FieldErrorType, log.ErrorTypeInternal, log.FieldOperation, log.OpRender)
		InternalServerError("failed to render chart").Write(w)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}
