package http

import (
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"

	"flousi/internal/analytics"
	"flousi/internal/core"
	"flousi/internal/log"
)

// lookupSession resolves the {id} path value. Sessions hold one analytics
// Screen per client so the selection and the mode survive between requests.
// They expire after the session TTL of inactivity; the least recently used
// ones are evicted first.
func (s *Server) lookupSession(w http.ResponseWriter, r *http.Request) (string, *analytics.Screen, bool) {
	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		NotFoundError("session not found").Write(w)
		return "", nil, false
	}
	screen, ok := s.sessions.Get(id)
	if !ok {
		log.FromContext(r.Context()).DebugContext(r.Context(), "Unknown or expired session",
			log.FieldSessionID, id, log.FieldErrorType, log.ErrorTypeNotFound)
		NotFoundError("session not found").Write(w)
		return "", nil, false
	}
	// Touch to extend the TTL.
	s.sessions.Set(id, screen)
	return id, screen, true
}

func (s *Server) writeSession(w http.ResponseWriter, r *http.Request, status int, id string, rep analytics.Report) {
	NewJSONResponse().Status(status).NoStore().Data(sessionResponse{
		SessionID: id,
		Report:    s.present(rep, ParsePreferences(r, s.defaultLocale)),
	}).Write(w)
}

// handleCreateSession starts a screen for the query and performs its first load.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	q, err := ParseQuery(r.URL.Query(), s.defaultUser)
	if err != nil {
		s.writeError(w, r, log.OpFetch, err)
		return
	}
	screen := analytics.NewScreen(s.analytics, q)
	rep, err := screen.Load(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpFetch, err)
		return
	}

	id := uuid.NewString()
	s.sessions.Set(id, screen)
	atomic.AddInt64(&s.appMetrics.sessionsCreated, 1)
	log.FromContext(r.Context()).DebugContext(r.Context(), "Analytics session created",
		log.FieldSessionID, id,
		log.FieldUserID, q.UserID)

	w.Header().Set("Location", "/api/sessions/"+id)
	s.writeSession(w, r, http.StatusCreated, id, rep)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, screen, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	s.writeSession(w, r, http.StatusOK, id, screen.View())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, _, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	s.sessions.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}

// handleSessionTap selects a category. A missing index is rejected; an index
// past the end selects the last category.
func (s *Server) handleSessionTap(w http.ResponseWriter, r *http.Request) {
	id, screen, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	idx, err := ParseIndex(r.URL.Query(), "index")
	if err != nil || idx == nil {
		BadRequestError("index must be a non-negative integer").Write(w)
		return
	}
	s.writeSession(w, r, http.StatusOK, id, screen.Tap(*idx))
}

// handleSessionMode switches to the given mode, or toggles when none is given.
func (s *Server) handleSessionMode(w http.ResponseWriter, r *http.Request) {
	id, screen, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	var (
		rep analytics.Report
		err error
	)
	if mode := strings.TrimSpace(r.URL.Query().Get("mode")); mode == "" {
		rep, err = screen.ToggleMode(r.Context())
	} else {
		kind, perr := core.ParseKind(mode)
		if perr != nil {
			s.writeError(w, r, log.OpFetch, perr)
			return
		}
		rep, err = screen.SetMode(r.Context(), kind)
	}
	if err != nil {
		s.writeError(w, r, log.OpFetch, err)
		return
	}
	s.writeSession(w, r, http.StatusOK, id, rep)
}

func (s *Server) handleSessionPeriod(w http.ResponseWriter, r *http.Request) {
	id, screen, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	raw := strings.TrimSpace(r.URL.Query().Get("period"))
	if raw == "" {
		BadRequestError("period is required").Write(w)
		return
	}
	period, err := core.ParsePeriod(raw)
	if err != nil {
		s.writeError(w, r, log.OpFetch, err)
		return
	}
	rep, err := screen.SetPeriod(r.Context(), period)
	if err != nil {
		s.writeError(w, r, log.OpFetch, err)
		return
	}
	s.writeSession(w, r, http.StatusOK, id, rep)
}
