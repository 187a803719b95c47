package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"

	"flousi/internal/core"
	"flousi/internal/log"
	"flousi/internal/services"
)

const maxWebhookBody = 64 << 10

// webhookRecord holds the columns of a transactions row the service needs.
type webhookRecord struct {
	UserID string `json:"user_id"`
	Kind   string `json:"kind"`
}

// webhookPayload is the body of a Supabase database webhook.
type webhookPayload struct {
	Type      string         `json:"type"`
	Table     string         `json:"table"`
	Schema    string         `json:"schema"`
	Record    *webhookRecord `json:"record"`
	OldRecord *webhookRecord `json:"old_record"`
}

type webhookResponse struct {
	Users       []string `json:"users"`
	Invalidated int      `json:"invalidated"`
	Published   bool     `json:"published"`
}

// webhookChange is one affected user. An empty Kind means both kinds.
type webhookChange struct {
	UserID string
	Kind   core.TransactionKind
}

// changes validates the whole payload and returns one change per affected
// user. An update that moves a row to another user affects both; one that
// changes the kind of a user's row affects both of their kinds.
func (p webhookPayload) changes() ([]webhookChange, error) {
	switch strings.ToUpper(p.Type) {
	case "INSERT", "UPDATE", "DELETE":
	default:
		return nil, errors.New("unsupported event type")
	}
	if p.Table != "" && p.Table != "transactions" {
		return nil, errors.New("unsupported table")
	}

	var out []webhookChange
	index := map[string]int{}
	for _, rec := range []*webhookRecord{p.Record, p.OldRecord} {
		if rec == nil {
			continue
		}
		kind, err := parseWebhookKind(strings.TrimSpace(rec.Kind))
		if err != nil {
			return nil, err
		}
		user := sanitizeInput(rec.UserID)
		if user == "" {
			continue
		}
		if i, ok := index[user]; ok {
			if out[i].Kind != kind {
				out[i].Kind = ""
			}
			continue
		}
		index[user] = len(out)
		out = append(out, webhookChange{UserID: user, Kind: kind})
	}
	if len(out) == 0 {
		return nil, core.ErrEmptyUserID
	}
	return out, nil
}

func parseWebhookKind(s string) (core.TransactionKind, error) {
	if s == "" {
		return "", nil
	}
	return core.ParseKind(s)
}

// handleTransactionsWebhook drops the affected users' cached analytics and
// announces the change. It never writes transactions.
func (s *Server) handleTransactionsWebhook(w http.ResponseWriter, r *http.Request) {
	if s.refresh == nil {
		ErrorResponse(http.StatusServiceUnavailable, "refresh service not configured").Write(w)
		return
	}

	var payload webhookPayload
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err := dec.Decode(&payload); err != nil {
		BadRequestError("invalid JSON payload").Write(w)
		return
	}
	changes, err := payload.changes()
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	resp := webhookResponse{Published: true}
	for _, c := range changes {
		var res services.RefreshResult
		res, err = s.refresh.DataChanged(r.Context(), c.UserID, c.Kind)
		if err != nil {
			UnprocessableEntityError(err.Error()).Write(w)
			return
		}
		resp.Users = append(resp.Users, c.UserID)
		resp.Invalidated += res.Invalidated
		resp.Published = resp.Published && res.Published
	}

	atomic.AddInt64(&s.appMetrics.webhookEvents, 1)
	s.logger.InfoContext(r.Context(), "Transactions webhook processed",
		"event", strings.ToUpper(payload.Type),
		"users", len(resp.Users),
		"invalidated", resp.Invalidated,
		"published", resp.Published,
		log.FieldOperation, log.OpInvalidate)

	NewJSONResponse().Status(http.StatusAccepted).Data(resp).Write(w)
}
