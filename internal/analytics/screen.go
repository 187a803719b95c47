package analytics

import (
	"context"
	"errors"
	"sync"

	"flousi/internal/core"
)

// ErrSuperseded is returned by a load whose result arrived after a newer
// load was started. Its data is discarded.
var ErrSuperseded = errors.New("analytics: load superseded by a newer request")

// Screen is the state of one analytics view: the current query, the loaded
// breakdown and the selection. Safe for concurrent use.
type Screen struct {
	mu         sync.Mutex
	service    *Service
	query      core.Query // what cats was loaded for
	pending    core.Query // latest requested query, ahead of query while a load runs
	generation uint64

	cats         []core.CategoryAmount
	selection    Selection
	fromFallback bool
	loaded       bool
}

func NewScreen(service *Service, q core.Query) *Screen {
	if q.Kind == "" {
		q.Kind = core.Expense
	}
	if q.Period == "" {
		q.Period = core.Month
	}
	return &Screen{service: service, query: q, pending: q}
}

// Query returns the query the screen currently shows.
func (s *Screen) Query() core.Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Loaded reports whether at least one load completed.
func (s *Screen) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Load refetches the current query and resets the selection to the largest
// category.
func (s *Screen) Load(ctx context.Context) (Report, error) {
	return s.reload(ctx, nil)
}

// SetMode switches between the expense and income views and reloads.
func (s *Screen) SetMode(ctx context.Context, kind core.TransactionKind) (Report, error) {
	if err := kind.Validate(); err != nil {
		return Report{}, err
	}
	return s.reload(ctx, func(q *core.Query) { q.Kind = kind })
}

// ToggleMode flips the current mode and reloads.
func (s *Screen) ToggleMode(ctx context.Context) (Report, error) {
	return s.reload(ctx, func(q *core.Query) { q.Kind = q.Kind.Toggle() })
}

func (s *Screen) SetPeriod(ctx context.Context, period core.Period) (Report, error) {
	if err := period.Validate(); err != nil {
		return Report{}, err
	}
	return s.reload(ctx, func(q *core.Query) { q.Period = period })
}

// Tap selects the category at index i; out-of-range indexes are clamped.
func (s *Screen) Tap(i int) Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.Tap(i)
	return s.viewLocked()
}

// View returns the current report without fetching.
func (s *Screen) View() Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Screen) reload(ctx context.Context, mutate func(*core.Query)) (Report, error) {
	s.mu.Lock()
	q := s.pending
	if mutate != nil {
		mutate(&q)
	}
	s.pending = q
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	rows, fromFallback, err := s.service.Fetch(ctx, q)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return Report{}, ErrSuperseded
	}
	if err != nil {
		// The shown data still belongs to s.query.
		s.pending = s.query
		return Report{}, err
	}
	s.query = q
	s.cats = s.service.aggregator.Aggregate(rows)
	s.selection.DataChanged(s.cats)
	s.fromFallback = fromFallback
	s.loaded = true
	return s.viewLocked(), nil
}

func (s *Screen) viewLocked() Report {
	return s.service.BuildReport(s.query, s.cats, &s.selection, s.fromFallback)
}
