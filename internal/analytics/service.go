package analytics

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"flousi/internal/cache"
	"flousi/internal/core"
	"flousi/internal/log"
)

// ListRow is one entry of the textual breakdown under the chart.
type ListRow struct {
	core.CategoryAmount
	FormattedAmount string `json:"formatted_amount,omitempty"`
	BarWidth        int    `json:"bar_width"`
}

// SelectionView exposes the selection state to renderers.
type SelectionView struct {
	Index int    `json:"index"`
	State string `json:"state"`
	Valid bool   `json:"valid"`
}

// Report is everything the analytics screen draws for one query.
type Report struct {
	UserID       string                `json:"user_id"`
	Period       core.Period           `json:"period"`
	Kind         core.TransactionKind  `json:"kind"`
	Total        float64               `json:"total"`
	Categories   []core.CategoryAmount `json:"categories"`
	Rows         []ListRow             `json:"rows"`
	Chart        Chart                 `json:"chart"`
	Selection    SelectionView         `json:"selection"`
	FromFallback bool                  `json:"from_fallback"`
}

// FormatAmounts fills FormattedAmount on every row.
func (r *Report) FormatAmounts(format func(float64) string) {
	for i := range r.Rows {
		r.Rows[i].FormattedAmount = format(r.Rows[i].Amount)
	}
}

// Service fetches category totals and turns them into reports.
type Service struct {
	fetcher    Fetcher
	fallback   Fetcher
	cache      cache.Cache[[]core.CategoryTotal]
	aggregator Aggregator
	layout     Layout
	timeout    time.Duration
	logger     *log.Logger
	structured *log.StructuredLogger
}

// Option configures a Service.
type Option func(*Service)

// WithFallback sets the static data source used when the fetcher fails.
func WithFallback(f Fetcher) Option {
	return func(s *Service) { s.fallback = f }
}

// WithCache caches successful fetches per query.
func WithCache(c cache.Cache[[]core.CategoryTotal]) Option {
	return func(s *Service) { s.cache = c }
}

func WithLayout(l Layout) Option {
	return func(s *Service) { s.layout = l.Normalize() }
}

func WithPalette(p []string) Option {
	return func(s *Service) { s.aggregator = NewAggregator(p) }
}

// WithFetchTimeout bounds every fetch; zero disables the bound.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l.WithComponent(log.ComponentAnalytics)
		}
	}
}

func NewService(fetcher Fetcher, opts ...Option) *Service {
	s := &Service{
		fetcher:    fetcher,
		aggregator: NewAggregator(nil),
		layout:     DefaultLayout(),
		timeout:    7 * time.Second,
		logger:     log.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.structured = log.NewStructuredLogger(s.logger)
	return s
}

// Layout returns the donut layout used for reports.
func (s *Service) Layout() Layout {
	return s.layout
}

// Fetch returns raw totals for q. When the fetcher fails and a fallback is
// configured, the fallback rows are returned with fromFallback set.
func (s *Service) Fetch(ctx context.Context, q core.Query) (rows []core.CategoryTotal, fromFallback bool, err error) {
	if err := q.Validate(); err != nil {
		return nil, false, err
	}
	key := q.Key()
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			s.logger.DebugContext(ctx, "Category totals cache hit", log.FieldUserID, q.UserID, log.FieldPeriod, q.Period, log.FieldKind, q.Kind)
			return append([]core.CategoryTotal(nil), cached...), false, nil
		}
	}

	fctx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		fctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var fetchErr error
	if s.fetcher != nil {
		rows, fetchErr = s.fetcher.FetchCategoryTotals(fctx, q)
		if fetchErr == nil {
			if s.cache != nil {
				s.cache.Set(key, append([]core.CategoryTotal(nil), rows...))
			}
			return rows, false, nil
		}
	} else {
		fetchErr = fmt.Errorf("no data source configured")
	}

	if s.fallback == nil {
		return nil, false, fmt.Errorf("fetch category totals (user=%s, period=%s, kind=%s): %w", q.UserID, q.Period, q.Kind, fetchErr)
	}
	s.logger.WarnContext(ctx, "Fetch failed, using fallback data",
		log.FieldError, fetchErr.Error(),
		log.FieldUserID, q.UserID,
		log.FieldPeriod, q.Period,
		log.FieldKind, q.Kind)
	rows, err = s.fallback.FetchCategoryTotals(ctx, q)
	if err != nil {
		return nil, false, fmt.Errorf("fallback category totals: %w", err)
	}
	return rows, true, nil
}

// Report fetches and builds a report. A nil tap keeps the default selection
// (largest amount); otherwise the tapped index is selected after clamping.
func (s *Service) Report(ctx context.Context, q core.Query, tap *int) (Report, error) {
	rows, fromFallback, err := s.Fetch(ctx, q)
	if err != nil {
		return Report{}, err
	}
	cats := s.aggregator.Aggregate(rows)
	var sel Selection
	sel.DataChanged(cats)
	if tap != nil {
		sel.Tap(*tap)
	}
	r := s.BuildReport(q, cats, &sel, fromFallback)
	s.structured.LogAnalyticsComputed(ctx, q.UserID, string(q.Period), string(q.Kind), len(cats), r.Total, sel.Index(), fromFallback)
	return r, nil
}

// BuildReport assembles a report from already aggregated categories.
func (s *Service) BuildReport(q core.Query, cats []core.CategoryAmount, sel *Selection, fromFallback bool) Report {
	if cats == nil {
		cats = []core.CategoryAmount{}
	}
	chart := BuildChart(cats, sel.Index(), s.layout)
	rows := make([]ListRow, len(cats))
	for i, c := range cats {
		rows[i] = ListRow{CategoryAmount: c, BarWidth: BarWidth(c.Percentage)}
	}
	return Report{
		UserID:       q.UserID,
		Period:       q.Period,
		Kind:         q.Kind,
		Total:        chart.Total,
		Categories:   cats,
		Rows:         rows,
		Chart:        chart,
		Selection:    SelectionView{Index: sel.Index(), State: sel.State().String(), Valid: sel.Valid()},
		FromFallback: fromFallback,
	}
}

// Summary fetches both ledger sides concurrently.
func (s *Service) Summary(ctx context.Context, userID string, period core.Period) (core.Summary, error) {
	var expenses, income []core.CategoryTotal
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, _, err := s.Fetch(gctx, core.Query{UserID: userID, Period: period, Kind: core.Expense})
		expenses = rows
		return err
	})
	g.Go(func() error {
		rows, _, err := s.Fetch(gctx, core.Query{UserID: userID, Period: period, Kind: core.Income})
		income = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Summary{}, err
	}

	sum := core.Summary{
		UserID:   userID,
		Period:   period,
		Expenses: Sum(s.aggregator.Aggregate(expenses)),
		Income:   Sum(s.aggregator.Aggregate(income)),
	}
	sum.Net = sum.Income - sum.Expenses
	return sum, nil
}

// Invalidate drops every cached breakdown of a user.
func (s *Service) Invalidate(userID string) int {
	if s.cache == nil {
		return 0
	}
	return s.cache.DeletePrefix(userID + "|")
}

// BarWidth is the progress-bar width in percent; tiny non-zero shares stay visible.
func BarWidth(percentage float64) int {
	if percentage <= 0 {
		return 0
	}
	width := int(percentage + 0.5)
	if width < 2 {
		width = 2
	}
	if width > 100 {
		width = 100
	}
	return width
}
