package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"

	"flousi/internal/core"
)

func TestScreen_ModeToggleResetsSelection(t *testing.T) {
	ctx := context.Background()
	screen := NewScreen(NewService(newFakeFetcher()), core.Query{UserID: "user-1"})

	r, err := screen.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if r.Kind != core.Expense || r.Period != core.Month {
		t.Fatalf("defaults = %s/%s", r.Kind, r.Period)
	}

	r = screen.Tap(2)
	if r.Selection.Index != 2 || !r.Chart.Segments[2].IsSelected {
		t.Fatalf("tap not applied: %+v", r.Selection)
	}
	if again := screen.View(); again.Selection.Index != 2 {
		t.Fatalf("tap did not persist, index %d", again.Selection.Index)
	}

	r, err = screen.SetMode(ctx, core.Income)
	if err != nil {
		t.Fatalf("SetMode() error = %v", err)
	}
	if r.Kind != core.Income || r.Selection.Index != 0 || r.Selection.State != "default" {
		t.Fatalf("after mode change: kind=%s selection=%+v", r.Kind, r.Selection)
	}

	r, err = screen.ToggleMode(ctx)
	if err != nil {
		t.Fatalf("ToggleMode() error = %v", err)
	}
	if r.Kind != core.Expense {
		t.Fatalf("kind = %s, want expense", r.Kind)
	}
}

func TestScreen_RejectsInvalidInput(t *testing.T) {
	screen := NewScreen(NewService(newFakeFetcher()), core.Query{UserID: "user-1"})
	if _, err := screen.SetMode(context.Background(), "savings"); !errors.Is(err, core.ErrInvalidKind) {
		t.Fatalf("SetMode err = %v", err)
	}
	if _, err := screen.SetPeriod(context.Background(), "decade"); !errors.Is(err, core.ErrInvalidPeriod) {
		t.Fatalf("SetPeriod err = %v", err)
	}
	if screen.Loaded() {
		t.Fatal("rejected input triggered a load")
	}
}

// blockingFetcher holds the first call until released.
type blockingFetcher struct {
	mu      sync.Mutex
	calls   int
	started chan struct{}
	release chan struct{}
}

func (f *blockingFetcher) FetchCategoryTotals(_ context.Context, q core.Query) ([]core.CategoryTotal, error) {
	f.mu.Lock()
	f.calls++
	first := f.calls == 1
	f.mu.Unlock()

	if first {
		close(f.started)
		<-f.release
		return []core.CategoryTotal{{Category: "Stale", Amount: 1}}, nil
	}
	return []core.CategoryTotal{{Category: "Fresh", Amount: 1}}, nil
}

func TestScreen_SupersededLoadIsDiscarded(t *testing.T) {
	ctx := context.Background()
	fetcher := &blockingFetcher{started: make(chan struct{}), release: make(chan struct{})}
	screen := NewScreen(NewService(fetcher), core.Query{UserID: "user-1"})

	errs := make(chan error, 1)
	go func() {
		_, err := screen.Load(ctx)
		errs <- err
	}()
	<-fetcher.started

	r, err := screen.SetPeriod(ctx, core.Week)
	if err != nil {
		t.Fatalf("SetPeriod() error = %v", err)
	}
	if r.Categories[0].Category != "Fresh" {
		t.Fatalf("newer load returned %q", r.Categories[0].Category)
	}

	close(fetcher.release)
	if err := <-errs; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("stale load err = %v, want ErrSuperseded", err)
	}

	view := screen.View()
	if view.Categories[0].Category != "Fresh" || view.Period != core.Week {
		t.Fatalf("stale data leaked into view: %+v", view)
	}
}

func TestScreen_ViewBeforeLoad(t *testing.T) {
	screen := NewScreen(NewService(newFakeFetcher()), core.Query{UserID: "user-1"})
	r := screen.View()
	if len(r.Chart.Segments) != 0 || r.Selection.Index != 0 {
		t.Fatalf("unexpected view before load: %+v", r)
	}
}

// flakyFetcher returns expense rows until failing is set.
type flakyFetcher struct {
	mu      sync.Mutex
	failing bool
}

func (f *flakyFetcher) setFailing(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = v
}

func (f *flakyFetcher) FetchCategoryTotals(_ context.Context, q core.Query) ([]core.CategoryTotal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, errors.New("connection refused")
	}
	if q.Kind == core.Income {
		return []core.CategoryTotal{{Category: "Salary", Amount: 2000}}, nil
	}
	return []core.CategoryTotal{{Category: "Food", Amount: 450}, {Category: "Rent", Amount: 300}}, nil
}

func TestScreen_FailedReloadKeepsShownQuery(t *testing.T) {
	ctx := context.Background()
	fetcher := &flakyFetcher{}
	screen := NewScreen(NewService(fetcher), core.Query{UserID: "user-1"})

	if _, err := screen.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	fetcher.setFailing(true)
	if _, err := screen.SetMode(ctx, core.Income); err == nil {
		t.Fatal("SetMode() expected error")
	}
	if _, err := screen.SetPeriod(ctx, core.Year); err == nil {
		t.Fatal("SetPeriod() expected error")
	}

	view := screen.View()
	if view.Kind != core.Expense || view.Period != core.Month {
		t.Fatalf("view = %s/%s, want expense/month", view.Kind, view.Period)
	}
	if len(view.Categories) != 2 || view.Categories[0].Category != "Food" {
		t.Fatalf("categories = %+v", view.Categories)
	}
	if q := screen.Query(); q.Kind != core.Expense || q.Period != core.Month {
		t.Fatalf("Query() = %+v", q)
	}

	// Toggling after a failure starts from the mode actually shown.
	fetcher.setFailing(false)
	r, err := screen.ToggleMode(ctx)
	if err != nil {
		t.Fatalf("ToggleMode() error = %v", err)
	}
	if r.Kind != core.Income || r.Categories[0].Category != "Salary" {
		t.Fatalf("after toggle: kind=%s categories=%+v", r.Kind, r.Categories)
	}
}
