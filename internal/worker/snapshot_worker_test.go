package worker

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"flousi/internal/amqp"
	"flousi/internal/analytics"
	"flousi/internal/cache"
	"flousi/internal/core"
	"flousi/internal/sheets/memory"
)

var testNow = time.Date(2026, 3, 18, 12, 0, 0, 0, time.UTC)

func newStore(t *testing.T, users ...string) *memory.Store {
	t.Helper()
	store := memory.New()
	store.SetClock(func() time.Time { return testNow })
	for _, u := range users {
		if err := store.InsertTransactions(context.Background(), memory.DemoTransactions(u, testNow)...); err != nil {
			t.Fatalf("InsertTransactions() error = %v", err)
		}
	}
	return store
}

func TestHandleDataChanged(t *testing.T) {
	store := newStore(t, "u1")
	out := memory.New()
	svc := analytics.NewService(store)
	w := NewSnapshotWorker(svc, out, store, nil)
	w.now = func() time.Time { return testNow }

	if err := w.HandleDataChanged(context.Background(), &amqp.DataChangedMessage{UserID: "u1", Kind: core.Expense, Period: core.Month}); err != nil {
		t.Fatalf("HandleDataChanged() error = %v", err)
	}
	snaps := out.Snapshots()
	if len(snaps) != 1 {
		t.Fatalf("snapshots = %d, want 1", len(snaps))
	}
	s := snaps[0]
	if s.UserID != "u1" || s.Kind != core.Expense || s.Period != core.Month || !s.TakenAt.Equal(testNow) {
		t.Errorf("snapshot = %+v", s)
	}
	if s.Categories[0].Category != "rent" || s.Total <= 0 {
		t.Errorf("snapshot categories = %+v, total %v", s.Categories, s.Total)
	}
	var pct float64
	for _, c := range s.Categories {
		pct += c.Percentage
	}
	if pct < 99.5 || pct > 100.5 {
		t.Errorf("percentages sum to %v", pct)
	}
}

func TestHandleDataChangedAllReports(t *testing.T) {
	store := newStore(t, "u1")
	out := memory.New()
	w := NewSnapshotWorker(analytics.NewService(store), out, store, nil)

	if err := w.HandleDataChanged(context.Background(), &amqp.DataChangedMessage{UserID: "u1"}); err != nil {
		t.Fatalf("HandleDataChanged() error = %v", err)
	}
	// Month and year always hold the demo data; the week may be empty.
	if n := len(out.Snapshots()); n < 4 || n > 6 {
		t.Errorf("snapshots = %d, want between 4 and 6", n)
	}
}

func TestHandleDataChangedInvalidatesCache(t *testing.T) {
	store := newStore(t, "u1")
	lru := cache.NewLRUCache[[]core.CategoryTotal](10, time.Minute)
	svc := analytics.NewService(store, analytics.WithCache(lru))
	q := core.Query{UserID: "u1", Period: core.Month, Kind: core.Income}
	if _, err := svc.Report(context.Background(), q, nil); err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	_ = store.InsertTransactions(context.Background(), core.Transaction{
		UserID: "u1", Kind: core.Income, Category: "bonus", Amount: core.MoneyFromDinars(5000), OccurredAt: testNow,
	})

	out := memory.New()
	w := NewSnapshotWorker(svc, out, store, nil)
	if err := w.HandleDataChanged(context.Background(), &amqp.DataChangedMessage{UserID: "u1", Kind: core.Income, Period: core.Month}); err != nil {
		t.Fatalf("HandleDataChanged() error = %v", err)
	}
	snaps := out.Snapshots()
	if len(snaps) != 1 || snaps[0].Categories[0].Category != "bonus" {
		t.Errorf("snapshot did not see new data: %+v", snaps)
	}
}

func TestSnapshotSkipsFallbackData(t *testing.T) {
	failing := analytics.FetcherFunc(func(context.Context, core.Query) ([]core.CategoryTotal, error) {
		return nil, errors.New("database down")
	})
	svc := analytics.NewService(failing, analytics.WithFallback(memory.Fallback{}))
	out := memory.New()
	w := NewSnapshotWorker(svc, out, newStore(t), nil)

	err := w.HandleDataChanged(context.Background(), &amqp.DataChangedMessage{UserID: "u1", Kind: core.Expense, Period: core.Month})
	if err == nil || !strings.Contains(err.Error(), "data source unavailable") {
		t.Errorf("HandleDataChanged() error = %v", err)
	}
	if n := len(out.Snapshots()); n != 0 {
		t.Errorf("fallback data was exported (%d snapshots)", n)
	}
}

type failingWriter struct{}

func (failingWriter) WriteSnapshot(context.Context, core.Snapshot) (string, error) {
	return "", errors.New("quota exceeded")
}

func TestRefreshAll(t *testing.T) {
	store := newStore(t, "amira", "zed")
	out := memory.New()
	w := NewSnapshotWorker(analytics.NewService(store), out, store, nil)

	if err := w.RefreshAll(context.Background()); err != nil {
		t.Fatalf("RefreshAll() error = %v", err)
	}
	users := map[string]bool{}
	for _, s := range out.Snapshots() {
		users[s.UserID] = true
	}
	if !users["amira"] || !users["zed"] {
		t.Errorf("snapshot users = %v", users)
	}

	w = NewSnapshotWorker(analytics.NewService(store), failingWriter{}, store, nil)
	if err := w.RefreshAll(context.Background()); err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("RefreshAll() error = %v, want writer failure", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	store := newStore(t)
	w := NewSnapshotWorker(analytics.NewService(store), memory.New(), store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, time.Millisecond) }()
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not stop after cancel")
	}
}
