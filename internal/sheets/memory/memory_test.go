package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"flousi/internal/core"
)

var testNow = time.Date(2026, 3, 18, 12, 0, 0, 0, time.UTC)

func TestStoreFetchCategoryTotals(t *testing.T) {
	s := New()
	s.SetClock(func() time.Time { return testNow })
	ctx := context.Background()

	if err := s.InsertTransactions(ctx, DemoTransactions("u1", testNow)...); err != nil {
		t.Fatalf("InsertTransactions() error = %v", err)
	}
	if err := s.UpsertCategory(ctx, core.Category{UserID: "u1", Kind: core.Expense, Name: "rent", Color: "#123456", Icon: "home"}); err != nil {
		t.Fatalf("UpsertCategory() error = %v", err)
	}

	rows, err := s.FetchCategoryTotals(ctx, core.Query{UserID: "u1", Period: core.Month, Kind: core.Expense})
	if err != nil {
		t.Fatalf("FetchCategoryTotals() error = %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("FetchCategoryTotals() returned %d rows, want 5: %+v", len(rows), rows)
	}
	if rows[0].Category != "rent" || rows[0].Color != "#123456" || rows[0].Icon != "home" {
		t.Errorf("first row = %+v, want rent with its category attributes", rows[0])
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].Amount > rows[i-1].Amount {
			t.Errorf("rows not ordered by amount: %+v", rows)
		}
	}

	other, err := s.FetchCategoryTotals(ctx, core.Query{UserID: "u2", Period: core.Month, Kind: core.Expense})
	if err != nil || len(other) != 0 {
		t.Errorf("unknown user = %+v, %v; want empty", other, err)
	}
}

func TestStoreRejectsInvalidInput(t *testing.T) {
	s := New()
	ctx := context.Background()
	if err := s.InsertTransactions(ctx, core.Transaction{UserID: "u1", Kind: core.Expense}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("InsertTransactions() error = %v, want ErrInvalidAmount", err)
	}
	if _, err := s.FetchCategoryTotals(ctx, core.Query{Period: core.Month, Kind: core.Expense}); !errors.Is(err, core.ErrEmptyUserID) {
		t.Errorf("FetchCategoryTotals() error = %v, want ErrEmptyUserID", err)
	}
	if _, err := s.WriteSnapshot(ctx, core.Snapshot{}); !errors.Is(err, core.ErrEmptyUserID) {
		t.Errorf("WriteSnapshot() error = %v, want ErrEmptyUserID", err)
	}
}

func TestStoreSnapshotsAndUsers(t *testing.T) {
	s := New()
	ctx := context.Background()
	_ = s.InsertTransactions(ctx, DemoTransactions("zed", testNow)...)
	_ = s.InsertTransactions(ctx, DemoTransactions("amira", testNow)...)

	users, _ := s.ListUsers(ctx)
	if len(users) != 2 || users[0] != "amira" || users[1] != "zed" {
		t.Errorf("ListUsers() = %v, want [amira zed]", users)
	}

	ref, err := s.WriteSnapshot(ctx, core.Snapshot{UserID: "zed", Period: core.Week, Kind: core.Income})
	if err != nil || ref != "mem:1" {
		t.Fatalf("WriteSnapshot() = %q, %v", ref, err)
	}
	if snaps := s.Snapshots(); len(snaps) != 1 || snaps[0].UserID != "zed" {
		t.Errorf("Snapshots() = %+v", snaps)
	}
}

func TestFallback(t *testing.T) {
	var f Fallback
	rows, err := f.FetchCategoryTotals(context.Background(), core.Query{Kind: core.Income})
	if err != nil || len(rows) == 0 {
		t.Fatalf("FetchCategoryTotals() = %+v, %v", rows, err)
	}
	rows[0].Amount = -1
	again, _ := f.FetchCategoryTotals(context.Background(), core.Query{Kind: core.Income})
	if again[0].Amount == -1 {
		t.Error("caller mutation leaked into fallback data")
	}
	if _, err := f.FetchCategoryTotals(context.Background(), core.Query{Kind: "refund"}); err == nil {
		t.Error("FetchCategoryTotals() accepted an unknown kind")
	}
}

func TestNewFromFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFromFiles(dir)
	if err != nil {
		t.Fatalf("NewFromFiles() without seed file error = %v", err)
	}
	if users, _ := s.ListUsers(context.Background()); len(users) != 0 {
		t.Fatalf("expected empty store, got users %v", users)
	}

	seed := strings.Join([]string{
		"# user,kind,category,amount,date",
		"u1,expense,food,12.500,2026-03-02",
		"u1,income,salary,2800,2026-03-01T09:00:00Z",
		"u1,expense,food,not-a-number,2026-03-02",
		"u1,refund,food,3,2026-03-02",
		"u1,expense,food,3",
		"u2,expense,rent,650,15/03/2026",
	}, "\n")
	if err := os.WriteFile(filepath.Join(dir, "seed_transactions.csv"), []byte(seed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	s, err = NewFromFiles(dir)
	if err != nil {
		t.Fatalf("NewFromFiles() error = %v", err)
	}
	s.SetClock(func() time.Time { return testNow })
	rows, _ := s.FetchCategoryTotals(context.Background(), core.Query{UserID: "u1", Period: core.Month, Kind: core.Expense})
	if len(rows) != 1 || rows[0].Amount != 12.5 {
		t.Errorf("u1 expenses = %+v, want food 12.5", rows)
	}
	users, _ := s.ListUsers(context.Background())
	if len(users) != 2 {
		t.Errorf("ListUsers() = %v, want two users", users)
	}
}
