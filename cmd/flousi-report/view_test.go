package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"flousi/internal/analytics"
	"flousi/internal/core"
	"flousi/internal/i18n"
)

func sampleReport() analytics.Report {
	cats := []core.CategoryAmount{
		{Category: "rent", Amount: 650, Percentage: 65, Color: "#e74c3c"},
		{Category: "food", Amount: 350, Percentage: 35, Color: "#3498db"},
	}
	return analytics.Report{
		UserID:     "demo",
		Period:     core.Month,
		Kind:       core.Expense,
		Total:      1000,
		Categories: cats,
		Rows: []analytics.ListRow{
			{CategoryAmount: cats[0], BarWidth: 65},
			{CategoryAmount: cats[1], BarWidth: 35},
		},
		Selection: analytics.SelectionView{Index: 1, State: "selected", Valid: true},
	}
}

func TestRenderBreakdown(t *testing.T) {
	var buf bytes.Buffer
	prefs := i18n.Preferences{Locale: i18n.English}
	if err := renderBreakdown(&buf, sampleReport(), prefs); err != nil {
		t.Fatalf("renderBreakdown() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{"Analytics", "Expenses", "This month", "Rent", "Food", "65.0%", "350.000 DT", "Total: 1,000.000 DT"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	lines := strings.Split(out, "\n")
	var foodLine string
	for _, l := range lines {
		if strings.Contains(l, "Food") {
			foodLine = l
		}
	}
	if !strings.Contains(foodLine, "> ") {
		t.Errorf("selected row not marked: %q", foodLine)
	}
	if strings.Contains(out, "sample data") {
		t.Error("fallback notice printed for live data")
	}
}

func TestRenderBreakdown_EmptyAndFallback(t *testing.T) {
	var buf bytes.Buffer
	r := analytics.Report{Period: core.Week, Kind: core.Income, FromFallback: true}
	if err := renderBreakdown(&buf, r, i18n.Preferences{Locale: i18n.English}); err != nil {
		t.Fatalf("renderBreakdown() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "No data yet") || !strings.Contains(out, "Server unreachable") {
		t.Errorf("output = %q", out)
	}
	if strings.Contains(out, "Total") {
		t.Errorf("empty report should not print a total: %q", out)
	}
}

func TestBar(t *testing.T) {
	tests := []struct {
		width  int
		filled int
	}{
		{0, 0},
		{2, 1},
		{50, 15},
		{100, barColumns},
	}
	for _, tt := range tests {
		got := bar(tt.width, "")
		if n := strings.Count(got, "█"); n != tt.filled {
			t.Errorf("bar(%d) filled = %d, want %d", tt.width, n, tt.filled)
		}
		if n := len([]rune(got)); n != barColumns {
			t.Errorf("bar(%d) has %d columns, want %d", tt.width, n, barColumns)
		}
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	s := core.Summary{UserID: "demo", Period: core.Year, Income: 3150, Expenses: 1239.65, Net: 1910.35}
	if err := renderSummary(&buf, s, i18n.Preferences{Locale: i18n.English}); err != nil {
		t.Fatalf("renderSummary() error = %v", err)
	}
	for _, want := range []string{"Summary", "This year", "Income", "3,150.000 DT", "1,239.650 DT", "1,910.350 DT"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q:\n%s", want, buf.String())
		}
	}
}

func TestLoadSeed(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	demo, err := loadSeed("", "amira", now)
	if err != nil || len(demo) == 0 {
		t.Fatalf("loadSeed(demo) = %d rows, %v", len(demo), err)
	}
	for _, tx := range demo {
		if tx.UserID != "amira" {
			t.Fatalf("demo row for %q", tx.UserID)
		}
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "seed.csv")
	csv := "# user,kind,category,amount,date\namira,expense,food,12.5,2026-03-01\namira,income,salary,2000,2026-03-02\n"
	if err := os.WriteFile(path, []byte(csv), 0o600); err != nil {
		t.Fatal(err)
	}
	txs, err := loadSeed(path, "ignored", now)
	if err != nil {
		t.Fatalf("loadSeed(file) error = %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("loadSeed(file) = %d rows, want 2", len(txs))
	}

	empty := filepath.Join(dir, "empty.csv")
	if err := os.WriteFile(empty, []byte("# nothing\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := loadSeed(empty, "amira", now); err == nil {
		t.Error("loadSeed(empty) expected error")
	}
	if _, err := loadSeed(filepath.Join(dir, "missing.csv"), "amira", now); err == nil {
		t.Error("loadSeed(missing) expected error")
	}
}
