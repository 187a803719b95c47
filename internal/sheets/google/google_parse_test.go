package google

import (
	"testing"

	"flousi/internal/core"
)

func TestParseTransactions(t *testing.T) {
	values := [][]interface{}{
		{"Date", "User", "Kind", "Category", "Amount"},
		{"2026-03-02", "u1", "expense", "food", "12,500"},
		{"15/03/2026", "u1", "Income", "salary", 2800.0},
		{"2026-03-03", "u1", "expense", "", "4"},
		{},
		{"", "", "", "", ""},
		{"not a date", "u1", "expense", "food", "1"},
		{"2026-03-04", "u1", "refund", "food", "1"},
		{"2026-03-04", "u1", "expense", "food", "-3"},
		{"2026-03-04", "", "expense", "food", "3"},
	}

	txs, skipped := parseTransactions(values)
	if skipped != 4 {
		t.Errorf("skipped = %d, want 4", skipped)
	}
	if len(txs) != 3 {
		t.Fatalf("parsed %d transactions, want 3: %+v", len(txs), txs)
	}
	if txs[0].Amount.Millimes != 12500 || txs[0].Category != "food" {
		t.Errorf("first = %+v", txs[0])
	}
	if txs[1].Kind != core.Income || txs[1].Amount.Millimes != 2800000 || txs[1].OccurredAt.Day() != 15 {
		t.Errorf("second = %+v", txs[1])
	}
	if txs[2].Category != "other" {
		t.Errorf("blank category = %q, want other", txs[2].Category)
	}
}

func TestSnapshotRows(t *testing.T) {
	s := core.Snapshot{
		UserID: "u1",
		Period: core.Month,
		Kind:   core.Expense,
		Categories: []core.CategoryAmount{
			{Category: "food", Amount: 450, Percentage: 47.4},
			{Category: "bills", Amount: 200.5, Percentage: 21.1},
		},
	}
	s.TakenAt, _ = core.ParseDate("2026-03-18")

	rows := snapshotRows(s)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	want := []string{"2026-03-18", "u1", "expense", "month", "bills", "200.500", "21.1"}
	got := toStrings(rows[1])
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("column %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		year int
		want string
	}{
		{"Analytics", 2026, "2026 Analytics"},
		{"  Analytics ", 2026, "2026 Analytics"},
		{"2025 Analytics", 2026, "2025 Analytics"},
		{"", 2026, ""},
		{"20xx Analytics", 2026, "2026 20xx Analytics"},
	}
	for _, tt := range tests {
		if got := yearPrefixedName(tt.base, tt.year); got != tt.want {
			t.Errorf("yearPrefixedName(%q, %d) = %q, want %q", tt.base, tt.year, got, tt.want)
		}
	}
}
