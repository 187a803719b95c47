package core

import (
	"errors"
	"testing"
	"time"
)

func TestTransactionValidate(t *testing.T) {
	at := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		tx   Transaction
		want error
	}{
		{"valid", Transaction{UserID: "u1", Kind: Expense, Category: "food", Amount: Money{Millimes: 1}, OccurredAt: at}, nil},
		{"empty user", Transaction{UserID: " ", Kind: Expense, Amount: Money{Millimes: 1}}, ErrEmptyUserID},
		{"bad kind", Transaction{UserID: "u1", Kind: "refund", Amount: Money{Millimes: 1}}, ErrInvalidKind},
		{"zero amount", Transaction{UserID: "u1", Kind: Income}, ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.tx.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTotalsByCategory(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	tx := func(user string, kind TransactionKind, cat string, millimes int64, at time.Time) Transaction {
		return Transaction{UserID: user, Kind: kind, Category: cat, Amount: Money{Millimes: millimes}, OccurredAt: at}
	}
	txs := []Transaction{
		tx("u1", Expense, "bills", 200000, from),
		tx("u1", Expense, "food", 100000, from.Add(time.Hour)),
		tx("u1", Expense, "food", 350000, from.Add(2*time.Hour)),
		tx("u1", Expense, "transport", 200000, from.Add(3*time.Hour)),
		// Outside [from, to).
		tx("u1", Expense, "food", 999000, to),
		tx("u1", Expense, "food", 999000, from.Add(-time.Second)),
		tx("u1", Income, "salary", 3000000, from),
		tx("u2", Expense, "food", 1000, from),
	}

	got := TotalsByCategory(txs, Query{UserID: "u1", Period: Month, Kind: Expense}, from, to)
	want := []CategoryTotal{
		{Category: "food", Amount: 450},
		{Category: "bills", Amount: 200},
		{Category: "transport", Amount: 200},
	}
	if len(got) != len(want) {
		t.Fatalf("TotalsByCategory() = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i].Category != want[i].Category || got[i].Amount != want[i].Amount {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	if got := TotalsByCategory(nil, Query{UserID: "u1", Kind: Expense}, from, to); len(got) != 0 {
		t.Errorf("TotalsByCategory(nil) = %+v, want empty", got)
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2026-03-15", " 15/03/2026 ", "2026-03-15T00:00:00Z"} {
		got, ok := ParseDate(in)
		if !ok || !got.Equal(want) {
			t.Errorf("ParseDate(%q) = %v, %v; want %v", in, got, ok, want)
		}
	}
	for _, in := range []string{"", "Date", "03/15/2026", "2026-13-01"} {
		if _, ok := ParseDate(in); ok {
			t.Errorf("ParseDate(%q) accepted invalid input", in)
		}
	}
}
