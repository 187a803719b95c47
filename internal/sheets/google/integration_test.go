//go:build integration

package google

import (
	"context"
	"os"
	"testing"
	"time"

	"flousi/internal/core"
)

// Integration tests require real service account credentials.
// Run with: go test -tags=integration ./internal/sheets/google

func TestIntegration_SnapshotRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	spreadsheetID := os.Getenv("GOOGLE_SPREADSHEET_ID")
	if spreadsheetID == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := NewFromEnv(ctx, Options{
		SpreadsheetID:     spreadsheetID,
		TransactionsSheet: os.Getenv("GOOGLE_TRANSACTIONS_SHEET"),
		ReportSheet:       "Analytics Test",
	}, nil)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	users, err := client.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	t.Logf("Found %d users", len(users))
	if len(users) == 0 {
		t.Skip("transactions tab is empty")
	}

	q := core.Query{UserID: users[0], Period: core.Year, Kind: core.Expense}
	rows, err := client.FetchCategoryTotals(ctx, q)
	if err != nil {
		t.Fatalf("FetchCategoryTotals() error = %v", err)
	}
	snap := core.Snapshot{TakenAt: time.Now(), UserID: q.UserID, Period: q.Period, Kind: q.Kind}
	for _, r := range rows {
		snap.Categories = append(snap.Categories, core.CategoryAmount{Category: r.Category, Amount: r.Amount})
	}
	ref, err := client.WriteSnapshot(ctx, snap)
	if err != nil {
		t.Fatalf("WriteSnapshot() error = %v", err)
	}
	t.Logf("Snapshot written to %s", ref)
}
