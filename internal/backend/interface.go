package backend

import (
	"context"

	"flousi/internal/sheets"
)

// Backend is a data source the analytics service and the snapshot worker
// can both read from.
type Backend interface {
	sheets.CategoryTotalsReader
	sheets.UserLister
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// PingFunc reports whether the backend can currently serve reads.
type PingFunc func(ctx context.Context) error

// BackendResult contains the backend instance and optional hooks.
type BackendResult struct {
	Backend Backend
	// Seeder is set for stores that accept sample data (memory, sqlite, supabase).
	Seeder  sheets.TransactionSeeder
	Ping    PingFunc
	Cleanup CleanupFunc
}

// Close runs Cleanup if present.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
	// CreateSnapshotWriter returns where report snapshots are written.
	CreateSnapshotWriter(ctx context.Context, config Config) (sheets.SnapshotWriter, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Supabase specific
	SupabaseDBURL string

	// Google Sheets specific
	GoogleSpreadsheetID     string
	GoogleTransactionsSheet string
	GoogleReportSheet       string

	// Memory backend specific
	DataDirectory string
	// DemoUser receives sample transactions when the memory store starts empty.
	DemoUser string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	SupabaseBackend BackendType = "supabase"
	SheetsBackend   BackendType = "sheets"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, SupabaseBackend, SheetsBackend:
		return true
	default:
		return false
	}
}
