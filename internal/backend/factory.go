package backend

import (
	"context"
	"fmt"
	"time"

	"flousi/internal/log"
	"flousi/internal/sheets"
	gsheet "flousi/internal/sheets/google"
	"flousi/internal/sheets/memory"
	"flousi/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
	now    func() time.Time
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) *DefaultFactory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
		now:    time.Now,
	}
}

var _ Factory = (*DefaultFactory)(nil)

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case SupabaseBackend:
		return f.createSupabaseBackend(ctx, config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Backend: repo,
		Seeder:  repo,
		Ping:    repo.Ping,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createSupabaseBackend(ctx context.Context, config Config) (*BackendResult, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	repo, err := storage.NewPostgresRepository(connectCtx, config.SupabaseDBURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Supabase repository: %w", err)
	}

	f.logger.Info("Initialized Supabase backend")

	return &BackendResult{
		Backend: repo,
		Seeder:  repo,
		Ping:    repo.Ping,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := gsheet.NewFromEnv(ctx, sheetsOptions(config), f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend", "sheet", config.GoogleTransactionsSheet)

	return &BackendResult{Backend: cli}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context, config Config) (*BackendResult, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}

	store, err := memory.NewFromFiles(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load memory seed: %w", err)
	}
	users, _ := store.ListUsers(ctx)
	if len(users) == 0 && config.DemoUser != "" {
		if err := store.InsertTransactions(ctx, memory.DemoTransactions(config.DemoUser, f.now())...); err != nil {
			return nil, fmt.Errorf("seed demo data: %w", err)
		}
		f.logger.Info("Seeded demo transactions", log.FieldUserID, config.DemoUser)
	}

	f.logger.Info("Initialized memory backend", "data_directory", dataDir)

	return &BackendResult{Backend: store, Seeder: store}, nil
}

// CreateSnapshotWriter writes to Google Sheets when a spreadsheet is
// configured and keeps snapshots in memory otherwise.
func (f *DefaultFactory) CreateSnapshotWriter(ctx context.Context, config Config) (sheets.SnapshotWriter, error) {
	if config.GoogleSpreadsheetID == "" {
		f.logger.Warn("No spreadsheet configured, snapshots are kept in memory only")
		return memory.New(), nil
	}
	cli, err := gsheet.NewFromEnv(ctx, sheetsOptions(config), f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	return cli, nil
}

func sheetsOptions(config Config) gsheet.Options {
	return gsheet.Options{
		SpreadsheetID:     config.GoogleSpreadsheetID,
		TransactionsSheet: config.GoogleTransactionsSheet,
		ReportSheet:       config.GoogleReportSheet,
	}
}
