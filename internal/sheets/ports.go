package sheets

import (
	"context"

	"flousi/internal/core"
)

// Ports for outbound adapters.
type (
	// CategoryTotalsReader is a data source for the analytics service.
	CategoryTotalsReader interface {
		FetchCategoryTotals(ctx context.Context, q core.Query) ([]core.CategoryTotal, error)
	}

	// SnapshotWriter persists a frozen report, returning a reference to where it landed.
	SnapshotWriter interface {
		WriteSnapshot(ctx context.Context, s core.Snapshot) (rowRef string, err error)
	}

	// UserLister enumerates users known to a data source.
	UserLister interface {
		ListUsers(ctx context.Context) ([]string, error)
	}

	// TransactionSeeder loads transactions into an offline store.
	TransactionSeeder interface {
		InsertTransactions(ctx context.Context, txs ...core.Transaction) error
	}
)
