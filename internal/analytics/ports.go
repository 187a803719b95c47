package analytics

import (
	"context"

	"flousi/internal/core"
)

// Fetcher is the data-fetch collaborator: it returns raw per-category totals
// for one user, period and transaction kind.
type Fetcher interface {
	FetchCategoryTotals(ctx context.Context, q core.Query) ([]core.CategoryTotal, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, q core.Query) ([]core.CategoryTotal, error)

func (f FetcherFunc) FetchCategoryTotals(ctx context.Context, q core.Query) ([]core.CategoryTotal, error) {
	return f(ctx, q)
}
