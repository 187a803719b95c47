package memory

import (
	"context"
	"time"

	"flousi/internal/core"
)

// Fallback serves fixed sample rows per kind. The analytics service uses it
// when the configured backend fails so the screen still has data to draw.
type Fallback struct{}

var fallbackRows = map[core.TransactionKind][]core.CategoryTotal{
	core.Expense: {
		{Category: "food", Amount: 450, Icon: "restaurant"},
		{Category: "transport", Amount: 300, Icon: "directions_car"},
		{Category: "bills", Amount: 200, Icon: "receipt"},
		{Category: "leisure", Amount: 120, Icon: "sports_esports"},
	},
	core.Income: {
		{Category: "salary", Amount: 2800, Icon: "work"},
		{Category: "freelance", Amount: 600, Icon: "laptop"},
	},
}

func (Fallback) FetchCategoryTotals(_ context.Context, q core.Query) ([]core.CategoryTotal, error) {
	if err := q.Kind.Validate(); err != nil {
		return nil, err
	}
	return append([]core.CategoryTotal(nil), fallbackRows[q.Kind]...), nil
}

// DemoTransactions builds a month of sample activity for user ending at now.
func DemoTransactions(user string, now time.Time) []core.Transaction {
	day := func(n int) time.Time {
		y, m, _ := now.Date()
		d := now.Day() - n
		if d < 1 {
			d = 1
		}
		return time.Date(y, m, d, 12, 0, 0, 0, now.Location())
	}
	tx := func(kind core.TransactionKind, cat string, dinars float64, at time.Time) core.Transaction {
		return core.Transaction{UserID: user, Kind: kind, Category: cat, Amount: core.MoneyFromDinars(dinars), OccurredAt: at}
	}
	return []core.Transaction{
		tx(core.Expense, "food", 85.250, day(0)),
		tx(core.Expense, "food", 142.600, day(3)),
		tx(core.Expense, "food", 61.900, day(9)),
		tx(core.Expense, "transport", 45, day(1)),
		tx(core.Expense, "transport", 120, day(12)),
		tx(core.Expense, "bills", 96.400, day(5)),
		tx(core.Expense, "rent", 650, day(14)),
		tx(core.Expense, "leisure", 38.500, day(2)),
		tx(core.Income, "salary", 2800, day(14)),
		tx(core.Income, "freelance", 350, day(6)),
	}
}
