package core

import (
	"sort"
	"strings"
	"time"
)

// Transaction is one ledger entry as stored by the data sources.
type Transaction struct {
	UserID     string
	Kind       TransactionKind
	Category   string
	Amount     Money
	OccurredAt time.Time
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.UserID) == "" {
		return ErrEmptyUserID
	}
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	return t.Amount.Validate()
}

// Category carries the display attributes of a user's category.
type Category struct {
	UserID string
	Kind   TransactionKind
	Name   string
	Color  string
	Icon   string
}

// Snapshot is a report frozen at a point in time, as exported to sheets.
type Snapshot struct {
	TakenAt    time.Time
	UserID     string
	Period     Period
	Kind       TransactionKind
	Total      float64
	Categories []CategoryAmount
}

// ParseDate accepts an RFC 3339 timestamp, an ISO calendar date or a
// day-first date (02/01/2006) as written in Tunisian spreadsheets.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, "2006-01-02", "02/01/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// TotalsByCategory sums the transactions matching q's user and kind that fall
// in [from, to). Rows are ordered by amount, largest first; ties keep the
// order in which categories were first seen.
func TotalsByCategory(txs []Transaction, q Query, from, to time.Time) []CategoryTotal {
	sums := map[string]int64{}
	var order []string
	for _, t := range txs {
		if t.UserID != q.UserID || t.Kind != q.Kind {
			continue
		}
		if t.OccurredAt.Before(from) || !t.OccurredAt.Before(to) {
			continue
		}
		if _, seen := sums[t.Category]; !seen {
			order = append(order, t.Category)
		}
		sums[t.Category] += t.Amount.Millimes
	}

	out := make([]CategoryTotal, 0, len(order))
	for _, name := range order {
		out = append(out, CategoryTotal{Category: name, Amount: Money{Millimes: sums[name]}.Dinars()})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Amount > out[j].Amount })
	return out
}
