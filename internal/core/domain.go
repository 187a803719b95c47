package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Expense TransactionKind = "expense"
	Income  TransactionKind = "income"
)

const (
	Week  Period = "week"
	Month Period = "month"
	Year  Period = "year"
)

type (
	// TransactionKind selects which side of the ledger a view aggregates.
	TransactionKind string

	// Period is the time window a view aggregates over.
	Period string

	// Query identifies one category breakdown.
	Query struct {
		UserID string
		Period Period
		Kind   TransactionKind
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidPeriod = errors.New("invalid period")
	ErrInvalidKind   = errors.New("invalid transaction kind")
	ErrEmptyUserID   = errors.New("empty user id")
)

// ParseKind accepts the singular and plural spellings used by clients.
func ParseKind(s string) (TransactionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "expense", "expenses":
		return Expense, nil
	case "income", "incomes":
		return Income, nil
	default:
		return "", ErrInvalidKind
	}
}

func (k TransactionKind) Validate() error {
	switch k {
	case Expense, Income:
		return nil
	default:
		return ErrInvalidKind
	}
}

// Toggle returns the other kind.
func (k TransactionKind) Toggle() TransactionKind {
	if k == Income {
		return Expense
	}
	return Income
}

func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return Month, nil
	case Week, Month, Year:
		return p, nil
	default:
		return "", ErrInvalidPeriod
	}
}

func (p Period) Validate() error {
	switch p {
	case Week, Month, Year:
		return nil
	default:
		return ErrInvalidPeriod
	}
}

// Bounds returns the half-open interval [from, to) of the period containing now.
// Weeks start on Monday.
func (p Period) Bounds(now time.Time) (from, to time.Time) {
	y, m, d := now.Date()
	loc := now.Location()
	switch p {
	case Week:
		offset := (int(now.Weekday()) + 6) % 7
		from = time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
		return from, from.AddDate(0, 0, 7)
	case Year:
		from = time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		return from, from.AddDate(1, 0, 0)
	default:
		from = time.Date(y, m, 1, 0, 0, 0, 0, loc)
		return from, from.AddDate(0, 1, 0)
	}
}

func (q Query) Validate() error {
	if strings.TrimSpace(q.UserID) == "" {
		return ErrEmptyUserID
	}
	if err := q.Period.Validate(); err != nil {
		return err
	}
	return q.Kind.Validate()
}

// Key is a stable identifier used for caching.
func (q Query) Key() string {
	return q.UserID + "|" + string(q.Period) + "|" + string(q.Kind)
}
