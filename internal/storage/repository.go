// Package storage holds the SQL-backed transaction stores: an embedded
// SQLite database for local use and a Postgres (Supabase) database.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"flousi/internal/core"

	_ "modernc.org/sqlite"
)

// timeLayout is how occurred_at is stored. Lexical order matches time order.
const timeLayout = "2006-01-02T15:04:05Z"

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

// SetClock replaces the clock used to resolve period bounds.
func (r *SQLiteRepository) SetClock(now func() time.Time) {
	r.now = now
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const categoryTotalsSQL = `
SELECT t.category,
       CAST(SUM(t.amount_millimes) AS INTEGER) AS total,
       COALESCE(c.color, '') AS color,
       COALESCE(c.icon, '') AS icon
FROM transactions t
LEFT JOIN categories c
       ON c.user_id = t.user_id AND c.kind = t.kind AND c.name = t.category
WHERE t.user_id = ? AND t.kind = ? AND t.occurred_at >= ? AND t.occurred_at < ?
GROUP BY t.category, c.color, c.icon
ORDER BY total DESC, t.category`

// FetchCategoryTotals sums the query's transactions per category within the
// current period.
func (r *SQLiteRepository) FetchCategoryTotals(ctx context.Context, q core.Query) ([]core.CategoryTotal, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	from, to := q.Period.Bounds(r.now())

	rows, err := r.db.QueryContext(ctx, categoryTotalsSQL,
		q.UserID, string(q.Kind), from.UTC().Format(timeLayout), to.UTC().Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("query category totals: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryTotal
	for rows.Next() {
		var (
			ct       core.CategoryTotal
			millimes int64
		)
		if err := rows.Scan(&ct.Category, &millimes, &ct.Color, &ct.Icon); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		ct.Amount = core.Money{Millimes: millimes}.Dinars()
		out = append(out, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category totals: %w", err)
	}
	return out, nil
}

// InsertTransactions stores txs in a single transaction.
func (r *SQLiteRepository) InsertTransactions(ctx context.Context, txs ...core.Transaction) error {
	for _, t := range txs {
		if err := t.Validate(); err != nil {
			return err
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO transactions (user_id, kind, category, amount_millimes, occurred_at)
VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range txs {
		if _, err := stmt.ExecContext(ctx, t.UserID, string(t.Kind), t.Category, t.Amount.Millimes,
			t.OccurredAt.UTC().Format(timeLayout)); err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
	}
	return tx.Commit()
}

// UpsertCategory stores the display attributes of a category.
func (r *SQLiteRepository) UpsertCategory(ctx context.Context, c core.Category) error {
	if err := c.Kind.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO categories (user_id, kind, name, color, icon)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (user_id, kind, name) DO UPDATE SET color = excluded.color, icon = excluded.icon`,
		c.UserID, string(c.Kind), c.Name, c.Color, c.Icon)
	if err != nil {
		return fmt.Errorf("upsert category %s: %w", c.Name, err)
	}
	return nil
}

// ListUsers returns every user that has at least one transaction.
func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM transactions ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
