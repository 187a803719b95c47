package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"flousi/internal/core"
)

// ErrUnavailable marks failures caused by the database not answering, as
// opposed to bad input.
var ErrUnavailable = errors.New("database unavailable")

const postgresSchema = `
CREATE TABLE IF NOT EXISTS categories (
    user_id TEXT NOT NULL,
    kind    TEXT NOT NULL CHECK (kind IN ('expense', 'income')),
    name    TEXT NOT NULL,
    color   TEXT NOT NULL DEFAULT '',
    icon    TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (user_id, kind, name)
);
CREATE TABLE IF NOT EXISTS transactions (
    id          BIGSERIAL PRIMARY KEY,
    user_id     TEXT NOT NULL,
    kind        TEXT NOT NULL CHECK (kind IN ('expense', 'income')),
    category    TEXT NOT NULL,
    amount      NUMERIC(14, 3) NOT NULL CHECK (amount > 0),
    occurred_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transactions_user_kind_date
    ON transactions (user_id, kind, occurred_at);`

// PostgresRepository reads transactions from a Supabase Postgres database.
type PostgresRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostgresRepository connects to dsn and makes sure the schema exists.
func NewPostgresRepository(ctx context.Context, dsn string) (*PostgresRepository, error) {
	if _, err := pq.ParseURL(dsn); err != nil {
		return nil, fmt.Errorf("parse postgres url: %w", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping: %v", ErrUnavailable, err)
	}
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", classify(err))
	}

	return &PostgresRepository{db: db, now: time.Now}, nil
}

// SetClock replaces the clock used to resolve period bounds.
func (r *PostgresRepository) SetClock(now func() time.Time) {
	r.now = now
}

func (r *PostgresRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

const pgCategoryTotalsSQL = `
SELECT t.category,
       SUM(t.amount)::float8 AS total,
       COALESCE(c.color, '') AS color,
       COALESCE(c.icon, '') AS icon
FROM transactions t
LEFT JOIN categories c
       ON c.user_id = t.user_id AND c.kind = t.kind AND c.name = t.category
WHERE t.user_id = $1 AND t.kind = $2 AND t.occurred_at >= $3 AND t.occurred_at < $4
GROUP BY t.category, c.color, c.icon
ORDER BY total DESC, t.category`

func (r *PostgresRepository) FetchCategoryTotals(ctx context.Context, q core.Query) ([]core.CategoryTotal, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	from, to := q.Period.Bounds(r.now())

	rows, err := r.db.QueryContext(ctx, pgCategoryTotalsSQL, q.UserID, string(q.Kind), from, to)
	if err != nil {
		return nil, fmt.Errorf("query category totals: %w", classify(err))
	}
	defer rows.Close()

	var out []core.CategoryTotal
	for rows.Next() {
		var ct core.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Amount, &ct.Color, &ct.Icon); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		out = append(out, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category totals: %w", classify(err))
	}
	return out, nil
}

func (r *PostgresRepository) InsertTransactions(ctx context.Context, txs ...core.Transaction) error {
	for _, t := range txs {
		if err := t.Validate(); err != nil {
			return err
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", classify(err))
	}
	defer tx.Rollback()

	for _, t := range txs {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO transactions (user_id, kind, category, amount, occurred_at)
VALUES ($1, $2, $3, $4, $5)`,
			t.UserID, string(t.Kind), t.Category, t.Amount.Dinars(), t.OccurredAt.UTC()); err != nil {
			return fmt.Errorf("insert transaction: %w", classify(err))
		}
	}
	return tx.Commit()
}

func (r *PostgresRepository) UpsertCategory(ctx context.Context, c core.Category) error {
	if err := c.Kind.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO categories (user_id, kind, name, color, icon)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id, kind, name) DO UPDATE SET color = EXCLUDED.color, icon = EXCLUDED.icon`,
		c.UserID, string(c.Kind), c.Name, c.Color, c.Icon)
	if err != nil {
		return fmt.Errorf("upsert category %s: %w", c.Name, classify(err))
	}
	return nil
}

func (r *PostgresRepository) ListUsers(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM transactions ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", classify(err))
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

// classify tags connection-class Postgres errors with ErrUnavailable.
func classify(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "08", "53", "57":
			return fmt.Errorf("%w: %s (%s)", ErrUnavailable, pqErr.Message, pqErr.Code)
		}
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}
