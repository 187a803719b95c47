package memory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"flousi/internal/core"
	ports "flousi/internal/sheets"
)

var (
	_ ports.CategoryTotalsReader = (*Store)(nil)
	_ ports.SnapshotWriter       = (*Store)(nil)
	_ ports.UserLister           = (*Store)(nil)
	_ ports.TransactionSeeder    = (*Store)(nil)
	_ ports.CategoryTotalsReader = Fallback{}
)

// Store keeps transactions and snapshots in process memory.
type Store struct {
	mu        sync.Mutex
	items     []core.Transaction
	cats      map[string]core.Category
	snapshots []core.Snapshot
	now       func() time.Time
}

func New() *Store {
	return &Store{cats: map[string]core.Category{}, now: time.Now}
}

// NewFromFiles loads seed_transactions.csv from base. Missing files leave the
// store empty; malformed lines are skipped.
func NewFromFiles(base string) (*Store, error) {
	s := New()
	f, err := os.Open(filepath.Join(base, "seed_transactions.csv"))
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	txs, err := ReadTransactionsCSV(f)
	if err != nil {
		return nil, err
	}
	s.items = txs
	return s, nil
}

// ReadTransactionsCSV parses lines of "user,kind,category,amount,date".
// Dates are YYYY-MM-DD or RFC 3339. Comment lines start with '#'.
func ReadTransactionsCSV(r io.Reader) ([]core.Transaction, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var out []core.Transaction
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read seed csv: %w", err)
		}
		if len(rec) < 5 {
			continue
		}
		tx, ok := parseRecord(rec)
		if !ok {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func parseRecord(rec []string) (core.Transaction, bool) {
	kind, err := core.ParseKind(rec[1])
	if err != nil {
		return core.Transaction{}, false
	}
	millimes, err := core.ParseDecimalToMillimes(rec[3])
	if err != nil {
		return core.Transaction{}, false
	}
	at, ok := core.ParseDate(rec[4])
	if !ok {
		return core.Transaction{}, false
	}
	tx := core.Transaction{
		UserID:     strings.TrimSpace(rec[0]),
		Kind:       kind,
		Category:   strings.TrimSpace(rec[2]),
		Amount:     core.Money{Millimes: millimes},
		OccurredAt: at,
	}
	return tx, tx.Validate() == nil
}

// SetClock replaces the clock used to resolve period bounds.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// InsertTransactions appends txs after validating all of them.
func (s *Store) InsertTransactions(_ context.Context, txs ...core.Transaction) error {
	for _, t := range txs {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, txs...)
	return nil
}

// UpsertCategory stores display attributes applied to matching totals.
func (s *Store) UpsertCategory(_ context.Context, c core.Category) error {
	if err := c.Kind.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cats[categoryKey(c.UserID, c.Kind, c.Name)] = c
	return nil
}

func (s *Store) FetchCategoryTotals(_ context.Context, q core.Query) ([]core.CategoryTotal, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	from, to := q.Period.Bounds(s.now())
	rows := core.TotalsByCategory(s.items, q, from, to)
	for i := range rows {
		if c, ok := s.cats[categoryKey(q.UserID, q.Kind, rows[i].Category)]; ok {
			rows[i].Color = c.Color
			rows[i].Icon = c.Icon
		}
	}
	return rows, nil
}

func (s *Store) ListUsers(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]struct{}{}
	var users []string
	for _, t := range s.items {
		if _, ok := seen[t.UserID]; ok {
			continue
		}
		seen[t.UserID] = struct{}{}
		users = append(users, t.UserID)
	}
	sort.Strings(users)
	return users, nil
}

// WriteSnapshot records the snapshot and returns a synthetic reference.
func (s *Store) WriteSnapshot(_ context.Context, snap core.Snapshot) (string, error) {
	if strings.TrimSpace(snap.UserID) == "" {
		return "", core.ErrEmptyUserID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, snap)
	return fmt.Sprintf("mem:%d", len(s.snapshots)), nil
}

// Snapshots returns a copy of the recorded snapshots.
func (s *Store) Snapshots() []core.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Snapshot(nil), s.snapshots...)
}

func categoryKey(user string, kind core.TransactionKind, name string) string {
	return user + "|" + string(kind) + "|" + name
}
