package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"flousi/internal/core"
	"flousi/internal/log"
	ports "flousi/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Options names the spreadsheet and the tabs the client works with.
type Options struct {
	SpreadsheetID     string
	TransactionsSheet string
	// ReportSheet is a base name; snapshots go to "<year> <ReportSheet>".
	ReportSheet string
}

type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	transactionsSheet string
	reportBase        string
	logger            *log.Logger
	now               func() time.Time
}

// Ensure interface conformance
var (
	_ ports.CategoryTotalsReader = (*Client)(nil)
	_ ports.SnapshotWriter       = (*Client)(nil)
	_ ports.UserLister           = (*Client)(nil)
)

// NewFromEnv creates a Sheets client authenticated with a service account.
// Credentials come from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE
// or GOOGLE_APPLICATION_CREDENTIALS, in that order.
func NewFromEnv(ctx context.Context, opts Options, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if logger == nil {
		logger = log.Discard()
	}
	svc, err := newSheetsService(ctx, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return New(svc, opts, logger), nil
}

// New wraps an existing service.
func New(svc *gsheet.Service, opts Options, logger *log.Logger) *Client {
	if opts.TransactionsSheet == "" {
		opts.TransactionsSheet = "Transactions"
	}
	if opts.ReportSheet == "" {
		opts.ReportSheet = "Analytics"
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Client{
		svc:               svc,
		spreadsheetID:     strings.TrimSpace(opts.SpreadsheetID),
		transactionsSheet: strings.TrimSpace(opts.TransactionsSheet),
		reportBase:        strings.TrimSpace(opts.ReportSheet),
		logger:            logger.WithComponent(log.ComponentSheets),
		now:               time.Now,
	}
}

// SetClock replaces the clock used for period bounds and snapshot naming.
func (c *Client) SetClock(now func() time.Time) {
	c.now = now
}

func newSheetsService(ctx context.Context, logger *log.Logger) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		logger.InfoContext(ctx, "Using inline service account credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		logger.InfoContext(ctx, "Reading service account credentials", "path", serviceAccountFile)
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// FetchCategoryTotals reads the transactions tab and sums the query's rows
// within the current period.
func (c *Client) FetchCategoryTotals(ctx context.Context, q core.Query) ([]core.CategoryTotal, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	txs, err := c.readTransactions(ctx)
	if err != nil {
		return nil, err
	}
	from, to := q.Period.Bounds(c.now())
	return core.TotalsByCategory(txs, q, from, to), nil
}

// ListUsers returns the distinct users of the transactions tab, in sheet order.
func (c *Client) ListUsers(ctx context.Context) ([]string, error) {
	txs, err := c.readTransactions(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	var users []string
	for _, t := range txs {
		if _, ok := seen[t.UserID]; ok {
			continue
		}
		seen[t.UserID] = struct{}{}
		users = append(users, t.UserID)
	}
	return users, nil
}

func (c *Client) readTransactions(ctx context.Context) ([]core.Transaction, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:E", c.transactionsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	txs, skipped := parseTransactions(resp.Values)
	if skipped > 0 {
		c.logger.DebugContext(ctx, "Skipped unparseable transaction rows", "range", rng, "skipped", skipped)
	}
	return txs, nil
}

// WriteSnapshot appends one row per category to the year's report tab and
// returns the updated range.
func (c *Client) WriteSnapshot(ctx context.Context, s core.Snapshot) (string, error) {
	if strings.TrimSpace(s.UserID) == "" {
		return "", core.ErrEmptyUserID
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	rows := snapshotRows(s)
	if len(rows) == 0 {
		return "", nil
	}

	taken := s.TakenAt
	if taken.IsZero() {
		taken = c.now()
	}
	sheet := yearPrefixedName(c.reportBase, taken.Year())
	rng := fmt.Sprintf("%s!A:G", sheet)
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, &gsheet.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append snapshot to %s: %w", sheet, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	c.logger.InfoContext(ctx, "Snapshot written",
		log.FieldUserID, s.UserID,
		log.FieldPeriod, string(s.Period),
		"rows", len(rows),
		"range", ref)
	return ref, nil
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
