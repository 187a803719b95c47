package google

import (
	"fmt"
	"strconv"
	"strings"

	"flousi/internal/core"
)

// parseTransactions converts a values matrix from the transactions tab
// (Date, User, Kind, Category, Amount) into transactions. A leading header
// row is ignored; other rows that do not parse are counted as skipped.
func parseTransactions(values [][]interface{}) (txs []core.Transaction, skipped int) {
	for i, raw := range values {
		row := toStrings(raw)
		if len(row) == 0 || strings.Join(row, "") == "" {
			continue
		}
		at, ok := core.ParseDate(safeGet(row, 0))
		if !ok {
			if i == 0 {
				continue
			}
			skipped++
			continue
		}
		kind, err := core.ParseKind(safeGet(row, 2))
		if err != nil {
			skipped++
			continue
		}
		millimes, err := core.ParseDecimalToMillimes(safeGet(row, 4))
		if err != nil {
			skipped++
			continue
		}
		category := safeGet(row, 3)
		if category == "" {
			category = "other"
		}
		tx := core.Transaction{
			UserID:     safeGet(row, 1),
			Kind:       kind,
			Category:   category,
			Amount:     core.Money{Millimes: millimes},
			OccurredAt: at,
		}
		if tx.Validate() != nil {
			skipped++
			continue
		}
		txs = append(txs, tx)
	}
	return txs, skipped
}

// snapshotRows lays out a snapshot as
// Date | User | Kind | Period | Category | Amount | Percentage.
func snapshotRows(s core.Snapshot) [][]interface{} {
	date := s.TakenAt.Format("2006-01-02")
	rows := make([][]interface{}, 0, len(s.Categories))
	for _, c := range s.Categories {
		rows = append(rows, []interface{}{
			date,
			s.UserID,
			string(s.Kind),
			string(s.Period),
			c.Category,
			strconv.FormatFloat(c.Amount, 'f', 3, 64),
			strconv.FormatFloat(c.Percentage, 'f', 1, 64),
		})
	}
	return rows
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
