package render

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"flousi/internal/analytics"
	"flousi/internal/core"
	"flousi/internal/i18n"
)

func report(t *testing.T, tap *int, rows ...core.CategoryTotal) analytics.Report {
	t.Helper()
	svc := analytics.NewService(analytics.FetcherFunc(func(context.Context, core.Query) ([]core.CategoryTotal, error) {
		return rows, nil
	}))
	r, err := svc.Report(context.Background(), core.Query{UserID: "u1", Period: core.Month, Kind: core.Expense}, tap)
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	return r
}

func TestDonutSVG(t *testing.T) {
	rd, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	r := report(t, nil,
		core.CategoryTotal{Category: "food", Amount: 450, Color: "#FF0000"},
		core.CategoryTotal{Category: "transport", Amount: 300},
		core.CategoryTotal{Category: "bills", Amount: 0},
	)

	var buf bytes.Buffer
	if err := rd.DonutSVG(&buf, r, analytics.DefaultLayout(), i18n.Preferences{Locale: i18n.English, Theme: i18n.Light}); err != nil {
		t.Fatalf("DonutSVG() error = %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "<svg") {
		t.Fatalf("output is not an svg document: %.60s", out)
	}
	// The zero-amount category has no drawable path.
	if got := strings.Count(out, "<path"); got != 2 {
		t.Errorf("paths = %d, want 2", got)
	}
	if !strings.Contains(out, `class="segment selected" data-index="0"`) {
		t.Errorf("largest segment not selected: %s", out)
	}
	if !strings.Contains(out, `fill-opacity="0.7"`) {
		t.Errorf("unselected segments not dimmed")
	}
	if !strings.Contains(out, "450.000 DT") || !strings.Contains(out, "Food") {
		t.Errorf("center label missing selected amount: %s", out)
	}
}

func TestDonutSVG_Empty(t *testing.T) {
	rd, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	var buf bytes.Buffer
	if err := rd.DonutSVG(&buf, report(t, nil), analytics.DefaultLayout(), i18n.Preferences{Locale: i18n.French}); err != nil {
		t.Fatalf("DonutSVG() error = %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "<path") {
		t.Errorf("empty chart drew segments")
	}
	if !strings.Contains(out, "<circle") || !strings.Contains(out, "Aucune donnée") {
		t.Errorf("empty chart missing placeholder: %s", out)
	}
}

func TestPage(t *testing.T) {
	rd, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	tap := 1
	r := report(t, &tap,
		core.CategoryTotal{Category: "food", Amount: 10},
		core.CategoryTotal{Category: "rent", Amount: 90},
	)
	r.FromFallback = true

	var buf bytes.Buffer
	prefs := i18n.Preferences{Locale: i18n.Tunisian, Theme: i18n.Dark}
	if err := rd.Page(&buf, r, analytics.DefaultLayout(), prefs); err != nil {
		t.Fatalf("Page() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{`dir="rtl"`, "theme-dark", "المصاريف", "<svg", `class="row selected"`, "selected=1", `value="90"`} {
		if !strings.Contains(out, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if !strings.Contains(out, i18n.Tunisian.T(i18n.MsgFallbackNotice)) {
		t.Errorf("fallback notice not shown")
	}
}
