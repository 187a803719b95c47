package i18n

import (
	"strings"
	"testing"

	"flousi/internal/core"
)

func TestCatalogComplete(t *testing.T) {
	for _, l := range supported {
		tbl, ok := catalog[l]
		if !ok {
			t.Fatalf("no table for %s", l)
		}
		for k := MessageKey(0); k < numMessageKeys; k++ {
			if strings.TrimSpace(tbl[k]) == "" {
				t.Errorf("%s: message %d is empty", l, k)
			}
		}
	}
}

func TestTFallsBackToEnglish(t *testing.T) {
	if got := Locale("de").T(MsgTotal); got != "Total" {
		t.Fatalf("T = %q", got)
	}
	if got := English.T(numMessageKeys); got != "" {
		t.Fatalf("out-of-range key = %q", got)
	}
}

func TestParseLocale(t *testing.T) {
	tests := []struct {
		in   string
		want Locale
		ok   bool
	}{
		{"tn", Tunisian, true},
		{"AR-TN", Tunisian, true},
		{"fr", French, true},
		{"fr-CA", French, true},
		{"en-AU", English, true},
		{"", "", false},
		{"not a tag!", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseLocale(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseLocale(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestMatchAcceptLanguage(t *testing.T) {
	if got := MatchAcceptLanguage("fr-FR,fr;q=0.9,en;q=0.8", English); got != French {
		t.Errorf("got %s, want fr", got)
	}
	if got := MatchAcceptLanguage("", Tunisian); got != Tunisian {
		t.Errorf("empty header got %s", got)
	}
}

func TestDirection(t *testing.T) {
	if Tunisian.Direction() != "rtl" || French.Direction() != "ltr" {
		t.Fatal("unexpected text direction")
	}
}

func TestFormatAmount(t *testing.T) {
	en := Preferences{Locale: English}.FormatAmount(1234.5)
	if en != "1,234.500 DT" {
		t.Errorf("en = %q", en)
	}

	fr := Preferences{Locale: French}.FormatAmount(1234.5)
	if !strings.HasSuffix(fr, ",500 DT") || !strings.HasPrefix(fr, "1") {
		t.Errorf("fr = %q", fr)
	}

	tn := Preferences{Locale: Tunisian}.FormatAmount(12)
	if !strings.HasSuffix(tn, " د.ت") {
		t.Errorf("tn = %q", tn)
	}
}

func TestNewPreferences(t *testing.T) {
	p := NewPreferences("en", "DARK")
	if p.Locale != English || p.Theme != Dark {
		t.Fatalf("prefs = %+v", p)
	}
	if d := NewPreferences("xx", ""); d != DefaultPreferences() {
		t.Fatalf("unknown values should keep defaults, got %+v", d)
	}
}

func TestLabels(t *testing.T) {
	p := Preferences{Locale: English}
	if p.T(KindKey(core.Income)) != "Income" || p.T(PeriodKey(core.Week)) != "This week" {
		t.Fatal("kind/period labels")
	}
	if got := p.CategoryLabel("public transport"); got != "Public Transport" {
		t.Fatalf("CategoryLabel = %q", got)
	}
}
