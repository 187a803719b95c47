package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"flousi/internal/core"
	"flousi/internal/i18n"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    core.Query
		wantErr error
	}{
		{"defaults", "", core.Query{UserID: "demo", Period: core.Month, Kind: core.Expense}, nil},
		{"plural mode", "user=u1&mode=incomes&period=week", core.Query{UserID: "u1", Period: core.Week, Kind: core.Income}, nil},
		{"mixed case", "user=u1&mode=Expense&period=YEAR", core.Query{UserID: "u1", Period: core.Year, Kind: core.Expense}, nil},
		{"control characters stripped", "user=u%001", core.Query{UserID: "u1", Period: core.Month, Kind: core.Expense}, nil},
		{"bad period", "period=quarter", core.Query{}, core.ErrInvalidPeriod},
		{"bad mode", "mode=savings", core.Query{}, core.ErrInvalidKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, _ := url.ParseQuery(tt.query)
			got, err := ParseQuery(values, "demo")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseQuery() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseQuery() = %+v, want %+v", got, tt.want)
			}
		})
	}

	if _, err := ParseQuery(url.Values{}, ""); !errors.Is(err, core.ErrEmptyUserID) {
		t.Errorf("missing user without default: error = %v", err)
	}
}

func TestParseIndex(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		isNil   bool
		wantErr bool
	}{
		{raw: "", isNil: true},
		{raw: "0", want: 0},
		{raw: " 7 ", want: 7},
		{raw: "-2", wantErr: true},
		{raw: "two", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseIndex(url.Values{"selected": {tt.raw}}, "selected")
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseIndex(%q) error = %v", tt.raw, err)
			}
			if tt.wantErr {
				return
			}
			if tt.isNil != (got == nil) {
				t.Fatalf("ParseIndex(%q) = %v, nil expected %v", tt.raw, got, tt.isNil)
			}
			if got != nil && *got != tt.want {
				t.Errorf("ParseIndex(%q) = %d, want %d", tt.raw, *got, tt.want)
			}
		})
	}
}

func TestParsePreferences(t *testing.T) {
	tests := []struct {
		name   string
		target string
		accept string
		want   i18n.Preferences
	}{
		{"query wins", "/?locale=en&theme=dark", "fr-FR", i18n.Preferences{Locale: i18n.English, Theme: i18n.Dark}},
		{"accept language", "/", "fr-TN,fr;q=0.8", i18n.Preferences{Locale: i18n.French, Theme: i18n.Light}},
		{"unknown falls back", "/?locale=xx", "", i18n.Preferences{Locale: i18n.Tunisian, Theme: i18n.Light}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.accept != "" {
				req.Header.Set("Accept-Language", tt.accept)
			}
			if got := ParsePreferences(req, i18n.Tunisian); got != tt.want {
				t.Errorf("ParsePreferences() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
