package http

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"flousi/internal/core"
	"flousi/internal/i18n"
)

var (
	errInvalidIndex = errors.New("invalid selected index")
	errUserTooLong  = errors.New("user id too long")
)

const maxUserIDLength = 128

// ParseQuery reads user, period and mode. Mode accepts "expense(s)" and
// "income(s)"; missing period and mode default to month and expense. An
// empty user falls back to defaultUser.
func ParseQuery(values url.Values, defaultUser string) (core.Query, error) {
	user := sanitizeInput(values.Get("user"))
	if user == "" {
		user = defaultUser
	}
	if len(user) > maxUserIDLength {
		return core.Query{}, errUserTooLong
	}
	period, err := core.ParsePeriod(values.Get("period"))
	if err != nil {
		return core.Query{}, err
	}
	kind, err := core.ParseKind(values.Get("mode"))
	if err != nil {
		return core.Query{}, err
	}
	q := core.Query{UserID: user, Period: period, Kind: kind}
	return q, q.Validate()
}

// ParseIndex reads an optional non-negative index; absent means nil.
// Large values are accepted and clamped by the selection.
func ParseIndex(values url.Values, key string) (*int, error) {
	v := strings.TrimSpace(values.Get(key))
	if v == "" {
		return nil, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil || i < 0 {
		return nil, errInvalidIndex
	}
	return &i, nil
}

// ParsePreferences takes locale and theme from the query string, falling back
// to Accept-Language and then to the server default.
func ParsePreferences(r *http.Request, fallback i18n.Locale) i18n.Preferences {
	q := r.URL.Query()
	prefs := i18n.NewPreferences("", q.Get("theme"))
	if l, ok := i18n.ParseLocale(q.Get("locale")); ok {
		prefs.Locale = l
		return prefs
	}
	prefs.Locale = i18n.MatchAcceptLanguage(r.Header.Get("Accept-Language"), fallback)
	return prefs
}
