package i18n

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Locale is one of the supported UI languages.
type Locale string

const (
	Tunisian Locale = "tn"
	French   Locale = "fr"
	English  Locale = "en"
)

// Theme selects the color scheme of rendered charts.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

var (
	supported = []Locale{English, French, Tunisian}
	matcher   = language.NewMatcher([]language.Tag{
		language.English,
		language.French,
		language.MustParse("ar-TN"),
	})
)

// Tag is the BCP 47 tag used for number formatting.
func (l Locale) Tag() language.Tag {
	switch l {
	case Tunisian:
		return language.MustParse("ar-TN")
	case French:
		return language.French
	default:
		return language.English
	}
}

// RTL reports whether the locale is written right to left.
func (l Locale) RTL() bool {
	return l == Tunisian
}

// Direction is the value of an HTML/SVG dir attribute.
func (l Locale) Direction() string {
	if l.RTL() {
		return "rtl"
	}
	return "ltr"
}

// ParseLocale accepts the app's short codes and BCP 47 tags.
func ParseLocale(s string) (Locale, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "tn", "aeb", "ar", "ar-tn":
		return Tunisian, true
	case "fr", "fr-fr", "fr-tn":
		return French, true
	case "en", "en-us", "en-gb":
		return English, true
	case "":
		return "", false
	}
	tag, err := language.Parse(s)
	if err != nil {
		return "", false
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return "", false
	}
	return supported[idx], true
}

// MatchAcceptLanguage picks the best locale for an Accept-Language header.
func MatchAcceptLanguage(header string, fallback Locale) Locale {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return fallback
	}
	return supported[idx]
}

// Preferences replaces the app-wide language and theme stores. Callers
// build one per request or command and pass it down.
type Preferences struct {
	Locale Locale
	Theme  Theme
}

// DefaultPreferences is French on a light theme, the app's first-run setting.
func DefaultPreferences() Preferences {
	return Preferences{Locale: French, Theme: Light}
}

// NewPreferences parses raw values, keeping defaults for anything unknown.
func NewPreferences(locale, theme string) Preferences {
	p := DefaultPreferences()
	if l, ok := ParseLocale(locale); ok {
		p.Locale = l
	}
	if Theme(strings.ToLower(strings.TrimSpace(theme))) == Dark {
		p.Theme = Dark
	}
	return p
}

func (p Preferences) T(key MessageKey) string {
	return p.Locale.T(key)
}

// CategoryLabel title-cases a category name for display.
func (p Preferences) CategoryLabel(name string) string {
	if p.Locale.RTL() {
		return name
	}
	return cases.Title(p.Locale.Tag()).String(name)
}
