// Package render draws analytics reports as an SVG donut and as the
// server-side analytics page.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strconv"

	"flousi/internal/analytics"
	"flousi/internal/core"
	"flousi/internal/i18n"
	appweb "flousi/web"
)

const (
	donutTemplate = "donut.svg"
	pageTemplate  = "analytics.html"
)

// Segments not under the selection are dimmed.
const dimmedOpacity = "0.7"

type palette struct {
	Text, Muted, Track string
}

var themes = map[i18n.Theme]palette{
	i18n.Light: {Text: "#1F2937", Muted: "#6B7280", Track: "#E5E7EB"},
	i18n.Dark:  {Text: "#F9FAFB", Muted: "#9CA3AF", Track: "#374151"},
}

// Renderer executes the embedded templates.
type Renderer struct {
	templates *template.Template
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	t, err := template.New("flousi").
		Funcs(template.FuncMap{"num": formatNum}).
		ParseFS(appweb.TemplatesFS, "templates/*.html", "templates/*.svg")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{templates: t}, nil
}

type segmentView struct {
	Index    int
	Path     string
	Color    string
	Opacity  string
	Selected bool
	Label    string
}

type donutView struct {
	Title      string
	Dir        string
	Size       float64
	Center     float64
	Empty      bool
	Segments   []segmentView
	Heading    string
	Value      string
	Detail     string
	LabelY     float64
	ValueY     float64
	DetailY    float64
	TextColor  string
	MutedColor string

	TrackColor  string
	TrackRadius float64
	TrackWidth  float64
}

// DonutSVG writes the chart of r as a standalone SVG document.
func (rd *Renderer) DonutSVG(w io.Writer, r analytics.Report, layout analytics.Layout, prefs i18n.Preferences) error {
	return rd.templates.ExecuteTemplate(w, donutTemplate, buildDonut(r, layout, prefs))
}

func buildDonut(r analytics.Report, layout analytics.Layout, prefs i18n.Preferences) donutView {
	layout = layout.Normalize()
	colors, ok := themes[prefs.Theme]
	if !ok {
		colors = themes[i18n.Light]
	}
	center := r.Chart.Size / 2
	if center <= 0 {
		center = layout.Size / 2
	}

	v := donutView{
		Title:       prefs.T(i18n.MsgAnalyticsTitle) + " · " + prefs.T(i18n.KindKey(r.Kind)),
		Dir:         prefs.Locale.Direction(),
		Size:        center * 2,
		Center:      center,
		Empty:       len(r.Chart.Segments) == 0,
		LabelY:      center - 14,
		ValueY:      center + 6,
		DetailY:     center + 24,
		TextColor:   colors.Text,
		MutedColor:  colors.Muted,
		TrackColor:  colors.Track,
		TrackRadius: (layout.OuterRadius + layout.InnerRadius) / 2,
		TrackWidth:  layout.OuterRadius - layout.InnerRadius,
	}

	anySelected := false
	for _, seg := range r.Chart.Segments {
		if seg.IsSelected {
			anySelected = true
		}
	}
	for _, seg := range r.Chart.Segments {
		opacity := "1"
		if anySelected && !seg.IsSelected {
			opacity = dimmedOpacity
		}
		v.Segments = append(v.Segments, segmentView{
			Index:    seg.Index,
			Path:     seg.PathDescriptor,
			Color:    seg.Color,
			Opacity:  opacity,
			Selected: seg.IsSelected,
			Label:    prefs.CategoryLabel(seg.Category) + " " + prefs.FormatPercent(seg.Percentage),
		})
	}

	if sel := r.Chart.Selected; sel != nil && !v.Empty {
		v.Heading = prefs.CategoryLabel(sel.Category)
		v.Value = prefs.FormatAmount(sel.Amount)
		v.Detail = prefs.FormatPercent(sel.Percentage)
	} else {
		v.Heading = prefs.T(i18n.MsgTotal)
		v.Value = prefs.FormatAmount(r.Total)
		if v.Empty {
			v.Detail = prefs.T(i18n.MsgNoData)
		}
	}
	return v
}

type linkView struct {
	Label  string
	Href   string
	Active bool
}

type rowView struct {
	Icon     string
	Label    string
	Amount   string
	Percent  string
	BarWidth int
	Selected bool
	Href     string
}

type pageView struct {
	Lang              string
	Dir               string
	Theme             string
	Title             string
	Modes             []linkView
	Periods           []linkView
	FallbackNotice    string
	Donut             donutView
	CategoriesHeading string
	Rows              []rowView
	NoData            string
}

// Page writes the analytics screen as HTML. Links keep the user, locale and
// theme and change one of mode, period or selected index.
func (rd *Renderer) Page(w io.Writer, r analytics.Report, layout analytics.Layout, prefs i18n.Preferences) error {
	var buf bytes.Buffer
	if err := rd.templates.ExecuteTemplate(&buf, pageTemplate, buildPage(r, layout, prefs)); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

func buildPage(r analytics.Report, layout analytics.Layout, prefs i18n.Preferences) pageView {
	link := func(kind core.TransactionKind, period core.Period, selected int) string {
		q := url.Values{}
		q.Set("user", r.UserID)
		q.Set("mode", string(kind))
		q.Set("period", string(period))
		q.Set("locale", string(prefs.Locale))
		q.Set("theme", string(prefs.Theme))
		if selected >= 0 {
			q.Set("selected", strconv.Itoa(selected))
		}
		return "/?" + q.Encode()
	}

	p := pageView{
		Lang:              string(prefs.Locale),
		Dir:               prefs.Locale.Direction(),
		Theme:             string(prefs.Theme),
		Title:             prefs.T(i18n.MsgAnalyticsTitle),
		Donut:             buildDonut(r, layout, prefs),
		CategoriesHeading: prefs.T(i18n.MsgCategories),
		NoData:            prefs.T(i18n.MsgNoData),
	}
	if p.Theme == "" {
		p.Theme = string(i18n.Light)
	}
	if r.FromFallback {
		p.FallbackNotice = prefs.T(i18n.MsgFallbackNotice)
	}
	for _, k := range []core.TransactionKind{core.Expense, core.Income} {
		p.Modes = append(p.Modes, linkView{Label: prefs.T(i18n.KindKey(k)), Href: link(k, r.Period, -1), Active: k == r.Kind})
	}
	for _, per := range []core.Period{core.Week, core.Month, core.Year} {
		p.Periods = append(p.Periods, linkView{Label: prefs.T(i18n.PeriodKey(per)), Href: link(r.Kind, per, -1), Active: per == r.Period})
	}
	for i, row := range r.Rows {
		p.Rows = append(p.Rows, rowView{
			Icon:     row.Icon,
			Label:    prefs.CategoryLabel(row.Category),
			Amount:   prefs.FormatAmount(row.Amount),
			Percent:  prefs.FormatPercent(row.Percentage),
			BarWidth: row.BarWidth,
			Selected: r.Selection.Valid && i == r.Selection.Index,
			Href:     link(r.Kind, r.Period, i),
		})
	}
	return p
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
