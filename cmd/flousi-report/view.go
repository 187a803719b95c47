package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"flousi/internal/analytics"
	"flousi/internal/core"
	"flousi/internal/i18n"
)

// barColumns is the terminal width of a 100% bar.
const barColumns = 30

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	selectedRow  = lipgloss.NewStyle().Bold(true)
	positive     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	negative     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func renderBreakdown(w io.Writer, r analytics.Report, prefs i18n.Preferences) error {
	var b strings.Builder

	title := fmt.Sprintf("%s · %s · %s", prefs.T(i18n.MsgAnalyticsTitle), prefs.T(i18n.KindKey(r.Kind)), prefs.T(i18n.PeriodKey(r.Period)))
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	if r.FromFallback {
		b.WriteString(warningStyle.Render(prefs.T(i18n.MsgFallbackNotice)))
		b.WriteString("\n")
	}

	if len(r.Rows) == 0 {
		b.WriteString(mutedStyle.Render(prefs.T(i18n.MsgNoData)))
		b.WriteString("\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	labels := make([]string, len(r.Rows))
	labelWidth := 0
	for i, row := range r.Rows {
		labels[i] = prefs.CategoryLabel(row.Category)
		labelWidth = max(labelWidth, lipgloss.Width(labels[i]))
	}
	labelCol := lipgloss.NewStyle().Width(labelWidth)

	for i, row := range r.Rows {
		marker := "  "
		if r.Selection.Valid && r.Selection.Index == i {
			marker = "> "
		}
		line := fmt.Sprintf("%s%s  %s %s  %s",
			marker,
			labelCol.Render(labels[i]),
			bar(row.BarWidth, row.Color),
			prefs.FormatPercent(row.Percentage),
			prefs.FormatAmount(row.Amount),
		)
		if marker != "  " {
			line = selectedRow.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("%s: %s\n", prefs.T(i18n.MsgTotal), prefs.FormatAmount(r.Total)))
	_, err := io.WriteString(w, b.String())
	return err
}

// bar draws width percent of barColumns, padded so the columns after it line up.
func bar(width int, color string) string {
	filled := width * barColumns / 100
	if width > 0 && filled == 0 {
		filled = 1
	}
	style := lipgloss.NewStyle()
	if color != "" {
		style = style.Foreground(lipgloss.Color(color))
	}
	return style.Render(strings.Repeat("█", filled)) + strings.Repeat(" ", barColumns-filled)
}

func renderSummary(w io.Writer, s core.Summary, prefs i18n.Preferences) error {
	net := positive
	if s.Net < 0 {
		net = negative
	}
	rows := [][2]string{
		{prefs.T(i18n.MsgIncome), prefs.FormatAmount(s.Income)},
		{prefs.T(i18n.MsgExpenses), prefs.FormatAmount(s.Expenses)},
		{prefs.T(i18n.MsgNet), net.Render(prefs.FormatAmount(s.Net))},
	}
	labelWidth := 0
	for _, r := range rows {
		labelWidth = max(labelWidth, lipgloss.Width(r[0]))
	}
	labelCol := lipgloss.NewStyle().Width(labelWidth)

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s · %s", prefs.T(i18n.MsgSummary), prefs.T(i18n.PeriodKey(s.Period)))))
	b.WriteString("\n")
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("%s  %s\n", labelCol.Render(r[0]), r[1]))
	}
	_, err := io.WriteString(w, b.String())
	return err
}
