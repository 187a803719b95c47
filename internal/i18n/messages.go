// Package i18n holds the user-facing strings of the analytics screen and the
// locale-aware amount formatting. Preferences are passed explicitly; there
// is no package-level current locale.
package i18n

import "flousi/internal/core"

// MessageKey identifies one translated string.
type MessageKey int

const (
	MsgAnalyticsTitle MessageKey = iota
	MsgExpenses
	MsgIncome
	MsgTotal
	MsgNet
	MsgSummary
	MsgCategories
	MsgNoData
	MsgFallbackNotice
	MsgPeriodWeek
	MsgPeriodMonth
	MsgPeriodYear

	numMessageKeys
)

type table [numMessageKeys]string

var catalog = map[Locale]table{
	Tunisian: {
		MsgAnalyticsTitle: "التحاليل",
		MsgExpenses:       "المصاريف",
		MsgIncome:         "المدخول",
		MsgTotal:          "المجموع",
		MsgNet:            "الصافي",
		MsgSummary:        "الخلاصة",
		MsgCategories:     "الأصناف",
		MsgNoData:         "ما فماش معطيات",
		MsgFallbackNotice: "ما نجمناش نوصلو للسيرفر، هاذي معطيات تجريبية",
		MsgPeriodWeek:     "الجمعة هاذي",
		MsgPeriodMonth:    "الشهر هذا",
		MsgPeriodYear:     "العام هذا",
	},
	French: {
		MsgAnalyticsTitle: "Analyses",
		MsgExpenses:       "Dépenses",
		MsgIncome:         "Revenus",
		MsgTotal:          "Total",
		MsgNet:            "Solde",
		MsgSummary:        "Résumé",
		MsgCategories:     "Catégories",
		MsgNoData:         "Aucune donnée",
		MsgFallbackNotice: "Serveur injoignable, données d'exemple affichées",
		MsgPeriodWeek:     "Cette semaine",
		MsgPeriodMonth:    "Ce mois",
		MsgPeriodYear:     "Cette année",
	},
	English: {
		MsgAnalyticsTitle: "Analytics",
		MsgExpenses:       "Expenses",
		MsgIncome:         "Income",
		MsgTotal:          "Total",
		MsgNet:            "Net",
		MsgSummary:        "Summary",
		MsgCategories:     "Categories",
		MsgNoData:         "No data yet",
		MsgFallbackNotice: "Server unreachable, showing sample data",
		MsgPeriodWeek:     "This week",
		MsgPeriodMonth:    "This month",
		MsgPeriodYear:     "This year",
	},
}

// T returns the string for key in locale l, falling back to English.
func (l Locale) T(key MessageKey) string {
	if key < 0 || key >= numMessageKeys {
		return ""
	}
	if t, ok := catalog[l]; ok && t[key] != "" {
		return t[key]
	}
	return catalog[English][key]
}

// KindKey maps a transaction kind to its label.
func KindKey(k core.TransactionKind) MessageKey {
	if k == core.Income {
		return MsgIncome
	}
	return MsgExpenses
}

func PeriodKey(p core.Period) MessageKey {
	switch p {
	case core.Week:
		return MsgPeriodWeek
	case core.Year:
		return MsgPeriodYear
	default:
		return MsgPeriodMonth
	}
}
