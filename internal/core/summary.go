package core

// CategoryTotal is a raw per-category row as returned by a data source.
// Color, Icon and Percentage are optional.
type CategoryTotal struct {
	Category   string
	Amount     float64
	Percentage *float64
	Color      string
	Icon       string
}

// CategoryAmount is an aggregated category with its share of the whole.
type CategoryAmount struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
	Color      string  `json:"color"`
	Icon       string  `json:"icon"`
}

// Summary compares both sides of the ledger for one period.
type Summary struct {
	UserID   string  `json:"user_id"`
	Period   Period  `json:"period"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Net      float64 `json:"net"`
}
