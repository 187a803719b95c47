// Package analytics turns per-category totals into the data behind the
// analytics screen: percentage shares, donut ring segments and the
// selected category.
package analytics

import (
	"math"
	"strings"

	"flousi/internal/core"
)

// DefaultPalette is cycled by list position for categories without a color.
var DefaultPalette = []string{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#FFA07A", "#98D8C8",
	"#F7DC6F", "#BB8FCE", "#85C1E9", "#F8C471", "#82E0AA",
}

// NeutralIcon is used for categories without a glyph.
const NeutralIcon = "•"

// Aggregator computes percentage shares over raw category totals.
type Aggregator struct {
	Palette []string
}

// NewAggregator returns an aggregator using palette, or DefaultPalette when empty.
func NewAggregator(palette []string) Aggregator {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	return Aggregator{Palette: palette}
}

// Aggregate keeps input order. Malformed amounts count as zero.
func (a Aggregator) Aggregate(rows []core.CategoryTotal) []core.CategoryAmount {
	out := make([]core.CategoryAmount, 0, len(rows))
	total := Total(rows)
	palette := a.Palette
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	for i, r := range rows {
		amount := sanitizeAmount(r.Amount)
		color := strings.TrimSpace(r.Color)
		if color == "" {
			color = palette[i%len(palette)]
		}
		icon := strings.TrimSpace(r.Icon)
		if icon == "" {
			icon = NeutralIcon
		}
		out = append(out, core.CategoryAmount{
			Category:   r.Category,
			Amount:     amount,
			Percentage: Percentage(amount, total),
			Color:      color,
			Icon:       icon,
		})
	}
	return out
}

// Total sums the sanitized amounts, floored at 1.
func Total(rows []core.CategoryTotal) float64 {
	var sum float64
	for _, r := range rows {
		sum += sanitizeAmount(r.Amount)
	}
	return floorTotal(sum)
}

// Percentage rounds amount/total to one decimal place.
func Percentage(amount, total float64) float64 {
	return math.Round(sanitizeAmount(amount)/floorTotal(total)*1000) / 10
}

// Sum returns the raw sum of amounts without flooring.
func Sum(cats []core.CategoryAmount) float64 {
	var sum float64
	for _, c := range cats {
		sum += sanitizeAmount(c.Amount)
	}
	return sum
}

func floorTotal(t float64) float64 {
	if math.IsNaN(t) || t < 1 {
		return 1
	}
	return t
}

func sanitizeAmount(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
