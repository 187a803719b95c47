package analytics

import (
	"math"
	"strconv"
	"strings"

	"flousi/internal/core"
)

// StartAngle is the top of the circle; 0° is the positive x-axis and angles
// grow clockwise (SVG coordinates, y pointing down).
const StartAngle = -90.0

// maxDrawableSweep keeps a full ring drawable: an SVG arc whose end point
// equals its start point renders nothing.
const maxDrawableSweep = 359.99

// Layout holds the cosmetic parameters of the donut.
type Layout struct {
	Size            float64 // viewBox width and height
	OuterRadius     float64
	InnerRadius     float64
	GapDegrees      float64
	SelectionOffset float64
	SelectionScale  float64
}

// DefaultLayout matches the analytics screen of the mobile app.
func DefaultLayout() Layout {
	return Layout{
		Size:            220,
		OuterRadius:     90,
		InnerRadius:     60,
		GapDegrees:      3,
		SelectionOffset: 6,
		SelectionScale:  1.05,
	}
}

// Normalize replaces unusable values with defaults.
func (l Layout) Normalize() Layout {
	d := DefaultLayout()
	if l.Size <= 0 {
		l.Size = d.Size
	}
	if l.OuterRadius <= 0 {
		l.OuterRadius = d.OuterRadius
	}
	if l.InnerRadius < 0 || l.InnerRadius >= l.OuterRadius {
		l.InnerRadius = l.OuterRadius * 2 / 3
	}
	if l.GapDegrees < 0 {
		l.GapDegrees = 0
	}
	if l.SelectionOffset < 0 {
		l.SelectionOffset = 0
	}
	if l.SelectionScale <= 0 {
		l.SelectionScale = 1
	}
	return l
}

// RingSegment is one drawable wedge of the donut. Angles are in degrees.
type RingSegment struct {
	Index          int     `json:"index"`
	Category       string  `json:"category"`
	PathDescriptor string  `json:"path"`
	Color          string  `json:"color"`
	IsSelected     bool    `json:"is_selected"`
	Percentage     float64 `json:"percentage"`
	StartAngle     float64 `json:"start_angle"`
	EndAngle       float64 `json:"end_angle"`
	Sweep          float64 `json:"sweep"`
	OffsetX        float64 `json:"offset_x"`
	OffsetY        float64 `json:"offset_y"`
	Scale          float64 `json:"scale"`
}

// Chart is the full donut with its center label data.
type Chart struct {
	Size     float64              `json:"size"`
	Total    float64              `json:"total"`
	Segments []RingSegment        `json:"segments"`
	Selected *core.CategoryAmount `json:"selected,omitempty"`
}

// BuildChart lays out one segment per category in list order. A selected
// index outside the list selects nothing; callers clamp beforehand.
func BuildChart(cats []core.CategoryAmount, selected int, layout Layout) Chart {
	layout = layout.Normalize()
	chart := Chart{
		Size:     layout.Size,
		Total:    Sum(cats),
		Segments: make([]RingSegment, 0, len(cats)),
	}
	if selected >= 0 && selected < len(cats) {
		sel := cats[selected]
		chart.Selected = &sel
	}

	total := floorTotal(chart.Total)
	center := layout.Size / 2
	cursor := StartAngle
	for i, c := range cats {
		budget := sanitizeAmount(c.Amount) / total * 360
		sweep := budget - layout.GapDegrees
		if sweep < 0 {
			sweep = 0
		}
		start := cursor + (budget-sweep)/2
		seg := RingSegment{
			Index:      i,
			Category:   c.Category,
			Color:      c.Color,
			IsSelected: i == selected,
			Percentage: c.Percentage,
			StartAngle: start,
			EndAngle:   start + sweep,
			Sweep:      sweep,
			Scale:      1,
		}
		if seg.IsSelected {
			mid := toRadians(start + sweep/2)
			seg.OffsetX = layout.SelectionOffset * math.Cos(mid)
			seg.OffsetY = layout.SelectionOffset * math.Sin(mid)
			seg.Scale = layout.SelectionScale
		}
		if sweep > 0 {
			seg.PathDescriptor = wedgePath(
				center+seg.OffsetX, center+seg.OffsetY,
				layout.OuterRadius*seg.Scale, layout.InnerRadius*seg.Scale,
				start, sweep,
			)
		}
		chart.Segments = append(chart.Segments, seg)
		cursor += budget
	}
	return chart
}

// wedgePath draws an annulus sector: outer arc, line in, inner arc back, close.
func wedgePath(cx, cy, outer, inner, start, sweep float64) string {
	if sweep > maxDrawableSweep {
		sweep = maxDrawableSweep
	}
	end := start + sweep
	large := "0"
	if sweep > 180 {
		large = "1"
	}
	ox1, oy1 := polar(cx, cy, outer, start)
	ox2, oy2 := polar(cx, cy, outer, end)
	ix2, iy2 := polar(cx, cy, inner, end)
	ix1, iy1 := polar(cx, cy, inner, start)

	var b strings.Builder
	b.WriteString("M " + num(ox1) + " " + num(oy1))
	b.WriteString(" A " + num(outer) + " " + num(outer) + " 0 " + large + " 1 " + num(ox2) + " " + num(oy2))
	b.WriteString(" L " + num(ix2) + " " + num(iy2))
	b.WriteString(" A " + num(inner) + " " + num(inner) + " 0 " + large + " 0 " + num(ix1) + " " + num(iy1))
	b.WriteString(" Z")
	return b.String()
}

func polar(cx, cy, r, deg float64) (float64, float64) {
	rad := toRadians(deg)
	return cx + r*math.Cos(rad), cy + r*math.Sin(rad)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	if s == "-0.00" {
		return "0.00"
	}
	return s
}
