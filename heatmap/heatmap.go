// Package heatmap groups chirps into annotation hot spots.
package heatmap

import (
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/samber/lo"

	"go.aimuz.me/chirps/store"
)

// Mode selects which chirps feed the heatmap.
type Mode string

const (
	ModeCommunity Mode = "community" // every chirp on the page
	ModeTeam      Mode = "team"      // chirps shared with the active team
)

// ParseMode returns the mode for s, defaulting to community.
func ParseMode(s string) Mode {
	if Mode(s) == ModeTeam {
		return ModeTeam
	}
	return ModeCommunity
}

// Intensity buckets spot counts.
type Intensity string

const (
	IntensityNone     Intensity = "none"
	IntensityLow      Intensity = "low"
	IntensityMedium   Intensity = "medium"
	IntensityHigh     Intensity = "high"
	IntensityVeryHigh Intensity = "very-high"
)

// textKeyRunes is how much of the selected text identifies a spot.
const textKeyRunes = 50

// cellSize is the side of a position bucket in pixels.
const cellSize = 100

// Spot is one group of chirps anchored on the same text or area.
type Spot struct {
	Key       string         `json:"key"`
	Text      string         `json:"text,omitempty"`
	Count     int            `json:"count"`
	Position  store.Position `json:"position"`
	Intensity Intensity      `json:"intensity"`
	Color     string         `json:"color"`
	ChirpIDs  []string       `json:"chirp_ids"`
}

// Calculate groups chirps by selected text, or by position cell when no
// text was selected. Spots are ordered by count, busiest first; ties keep
// first-seen order.
func Calculate(chirps []store.Chirp) []Spot {
	keys := lo.Uniq(lo.Map(chirps, func(c store.Chirp, _ int) string { return spotKey(c) }))
	groups := lo.GroupBy(chirps, spotKey)

	spots := lo.Map(keys, func(key string, _ int) Spot {
		group := groups[key]
		first := group[0]
		intensity := IntensityFor(len(group))
		return Spot{
			Key:       key,
			Text:      first.SelectedText,
			Count:     len(group),
			Position:  first.Position,
			Intensity: intensity,
			Color:     ColorFor(intensity),
			ChirpIDs:  lo.Map(group, func(c store.Chirp, _ int) string { return c.ID }),
		}
	})

	slices.SortStableFunc(spots, func(a, b Spot) int { return b.Count - a.Count })
	return spots
}

func spotKey(c store.Chirp) string {
	if c.SelectedText != "" {
		r := []rune(c.SelectedText)
		return "text:" + string(r[:min(len(r), textKeyRunes)])
	}
	x := int(math.Floor(c.Position.X / cellSize))
	y := int(math.Floor(c.Position.Y / cellSize))
	return "pos:" + strconv.Itoa(x) + "_" + strconv.Itoa(y)
}

// IntensityFor maps an annotation count to its intensity.
func IntensityFor(count int) Intensity {
	switch {
	case count <= 0:
		return IntensityNone
	case count <= 2:
		return IntensityLow
	case count <= 5:
		return IntensityMedium
	case count <= 10:
		return IntensityHigh
	default:
		return IntensityVeryHigh
	}
}

var palette = map[Intensity]string{
	IntensityNone:     "transparent",
	IntensityLow:      "rgba(255, 255, 0, 0.2)",
	IntensityMedium:   "rgba(255, 165, 0, 0.3)",
	IntensityHigh:     "rgba(255, 99, 71, 0.4)",
	IntensityVeryHigh: "rgba(255, 0, 0, 0.5)",
}

// ColorFor returns the CSS highlight colour of an intensity.
func ColorFor(i Intensity) string {
	if c, ok := palette[i]; ok {
		return c
	}
	return palette[IntensityNone]
}

// LegendEntry is one row of the heatmap legend.
type LegendEntry struct {
	Intensity Intensity `json:"intensity"`
	Color     string    `json:"color"`
	Label     string    `json:"label"`
}

// Legend returns the legend rows from low to very high.
func Legend() []LegendEntry {
	labels := map[Intensity]string{
		IntensityLow:      "1-2 annotations",
		IntensityMedium:   "3-5 annotations",
		IntensityHigh:     "6-10 annotations",
		IntensityVeryHigh: "11+ annotations",
	}
	order := []Intensity{IntensityLow, IntensityMedium, IntensityHigh, IntensityVeryHigh}
	return lo.Map(order, func(i Intensity, _ int) LegendEntry {
		return LegendEntry{Intensity: i, Color: ColorFor(i), Label: labels[i]}
	})
}

// Summary is the screen reader announcement for a loaded heatmap.
func Summary(spots []Spot) string {
	total := lo.SumBy(spots, func(s Spot) int { return s.Count })
	return fmt.Sprintf("Heatmap loaded. %d annotations across %d locations. Use Tab to navigate highlighted sections.", total, len(spots))
}
