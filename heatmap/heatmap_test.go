package heatmap

import (
	"strings"
	"testing"

	"go.aimuz.me/chirps/store"
)

func TestCalculate(t *testing.T) {
	long := strings.Repeat("a", 50)
	chirps := []store.Chirp{
		{ID: "p1", Position: store.Position{X: 120, Y: 250}},
		{ID: "t1", SelectedText: long + " first tail", Position: store.Position{X: 5, Y: 5}},
		{ID: "t2", SelectedText: long + " second tail"},
		{ID: "t3", SelectedText: long},
		{ID: "p2", Position: store.Position{X: 199, Y: 200}},
		{ID: "p3", Position: store.Position{X: 200, Y: 200}},
	}

	spots := Calculate(chirps)
	if len(spots) != 3 {
		t.Fatalf("len(spots) = %d, want 3: %+v", len(spots), spots)
	}

	text := spots[0]
	if text.Count != 3 || text.Text != long+" first tail" {
		t.Errorf("spots[0] = %+v, want the three text chirps", text)
	}
	if text.Position != (store.Position{X: 5, Y: 5}) {
		t.Errorf("spots[0].Position = %+v, want first chirp's", text.Position)
	}
	if text.Intensity != IntensityMedium || text.Color != "rgba(255, 165, 0, 0.3)" {
		t.Errorf("spots[0] intensity %s color %s, want medium orange", text.Intensity, text.Color)
	}

	cell := spots[1]
	if cell.Key != "pos:1_2" || cell.Count != 2 || cell.Text != "" {
		t.Errorf("spots[1] = %+v, want cell 1_2 with two chirps", cell)
	}
	if strings.Join(cell.ChirpIDs, ",") != "p1,p2" {
		t.Errorf("spots[1].ChirpIDs = %v, want [p1 p2]", cell.ChirpIDs)
	}

	if spots[2].Key != "pos:2_2" || spots[2].Count != 1 {
		t.Errorf("spots[2] = %+v, want cell 2_2 with one chirp", spots[2])
	}
}

func TestCalculate_Empty(t *testing.T) {
	if spots := Calculate(nil); len(spots) != 0 {
		t.Errorf("Calculate(nil) = %+v, want none", spots)
	}
}

func TestCalculate_MultibyteKey(t *testing.T) {
	base := strings.Repeat("é", 50)
	spots := Calculate([]store.Chirp{
		{ID: "a", SelectedText: base + "x"},
		{ID: "b", SelectedText: base + "y"},
	})
	if len(spots) != 1 || spots[0].Count != 2 {
		t.Errorf("spots = %+v, want one spot of two", spots)
	}
}

func TestIntensityFor(t *testing.T) {
	tests := []struct {
		count int
		want  Intensity
	}{
		{0, IntensityNone},
		{1, IntensityLow},
		{2, IntensityLow},
		{3, IntensityMedium},
		{5, IntensityMedium},
		{6, IntensityHigh},
		{10, IntensityHigh},
		{11, IntensityVeryHigh},
		{500, IntensityVeryHigh},
	}

	for _, tt := range tests {
		if got := IntensityFor(tt.count); got != tt.want {
			t.Errorf("IntensityFor(%d) = %s, want %s", tt.count, got, tt.want)
		}
	}
}

func TestColorFor(t *testing.T) {
	tests := []struct {
		in   Intensity
		want string
	}{
		{IntensityNone, "transparent"},
		{IntensityLow, "rgba(255, 255, 0, 0.2)"},
		{IntensityMedium, "rgba(255, 165, 0, 0.3)"},
		{IntensityHigh, "rgba(255, 99, 71, 0.4)"},
		{IntensityVeryHigh, "rgba(255, 0, 0, 0.5)"},
		{Intensity("bogus"), "transparent"},
	}

	for _, tt := range tests {
		if got := ColorFor(tt.in); got != tt.want {
			t.Errorf("ColorFor(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLegend(t *testing.T) {
	legend := Legend()
	if len(legend) != 4 {
		t.Fatalf("len(Legend()) = %d, want 4", len(legend))
	}
	if legend[3].Label != "11+ annotations" || legend[3].Color != "rgba(255, 0, 0, 0.5)" {
		t.Errorf("legend[3] = %+v", legend[3])
	}
}

func TestSummary(t *testing.T) {
	spots := []Spot{{Count: 3}, {Count: 1}}
	want := "Heatmap loaded. 4 annotations across 2 locations. Use Tab to navigate highlighted sections."
	if got := Summary(spots); got != want {
		t.Errorf("Summary = %q, want %q", got, want)
	}
}

func TestParseMode(t *testing.T) {
	if ParseMode("team") != ModeTeam {
		t.Error(`ParseMode("team") != team`)
	}
	if ParseMode("") != ModeCommunity || ParseMode("other") != ModeCommunity {
		t.Error("ParseMode should default to community")
	}
}
