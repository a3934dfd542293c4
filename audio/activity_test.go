package audio

import (
	"math"
	"testing"
	"time"
)

func TestDetectActivity(t *testing.T) {
	const rate = 1000
	samples := make([]float32, 3*rate)
	// Loud section from 1.0s to 2.0s.
	for i := rate; i < 2*rate; i++ {
		samples[i] = 0.3
	}

	start, end, ok := DetectActivity(NewMono(rate, samples), DefaultActivityThreshold, 100*time.Millisecond)
	if !ok {
		t.Fatal("expected activity")
	}
	if math.Abs(start-1.0) > 1e-9 {
		t.Errorf("start = %v, want 1.0", start)
	}
	if math.Abs(end-2.0) > 1e-9 {
		t.Errorf("end = %v, want 2.0", end)
	}
}

func TestDetectActivity_Silence(t *testing.T) {
	tests := []struct {
		name string
		buf  *Buffer
	}{
		{"silence", NewMono(1000, make([]float32, 1000))},
		{"empty", NewMono(1000, nil)},
		{"nil", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, ok := DetectActivity(tt.buf, DefaultActivityThreshold, 50*time.Millisecond); ok {
				t.Error("expected no activity")
			}
		})
	}
}

func TestCalculateRMS(t *testing.T) {
	tests := []struct {
		name    string
		samples []float32
		want    float32
	}{
		{"empty", nil, 0},
		{"constant", []float32{0.5, -0.5, 0.5, -0.5}, 0.5},
		{"silence", make([]float32, 10), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calculateRMS(tt.samples); math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Errorf("calculateRMS() = %v, want %v", got, tt.want)
			}
		})
	}
}
