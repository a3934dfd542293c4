package audio

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// Spectrum band layout for the recording visualizer.
const (
	spectrumLowHz  = 50.0
	spectrumHighHz = 16000.0
	spectrumFloor  = -60.0 // dB mapped to level 0
)

// Spectrum returns bands log-spaced levels in [0, 1] for the given samples.
// Silence, empty input or bands <= 0 yield all-zero levels.
func Spectrum(samples []float32, sampleRate, bands int) []float64 {
	if bands <= 0 {
		return nil
	}
	levels := make([]float64, bands)
	if len(samples) < 2 || sampleRate <= 0 {
		return levels
	}

	frame := make([]float64, len(samples))
	for i, s := range samples {
		frame[i] = float64(s)
	}
	window.Apply(frame, window.Hann)
	spec := fft.FFTReal(frame)

	n := len(frame)
	binHz := float64(sampleRate) / float64(n)
	high := math.Min(spectrumHighHz, float64(sampleRate)/2)
	if high <= spectrumLowHz {
		return levels
	}
	ratio := math.Pow(high/spectrumLowHz, 1/float64(bands))
	// Hann window coherent gain is 0.5, so a full-scale sine peaks near n/4.
	ref := float64(n) / 4

	lo := spectrumLowHz
	for b := range levels {
		hi := lo * ratio
		first := max(int(lo/binHz), 1)
		last := min(int(math.Ceil(hi/binHz)), n/2)

		var peak float64
		for k := first; k < last; k++ {
			peak = math.Max(peak, cmplx.Abs(spec[k]))
		}
		if peak > 0 {
			db := 20 * math.Log10(peak/ref)
			levels[b] = math.Max(0, math.Min(1, (db-spectrumFloor)/-spectrumFloor))
		}
		lo = hi
	}
	return levels
}
