package audio

import (
	"math"
	"time"
)

// DefaultActivityThreshold is the RMS level above which a window counts as sound.
const DefaultActivityThreshold = 0.02

// DetectActivity finds the first and last windows of buf whose RMS exceeds
// threshold and returns their bounds in seconds. ok is false when the whole
// buffer is below threshold.
func DetectActivity(buf *Buffer, threshold float32, win time.Duration) (start, end float64, ok bool) {
	n := buf.Len()
	if n == 0 || buf.SampleRate <= 0 {
		return 0, 0, false
	}
	size := int(win.Seconds() * float64(buf.SampleRate))
	if size < 1 {
		size = 1
	}

	mono := buf.Mixdown()
	first, last := -1, -1
	for from := 0; from < n; from += size {
		to := min(from+size, n)
		if calculateRMS(mono[from:to]) > threshold {
			if first < 0 {
				first = from
			}
			last = to
		}
	}
	if first < 0 {
		return 0, 0, false
	}

	rate := float64(buf.SampleRate)
	return float64(first) / rate, float64(last) / rate, true
}

// calculateRMS calculates the root mean square of audio samples.
func calculateRMS(samples []float32) float32 {
	if len(samples) == 0 {
		return 0
	}

	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return float32(math.Sqrt(sum / float64(len(samples))))
}
