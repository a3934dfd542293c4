package audio

// Peak is the sample range covered by one envelope column.
type Peak struct {
	Min float32 `json:"min"`
	Max float32 `json:"max"`
}

// Envelope is a per-pixel-column min/max summary of a waveform.
type Envelope []Peak

// Sample downsamples channel 0 of buf into width columns.
//
// Each column scans ceil(len/width) frames; tail columns may scan fewer or
// none. Columns with no frames, and every column of an empty buffer, are
// flat {0, 0}.
func Sample(buf *Buffer, width int) Envelope {
	if width <= 0 {
		return Envelope{}
	}
	env := make(Envelope, width)

	n := buf.Len()
	if n == 0 {
		return env
	}

	data := buf.Channels[0]
	step := (n + width - 1) / width

	for i := range env {
		from := i * step
		if from >= n {
			break
		}
		to := min(from+step, n)

		lo, hi := data[from], data[from]
		for _, s := range data[from+1 : to] {
			if s < lo {
				lo = s
			}
			if s > hi {
				hi = s
			}
		}
		env[i] = Peak{Min: lo, Max: hi}
	}
	return env
}

// Bar maps a peak onto a canvas of the given height, returning the top row
// and bar height. Amplitude +1 is row 0.
func (p Peak) Bar(height int) (top, size int) {
	amp := float32(height) / 2
	yHi := (1 - p.Max) * amp
	yLo := (1 - p.Min) * amp
	top = int(yHi)
	size = max(int(yLo-yHi), 1)
	return top, size
}
