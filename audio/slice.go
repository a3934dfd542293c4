package audio

import (
	"fmt"
	"math"
)

// Slice returns a new buffer holding the frames between start and end seconds.
//
// Both bounds are rounded to the nearest frame independently, so the output
// length is within one frame of round((end-start)*rate). Slice rejects
// degenerate ranges instead of clamping them.
func Slice(buf *Buffer, start, end float64) (*Buffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if err := checkRange(buf, start, end); err != nil {
		return nil, err
	}

	rate := float64(buf.SampleRate)
	from := int(math.Round(start * rate))
	to := int(math.Round(end * rate))

	out := NewBuffer(buf.SampleRate, buf.NumChannels(), to-from)
	n := buf.Len()
	for ch, src := range buf.Channels {
		// Frames past the source stay zero.
		if from < n {
			copy(out.Channels[ch], src[from:min(to, n)])
		}
	}
	return out, nil
}

func checkRange(buf *Buffer, start, end float64) error {
	duration := buf.Duration()
	// Half a frame of slack absorbs float error in duration round trips.
	slack := 0.5 / float64(buf.SampleRate)

	switch {
	case math.IsNaN(start) || math.IsNaN(end):
		return fmt.Errorf("%w: NaN bound", ErrInvalidRange)
	case start < 0:
		return fmt.Errorf("%w: start %.4fs before 0", ErrInvalidRange, start)
	case start >= end:
		return fmt.Errorf("%w: start %.4fs not before end %.4fs", ErrInvalidRange, start, end)
	case end > duration+slack:
		return fmt.Errorf("%w: end %.4fs past duration %.4fs", ErrInvalidRange, end, duration)
	}
	if math.Round(start*float64(buf.SampleRate)) == math.Round(end*float64(buf.SampleRate)) {
		return fmt.Errorf("%w: range %.6fs-%.6fs is shorter than one frame", ErrInvalidRange, start, end)
	}
	return nil
}
