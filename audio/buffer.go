// Package audio implements the chirp audio pipeline: decoded sample buffers,
// waveform envelopes, range slicing and container encoding.
package audio

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrInvalidBuffer is returned for buffers that violate the Buffer invariants.
	ErrInvalidBuffer = errors.New("invalid audio buffer")

	// ErrInvalidRange is returned by Slice for degenerate or out-of-bounds ranges.
	ErrInvalidRange = errors.New("invalid audio range")
)

// Buffer is a decoded, multi-channel block of normalized float samples.
//
// Channels holds one slice per channel, all of the same length. Operations in
// this package never mutate a Buffer they are given; they return new ones.
type Buffer struct {
	SampleRate int
	Channels   [][]float32
}

// NewBuffer allocates a zeroed buffer.
func NewBuffer(sampleRate, channels, length int) *Buffer {
	b := &Buffer{
		SampleRate: sampleRate,
		Channels:   make([][]float32, channels),
	}
	for i := range b.Channels {
		b.Channels[i] = make([]float32, length)
	}
	return b
}

// NewMono wraps samples as a single-channel buffer without copying.
func NewMono(sampleRate int, samples []float32) *Buffer {
	return &Buffer{
		SampleRate: sampleRate,
		Channels:   [][]float32{samples},
	}
}

// FromInterleaved splits frame-interleaved samples into channels.
// Trailing samples that do not complete a frame are dropped.
func FromInterleaved(sampleRate, channels int, data []float32) (*Buffer, error) {
	if channels < 1 {
		return nil, fmt.Errorf("%w: %d channels", ErrInvalidBuffer, channels)
	}
	frames := len(data) / channels
	b := NewBuffer(sampleRate, channels, frames)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			b.Channels[ch][i] = data[i*channels+ch]
		}
	}
	return b, b.Validate()
}

// NumChannels returns the channel count.
func (b *Buffer) NumChannels() int {
	if b == nil {
		return 0
	}
	return len(b.Channels)
}

// Len returns the number of sample frames per channel.
func (b *Buffer) Len() int {
	if b == nil || len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// Duration returns the buffer length in seconds.
func (b *Buffer) Duration() float64 {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Len()) / float64(b.SampleRate)
}

// Validate checks the Buffer invariants.
func (b *Buffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidBuffer)
	}
	if b.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidBuffer, b.SampleRate)
	}
	if len(b.Channels) == 0 {
		return fmt.Errorf("%w: no channels", ErrInvalidBuffer)
	}
	n := len(b.Channels[0])
	for i, ch := range b.Channels[1:] {
		if len(ch) != n {
			return fmt.Errorf("%w: channel %d has %d frames, want %d", ErrInvalidBuffer, i+1, len(ch), n)
		}
	}
	return nil
}

// Interleaved returns the samples frame by frame, channel 0..N-1 within each frame.
func (b *Buffer) Interleaved() []float32 {
	n, chans := b.Len(), b.NumChannels()
	out := make([]float32, n*chans)
	for i := 0; i < n; i++ {
		for ch := 0; ch < chans; ch++ {
			out[i*chans+ch] = b.Channels[ch][i]
		}
	}
	return out
}

// Mixdown averages all channels into one. A mono buffer is returned as is.
func (b *Buffer) Mixdown() []float32 {
	if b.NumChannels() == 1 {
		return b.Channels[0]
	}
	n, chans := b.Len(), b.NumChannels()
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		var sum float32
		for ch := 0; ch < chans; ch++ {
			sum += b.Channels[ch][i]
		}
		out[i] = sum / float32(chans)
	}
	return out
}
