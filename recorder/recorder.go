// Package recorder captures voice chirps from the default input device.
package recorder

import (
	"errors"
	"sync"
	"time"

	"go.aimuz.me/chirps/audio"
)

// ErrNotRecording is returned when stopping a recorder that is idle.
var ErrNotRecording = errors.New("not recording")

// ErrAlreadyRecording is returned when trying to start a recorder twice.
var ErrAlreadyRecording = errors.New("already recording")

// levelWindow is the number of trailing samples analysed for the visualizer.
const levelWindow = 2048

// device is the input-device implementation behind a Recorder.
type device interface {
	start(sampleRate int, callback func(samples []float32)) error
	stop() error
}

// Config holds configuration for recording.
type Config struct {
	SampleRate  int           // Sample rate, default 44100 Hz
	MaxDuration time.Duration // Longest chirp kept, default 30 seconds
}

// DefaultConfig returns the default recording configuration.
func DefaultConfig() Config {
	return Config{
		SampleRate:  44100,
		MaxDuration: 30 * time.Second,
	}
}

// Recorder captures mono audio into a bounded buffer.
// When a take runs past MaxDuration the oldest audio is dropped.
type Recorder struct {
	mu sync.RWMutex

	// State
	recording  bool
	stopping   bool // device is shutting down outside the lock
	startTime  time.Time
	sampleRate int

	// Audio buffer
	buffer *RingBuffer

	// Callbacks
	onAudio []func(samples []float32)

	dev device
}

// New creates a recorder on the default input device.
func New(cfg Config) *Recorder {
	return newWithDevice(cfg, &portaudioDevice{})
}

func newWithDevice(cfg Config, dev device) *Recorder {
	def := DefaultConfig()
	if cfg.SampleRate == 0 {
		cfg.SampleRate = def.SampleRate
	}
	if cfg.MaxDuration == 0 {
		cfg.MaxDuration = def.MaxDuration
	}

	return &Recorder{
		sampleRate: cfg.SampleRate,
		buffer:     NewRingBuffer(int(cfg.MaxDuration.Seconds() * float64(cfg.SampleRate))),
		dev:        dev,
	}
}

// Start begins a new take, discarding any previous one.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.recording || r.stopping {
		return ErrAlreadyRecording
	}

	r.buffer.Clear()
	if err := r.dev.start(r.sampleRate, r.handleAudio); err != nil {
		return err
	}

	r.recording = true
	r.startTime = time.Now()
	return nil
}

// Stop ends the take and returns it as a mono buffer.
//
// The device is stopped without holding the lock: stopping waits for the
// in-flight capture callback, which itself reads the recorder state.
func (r *Recorder) Stop() (*audio.Buffer, error) {
	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return nil, ErrNotRecording
	}
	r.recording = false
	r.stopping = true
	dev := r.dev
	r.mu.Unlock()

	err := dev.stop()

	r.mu.Lock()
	r.stopping = false
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	return audio.NewMono(r.sampleRate, r.buffer.Read(r.buffer.Len())), nil
}

// IsRecording returns true while a take is running.
func (r *Recorder) IsRecording() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.recording
}

// Duration returns how long the current take has been running.
func (r *Recorder) Duration() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.recording {
		return 0
	}
	return time.Since(r.startTime)
}

// OnAudio registers a callback for captured audio.
// The callback receives float32 samples in the range [-1, 1].
func (r *Recorder) OnAudio(callback func(samples []float32)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onAudio = append(r.onAudio, callback)
}

// Levels returns the visualizer spectrum of the most recent audio.
func (r *Recorder) Levels(bands int) []float64 {
	return audio.Spectrum(r.buffer.Read(levelWindow), r.sampleRate, bands)
}

// SampleRate returns the configured sample rate.
func (r *Recorder) SampleRate() int {
	return r.sampleRate
}

// handleAudio processes incoming audio samples.
func (r *Recorder) handleAudio(samples []float32) {
	r.mu.RLock()
	callbacks := r.onAudio
	r.mu.RUnlock()

	r.buffer.Write(samples)

	for _, cb := range callbacks {
		cb(samples)
	}
}

// RingBuffer is a thread-safe circular buffer for audio samples.
type RingBuffer struct {
	mu       sync.RWMutex
	data     []float32
	writePos int
	size     int
	filled   int // How many samples have been written (up to size)
}

// NewRingBuffer creates a new ring buffer with the given capacity.
func NewRingBuffer(size int) *RingBuffer {
	return &RingBuffer{
		data: make([]float32, size),
		size: size,
	}
}

// Write adds samples to the buffer.
func (rb *RingBuffer) Write(samples []float32) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if rb.size == 0 {
		return
	}
	for _, s := range samples {
		rb.data[rb.writePos] = s
		rb.writePos = (rb.writePos + 1) % rb.size
		if rb.filled < rb.size {
			rb.filled++
		}
	}
}

// Read returns the last n samples from the buffer, oldest first.
func (rb *RingBuffer) Read(n int) []float32 {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	if n > rb.filled {
		n = rb.filled
	}
	if n <= 0 {
		return nil
	}

	result := make([]float32, n)
	startPos := (rb.writePos - n + rb.size) % rb.size
	for i := 0; i < n; i++ {
		result[i] = rb.data[(startPos+i)%rb.size]
	}
	return result
}

// Clear empties the buffer.
func (rb *RingBuffer) Clear() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.writePos = 0
	rb.filled = 0
}

// Len returns the number of samples in the buffer.
func (rb *RingBuffer) Len() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.filled
}
