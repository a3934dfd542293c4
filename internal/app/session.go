package app

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.aimuz.me/chirps/audio"
	"go.aimuz.me/chirps/crop"
)

// ErrNoSession is returned when no clip is loaded into the editor.
var ErrNoSession = errors.New("no chirp being edited")

// ErrCropDisabled is returned for crop gestures on a clip that could not be decoded.
var ErrCropDisabled = errors.New("cropping unavailable for this clip")

// trimWindow is the RMS window used by AutoTrim.
const trimWindow = 20 * time.Millisecond

// SessionOptions configure an edit session.
type SessionOptions struct {
	MinSpan float64 // shortest crop window in seconds
}

// Clip is the audio produced by saving an edit session.
type Clip struct {
	Audio    []byte
	MimeType string
	Duration float64 // seconds
	Range    crop.Range
	Cropped  bool
	Buffer   *audio.Buffer // decoded samples, nil for an undecodable original
}

// EditSession holds one chirp between recording (or loading) and saving.
//
// The raw bytes are always kept so the chirp can be saved uncropped when
// decoding or slicing fails. raw, mime and buf never change after
// construction; mu guards the crop state.
type EditSession struct {
	mu sync.Mutex

	raw  []byte
	mime string
	buf  *audio.Buffer // nil when decoding failed

	ctl     *crop.Controller // nil when cropping is disabled
	cropErr error            // why cropping is disabled
}

// NewEditSession decodes raw for cropping. A decode failure is not an
// error: the session is returned with cropping disabled.
func NewEditSession(raw []byte, mime string, opts SessionOptions) *EditSession {
	s := &EditSession{raw: raw, mime: mime}

	buf, err := audio.Decode(raw)
	if err != nil {
		slog.Warn("decode chirp, cropping disabled", "mime", mime, "size", len(raw), "error", err)
		s.cropErr = err
		return s
	}
	s.attach(buf, opts)
	return s
}

// NewEditSessionFromBuffer starts a session on recorded samples.
func NewEditSessionFromBuffer(buf *audio.Buffer, opts SessionOptions) (*EditSession, error) {
	raw, err := audio.EncodeWAV(buf)
	if err != nil {
		return nil, fmt.Errorf("encode recording: %w", err)
	}
	s := &EditSession{raw: raw, mime: audio.MimeWAV}
	s.attach(buf, opts)
	return s, nil
}

func (s *EditSession) attach(buf *audio.Buffer, opts SessionOptions) {
	s.buf = buf
	ctl, err := crop.New(buf.Duration(), opts.MinSpan)
	if err != nil {
		s.cropErr = err
		return
	}
	s.ctl = ctl
}

// CanCrop reports whether crop gestures are available.
func (s *EditSession) CanCrop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctl != nil
}

// CropError returns why cropping is disabled, or nil.
func (s *EditSession) CropError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cropErr
}

// MimeType returns the content type of the original bytes.
func (s *EditSession) MimeType() string { return s.mime }

// Buffer returns the decoded samples, or nil.
func (s *EditSession) Buffer() *audio.Buffer { return s.buf }

// Duration returns the clip length in seconds, or 0 when undecodable.
func (s *EditSession) Duration() float64 { return s.buf.Duration() }

// Envelope samples the waveform for a surface width pixels wide.
func (s *EditSession) Envelope(width int) audio.Envelope {
	return audio.Sample(s.buf, width)
}

// Range returns the current crop window.
func (s *EditSession) Range() (crop.Range, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctl == nil {
		return crop.Range{}, ErrCropDisabled
	}
	return s.ctl.Range(), nil
}

// Click handles a click at pointer column x on a waveform width pixels wide.
func (s *EditSession) Click(x, width float64) (crop.ClickResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctl == nil {
		return nil, ErrCropDisabled
	}
	return s.ctl.HandleClick(crop.TimeAt(x, width, s.ctl.Duration())), nil
}

// PointerDown grabs a crop handle.
func (s *EditSession) PointerDown(h crop.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctl == nil {
		return ErrCropDisabled
	}
	s.ctl.PointerDown(h)
	return nil
}

// PointerMove drags the grabbed handle to column x. moved is false when no
// handle is held.
func (s *EditSession) PointerMove(x, width float64) (r crop.Range, moved bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctl == nil {
		return crop.Range{}, false, ErrCropDisabled
	}
	r, moved = s.ctl.PointerMove(crop.TimeAt(x, width, s.ctl.Duration()))
	return r, moved, nil
}

// PointerUp releases any handle.
func (s *EditSession) PointerUp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctl != nil {
		s.ctl.PointerUp()
	}
}

// Reset restores the full-clip window.
func (s *EditSession) Reset() (crop.Range, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctl == nil {
		return crop.Range{}, ErrCropDisabled
	}
	s.ctl.Reset()
	return s.ctl.Range(), nil
}

// AutoTrim fits the window to the audible part of the clip. When the clip
// is silent throughout the window is left alone and ok is false.
func (s *EditSession) AutoTrim(threshold float32) (r crop.Range, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctl == nil {
		return crop.Range{}, false, ErrCropDisabled
	}

	start, end, found := audio.DetectActivity(s.buf, threshold, trimWindow)
	if !found {
		return s.ctl.Range(), false, nil
	}
	return s.ctl.Set(crop.Range{Start: start, End: end}), true, nil
}

// Save produces the chirp audio: the cropped window as WAV when cropping
// is available, otherwise the original bytes. If slicing or encoding fails
// cropping is disabled and the error returned, so a second Save yields the
// uncropped original.
func (s *EditSession) Save() (*Clip, error) {
	s.mu.Lock()
	ctl := s.ctl
	var r crop.Range
	if ctl != nil {
		r = ctl.Range()
	}
	s.mu.Unlock()

	if ctl == nil {
		return &Clip{
			Audio:    s.raw,
			MimeType: s.mime,
			Duration: s.buf.Duration(),
			Range:    crop.Range{End: s.buf.Duration()},
			Buffer:   s.buf,
		}, nil
	}

	clip, err := s.cropClip(r)
	if err != nil {
		s.mu.Lock()
		s.ctl = nil
		s.cropErr = err
		s.mu.Unlock()
		slog.Error("crop chirp, falling back to original", "start", r.Start, "end", r.End, "error", err)
		return nil, err
	}
	return clip, nil
}

func (s *EditSession) cropClip(r crop.Range) (*Clip, error) {
	sliced, err := audio.Slice(s.buf, r.Start, r.End)
	if err != nil {
		return nil, fmt.Errorf("slice chirp: %w", err)
	}
	data, err := audio.EncodeWAV(sliced)
	if err != nil {
		return nil, fmt.Errorf("encode chirp: %w", err)
	}
	return &Clip{
		Audio:    data,
		MimeType: audio.MimeWAV,
		Duration: sliced.Duration(),
		Range:    r,
		Cropped:  true,
		Buffer:   sliced,
	}, nil
}

// Cancel ends editing. Crop gestures fail afterwards.
func (s *EditSession) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctl = nil
	s.cropErr = ErrNoSession
}
