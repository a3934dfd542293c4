package app

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"sync"
	"testing"

	"go.aimuz.me/chirps/audio"
	"go.aimuz.me/chirps/crop"
)

func sineBuffer(sampleRate int, seconds float64) *audio.Buffer {
	n := int(float64(sampleRate) * seconds)
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate)))
	}
	return audio.NewMono(sampleRate, samples)
}

func newSession(t *testing.T, buf *audio.Buffer) *EditSession {
	t.Helper()
	s, err := NewEditSessionFromBuffer(buf, SessionOptions{MinSpan: crop.DefaultMinSpan})
	if err != nil {
		t.Fatalf("NewEditSessionFromBuffer: %v", err)
	}
	if !s.CanCrop() {
		t.Fatalf("CanCrop() = false: %v", s.CropError())
	}
	return s
}

func TestEditSession_CropAndSave(t *testing.T) {
	s := newSession(t, sineBuffer(44100, 2))
	const width = 200

	if err := s.PointerDown(crop.HandleStart); err != nil {
		t.Fatalf("PointerDown: %v", err)
	}
	if _, moved, _ := s.PointerMove(50, width); !moved {
		t.Fatal("start handle did not move")
	}
	s.PointerUp()

	_ = s.PointerDown(crop.HandleEnd)
	r, _, _ := s.PointerMove(150, width)
	s.PointerUp()
	if r != (crop.Range{Start: 0.5, End: 1.5}) {
		t.Fatalf("range = %+v, want [0.5, 1.5]", r)
	}

	clip, err := s.Save()
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !clip.Cropped || clip.MimeType != audio.MimeWAV {
		t.Errorf("clip cropped=%v mime=%q, want cropped WAV", clip.Cropped, clip.MimeType)
	}
	if got := binary.LittleEndian.Uint32(clip.Audio[40:44]); got != 88200 {
		t.Errorf("data chunk = %d bytes, want 88200", got)
	}
	if len(clip.Audio) != 44+88200 {
		t.Errorf("len(Audio) = %d, want %d", len(clip.Audio), 44+88200)
	}
	if math.Abs(clip.Duration-1) > 1e-9 {
		t.Errorf("Duration = %v, want 1", clip.Duration)
	}
}

func TestEditSession_ResetSavesWholeClip(t *testing.T) {
	buf := sineBuffer(8000, 1)
	s := newSession(t, buf)

	if _, err := s.Click(10, 100); err != nil {
		t.Fatalf("Click: %v", err)
	}
	_ = s.PointerDown(crop.HandleEnd)
	_, _, _ = s.PointerMove(40, 100)
	s.PointerUp()

	r, err := s.Reset()
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if r != (crop.Range{Start: 0, End: 1}) {
		t.Fatalf("Reset range = %+v, want [0, 1]", r)
	}

	clip, err := s.Save()
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	want, _ := audio.EncodeWAV(buf)
	if !bytes.Equal(clip.Audio, want) {
		t.Error("saving after Reset did not reproduce the whole clip")
	}
}

func TestEditSession_ClickInsidePlays(t *testing.T) {
	s := newSession(t, sineBuffer(8000, 1))

	res, err := s.Click(50, 100)
	if err != nil {
		t.Fatalf("Click: %v", err)
	}
	play, ok := res.(crop.PlayIntent)
	if !ok {
		t.Fatalf("Click = %T, want PlayIntent", res)
	}
	if play.Range != (crop.Range{Start: 0, End: 1}) {
		t.Errorf("PlayIntent.Range = %+v", play.Range)
	}
}

func TestEditSession_AutoTrim(t *testing.T) {
	const rate = 8000
	samples := make([]float32, rate) // one second of silence
	for i := rate / 4; i < rate/2; i++ {
		samples[i] = 0.5 // loud between 0.25 s and 0.5 s
	}
	s := newSession(t, audio.NewMono(rate, samples))

	r, ok, err := s.AutoTrim(audio.DefaultActivityThreshold)
	if err != nil || !ok {
		t.Fatalf("AutoTrim = %v, %v", ok, err)
	}
	if math.Abs(r.Start-0.25) > 0.021 || math.Abs(r.End-0.5) > 0.021 {
		t.Errorf("AutoTrim range = %+v, want about [0.25, 0.5]", r)
	}

	silent := newSession(t, audio.NewMono(rate, make([]float32, rate)))
	r, ok, err = silent.AutoTrim(audio.DefaultActivityThreshold)
	if err != nil || ok {
		t.Fatalf("silent AutoTrim = %v, %v; want not ok", ok, err)
	}
	if r != (crop.Range{Start: 0, End: 1}) {
		t.Errorf("silent AutoTrim changed range to %+v", r)
	}
}

func TestEditSession_UndecodableKeepsOriginal(t *testing.T) {
	raw := []byte("\x1aE\xdf\xa3 webm bytes")
	s := NewEditSession(raw, "audio/webm", SessionOptions{})

	if s.CanCrop() {
		t.Fatal("CanCrop() = true for undecodable input")
	}
	var decErr *audio.DecodeError
	if !errors.As(s.CropError(), &decErr) {
		t.Errorf("CropError() = %v, want *audio.DecodeError", s.CropError())
	}
	if _, err := s.Click(1, 10); !errors.Is(err, ErrCropDisabled) {
		t.Errorf("Click err = %v, want ErrCropDisabled", err)
	}
	if env := s.Envelope(8); len(env) != 8 {
		t.Errorf("len(Envelope(8)) = %d, want 8 flat peaks", len(env))
	}

	clip, err := s.Save()
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if clip.Cropped || !bytes.Equal(clip.Audio, raw) || clip.MimeType != "audio/webm" {
		t.Errorf("clip = %+v, want the original bytes", clip)
	}
}

func TestEditSession_LoadsWAV(t *testing.T) {
	raw, err := audio.EncodeWAV(sineBuffer(16000, 0.5))
	if err != nil {
		t.Fatal(err)
	}
	s := NewEditSession(raw, audio.MimeWAV, SessionOptions{MinSpan: 0.1})
	if !s.CanCrop() {
		t.Fatalf("CanCrop() = false: %v", s.CropError())
	}
	if math.Abs(s.Duration()-0.5) > 1e-9 {
		t.Errorf("Duration() = %v, want 0.5", s.Duration())
	}
}

func TestEditSession_SliceFailureDisablesCrop(t *testing.T) {
	// Ragged channels decode fine here but fail buffer validation when sliced.
	bad := &audio.Buffer{SampleRate: 100, Channels: [][]float32{make([]float32, 100), make([]float32, 50)}}
	s := &EditSession{raw: []byte("original"), mime: "audio/ogg"}
	s.attach(bad, SessionOptions{})
	if !s.CanCrop() {
		t.Fatal("CanCrop() = false before save")
	}

	if _, err := s.Save(); err == nil {
		t.Fatal("expected slice error")
	}
	if s.CanCrop() {
		t.Error("CanCrop() = true after failed save")
	}

	clip, err := s.Save()
	if err != nil {
		t.Fatalf("second Save: %v", err)
	}
	if string(clip.Audio) != "original" || clip.Cropped {
		t.Errorf("second Save = %+v, want the original bytes", clip)
	}
}

func TestEditSession_Cancel(t *testing.T) {
	s := newSession(t, sineBuffer(8000, 1))
	s.Cancel()
	if s.CanCrop() {
		t.Error("CanCrop() = true after Cancel")
	}
	if _, err := s.Reset(); !errors.Is(err, ErrCropDisabled) {
		t.Errorf("Reset after Cancel err = %v, want ErrCropDisabled", err)
	}
}

func TestEditSession_SaveWhileDragging(t *testing.T) {
	const rate = 8000
	s := newSession(t, sineBuffer(rate, 2))

	var (
		mu   sync.Mutex
		seen = map[crop.Range]bool{{Start: 0, End: 2}: true}
	)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := range 300 {
			h := crop.HandleStart
			x := float64(i % 45)
			if i%2 == 1 {
				h = crop.HandleEnd
				x = float64(100 - i%45)
			}
			_ = s.PointerDown(h)
			r, moved, _ := s.PointerMove(x, 100)
			s.PointerUp()
			if moved {
				mu.Lock()
				seen[r] = true
				mu.Unlock()
			}
		}
	}()

	clips := make(chan *Clip, 100)
	go func() {
		defer wg.Done()
		defer close(clips)
		for range 100 {
			clip, err := s.Save()
			if err != nil {
				t.Errorf("Save: %v", err)
				return
			}
			clips <- clip
		}
	}()

	var saved []*Clip
	for clip := range clips {
		saved = append(saved, clip)
	}
	wg.Wait()

	for _, clip := range saved {
		if !seen[clip.Range] {
			t.Errorf("saved range %+v was never set", clip.Range)
			continue
		}
		frames := int(math.Round(clip.Range.End*rate)) - int(math.Round(clip.Range.Start*rate))
		if len(clip.Audio) != 44+frames*2 {
			t.Errorf("range %+v: len(Audio) = %d, want %d", clip.Range, len(clip.Audio), 44+frames*2)
		}
		if clip.Buffer.Len() != frames {
			t.Errorf("range %+v: %d frames, want %d", clip.Range, clip.Buffer.Len(), frames)
		}
	}
}
