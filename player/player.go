// Package player previews the cropped window of a chirp.
package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gordonklaus/portaudio"

	"go.aimuz.me/chirps/audio"
	"go.aimuz.me/chirps/crop"
)

// ErrNothingToPlay is returned for empty windows.
var ErrNothingToPlay = errors.New("nothing to play")

// sink writes interleaved samples to an output device.
type sink interface {
	open(sampleRate, channels int) error
	write(ctx context.Context, interleaved []float32) error
	close() error
}

// Player plays one clip at a time; starting a new one stops the previous.
type Player struct {
	mu      sync.Mutex
	newSink func() sink
	cancel  context.CancelFunc
	done    chan struct{}
}

// New returns a player on the default output device.
func New() *Player {
	return &Player{newSink: func() sink { return &portaudioSink{} }}
}

// Play starts playback of buf between r.Start and r.End seconds and returns
// immediately. onDone, if set, runs when playback finishes or is stopped.
func (p *Player) Play(buf *audio.Buffer, r crop.Range, onDone func(error)) error {
	clip, err := audio.Slice(buf, r.Start, r.End)
	if err != nil {
		return fmt.Errorf("slice playback window: %w", err)
	}
	if clip.Len() == 0 {
		return ErrNothingToPlay
	}

	p.Stop()

	p.mu.Lock()
	defer p.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done

	s := p.newSink()
	go func() {
		defer close(done)
		err := play(ctx, s, clip)
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("play chirp", "error", err)
		}
		if onDone != nil {
			onDone(err)
		}
	}()
	return nil
}

// Stop halts playback and waits for the device to be released.
func (p *Player) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// IsPlaying reports whether a clip is still playing.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()

	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

func play(ctx context.Context, s sink, clip *audio.Buffer) error {
	if err := s.open(clip.SampleRate, clip.NumChannels()); err != nil {
		return err
	}
	defer func() {
		if err := s.close(); err != nil {
			slog.Warn("close output", "error", err)
		}
	}()
	return s.write(ctx, clip.Interleaved())
}

// outputFrames is the playback block size per channel.
const outputFrames = 1024

// portaudioSink writes to the system default output device.
type portaudioSink struct {
	stream   *portaudio.Stream
	block    []float32
	channels int
}

func (s *portaudioSink) open(sampleRate, channels int) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initialize portaudio: %w", err)
	}
	s.channels = channels
	s.block = make([]float32, outputFrames*channels)

	stream, err := portaudio.OpenDefaultStream(0, channels, float64(sampleRate), outputFrames, &s.block)
	if err != nil {
		_ = portaudio.Terminate()
		return fmt.Errorf("open output stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return fmt.Errorf("start output stream: %w", err)
	}
	s.stream = stream
	return nil
}

func (s *portaudioSink) write(ctx context.Context, interleaved []float32) error {
	for off := 0; off < len(interleaved); off += len(s.block) {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := copy(s.block, interleaved[off:])
		clear(s.block[n:])
		if err := s.stream.Write(); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	return nil
}

func (s *portaudioSink) close() error {
	if s.stream == nil {
		return nil
	}
	err := s.stream.Stop()
	if cerr := s.stream.Close(); err == nil {
		err = cerr
	}
	s.stream = nil
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	return err
}
