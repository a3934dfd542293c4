package app

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.aimuz.me/chirps/audio"
	"go.aimuz.me/chirps/crop"
	"go.aimuz.me/chirps/internal/types"
)

// levelInterval is how often the visualizer is refreshed while recording.
const levelInterval = 50 * time.Millisecond

// levelBands is the number of visualizer bars.
const levelBands = 24

// capturer is the recorder as the adapter uses it.
type capturer interface {
	Start() error
	Stop() (*audio.Buffer, error)
	IsRecording() bool
	Duration() time.Duration
	Levels(bands int) []float64
}

// playback is the player as the service uses it.
type playback interface {
	Play(buf *audio.Buffer, r crop.Range, onDone func(error)) error
	Stop()
	IsPlaying() bool
}

// RecordingAdapter manages recording with proper synchronization.
type RecordingAdapter struct {
	mu       sync.Mutex
	rec      capturer
	stopChan chan struct{}
	done     chan struct{}
}

// Start begins a take and streams visualizer levels via the emit function.
func (ra *RecordingAdapter) Start(emit func(name string, data any)) error {
	ra.mu.Lock()
	defer ra.mu.Unlock()

	if ra.rec == nil {
		return errors.New("no recorder available")
	}
	if ra.stopChan != nil {
		return fmt.Errorf("recording already running")
	}

	if err := ra.rec.Start(); err != nil {
		return fmt.Errorf("start recording: %w", err)
	}

	ra.stopChan = make(chan struct{})
	ra.done = make(chan struct{})
	go ra.streamLevels(emit, ra.stopChan, ra.done)

	emit(EventRecordingState, types.RecordingState{Recording: true})
	slog.Info("recording started")
	return nil
}

func (ra *RecordingAdapter) streamLevels(emit func(string, any), stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(levelInterval)
	defer ticker.Stop()

	seq := 0
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			seq++
			emit(EventLevels, types.Levels{
				Bands:     ra.rec.Levels(levelBands),
				Timestamp: time.Now().UnixMilli(),
				Seq:       seq,
			})
			if seq%100 == 0 {
				slog.Debug("streamed levels", "count", seq, "duration", ra.rec.Duration())
			}
		}
	}
}

// Stop ends the take and returns it.
func (ra *RecordingAdapter) Stop(emit func(name string, data any)) (*audio.Buffer, error) {
	ra.mu.Lock()
	defer ra.mu.Unlock()

	if ra.stopChan == nil {
		return nil, fmt.Errorf("not recording")
	}

	close(ra.stopChan)
	<-ra.done
	ra.stopChan, ra.done = nil, nil

	buf, err := ra.rec.Stop()
	if err != nil {
		emit(EventRecordingState, types.RecordingState{})
		return nil, fmt.Errorf("stop recording: %w", err)
	}

	emit(EventRecordingState, types.RecordingState{Duration: buf.Duration()})
	slog.Info("recording stopped", "duration", buf.Duration())
	return buf, nil
}

// IsRecording reports whether a take is running.
func (ra *RecordingAdapter) IsRecording() bool {
	ra.mu.Lock()
	defer ra.mu.Unlock()
	return ra.stopChan != nil
}
