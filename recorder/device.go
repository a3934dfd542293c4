package recorder

import (
	"fmt"
	"log/slog"

	"github.com/gordonklaus/portaudio"
)

// framesPerBuffer is the capture callback size, about 23 ms at 44.1 kHz.
const framesPerBuffer = 1024

// portaudioDevice captures mono input from the system default device.
type portaudioDevice struct {
	stream *portaudio.Stream
}

func (d *portaudioDevice) start(sampleRate int, callback func(samples []float32)) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initialize portaudio: %w", err)
	}

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(sampleRate), framesPerBuffer, func(in []float32) {
		// PortAudio reuses its buffer between callbacks.
		samples := make([]float32, len(in))
		copy(samples, in)
		callback(samples)
	})
	if err != nil {
		_ = portaudio.Terminate()
		return fmt.Errorf("open input stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return fmt.Errorf("start input stream: %w", err)
	}

	d.stream = stream
	slog.Debug("input stream opened", "sample_rate", sampleRate)
	return nil
}

func (d *portaudioDevice) stop() error {
	if d.stream == nil {
		return nil
	}

	err := d.stream.Stop()
	if cerr := d.stream.Close(); err == nil {
		err = cerr
	}
	d.stream = nil
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	if err != nil {
		return fmt.Errorf("stop input stream: %w", err)
	}

	slog.Debug("input stream closed")
	return nil
}
