package audio

import (
	"bytes"
	"errors"
	"fmt"
)

// DecodeError reports that an audio container could not be turned into a Buffer.
type DecodeError struct {
	Format string // "wav", "ogg", or "unknown"
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s audio: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ErrUnknownFormat is wrapped by DecodeError when the container is not recognized.
var ErrUnknownFormat = errors.New("unrecognized audio container")

// Sniff names the container format of data: "wav", "ogg", or "unknown".
func Sniff(data []byte) string {
	switch {
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return "wav"
	case len(data) >= 4 && bytes.Equal(data[0:4], []byte("OggS")):
		return "ogg"
	default:
		return "unknown"
	}
}

// Decode turns a recorded or fetched audio blob into a Buffer.
// Failures are always *DecodeError.
func Decode(data []byte) (*Buffer, error) {
	var (
		buf *Buffer
		err error
	)
	switch format := Sniff(data); format {
	case "wav":
		buf, err = DecodeWAV(data)
	case "ogg":
		buf, err = DecodeOggOpus(data)
	default:
		return nil, &DecodeError{Format: format, Err: ErrUnknownFormat}
	}
	if err != nil {
		return nil, err
	}
	if err := buf.Validate(); err != nil {
		return nil, &DecodeError{Format: Sniff(data), Err: err}
	}
	return buf, nil
}
