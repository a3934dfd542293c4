package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	opuscodec "github.com/jj11hh/opus"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4/pkg/media/oggreader"
	"github.com/pion/webrtc/v4/pkg/media/oggwriter"
)

// Opus always decodes at 48 kHz; granule positions count 48 kHz frames.
const (
	opusDecodeRate = 48000
	opusFrameMs    = 20
	opusMaxFrame   = 5760 // 120 ms at 48 kHz, the largest Opus packet
	opusMaxPacket  = 1275
)

// MimeOggOpus is the content type of EncodeOggOpus output.
const MimeOggOpus = "audio/ogg; codecs=opus"

// ErrOpusUnsupported is returned when a buffer cannot be Opus encoded without resampling.
var ErrOpusUnsupported = errors.New("buffer not encodable as opus")

var opusRates = map[int]bool{8000: true, 12000: true, 16000: true, 24000: true, 48000: true}

// DecodeOggOpus decodes an Ogg Opus stream holding one packet per page, as
// written by EncodeOggOpus. The result is at 48 kHz with the header pre-skip removed.
func DecodeOggOpus(data []byte) (*Buffer, error) {
	reader, header, err := oggreader.NewWith(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Format: "ogg", Err: fmt.Errorf("read header: %w", err)}
	}

	chans := int(header.Channels)
	if chans < 1 || chans > 2 {
		return nil, &DecodeError{Format: "ogg", Err: fmt.Errorf("unsupported channel count %d", chans)}
	}

	dec, err := opuscodec.NewDecoder(opusDecodeRate, chans)
	if err != nil {
		return nil, &DecodeError{Format: "ogg", Err: fmt.Errorf("create opus decoder: %w", err)}
	}

	pcm := make([]float32, opusMaxFrame*chans)
	var interleaved []float32
	for {
		page, _, err := reader.ParseNextPage()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &DecodeError{Format: "ogg", Err: fmt.Errorf("read page: %w", err)}
		}
		if len(page) == 0 || bytes.HasPrefix(page, []byte("OpusTags")) {
			continue
		}

		n, err := dec.DecodeFloat32(page, pcm)
		if err != nil {
			return nil, &DecodeError{Format: "ogg", Err: fmt.Errorf("decode packet: %w", err)}
		}
		interleaved = append(interleaved, pcm[:n*chans]...)
	}

	skip := min(int(header.PreSkip)*chans, len(interleaved))
	buf, err := FromInterleaved(opusDecodeRate, chans, interleaved[skip:])
	if err != nil {
		return nil, &DecodeError{Format: "ogg", Err: err}
	}
	return buf, nil
}

// EncodeOggOpus compresses buf into an Ogg Opus stream using 20 ms frames.
// Only Opus-native sample rates and mono or stereo buffers are accepted.
func EncodeOggOpus(buf *Buffer) ([]byte, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	chans := buf.NumChannels()
	if !opusRates[buf.SampleRate] {
		return nil, fmt.Errorf("%w: sample rate %d", ErrOpusUnsupported, buf.SampleRate)
	}
	if chans > 2 {
		return nil, fmt.Errorf("%w: %d channels", ErrOpusUnsupported, chans)
	}

	enc, err := opuscodec.NewEncoder(buf.SampleRate, chans, opuscodec.AppVoIP)
	if err != nil {
		return nil, fmt.Errorf("create opus encoder: %w", err)
	}

	var out bytes.Buffer
	writer, err := oggwriter.NewWith(&out, uint32(buf.SampleRate), uint16(chans))
	if err != nil {
		return nil, fmt.Errorf("create ogg writer: %w", err)
	}

	frame := buf.SampleRate * opusFrameMs / 1000
	tick := uint32(opusDecodeRate * opusFrameMs / 1000)
	samples := buf.Interleaved()
	packet := make([]byte, opusMaxPacket)
	pcm := make([]float32, frame*chans)

	var ts uint32
	for off := 0; off < len(samples); off += frame * chans {
		// Zero-pad the final partial frame.
		n := copy(pcm, samples[off:])
		clear(pcm[n:])

		size, err := enc.EncodeFloat32(pcm, packet)
		if err != nil {
			return nil, fmt.Errorf("opus encode: %w", err)
		}
		payload := make([]byte, size)
		copy(payload, packet[:size])

		if err := writer.WriteRTP(&rtp.Packet{
			Header:  rtp.Header{Timestamp: ts},
			Payload: payload,
		}); err != nil {
			return nil, fmt.Errorf("write ogg page: %w", err)
		}
		ts += tick
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close ogg writer: %w", err)
	}
	return out.Bytes(), nil
}
