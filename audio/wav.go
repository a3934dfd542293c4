package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAV layout constants for 16-bit linear PCM.
const (
	wavHeaderSize  = 44
	wavFmtSize     = 16
	wavFormatPCM   = 1
	wavBitsPerSamp = 16
	bytesPerSample = wavBitsPerSamp / 8
)

// MimeWAV is the content type of EncodeWAV output.
const MimeWAV = "audio/wav"

// chunkWriter appends little-endian RIFF fields in order.
type chunkWriter struct {
	buf []byte
}

func (w *chunkWriter) tag(id string) { w.buf = append(w.buf, id[:4]...) }
func (w *chunkWriter) u16(v uint16)  { w.buf = binary.LittleEndian.AppendUint16(w.buf, v) }
func (w *chunkWriter) u32(v uint32)  { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }
func (w *chunkWriter) i16(v int16)   { w.buf = binary.LittleEndian.AppendUint16(w.buf, uint16(v)) }

// header writes the canonical 44-byte RIFF/WAVE/fmt/data preamble.
func (w *chunkWriter) header(channels, sampleRate, frames int) {
	dataBytes := uint32(frames * channels * bytesPerSample)

	w.tag("RIFF")
	w.u32(36 + dataBytes)
	w.tag("WAVE")

	w.tag("fmt ")
	w.u32(wavFmtSize)
	w.u16(wavFormatPCM)
	w.u16(uint16(channels))
	w.u32(uint32(sampleRate))
	w.u32(uint32(sampleRate * channels * bytesPerSample)) // byte rate
	w.u16(uint16(channels * bytesPerSample))              // block align
	w.u16(wavBitsPerSamp)

	w.tag("data")
	w.u32(dataBytes)
}

// EncodeWAV serializes buf as a 16-bit PCM WAV file with interleaved channels.
func EncodeWAV(buf *Buffer) ([]byte, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	n, chans := buf.Len(), buf.NumChannels()
	w := chunkWriter{buf: make([]byte, 0, wavHeaderSize+n*chans*bytesPerSample)}
	w.header(chans, buf.SampleRate, n)

	for i := 0; i < n; i++ {
		for ch := 0; ch < chans; ch++ {
			w.i16(toPCM16(buf.Channels[ch][i]))
		}
	}
	return w.buf, nil
}

// WriteWAV streams the EncodeWAV bytes of buf to w.
func WriteWAV(w io.Writer, buf *Buffer) error {
	data, err := EncodeWAV(buf)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	return nil
}

// toPCM16 clamps s to [-1, 1] and scales it asymmetrically so that both -1
// and +1 map exactly onto the int16 extremes.
func toPCM16(s float32) int16 {
	v := float64(s)
	switch {
	case math.IsNaN(v):
		return 0
	case v > 1:
		v = 1
	case v < -1:
		v = -1
	}
	if v < 0 {
		return int16(math.Round(v * 32768))
	}
	return int16(math.Round(v * 32767))
}

// fromPCM inverts toPCM16 for any integer bit depth.
func fromPCM(v int, bitDepth int) float32 {
	full := float64(int64(1) << (bitDepth - 1))
	if v < 0 {
		return float32(float64(v) / full)
	}
	return float32(float64(v) / (full - 1))
}

// DecodeWAV parses an integer PCM WAV file (16, 24 or 32 bit).
func DecodeWAV(data []byte) (*Buffer, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, &DecodeError{Format: "wav", Err: fmt.Errorf("not a valid wav file")}
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, &DecodeError{Format: "wav", Err: fmt.Errorf("read pcm: %w", err)}
	}
	if dec.WavAudioFormat != wavFormatPCM {
		return nil, &DecodeError{Format: "wav", Err: fmt.Errorf("unsupported audio format %d", dec.WavAudioFormat)}
	}

	bitDepth := int(dec.BitDepth)
	switch bitDepth {
	case 16, 24, 32:
	default:
		return nil, &DecodeError{Format: "wav", Err: fmt.Errorf("unsupported bit depth %d", bitDepth)}
	}

	return fromIntBuffer(pcm, bitDepth)
}

func fromIntBuffer(pcm *goaudio.IntBuffer, bitDepth int) (*Buffer, error) {
	if pcm.Format == nil || pcm.Format.NumChannels < 1 || pcm.Format.SampleRate <= 0 {
		return nil, &DecodeError{Format: "wav", Err: fmt.Errorf("missing format")}
	}

	chans := pcm.Format.NumChannels
	frames := len(pcm.Data) / chans
	buf := NewBuffer(pcm.Format.SampleRate, chans, frames)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < chans; ch++ {
			buf.Channels[ch][i] = fromPCM(pcm.Data[i*chans+ch], bitDepth)
		}
	}
	return buf, nil
}
