package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func TestEncodeWAV_Header(t *testing.T) {
	buf := NewMono(44100, make([]float32, 100))

	data, err := EncodeWAV(buf)
	if err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}
	if len(data) != 244 {
		t.Fatalf("len = %d, want 244", len(data))
	}

	le := binary.LittleEndian
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"RIFF", string(data[0:4]), "RIFF"},
		{"chunk size", le.Uint32(data[4:8]), uint32(236)},
		{"WAVE", string(data[8:12]), "WAVE"},
		{"fmt ", string(data[12:16]), "fmt "},
		{"fmt size", le.Uint32(data[16:20]), uint32(16)},
		{"audio format", le.Uint16(data[20:22]), uint16(1)},
		{"channels", le.Uint16(data[22:24]), uint16(1)},
		{"sample rate", le.Uint32(data[24:28]), uint32(44100)},
		{"byte rate", le.Uint32(data[28:32]), uint32(88200)},
		{"block align", le.Uint16(data[32:34]), uint16(2)},
		{"bits", le.Uint16(data[34:36]), uint16(16)},
		{"data", string(data[36:40]), "data"},
		{"data size", le.Uint32(data[40:44]), uint32(200)},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestEncodeWAV_StereoHeader(t *testing.T) {
	data, err := EncodeWAV(NewBuffer(22050, 2, 10))
	if err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}

	le := binary.LittleEndian
	if got := le.Uint32(data[28:32]); got != 22050*2*2 {
		t.Errorf("byte rate = %d, want %d", got, 22050*2*2)
	}
	if got := le.Uint16(data[32:34]); got != 4 {
		t.Errorf("block align = %d, want 4", got)
	}
	if got := le.Uint32(data[40:44]); got != 40 {
		t.Errorf("data size = %d, want 40", got)
	}
}

func TestEncodeWAV_Interleaving(t *testing.T) {
	buf := &Buffer{
		SampleRate: 8000,
		Channels: [][]float32{
			{1, 0},
			{-1, 0.5},
		},
	}

	data, err := EncodeWAV(buf)
	if err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}

	want := []int16{32767, -32768, 0, 16384}
	for i, w := range want {
		got := int16(binary.LittleEndian.Uint16(data[44+2*i:]))
		if got != w {
			t.Errorf("sample %d = %d, want %d", i, got, w)
		}
	}
}

func TestToPCM16(t *testing.T) {
	tests := []struct {
		in   float32
		want int16
	}{
		{0, 0},
		{1, 32767},
		{-1, -32768},
		{1.5, 32767},
		{-7, -32768},
		{0.5, 16384},
		{-0.5, -16384},
		{float32(math.NaN()), 0},
		{float32(math.Inf(1)), 32767},
	}

	for _, tt := range tests {
		if got := toPCM16(tt.in); got != tt.want {
			t.Errorf("toPCM16(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestEncodeWAV_RoundTrip(t *testing.T) {
	buf := NewBuffer(16000, 2, 1600)
	sine := makeSine(16000, 0.1, 523.25)
	for i := range sine {
		buf.Channels[0][i] = sine[i]
		buf.Channels[1][i] = -sine[i] / 3
	}
	buf.Channels[0][0] = 1
	buf.Channels[1][0] = -1

	data, err := EncodeWAV(buf)
	if err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}

	got, err := DecodeWAV(data)
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}
	if got.NumChannels() != 2 || got.SampleRate != 16000 || got.Len() != 1600 {
		t.Fatalf("decoded %dch %dHz %d frames, want 2ch 16000Hz 1600 frames",
			got.NumChannels(), got.SampleRate, got.Len())
	}

	const tolerance = 1.0 / 32767
	for ch := range buf.Channels {
		for i := range buf.Channels[ch] {
			diff := math.Abs(float64(got.Channels[ch][i] - buf.Channels[ch][i]))
			if diff > tolerance {
				t.Fatalf("channel %d frame %d: |%v - %v| = %v > %v",
					ch, i, got.Channels[ch][i], buf.Channels[ch][i], diff, tolerance)
			}
		}
	}
}

func TestEncodeWAV_CroppedSine(t *testing.T) {
	buf := NewMono(44100, makeSine(44100, 2, 440))

	cropped, err := Slice(buf, 0.5, 1.5)
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}
	data, err := EncodeWAV(cropped)
	if err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}

	if got := binary.LittleEndian.Uint32(data[40:44]); got != 88200 {
		t.Errorf("data size = %d, want 88200", got)
	}
	if len(data) != 44+88200 {
		t.Errorf("len = %d, want %d", len(data), 44+88200)
	}
}

func TestEncodeWAV_Invalid(t *testing.T) {
	tests := []struct {
		name string
		buf  *Buffer
	}{
		{"nil", nil},
		{"no channels", &Buffer{SampleRate: 8000}},
		{"zero rate", &Buffer{Channels: [][]float32{{0}}}},
		{"ragged", &Buffer{SampleRate: 8000, Channels: [][]float32{{0, 0}, {0}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := EncodeWAV(tt.buf); !errors.Is(err, ErrInvalidBuffer) {
				t.Errorf("err = %v, want ErrInvalidBuffer", err)
			}
		})
	}
}

func TestWriteWAV(t *testing.T) {
	buf := NewMono(8000, makeSine(8000, 0.05, 1000))

	want, err := EncodeWAV(buf)
	if err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}
	var out bytes.Buffer
	if err := WriteWAV(&out, buf); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}
	if !bytes.Equal(out.Bytes(), want) {
		t.Error("WriteWAV bytes differ from EncodeWAV")
	}
}
