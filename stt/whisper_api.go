package stt

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"go.aimuz.me/chirps/audio"
)

// WhisperAPI implements the Provider interface using OpenAI's transcription API.
type WhisperAPI struct {
	client openai.Client
	model  string
	ready  bool
}

// WhisperAPIConfig holds configuration for WhisperAPI.
type WhisperAPIConfig struct {
	APIKey  string
	BaseURL string // Optional, defaults to OpenAI's API
	Model   string // Optional, defaults to "whisper-1"
}

// NewWhisperAPI creates a new WhisperAPI provider.
func NewWhisperAPI(cfg WhisperAPIConfig) *WhisperAPI {
	model := cfg.Model
	if model == "" {
		model = string(openai.AudioModelWhisper1)
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &WhisperAPI{
		client: openai.NewClient(opts...),
		model:  model,
		ready:  cfg.APIKey != "",
	}
}

func (w *WhisperAPI) Name() string        { return "whisper-api" }
func (w *WhisperAPI) DisplayName() string { return "OpenAI Whisper API" }
func (w *WhisperAPI) IsReady() bool       { return w.ready }
func (w *WhisperAPI) Close() error        { return nil }

// Transcribe uploads the clip as 16-bit mono WAV.
func (w *WhisperAPI) Transcribe(ctx context.Context, clip *audio.Buffer, language string) (*TranscribeResult, error) {
	if !w.ready {
		return nil, fmt.Errorf("%s: %w: API key required", w.Name(), ErrNotReady)
	}
	if err := clip.Validate(); err != nil {
		return nil, err
	}

	wavData, err := audio.EncodeWAV(audio.NewMono(clip.SampleRate, clip.Mixdown()))
	if err != nil {
		return nil, fmt.Errorf("convert to WAV: %w", err)
	}

	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(wavData), "chirp.wav", audio.MimeWAV),
		Model: openai.AudioModel(w.model),
	}
	// The API has no "auto"; leaving the field out means auto-detect.
	lang := strings.TrimSpace(language)
	if lang == "auto" {
		lang = ""
	}
	if lang != "" {
		params.Language = openai.String(lang)
	}

	resp, err := w.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}

	return &TranscribeResult{
		Text:     strings.TrimSpace(resp.Text),
		Language: lang,
	}, nil
}
