// Package types provides shared type definitions for the application.
package types

import (
	"go.aimuz.me/chirps/audio"
	"go.aimuz.me/chirps/heatmap"
)

// SessionInfo describes the clip loaded into the editor.
type SessionInfo struct {
	Active     bool    `json:"active"`
	CanCrop    bool    `json:"canCrop"`
	Duration   float64 `json:"duration"` // seconds
	SampleRate int     `json:"sampleRate"`
	Channels   int     `json:"channels"`
	MimeType   string  `json:"mimeType"`
	Error      string  `json:"error,omitempty"` // why cropping is disabled
}

// RangeView is the crop window shown over the waveform.
type RangeView struct {
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Duration float64 `json:"duration"`
}

// EnvelopeView is a waveform ready to draw.
type EnvelopeView struct {
	Peaks audio.Envelope `json:"peaks"`
	Range RangeView      `json:"range"`
}

// ClickView is the outcome of a waveform click.
type ClickView struct {
	Action string    `json:"action"`           // "play" or "range"
	Handle string    `json:"handle,omitempty"` // boundary moved for "range"
	Range  RangeView `json:"range"`
}

// Click actions.
const (
	ClickPlay  = "play"
	ClickRange = "range"
)

// RecordingState is emitted while recording starts, runs and stops.
type RecordingState struct {
	Recording bool    `json:"recording"`
	Duration  float64 `json:"duration"` // seconds
}

// Levels is a visualizer frame.
// Fields ordered by size for optimal memory layout.
type Levels struct {
	Bands     []float64 `json:"bands"`     // 24 bytes (slice header)
	Timestamp int64     `json:"timestamp"` // 8 bytes
	Seq       int       `json:"seq"`       // 8 bytes on 64-bit
}

// PlaceRequest places the edited chirp on a page.
type PlaceRequest struct {
	PageURL       string  `json:"pageUrl"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Name          string  `json:"name,omitempty"`
	Color         string  `json:"color,omitempty"` // defaults to the configured colour
	SelectedText  string  `json:"selectedText,omitempty"`
	ShareWithTeam bool    `json:"shareWithTeam,omitempty"`
}

// ChirpView is a stored chirp as the frontend sees it.
type ChirpView struct {
	ID               string  `json:"id"`
	Page             string  `json:"page"`
	Name             string  `json:"name"`
	Color            string  `json:"color"`
	ColorValue       string  `json:"colorValue"`
	X                float64 `json:"x"`
	Y                float64 `json:"y"`
	Duration         float64 `json:"duration"`
	MimeType         string  `json:"mimeType"`
	AudioURL         string  `json:"audioUrl"` // data: URL
	Transcript       string  `json:"transcript,omitempty"`
	Language         string  `json:"language,omitempty"`
	LanguageName     string  `json:"languageName,omitempty"`
	SelectedText     string  `json:"selectedText,omitempty"`
	CreatedAt        int64   `json:"createdAt"` // Unix milliseconds
	SharedByUsername string  `json:"sharedByUsername,omitempty"`
}

// HeatmapView is a computed heatmap for one page.
type HeatmapView struct {
	Mode    heatmap.Mode          `json:"mode"`
	Spots   []heatmap.Spot        `json:"spots"`
	Legend  []heatmap.LegendEntry `json:"legend"`
	Summary string                `json:"summary"`
}

// TrimView is the outcome of an automatic silence trim.
type TrimView struct {
	Range   RangeView `json:"range"`
	Trimmed bool      `json:"trimmed"` // false when the clip is silent throughout
}

// ColorOption is a selectable bubble colour.
type ColorOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// HotkeyView describes one keyboard shortcut.
type HotkeyView struct {
	Action string `json:"action"`
	Chord  string `json:"chord"`
	Label  string `json:"label"`
}

// ArticleView is the readable article of a page, chunked for speech.
type ArticleView struct {
	Title        string   `json:"title"`
	Chunks       []string `json:"chunks"`
	Characters   int      `json:"characters"`
	Language     string   `json:"language,omitempty"` // BCP 47, empty when undetermined
	LanguageName string   `json:"languageName,omitempty"`
}
