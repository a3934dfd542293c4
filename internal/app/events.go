// Package app provides the core application service for Wails bindings.
package app

// Event names for frontend communication.
const (
	EventEnvelope       = "chirp-envelope"
	EventRange          = "chirp-range"
	EventPlay           = "chirp-play"
	EventPlayDone       = "chirp-play-done"
	EventLevels         = "chirp-levels"
	EventPlaced         = "chirp-placed"
	EventDeleted        = "chirp-deleted"
	EventRecordingState = "recording-state"
	EventSaveRequested  = "chirp-save-requested"
	EventHeatmapToggle  = "heatmap-toggle"
)

// DeletedEvent identifies a removed chirp.
type DeletedEvent struct {
	Page string `json:"page"`
	ID   string `json:"id"`
}
