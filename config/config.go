// Package config handles application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
)

const (
	appName        = "chirps"
	oldAppName     = "sticky-whispers"
	configFileName = "config.json"
)

// Defaults.
const (
	DefaultTranscriptionModel = "whisper-1"
	DefaultColor              = "pink"
	DefaultRecordSampleRate   = 44100
	DefaultMaxRecordSeconds   = 30
	DefaultMinCropSpan        = 0.1
	DefaultWaveformWidth      = 300
	DefaultHeatmapMode        = "community"
	DefaultLogLevel           = "info"
)

// colors maps bubble colour names to their CSS value.
var colors = map[string]string{
	"pink":     "#FFB5C5",
	"lavender": "#E6E6FA",
	"mint":     "#B5EAD7",
	"peach":    "#FFDAB9",
	"sky":      "#B5D8EB",
}

// ColorNames returns the bubble colour names in display order.
func ColorNames() []string {
	return []string{"pink", "lavender", "mint", "peach", "sky"}
}

// ColorValue returns the CSS value of a bubble colour, falling back to pink.
func ColorValue(name string) string {
	if v, ok := colors[name]; ok {
		return v
	}
	return colors[DefaultColor]
}

// Config represents the application configuration.
type Config struct {
	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"`

	// Transcription
	OpenAIAPIKey          string `json:"openai_api_key,omitempty"`
	OpenAIBaseURL         string `json:"openai_base_url,omitempty"`
	TranscriptionModel    string `json:"transcription_model"`
	TranscriptionLanguage string `json:"transcription_language,omitempty"` // empty or "auto" detects
	AutoTranscribe        bool   `json:"auto_transcribe"`

	// Recording and editing
	DefaultColor     string  `json:"default_color"`
	RecordSampleRate int     `json:"record_sample_rate"`
	MaxRecordSeconds int     `json:"max_record_seconds"`
	MinCropSpan      float64 `json:"min_crop_span"`
	WaveformWidth    int     `json:"waveform_width"`

	// Shell
	HeatmapMode    string `json:"heatmap_mode"`
	LogLevel       string `json:"log_level"`
	HotkeysEnabled bool   `json:"hotkeys_enabled"`
}

// Load loads configuration from the config file.
// A default config is created if the file doesn't exist.
func Load() (*Config, error) {
	// Ensure migration from old app name to new app name
	if err := migrateLegacyConfig(); err != nil {
		return nil, fmt.Errorf("migrate legacy config: %w", err)
	}

	path, err := configPath()
	if err != nil {
		return nil, fmt.Errorf("get config path: %w", err)
	}

	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		// Fields missing from the file keep their defaults.
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("unmarshal config: %w", err)
		}
	}

	// The user id must survive restarts, so a fresh or repaired config is
	// written back straight away.
	if cfg.applyDefaults() {
		if err := cfg.Save(); err != nil {
			slog.Warn("save repaired config", "error", err)
		}
	}
	return cfg, nil
}

// Save persists the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return fmt.Errorf("get config path: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// DataDir returns a directory for application data next to the config file,
// creating it when needed.
func DataDir(name string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	path := filepath.Join(dir, appName, name)
	if err := os.MkdirAll(path, 0755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	return path, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Setters
// ─────────────────────────────────────────────────────────────────────────────

// SetAPIKey stores the OpenAI credentials used for transcripts.
func (c *Config) SetAPIKey(key, baseURL string) error {
	c.OpenAIAPIKey = strings.TrimSpace(key)
	c.OpenAIBaseURL = strings.TrimSpace(baseURL)
	return c.Save()
}

// SetTranscription updates the transcript settings.
func (c *Config) SetTranscription(model, language string, auto bool) error {
	if model == "" {
		model = DefaultTranscriptionModel
	}
	c.TranscriptionModel = model
	c.TranscriptionLanguage = language
	c.AutoTranscribe = auto
	return c.Save()
}

// SetDefaultColor changes the colour new chirps start with.
func (c *Config) SetDefaultColor(name string) error {
	if _, ok := colors[name]; !ok {
		return fmt.Errorf("unknown color: %s", name)
	}
	c.DefaultColor = name
	return c.Save()
}

// SetHeatmapMode changes the default heatmap mode.
func (c *Config) SetHeatmapMode(mode string) error {
	if !slices.Contains([]string{"community", "team"}, mode) {
		return fmt.Errorf("unknown heatmap mode: %s", mode)
	}
	c.HeatmapMode = mode
	return c.Save()
}

// SetHotkeysEnabled toggles the global shortcuts.
func (c *Config) SetHotkeysEnabled(enabled bool) error {
	c.HotkeysEnabled = enabled
	return c.Save()
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Helper functions

// applyDefaults repairs missing or out-of-range values and reports whether
// anything changed.
func (c *Config) applyDefaults() bool {
	changed := false
	fix := func(bad bool, apply func()) {
		if bad {
			apply()
			changed = true
		}
	}

	fix(c.UserID == "", func() { c.UserID = uuid.New().String() })
	fix(c.TranscriptionModel == "", func() { c.TranscriptionModel = DefaultTranscriptionModel })
	fix(colors[c.DefaultColor] == "", func() { c.DefaultColor = DefaultColor })
	fix(c.RecordSampleRate < 8000 || c.RecordSampleRate > 192000, func() { c.RecordSampleRate = DefaultRecordSampleRate })
	fix(c.MaxRecordSeconds <= 0 || c.MaxRecordSeconds > 600, func() { c.MaxRecordSeconds = DefaultMaxRecordSeconds })
	fix(c.MinCropSpan <= 0 || c.MinCropSpan > 5, func() { c.MinCropSpan = DefaultMinCropSpan })
	fix(c.WaveformWidth <= 0, func() { c.WaveformWidth = DefaultWaveformWidth })
	fix(c.HeatmapMode != "community" && c.HeatmapMode != "team", func() { c.HeatmapMode = DefaultHeatmapMode })
	fix(c.LogLevel == "", func() { c.LogLevel = DefaultLogLevel })
	return changed
}

func configPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	return filepath.Join(dir, appName, configFileName), nil
}

// Default returns a repaired default config that has not been saved.
func Default() *Config {
	cfg := defaultConfig()
	cfg.applyDefaults()
	return cfg
}

func defaultConfig() *Config {
	return &Config{
		TranscriptionModel: DefaultTranscriptionModel,
		DefaultColor:       DefaultColor,
		RecordSampleRate:   DefaultRecordSampleRate,
		MaxRecordSeconds:   DefaultMaxRecordSeconds,
		MinCropSpan:        DefaultMinCropSpan,
		WaveformWidth:      DefaultWaveformWidth,
		HeatmapMode:        DefaultHeatmapMode,
		LogLevel:           DefaultLogLevel,
		HotkeysEnabled:     true,
	}
}

// migrateLegacyConfig migrates configuration from old app name to new app name.
// If the old directory exists and the new one doesn't, it creates a symlink.
func migrateLegacyConfig() error {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return fmt.Errorf("get user config dir: %w", err)
	}

	oldDir := filepath.Join(configDir, oldAppName)
	newDir := filepath.Join(configDir, appName)

	// Check if old directory exists
	oldInfo, err := os.Stat(oldDir)
	if err != nil {
		if os.IsNotExist(err) {
			// No old directory, nothing to migrate
			return nil
		}
		return fmt.Errorf("stat old config dir: %w", err)
	}

	if !oldInfo.IsDir() {
		return nil
	}

	// New directory already exists, no migration needed
	_, err = os.Stat(newDir)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat new config dir: %w", err)
	}

	if err := os.Symlink(oldDir, newDir); err != nil {
		return fmt.Errorf("create symlink: %w", err)
	}

	return nil
}
