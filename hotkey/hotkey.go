// Package hotkey maps global keyboard shortcuts to chirp actions.
package hotkey

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	hook "github.com/robotn/gohook"
)

// ErrRunning is returned when starting a manager twice.
var ErrRunning = errors.New("hotkey listener already running")

// Action is what a shortcut does.
type Action string

const (
	ActionRecord  Action = "record"  // start or stop recording
	ActionPlay    Action = "play"    // play the crop window
	ActionReset   Action = "reset"   // reset the crop window
	ActionSave    Action = "save"    // save the chirp
	ActionHeatmap Action = "heatmap" // toggle the heatmap
)

// repeatGuard swallows key repeats while a chord is held.
const repeatGuard = 300 * time.Millisecond

// Binding ties a key chord to an action.
type Binding struct {
	Action Action   `json:"action"`
	Keys   []string `json:"keys"`
	Label  string   `json:"label"`
}

// Chord renders the keys as "Alt+R".
func (b Binding) Chord() string {
	parts := make([]string, len(b.Keys))
	for i, k := range b.Keys {
		parts[i] = strings.ToUpper(k[:1]) + k[1:]
	}
	return strings.Join(parts, "+")
}

// DefaultBindings returns the built-in shortcut table.
func DefaultBindings() []Binding {
	return []Binding{
		{Action: ActionRecord, Keys: []string{"alt", "r"}, Label: "Start or stop recording"},
		{Action: ActionPlay, Keys: []string{"alt", "p"}, Label: "Play cropped audio"},
		{Action: ActionReset, Keys: []string{"alt", "x"}, Label: "Reset crop"},
		{Action: ActionSave, Keys: []string{"alt", "s"}, Label: "Save chirp"},
		{Action: ActionHeatmap, Keys: []string{"alt", "h"}, Label: "Toggle heatmap"},
	}
}

// Manager listens for the bindings and reports actions to a handler.
type Manager struct {
	bindings []Binding
	handler  func(Action)
	now      func() time.Time

	mu      sync.Mutex
	running bool
	last    map[Action]time.Time
	done    chan struct{}
}

// NewManager creates a manager. The handler runs on the listener goroutine
// and should not block.
func NewManager(bindings []Binding, handler func(Action)) *Manager {
	return &Manager{
		bindings: bindings,
		handler:  handler,
		now:      time.Now,
		last:     make(map[Action]time.Time),
	}
}

// Bindings returns the shortcut table.
func (m *Manager) Bindings() []Binding {
	return m.bindings
}

// Start registers the bindings with the OS hook and starts listening.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return ErrRunning
	}

	for _, b := range m.bindings {
		action := b.Action
		hook.Register(hook.KeyDown, b.Keys, func(hook.Event) {
			m.dispatch(action)
		})
	}

	events := hook.Start()
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-hook.Process(events)
	}()

	m.running = true
	m.done = done
	slog.Info("hotkeys registered", "count", len(m.bindings))
	return nil
}

// Stop ends the listener.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	done := m.done
	m.mu.Unlock()

	hook.End()
	<-done
}

// dispatch forwards an action unless it repeats within repeatGuard.
func (m *Manager) dispatch(action Action) bool {
	m.mu.Lock()
	now := m.now()
	if last, ok := m.last[action]; ok && now.Sub(last) < repeatGuard {
		m.mu.Unlock()
		return false
	}
	m.last[action] = now
	m.mu.Unlock()

	slog.Debug("hotkey", "action", action)
	if m.handler != nil {
		m.handler(action)
	}
	return true
}
