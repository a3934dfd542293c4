// Package stt provides speech-to-text provider interface and implementations.
package stt

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"go.aimuz.me/chirps/audio"
)

// ErrNotReady is returned when a provider is missing credentials.
var ErrNotReady = errors.New("transcription provider not ready")

// ErrNoProvider is returned when the registry has nothing to offer.
var ErrNoProvider = errors.New("no transcription provider registered")

// TranscribeResult represents the result of a transcription.
type TranscribeResult struct {
	Text     string `json:"text"`     // Transcribed text
	Language string `json:"language"` // Language code when the provider reports one
}

// Provider defines the interface for speech-to-text providers.
type Provider interface {
	// Name returns the provider identifier.
	Name() string

	// DisplayName returns the human-readable provider name.
	DisplayName() string

	// IsReady returns true if the provider is ready to use.
	IsReady() bool

	// Transcribe converts a clip to text.
	// language: source language code (empty or "auto" for auto-detect)
	Transcribe(ctx context.Context, clip *audio.Buffer, language string) (*TranscribeResult, error)

	// Close releases resources held by the provider.
	Close() error
}

// Registry holds registered STT providers.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates a new provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider to the registry, replacing one of the same name.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Get returns a provider by name.
func (r *Registry) Get(name string) Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.providers[name]
}

// List returns all registered providers sorted by name.
func (r *Registry) List() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		result = append(result, p)
	}
	slices.SortFunc(result, func(a, b Provider) int { return strings.Compare(a.Name(), b.Name()) })
	return result
}

// Ready returns the first ready provider, preferring name when given.
func (r *Registry) Ready(name string) (Provider, error) {
	if p := r.Get(name); p != nil && p.IsReady() {
		return p, nil
	}
	for _, p := range r.List() {
		if p.IsReady() {
			return p, nil
		}
	}
	if len(r.List()) == 0 {
		return nil, ErrNoProvider
	}
	return nil, ErrNotReady
}

// Close releases all providers.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, p := range r.providers {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
