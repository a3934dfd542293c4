package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// Position is where a chirp bubble sits on the page, in CSS pixels.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Chirp is a voice note pinned to a page.
type Chirp struct {
	ID           string    `json:"id"`
	Page         string    `json:"page"`
	Name         string    `json:"name"`
	Color        string    `json:"color"`
	Position     Position  `json:"position"`
	Audio        []byte    `json:"audio"`
	MimeType     string    `json:"mime_type"`
	Duration     float64   `json:"duration"`
	Transcript   string    `json:"transcript,omitempty"`
	Language     string    `json:"language,omitempty"`
	SelectedText string    `json:"selected_text,omitempty"`
	CreatedAt    time.Time `json:"created_at"`

	// Set on team copies only.
	SharedBy         string    `json:"shared_by,omitempty"`
	SharedByUsername string    `json:"shared_by_username,omitempty"`
	SharedAt         time.Time `json:"shared_at,omitzero"`
	TeamCode         string    `json:"team_code,omitempty"`
}

func chirpKey(page, id string) string {
	return chirpPrefix + page + sep + id
}

func pagePrefix(page string) string {
	return chirpPrefix + page + sep
}

// AddChirp stores c, assigning an ID and timestamp when missing, and counts
// it in the profile's total.
func (s *Store) AddChirp(c *Chirp) error {
	if c.Page == "" {
		return ErrInvalidPage
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := setJSON(txn, chirpKey(c.Page, c.ID), c); err != nil {
			return fmt.Errorf("save chirp: %w", err)
		}
		return bumpStat(txn, StatTotalWhispers, 1)
	})
}

// ListChirps returns the chirps of a page, oldest first.
func (s *Store) ListChirps(page string) ([]Chirp, error) {
	var chirps []Chirp
	err := s.db.View(func(txn *badger.Txn) error {
		return scanJSON(txn, pagePrefix(page), func(val []byte) error {
			var c Chirp
			if err := json.Unmarshal(val, &c); err != nil {
				return err
			}
			chirps = append(chirps, c)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list chirps: %w", err)
	}

	sortByCreated(chirps)
	return chirps, nil
}

// GetChirp returns one chirp.
func (s *Store) GetChirp(page, id string) (*Chirp, error) {
	var c Chirp
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, chirpKey(page, id), &c)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// MoveChirp updates the position of a chirp after a drag.
func (s *Store) MoveChirp(page, id string, pos Position) error {
	return s.db.Update(func(txn *badger.Txn) error {
		var c Chirp
		if err := getJSON(txn, chirpKey(page, id), &c); err != nil {
			return err
		}
		c.Position = pos
		return setJSON(txn, chirpKey(page, id), &c)
	})
}

// SetTranscript stores the transcript and language of a chirp.
func (s *Store) SetTranscript(page, id, text, lang string) (*Chirp, error) {
	var c Chirp
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := getJSON(txn, chirpKey(page, id), &c); err != nil {
			return err
		}
		c.Transcript = text
		c.Language = lang
		return setJSON(txn, chirpKey(page, id), &c)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteChirp removes one chirp.
func (s *Store) DeleteChirp(page, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(chirpKey(page, id))
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return txn.Delete(key)
	})
}

// ClearPage removes every chirp on a page and returns how many there were.
func (s *Store) ClearPage(page string) (int, error) {
	var n int
	err := s.db.Update(func(txn *badger.Txn) error {
		var err error
		n, err = deletePrefix(txn, pagePrefix(page))
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("clear page: %w", err)
	}
	return n, nil
}

func sortByCreated(chirps []Chirp) {
	slices.SortStableFunc(chirps, func(a, b Chirp) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
}
