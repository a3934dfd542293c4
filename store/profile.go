package store

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// Stat names a profile counter.
type Stat string

const (
	StatTotalWhispers     Stat = "total_whispers"
	StatSharedWhispers    Stat = "shared_whispers"
	StatArticlesRead      Stat = "articles_read"
	StatTeamContributions Stat = "team_contributions"
)

// Stats are the profile counters.
type Stats struct {
	TotalWhispers     int `json:"total_whispers"`
	SharedWhispers    int `json:"shared_whispers"`
	ArticlesRead      int `json:"articles_read"`
	TeamContributions int `json:"team_contributions"`
}

func (s *Stats) counter(kind Stat) *int {
	switch kind {
	case StatTotalWhispers:
		return &s.TotalWhispers
	case StatSharedWhispers:
		return &s.SharedWhispers
	case StatArticlesRead:
		return &s.ArticlesRead
	case StatTeamContributions:
		return &s.TeamContributions
	}
	return nil
}

// Profile is the local user.
type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	Stats     Stats     `json:"stats"`
	Teams     []string  `json:"teams"`
}

func newProfile() *Profile {
	return &Profile{
		ID:        "user_" + uuid.NewString(),
		Username:  fmt.Sprintf("User%d", rand.IntN(10000)),
		CreatedAt: time.Now(),
		Teams:     []string{},
	}
}

// Profile returns the local profile, creating it on first use.
func (s *Store) Profile() (*Profile, error) {
	var p *Profile
	err := s.db.Update(func(txn *badger.Txn) error {
		var err error
		p, err = loadProfile(txn)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return p, nil
}

// SetUsername renames the local profile.
func (s *Store) SetUsername(name string) error {
	return s.updateProfile(func(p *Profile) error {
		p.Username = name
		return nil
	})
}

// UpdateStats adds n to a profile counter. Unknown counters are ignored.
func (s *Store) UpdateStats(kind Stat, n int) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return bumpStat(txn, kind, n)
	})
}

func (s *Store) updateProfile(fn func(p *Profile) error) error {
	return s.db.Update(func(txn *badger.Txn) error {
		p, err := loadProfile(txn)
		if err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
		return setJSON(txn, profileKey, p)
	})
}

// loadProfile reads the profile inside a read-write transaction, creating it
// when missing.
func loadProfile(txn *badger.Txn) (*Profile, error) {
	var p Profile
	err := getJSON(txn, profileKey, &p)
	if errors.Is(err, ErrNotFound) {
		np := newProfile()
		if err := setJSON(txn, profileKey, np); err != nil {
			return nil, err
		}
		return np, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func bumpStat(txn *badger.Txn, kind Stat, n int) error {
	p, err := loadProfile(txn)
	if err != nil {
		return err
	}
	c := p.Stats.counter(kind)
	if c == nil {
		return nil
	}
	*c += n
	return setJSON(txn, profileKey, p)
}
