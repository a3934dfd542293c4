package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const (
	teamCodeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	teamCodeLen   = 6
)

// Team is a group that shares chirps.
type Team struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	Members   []string  `json:"members"`
}

func teamKey(code string) string {
	return teamPrefix + code
}

func teamChirpKey(code, page, id string) string {
	return teamChirpPrefix + code + sep + page + sep + id
}

// GenerateTeamCode returns a random six character join code.
func GenerateTeamCode() string {
	b := make([]byte, teamCodeLen)
	for i := range b {
		b[i] = teamCodeChars[rand.IntN(len(teamCodeChars))]
	}
	return string(b)
}

// CreateTeam creates a team owned by the local profile and joins it.
func (s *Store) CreateTeam(name string) (*Team, error) {
	var team *Team
	err := s.db.Update(func(txn *badger.Txn) error {
		p, err := loadProfile(txn)
		if err != nil {
			return err
		}

		code, err := unusedTeamCode(txn)
		if err != nil {
			return err
		}
		team = &Team{
			Code:      code,
			Name:      name,
			CreatedBy: p.ID,
			CreatedAt: time.Now(),
			Members:   []string{p.ID},
		}
		if err := setJSON(txn, teamKey(code), team); err != nil {
			return err
		}

		p.Teams = append(p.Teams, code)
		return setJSON(txn, profileKey, p)
	})
	if err != nil {
		return nil, fmt.Errorf("create team: %w", err)
	}
	return team, nil
}

func unusedTeamCode(txn *badger.Txn) (string, error) {
	for range 16 {
		code := GenerateTeamCode()
		_, err := txn.Get([]byte(teamKey(code)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", errors.New("no free team code")
}

// JoinTeam adds the local profile to an existing team.
func (s *Store) JoinTeam(code string) (*Team, error) {
	var team Team
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := getTeam(txn, code, &team); err != nil {
			return err
		}
		p, err := loadProfile(txn)
		if err != nil {
			return err
		}

		if !slices.Contains(team.Members, p.ID) {
			team.Members = append(team.Members, p.ID)
			if err := setJSON(txn, teamKey(code), &team); err != nil {
				return err
			}
		}
		if !slices.Contains(p.Teams, code) {
			p.Teams = append(p.Teams, code)
			return setJSON(txn, profileKey, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// LeaveTeam removes the local profile from a team and clears the active
// team when it was this one.
func (s *Store) LeaveTeam(code string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		p, err := loadProfile(txn)
		if err != nil {
			return err
		}

		var team Team
		switch err := getTeam(txn, code, &team); {
		case err == nil:
			team.Members = slices.DeleteFunc(team.Members, func(id string) bool { return id == p.ID })
			if err := setJSON(txn, teamKey(code), &team); err != nil {
				return err
			}
		case !errors.Is(err, ErrTeamNotFound):
			return err
		}

		p.Teams = slices.DeleteFunc(p.Teams, func(c string) bool { return c == code })
		if err := setJSON(txn, profileKey, p); err != nil {
			return err
		}

		active, err := activeCode(txn)
		if err != nil {
			return err
		}
		if active == code {
			return txn.Delete([]byte(activeTeamKey))
		}
		return nil
	})
}

// SetActiveTeam selects the team used for sharing and team heatmaps.
func (s *Store) SetActiveTeam(code string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		var team Team
		if err := getTeam(txn, code, &team); err != nil {
			return err
		}
		return txn.Set([]byte(activeTeamKey), []byte(code))
	})
}

// ActiveTeam returns the selected team, or nil when none is selected.
func (s *Store) ActiveTeam() (*Team, error) {
	var team *Team
	err := s.db.View(func(txn *badger.Txn) error {
		code, err := activeCode(txn)
		if err != nil || code == "" {
			return err
		}
		var t Team
		switch err := getTeam(txn, code, &t); {
		case err == nil:
			team = &t
		case !errors.Is(err, ErrTeamNotFound):
			return err
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load active team: %w", err)
	}
	return team, nil
}

// UserTeams returns the teams the local profile belongs to.
func (s *Store) UserTeams() ([]Team, error) {
	var teams []Team
	err := s.db.Update(func(txn *badger.Txn) error {
		p, err := loadProfile(txn)
		if err != nil {
			return err
		}
		for _, code := range p.Teams {
			var t Team
			switch err := getTeam(txn, code, &t); {
			case err == nil:
				teams = append(teams, t)
			case !errors.Is(err, ErrTeamNotFound):
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return teams, nil
}

// ShareChirp copies a chirp into a team, stamped with the sharer.
func (s *Store) ShareChirp(c Chirp, code string) (*Chirp, error) {
	err := s.db.Update(func(txn *badger.Txn) error {
		var team Team
		if err := getTeam(txn, code, &team); err != nil {
			return err
		}
		p, err := loadProfile(txn)
		if err != nil {
			return err
		}

		c.SharedBy = p.ID
		c.SharedByUsername = p.Username
		c.SharedAt = time.Now()
		c.TeamCode = code
		if err := setJSON(txn, teamChirpKey(code, c.Page, c.ID), &c); err != nil {
			return err
		}

		p.Stats.SharedWhispers++
		p.Stats.TeamContributions++
		return setJSON(txn, profileKey, p)
	})
	if err != nil {
		return nil, fmt.Errorf("share chirp: %w", err)
	}
	return &c, nil
}

// TeamChirpsForPage returns the chirps shared with a team on one page.
// Unknown teams have no chirps.
func (s *Store) TeamChirpsForPage(code, page string) ([]Chirp, error) {
	var chirps []Chirp
	err := s.db.View(func(txn *badger.Txn) error {
		return scanJSON(txn, teamChirpPrefix+code+sep+page+sep, func(val []byte) error {
			var c Chirp
			if err := json.Unmarshal(val, &c); err != nil {
				return err
			}
			chirps = append(chirps, c)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list team chirps: %w", err)
	}

	sortByCreated(chirps)
	return chirps, nil
}

func getTeam(txn *badger.Txn, code string, t *Team) error {
	err := getJSON(txn, teamKey(code), t)
	if errors.Is(err, ErrNotFound) {
		return ErrTeamNotFound
	}
	return err
}

func activeCode(txn *badger.Txn) (string, error) {
	item, err := txn.Get([]byte(activeTeamKey))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	v, err := item.ValueCopy(nil)
	return string(v), err
}
