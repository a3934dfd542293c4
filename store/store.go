// Package store persists chirps, teams and the local profile in badger.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

var (
	// ErrNotFound is returned when a chirp or profile does not exist.
	ErrNotFound = errors.New("not found")
	// ErrTeamNotFound is returned for unknown team codes.
	ErrTeamNotFound = errors.New("team not found")
	// ErrInvalidPage is returned when a page address has no host.
	ErrInvalidPage = errors.New("invalid page address")
)

// Key layout. Segments are separated by NUL so page keys may contain '/'.
const (
	sep             = "\x00"
	chirpPrefix     = "chirp" + sep
	teamPrefix      = "team" + sep
	teamChirpPrefix = "teamchirp" + sep
	profileKey      = "profile"
	activeTeamKey   = "active_team"
)

// Store is a badger-backed chirp database.
type Store struct {
	db *badger.DB
}

// Open opens or creates a store at path.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(slogLogger{})
	return open(opts)
}

// OpenInMemory opens a store that lives only in memory.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(slogLogger{})
	return open(opts)
}

func open(opts badger.Options) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// PageKey reduces a page address to hostname + path, the key chirps are
// stored under. Query strings and fragments are dropped.
func PageKey(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPage, err)
	}
	if u.Hostname() == "" {
		return "", ErrInvalidPage
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return u.Hostname() + path, nil
}

// ─── helpers ───

func getJSON(txn *badger.Txn, key string, v any) error {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func setJSON(txn *badger.Txn, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", strings.SplitN(key, sep, 2)[0], err)
	}
	return txn.Set([]byte(key), data)
}

// scanJSON decodes every value under prefix with fn.
func scanJSON(txn *badger.Txn, prefix string, fn func(val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}

// deletePrefix removes every key under prefix and returns how many went.
func deletePrefix(txn *badger.Txn, prefix string) (int, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)

	var keys [][]byte
	for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	it.Close()

	for _, k := range keys {
		if err := txn.Delete(k); err != nil {
			return 0, err
		}
	}
	return len(keys), nil
}

// slogLogger routes badger's internal logging into slog.
type slogLogger struct{}

func (slogLogger) Errorf(format string, args ...any) {
	slog.Error(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "badger")
}

func (slogLogger) Warningf(format string, args ...any) {
	slog.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "badger")
}

func (slogLogger) Infof(format string, args ...any) {
	slog.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "badger")
}

func (slogLogger) Debugf(format string, args ...any) {
	slog.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "badger")
}
