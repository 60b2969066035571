// Package store persists the session cookies of a logged in account to a
// local file so later runs can skip the full login exchange.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	pikax "github.com/Akashic-y/Pikax"
	"github.com/gofrs/flock"
)

var (
	// ErrNotFound means no session file exists. This is the normal first
	// run condition, not a fault.
	ErrNotFound = errors.New("session file not found")
	// ErrCorrupted means the session file exists but could not be decoded.
	// The file is deleted as a side effect, a later Load sees ErrNotFound.
	ErrCorrupted = errors.New("session file corrupted")
)

// Cookie is one persisted session cookie entry.
type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SessionStore reads and writes the session file at a fixed path. Access is
// serialized with a sidecar lock file so concurrent runs do not interleave
// partial writes.
type SessionStore struct {
	log  pikax.Logger
	path string
	lock *flock.Flock
}

func NewSessionStore(log pikax.Logger, path string) *SessionStore {
	return &SessionStore{
		log:  log,
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Path returns the location of the session file.
func (s *SessionStore) Path() string {
	return s.path
}

// Save serializes the given cookies to the session file, overwriting any
// previous content.
func (s *SessionStore) Save(cookies []*http.Cookie) error {
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("failed locking session file: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	if _, err := os.Stat(s.path); err == nil {
		s.log.Infof("rewriting local session file: %s", s.path)
	} else {
		s.log.Infof("saving session to local file: %s", s.path)
	}

	entries := make([]Cookie, 0, len(cookies))
	for _, cookie := range cookies {
		entries = append(entries, Cookie{Name: cookie.Name, Value: cookie.Value})
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed serializing session: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed creating session directory: %w", err)
		}
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed writing session file: %w", err)
	}

	return nil
}

// Load reads the persisted session cookies. A corrupted file is deleted
// before returning, corruption is terminal for that file and never retried.
func (s *SessionStore) Load() ([]*http.Cookie, error) {
	if err := s.lock.Lock(); err != nil {
		return nil, fmt.Errorf("failed locking session file: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed reading session file: %w", err)
	}

	var entries []Cookie
	if err := json.Unmarshal(data, &entries); err != nil {
		if removeErr := os.Remove(s.path); removeErr != nil {
			s.log.WithError(removeErr).Warnf("failed removing corrupted session file: %s", s.path)
		} else {
			s.log.Warnf("removed corrupted session file: %s", s.path)
		}

		return nil, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}

	cookies := make([]*http.Cookie, 0, len(entries))
	for _, entry := range entries {
		cookies = append(cookies, &http.Cookie{Name: entry.Name, Value: entry.Value})
	}

	return cookies, nil
}

// Delete removes the session file. A missing file is not an error.
func (s *SessionStore) Delete() error {
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("failed locking session file: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed removing session file: %w", err)
	}

	return nil
}
