package backup

import (
	"path/filepath"
	"sync"

	"github.com/thoreinstein/passmenu/internal/errors"
)

// Session backs each file up at most once. A command that rewrites the
// config several times keeps only the copy taken before the first write.
//
// Session is safe for concurrent use.
type Session struct {
	mgr *Manager

	mu   sync.Mutex
	done map[string]*Manifest
}

// NewSession returns a Session that creates backups with mgr.
func NewSession(mgr *Manager) *Session {
	return &Session{mgr: mgr, done: make(map[string]*Manifest)}
}

// EnsureBackedUp backs up path unless this session already did. It returns
// the manifest of the session's backup of path.
//
// A failed backup is not remembered, so the next call retries.
func (s *Session) EnsureBackedUp(path, schemaVersion string) (*Manifest, error) {
	key, err := filepath.Abs(path)
	if err != nil {
		key = path
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.done[key]; ok {
		return m, nil
	}

	m, err := s.mgr.Backup(path, schemaVersion)
	if err != nil && m == nil {
		return nil, errors.Wrapf(err, "creating backup of %s", path)
	}
	s.done[key] = m
	// A prune failure still leaves a usable backup.
	return m, err
}

// Reset forgets every backup taken by the session.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done = make(map[string]*Manifest)
}
