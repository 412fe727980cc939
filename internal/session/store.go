package session

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// evictionIdle is the age threshold below which an empty session is
// still included in list(include_empty=false); above it, an empty
// session is filtered out. No background process deletes sessions —
// this is a read-side filter only, per the observed behavior of the
// distilled system's listing endpoint.
const evictionIdle = 1 * time.Hour

// entry pairs a Session with the mutex serializing operations on it,
// so distinct session ids proceed in parallel while operations on one
// id are serialized, matching the teacher's per-ChatSession RWMutex.
type entry struct {
	mu      sync.Mutex
	session *Session
}

// Store is the process-wide Session Store.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	logger  *logrus.Logger
}

// New returns an empty Store.
func New(logger *logrus.Logger) *Store {
	return &Store{entries: make(map[string]*entry), logger: logger}
}

// Create makes a new session, generating an id if none is supplied.
// Creating with an id that already exists is idempotent: the existing
// session is returned unchanged, its message log intact.
func (s *Store) Create(id, name, modelID string) *Session {
	now := time.Now()

	if id == "" {
		id = uuid.NewString()
	}

	s.mu.Lock()
	if e, ok := s.entries[id]; ok {
		s.mu.Unlock()
		e.mu.Lock()
		defer e.mu.Unlock()
		return cloneSession(e.session)
	}
	e := &entry{session: newSession(id, name, modelID, now)}
	s.entries[id] = e
	s.mu.Unlock()

	return cloneSession(e.session)
}

func (s *Store) lookup(id string) (*entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return e, ok
}

// Get returns a copy of the session, or false if it does not exist.
func (s *Store) Get(id string) (*Session, bool) {
	e, ok := s.lookup(id)
	if !ok {
		return nil, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneSession(e.session), true
}

// Delete removes a session outright.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return false
	}
	delete(s.entries, id)
	return true
}

// List returns sessions ordered by last-active descending. When
// includeEmpty is false, a session is included only if it has at
// least one message or was active within the last hour.
func (s *Store) List(includeEmpty bool) []*Session {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	now := time.Now()
	out := make([]*Session, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		sess := cloneSession(e.session)
		e.mu.Unlock()

		if !includeEmpty && sess.MessageCount == 0 && now.Sub(sess.LastActive) >= evictionIdle {
			continue
		}
		out = append(out, sess)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].LastActive.After(out[j].LastActive)
	})
	return out
}

// AppendMessage adds an immutable message and bumps LastActive and
// MessageCount.
func (s *Store) AppendMessage(id string, msg Message) error {
	e, ok := s.lookup(id)
	if !ok {
		return fmt.Errorf("session: unknown session %q", id)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	msg.Timestamp = time.Now()
	e.session.Messages = append(e.session.Messages, msg)
	e.session.MessageCount = len(e.session.Messages)
	e.session.LastActive = msg.Timestamp
	return nil
}

// ClearMessages empties a session's log without deleting the session.
func (s *Store) ClearMessages(id string) error {
	e, ok := s.lookup(id)
	if !ok {
		return fmt.Errorf("session: unknown session %q", id)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.session.Messages = nil
	e.session.MessageCount = 0
	e.session.LastActive = time.Now()
	return nil
}

// SetModel rebinds the session's model id.
func (s *Store) SetModel(id, modelID string) error {
	e, ok := s.lookup(id)
	if !ok {
		return fmt.Errorf("session: unknown session %q", id)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.session.ModelID = modelID
	return nil
}

// Rename updates the session's display name.
func (s *Store) Rename(id, name string) error {
	e, ok := s.lookup(id)
	if !ok {
		return fmt.Errorf("session: unknown session %q", id)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.session.DisplayName = name
	return nil
}

func cloneSession(s *Session) *Session {
	clone := *s
	clone.Messages = make([]Message, len(s.Messages))
	copy(clone.Messages, s.Messages)
	return &clone
}
