// Package session keeps per-visitor conversation logs in memory.
package session

import (
	"container/list"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"chatimmo/internal/model"
)

// DefaultMaxSessions bounds a store built with NewStore
const DefaultMaxSessions = 10000

// ErrSessionNotFound is returned for ids the store has never issued or has evicted
var ErrSessionNotFound = errors.New("session not found")

type entry struct {
	id  string
	log []model.Message
}

// Store holds append-only conversation logs keyed by session id. Sessions
// are never persisted; once the store holds its maximum, opening a new
// session drops the least recently used one.
type Store struct {
	mu       sync.Mutex
	max      int
	sessions map[string]*list.Element
	recent   *list.List // front is the most recently used
	now      func() time.Time
}

// NewStore creates an empty store holding up to DefaultMaxSessions sessions
func NewStore() *Store {
	return NewBoundedStore(DefaultMaxSessions)
}

// NewBoundedStore creates an empty store holding up to limit sessions
func NewBoundedStore(limit int) *Store {
	if limit <= 0 {
		limit = DefaultMaxSessions
	}
	return &Store{
		max:      limit,
		sessions: make(map[string]*list.Element),
		recent:   list.New(),
		now:      time.Now,
	}
}

// Create opens a new empty session and returns its id
func (s *Store) Create() string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	for s.recent.Len() >= s.max {
		oldest := s.recent.Back()
		delete(s.sessions, oldest.Value.(*entry).id)
		s.recent.Remove(oldest)
	}
	s.sessions[id] = s.recent.PushFront(&entry{id: id, log: []model.Message{}})

	return id
}

// lookup returns the session entry and marks it used. Callers hold mu.
func (s *Store) lookup(id string) (*entry, bool) {
	el, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	s.recent.MoveToFront(el)
	return el.Value.(*entry), true
}

// Get reports whether the session exists
func (s *Store) Get(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.lookup(id)
	return ok
}

// Ensure returns id when it names an existing session and a new session id otherwise
func (s *Store) Ensure(id string) string {
	if id != "" && s.Get(id) {
		return id
	}
	return s.Create()
}

// Append adds messages to the end of a session log, stamping their id and time
func (s *Store) Append(id string, msgs ...model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookup(id)
	if !ok {
		return ErrSessionNotFound
	}
	for _, m := range msgs {
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = s.now()
		}
		e.log = append(e.log, m)
	}
	return nil
}

// History returns a copy of the session log in insertion order
func (s *Store) History(id string) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookup(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	out := make([]model.Message, len(e.log))
	copy(out, e.log)
	return out, nil
}

// Len returns the number of open sessions
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
