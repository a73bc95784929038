// Package store keeps in-flight onboarding sessions in memory, keyed by session id.
package store

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"quickfy/backend/internal/onboarding/domain"
)

// ErrNotFound is returned when a session is missing or expired.
var ErrNotFound = errors.New("onboarding session not found")

// Session is a stored wizard snapshot.
type Session struct {
	ID        string
	State     domain.State
	Context   domain.Context
	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt time.Time
}

// Store persists onboarding sessions. Update serializes writers of the same session.
type Store interface {
	// Create stores a new session. The ID must be unique.
	Create(ctx context.Context, s Session) error
	// Get returns a copy of the session, or ErrNotFound.
	Get(ctx context.Context, id string) (Session, error)
	// Update runs fn on the session while holding that session's lock and stores the result when fn returns nil.
	Update(ctx context.Context, id string, fn func(*Session) error) (Session, error)
	// Delete removes the session. Missing sessions are ignored.
	Delete(ctx context.Context, id string) error
}

type entry struct {
	mu      sync.Mutex
	session Session
	deleted bool
}

// MemoryStore is an in-memory Store with a fixed session lifetime.
type MemoryStore struct {
	mu   sync.RWMutex
	m    map[string]*entry
	ttl  time.Duration
	nowF func() time.Time
}

// NewMemoryStore returns a store whose sessions expire ttl after their last update.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemoryStore{
		m:    make(map[string]*entry),
		ttl:  ttl,
		nowF: func() time.Time { return time.Now().UTC() },
	}
}

// Create stores s, stamping CreatedAt, UpdatedAt and ExpiresAt.
func (s *MemoryStore) Create(ctx context.Context, sess Session) error {
	now := s.nowF()
	sess.CreatedAt = now
	sess.UpdatedAt = now
	sess.ExpiresAt = now.Add(s.ttl)
	sess.Context = sess.Context.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[sess.ID]; ok {
		return errors.New("onboarding session already exists")
	}
	s.m[sess.ID] = &entry{session: sess}
	return nil
}

// Get returns a copy of the session if present and not expired.
func (s *MemoryStore) Get(ctx context.Context, id string) (Session, error) {
	e, ok := s.lookup(id)
	if !ok {
		return Session{}, ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return Session{}, ErrNotFound
	}
	if !e.session.ExpiresAt.After(s.nowF()) {
		e.deleted = true
		s.remove(id, e)
		return Session{}, ErrNotFound
	}
	return copySession(e.session), nil
}

// Update applies fn to a copy of the session and keeps the copy only if fn succeeds.
func (s *MemoryStore) Update(ctx context.Context, id string, fn func(*Session) error) (Session, error) {
	e, ok := s.lookup(id)
	if !ok {
		return Session{}, ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	now := s.nowF()
	if e.deleted {
		return Session{}, ErrNotFound
	}
	if !e.session.ExpiresAt.After(now) {
		e.deleted = true
		s.remove(id, e)
		return Session{}, ErrNotFound
	}
	working := copySession(e.session)
	if err := fn(&working); err != nil {
		return Session{}, err
	}
	working.ID = id
	working.CreatedAt = e.session.CreatedAt
	working.UpdatedAt = now
	working.ExpiresAt = now.Add(s.ttl)
	e.session = working
	return copySession(working), nil
}

// Delete removes the session.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	e, ok := s.lookup(id)
	if !ok {
		return nil
	}
	e.mu.Lock()
	e.deleted = true
	e.mu.Unlock()
	s.remove(id, e)
	return nil
}

// Sweep drops every expired session and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	now := s.nowF()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, e := range s.m {
		if !e.mu.TryLock() {
			continue
		}
		if !e.session.ExpiresAt.After(now) {
			e.deleted = true
			delete(s.m, id)
			removed++
		}
		e.mu.Unlock()
	}
	return removed
}

// Run sweeps expired sessions every interval until ctx is done.
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				log.Printf("onboarding: swept %d expired sessions, %d active", n, s.Len())
			}
		}
	}
}

// Len returns the number of stored sessions, expired ones included until swept.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

func (s *MemoryStore) lookup(id string) (*entry, bool) {
	s.mu.RLock()
	e, ok := s.m[id]
	s.mu.RUnlock()
	return e, ok
}

func (s *MemoryStore) remove(id string, e *entry) {
	s.mu.Lock()
	if cur, ok := s.m[id]; ok && cur == e {
		delete(s.m, id)
	}
	s.mu.Unlock()
}

func copySession(in Session) Session {
	out := in
	out.Context = in.Context.Clone()
	return out
}
