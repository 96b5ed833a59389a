// Package memory provides a process-local session store for development and single-instance runs.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	domainauth "github.com/target/storyweb/internal/domain/auth"
	"github.com/target/storyweb/internal/ports"
)

// SessionStore keeps sessions in a map guarded by a mutex. Expired entries are
// dropped on read and by Sweep, which the session reaper drives through PurgeExpired.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domainauth.Session
	now      func() time.Time
}

var (
	_ ports.SessionStore  = (*SessionStore)(nil)
	_ ports.SessionLister = (*SessionStore)(nil)
	_ ports.SessionPurger = (*SessionStore)(nil)
)

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]domainauth.Session), now: time.Now}
}

func (s *SessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	if !sess.ExpiresAt.After(s.now()) {
		return errors.New("session is expired")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = clone(sess)
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	now := s.now()
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	if !sess.ExpiresAt.After(now) {
		if sess, ok = s.dropIfExpired(id, now); !ok {
			return domainauth.Session{}, ports.ErrSessionNotFound
		}
	}
	return clone(sess), nil
}

// dropIfExpired deletes id only if the entry is still expired under the write
// lock; a Save that landed after the read keeps its session, which is returned.
func (s *SessionStore) dropIfExpired(id string, now time.Time) (domainauth.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.sessions[id]
	if !ok {
		return domainauth.Session{}, false
	}
	if !cur.ExpiresAt.After(now) {
		delete(s.sessions, id)
		return domainauth.Session{}, false
	}
	return cur, true
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// List returns live session ids in lexical order.
func (s *SessionStore) List(_ context.Context, limit int) ([]string, error) {
	now := s.now()
	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	for id, sess := range s.sessions {
		if sess.ExpiresAt.After(now) {
			ids = append(ids, id)
		}
	}
	s.mu.RUnlock()

	sort.Strings(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// Sweep removes expired sessions and returns how many were removed.
func (s *SessionStore) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, sess := range s.sessions {
		if !sess.ExpiresAt.After(now) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// PurgeExpired is Sweep behind the ports.SessionPurger signature.
func (s *SessionStore) PurgeExpired(_ context.Context) (int64, error) {
	return int64(s.Sweep()), nil
}

// clone detaches the profile pointers so callers cannot mutate stored state.
func clone(sess domainauth.Session) domainauth.Session {
	if sess.User != nil {
		u := *sess.User
		sess.User = &u
	}
	if sess.Admin != nil {
		a := *sess.Admin
		sess.Admin = &a
	}
	return sess
}
