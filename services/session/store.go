// Package session keeps server-side login sessions: an opaque token mapped to a user id.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("session not found or expired")

type (
	Session struct {
		Token     string
		UserID    int
		ExpiresAt time.Time
	}

	Store interface {
		Create(ctx context.Context, userID int) (Session, error)
		Get(ctx context.Context, token string) (Session, error)
		Delete(ctx context.Context, token string) error
		// Clear drops every session.
		Clear(ctx context.Context) error
	}
)

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

var nowFunc = time.Now // mockable

type memoryStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]Session
}

var _ Store = (*memoryStore)(nil) // interface compliance check

// NewMemoryStore returns an in-process Store. Sessions live for ttl (forever when ttl <= 0).
func NewMemoryStore(ttl time.Duration) *memoryStore {
	return &memoryStore{ttl: ttl, sessions: make(map[string]Session)}
}

func (s *memoryStore) Create(_ context.Context, userID int) (Session, error) {
	token, err := uuid.NewRandom()
	if err != nil {
		return Session{}, errors.Wrap(err, "generating session token")
	}

	sess := Session{Token: token.String(), UserID: userID}
	if s.ttl > 0 {
		sess.ExpiresAt = nowFunc().Add(s.ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.Token] = sess
	return sess, nil
}

func (s *memoryStore) Get(_ context.Context, token string) (Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return Session{}, ErrNotFound
	}

	if sess.Expired(nowFunc()) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return Session{}, ErrNotFound
	}
	return sess, nil
}

func (s *memoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *memoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]Session)
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (s *memoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
