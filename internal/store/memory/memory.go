// Package memory is the in-memory backend: the default for local runs and
// the test double for everything that talks to a store.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/core"
	"github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/store"
)

type user struct {
	passwordHash string
}

type token struct {
	userKey   string
	expiresAt time.Time
}

// Store implements store.SessionStore and store.AuthStore behind a mutex.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*core.Session
	users    map[string]user
	tokens   map[string]token
}

func New() *Store {
	return &Store{
		sessions: make(map[string]*core.Session),
		users:    make(map[string]user),
		tokens:   make(map[string]token),
	}
}

// Load returns a deep copy of the stored session, or nil when absent.
func (s *Store) Load(_ context.Context, userKey string) (*core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userKey]
	if !ok {
		return nil, nil
	}
	return sess.Clone(), nil
}

// Save replaces the stored session with a deep copy of the given one.
func (s *Store) Save(_ context.Context, userKey string, sess *core.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userKey] = sess.Clone()
	return nil
}

func (s *Store) Delete(_ context.Context, userKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userKey)
	return nil
}

func (s *Store) CreateUser(_ context.Context, email, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[email]; exists {
		return store.ErrUserExists
	}
	s.users[email] = user{passwordHash: passwordHash}
	return nil
}

func (s *Store) Credentials(_ context.Context, email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return "", store.ErrUserNotFound
	}
	return u.passwordHash, nil
}

func (s *Store) CreateToken(_ context.Context, tok, userKey string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[tok] = token{userKey: userKey, expiresAt: expiresAt}
	return nil
}

func (s *Store) ResolveToken(_ context.Context, tok string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[tok]
	if !ok {
		return "", store.ErrTokenInvalid
	}
	if time.Now().After(t.expiresAt) {
		delete(s.tokens, tok)
		return "", store.ErrTokenInvalid
	}
	return t.userKey, nil
}

func (s *Store) DeleteToken(_ context.Context, tok string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, tok)
	return nil
}
