// Package store defines the ports for the persistence and identity
// collaborators. The core treats both as synchronous and reliable; a
// missing or unreadable session simply loads as nil.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/core"
)

var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
	ErrTokenInvalid = errors.New("invalid or expired token")
)

type (
	// SessionStore persists one challenge session per user key. Load
	// returns (nil, nil) when the user has no session yet; Save replaces
	// the stored session atomically.
	SessionStore interface {
		Load(ctx context.Context, userKey string) (*core.Session, error)
		Save(ctx context.Context, userKey string, s *core.Session) error
		Delete(ctx context.Context, userKey string) error
	}

	// AuthStore holds user credentials and login tokens. The user key it
	// hands back is the opaque key the SessionStore is namespaced by.
	AuthStore interface {
		CreateUser(ctx context.Context, email, passwordHash string) error
		Credentials(ctx context.Context, email string) (passwordHash string, err error)
		CreateToken(ctx context.Context, token, userKey string, expiresAt time.Time) error
		ResolveToken(ctx context.Context, token string) (userKey string, err error)
		DeleteToken(ctx context.Context, token string) error
	}
)
