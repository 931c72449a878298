package domain

import (
	"context"
	"errors"
	"time"
)

// User is the owner of accounts as known to the engine. Registration and
// credential policy belong to an external service; the engine only reads.
type User struct {
	ID             string
	Username       string
	HashedPassword string
	Active         bool
	CreatedAt      time.Time
}

// Identity is the result of a successful session opening.
type Identity struct {
	UserID   string
	Username string
	Token    string
}

// Authentication errors
var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidToken    = errors.New("invalid token")
	ErrExpiredToken    = errors.New("token has expired")
	ErrNotAccountOwner = errors.New("account does not belong to the authenticated user")
	ErrUserNotFound    = errors.New("user not found")
	ErrUserExists      = errors.New("username already taken")
)

type identityKey struct{}

// ContextWithIdentity stores the authenticated identity.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the authenticated identity, if any.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok
}
