// Package session stores session tokens in a TTL-bounded key/value cache.
package session

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotFound is returned when a token is absent, expired, or its stored
// value cannot be decoded into a well-formed identity.
var ErrNotFound = errors.New("session: not found")

// Identity is the value a valid session token resolves to.
// The wire form is JSON: {"u":"<username>"}.
type Identity struct {
	Username string `json:"u"`
}

// Store maps session tokens to identities with a bounded lifetime.
// Entries expire at the store level; callers never re-check timestamps.
type Store interface {
	// Put stores the identity under token for the store's configured TTL.
	Put(ctx context.Context, token string, id Identity) error

	// Get resolves a token. Returns ErrNotFound on miss or expiry.
	Get(ctx context.Context, token string) (Identity, error)

	// Delete removes a session before its TTL elapses. Nothing calls it
	// today; it is reserved for a future logout flow.
	Delete(ctx context.Context, token string) error
}

// decodeIdentity parses a stored session value. It fails closed: any
// malformed or partially-shaped value is treated as a miss rather than
// trusted.
func decodeIdentity(data []byte) (Identity, error) {
	var id Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return Identity{}, ErrNotFound
	}
	if id.Username == "" {
		return Identity{}, ErrNotFound
	}
	return id, nil
}
