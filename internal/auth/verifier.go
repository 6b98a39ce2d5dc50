package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"
)

// Outcome is the result of a credential check. UnknownUser and Mismatched
// must never be distinguishable to the caller of the public login endpoint;
// the distinction exists only for audit logging.
type Outcome int

const (
	Matched Outcome = iota
	Mismatched
	UnknownUser
)

// HashSource looks up a user's stored password hash.
// The boolean reports whether the user exists.
type HashSource interface {
	PasswordHash(ctx context.Context, username string) (string, bool, error)
}

// Verifier validates username/password pairs against stored bcrypt hashes.
type Verifier struct {
	users HashSource
}

// NewVerifier creates a credential verifier backed by the given hash source.
func NewVerifier(users HashSource) *Verifier {
	return &Verifier{users: users}
}

// Verify checks a plaintext password against the stored hash for username.
// Store failures are returned as errors, never folded into an outcome.
func (v *Verifier) Verify(ctx context.Context, username, password string) (Outcome, error) {
	hash, ok, err := v.users.PasswordHash(ctx, username)
	if err != nil {
		return Mismatched, err
	}
	if !ok {
		return UnknownUser, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return Mismatched, nil
	}
	return Matched, nil
}
