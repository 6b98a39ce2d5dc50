// Package auth implements the session-based authentication subsystem:
// session token generation, the session cookie codec, credential
// verification, and the request-gating middleware.
package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// tokenCharset is the 62-symbol alphabet session tokens are drawn from.
const tokenCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// TokenLength is the length of every issued session token.
const TokenLength = 64

// NewSessionToken generates an opaque session token from a
// cryptographically secure random source.
func NewSessionToken() (string, error) {
	token := make([]byte, TokenLength)
	for i := range token {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(tokenCharset))))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		token[i] = tokenCharset[num.Int64()]
	}
	return string(token), nil
}
