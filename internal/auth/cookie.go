package auth

import (
	"net/http"
	"time"
)

// SessionCookieName is the name of the session cookie.
const SessionCookieName = "session"

// CookieCodec encodes and decodes the session cookie. Its TTL must be the
// same value configured on the session store, otherwise the browser and the
// store disagree about when a session ends; both are constructed from the
// single auth.session_ttl_seconds config value.
type CookieCodec struct {
	ttl time.Duration
}

// NewCookieCodec creates a codec whose cookies expire after ttl.
func NewCookieCodec(ttl time.Duration) *CookieCodec {
	return &CookieCodec{ttl: ttl}
}

// Decode extracts the session token from the request's cookie header.
// It performs no validation of the token's shape.
func (c *CookieCodec) Decode(r *http.Request) (string, bool) {
	ck, err := r.Cookie(SessionCookieName)
	if err != nil || ck.Value == "" {
		return "", false
	}
	return ck.Value, true
}

// Encode builds the Set-Cookie descriptor for a freshly minted token.
func (c *CookieCodec) Encode(token string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.ttl.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}
