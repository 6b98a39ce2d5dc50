package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pvlink/pvlink/internal/session"
)

// identityKey is the gin context key the resolved identity is stored under.
const identityKey = "auth.identity"

// Gate returns the middleware protecting every authenticated route. A
// request passes only when its session cookie resolves to a live identity
// in the session store; every rejection is a bare 401. Rejections are
// logged with the remote address and the reason category, never the token.
func Gate(store session.Store, codec *CookieCodec, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		remote := c.ClientIP()

		token, ok := codec.Decode(c.Request)
		if !ok {
			log.Warn("missing auth cookie", slog.String("remote", remote))
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		id, err := store.Get(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				log.Warn("unknown/invalid auth cookie", slog.String("remote", remote))
			} else {
				log.Error("session lookup failed",
					slog.String("remote", remote),
					slog.String("error", err.Error()))
			}
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

// IdentityFrom returns the identity resolved by Gate for this request.
func IdentityFrom(c *gin.Context) (session.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return session.Identity{}, false
	}
	id, ok := v.(session.Identity)
	return id, ok
}
