// Package api wires the HTTP surface: the public login and redirect
// routes, and the session-gated RPC endpoint for link management.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pvlink/pvlink/internal/auth"
	"github.com/pvlink/pvlink/internal/models"
	"github.com/pvlink/pvlink/internal/services"
	"github.com/pvlink/pvlink/internal/session"
)

// Handlers bundles the dependencies of every route.
type Handlers struct {
	Links       *services.LinkService
	Verifier    *auth.Verifier
	Sessions    session.Store
	Cookies     *auth.CookieCodec
	ClickEvents chan<- models.ClickEvent
	FallbackURL string
	Log         *slog.Logger
}

// SetupRoutes configures all gin routes.
func SetupRoutes(router *gin.Engine, h *Handlers) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/api/auth/login", h.Login)
	router.POST("/api", auth.Gate(h.Sessions, h.Cookies, h.Log), h.Dispatch)

	// Redirection route at root level; this is what short links point at.
	router.GET("/:shortCode", h.Redirect)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login verifies credentials and mints a new session. Every failure mode,
// malformed body included, answers an identical empty 401 so callers can
// never probe which usernames exist or what went wrong internally. The
// audit log keeps the distinction.
func (h *Handlers) Login(c *gin.Context) {
	remote := c.ClientIP()

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Log.Warn("bad request on login", slog.String("remote", remote))
		c.Status(http.StatusUnauthorized)
		return
	}

	outcome, err := h.Verifier.Verify(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.Log.Error("login verification failed",
			slog.String("remote", remote),
			slog.String("error", err.Error()))
		c.Status(http.StatusUnauthorized)
		return
	}

	switch outcome {
	case auth.UnknownUser:
		h.Log.Warn("attempted to login as non-existent user",
			slog.String("remote", remote),
			slog.String("username", req.Username))
		c.Status(http.StatusUnauthorized)

	case auth.Mismatched:
		h.Log.Warn("failed to login",
			slog.String("remote", remote),
			slog.String("username", req.Username))
		c.Status(http.StatusUnauthorized)

	case auth.Matched:
		token, err := auth.NewSessionToken()
		if err != nil {
			h.Log.Error("failed to generate session token",
				slog.String("remote", remote),
				slog.String("error", err.Error()))
			c.Status(http.StatusUnauthorized)
			return
		}

		identity := session.Identity{Username: req.Username}
		if err := h.Sessions.Put(c.Request.Context(), token, identity); err != nil {
			h.Log.Error("failed to store session",
				slog.String("remote", remote),
				slog.String("error", err.Error()))
			c.Status(http.StatusUnauthorized)
			return
		}

		http.SetCookie(c.Writer, h.Cookies.Encode(token))
		h.Log.Info("user signed-in",
			slog.String("remote", remote),
			slog.String("username", req.Username))
		c.Status(http.StatusOK)
	}
}

// Redirect resolves a short code and forwards the visitor. Unknown and
// expired codes forward to the fallback URL instead of erroring; short
// links leak into chat logs and search indexes long after they die.
func (h *Handlers) Redirect(c *gin.Context) {
	shortCode := c.Param("shortCode")

	link, ok, err := h.Links.ResolveRedirect(c.Request.Context(), shortCode, time.Now())
	if err != nil {
		h.Log.Error("redirect lookup failed",
			slog.String("remote", c.ClientIP()),
			slog.String("short_code", shortCode),
			slog.String("error", err.Error()))
		c.Redirect(http.StatusFound, h.FallbackURL)
		return
	}
	if !ok {
		c.Redirect(http.StatusFound, h.FallbackURL)
		return
	}

	event := models.ClickEvent{
		ShortCode: shortCode,
		IPAddress: c.ClientIP(),
	}

	// Non-blocking send: a full buffer drops the click rather than
	// delaying the visitor.
	select {
	case h.ClickEvents <- event:
	default:
		h.Log.Warn("click event buffer full, dropping event",
			slog.String("short_code", shortCode))
	}

	c.Redirect(http.StatusFound, link.LongURL)
}
