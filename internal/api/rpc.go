package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pvlink/pvlink/internal/models"
)

// rpcRequest is the envelope for the single authenticated endpoint. Named
// operations dispatch to resolver methods; params are decoded per
// operation.
type rpcRequest struct {
	Operation string          `json:"operation"`
	Params    json.RawMessage `json:"params"`
}

// linkPayload is the wire form of a link. Timestamps are epoch seconds;
// expires is null for links that never expire.
type linkPayload struct {
	ID        uint   `json:"id"`
	ShortLink string `json:"shortLink"`
	LongLink  string `json:"longLink"`
	Created   int64  `json:"created"`
	Expires   *int64 `json:"expires"`
	Clicks    int64  `json:"clicks"`
}

func toLinkPayload(link models.Link) linkPayload {
	p := linkPayload{
		ID:        link.ID,
		ShortLink: link.ShortCode,
		LongLink:  link.LongURL,
		Created:   link.CreatedAt.Unix(),
		Clicks:    link.ClickCount,
	}
	if link.ExpiresAt != nil {
		expires := link.ExpiresAt.Unix()
		p.Expires = &expires
	}
	return p
}

// Dispatch routes an RPC request to its resolver. Runs behind the auth
// gate. Store failures are logged with full detail server-side and
// answered with an opaque generic error; the underlying message never
// reaches the caller.
func (h *Handlers) Dispatch(c *gin.Context) {
	var req rpcRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c)
		return
	}

	switch req.Operation {
	case "linkPagesCount":
		h.linkPagesCount(c)
	case "linksPage":
		h.linksPage(c, req.Params)
	case "linkClicks":
		h.linkClicks(c, req.Params)
	case "linkCountryClicks":
		h.linkCountryClicks(c, req.Params)
	case "createLink":
		h.createLink(c, req.Params)
	case "deleteLink":
		h.deleteLink(c, req.Params)
	default:
		h.badRequest(c)
	}
}

func (h *Handlers) badRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
}

// operationFailed logs the real error server-side and answers the opaque
// generic failure.
func (h *Handlers) operationFailed(c *gin.Context, operation string, err error) {
	h.Log.Error(operation+" failed",
		slog.String("remote", c.ClientIP()),
		slog.String("error", err.Error()))
	h.badRequest(c)
}

func (h *Handlers) linkPagesCount(c *gin.Context) {
	totalPages, err := h.Links.Pages(c.Request.Context())
	if err != nil {
		h.operationFailed(c, "linkPagesCount", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"totalPages": totalPages}})
}

func (h *Handlers) linksPage(c *gin.Context, params json.RawMessage) {
	args := struct {
		Page int `json:"page"`
	}{Page: 1}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &args); err != nil {
			h.badRequest(c)
			return
		}
	}

	links, err := h.Links.Page(c.Request.Context(), args.Page)
	if err != nil {
		h.operationFailed(c, "linksPage", err)
		return
	}

	payload := make([]linkPayload, 0, len(links))
	for _, link := range links {
		payload = append(payload, toLinkPayload(link))
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"links": payload}})
}

func (h *Handlers) linkClicks(c *gin.Context, params json.RawMessage) {
	args := struct {
		LinkID uint `json:"linkId"`
	}{}
	if err := json.Unmarshal(params, &args); err != nil {
		h.badRequest(c)
		return
	}

	clicks, ok, err := h.Links.Clicks(c.Request.Context(), args.LinkID)
	if err != nil {
		h.operationFailed(c, "linkClicks", err)
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"clicks": clicks}})
}

func (h *Handlers) linkCountryClicks(c *gin.Context, params json.RawMessage) {
	args := struct {
		LinkID uint `json:"linkId"`
	}{}
	if err := json.Unmarshal(params, &args); err != nil {
		h.badRequest(c)
		return
	}

	buckets, err := h.Links.CountryClicks(c.Request.Context(), args.LinkID)
	if err != nil {
		h.operationFailed(c, "linkCountryClicks", err)
		return
	}

	payload := make([]gin.H, 0, len(buckets))
	for _, b := range buckets {
		payload = append(payload, gin.H{"country": b.Country, "clicks": b.Clicks})
	}
	c.JSON(http.StatusOK, gin.H{"data": payload})
}

func (h *Handlers) createLink(c *gin.Context, params json.RawMessage) {
	args := struct {
		ShortLink  string `json:"shortLink"`
		TargetLink string `json:"targetLink"`
		Expiration *int64 `json:"expiration"`
	}{}
	if err := json.Unmarshal(params, &args); err != nil || args.ShortLink == "" || args.TargetLink == "" {
		h.badRequest(c)
		return
	}

	created, err := h.Links.Create(c.Request.Context(), args.ShortLink, args.TargetLink, args.Expiration)
	if err != nil {
		h.operationFailed(c, "createLink", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": created})
}

func (h *Handlers) deleteLink(c *gin.Context, params json.RawMessage) {
	args := struct {
		LinkID uint `json:"linkId"`
	}{}
	if err := json.Unmarshal(params, &args); err != nil {
		h.badRequest(c)
		return
	}

	deleted, err := h.Links.Delete(c.Request.Context(), args.LinkID)
	if err != nil {
		h.operationFailed(c, "deleteLink", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": deleted})
}
