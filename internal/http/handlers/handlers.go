// Package handlers exposes the campaign generation endpoints.
//
// Handlers are transport-thin: they bind the JSON body, call a service, and
// either write the result or translate the service error with failFrom. They
// also serve and record idempotent replays when the request carries a
// validated Idempotency-Key (see middleware.IdempotencyValidator).
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-campaign-backend/internal/domain"
	"github.com/tbourn/go-campaign-backend/internal/http/middleware"
	"github.com/tbourn/go-campaign-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// MessageGenerator drafts a channel-specific campaign message.
type MessageGenerator interface {
	Generate(ctx context.Context, idea, messageType string) (*services.MessageResult, error)
}

// ImageGenerator enhances an image idea and, for Generate, runs the full
// submit and poll flow.
type ImageGenerator interface {
	Enhance(ctx context.Context, idea string) (*services.EnhanceResult, error)
	Generate(ctx context.Context, idea string) (*services.ImageResult, error)
}

// ReplayStore persists successful responses for Idempotency-Key replays.
// Scope is the matched route path.
type ReplayStore interface {
	Get(ctx context.Context, userID, scope, key string, now time.Time) (*domain.Replay, error)
	Save(ctx context.Context, userID, scope, key string, status int, body []byte, ttl time.Duration) error
}

//
// Handler wiring
//

// Handlers groups the generation endpoints.
type Handlers struct {
	msgSvc    MessageGenerator
	imgSvc    ImageGenerator
	replays   ReplayStore
	replayTTL time.Duration
}

// New constructs Handlers. replays may be nil, which disables replay
// recording; replayTTL <= 0 defaults to 24h.
func New(msgSvc MessageGenerator, imgSvc ImageGenerator, replays ReplayStore, replayTTL time.Duration) *Handlers {
	if replayTTL <= 0 {
		replayTTL = 24 * time.Hour
	}
	return &Handlers{msgSvc: msgSvc, imgSvc: imgSvc, replays: replays, replayTTL: replayTTL}
}

// userID returns the authenticated principal's id, or "anonymous" when the
// route is mounted without Gatekeeper.
func userID(c *gin.Context) string {
	if p := middleware.PrincipalFrom(c); p != nil && p.ID != "" {
		return p.ID
	}
	return "anonymous"
}

// serveReplay writes the stored response when IdempotencyValidator found one.
// It reports whether the request was answered.
func (h *Handlers) serveReplay(c *gin.Context) bool {
	if h.replays == nil || !middleware.IsReplay(c) {
		return false
	}
	key, _ := middleware.GetIdempotencyKey(c)
	rec, err := h.replays.Get(c.Request.Context(), userID(c), c.FullPath(), key, time.Now().UTC())
	if err != nil {
		// expired between lookup and now, or the store failed: generate afresh
		middleware.LoggerFrom(c).Warn().Err(err).Msg("replay vanished; regenerating")
		return false
	}
	c.Header(middleware.HeaderIdempotencyReplayed, "true")
	c.Data(rec.Status, "application/json; charset=utf-8", rec.Body)
	return true
}

// succeed writes body as 200 and, when the request carries an idempotency
// key, records it for replay. A failed save is logged, never surfaced.
func (h *Handlers) succeed(c *gin.Context, body any) {
	key, hasKey := middleware.GetIdempotencyKey(c)
	if h.replays == nil || !hasKey {
		ok(c, http.StatusOK, body)
		return
	}

	buf, err := json.Marshal(body)
	if err != nil {
		ok(c, http.StatusOK, body)
		return
	}
	if err := h.replays.Save(c.Request.Context(), userID(c), c.FullPath(), key, http.StatusOK, buf, h.replayTTL); err != nil {
		middleware.LoggerFrom(c).Warn().Err(err).Msg("replay save failed")
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", buf)
}

// bind decodes the JSON body into dst or writes a 400.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		middleware.LoggerFrom(c).Debug().Err(err).Msg("bind failed")
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, MsgInvalidBody)
		return false
	}
	return true
}
