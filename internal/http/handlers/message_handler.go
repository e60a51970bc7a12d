// Message HTTP handler.
//
// This file exposes the campaign message endpoint:
//   - POST /message   (draft a WhatsApp or SMS promotional message)
//
// Idempotency:
// If the client supplies an Idempotency-Key header and a previous successful
// result exists for (user, route, key), the stored response is returned with
// `Idempotency-Replayed: true` and no provider is called.
package handlers

import (
	"github.com/gin-gonic/gin"
)

//
// DTOs
//

// MessageRequest is the JSON payload for drafting a campaign message.
type MessageRequest struct {
	// PromotionalIdea is the one-line campaign idea. It must be non-empty.
	PromotionalIdea string `json:"promotionalIdea" example:"20% off all JEE courses this Diwali"`
	// MessageType selects the rule-set: exactly "whatsapp" gets the WhatsApp
	// structure, anything else (interakt included) the SMS one. Echoed as platform.
	MessageType string `json:"messageType" example:"whatsapp"`
}

// MessageResponse is the drafted message and the platform it was written for.
type MessageResponse struct {
	Message  string `json:"message" example:"*Dreaming of IIT?* ..."`
	Platform string `json:"platform" example:"whatsapp"`
}

// PostMessage godoc
// @ID          postMessage
// @Summary     Draft a campaign message
// @Description Drafts a channel-specific promotional message for the idea.
// @Description Supports idempotency via the Idempotency-Key header (same key → same result).
// @Tags        Generation
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    handlers.MessageRequest  true  "Campaign idea"
//
// @Success     200  {object}  handlers.MessageResponse  "Drafted message"
// @Failure     400  {object}  handlers.ErrorResponse    "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse    "Missing or invalid token"
// @Failure     429  {object}  handlers.ErrorResponse    "Rate limited"
// @Failure     500  {object}  handlers.ErrorResponse    "Configuration or provider error"
// @Router      /message [post]
func (h *Handlers) PostMessage(c *gin.Context) {
	if h.serveReplay(c) {
		return
	}

	var req MessageRequest
	if !bind(c, &req) {
		return
	}

	res, err := h.msgSvc.Generate(c.Request.Context(), req.PromotionalIdea, req.MessageType)
	if err != nil {
		failFrom(c, err, messageText)
		return
	}

	h.succeed(c, MessageResponse{Message: res.Message, Platform: res.Platform})
}
