// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the standard response utilities used across all endpoints:
// the error envelope, the translation of service errors into status codes, and
// the success writer that records idempotent replays.
//
// Conventions:
//   - All error responses return an ErrorResponse with a stable `code` and a
//     short `error` text safe to show to users.
//   - `fail()` centralizes error logging and formatting, ensuring 5xx responses
//     are logged with request context for observability.
//   - `failFrom()` is the only place a service error becomes a status code.
//
// Example error response:
//
//	HTTP/1.1 500 Internal Server Error
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "upstream_error",
//	  "error": "Rate limit exceeded: free-models-per-day"
//	}
//
// Example success response:
//
//	HTTP/1.1 200 OK
//	{ "message": "...", "platform": "sms" }
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-campaign-backend/internal/domain"
	"github.com/tbourn/go-campaign-backend/internal/http/middleware"
	"github.com/tbourn/go-campaign-backend/internal/services"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
//
// Fields:
//   - RequestID: Optional correlation ID, echoed from X-Request-ID header, used
//     to correlate server logs with client-side errors.
//   - Code: A stable, machine-readable string (see errors.go constants).
//   - Error: A human-readable error description, safe for display to users.
//
// This struct is used in OpenAPI documentation via Swagger annotations.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"upstream_error"`
	// Human-readable message (safe to show to users)
	Error string `json:"error" example:"Failed to generate message"`
}

// fail aborts the request with a structured error and logs server-side errors.
//
// Server errors (>=500) are logged using the request-scoped logger from middleware.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		RequestID: middleware.RequestIDFrom(c),
		Code:      code,
		Error:     msg,
	}

	if status >= http.StatusInternalServerError {
		ev := middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("error_text", msg)
		if len(c.Errors) > 0 {
			ev = ev.Str("cause", c.Errors.Last().Error())
		}
		ev.Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail().
//
// External packages (e.g., router setup) should call Fail to return
// consistent error envelopes without directly depending on unexported helpers.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// statusClientClosedRequest is the non-standard status logged when the caller
// disconnects mid-generation.
const statusClientClosedRequest = 499

// failText holds the endpoint-specific wording failFrom needs.
type failText struct {
	empty    string // idea missing
	tooLong  string // idea over the rune limit
	fallback string // upstream error without a provider message, or unknown error
}

var (
	messageText = failText{empty: MsgEmptyCampaignIdea, tooLong: MsgCampaignIdeaTooBig, fallback: MsgMessageFailed}
	imageText   = failText{empty: MsgEmptyImageIdea, tooLong: MsgImageIdeaTooBig, fallback: MsgImageFailed}
	enhanceText = failText{empty: MsgEmptyImageIdea, tooLong: MsgImageIdeaTooBig, fallback: MsgEnhanceFailed}
)

// failFrom translates a service error into a response. For 5xx the cause is
// attached to the gin context so the access log carries it; the body never does.
func failFrom(c *gin.Context, err error, t failText) {
	status, code, msg := classify(err, t)
	if status == statusClientClosedRequest {
		c.AbortWithStatus(status)
		return
	}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	fail(c, status, code, msg)
}

// classify maps err onto (status, code, message).
func classify(err error, t failText) (int, string, string) {
	var ue *domain.UpstreamError
	switch {
	case errors.Is(err, services.ErrEmptyIdea):
		return http.StatusBadRequest, ErrCodeBadRequest, t.empty
	case errors.Is(err, services.ErrIdeaTooLong):
		return http.StatusBadRequest, ErrCodeBadRequest, t.tooLong
	case errors.Is(err, domain.ErrConfiguration):
		return http.StatusInternalServerError, ErrCodeConfiguration, MsgServerConfig
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, ErrCodeUnauthorized, MsgInvalidToken
	case errors.Is(err, domain.ErrTaskInFlight):
		return http.StatusConflict, ErrCodeConflict, MsgTaskInFlight
	case errors.As(err, &ue):
		if ue.Message == "" {
			return http.StatusInternalServerError, ErrCodeUpstream, t.fallback
		}
		return http.StatusInternalServerError, ErrCodeUpstream, ue.Message
	case errors.Is(err, domain.ErrMissingTaskID):
		return http.StatusInternalServerError, ErrCodeMissingTaskID, MsgMissingTaskID
	case errors.Is(err, domain.ErrGenerationFailed):
		return http.StatusInternalServerError, ErrCodeGenerationFailed, MsgGenerationFailed
	case errors.Is(err, domain.ErrGenerationTimeout):
		return http.StatusInternalServerError, ErrCodeGenerationTimeout, MsgGenerationTimeout
	case errors.Is(err, context.Canceled):
		// the client is gone; record it without a body
		return statusClientClosedRequest, "", ""
	default:
		return http.StatusInternalServerError, ErrCodeInternal, t.fallback
	}
}

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
