// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// This file centralizes symbolic error code constants that are mapped to HTTP responses
// (via the `fail()` helper in this package). These codes provide clients with a stable,
// machine-readable error taxonomy that supplements the human-readable `error` text.
//
// Conventions:
//   - Codes are lowercase, snake_case.
//   - Generic codes (e.g., bad_request, unauthorized, conflict) mirror common HTTP
//     status semantics to aid interoperability.
//   - Generation codes (e.g., upstream_error, generation_timeout) name the failing
//     stage when the status alone (always 500) cannot.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "generation_timeout",
//	  "error": "Image generation timed out"
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"

	// Generation:
	ErrCodeConfiguration     = "configuration_error"
	ErrCodeUpstream          = "upstream_error"
	ErrCodeMissingTaskID     = "missing_task_id"
	ErrCodeGenerationFailed  = "generation_failed"
	ErrCodeGenerationTimeout = "generation_timeout"
)

// Caller-visible messages.
const (
	MsgServerConfig       = "Server configuration error"
	MsgInvalidToken       = "Unauthorized - Invalid token"
	MsgInvalidBody        = "Invalid JSON body"
	MsgMissingTaskID      = "No task ID received from image provider"
	MsgGenerationFailed   = "Image generation failed"
	MsgGenerationTimeout  = "Image generation timed out"
	MsgTaskInFlight       = "Image task is already being polled"
	MsgMessageFailed      = "Failed to generate message"
	MsgImageFailed        = "Failed to generate image"
	MsgEnhanceFailed      = "Failed to enhance prompt"
	MsgEmptyCampaignIdea  = "Please enter a campaign idea"
	MsgEmptyImageIdea     = "Please enter an image idea"
	MsgCampaignIdeaTooBig = "Campaign idea is too long"
	MsgImageIdeaTooBig    = "Image idea is too long"
)
