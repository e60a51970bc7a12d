// Package domain holds the request-scoped values and the error taxonomy shared
// by the providers, the services, and the HTTP layer.
//
// Errors are sentinels matched with errors.Is, except UpstreamError which
// carries the provider's own message and is matched with errors.As. Handlers
// translate them into status codes; nothing below the HTTP layer knows about
// HTTP statuses of the inbound request.
package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration means a required credential or endpoint is not set.
	// It is fatal for the request and never retried.
	ErrConfiguration = errors.New("configuration error")

	// ErrUnauthenticated means the caller presented no token or an invalid one.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrMissingTaskID is returned when the image provider accepted a
	// submission but did not return a task identifier.
	ErrMissingTaskID = errors.New("image provider returned no task id")

	// ErrGenerationFailed is returned when the image provider reports FAILED.
	ErrGenerationFailed = errors.New("image generation failed")

	// ErrGenerationTimeout is returned when the poll budget is exhausted
	// before the task reaches a terminal state.
	ErrGenerationTimeout = errors.New("image generation timed out")

	// ErrTaskInFlight is returned when a poll loop is already running for the
	// same task id.
	ErrTaskInFlight = errors.New("task is already being polled")
)

// UpstreamError reports a non-success or unparseable response from an
// external provider.
type UpstreamError struct {
	// Provider names the collaborator ("completion", "imagegen", "identity").
	Provider string
	// StatusCode is the provider's HTTP status, or 0 for transport/decode failures.
	StatusCode int
	// Message is the provider-supplied message when one was available,
	// otherwise a short description of what went wrong.
	Message string
	// Err is the underlying cause, if any.
	Err error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: upstream status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Upstream builds an UpstreamError for provider with an optional cause.
func Upstream(provider string, status int, msg string, cause error) *UpstreamError {
	return &UpstreamError{Provider: provider, StatusCode: status, Message: msg, Err: cause}
}

// Configuration wraps ErrConfiguration with the name of what is missing.
func Configuration(what string) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, what)
}
