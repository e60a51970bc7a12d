package services

import (
	"context"
	"errors"

	"github.com/tbourn/go-campaign-backend/internal/domain"
)

// outcome is the low-cardinality metric label for err.
func outcome(err error) string {
	var uerr *domain.UpstreamError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrEmptyIdea), errors.Is(err, ErrIdeaTooLong):
		return "invalid"
	case errors.Is(err, domain.ErrConfiguration):
		return "configuration"
	case errors.Is(err, domain.ErrMissingTaskID):
		return "missing_task_id"
	case errors.Is(err, domain.ErrGenerationFailed):
		return "failed"
	case errors.Is(err, domain.ErrGenerationTimeout):
		return "timeout"
	case errors.Is(err, domain.ErrTaskInFlight):
		return "in_flight"
	case errors.As(err, &uerr):
		return "upstream"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
