// Package services – TaskPoller
//
// TaskPoller drives one image task to a terminal state. Each Await call:
//
//  1. takes the per-task guard, so a task id is never polled by two loops;
//  2. takes a slot from the process-wide semaphore that caps concurrent loops;
//  3. runs poll.Until with the configured interval and attempt budget.
//
// Per attempt: a transport or non-2xx status error aborts with that error,
// FAILED aborts with ErrGenerationFailed, COMPLETED with a usable artifact
// stops with its locator, and anything else (PENDING, UNKNOWN, COMPLETED with
// no artifact) waits for the next attempt. An exhausted budget becomes
// ErrGenerationTimeout.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"

	"github.com/tbourn/go-campaign-backend/internal/domain"
	"github.com/tbourn/go-campaign-backend/internal/poll"
)

// TaskStatuser reads one snapshot of an image task.
type TaskStatuser interface {
	Status(ctx context.Context, id string) (domain.ImageTask, error)
}

// TaskPoller polls image tasks to completion.
type TaskPoller struct {
	Tasks  TaskStatuser
	Guard  poll.Guard
	Policy poll.Policy
	// Clock defaults to poll.RealClock.
	Clock poll.Clock

	sem *semaphore.Weighted
}

// NewTaskPoller returns a poller allowing at most maxConcurrent loops at once.
// A nil guard gets an in-process LocalGuard.
func NewTaskPoller(tasks TaskStatuser, guard poll.Guard, policy poll.Policy, maxConcurrent int) *TaskPoller {
	if guard == nil {
		guard = poll.NewLocalGuard()
	}
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &TaskPoller{
		Tasks:  tasks,
		Guard:  guard,
		Policy: policy,
		Clock:  poll.RealClock{},
		sem:    semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

// Await polls taskID until it completes and returns the result locator and
// the number of status probes made.
func (p *TaskPoller) Await(ctx context.Context, taskID string) (string, int, error) {
	tr := otel.Tracer("services/TaskPoller")
	ctx, span := tr.Start(ctx, "Await",
		trace.WithAttributes(attribute.String("task.id", taskID)),
	)
	defer span.End()

	release, err := p.Guard.Acquire(ctx, taskID)
	if errors.Is(err, poll.ErrHeld) {
		return "", 0, domain.ErrTaskInFlight
	}
	if err != nil {
		return "", 0, fmt.Errorf("task guard: %w", err)
	}
	defer release()

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return "", 0, err
	}
	defer p.sem.Release(1)
	pollInflight.Inc()
	defer pollInflight.Dec()

	log := zerolog.Ctx(ctx).With().Str("task_id", taskID).Logger()

	url, attempts, err := poll.Until(ctx, p.Clock, p.Policy, func(ctx context.Context, attempt int) (string, bool, error) {
		task, err := p.Tasks.Status(ctx, taskID)
		if err != nil {
			return "", false, err
		}
		log.Debug().Int("attempt", attempt).Str("status", string(task.Status)).Msg("task status")
		if task.Status == domain.TaskFailed {
			return "", false, domain.ErrGenerationFailed
		}
		if loc, ok := task.ResultURL(); ok {
			return loc, true, nil
		}
		return "", false, nil
	})
	pollAttempts.Observe(float64(attempts))
	span.SetAttributes(attribute.Int("poll.attempts", attempts))

	if errors.Is(err, poll.ErrExhausted) {
		log.Warn().Int("attempts", attempts).Msg("image task did not finish in budget")
		return "", attempts, domain.ErrGenerationTimeout
	}
	if err != nil {
		return "", attempts, err
	}
	return url, attempts, nil
}
