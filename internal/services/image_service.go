// Package services – ImageService
//
// ImageService turns a short image idea into a detailed prompt through the
// completion provider (Enhance), and optionally submits that prompt to the
// image task provider and waits for the result (Generate). Generate returns
// either the whole result or one error; a failed submission or poll discards
// the enhanced prompt and the task id.
package services

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-campaign-backend/internal/prompt"
)

// TaskSubmitter creates an image task and returns its id.
type TaskSubmitter interface {
	Submit(ctx context.Context, prompt string) (string, error)
}

// TaskAwaiter polls a task to completion.
type TaskAwaiter interface {
	Await(ctx context.Context, taskID string) (url string, attempts int, err error)
}

// EnhanceResult is an enhanced image prompt.
type EnhanceResult struct {
	EnhancedPrompt string
	OriginalIdea   string
}

// ImageResult is a generated image with the prompt that produced it.
type ImageResult struct {
	EnhancedPrompt string
	ImageURL       string
	OriginalIdea   string
}

// ImageService runs the image pipelines.
type ImageService struct {
	Composer *prompt.Composer
	LLM      Completer
	Tasks    TaskSubmitter
	Poller   TaskAwaiter

	// MaxIdeaRunes caps the accepted idea length; 0 disables the check.
	MaxIdeaRunes int
}

// NewImageService constructs an ImageService with a 2000-rune idea limit.
func NewImageService(c *prompt.Composer, llm Completer, tasks TaskSubmitter, poller TaskAwaiter) *ImageService {
	return &ImageService{Composer: c, LLM: llm, Tasks: tasks, Poller: poller, MaxIdeaRunes: 2000}
}

// Enhance rewrites idea into a detailed image-generation prompt.
func (s *ImageService) Enhance(ctx context.Context, idea string) (res *EnhanceResult, err error) {
	ctx, span := otel.Tracer("services/ImageService").Start(ctx, "Enhance")
	defer func() {
		generations.WithLabelValues("enhance", outcome(err)).Inc()
		endSpan(span, err)
	}()

	if err = validateIdea(idea, s.MaxIdeaRunes); err != nil {
		return nil, err
	}
	enhanced, err := s.enhance(ctx, idea)
	if err != nil {
		return nil, err
	}
	return &EnhanceResult{EnhancedPrompt: enhanced, OriginalIdea: idea}, nil
}

// Generate enhances idea, submits it as an image task and waits for the image.
func (s *ImageService) Generate(ctx context.Context, idea string) (res *ImageResult, err error) {
	ctx, span := otel.Tracer("services/ImageService").Start(ctx, "Generate")
	defer func() {
		generations.WithLabelValues("image", outcome(err)).Inc()
		endSpan(span, err)
	}()

	if err = validateIdea(idea, s.MaxIdeaRunes); err != nil {
		return nil, err
	}
	enhanced, err := s.enhance(ctx, idea)
	if err != nil {
		return nil, err
	}

	taskID, err := s.Tasks.Submit(ctx, enhanced)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("task.id", taskID))

	url, attempts, err := s.Poller.Await(ctx, taskID)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("task_id", taskID).Int("attempts", attempts).Msg("image task did not complete")
		return nil, err
	}
	return &ImageResult{EnhancedPrompt: enhanced, ImageURL: url, OriginalIdea: idea}, nil
}

func (s *ImageService) enhance(ctx context.Context, idea string) (string, error) {
	return s.LLM.Complete(ctx, s.Composer.ComposeImage(idea))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome(err))
	}
	span.End()
}
