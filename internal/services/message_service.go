// Package services – MessageService
//
// MessageService drafts a channel-specific promotional message: it validates
// the idea, renders the message prompt for the requested channel and sends it
// to the completion provider. The result echoes the platform the caller asked
// for.
package services

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-campaign-backend/internal/domain"
	"github.com/tbourn/go-campaign-backend/internal/prompt"
)

// Completer sends a composed prompt to a text-completion provider.
type Completer interface {
	Complete(ctx context.Context, p prompt.Composed) (string, error)
}

// MessageResult is a drafted campaign message.
type MessageResult struct {
	Message  string
	Platform string
}

// MessageService generates campaign messages.
type MessageService struct {
	Composer *prompt.Composer
	LLM      Completer

	// MaxIdeaRunes caps the accepted idea length; 0 disables the check.
	MaxIdeaRunes int
}

// NewMessageService constructs a MessageService with a 2000-rune idea limit.
func NewMessageService(c *prompt.Composer, llm Completer) *MessageService {
	return &MessageService{Composer: c, LLM: llm, MaxIdeaRunes: 2000}
}

// Generate drafts a message for idea on the channel named by messageType.
// Unknown channel names use the SMS rules.
func (s *MessageService) Generate(ctx context.Context, idea, messageType string) (res *MessageResult, err error) {
	tr := otel.Tracer("services/MessageService")
	ctx, span := tr.Start(ctx, "Generate",
		trace.WithAttributes(attribute.String("message.type", messageType)),
	)
	defer func() {
		generations.WithLabelValues("message", outcome(err)).Inc()
		endSpan(span, err)
	}()

	if err = validateIdea(idea, s.MaxIdeaRunes); err != nil {
		return nil, err
	}

	req := domain.NewCampaignRequest(idea, messageType)
	span.SetAttributes(attribute.String("message.channel", string(req.Channel)))

	text, err := s.LLM.Complete(ctx, s.Composer.ComposeMessage(req))
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("channel", string(req.Channel)).
		Int("message_len", len(text)).
		Msg("campaign message generated")
	return &MessageResult{Message: text, Platform: req.Platform}, nil
}
