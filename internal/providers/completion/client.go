// Package completion is the chat-completion client used to draft campaign
// messages and enhance image ideas. It speaks the OpenAI chat-completions wire
// format through openai-go, pointed at any compatible base URL (OpenRouter by
// default).
//
// Each Complete call sends exactly one request: SDK retries are disabled and
// any retry policy belongs to the caller.
package completion

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-campaign-backend/internal/domain"
	"github.com/tbourn/go-campaign-backend/internal/prompt"
)

const provider = "completion"

// Config mirrors config.CompletionConfig so this package does not import config.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Referer string
	Title   string
	Timeout time.Duration
}

// Client sends composed prompts to the completion provider.
type Client struct {
	api   openai.Client
	model string
	ready bool
}

// New builds a Client. A missing API key is not an error here; Complete
// reports it as a configuration error per request. httpClient may be nil.
func New(cfg Config, httpClient *http.Client) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	// OpenRouter attribution headers
	if cfg.Referer != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.Referer))
	}
	if cfg.Title != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.Title))
	}
	return &Client{
		api:   openai.NewClient(opts...),
		model: cfg.Model,
		ready: strings.TrimSpace(cfg.APIKey) != "" && strings.TrimSpace(cfg.Model) != "",
	}
}

// Complete sends p as a system + user exchange and returns the first choice's
// content. Empty content yields p.Idea unchanged.
func (c *Client) Complete(ctx context.Context, p prompt.Composed) (string, error) {
	ctx, span := otel.Tracer("providers/completion").Start(ctx, "Complete",
		trace.WithAttributes(attribute.String("llm.model", c.model)),
	)
	defer span.End()

	if !c.ready {
		return "", domain.Configuration("completion API key or model")
	}

	log := zerolog.Ctx(ctx).With().Str("provider", provider).Str("model", c.model).Logger()
	start := time.Now()

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(p.System),
			openai.UserMessage(p.User),
		},
	})
	if err != nil {
		uerr := toUpstream(err)
		span.RecordError(uerr)
		span.SetStatus(codes.Error, "completion failed")
		log.Warn().Err(err).Int("status", uerr.StatusCode).Dur("took", time.Since(start)).Msg("completion request failed")
		return "", uerr
	}
	if len(resp.Choices) == 0 {
		uerr := domain.Upstream(provider, 0, "response contained no choices", nil)
		span.SetStatus(codes.Error, uerr.Message)
		return "", uerr
	}

	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	span.SetAttributes(attribute.Int("llm.output_len", len(out)))
	log.Debug().Dur("took", time.Since(start)).Int("output_len", len(out)).Msg("completion ok")
	if out == "" {
		return p.Idea, nil
	}
	return out, nil
}

// toUpstream converts an SDK error into an UpstreamError, keeping the
// provider's own message when the API returned one.
func toUpstream(err error) *domain.UpstreamError {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		msg := strings.TrimSpace(apiErr.Message)
		if msg == "" {
			msg = http.StatusText(apiErr.StatusCode)
		}
		return domain.Upstream(provider, apiErr.StatusCode, msg, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.Upstream(provider, 0, "request timed out", err)
	}
	return domain.Upstream(provider, 0, "request failed", err)
}
