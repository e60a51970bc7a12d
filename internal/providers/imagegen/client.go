// Package imagegen is the client for the asynchronous text-to-image task API.
// Submit creates a task and returns its id; Status reads one snapshot of it.
// Neither call retries. Polling a task to completion is the job of
// services.TaskPoller.
//
// The wire shape follows Freepik's task endpoints: POST {tasks} with
// {prompt, num_images, aspect_ratio} returns a task id, and GET {tasks}/{id}
// returns {status, generated}. Fields may sit at the top level or under
// "data"; both are accepted.
package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-campaign-backend/internal/domain"
)

const (
	provider = "imagegen"

	// DefaultMaxBodyBytes bounds a response body; inline base64 artifacts
	// of upscaled images run to tens of megabytes.
	DefaultMaxBodyBytes = 32 << 20
)

// Config mirrors config.ImageConfig.
type Config struct {
	APIKey      string
	BaseURL     string
	TasksPath   string
	AuthHeader  string
	NumImages   int
	AspectRatio string
	Timeout     time.Duration

	// MaxBodyBytes caps a response body; larger bodies fail as UpstreamError.
	MaxBodyBytes int64
}

// Client talks to the image task provider.
type Client struct {
	cfg  Config
	http *http.Client
}

// New returns a Client. httpClient may be nil, in which case one with
// cfg.Timeout is created.
func New(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.NumImages < 1 {
		cfg.NumImages = 1
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.AuthHeader == "" {
		cfg.AuthHeader = "x-freepik-api-key"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{cfg: cfg, http: httpClient}
}

type submitRequest struct {
	Prompt      string `json:"prompt"`
	NumImages   int    `json:"num_images"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
}

// Submit creates a generation task for prompt and returns its id.
func (c *Client) Submit(ctx context.Context, prompt string) (string, error) {
	ctx, span := otel.Tracer("providers/imagegen").Start(ctx, "Submit")
	defer span.End()

	if err := c.configured(); err != nil {
		return "", err
	}
	body, err := json.Marshal(submitRequest{Prompt: prompt, NumImages: c.cfg.NumImages, AspectRatio: c.cfg.AspectRatio})
	if err != nil {
		return "", fmt.Errorf("imagegen: encode submit: %w", err)
	}

	raw, err := c.do(ctx, http.MethodPost, c.cfg.BaseURL+c.cfg.TasksPath, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submit failed")
		return "", err
	}

	id := firstString(raw, "data.task_id", "task_id", "data.id", "id")
	if id == "" {
		span.SetStatus(codes.Error, "missing task id")
		return "", domain.ErrMissingTaskID
	}
	span.SetAttributes(attribute.String("task.id", id))
	zerolog.Ctx(ctx).Debug().Str("provider", provider).Str("task_id", id).Msg("image task submitted")
	return id, nil
}

// Status fetches one snapshot of task id. Transport errors and non-2xx
// responses are returned as UpstreamError. A 2xx body that does not parse
// yields status UNKNOWN so the caller keeps waiting.
func (c *Client) Status(ctx context.Context, id string) (domain.ImageTask, error) {
	ctx, span := otel.Tracer("providers/imagegen").Start(ctx, "Status",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	task := domain.ImageTask{ID: id, Status: domain.TaskUnknown}
	if err := c.configured(); err != nil {
		return task, err
	}

	raw, err := c.do(ctx, http.MethodGet, c.cfg.BaseURL+c.cfg.TasksPath+"/"+url.PathEscape(id), nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "status failed")
		return task, err
	}
	if !gjson.ValidBytes(raw) {
		zerolog.Ctx(ctx).Warn().Str("provider", provider).Str("task_id", id).Msg("unparseable task status body")
		return task, nil
	}

	task.Status = domain.ParseTaskStatus(firstString(raw, "data.status", "data.task_status", "task_status", "status"))
	task.Artifacts = parseArtifacts(raw)
	span.SetAttributes(
		attribute.String("task.status", string(task.Status)),
		attribute.Int("task.artifacts", len(task.Artifacts)),
	)
	return task, nil
}

func (c *Client) configured() error {
	if strings.TrimSpace(c.cfg.APIKey) == "" || c.cfg.BaseURL == "" {
		return domain.Configuration("image API key or base URL")
	}
	return nil
}

// do sends one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, target string, body []byte) ([]byte, error) {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rdr)
	if err != nil {
		return nil, domain.Upstream(provider, 0, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if strings.EqualFold(c.cfg.AuthHeader, "Authorization") {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	} else {
		req.Header.Set(c.cfg.AuthHeader, c.cfg.APIKey)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, domain.Upstream(provider, 0, "request failed", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, c.cfg.MaxBodyBytes+1))
	if err != nil {
		return nil, domain.Upstream(provider, res.StatusCode, "read body", err)
	}
	if int64(len(raw)) > c.cfg.MaxBodyBytes {
		zerolog.Ctx(ctx).Warn().Str("provider", provider).Int64("limit", c.cfg.MaxBodyBytes).Msg("image provider response too large")
		return nil, domain.Upstream(provider, res.StatusCode, "response too large", nil)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		msg := firstString(raw, "error.message", "message", "error", "detail")
		if msg == "" {
			msg = http.StatusText(res.StatusCode)
		}
		zerolog.Ctx(ctx).Warn().Str("provider", provider).Int("status", res.StatusCode).Str("upstream_msg", msg).Msg("image provider error")
		return nil, domain.Upstream(provider, res.StatusCode, msg, nil)
	}
	return raw, nil
}

// parseArtifacts reads "generated" as a list of {url}/{base64} objects or bare strings.
func parseArtifacts(raw []byte) []domain.Artifact {
	gen := gjson.GetBytes(raw, "data.generated")
	if !gen.Exists() {
		gen = gjson.GetBytes(raw, "generated")
	}
	if !gen.IsArray() {
		return nil
	}
	var out []domain.Artifact
	gen.ForEach(func(_, v gjson.Result) bool {
		switch {
		case v.Type == gjson.String:
			out = append(out, domain.Artifact{URL: v.String()})
		case v.IsObject():
			out = append(out, domain.Artifact{
				URL:    v.Get("url").String(),
				Base64: v.Get("base64").String(),
			})
		}
		return true
	})
	return out
}

func firstString(raw []byte, paths ...string) string {
	for _, p := range paths {
		if v := gjson.GetBytes(raw, p); v.Type == gjson.String {
			if s := strings.TrimSpace(v.String()); s != "" {
				return s
			}
		}
	}
	return ""
}
