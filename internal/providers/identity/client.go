// Package identity validates caller bearer tokens against a Supabase
// (GoTrue-compatible) auth server and returns the principal they belong to.
package identity

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/tbourn/go-campaign-backend/internal/domain"
)

const provider = "identity"

// Config mirrors config.AuthConfig.
type Config struct {
	URL     string
	AnonKey string
	Timeout time.Duration
}

// Client calls GET {URL}/auth/v1/user with the caller's token.
type Client struct {
	cfg  Config
	http *http.Client
}

// New returns a Client. httpClient may be nil.
func New(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	return &Client{cfg: cfg, http: httpClient}
}

// Validate resolves token to a principal. A missing URL or key yields
// ErrConfiguration; every other failure wraps ErrUnauthenticated.
func (c *Client) Validate(ctx context.Context, token string) (*domain.Principal, error) {
	ctx, span := otel.Tracer("providers/identity").Start(ctx, "Validate")
	defer span.End()

	if c.cfg.URL == "" || strings.TrimSpace(c.cfg.AnonKey) == "" {
		return nil, domain.Configuration("auth URL or anon key")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	req.Header.Set("apikey", c.cfg.AnonKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "identity unreachable")
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, domain.Upstream(provider, 0, "request failed", err))
	}
	defer res.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	if res.StatusCode != http.StatusOK {
		span.SetStatus(codes.Error, "token rejected")
		return nil, fmt.Errorf("%w: identity status %d", domain.ErrUnauthenticated, res.StatusCode)
	}

	id := gjson.GetBytes(raw, "id").String()
	if id == "" {
		return nil, fmt.Errorf("%w: no user in response", domain.ErrUnauthenticated)
	}
	return &domain.Principal{
		ID:    id,
		Email: gjson.GetBytes(raw, "email").String(),
		Role:  gjson.GetBytes(raw, "role").String(),
	}, nil
}
