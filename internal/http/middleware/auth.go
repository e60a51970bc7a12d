// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements Gatekeeper, the authentication gate in front of every
// endpoint that calls a billed provider. It runs before idempotency, rate
// limiting and the handlers, so a rejected request never reaches a provider.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-campaign-backend/internal/domain"
)

// Caller-visible rejection messages.
const (
	MsgNoToken      = "Unauthorized - No token provided"
	MsgInvalidToken = "Unauthorized - Invalid token"
	MsgServerConfig = "Server configuration error"
)

// principalKey is the Gin context key holding the *domain.Principal.
const principalKey = "principal"

// TokenValidator resolves a bearer token to a principal.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (*domain.Principal, error)
}

// Gatekeeper rejects requests without a valid bearer token.
//
//   - no Authorization header or empty token: 401 MsgNoToken
//   - validator reports domain.ErrConfiguration: 500 MsgServerConfig
//   - any other validator error, or no principal: 401 MsgInvalidToken
//
// On success the principal is stored in the Gin context ("principal",
// "userID") and in the request context (domain.WithPrincipal), and the
// request-scoped logger gains a user_id field.
func Gatekeeper(v TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			authRejections.WithLabelValues("no_token").Inc()
			abortError(c, http.StatusUnauthorized, "unauthorized", MsgNoToken)
			return
		}

		p, err := v.Validate(c.Request.Context(), token)
		if errors.Is(err, domain.ErrConfiguration) {
			authRejections.WithLabelValues("configuration").Inc()
			LoggerFrom(c).Error().Err(err).Msg("identity provider not configured")
			abortError(c, http.StatusInternalServerError, "configuration_error", MsgServerConfig)
			return
		}
		if err != nil || p == nil || p.ID == "" {
			authRejections.WithLabelValues("invalid_token").Inc()
			LoggerFrom(c).Debug().Err(err).Msg("token rejected")
			abortError(c, http.StatusUnauthorized, "unauthorized", MsgInvalidToken)
			return
		}

		c.Set(principalKey, p)
		c.Set(userIDKey, p.ID)
		c.Request = c.Request.WithContext(domain.WithPrincipal(c.Request.Context(), p))
		setLogger(c, LoggerFrom(c).With().Str("user_id", p.ID).Logger())

		c.Next()
	}
}

// PrincipalFrom returns the principal stored by Gatekeeper, or nil.
func PrincipalFrom(c *gin.Context) *domain.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(*domain.Principal); ok {
			return p
		}
	}
	return nil
}

// bearerToken strips an optional "Bearer" scheme (any case) from h. A bare
// scheme yields an empty token.
func bearerToken(h string) string {
	h = strings.TrimSpace(h)
	if len(h) >= 6 && strings.EqualFold(h[:6], "bearer") && (len(h) == 6 || h[6] == ' ') {
		h = h[6:]
	}
	return strings.TrimSpace(h)
}
