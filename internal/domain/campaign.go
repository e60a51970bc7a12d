package domain

import (
	"context"
	"strings"
)

// Channel is the delivery channel a promotional message is written for.
type Channel string

const (
	ChannelWhatsApp Channel = "whatsapp"
	ChannelSMS      Channel = "sms"
)

// ParseChannel maps a caller-supplied message type onto a Channel. Only the
// exact value "whatsapp" selects the WhatsApp rules; everything else,
// including "interakt", other casings and the empty string, gets SMS rules.
func ParseChannel(raw string) Channel {
	if Channel(raw) == ChannelWhatsApp {
		return ChannelWhatsApp
	}
	return ChannelSMS
}

// WhatsAppLike reports whether the channel uses the long-form WhatsApp rules.
func (c Channel) WhatsAppLike() bool {
	return c == ChannelWhatsApp
}

// CampaignRequest is one inbound generation request.
type CampaignRequest struct {
	// Idea is the caller's one-line campaign idea, used verbatim.
	Idea string
	// Channel selects the formatting rule-set.
	Channel Channel
	// Platform echoes the caller's raw message type in responses.
	Platform string
}

// NewCampaignRequest builds a request from the raw body fields. An empty
// messageType is reported back as the resolved channel name.
func NewCampaignRequest(idea, messageType string) CampaignRequest {
	ch := ParseChannel(messageType)
	platform := strings.TrimSpace(messageType)
	if platform == "" {
		platform = string(ch)
	}
	return CampaignRequest{Idea: idea, Channel: ch, Platform: platform}
}

// Principal is the caller identity returned by the identity provider.
// It lives only for the duration of a request.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal attached by WithPrincipal, or nil.
func PrincipalFrom(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}
