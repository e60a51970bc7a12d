// Package prompt renders the fixed instruction templates that wrap a caller's
// campaign idea before it is sent to the completion provider.
//
// Composition is pure: no I/O, no validation, and the same inputs always
// produce byte-identical output. An empty or whitespace-only idea is rendered
// as-is; rejecting it is the HTTP layer's job.
package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/go-campaign-backend/internal/domain"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Brand is the institute identity rendered into message prompts.
type Brand struct {
	Name      string // full name, e.g. "EliteIIT Coaching Institute"
	ShortName string // name that must appear in every message, e.g. "EliteIIT"
	City      string
	State     string
	Legacy    string
	Faculty   string
	Website   string
}

// DefaultBrand is the identity used when no override is configured.
var DefaultBrand = Brand{
	Name:      "EliteIIT Coaching Institute",
	ShortName: "EliteIIT",
	City:      "Bangalore",
	State:     "Karnataka",
	Legacy:    "17+ years of excellence | 35,000+ success stories",
	Faculty:   "Industry veterans with 5-15+ years experience",
	Website:   "www.eliteiit.com",
}

// WithOverrides returns b with non-empty name and city replaced. A new name
// also becomes the short name.
func (b Brand) WithOverrides(name, city string) Brand {
	if n := strings.TrimSpace(name); n != "" {
		b.Name = n
		b.ShortName = n
	}
	if c := strings.TrimSpace(city); c != "" {
		b.City = c
	}
	return b
}

// Composed is a rendered prompt ready for a chat completion request.
// Idea keeps the caller's original text for the empty-completion fallback.
type Composed struct {
	System string
	User   string
	Idea   string
}

// Composer renders the image-enhancement and message templates.
// It is safe for concurrent use.
type Composer struct {
	brand   Brand
	image   *template.Template
	message *template.Template
}

// New parses the embedded templates for brand.
func New(brand Brand) (*Composer, error) {
	parse := func(name string) (*template.Template, error) {
		t, err := template.New(name).Option("missingkey=error").ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		return t, nil
	}
	img, err := parse("image.tmpl")
	if err != nil {
		return nil, err
	}
	msg, err := parse("message.tmpl")
	if err != nil {
		return nil, err
	}
	return &Composer{brand: brand, image: img, message: msg}, nil
}

// MustNew is New that panics; the templates are embedded so failure is a build defect.
func MustNew(brand Brand) *Composer {
	c, err := New(brand)
	if err != nil {
		panic(err)
	}
	return c
}

// Brand returns the identity this composer renders.
func (c *Composer) Brand() Brand { return c.brand }

// ComposeImage wraps idea with the image-enhancement instructions.
func (c *Composer) ComposeImage(idea string) Composed {
	return Composed{
		System: c.render(c.image, struct{ Idea string }{idea}),
		User:   "Enhance this image idea: " + idea,
		Idea:   idea,
	}
}

// ComposeMessage wraps idea with brand constraints and the rule-set for
// req.Channel. req.Platform is the name the model is told to write for.
func (c *Composer) ComposeMessage(req domain.CampaignRequest) Composed {
	data := struct {
		Brand         Brand
		Idea          string
		WhatsApp      bool
		PlatformUpper string
	}{
		Brand:         c.brand,
		Idea:          req.Idea,
		WhatsApp:      req.Channel.WhatsAppLike(),
		// a Caser is stateful, so one per call
		PlatformUpper: cases.Upper(language.English).String(req.Platform),
	}
	return Composed{
		System: c.render(c.message, data),
		User:   fmt.Sprintf("Generate a %s marketing message for: %s", req.Platform, req.Idea),
		Idea:   req.Idea,
	}
}

// render executes t. Templates are fixed and data types are closed, so an
// execution error is a programming error.
func (c *Composer) render(t *template.Template, data any) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		panic(fmt.Sprintf("prompt: render %s: %v", t.Name(), err))
	}
	return strings.TrimSpace(buf.String())
}
