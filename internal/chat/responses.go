package chat

import (
	"errors"
	"fmt"
	"strings"
	"text/template"

	"synapse-assistant/internal/profile"
)

var ErrMissingResponse = errors.New("no response registered for intent")

// DefaultTemplates are rendered against a profile.Profile.
var DefaultTemplates = map[Intent]string{
	IntentPricing: `Here's our pricing:
{{range .Services}}• {{.Name}}: {{.Price}}
{{end}}Final quotes depend on scope. Share a few details and we'll send an estimate within a day.`,

	IntentServices: `{{.Name}} offers:
{{range .Services}}• {{.Name}} - {{.Summary}}
{{end}}Which one are you interested in?`,

	IntentContact: `You can reach us at:
📧 {{.Email}}
📞 {{.Phone}}
🕒 {{.Hours}}
Or fill in the contact form and we'll get back to you.`,

	IntentPortfolio: `A few recent projects:
{{range .Portfolio}}• {{.}}
{{end}}Ask us for case studies in your industry.`,

	IntentGreeting: `Hello! 👋 Welcome to {{.Name}}. Ask me about our services, pricing, timelines or how to reach us.`,

	IntentTimeline: `Typical delivery times:
{{range .Services}}• {{.Name}}: {{.Timeline}}
{{end}}Rush delivery is possible for smaller projects.`,

	IntentFallback: `Thanks for your message! I can help with services, pricing, portfolio, timelines and contact details. For anything else, email {{.Email}} and our team will reply shortly.`,
}

// Composer maps every intent to exactly one fixed reply.
type Composer struct {
	replies map[Intent]string
}

// NewComposer renders one template per intent. Templates in p.Responses take
// precedence over DefaultTemplates. It fails unless every intent ends up with
// a non-empty reply.
func NewComposer(p profile.Profile) (*Composer, error) {
	sources := make(map[Intent]string, len(Intents))
	for k, v := range DefaultTemplates {
		sources[k] = v
	}
	for name, v := range p.Responses {
		in := Intent(strings.ToLower(strings.TrimSpace(name)))
		if !in.Valid() {
			return nil, fmt.Errorf("response override %q: %w", name, ErrUnknownIntent)
		}
		sources[in] = v
	}

	replies := make(map[Intent]string, len(Intents))
	for _, in := range Intents {
		src, ok := sources[in]
		if !ok || strings.TrimSpace(src) == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingResponse, in)
		}
		text, err := render(string(in), src, p)
		if err != nil {
			return nil, fmt.Errorf("failed to render %s response: %w", in, err)
		}
		replies[in] = text
	}
	return &Composer{replies: replies}, nil
}

// Compose returns the reply for an intent. An intent outside the closed set
// gets the fallback reply.
func (c *Composer) Compose(in Intent) string {
	if r, ok := c.replies[in]; ok {
		return r
	}
	return c.replies[IntentFallback]
}

func render(name, src string, data any) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(src)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(b.String()), nil
}
