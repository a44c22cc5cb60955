// Package contact turns a contact form into a pre-filled email draft and the
// mailto: URI that hands it to the visitor's mail client. Nothing here sends
// mail or can observe whether the mail client opened.
package contact

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// StatusHandoffAttempted is the only outcome the system can report.
const StatusHandoffAttempted = "handoff_attempted"

var ErrNotMailto = errors.New("not a mailto URI")

// Form is the contact form as submitted. Required-field checks belong to the
// surface collecting it.
type Form struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Service string `json:"service,omitempty"`
	Message string `json:"message"`
}

type field struct {
	label string
	value func(Form) string
}

// bodyFields fixes the order fields appear in the draft body.
var bodyFields = []field{
	{"Name", func(f Form) string { return f.Name }},
	{"Email", func(f Form) string { return f.Email }},
	{"Phone", func(f Form) string { return f.Phone }},
	{"Service", func(f Form) string { return f.Service }},
	{"Message", func(f Form) string { return f.Message }},
}

// FieldLabels returns the body labels in order.
func FieldLabels() []string {
	out := make([]string, len(bodyFields))
	for i, f := range bodyFields {
		out[i] = f.label
	}
	return out
}

type Draft struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Format builds the draft. It is deterministic and performs no validation.
func Format(f Form) Draft {
	subject := "New inquiry from " + strings.TrimSpace(f.Name)
	if svc := strings.TrimSpace(f.Service); svc != "" {
		subject += " - " + svc
	}
	lines := make([]string, 0, len(bodyFields))
	for _, bf := range bodyFields {
		lines = append(lines, bf.label+": "+bf.value(f))
	}
	return Draft{Subject: subject, Body: strings.Join(lines, "\n")}
}

// MailtoURI renders mailto:<recipient>?subject=...&body=... with every
// parameter percent-encoded and spaces as %20.
func (d Draft) MailtoURI(recipient string) string {
	var b strings.Builder
	b.WriteString("mailto:")
	b.WriteString(url.PathEscape(recipient))
	b.WriteString("?subject=")
	b.WriteString(encodeComponent(d.Subject))
	b.WriteString("&body=")
	b.WriteString(encodeComponent(d.Body))
	return b.String()
}

// ParseMailto reverses MailtoURI.
func ParseMailto(uri string) (string, Draft, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", Draft{}, fmt.Errorf("failed to parse %q: %w", uri, err)
	}
	if u.Scheme != "mailto" {
		return "", Draft{}, fmt.Errorf("%w: %q", ErrNotMailto, uri)
	}
	recipient, err := url.PathUnescape(u.Opaque)
	if err != nil {
		return "", Draft{}, fmt.Errorf("failed to decode recipient: %w", err)
	}
	q, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return "", Draft{}, fmt.Errorf("failed to decode query: %w", err)
	}
	return recipient, Draft{Subject: q.Get("subject"), Body: q.Get("body")}, nil
}

// Handoff is what the surface returns after building the URI.
type Handoff struct {
	Mailto  string `json:"mailto"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Status  string `json:"status"`
}

func NewHandoff(recipient string, f Form) Handoff {
	d := Format(f)
	return Handoff{
		Mailto:  d.MailtoURI(recipient),
		Subject: d.Subject,
		Body:    d.Body,
		Status:  StatusHandoffAttempted,
	}
}

func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
