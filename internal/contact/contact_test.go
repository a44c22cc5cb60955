package contact

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullForm() Form {
	return Form{
		Name:    "Jane Doe",
		Email:   "jane@x.com",
		Phone:   "+91 90000 11111",
		Service: "Web Development",
		Message: "Need a site & a logo? 100% yes\nSecond line",
	}
}

func TestFormat_SubjectAndBody(t *testing.T) {
	d := Format(fullForm())
	assert.Equal(t, "New inquiry from Jane Doe - Web Development", d.Subject)
	assert.Equal(t, strings.Join([]string{
		"Name: Jane Doe",
		"Email: jane@x.com",
		"Phone: +91 90000 11111",
		"Service: Web Development",
		"Message: Need a site & a logo? 100% yes\nSecond line",
	}, "\n"), d.Body)
}

func TestFormat_SubjectWithoutService(t *testing.T) {
	d := Format(Form{Name: "Jane Doe"})
	assert.Equal(t, "New inquiry from Jane Doe", d.Subject)
}

func TestFormat_Deterministic(t *testing.T) {
	assert.Equal(t, Format(fullForm()), Format(fullForm()))
}

func TestMailtoURI_Encoding(t *testing.T) {
	uri := Format(fullForm()).MailtoURI("hello@synapsedigital.in")
	assert.True(t, strings.HasPrefix(uri, "mailto:hello@synapsedigital.in?subject="))
	assert.Contains(t, uri, "New%20inquiry%20from%20Jane%20Doe")
	assert.Contains(t, uri, "%0A")
	assert.Contains(t, uri, "%26")
	assert.NotContains(t, uri, "+")
	assert.NotContains(t, uri, " ")
	assert.NotContains(t, uri, "\n")
}

func TestMailtoURI_RoundTrip(t *testing.T) {
	f := fullForm()
	uri := Format(f).MailtoURI("hello@synapsedigital.in")

	recipient, d, err := ParseMailto(uri)
	require.NoError(t, err)
	assert.Equal(t, "hello@synapsedigital.in", recipient)
	assert.Equal(t, Format(f), d)

	// every value appears exactly once, in field order
	values := []string{f.Name, f.Email, f.Phone, f.Service, f.Message}
	last := -1
	for _, v := range values {
		assert.Equal(t, 1, strings.Count(d.Body, v), "value %q", v)
		idx := strings.Index(d.Body, v)
		assert.Greater(t, idx, last, "value %q out of order", v)
		last = idx
	}
}

func TestMailtoURI_Scenario(t *testing.T) {
	f := Form{Name: "Jane Doe", Email: "jane@x.com", Service: "Web Development", Message: "Need a site"}
	uri := Format(f).MailtoURI("hello@synapsedigital.in")

	u, err := url.Parse(uri)
	require.NoError(t, err)
	assert.Equal(t, "mailto", u.Scheme)
	q, err := url.ParseQuery(u.RawQuery)
	require.NoError(t, err)
	assert.Contains(t, q.Get("subject"), "Jane Doe")
	for _, v := range []string{"Jane Doe", "jane@x.com", "Web Development", "Need a site"} {
		assert.Contains(t, q.Get("body"), v)
	}
}

func TestParseMailto_Rejects(t *testing.T) {
	_, _, err := ParseMailto("https://example.com/?subject=x")
	assert.ErrorIs(t, err, ErrNotMailto)

	_, _, err = ParseMailto("mailto:a@b.c?subject=%zz")
	assert.Error(t, err)
}

func TestNewHandoff(t *testing.T) {
	h := NewHandoff("hello@synapsedigital.in", fullForm())
	assert.Equal(t, StatusHandoffAttempted, h.Status)
	assert.Equal(t, Format(fullForm()).MailtoURI("hello@synapsedigital.in"), h.Mailto)
	assert.Equal(t, "New inquiry from Jane Doe - Web Development", h.Subject)
}

func TestFieldLabels(t *testing.T) {
	assert.Equal(t, []string{"Name", "Email", "Phone", "Service", "Message"}, FieldLabels())
}
