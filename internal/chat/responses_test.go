package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synapse-assistant/internal/profile"
)

func TestComposer_EveryIntentHasAReply(t *testing.T) {
	c, err := NewComposer(profile.Default())
	require.NoError(t, err)
	for _, in := range Intents {
		assert.NotEmpty(t, c.Compose(in), "intent %s", in)
	}
}

func TestComposer_IsPure(t *testing.T) {
	c, err := NewComposer(profile.Default())
	require.NoError(t, err)
	for _, in := range Intents {
		assert.Equal(t, c.Compose(in), c.Compose(in))
	}
}

func TestComposer_PricingListsPrices(t *testing.T) {
	c, err := NewComposer(profile.Default())
	require.NoError(t, err)
	reply := c.Compose(IntentPricing)
	assert.Contains(t, reply, "Website Development: ₹15,000 onwards")
	for _, s := range profile.Default().Services {
		assert.Contains(t, reply, s.Price)
	}
}

func TestComposer_ContactUsesProfile(t *testing.T) {
	p := profile.Default()
	p.Email = "team@example.org"
	p.Phone = "+1 555 0100"
	c, err := NewComposer(p)
	require.NoError(t, err)
	reply := c.Compose(IntentContact)
	assert.Contains(t, reply, "team@example.org")
	assert.Contains(t, reply, "+1 555 0100")
	assert.Contains(t, c.Compose(IntentFallback), "team@example.org")
}

func TestComposer_Overrides(t *testing.T) {
	p := profile.Default()
	p.Responses = map[string]string{"Greeting": "Namaste from {{.Name}}!"}
	c, err := NewComposer(p)
	require.NoError(t, err)
	assert.Equal(t, "Namaste from Synapse Digital!", c.Compose(IntentGreeting))
	// untouched intents keep the default text
	assert.True(t, strings.HasPrefix(c.Compose(IntentPricing), "Here's our pricing:"))
}

func TestComposer_RejectsBadOverrides(t *testing.T) {
	p := profile.Default()
	p.Responses = map[string]string{"weather": "sunny"}
	_, err := NewComposer(p)
	assert.ErrorIs(t, err, ErrUnknownIntent)

	p.Responses = map[string]string{"fallback": "   "}
	_, err = NewComposer(p)
	assert.ErrorIs(t, err, ErrMissingResponse)

	p.Responses = map[string]string{"pricing": "{{.Nope}}"}
	_, err = NewComposer(p)
	assert.Error(t, err)
}

func TestComposer_UnknownIntentGetsFallback(t *testing.T) {
	c, err := NewComposer(profile.Default())
	require.NoError(t, err)
	assert.Equal(t, c.Compose(IntentFallback), c.Compose(Intent("weather")))
}

func TestAssistant_Scenarios(t *testing.T) {
	a, err := NewDefaultAssistant(profile.Default())
	require.NoError(t, err)

	in, reply := a.Reply("What is the cost of a website?")
	assert.Equal(t, IntentPricing, in)
	assert.Contains(t, reply, "₹15,000 onwards")

	in, reply = a.Reply("")
	assert.Equal(t, IntentFallback, in)
	assert.Equal(t, defaultFallback(t), reply)
}

func defaultFallback(t *testing.T) string {
	t.Helper()
	text, err := render("fallback", DefaultTemplates[IntentFallback], profile.Default())
	require.NoError(t, err)
	return text
}
