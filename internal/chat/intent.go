package chat

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

type Intent string

const (
	IntentPricing   Intent = "pricing"
	IntentServices  Intent = "services"
	IntentContact   Intent = "contact"
	IntentPortfolio Intent = "portfolio"
	IntentGreeting  Intent = "greeting"
	IntentTimeline  Intent = "timeline"
	IntentFallback  Intent = "fallback"
)

// Intents lists every intent the assistant can answer, fallback last.
var Intents = []Intent{
	IntentPricing,
	IntentServices,
	IntentContact,
	IntentPortfolio,
	IntentGreeting,
	IntentTimeline,
	IntentFallback,
}

var (
	ErrUnknownIntent = errors.New("unknown intent")
	ErrEmptyRule     = errors.New("rule has no keywords")
)

func (i Intent) Valid() bool {
	for _, known := range Intents {
		if i == known {
			return true
		}
	}
	return false
}

// Rule maps a keyword set to an intent. A rule matches when any keyword is a
// substring of the normalized utterance.
type Rule struct {
	Intent   Intent
	Keywords []string
}

// DefaultRules is evaluated top to bottom; the first matching rule wins.
var DefaultRules = []Rule{
	{Intent: IntentPricing, Keywords: []string{"price", "cost", "pricing", "₹"}},
	{Intent: IntentServices, Keywords: []string{"service", "offer", "provide"}},
	{Intent: IntentContact, Keywords: []string{"contact", "email", "phone", "reach"}},
	{Intent: IntentPortfolio, Keywords: []string{"portfolio", "work", "project"}},
	{Intent: IntentGreeting, Keywords: []string{"hello", "hi", "hey"}},
	{Intent: IntentTimeline, Keywords: []string{"time", "long", "duration"}},
}

type Classifier struct {
	rules []Rule
}

// NewClassifier validates and copies rules. Fallback cannot be a rule target:
// it is what Classify returns when nothing matches.
func NewClassifier(rules []Rule) (*Classifier, error) {
	out := make([]Rule, 0, len(rules))
	for i, r := range rules {
		if !r.Intent.Valid() || r.Intent == IntentFallback {
			return nil, fmt.Errorf("rule %d: %w: %q", i, ErrUnknownIntent, r.Intent)
		}
		keywords := make([]string, 0, len(r.Keywords))
		for _, k := range r.Keywords {
			if k = Normalize(k); k != "" {
				keywords = append(keywords, k)
			}
		}
		if len(keywords) == 0 {
			return nil, fmt.Errorf("rule %d (%s): %w", i, r.Intent, ErrEmptyRule)
		}
		out = append(out, Rule{Intent: r.Intent, Keywords: keywords})
	}
	return &Classifier{rules: out}, nil
}

// MustClassifier is NewClassifier for rule sets known at compile time.
func MustClassifier(rules []Rule) *Classifier {
	c, err := NewClassifier(rules)
	if err != nil {
		panic(err)
	}
	return c
}

// Classify returns the intent of the first rule matching the utterance, or
// IntentFallback. It never fails.
func (c *Classifier) Classify(utterance string) Intent {
	m := Normalize(utterance)
	if m == "" {
		return IntentFallback
	}
	for _, r := range c.rules {
		if containsAny(m, r.Keywords) {
			return r.Intent
		}
	}
	return IntentFallback
}

func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	for i, r := range c.rules {
		out[i] = Rule{Intent: r.Intent, Keywords: append([]string(nil), r.Keywords...)}
	}
	return out
}

// Normalize applies NFKC and case folding so full-width and mixed-case input
// matches lowercase keywords.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	// A Caser is stateful and must not be shared between goroutines.
	return cases.Fold().String(norm.NFKC.String(s))
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
