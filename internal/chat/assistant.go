package chat

import (
	"fmt"

	"synapse-assistant/internal/profile"
)

// Assistant pairs the classifier with the composer. It holds no per-user
// state and is safe to share between sessions.
type Assistant struct {
	classifier *Classifier
	composer   *Composer
}

func NewAssistant(classifier *Classifier, composer *Composer) *Assistant {
	return &Assistant{classifier: classifier, composer: composer}
}

// NewDefaultAssistant builds an assistant from DefaultRules and the profile's
// reply templates.
func NewDefaultAssistant(p profile.Profile) (*Assistant, error) {
	classifier, err := NewClassifier(DefaultRules)
	if err != nil {
		return nil, fmt.Errorf("failed to build classifier: %w", err)
	}
	composer, err := NewComposer(p)
	if err != nil {
		return nil, fmt.Errorf("failed to build composer: %w", err)
	}
	return NewAssistant(classifier, composer), nil
}

// Reply classifies the utterance and returns the canned reply for it.
func (a *Assistant) Reply(utterance string) (Intent, string) {
	in := a.classifier.Classify(utterance)
	return in, a.composer.Compose(in)
}
