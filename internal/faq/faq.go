// Package faq matches guest messages against keyword-tagged answers and
// fills the matched answer template with property data.
package faq

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidEntry marks a FAQ configuration problem detected at load time.
var ErrInvalidEntry = errors.New("faq: invalid entry")

// Entry is a single FAQ record.
type Entry struct {
	Intent         string   `json:"intent" yaml:"intent"`
	Utterances     []string `json:"utterances" yaml:"utterances"`
	AnswerTemplate string   `json:"answer_template" yaml:"answer_template"`
}

// Validate checks the FAQ set rules: intents are non-empty and unique,
// every entry has at least one utterance, and no utterance normalizes to
// the empty string (which would match every message).
func Validate(entries []Entry) error {
	seen := make(map[string]int, len(entries))
	for i, e := range entries {
		intent := strings.TrimSpace(e.Intent)
		if intent == "" {
			return fmt.Errorf("%w: entry %d has no intent", ErrInvalidEntry, i)
		}
		if prev, ok := seen[intent]; ok {
			return fmt.Errorf("%w: intent %q repeated at entries %d and %d", ErrInvalidEntry, intent, prev, i)
		}
		seen[intent] = i

		if len(e.Utterances) == 0 {
			return fmt.Errorf("%w: intent %q has no utterances", ErrInvalidEntry, intent)
		}
		for j, u := range e.Utterances {
			if Normalize(u) == "" {
				return fmt.Errorf("%w: intent %q utterance %d is blank", ErrInvalidEntry, intent, j)
			}
		}
	}
	return nil
}
