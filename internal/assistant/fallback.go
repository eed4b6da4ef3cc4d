package assistant

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// DefaultFallbackMessage is the English reply when no intent matches.
const DefaultFallbackMessage = "I did not find a direct answer. Try: wifi, water, TV, trash, check in, check out."

// DefaultLanguage is used when configuration names none.
const DefaultLanguage = "en"

// ErrMissingFallback is returned when the default language has no message.
var ErrMissingFallback = errors.New("assistant: default language has no fallback message")

// Fallbacks maps a base language code to the reply used when nothing matches.
type Fallbacks struct {
	messages        map[string]string
	defaultLanguage string
}

// NewFallbacks canonicalizes the keys of messages and checks that the default
// language is covered. Entries with blank text or an unparsable key are
// rejected.
func NewFallbacks(messages map[string]string, defaultLanguage string) (*Fallbacks, error) {
	def, ok := baseLanguage(defaultLanguage)
	if !ok {
		return nil, fmt.Errorf("assistant: invalid default language %q", defaultLanguage)
	}

	canonical := make(map[string]string, len(messages))
	for lang, text := range messages {
		code, ok := baseLanguage(lang)
		if !ok {
			return nil, fmt.Errorf("assistant: invalid fallback language %q", lang)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, fmt.Errorf("assistant: fallback message for %q is empty", lang)
		}
		canonical[code] = text
	}
	if _, ok := canonical[def]; !ok {
		return nil, fmt.Errorf("%w (%s)", ErrMissingFallback, def)
	}
	return &Fallbacks{messages: canonical, defaultLanguage: def}, nil
}

// DefaultFallbacks returns the built-in English fallback.
func DefaultFallbacks() *Fallbacks {
	return &Fallbacks{
		messages:        map[string]string{DefaultLanguage: DefaultFallbackMessage},
		defaultLanguage: DefaultLanguage,
	}
}

// DefaultLanguage returns the canonical default language code.
func (f *Fallbacks) DefaultLanguage() string {
	return f.defaultLanguage
}

// For returns the message for lang, or the default language message when
// lang has none. The result is never empty.
func (f *Fallbacks) For(lang string) string {
	if msg, ok := f.messages[lang]; ok {
		return msg
	}
	return f.messages[f.defaultLanguage]
}

// Languages reports how many languages have a fallback message.
func (f *Fallbacks) Languages() int {
	return len(f.messages)
}

// CanonicalLanguage reduces a BCP 47 tag such as "it-IT" or "PT_br" to its
// base language code. Empty or unparsable input yields def.
func CanonicalLanguage(raw, def string) string {
	if code, ok := baseLanguage(raw); ok {
		return code
	}
	return def
}

func baseLanguage(raw string) (string, bool) {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, "_", "-"))
	if raw == "" {
		return "", false
	}
	tag, err := language.Parse(raw)
	if err != nil || tag == language.Und {
		return "", false
	}
	// Base infers a language for tags like "und-IT"; only explicit ones count.
	base, conf := tag.Base()
	if conf != language.Exact {
		return "", false
	}
	return base.String(), true
}
