package faq

import "strings"

// ScoredMatch pairs an entry with the number of its utterances found in a
// message. It only lives for the duration of one request.
type ScoredMatch struct {
	Entry Entry
	Score int
}

// Matcher scores messages against a fixed, ordered FAQ set.
// It holds no mutable state and is safe for concurrent use.
type Matcher struct {
	entries []compiledEntry
}

type compiledEntry struct {
	entry      Entry
	utterances []string // normalized
}

// NewMatcher pre-normalizes every utterance. The order of entries is the
// tie-break order.
func NewMatcher(entries []Entry) *Matcher {
	compiled := make([]compiledEntry, 0, len(entries))
	for _, e := range entries {
		utterances := make([]string, 0, len(e.Utterances))
		for _, u := range e.Utterances {
			utterances = append(utterances, Normalize(u))
		}
		compiled = append(compiled, compiledEntry{entry: e, utterances: utterances})
	}
	return &Matcher{entries: compiled}
}

// Len returns the number of FAQ entries.
func (m *Matcher) Len() int {
	return len(m.entries)
}

// Match returns the entry with the highest score for message. Equal scores
// keep the earliest entry. The boolean is false when nothing scored above zero.
func (m *Matcher) Match(message string) (ScoredMatch, bool) {
	text := Normalize(message)

	var best ScoredMatch
	found := false
	for _, ce := range m.entries {
		score := scoreEntry(text, ce.utterances)
		if score > best.Score {
			best = ScoredMatch{Entry: ce.entry, Score: score}
			found = true
		}
	}
	return best, found
}

// Scores returns the score of every entry in configured order, including
// zero scores. Used for diagnostics.
func (m *Matcher) Scores(message string) []ScoredMatch {
	text := Normalize(message)
	out := make([]ScoredMatch, 0, len(m.entries))
	for _, ce := range m.entries {
		out = append(out, ScoredMatch{Entry: ce.entry, Score: scoreEntry(text, ce.utterances)})
	}
	return out
}

// scoreEntry counts utterance entries contained in text; an utterance
// occurring several times still counts once.
func scoreEntry(text string, utterances []string) int {
	score := 0
	for _, u := range utterances {
		if strings.Contains(text, u) {
			score++
		}
	}
	return score
}
