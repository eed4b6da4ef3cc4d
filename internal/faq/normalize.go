package faq

import (
	"strings"
	"unicode"
)

// Normalize returns the comparison form of s: lower-cased, every dash or
// hyphen variant folded to '-', whitespace runs collapsed to a single space
// and trimmed at both ends.
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = b.Len() > 0
			continue
		case isDash(r):
			r = '-'
		default:
			r = unicode.ToLower(r)
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// isDash reports whether r renders as a dash or hyphen. Covers the Pd
// category (hyphen, en/em dash, figure dash, horizontal bar, small and
// full-width hyphen-minus) plus the minus sign, soft hyphen and the
// modifier/hyphen-bullet lookalikes that are classified elsewhere.
func isDash(r rune) bool {
	switch r {
	case '\u00AD', // soft hyphen
		'\u02D7', // modifier letter minus sign
		'\u2043', // hyphen bullet
		'\u2212', // minus sign
		'\u2796': // heavy minus sign
		return true
	}
	return unicode.Is(unicode.Pd, r)
}
