package faq

import "regexp"

var placeholderPattern = regexp.MustCompile(`\{(\w+)\}`)

// PropertyData holds display values for one property keyed by field name.
type PropertyData map[string]string

// Lookup returns the value for field and whether it is present.
func (d PropertyData) Lookup(field string) (string, bool) {
	if d == nil {
		return "", false
	}
	v, ok := d[field]
	return v, ok
}

// Render replaces each {field} placeholder with its value from data.
// Placeholders without a value are kept verbatim. Substituted values are
// not scanned again.
func Render(template string, data PropertyData) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(token string) string {
		field := token[1 : len(token)-1]
		if v, ok := data.Lookup(field); ok {
			return v
		}
		return token
	})
}

// Placeholders lists the field names referenced by template, in order of
// first appearance.
func Placeholders(template string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(template, -1)
	seen := make(map[string]struct{}, len(matches))
	fields := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		fields = append(fields, m[1])
	}
	return fields
}
