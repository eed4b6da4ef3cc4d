// Package catalog holds the FAQ set and property records a guest assistant
// answers from. A Catalog is built once at startup and never mutated, so it
// can be shared by concurrent handlers without locking.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/wolfman30/guest-assistant/internal/faq"
)

// ErrInvalidCatalog marks configuration that must stop startup.
var ErrInvalidCatalog = errors.New("catalog: invalid catalog")

// Options are the raw tables a Catalog is built from.
type Options struct {
	FAQs            []faq.Entry
	Properties      map[string]faq.PropertyData
	DefaultProperty string
}

// Catalog is the immutable set of FAQ entries and property records.
type Catalog struct {
	faqs            []faq.Entry
	matcher         *faq.Matcher
	properties      map[string]faq.PropertyData
	defaultProperty string
}

// Stats summarizes catalog contents for health reporting.
type Stats struct {
	FAQs       int `json:"faqs"`
	Properties int `json:"properties"`
}

// New validates opts and copies the tables so later changes by the caller
// cannot leak in.
func New(opts Options) (*Catalog, error) {
	if err := faq.Validate(opts.FAQs); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	if len(opts.Properties) == 0 {
		return nil, fmt.Errorf("%w: no properties configured", ErrInvalidCatalog)
	}

	defaultProperty := strings.TrimSpace(opts.DefaultProperty)
	if defaultProperty == "" {
		return nil, fmt.Errorf("%w: default property is required", ErrInvalidCatalog)
	}
	if _, ok := opts.Properties[defaultProperty]; !ok {
		return nil, fmt.Errorf("%w: default property %q not found", ErrInvalidCatalog, defaultProperty)
	}

	faqs := make([]faq.Entry, len(opts.FAQs))
	for i, e := range opts.FAQs {
		faqs[i] = faq.Entry{
			Intent:         strings.TrimSpace(e.Intent),
			Utterances:     append([]string(nil), e.Utterances...),
			AnswerTemplate: e.AnswerTemplate,
		}
	}

	properties := make(map[string]faq.PropertyData, len(opts.Properties))
	for id, data := range opts.Properties {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, fmt.Errorf("%w: property with empty id", ErrInvalidCatalog)
		}
		if _, dup := properties[id]; dup {
			return nil, fmt.Errorf("%w: property id %q appears more than once after trimming", ErrInvalidCatalog, id)
		}
		copied := make(faq.PropertyData, len(data))
		for k, v := range data {
			copied[k] = v
		}
		properties[id] = copied
	}

	return &Catalog{
		faqs:            faqs,
		matcher:         faq.NewMatcher(faqs),
		properties:      properties,
		defaultProperty: defaultProperty,
	}, nil
}

// Matcher returns the intent matcher over the catalog's FAQ entries.
func (c *Catalog) Matcher() *faq.Matcher {
	return c.matcher
}

// Property returns the record for id.
func (c *Catalog) Property(id string) (faq.PropertyData, bool) {
	data, ok := c.properties[id]
	return data, ok
}

// DefaultProperty is the property used when a request names none.
func (c *Catalog) DefaultProperty() string {
	return c.defaultProperty
}

// PropertyIDs returns all property identifiers, sorted.
func (c *Catalog) PropertyIDs() []string {
	ids := make([]string, 0, len(c.properties))
	for id := range c.properties {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Stats reports entry and property counts.
func (c *Catalog) Stats() Stats {
	return Stats{FAQs: len(c.faqs), Properties: len(c.properties)}
}

// UnresolvedFields lists, per property, the template placeholders that the
// property has no value for. Such placeholders render verbatim, which is
// almost always a data entry mistake worth logging at startup.
func (c *Catalog) UnresolvedFields() map[string][]string {
	out := make(map[string][]string)
	for _, id := range c.PropertyIDs() {
		data := c.properties[id]
		seen := make(map[string]struct{})
		var missing []string
		for _, e := range c.faqs {
			for _, field := range faq.Placeholders(e.AnswerTemplate) {
				if _, ok := data.Lookup(field); ok {
					continue
				}
				if _, dup := seen[field]; dup {
					continue
				}
				seen[field] = struct{}{}
				missing = append(missing, field)
			}
		}
		if len(missing) > 0 {
			out[id] = missing
		}
	}
	return out
}
