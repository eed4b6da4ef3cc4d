package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/wolfman30/guest-assistant/internal/faq"
)

const (
	faqsBaseName       = "faqs"
	propertiesBaseName = "properties"
)

var fileExtensions = []string{".json", ".yaml", ".yml"}

// Load reads faqs.{json,yaml,yml} and properties.{json,yaml,yml} from src
// and builds a validated Catalog. The first extension found wins.
func Load(ctx context.Context, src Source, defaultProperty string) (*Catalog, error) {
	var entries []faq.Entry
	if err := readFirst(ctx, src, faqsBaseName, &entries); err != nil {
		return nil, err
	}

	var raw map[string]map[string]any
	if err := readFirst(ctx, src, propertiesBaseName, &raw); err != nil {
		return nil, err
	}

	properties := make(map[string]faq.PropertyData, len(raw))
	for id, fields := range raw {
		data, err := stringifyFields(fields)
		if err != nil {
			return nil, fmt.Errorf("%w: property %q: %w", ErrInvalidCatalog, id, err)
		}
		properties[id] = data
	}

	return New(Options{
		FAQs:            entries,
		Properties:      properties,
		DefaultProperty: defaultProperty,
	})
}

func readFirst(ctx context.Context, src Source, base string, dst any) error {
	var missing []error
	for _, ext := range fileExtensions {
		name := base + ext
		rc, err := src.Open(ctx, name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				missing = append(missing, err)
				continue
			}
			return fmt.Errorf("catalog: open %s from %s: %w", name, src, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return fmt.Errorf("catalog: read %s from %s: %w", name, src, err)
		}
		if err := decode(name, data, dst); err != nil {
			return fmt.Errorf("%w: decode %s: %w", ErrInvalidCatalog, name, err)
		}
		return nil
	}
	return fmt.Errorf("%w: %s not found in %s: %w", ErrInvalidCatalog, base, src, errors.Join(missing...))
}

func decode(name string, data []byte, dst any) error {
	switch path.Ext(name) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, dst)
	default:
		return json.Unmarshal(data, dst)
	}
}

// stringifyFields converts decoded property values to display strings.
// Scalars are formatted directly; lists and objects are rendered as JSON.
func stringifyFields(fields map[string]any) (faq.PropertyData, error) {
	out := make(faq.PropertyData, len(fields))
	for k, v := range fields {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			out[k] = val
		case bool:
			out[k] = strconv.FormatBool(val)
		case int:
			out[k] = strconv.Itoa(val)
		case int64:
			out[k] = strconv.FormatInt(val, 10)
		case uint64:
			out[k] = strconv.FormatUint(val, 10)
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		default:
			encoded, err := json.Marshal(val)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", k, err)
			}
			out[k] = string(encoded)
		}
	}
	return out, nil
}
