package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"sync"

	formTypes "github.com/fmb1991/broker-forms-vf/pkg/forms/types"
)

// Normalize converts a table question's configuration into the canonical
// column list. Two historical shapes are accepted: the legacy table_schema
// list, which is already canonical and returned unmodified, and the newer
// columns list, which is mapped entry by entry with option labels resolved
// for the given locale and option values coerced to strings.
//
// Normalization is pure and total: a config carrying neither shape (or a
// nil config) yields an empty list, never an error. Missing schema is a
// valid degenerate state surfaced by the renderer as an empty-state
// message, because template configuration is operator-authored data.
func Normalize(config *formTypes.QuestionConfig, locale string) []formTypes.TableSchemaField {
	if config == nil {
		return []formTypes.TableSchemaField{}
	}

	if len(config.TableSchema) > 0 {
		return config.TableSchema
	}

	if len(config.Columns) > 0 {
		fields := make([]formTypes.TableSchemaField, 0, len(config.Columns))
		for _, col := range config.Columns {
			field := formTypes.TableSchemaField{
				Key:      col.ID,
				Type:     col.Kind,
				Label:    col.Title,
				Required: col.Mandatory,
				Readonly: col.Readonly,
				Min:      col.Min,
				Max:      col.Max,
				Step:     col.Step,
			}
			for _, choice := range col.Choices {
				value := choiceValueToString(choice.Value)
				field.Options = append(field.Options, formTypes.FieldOption{
					Value: value,
					Label: choice.Label.ResolveOr(locale, value),
				})
			}
			fields = append(fields, field)
		}
		return fields
	}

	return []formTypes.TableSchemaField{}
}

func choiceValueToString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// Normalizer memoizes canonical field lists per (question identity,
// locale), so normalization runs once per table question per payload
// render instead of once per row. The cache key must change whenever the
// underlying template version changes (callers include the template
// version in it).
type Normalizer struct {
	mu    sync.RWMutex
	cache map[normalizerKey][]formTypes.TableSchemaField
}

type normalizerKey struct {
	templateKey  string
	questionCode string
	locale       string
}

func NewNormalizer() *Normalizer {
	return &Normalizer{
		cache: map[normalizerKey][]formTypes.TableSchemaField{},
	}
}

// Fields returns the memoized canonical field list for the question under
// the given template key and locale.
func (n *Normalizer) Fields(templateKey string, q formTypes.Question, locale string) []formTypes.TableSchemaField {
	key := normalizerKey{templateKey: templateKey, questionCode: q.Code, locale: locale}

	n.mu.RLock()
	fields, ok := n.cache[key]
	n.mu.RUnlock()
	if ok {
		return fields
	}

	fields = Normalize(q.Config, locale)

	n.mu.Lock()
	n.cache[key] = fields
	n.mu.Unlock()
	return fields
}

// InvalidateTemplate drops all cached entries for one template key, used
// after a template update.
func (n *Normalizer) InvalidateTemplate(templateKey string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for key := range n.cache {
		if key.templateKey == templateKey {
			delete(n.cache, key)
		}
	}
}
