package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fmb1991/broker-forms-vf/pkg/forms/engine"
	formTypes "github.com/fmb1991/broker-forms-vf/pkg/forms/types"
)

const (
	TRUE_VALUE  = "TRUE"
	FALSE_VALUE = "FALSE"
)

var yesNoLabels = map[string][2]string{
	formTypes.LANG_PT_BR:  {"Sim", "Não"},
	formTypes.LANG_EN:     {"Yes", "No"},
	formTypes.LANG_ES_419: {"Sí", "No"},
}

func yesNo(value bool, locale string) string {
	labels, ok := yesNoLabels[locale]
	if !ok {
		labels = yesNoLabels[formTypes.DefaultLanguage]
	}
	if value {
		return labels[0]
	}
	return labels[1]
}

// FormatAnswer renders one question's answer for human-readable exports.
// Unanswered questions render as the empty string.
func FormatAnswer(q formTypes.Question, stored interface{}, locale string) string {
	value, err := engine.CoerceStoredAnswer(q, stored)
	if err != nil {
		return ""
	}

	switch q.Type {
	case formTypes.QUESTION_TYPE_BOOLEAN:
		v, ok := value.(formTypes.BoolAnswer)
		if !ok || v.Value == nil {
			return ""
		}
		out := yesNo(*v.Value, locale)
		if v.Details != "" {
			out += " — " + v.Details
		}
		return out
	case formTypes.QUESTION_TYPE_SINGLE_SELECT:
		v, _ := value.(string)
		return optionLabel(q, v, locale)
	case formTypes.QUESTION_TYPE_MULTI_SELECT:
		v, _ := value.([]string)
		labels := make([]string, 0, len(v))
		for _, item := range v {
			labels = append(labels, optionLabel(q, item, locale))
		}
		return strings.Join(labels, "; ")
	case formTypes.QUESTION_TYPE_CURRENCY:
		v, ok := value.(formTypes.CurrencyAnswer)
		if !ok || v.AmountCents == nil {
			return ""
		}
		amount := formTypes.FormatCurrencyCents(*v.AmountCents, formTypes.CurrencyDecimals(q))
		if v.Currency != "" {
			return v.Currency + " " + amount
		}
		return amount
	case formTypes.QUESTION_TYPE_NUMBER:
		v, ok := value.(*float64)
		if !ok || v == nil {
			return ""
		}
		return strconv.FormatFloat(*v, 'f', -1, 64)
	case formTypes.QUESTION_TYPE_ATTACHMENT:
		v, ok := value.(formTypes.AttachmentMeta)
		if !ok || v.ObjectKey == "" {
			return ""
		}
		return v.Filename
	case formTypes.QUESTION_TYPE_DATE, formTypes.QUESTION_TYPE_TEXT:
		v, _ := value.(string)
		return v
	default:
		if value == nil {
			return ""
		}
		return fmt.Sprintf("%v", value)
	}
}

// FormatCell renders one table cell for exports, using the canonical
// column definition of the cell. Currency cells use the decimals configured
// on the owning table question, same as top-level currency answers.
func FormatCell(field formTypes.TableSchemaField, raw interface{}, decimals int, locale string) string {
	if raw == nil {
		return ""
	}
	switch field.Type {
	case formTypes.FIELD_TYPE_BOOLEAN:
		v, ok := raw.(bool)
		if !ok {
			return ""
		}
		return yesNo(v, locale)
	case formTypes.FIELD_TYPE_CURRENCY:
		cents, ok := toInt64(raw)
		if !ok {
			return ""
		}
		return formTypes.FormatCurrencyCents(cents, decimals)
	case formTypes.FIELD_TYPE_NUMBER:
		switch v := raw.(type) {
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			return strconv.Itoa(v)
		case int64:
			return strconv.FormatInt(v, 10)
		}
		return fmt.Sprintf("%v", raw)
	case formTypes.FIELD_TYPE_SINGLE_SELECT:
		v, _ := raw.(string)
		for _, opt := range field.Options {
			if opt.Value == v {
				return opt.Label
			}
		}
		return v
	default:
		return fmt.Sprintf("%v", raw)
	}
}

func optionLabel(q formTypes.Question, value string, locale string) string {
	if value == "" {
		return ""
	}
	for _, opt := range q.Options {
		if opt.Value == value {
			return opt.Label.ResolveOr(locale, value)
		}
	}
	return value
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}
