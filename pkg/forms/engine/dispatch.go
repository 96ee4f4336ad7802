package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	formTypes "github.com/fmb1991/broker-forms-vf/pkg/forms/types"
)

var ErrTableAnswer = errors.New("table questions are answered through row upserts")

// ParseAnswerValue is the per-type dispatch validating and normalizing one
// incoming answer value. Exactly one branch applies per question; unknown
// question types are carried opaquely so that templates can declare new
// types before this binary learns to validate them.
func ParseAnswerValue(q formTypes.Question, raw json.RawMessage) (interface{}, error) {
	if len(raw) == 0 {
		return formTypes.EmptyAnswerValue(q), nil
	}

	switch q.Type {
	case formTypes.QUESTION_TYPE_BOOLEAN:
		var v formTypes.BoolAnswer
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("invalid boolean answer: %w", err)
		}
		return v, nil

	case formTypes.QUESTION_TYPE_SINGLE_SELECT:
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("invalid single_select answer: %w", err)
		}
		if v != "" && !optionExists(q.Options, v) {
			return nil, fmt.Errorf("value '%s' is not an option of question '%s'", v, q.Code)
		}
		return v, nil

	case formTypes.QUESTION_TYPE_MULTI_SELECT:
		var values []string
		if err := json.Unmarshal(raw, &values); err != nil {
			return nil, fmt.Errorf("invalid multi_select answer: %w", err)
		}
		// de-duplicate, keeping selection (insertion) order
		seen := map[string]bool{}
		result := make([]string, 0, len(values))
		for _, v := range values {
			if seen[v] {
				continue
			}
			if !optionExists(q.Options, v) {
				return nil, fmt.Errorf("value '%s' is not an option of question '%s'", v, q.Code)
			}
			seen[v] = true
			result = append(result, v)
		}
		return result, nil

	case formTypes.QUESTION_TYPE_DATE:
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("invalid date answer: %w", err)
		}
		if v != "" {
			if _, err := time.Parse("2006-01-02", v); err != nil {
				return nil, fmt.Errorf("invalid date '%s': expected YYYY-MM-DD", v)
			}
		}
		return v, nil

	case formTypes.QUESTION_TYPE_CURRENCY:
		var v formTypes.CurrencyAnswer
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("invalid currency answer: %w", err)
		}
		if v.AmountCents != nil && *v.AmountCents < 0 {
			return nil, fmt.Errorf("amount_cents must not be negative")
		}
		if v.Currency == "" && q.Config != nil {
			v.Currency = q.Config.Currency
		}
		return v, nil

	case formTypes.QUESTION_TYPE_TEXT:
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("invalid text answer: %w", err)
		}
		return v, nil

	case formTypes.QUESTION_TYPE_NUMBER:
		var v *float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("invalid number answer: %w", err)
		}
		return v, nil

	case formTypes.QUESTION_TYPE_ATTACHMENT:
		var v formTypes.AttachmentMeta
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("invalid attachment answer: %w", err)
		}
		if v != (formTypes.AttachmentMeta{}) {
			if v.ObjectKey == "" || v.Filename == "" {
				return nil, fmt.Errorf("attachment answer requires objectKey and filename")
			}
		}
		return v, nil

	case formTypes.QUESTION_TYPE_TABLE:
		return nil, ErrTableAnswer

	default:
		var v interface{}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("invalid answer payload: %w", err)
		}
		return v, nil
	}
}

// CoerceStoredAnswer converts an answer value as it comes back from the
// database (generic maps) into the typed shape of the question, defaulting
// to the type-appropriate empty value when nothing is stored.
func CoerceStoredAnswer(q formTypes.Question, stored interface{}) (interface{}, error) {
	if stored == nil {
		return formTypes.EmptyAnswerValue(q), nil
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return nil, err
	}
	return ParseAnswerValue(q, data)
}

func optionExists(options []formTypes.Option, value string) bool {
	for _, opt := range options {
		if opt.Value == value {
			return true
		}
	}
	return false
}
