package engine

import (
	formTypes "github.com/fmb1991/broker-forms-vf/pkg/forms/types"
)

// MissingRequiredCodes validates a form against its template for
// submission: every required question must carry a non-empty answer (or,
// for tables, at least one persisted row). The returned codes are surfaced
// verbatim to the client.
func MissingRequiredCodes(
	questions []formTypes.Question,
	answers map[string]interface{},
	tableRows map[string][]formTypes.TableRow,
) []string {
	missing := []string{}
	for _, q := range questions {
		if !q.Required {
			continue
		}
		if q.Type == formTypes.QUESTION_TYPE_TABLE {
			if len(tableRows[q.Code]) == 0 {
				missing = append(missing, q.Code)
			}
			continue
		}
		if !isAnswered(q, answers[q.Code]) {
			missing = append(missing, q.Code)
		}
	}
	return missing
}

func isAnswered(q formTypes.Question, stored interface{}) bool {
	value, err := CoerceStoredAnswer(q, stored)
	if err != nil {
		return false
	}

	switch q.Type {
	case formTypes.QUESTION_TYPE_BOOLEAN:
		v, ok := value.(formTypes.BoolAnswer)
		return ok && v.Value != nil
	case formTypes.QUESTION_TYPE_SINGLE_SELECT,
		formTypes.QUESTION_TYPE_DATE,
		formTypes.QUESTION_TYPE_TEXT:
		v, ok := value.(string)
		return ok && v != ""
	case formTypes.QUESTION_TYPE_MULTI_SELECT:
		v, ok := value.([]string)
		return ok && len(v) > 0
	case formTypes.QUESTION_TYPE_CURRENCY:
		v, ok := value.(formTypes.CurrencyAnswer)
		return ok && v.AmountCents != nil
	case formTypes.QUESTION_TYPE_NUMBER:
		v, ok := value.(*float64)
		return ok && v != nil
	case formTypes.QUESTION_TYPE_ATTACHMENT:
		v, ok := value.(formTypes.AttachmentMeta)
		return ok && v.ObjectKey != ""
	default:
		return value != nil
	}
}
