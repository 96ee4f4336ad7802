package types

// BoolAnswer is the compound boolean answer. Value and Details are
// independently editable but jointly persisted; mutating one must start
// from the current compound so the other is preserved.
type BoolAnswer struct {
	Value   *bool  `bson:"value" json:"value"`
	Details string `bson:"details" json:"details"`
}

// CurrencyAnswer stores exact integer cents. AmountCents is nil while the
// question is unanswered and non-negative once set; the display string is
// derived by dividing by 10^decimals.
type CurrencyAnswer struct {
	AmountCents *int64 `bson:"amount_cents" json:"amount_cents"`
	Currency    string `bson:"currency" json:"currency"`
}

// AttachmentMeta is the persisted answer of an attachment question. The
// binary itself lives in the filestore, never in the answer value.
type AttachmentMeta struct {
	Bucket      string `bson:"bucket" json:"bucket"`
	ObjectKey   string `bson:"objectKey" json:"objectKey"`
	Filename    string `bson:"filename" json:"filename"`
	Size        int64  `bson:"size" json:"size"`
	ContentType string `bson:"contentType" json:"contentType"`
}

// EmptyAnswerValue returns the type-appropriate empty value a question
// renders with before it was ever answered. Table questions have no direct
// answer (their state lives in the row set) and unknown types default to
// nil so they can be carried opaquely.
func EmptyAnswerValue(q Question) interface{} {
	switch q.Type {
	case QUESTION_TYPE_BOOLEAN:
		return BoolAnswer{}
	case QUESTION_TYPE_SINGLE_SELECT, QUESTION_TYPE_DATE, QUESTION_TYPE_TEXT:
		return ""
	case QUESTION_TYPE_MULTI_SELECT:
		return []string{}
	case QUESTION_TYPE_CURRENCY:
		currency := ""
		if q.Config != nil {
			currency = q.Config.Currency
		}
		return CurrencyAnswer{Currency: currency}
	case QUESTION_TYPE_NUMBER:
		// number answers are "raw number or null"; null is the empty value
		return nil
	case QUESTION_TYPE_ATTACHMENT:
		return AttachmentMeta{}
	default:
		return nil
	}
}

// CurrencyDecimals returns the configured fraction digits for a currency
// question, defaulting to 2.
func CurrencyDecimals(q Question) int {
	if q.Config != nil && q.Config.Decimals != nil {
		return *q.Config.Decimals
	}
	return 2
}
