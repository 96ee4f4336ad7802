package types

// Column types allowed inside a table question. Currency cells store plain
// integer cents (same unit as top-level currency answers).
const (
	FIELD_TYPE_TEXT          = "text"
	FIELD_TYPE_BOOLEAN       = "boolean"
	FIELD_TYPE_NUMBER        = "number"
	FIELD_TYPE_DATE          = "date"
	FIELD_TYPE_CURRENCY      = "currency"
	FIELD_TYPE_SINGLE_SELECT = "single_select"
)

// TableSchemaField is the canonical column definition of a table question,
// the single shape the rest of the codebase branches on. Option labels are
// plain strings here: the newer config shape resolves its i18n labels
// during normalization.
type TableSchemaField struct {
	Key      string        `bson:"key" json:"key"`
	Type     string        `bson:"type" json:"type"`
	Label    LocalizedText `bson:"label,omitempty" json:"label,omitempty"`
	Required bool          `bson:"required,omitempty" json:"required,omitempty"`
	Readonly bool          `bson:"readonly,omitempty" json:"readonly,omitempty"`
	Options  []FieldOption `bson:"options,omitempty" json:"options,omitempty"`
	Min      *float64      `bson:"min,omitempty" json:"min,omitempty"`
	Max      *float64      `bson:"max,omitempty" json:"max,omitempty"`
	Step     *float64      `bson:"step,omitempty" json:"step,omitempty"`
}

type FieldOption struct {
	Value string `bson:"value" json:"value"`
	Label string `bson:"label" json:"label"`
}

// TableRow is one persisted row of a table question. RowIndex is the only
// row identity and stays stable across edits.
type TableRow struct {
	RowIndex int                    `bson:"row_index" json:"row_index"`
	Row      map[string]interface{} `bson:"row" json:"row"`
}
