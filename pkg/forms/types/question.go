package types

// Question types supported by the template model. Templates authored with a
// newer type than this binary knows about are carried opaquely and flagged
// as unsupported at render time instead of being rejected.
const (
	QUESTION_TYPE_BOOLEAN       = "boolean"
	QUESTION_TYPE_SINGLE_SELECT = "single_select"
	QUESTION_TYPE_MULTI_SELECT  = "multi_select"
	QUESTION_TYPE_DATE          = "date"
	QUESTION_TYPE_CURRENCY      = "currency"
	QUESTION_TYPE_TEXT          = "text"
	QUESTION_TYPE_NUMBER        = "number"
	QUESTION_TYPE_ATTACHMENT    = "attachment"
	QUESTION_TYPE_TABLE         = "table"
)

func IsKnownQuestionType(qType string) bool {
	switch qType {
	case QUESTION_TYPE_BOOLEAN,
		QUESTION_TYPE_SINGLE_SELECT,
		QUESTION_TYPE_MULTI_SELECT,
		QUESTION_TYPE_DATE,
		QUESTION_TYPE_CURRENCY,
		QUESTION_TYPE_TEXT,
		QUESTION_TYPE_NUMBER,
		QUESTION_TYPE_ATTACHMENT,
		QUESTION_TYPE_TABLE:
		return true
	}
	return false
}

// Question is one field definition within a template. Code is the only
// external identity; answers are keyed by (form, code).
type Question struct {
	Code     string          `bson:"code" json:"code"`
	Type     string          `bson:"type" json:"type"`
	Label    LocalizedText   `bson:"label" json:"label"`
	Help     LocalizedText   `bson:"help,omitempty" json:"help,omitempty"`
	Section  LocalizedText   `bson:"section,omitempty" json:"section,omitempty"`
	Required bool            `bson:"required" json:"required"`
	Order    int             `bson:"order" json:"order"`
	Config   *QuestionConfig `bson:"config,omitempty" json:"config,omitempty"`
	Options  []Option        `bson:"options,omitempty" json:"options,omitempty"`
}

// Option is one choice for single_select / multi_select questions.
type Option struct {
	Value string        `bson:"value" json:"value"`
	Label LocalizedText `bson:"label" json:"label"`
	Order int           `bson:"order" json:"order"`
}

// QuestionConfig carries the type-specific configuration. Table questions
// may use either the legacy TableSchema list (already canonical) or the
// newer Columns list; see the schema package for normalization.
type QuestionConfig struct {
	// currency
	Currency string `bson:"currency,omitempty" json:"currency,omitempty"`
	Decimals *int   `bson:"decimals,omitempty" json:"decimals,omitempty"`

	// attachment
	MaxMB   int      `bson:"max_mb,omitempty" json:"max_mb,omitempty"`
	Allowed []string `bson:"allowed,omitempty" json:"allowed,omitempty"`

	// table - legacy shape (canonical field list)
	TableSchema []TableSchemaField `bson:"table_schema,omitempty" json:"table_schema,omitempty"`
	// table - newer shape (normalized at read time)
	Columns []ColumnDef `bson:"columns,omitempty" json:"columns,omitempty"`

	// table - row behavior
	FixedRows []FixedRowDef `bson:"fixed_rows,omitempty" json:"fixed_rows,omitempty"`
	MaxRows   int           `bson:"max_rows,omitempty" json:"max_rows,omitempty"`
	// Declared by some templates but no delete action is wired to it.
	AllowDeleteRows bool `bson:"allow_delete_rows,omitempty" json:"allow_delete_rows,omitempty"`
}

// FixedRowDef declares one predefined row of a fixed-mode table. The row at
// schema position i maps to the canonical row index i+1.
type FixedRowDef struct {
	Code     string        `bson:"code" json:"code"`
	Title    LocalizedText `bson:"title" json:"title"`
	Subtitle LocalizedText `bson:"subtitle,omitempty" json:"subtitle,omitempty"`
}

// ColumnDef is the newer table column shape: ids instead of keys, i18n
// option labels nested per choice and possibly non-string choice values.
type ColumnDef struct {
	ID        string         `bson:"id" json:"id"`
	Kind      string         `bson:"kind" json:"kind"`
	Title     LocalizedText  `bson:"title,omitempty" json:"title,omitempty"`
	Mandatory bool           `bson:"mandatory,omitempty" json:"mandatory,omitempty"`
	Readonly  bool           `bson:"readonly,omitempty" json:"readonly,omitempty"`
	Choices   []ColumnChoice `bson:"choices,omitempty" json:"choices,omitempty"`
	Min       *float64       `bson:"min,omitempty" json:"min,omitempty"`
	Max       *float64       `bson:"max,omitempty" json:"max,omitempty"`
	Step      *float64       `bson:"step,omitempty" json:"step,omitempty"`
}

type ColumnChoice struct {
	Value interface{}   `bson:"value" json:"value"`
	Label LocalizedText `bson:"label,omitempty" json:"label,omitempty"`
}
