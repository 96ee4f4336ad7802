package engine

import (
	"errors"
	"fmt"
	"math"
	"sort"

	formTypes "github.com/fmb1991/broker-forms-vf/pkg/forms/types"
)

const (
	TABLE_MODE_DYNAMIC = "dynamic"
	TABLE_MODE_FIXED   = "fixed"
)

var (
	ErrMaxRowsReached   = errors.New("row limit reached for this question")
	ErrRowOutOfSchema   = errors.New("row index outside the fixed schema range")
	ErrNegativeRowIndex = errors.New("row index must not be negative")
)

// TableMode returns how the row set of a table question is managed: fixed
// when the config declares predefined rows, dynamic otherwise.
func TableMode(config *formTypes.QuestionConfig) string {
	if config != nil && len(config.FixedRows) > 0 {
		return TABLE_MODE_FIXED
	}
	return TABLE_MODE_DYNAMIC
}

// NextRowIndex assigns the index for a newly appended dynamic row: one past
// the highest existing index, or 0 for the first row. Indices of existing
// rows never change.
func NextRowIndex(rows []formTypes.TableRow) int {
	next := -1
	for _, r := range rows {
		if r.RowIndex > next {
			next = r.RowIndex
		}
	}
	return next + 1
}

// ApplyRowUpsert validates one full-row upsert against the question's
// canonical field list and the rows currently persisted, and returns the
// sanitized row map to store. Partial-row updates are not supported; the
// caller always submits the complete row.
func ApplyRowUpsert(
	q formTypes.Question,
	fields []formTypes.TableSchemaField,
	existing []formTypes.TableRow,
	rowIndex int,
	incoming map[string]interface{},
) (map[string]interface{}, error) {
	if q.Type != formTypes.QUESTION_TYPE_TABLE {
		return nil, fmt.Errorf("question '%s' is not a table question", q.Code)
	}

	var current map[string]interface{}
	exists := false
	for _, r := range existing {
		if r.RowIndex == rowIndex {
			current = r.Row
			exists = true
			break
		}
	}

	switch TableMode(q.Config) {
	case TABLE_MODE_FIXED:
		// fixed schema position i maps to canonical index i+1
		if rowIndex < 1 || rowIndex > len(q.Config.FixedRows) {
			return nil, ErrRowOutOfSchema
		}
	default:
		if rowIndex < 0 {
			return nil, ErrNegativeRowIndex
		}
		if !exists && q.Config != nil && q.Config.MaxRows > 0 && len(existing) >= q.Config.MaxRows {
			return nil, ErrMaxRowsReached
		}
	}

	return sanitizeRow(fields, current, incoming), nil
}

// sanitizeRow filters the incoming row to the schema's columns and coerces
// each cell to its column type. Read-only columns keep their current value
// regardless of what the client sent. Out-of-range numbers are clamped
// silently instead of rejected.
func sanitizeRow(
	fields []formTypes.TableSchemaField,
	current map[string]interface{},
	incoming map[string]interface{},
) map[string]interface{} {
	row := make(map[string]interface{}, len(fields))
	for _, field := range fields {
		if field.Readonly {
			if cur, ok := current[field.Key]; ok {
				row[field.Key] = cur
			}
			continue
		}

		raw, ok := incoming[field.Key]
		if !ok {
			continue
		}

		switch field.Type {
		case formTypes.FIELD_TYPE_BOOLEAN:
			if b, ok := raw.(bool); ok {
				row[field.Key] = b
			}
		case formTypes.FIELD_TYPE_NUMBER:
			if num, ok := toFloat(raw); ok {
				row[field.Key] = clampNumber(num, field)
			}
		case formTypes.FIELD_TYPE_CURRENCY:
			// currency cells store integer cents, same as top-level answers
			if num, ok := toFloat(raw); ok && num >= 0 {
				row[field.Key] = int64(math.Round(num))
			}
		case formTypes.FIELD_TYPE_SINGLE_SELECT:
			s, ok := raw.(string)
			if !ok {
				continue
			}
			if s == "" || fieldOptionExists(field.Options, s) {
				row[field.Key] = s
			} else if cur, ok := current[field.Key]; ok {
				row[field.Key] = cur
			}
		default:
			// text, date and anything unrecognized stay strings
			if s, ok := raw.(string); ok {
				row[field.Key] = s
			}
		}
	}
	return row
}

func clampNumber(v float64, field formTypes.TableSchemaField) float64 {
	if field.Min != nil && v < *field.Min {
		v = *field.Min
	}
	if field.Max != nil && v > *field.Max {
		v = *field.Max
	}
	if field.Step != nil && *field.Step > 0 {
		origin := 0.0
		if field.Min != nil {
			origin = *field.Min
		}
		v = origin + math.Round((v-origin)/(*field.Step))*(*field.Step)
		if field.Max != nil && v > *field.Max {
			v -= *field.Step
		}
	}
	return v
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}

func fieldOptionExists(options []formTypes.FieldOption, value string) bool {
	for _, opt := range options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

// RenderedRow is one row of a table question as shown to the client. Fixed
// rows carry their schema code and localized titles.
type RenderedRow struct {
	RowIndex int                    `json:"row_index"`
	Code     string                 `json:"code,omitempty"`
	Title    string                 `json:"title,omitempty"`
	Subtitle string                 `json:"subtitle,omitempty"`
	Row      map[string]interface{} `json:"row"`
}

// RenderRows produces the row set the client sees. Dynamic mode shows the
// persisted rows ordered by index. Fixed mode always shows exactly the
// schema-defined rows: persisted data is looked up by canonical index (not
// array position), extra persisted rows are ignored and missing ones
// render empty.
func RenderRows(
	q formTypes.Question,
	fields []formTypes.TableSchemaField,
	persisted []formTypes.TableRow,
	locale string,
) []RenderedRow {
	keep := make(map[string]bool, len(fields))
	for _, f := range fields {
		keep[f.Key] = true
	}
	project := func(row map[string]interface{}) map[string]interface{} {
		out := map[string]interface{}{}
		for k, v := range row {
			if keep[k] {
				out[k] = v
			}
		}
		return out
	}

	if TableMode(q.Config) == TABLE_MODE_FIXED {
		byIndex := make(map[int]map[string]interface{}, len(persisted))
		for _, r := range persisted {
			byIndex[r.RowIndex] = r.Row
		}
		rows := make([]RenderedRow, 0, len(q.Config.FixedRows))
		for i, def := range q.Config.FixedRows {
			idx := i + 1
			row := map[string]interface{}{}
			if stored, ok := byIndex[idx]; ok {
				row = project(stored)
			}
			rows = append(rows, RenderedRow{
				RowIndex: idx,
				Code:     def.Code,
				Title:    def.Title.ResolveOr(locale, def.Code),
				Subtitle: def.Subtitle.Resolve(locale),
				Row:      row,
			})
		}
		return rows
	}

	sorted := make([]formTypes.TableRow, len(persisted))
	copy(sorted, persisted)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].RowIndex < sorted[j].RowIndex })

	rows := make([]RenderedRow, 0, len(sorted))
	for _, r := range sorted {
		rows = append(rows, RenderedRow{RowIndex: r.RowIndex, Row: project(r.Row)})
	}
	return rows
}
