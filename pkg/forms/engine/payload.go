package engine

import (
	"sort"
	"time"

	"github.com/fmb1991/broker-forms-vf/pkg/forms/schema"
	formTypes "github.com/fmb1991/broker-forms-vf/pkg/forms/types"
)

// Payload is the full structure a client loads in one call: form metadata
// plus the ordered question list, each question carrying its current
// answer and, for tables, its current row set.
type Payload struct {
	Form      FormMeta           `json:"form"`
	Questions []RenderedQuestion `json:"questions"`
}

type FormMeta struct {
	ID          string             `json:"id"`
	Status      string             `json:"status"`
	Company     string             `json:"company,omitempty"`
	Contact     *formTypes.Contact `json:"contact,omitempty"`
	Language    string             `json:"language"`
	SubmittedAt *time.Time         `json:"submittedAt,omitempty"`
}

func (m FormMeta) Locked() bool {
	return m.Status == formTypes.FORM_STATUS_SUBMITTED
}

type RenderedQuestion struct {
	Code        string           `json:"code"`
	Type        string           `json:"type"`
	Label       string           `json:"label"`
	Help        string           `json:"help,omitempty"`
	Section     string           `json:"section,omitempty"`
	Required    bool             `json:"required"`
	Unsupported bool             `json:"unsupported,omitempty"`
	Config      *RenderedConfig  `json:"config,omitempty"`
	Options     []RenderedOption `json:"options,omitempty"`
	Answer      interface{}      `json:"answer"`
	TableRows   []RenderedRow    `json:"table_rows,omitempty"`
}

type RenderedOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Order int    `json:"order"`
}

type RenderedConfig struct {
	Currency string `json:"currency,omitempty"`
	Decimals int    `json:"decimals,omitempty"`

	MaxMB   int      `json:"max_mb,omitempty"`
	Allowed []string `json:"allowed,omitempty"`

	TableSchema []RenderedField `json:"table_schema,omitempty"`
	// set when a table question carries no usable column schema, so the
	// client can show an explanation instead of an empty grid
	SchemaMissing bool   `json:"schema_missing,omitempty"`
	Mode          string `json:"mode,omitempty"`
	MaxRows       int    `json:"max_rows,omitempty"`
	CanAddRow     bool   `json:"can_add_row,omitempty"`
}

// RenderedField is a canonical column with its label resolved for the
// requested locale.
type RenderedField struct {
	Key      string                  `json:"key"`
	Type     string                  `json:"type"`
	Label    string                  `json:"label"`
	Required bool                    `json:"required,omitempty"`
	Readonly bool                    `json:"readonly,omitempty"`
	Options  []formTypes.FieldOption `json:"options,omitempty"`
	Min      *float64                `json:"min,omitempty"`
	Max      *float64                `json:"max,omitempty"`
	Step     *float64                `json:"step,omitempty"`
}

// Renderer assembles payloads for a locale. It owns the schema normalizer
// so that canonical column lists are computed once per question per
// template version.
type Renderer struct {
	normalizer *schema.Normalizer
}

func NewRenderer() *Renderer {
	return &Renderer{normalizer: schema.NewNormalizer()}
}

func (r *Renderer) InvalidateTemplate(templateKey string) {
	r.normalizer.InvalidateTemplate(templateKey)
}

// TemplateCacheKey identifies one template version for normalizer
// memoization.
func TemplateCacheKey(t formTypes.FormTemplate) string {
	return t.ID.Hex() + ":" + t.Version
}

// RenderPayload resolves every question of the template for the requested
// locale and attaches the stored answers and table rows. Answers default
// to the type-appropriate empty value; a stored answer that no longer
// parses against the question type degrades to that default as well,
// because operator-edited templates must not break the page.
func (r *Renderer) RenderPayload(
	template formTypes.FormTemplate,
	instance formTypes.FormInstance,
	answers map[string]interface{},
	tableRows map[string][]formTypes.TableRow,
	locale string,
) Payload {
	meta := FormMeta{
		ID:       instance.ID.Hex(),
		Status:   instance.Status,
		Company:  instance.Company,
		Contact:  instance.Contact,
		Language: locale,
	}
	if !instance.SubmittedAt.IsZero() {
		submittedAt := instance.SubmittedAt
		meta.SubmittedAt = &submittedAt
	}

	questions := make([]formTypes.Question, len(template.Questions))
	copy(questions, template.Questions)
	sort.SliceStable(questions, func(i, j int) bool { return questions[i].Order < questions[j].Order })

	templateKey := TemplateCacheKey(template)

	rendered := make([]RenderedQuestion, 0, len(questions))
	for _, q := range questions {
		rq := RenderedQuestion{
			Code:        q.Code,
			Type:        q.Type,
			Label:       q.Label.ResolveOr(locale, q.Code),
			Help:        q.Help.Resolve(locale),
			Section:     q.Section.Resolve(locale),
			Required:    q.Required,
			Unsupported: !formTypes.IsKnownQuestionType(q.Type),
		}

		for _, opt := range q.Options {
			rq.Options = append(rq.Options, RenderedOption{
				Value: opt.Value,
				Label: opt.Label.ResolveOr(locale, opt.Value),
				Order: opt.Order,
			})
		}
		sort.SliceStable(rq.Options, func(i, j int) bool { return rq.Options[i].Order < rq.Options[j].Order })

		if q.Type == formTypes.QUESTION_TYPE_TABLE {
			fields := r.normalizer.Fields(templateKey, q, locale)
			rows := tableRows[q.Code]
			rq.TableRows = RenderRows(q, fields, rows, locale)
			rq.Config = r.renderTableConfig(q, fields, locale, len(rows))
		} else {
			answer, err := CoerceStoredAnswer(q, answers[q.Code])
			if err != nil {
				answer = formTypes.EmptyAnswerValue(q)
			}
			rq.Answer = answer
			rq.Config = renderScalarConfig(q)
		}

		rendered = append(rendered, rq)
	}

	return Payload{Form: meta, Questions: rendered}
}

func (r *Renderer) renderTableConfig(
	q formTypes.Question,
	fields []formTypes.TableSchemaField,
	locale string,
	persistedRowCount int,
) *RenderedConfig {
	cfg := &RenderedConfig{
		Mode:          TableMode(q.Config),
		SchemaMissing: len(fields) == 0,
	}
	if q.Config != nil {
		cfg.MaxRows = q.Config.MaxRows
	}
	cfg.CanAddRow = cfg.Mode == TABLE_MODE_DYNAMIC &&
		(cfg.MaxRows == 0 || persistedRowCount < cfg.MaxRows)

	for _, f := range fields {
		cfg.TableSchema = append(cfg.TableSchema, RenderedField{
			Key:      f.Key,
			Type:     f.Type,
			Label:    f.Label.ResolveOr(locale, f.Key),
			Required: f.Required,
			Readonly: f.Readonly,
			Options:  f.Options,
			Min:      f.Min,
			Max:      f.Max,
			Step:     f.Step,
		})
	}
	return cfg
}

func renderScalarConfig(q formTypes.Question) *RenderedConfig {
	if q.Config == nil {
		return nil
	}
	switch q.Type {
	case formTypes.QUESTION_TYPE_CURRENCY:
		return &RenderedConfig{
			Currency: q.Config.Currency,
			Decimals: formTypes.CurrencyDecimals(q),
		}
	case formTypes.QUESTION_TYPE_ATTACHMENT:
		return &RenderedConfig{
			MaxMB:   q.Config.MaxMB,
			Allowed: q.Config.Allowed,
		}
	}
	return nil
}
