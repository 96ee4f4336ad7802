package engine

import (
	"testing"
	"time"

	formTypes "github.com/fmb1991/broker-forms-vf/pkg/forms/types"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testTemplate() formTypes.FormTemplate {
	return formTypes.FormTemplate{
		ID:      primitive.NewObjectID(),
		Slug:    "transport-liability",
		Version: "3",
		Status:  formTypes.TEMPLATE_STATUS_ACTIVE,
		Questions: []formTypes.Question{
			{
				Code:  "segment",
				Type:  formTypes.QUESTION_TYPE_SINGLE_SELECT,
				Label: formTypes.LocalizedText{"pt-BR": "Segmento", "en": "Segment"},
				Order: 2,
				Options: []formTypes.Option{
					{Value: "cargo", Label: formTypes.LocalizedText{"en": "Cargo"}, Order: 2},
					{Value: "passenger", Label: formTypes.LocalizedText{"en": "Passenger"}, Order: 1},
				},
			},
			{
				Code:     "company_name",
				Type:     formTypes.QUESTION_TYPE_TEXT,
				Label:    formTypes.LocalizedText{"pt-BR": "Razão social"},
				Required: true,
				Order:    1,
			},
			{
				Code:  "signature_pad",
				Type:  "signature",
				Label: formTypes.LocalizedText{"en": "Signature"},
				Order: 4,
			},
			{
				Code:  "fleet",
				Type:  formTypes.QUESTION_TYPE_TABLE,
				Label: formTypes.LocalizedText{"en": "Fleet"},
				Order: 3,
				Config: &formTypes.QuestionConfig{
					MaxRows: 2,
					TableSchema: []formTypes.TableSchemaField{
						{Key: "plate", Type: formTypes.FIELD_TYPE_TEXT, Label: formTypes.LocalizedText{"en": "Plate"}},
					},
				},
			},
		},
	}
}

func testInstance() formTypes.FormInstance {
	return formTypes.FormInstance{
		ID:       primitive.NewObjectID(),
		Company:  "Transportes Ipiranga Ltda",
		Language: formTypes.LANG_PT_BR,
		Status:   formTypes.FORM_STATUS_DRAFT,
	}
}

func TestRenderPayloadOrderingAndDefaults(t *testing.T) {
	r := NewRenderer()
	p := r.RenderPayload(testTemplate(), testInstance(), nil, nil, formTypes.LANG_EN)

	gotOrder := []string{}
	for _, q := range p.Questions {
		gotOrder = append(gotOrder, q.Code)
	}
	wantOrder := []string{"company_name", "segment", "fleet", "signature_pad"}
	if len(gotOrder) != len(wantOrder) {
		t.Fatalf("question count = %d, want %d", len(gotOrder), len(wantOrder))
	}
	for i := range wantOrder {
		if gotOrder[i] != wantOrder[i] {
			t.Fatalf("question order = %v, want %v", gotOrder, wantOrder)
		}
	}

	for _, q := range p.Questions {
		if q.Type == formTypes.QUESTION_TYPE_TABLE {
			continue
		}
		if q.Type == formTypes.QUESTION_TYPE_NUMBER {
			continue
		}
		if q.Answer == nil && formTypes.IsKnownQuestionType(q.Type) {
			t.Errorf("question %s rendered with nil answer", q.Code)
		}
	}

	// options sorted by their own order field
	segment := p.Questions[1]
	if segment.Options[0].Value != "passenger" || segment.Options[1].Value != "cargo" {
		t.Errorf("options not sorted by order: %+v", segment.Options)
	}
}

func TestRenderPayloadLocaleFallback(t *testing.T) {
	r := NewRenderer()
	p := r.RenderPayload(testTemplate(), testInstance(), nil, nil, formTypes.LANG_EN)

	// company_name only carries a pt-BR label; en resolution falls back
	if p.Questions[0].Label != "Razão social" {
		t.Errorf("label fallback: got %q", p.Questions[0].Label)
	}
	if p.Questions[1].Label != "Segment" {
		t.Errorf("direct label: got %q", p.Questions[1].Label)
	}
}

func TestRenderPayloadUnsupportedType(t *testing.T) {
	r := NewRenderer()
	p := r.RenderPayload(testTemplate(), testInstance(), nil, nil, formTypes.LANG_PT_BR)

	sig := p.Questions[3]
	if sig.Code != "signature_pad" {
		t.Fatalf("expected signature_pad last, got %s", sig.Code)
	}
	if !sig.Unsupported {
		t.Error("unknown question type must be flagged unsupported")
	}
}

func TestRenderPayloadCorruptAnswerDegrades(t *testing.T) {
	r := NewRenderer()
	answers := map[string]interface{}{
		// a list where the text question expects a string: an operator
		// changed the question type after answers were saved
		"company_name": []interface{}{"a", "b"},
	}
	p := r.RenderPayload(testTemplate(), testInstance(), answers, nil, formTypes.LANG_PT_BR)

	if p.Questions[0].Answer != "" {
		t.Errorf("corrupt stored answer must degrade to the empty value, got %v", p.Questions[0].Answer)
	}
}

func TestRenderPayloadTableConfig(t *testing.T) {
	r := NewRenderer()
	tpl := testTemplate()

	rows := map[string][]formTypes.TableRow{
		"fleet": {{RowIndex: 0, Row: map[string]interface{}{"plate": "ABC1234"}}},
	}
	p := r.RenderPayload(tpl, testInstance(), nil, rows, formTypes.LANG_EN)

	fleet := p.Questions[2]
	if fleet.Config == nil {
		t.Fatal("table question rendered without config")
	}
	if fleet.Config.Mode != TABLE_MODE_DYNAMIC {
		t.Errorf("mode = %q", fleet.Config.Mode)
	}
	if !fleet.Config.CanAddRow {
		t.Error("one of two allowed rows used, adding must be possible")
	}
	if len(fleet.TableRows) != 1 || fleet.TableRows[0].Row["plate"] != "ABC1234" {
		t.Errorf("table rows: %+v", fleet.TableRows)
	}

	// at the ceiling the add affordance goes away
	rows["fleet"] = append(rows["fleet"], formTypes.TableRow{RowIndex: 1, Row: map[string]interface{}{"plate": "DEF5678"}})
	p = r.RenderPayload(tpl, testInstance(), nil, rows, formTypes.LANG_EN)
	if p.Questions[2].Config.CanAddRow {
		t.Error("CanAddRow must be false at max_rows")
	}
}

func TestRenderPayloadSchemaMissing(t *testing.T) {
	tpl := testTemplate()
	tpl.Questions = []formTypes.Question{{
		Code:   "broken_table",
		Type:   formTypes.QUESTION_TYPE_TABLE,
		Label:  formTypes.LocalizedText{"en": "Broken"},
		Config: &formTypes.QuestionConfig{},
	}}

	p := NewRenderer().RenderPayload(tpl, testInstance(), nil, nil, formTypes.LANG_EN)
	if !p.Questions[0].Config.SchemaMissing {
		t.Error("table without columns must be marked schema_missing")
	}
}

func TestFormMetaLocked(t *testing.T) {
	inst := testInstance()
	inst.Status = formTypes.FORM_STATUS_SUBMITTED
	inst.SubmittedAt = time.Now()

	p := NewRenderer().RenderPayload(testTemplate(), inst, nil, nil, formTypes.LANG_PT_BR)
	if !p.Form.Locked() {
		t.Error("submitted form must report locked")
	}
	if p.Form.SubmittedAt == nil {
		t.Error("submittedAt missing from metadata")
	}
}
