package schema

import (
	"reflect"
	"testing"

	formTypes "github.com/fmb1991/broker-forms-vf/pkg/forms/types"
)

func floatPtr(v float64) *float64 { return &v }

func TestNormalizeLegacyShapePassthrough(t *testing.T) {
	legacy := []formTypes.TableSchemaField{
		{Key: "insurer", Type: "text", Label: formTypes.LocalizedText{"pt-BR": "Seguradora"}, Required: true},
		{Key: "premium", Type: "currency", Min: floatPtr(0)},
	}
	config := &formTypes.QuestionConfig{TableSchema: legacy}

	got := Normalize(config, "pt-BR")
	if !reflect.DeepEqual(got, legacy) {
		t.Errorf("legacy shape must be returned unmodified, got %+v", got)
	}
}

func TestNormalizeNewShape(t *testing.T) {
	config := &formTypes.QuestionConfig{
		Columns: []formTypes.ColumnDef{
			{
				ID:        "coverage",
				Kind:      "single_select",
				Title:     formTypes.LocalizedText{"pt-BR": "Cobertura", "en": "Coverage"},
				Mandatory: true,
				Choices: []formTypes.ColumnChoice{
					{Value: "basic", Label: formTypes.LocalizedText{"pt-BR": "Básica", "en": "Basic"}},
					{Value: float64(2), Label: formTypes.LocalizedText{"en": "Extended"}},
					{Value: true},
				},
			},
			{
				ID:       "limit",
				Kind:     "number",
				Readonly: true,
				Min:      floatPtr(0),
				Max:      floatPtr(100),
				Step:     floatPtr(5),
			},
		},
	}

	got := Normalize(config, "en")
	if len(got) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(got))
	}

	first := got[0]
	if first.Key != "coverage" || first.Type != "single_select" || !first.Required {
		t.Errorf("unexpected first field: %+v", first)
	}
	wantOptions := []formTypes.FieldOption{
		{Value: "basic", Label: "Basic"},
		{Value: "2", Label: "Extended"},
		{Value: "true", Label: "true"},
	}
	if !reflect.DeepEqual(first.Options, wantOptions) {
		t.Errorf("options = %+v, want %+v", first.Options, wantOptions)
	}

	second := got[1]
	if second.Key != "limit" || !second.Readonly {
		t.Errorf("unexpected second field: %+v", second)
	}
	if second.Min == nil || *second.Min != 0 || second.Max == nil || *second.Max != 100 || second.Step == nil || *second.Step != 5 {
		t.Errorf("numeric bounds not carried over: %+v", second)
	}
}

// Equivalent columns encoded in either historical shape must normalize to
// the same canonical list.
func TestNormalizeShapeEquivalence(t *testing.T) {
	canonical := []formTypes.TableSchemaField{
		{
			Key:      "year",
			Type:     "number",
			Label:    formTypes.LocalizedText{"pt-BR": "Ano"},
			Required: true,
			Options:  nil,
		},
	}
	legacyConfig := &formTypes.QuestionConfig{TableSchema: canonical}
	newConfig := &formTypes.QuestionConfig{
		Columns: []formTypes.ColumnDef{
			{ID: "year", Kind: "number", Title: formTypes.LocalizedText{"pt-BR": "Ano"}, Mandatory: true},
		},
	}

	fromLegacy := Normalize(legacyConfig, "pt-BR")
	fromNew := Normalize(newConfig, "pt-BR")
	if !reflect.DeepEqual(fromLegacy, fromNew) {
		t.Errorf("shapes not equivalent:\nlegacy: %+v\nnew:    %+v", fromLegacy, fromNew)
	}
}

func TestNormalizeDegenerateConfigs(t *testing.T) {
	tests := []struct {
		name   string
		config *formTypes.QuestionConfig
	}{
		{name: "nil config", config: nil},
		{name: "empty config", config: &formTypes.QuestionConfig{}},
		{name: "empty lists", config: &formTypes.QuestionConfig{TableSchema: []formTypes.TableSchemaField{}, Columns: []formTypes.ColumnDef{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.config, "pt-BR")
			if got == nil {
				t.Fatal("must return an empty list, not nil")
			}
			if len(got) != 0 {
				t.Errorf("expected empty list, got %+v", got)
			}
		})
	}
}

func TestNormalizerMemoization(t *testing.T) {
	n := NewNormalizer()
	q := formTypes.Question{
		Code: "claims_history",
		Type: formTypes.QUESTION_TYPE_TABLE,
		Config: &formTypes.QuestionConfig{
			Columns: []formTypes.ColumnDef{{ID: "year", Kind: "number"}},
		},
	}

	first := n.Fields("tpl1:v1", q, "pt-BR")
	second := n.Fields("tpl1:v1", q, "pt-BR")
	if &first[0] != &second[0] {
		t.Error("memoized result must be referentially stable across renders")
	}

	otherLocale := n.Fields("tpl1:v1", q, "en")
	if len(otherLocale) != 1 {
		t.Fatalf("unexpected field count for second locale: %d", len(otherLocale))
	}

	n.InvalidateTemplate("tpl1:v1")
	third := n.Fields("tpl1:v1", q, "pt-BR")
	if len(third) != 1 {
		t.Fatalf("unexpected field count after invalidation: %d", len(third))
	}
}
