package engine

import (
	"reflect"
	"testing"

	formTypes "github.com/fmb1991/broker-forms-vf/pkg/forms/types"
)

func TestMissingRequiredCodes(t *testing.T) {
	questions := []formTypes.Question{
		{Code: "company_cnpj", Type: formTypes.QUESTION_TYPE_TEXT, Required: true},
		{Code: "revenue", Type: formTypes.QUESTION_TYPE_CURRENCY, Required: true},
		{Code: "has_claims", Type: formTypes.QUESTION_TYPE_BOOLEAN, Required: true},
		{Code: "notes", Type: formTypes.QUESTION_TYPE_TEXT},
		{Code: "fleet", Type: formTypes.QUESTION_TYPE_TABLE, Required: true, Config: &formTypes.QuestionConfig{
			TableSchema: []formTypes.TableSchemaField{{Key: "plate", Type: formTypes.FIELD_TYPE_TEXT}},
		}},
	}

	yes := true
	cents := int64(15000)

	tests := []struct {
		name      string
		answers   map[string]interface{}
		tableRows map[string][]formTypes.TableRow
		want      []string
	}{
		{
			name:      "nothing answered",
			answers:   map[string]interface{}{},
			tableRows: map[string][]formTypes.TableRow{},
			want:      []string{"company_cnpj", "revenue", "has_claims", "fleet"},
		},
		{
			name: "two of three scalar answered",
			answers: map[string]interface{}{
				"company_cnpj": "12.345.678/0001-00",
				"revenue":      formTypes.CurrencyAnswer{AmountCents: &cents, Currency: "BRL"},
			},
			tableRows: map[string][]formTypes.TableRow{
				"fleet": {{RowIndex: 0, Row: map[string]interface{}{"plate": "ABC1234"}}},
			},
			want: []string{"has_claims"},
		},
		{
			name: "empty values do not count",
			answers: map[string]interface{}{
				"company_cnpj": "",
				"revenue":      formTypes.CurrencyAnswer{Currency: "BRL"},
				"has_claims":   formTypes.BoolAnswer{Details: "orphan detail"},
			},
			tableRows: map[string][]formTypes.TableRow{},
			want:      []string{"company_cnpj", "revenue", "has_claims", "fleet"},
		},
		{
			name: "everything answered",
			answers: map[string]interface{}{
				"company_cnpj": "12.345.678/0001-00",
				"revenue":      formTypes.CurrencyAnswer{AmountCents: &cents, Currency: "BRL"},
				"has_claims":   formTypes.BoolAnswer{Value: &yes},
			},
			tableRows: map[string][]formTypes.TableRow{
				"fleet": {{RowIndex: 0, Row: map[string]interface{}{"plate": "ABC1234"}}},
			},
			want: []string{},
		},
		{
			name: "stored answers from the database are generic maps",
			answers: map[string]interface{}{
				"company_cnpj": "12.345.678/0001-00",
				"revenue":      map[string]interface{}{"amount_cents": float64(9900), "currency": "BRL"},
				"has_claims":   map[string]interface{}{"value": false},
			},
			tableRows: map[string][]formTypes.TableRow{
				"fleet": {{RowIndex: 0, Row: map[string]interface{}{}}},
			},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MissingRequiredCodes(questions, tt.answers, tt.tableRows)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MissingRequiredCodes() = %v, want %v", got, tt.want)
			}
		})
	}
}
