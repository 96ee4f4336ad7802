package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	formTypes "github.com/fmb1991/broker-forms-vf/pkg/forms/types"
)

func TestWriteAnswersCSV(t *testing.T) {
	cents := int64(500000)
	template := formTypes.FormTemplate{
		Questions: []formTypes.Question{
			{
				Code:  "company_cnpj",
				Type:  formTypes.QUESTION_TYPE_TEXT,
				Label: formTypes.LocalizedText{"pt-BR": "CNPJ"},
			},
			{
				Code:  "revenue",
				Type:  formTypes.QUESTION_TYPE_CURRENCY,
				Label: formTypes.LocalizedText{"pt-BR": "Faturamento anual"},
			},
			{
				Code:  "fleet",
				Type:  formTypes.QUESTION_TYPE_TABLE,
				Label: formTypes.LocalizedText{"pt-BR": "Frota"},
				Config: &formTypes.QuestionConfig{
					TableSchema: []formTypes.TableSchemaField{
						{Key: "plate", Type: formTypes.FIELD_TYPE_TEXT, Label: formTypes.LocalizedText{"pt-BR": "Placa"}},
						{Key: "year", Type: formTypes.FIELD_TYPE_NUMBER, Label: formTypes.LocalizedText{"pt-BR": "Ano"}},
					},
				},
			},
		},
	}
	answers := map[string]interface{}{
		"company_cnpj": "12.345.678/0001-00",
		"revenue":      formTypes.CurrencyAnswer{AmountCents: &cents, Currency: "BRL"},
	}
	tableRows := map[string][]formTypes.TableRow{
		"fleet": {
			{RowIndex: 0, Row: map[string]interface{}{"plate": "ABC1234", "year": float64(2020)}},
		},
	}

	var buf bytes.Buffer
	if err := WriteAnswersCSV(&buf, template, answers, tableRows, formTypes.LANG_PT_BR); err != nil {
		t.Fatalf("WriteAnswersCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("produced csv does not parse: %v", err)
	}

	// header + 2 scalars + 1 row x 2 columns
	if len(records) != 5 {
		t.Fatalf("record count = %d: %v", len(records), records)
	}
	if records[0][0] != "questionCode" {
		t.Errorf("header = %v", records[0])
	}
	if records[1][0] != "company_cnpj" || records[1][6] != "12.345.678/0001-00" {
		t.Errorf("scalar record = %v", records[1])
	}
	if records[2][6] != "BRL 5000.00" {
		t.Errorf("currency record = %v", records[2])
	}
	if records[3][0] != "fleet" || records[3][4] != "0" || records[3][5] != "plate" || records[3][6] != "ABC1234" {
		t.Errorf("table cell record = %v", records[3])
	}
}
