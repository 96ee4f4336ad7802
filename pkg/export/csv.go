package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/fmb1991/broker-forms-vf/pkg/forms/engine"
	"github.com/fmb1991/broker-forms-vf/pkg/forms/schema"
	formTypes "github.com/fmb1991/broker-forms-vf/pkg/forms/types"
)

// WriteAnswersCSV writes one form's answers in long format: one line per
// scalar answer, one line per table cell.
func WriteAnswersCSV(
	writer io.Writer,
	template formTypes.FormTemplate,
	answers map[string]interface{},
	tableRows map[string][]formTypes.TableRow,
	locale string,
) error {
	header := []string{
		"questionCode", "section", "label", "type", "rowIndex", "columnKey", "value",
	}

	w := csv.NewWriter(writer)

	err := w.Write(header)
	if err != nil {
		return err
	}

	for _, q := range template.Questions {
		label := q.Label.ResolveOr(locale, q.Code)
		section := q.Section.Resolve(locale)

		if q.Type == formTypes.QUESTION_TYPE_TABLE {
			fields := schema.Normalize(q.Config, locale)
			decimals := formTypes.CurrencyDecimals(q)
			for _, row := range engine.RenderRows(q, fields, tableRows[q.Code], locale) {
				for _, field := range fields {
					err := w.Write([]string{
						q.Code, section, label, q.Type,
						strconv.Itoa(row.RowIndex), field.Key,
						FormatCell(field, row.Row[field.Key], decimals, locale),
					})
					if err != nil {
						return err
					}
				}
			}
			continue
		}

		err := w.Write([]string{
			q.Code, section, label, q.Type,
			"", "",
			FormatAnswer(q, answers[q.Code], locale),
		})
		if err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
