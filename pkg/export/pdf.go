package export

import (
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/fmb1991/broker-forms-vf/pkg/forms/engine"
	"github.com/fmb1991/broker-forms-vf/pkg/forms/schema"
	formTypes "github.com/fmb1991/broker-forms-vf/pkg/forms/types"
)

// PDFOptions carries the brokerage branding printed on every export.
type PDFOptions struct {
	BrokerName  string
	BrokerEmail string
	BrokerPhone string
	LogoPath    string
}

type pdfWriter struct {
	pdf  *fpdf.Fpdf
	opts PDFOptions
}

// WriteSubmissionPDF renders one form instance with all its answers as a
// printable document.
func WriteSubmissionPDF(
	writer io.Writer,
	template formTypes.FormTemplate,
	instance formTypes.FormInstance,
	answers map[string]interface{},
	tableRows map[string][]formTypes.TableRow,
	files []formTypes.FileDoc,
	locale string,
	opts PDFOptions,
) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pw := &pdfWriter{pdf: pdf, opts: opts}
	pw.header(instance, locale)

	currentSection := ""
	for _, q := range template.Questions {
		section := q.Section.Resolve(locale)
		if section != "" && section != currentSection {
			currentSection = section
			pw.sectionTitle(section)
		}

		label := q.Label.ResolveOr(locale, q.Code)
		if q.Type == formTypes.QUESTION_TYPE_TABLE {
			fields := schema.Normalize(q.Config, locale)
			rows := engine.RenderRows(q, fields, tableRows[q.Code], locale)
			pw.tableQuestion(label, fields, rows, formTypes.CurrencyDecimals(q), locale)
			continue
		}
		pw.scalarQuestion(label, FormatAnswer(q, answers[q.Code], locale))
	}

	pw.attachments(files, locale)

	return pdf.Output(writer)
}

func (pw *pdfWriter) header(instance formTypes.FormInstance, locale string) {
	pdf := pw.pdf

	if pw.opts.LogoPath != "" {
		pdf.ImageOptions(pw.opts.LogoPath, 10, 8, 35, 0, false, fpdf.ImageOptions{}, 0, "")
		pdf.SetY(26)
	}

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, pdfText(instance.Company), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	if pw.opts.BrokerName != "" {
		pdf.CellFormat(0, 5, pdfText(pw.opts.BrokerName+"  ·  "+pw.opts.BrokerEmail+"  ·  "+pw.opts.BrokerPhone), "", 1, "L", false, 0, "")
	}
	if instance.Contact != nil {
		pdf.CellFormat(0, 5, pdfText(contactLine(instance.Contact)), "", 1, "L", false, 0, "")
	}
	if !instance.SubmittedAt.IsZero() {
		pdf.CellFormat(0, 5, pdfText(instance.SubmittedAt.Format("02/01/2006 15:04")), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func contactLine(c *formTypes.Contact) string {
	line := c.Name
	if c.Email != "" {
		line += "  ·  " + c.Email
	}
	if c.Phone != "" {
		line += "  ·  " + c.Phone
	}
	return line
}

func (pw *pdfWriter) sectionTitle(title string) {
	pdf := pw.pdf
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(0, 8, pdfText(title), "", 1, "L", true, 0, "")
	pdf.Ln(1)
}

func (pw *pdfWriter) scalarQuestion(label string, answer string) {
	pdf := pw.pdf
	pdf.SetFont("Helvetica", "B", 10)
	pdf.MultiCell(0, 5, pdfText(label), "", "L", false)
	pdf.SetFont("Helvetica", "", 10)
	if answer == "" {
		answer = "—"
	}
	pdf.MultiCell(0, 5, pdfText(answer), "", "L", false)
	pdf.Ln(2)
}

func (pw *pdfWriter) tableQuestion(label string, fields []formTypes.TableSchemaField, rows []engine.RenderedRow, decimals int, locale string) {
	pdf := pw.pdf
	pdf.SetFont("Helvetica", "B", 10)
	pdf.MultiCell(0, 5, pdfText(label), "", "L", false)

	if len(fields) == 0 || len(rows) == 0 {
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, pdfText("—"), "", "L", false)
		pdf.Ln(2)
		return
	}

	hasRowTitles := rows[0].Title != ""
	cols := len(fields)
	if hasRowTitles {
		cols++
	}
	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colWidth := (pageWidth - left - right) / float64(cols)

	pdf.SetFont("Helvetica", "B", 8)
	if hasRowTitles {
		pdf.CellFormat(colWidth, 6, "", "1", 0, "L", false, 0, "")
	}
	for _, f := range fields {
		pdf.CellFormat(colWidth, 6, pdfText(f.Label.ResolveOr(locale, f.Key)), "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, row := range rows {
		if hasRowTitles {
			pdf.CellFormat(colWidth, 6, pdfText(row.Title), "1", 0, "L", false, 0, "")
		}
		for _, f := range fields {
			pdf.CellFormat(colWidth, 6, pdfText(FormatCell(f, row.Row[f.Key], decimals, locale)), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(2)
}

func (pw *pdfWriter) attachments(files []formTypes.FileDoc, locale string) {
	if len(files) == 0 {
		return
	}
	titles := map[string]string{
		formTypes.LANG_PT_BR:  "Anexos",
		formTypes.LANG_EN:     "Attachments",
		formTypes.LANG_ES_419: "Adjuntos",
	}
	title, ok := titles[locale]
	if !ok {
		title = titles[formTypes.DefaultLanguage]
	}
	pw.sectionTitle(title)

	pdf := pw.pdf
	pdf.SetFont("Helvetica", "", 10)
	for _, f := range files {
		pdf.MultiCell(0, 5, pdfText("• "+f.Filename+" ("+f.QuestionCode+")"), "", "L", false)
	}
}

// pdfText converts UTF-8 strings to the code page the core fonts expect.
var pdfText = func() func(string) string {
	translator := fpdf.New("P", "mm", "A4", "").UnicodeTranslatorFromDescriptor("")
	return translator
}()
