package apihandlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fmb1991/broker-forms-vf/pkg/export"
	formTypes "github.com/fmb1991/broker-forms-vf/pkg/forms/types"
)

// loadExportContext gathers everything the export writers need. It writes
// the error response itself; the caller just returns on !ok.
func (h *HttpEndpoints) loadExportContext(c *gin.Context) (
	instance formTypes.FormInstance,
	template formTypes.FormTemplate,
	answers map[string]interface{},
	tableRows map[string][]formTypes.TableRow,
	files []formTypes.FileDoc,
	ok bool,
) {
	formID := c.Param("formID")

	instance, err := h.formsDBConn.GetFormInstanceByID(formID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "form instance not found"})
		return instance, template, answers, tableRows, files, false
	}

	template, err = h.formsDBConn.GetFormTemplateByID(instance.TemplateID.Hex())
	if err != nil {
		slog.Error("form template not found", slog.String("formID", formID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "form template not found"})
		return instance, template, answers, tableRows, files, false
	}

	answers, err = h.formsDBConn.GetAnswersForForm(formID)
	if err != nil {
		slog.Error("error loading answers", slog.String("formID", formID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error preparing export"})
		return instance, template, answers, tableRows, files, false
	}

	tableRows, err = h.formsDBConn.GetTableRowsForForm(formID)
	if err != nil {
		slog.Error("error loading table rows", slog.String("formID", formID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error preparing export"})
		return instance, template, answers, tableRows, files, false
	}

	files, err = h.formsDBConn.GetFileInfosForForm(formID)
	if err != nil {
		slog.Error("error loading file infos", slog.String("formID", formID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error preparing export"})
		return instance, template, answers, tableRows, files, false
	}

	return instance, template, answers, tableRows, files, true
}

func exportLocale(c *gin.Context, instance formTypes.FormInstance) string {
	return c.DefaultQuery("lang", instance.Language)
}

func (h *HttpEndpoints) exportFormPDF(c *gin.Context) {
	instance, template, answers, tableRows, files, ok := h.loadExportContext(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-%s.pdf"`, template.Slug, instance.ID.Hex()))

	err := export.WriteSubmissionPDF(c.Writer, template, instance, answers, tableRows, files, exportLocale(c, instance), h.pdfOptions)
	if err != nil {
		slog.Error("error writing PDF export", slog.String("formID", instance.ID.Hex()), slog.String("error", err.Error()))
	}
}

func (h *HttpEndpoints) exportFormCSV(c *gin.Context) {
	instance, template, answers, tableRows, _, ok := h.loadExportContext(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-%s.csv"`, template.Slug, instance.ID.Hex()))

	err := export.WriteAnswersCSV(c.Writer, template, answers, tableRows, exportLocale(c, instance))
	if err != nil {
		slog.Error("error writing CSV export", slog.String("formID", instance.ID.Hex()), slog.String("error", err.Error()))
	}
}

func (h *HttpEndpoints) exportFormAttachments(c *gin.Context) {
	instance, template, _, _, files, ok := h.loadExportContext(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-%s-attachments.zip"`, template.Slug, instance.ID.Hex()))

	err := export.WriteAttachmentsZip(c.Writer, files, h.store)
	if err != nil {
		slog.Error("error writing attachments export", slog.String("formID", instance.ID.Hex()), slog.String("error", err.Error()))
	}
}
