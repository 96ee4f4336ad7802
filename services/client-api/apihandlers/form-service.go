package apihandlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	mw "github.com/fmb1991/broker-forms-vf/pkg/apihelpers/middlewares"
	"github.com/fmb1991/broker-forms-vf/pkg/forms/engine"
	formTypes "github.com/fmb1991/broker-forms-vf/pkg/forms/types"
	"github.com/fmb1991/broker-forms-vf/pkg/smtpclient"
)

func (h *HttpEndpoints) AddFormsAPI(rg *gin.RouterGroup) {
	formsGroup := rg.Group("/forms")

	// The raw upload endpoint authorizes through its pre-signed URL, not
	// through the questionnaire link token.
	formsGroup.PUT("/uploads/raw", h.uploadRawFile)

	tokenProtected := formsGroup.Group("")
	tokenProtected.Use(mw.GetAndValidateFormToken(h.formsDBConn))
	{
		tokenProtected.GET("/payload", h.getFormPayload)
		tokenProtected.POST("/answers", mw.RequirePayload(), h.saveAnswer)
		tokenProtected.POST("/table-rows", mw.RequirePayload(), h.saveTableRow)
		tokenProtected.POST("/submit", mw.RequirePayload(), h.submitForm)
		tokenProtected.POST("/uploads", mw.RequirePayload(), h.requestUpload)
	}
}

// loadFormContext resolves the form instance granted by the link token
// together with its template. It writes the error response itself; the
// caller just returns on !ok.
func (h *HttpEndpoints) loadFormContext(c *gin.Context) (instance formTypes.FormInstance, template formTypes.FormTemplate, ok bool) {
	formID := c.MustGet("formID").(string)

	instance, err := h.formsDBConn.GetFormInstanceByID(formID)
	if err != nil {
		slog.Error("form instance not found for valid token", slog.String("formID", formID), slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": "form not found"})
		return instance, template, false
	}

	template, err = h.formsDBConn.GetFormTemplateByID(instance.TemplateID.Hex())
	if err != nil {
		slog.Error("form template not found", slog.String("formID", formID), slog.String("templateID", instance.TemplateID.Hex()), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "form template not found"})
		return instance, template, false
	}
	return instance, template, true
}

func findQuestion(template formTypes.FormTemplate, code string) (formTypes.Question, bool) {
	for _, q := range template.Questions {
		if q.Code == code {
			return q, true
		}
	}
	return formTypes.Question{}, false
}

func (h *HttpEndpoints) getFormPayload(c *gin.Context) {
	instance, template, ok := h.loadFormContext(c)
	if !ok {
		return
	}

	locale := c.DefaultQuery("lang", instance.Language)

	answers, err := h.formsDBConn.GetAnswersForForm(instance.ID.Hex())
	if err != nil {
		slog.Error("error loading answers", slog.String("formID", instance.ID.Hex()), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error loading form"})
		return
	}

	tableRows, err := h.formsDBConn.GetTableRowsForForm(instance.ID.Hex())
	if err != nil {
		slog.Error("error loading table rows", slog.String("formID", instance.ID.Hex()), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error loading form"})
		return
	}

	payload := h.renderer.RenderPayload(template, instance, answers, tableRows, locale)
	c.JSON(http.StatusOK, payload)
}

func (h *HttpEndpoints) saveAnswer(c *gin.Context) {
	instance, template, ok := h.loadFormContext(c)
	if !ok {
		return
	}

	if instance.Status == formTypes.FORM_STATUS_SUBMITTED {
		c.JSON(http.StatusConflict, gin.H{"error": "form already submitted"})
		return
	}

	var req struct {
		QuestionCode string          `json:"questionCode"`
		Value        json.RawMessage `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	q, found := findQuestion(template, req.QuestionCode)
	if !found {
		slog.Warn("answer for unknown question", slog.String("formID", instance.ID.Hex()), slog.String("questionCode", req.QuestionCode))
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown question code"})
		return
	}

	value, err := engine.ParseAnswerValue(q, req.Value)
	if err != nil {
		slog.Warn("rejected answer value", slog.String("formID", instance.ID.Hex()), slog.String("questionCode", req.QuestionCode), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.formsDBConn.UpsertAnswer(instance.ID.Hex(), req.QuestionCode, value); err != nil {
		slog.Error("error saving answer", slog.String("formID", instance.ID.Hex()), slog.String("questionCode", req.QuestionCode), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error saving answer"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true})
}

func (h *HttpEndpoints) saveTableRow(c *gin.Context) {
	instance, template, ok := h.loadFormContext(c)
	if !ok {
		return
	}

	if instance.Status == formTypes.FORM_STATUS_SUBMITTED {
		c.JSON(http.StatusConflict, gin.H{"error": "form already submitted"})
		return
	}

	var req struct {
		QuestionCode string                 `json:"questionCode"`
		RowIndex     int                    `json:"rowIndex"`
		Row          map[string]interface{} `json:"row"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	q, found := findQuestion(template, req.QuestionCode)
	if !found {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown question code"})
		return
	}

	existing, err := h.formsDBConn.GetTableRowsForQuestion(instance.ID.Hex(), req.QuestionCode)
	if err != nil {
		slog.Error("error loading table rows", slog.String("formID", instance.ID.Hex()), slog.String("questionCode", req.QuestionCode), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error saving row"})
		return
	}

	fields := h.normalizer.Fields(engine.TemplateCacheKey(template), q, instance.Language)
	sanitized, err := engine.ApplyRowUpsert(q, fields, existing, req.RowIndex, req.Row)
	if err != nil {
		slog.Warn("rejected table row", slog.String("formID", instance.ID.Hex()), slog.String("questionCode", req.QuestionCode), slog.Int("rowIndex", req.RowIndex), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.formsDBConn.UpsertTableRow(instance.ID.Hex(), req.QuestionCode, req.RowIndex, sanitized); err != nil {
		slog.Error("error saving table row", slog.String("formID", instance.ID.Hex()), slog.String("questionCode", req.QuestionCode), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error saving row"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true})
}

func (h *HttpEndpoints) submitForm(c *gin.Context) {
	instance, template, ok := h.loadFormContext(c)
	if !ok {
		return
	}

	var req struct {
		SubmittedByEmail string `json:"submittedByEmail"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.SubmittedByEmail == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "submittedByEmail is required"})
		return
	}

	answers, err := h.formsDBConn.GetAnswersForForm(instance.ID.Hex())
	if err != nil {
		slog.Error("error loading answers", slog.String("formID", instance.ID.Hex()), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error submitting form"})
		return
	}
	tableRows, err := h.formsDBConn.GetTableRowsForForm(instance.ID.Hex())
	if err != nil {
		slog.Error("error loading table rows", slog.String("formID", instance.ID.Hex()), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error submitting form"})
		return
	}

	// Incomplete forms report their gaps through a regular 200 response
	// so the caller can highlight them without an error path.
	missing := engine.MissingRequiredCodes(template.Questions, answers, tableRows)
	if len(missing) > 0 {
		c.JSON(http.StatusOK, gin.H{"submitted": false, "missing_required": missing})
		return
	}

	isTest := h.crmSyncer.IsTestSubmission(req.SubmittedByEmail)

	updated, err := h.formsDBConn.MarkFormInstanceSubmitted(instance.ID.Hex(), req.SubmittedByEmail, isTest)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusConflict, gin.H{"error": "form already submitted"})
			return
		}
		slog.Error("error submitting form", slog.String("formID", instance.ID.Hex()), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error submitting form"})
		return
	}

	slog.Info("form submitted", slog.String("formID", updated.ID.Hex()), slog.String("templateSlug", template.Slug), slog.Bool("isTest", isTest))

	go h.crmSyncer.OnSubmitted(updated)
	go h.sendSubmissionNotification(updated, template.Slug)

	c.JSON(http.StatusOK, gin.H{"submitted": true})
}

func (h *HttpEndpoints) sendSubmissionNotification(instance formTypes.FormInstance, templateSlug string) {
	if h.smtpClients == nil || len(h.notificationTo) < 1 {
		return
	}

	subject, htmlContent, err := smtpclient.BuildSubmissionNotification(instance, templateSlug, h.adminBaseURL)
	if err != nil {
		slog.Error("error building submission notification", slog.String("formID", instance.ID.Hex()), slog.String("error", err.Error()))
		return
	}

	if err := h.smtpClients.SendMail(h.notificationTo, subject, htmlContent, nil); err != nil {
		slog.Error("error sending submission notification", slog.String("formID", instance.ID.Hex()), slog.String("error", err.Error()))
	}
}
