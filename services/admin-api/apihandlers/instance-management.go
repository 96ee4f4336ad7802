package apihandlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fmb1991/broker-forms-vf/pkg/apihelpers"
	mw "github.com/fmb1991/broker-forms-vf/pkg/apihelpers/middlewares"
	formTypes "github.com/fmb1991/broker-forms-vf/pkg/forms/types"
)

func (h *HttpEndpoints) AddInstanceManagementAPI(rg *gin.RouterGroup) {
	instancesGroup := rg.Group("/form-instances")
	instancesGroup.Use(mw.RequireAdminSession(h.sessionSignKey))
	{
		instancesGroup.GET("", h.getFormInstances)
		instancesGroup.POST("", mw.RequirePayload(), h.createFormInstance)
		instancesGroup.GET("/:formID", h.getFormInstance)
		instancesGroup.DELETE("/:formID", h.deleteFormInstance)

		instancesGroup.GET("/:formID/payload", h.previewFormPayload)

		instancesGroup.GET("/:formID/access-tokens", h.getAccessTokens)
		instancesGroup.POST("/:formID/access-tokens", mw.RequirePayload(), h.createAccessToken)
		instancesGroup.DELETE("/:formID/access-tokens/:token", h.deleteAccessToken)

		instancesGroup.PUT("/:formID/crm-deal", mw.RequirePayload(), h.linkCRMDeal)
		instancesGroup.GET("/:formID/sync-logs", h.getCRMSyncLogs)

		instancesGroup.GET("/:formID/exports/pdf", h.exportFormPDF)
		instancesGroup.GET("/:formID/exports/csv", h.exportFormCSV)
		instancesGroup.GET("/:formID/exports/attachments", h.exportFormAttachments)
	}
}

func (h *HttpEndpoints) getFormInstances(c *gin.Context) {
	query, err := apihelpers.ParsePaginatedQueryFromCtx(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	instances, paginationInfo, err := h.formsDBConn.GetFormInstances(query.Filter, query.Page, query.Limit)
	if err != nil {
		slog.Error("error listing form instances", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error listing form instances"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"instances":  instances,
		"pagination": paginationInfo,
	})
}

// createFormInstance issues a new questionnaire for one client and
// returns it together with a first link token, ready to send out. The
// template can be addressed by id or, for the common case, by the slug of
// its newest published revision.
func (h *HttpEndpoints) createFormInstance(c *gin.Context) {
	var req struct {
		TemplateID    string             `json:"templateId"`
		TemplateSlug  string             `json:"templateSlug"`
		Company       string             `json:"company"`
		Contact       *formTypes.Contact `json:"contact"`
		Language      string             `json:"language"`
		CRMDealID     string             `json:"crmDealId"`
		ExpiresInDays int                `json:"expiresInDays"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Company == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "company is required"})
		return
	}
	if req.CRMDealID != "" && !isDigitsOnly(req.CRMDealID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dealId must contain digits only"})
		return
	}

	var template formTypes.FormTemplate
	var err error
	if req.TemplateID != "" {
		template, err = h.formsDBConn.GetFormTemplateByID(req.TemplateID)
	} else {
		template, err = h.formsDBConn.GetActiveFormTemplateBySlug(req.TemplateSlug)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "template not found"})
		return
	}

	language := req.Language
	if language == "" {
		language = formTypes.DefaultLanguage
	}

	created, err := h.formsDBConn.CreateFormInstance(formTypes.FormInstance{
		TemplateID: template.ID,
		Company:    req.Company,
		Contact:    req.Contact,
		Language:   language,
		CRMDealID:  req.CRMDealID,
	})
	if err != nil {
		slog.Error("error creating form instance", slog.String("templateSlug", template.Slug), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error creating form instance"})
		return
	}

	token := formTypes.AccessToken{
		Token:  uuid.NewString(),
		FormID: created.ID,
	}
	if req.ExpiresInDays > 0 {
		token.ExpiresAt = time.Now().AddDate(0, 0, req.ExpiresInDays)
	}
	if err := h.formsDBConn.CreateAccessToken(token); err != nil {
		slog.Error("error creating access token", slog.String("formID", created.ID.Hex()), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error creating access token"})
		return
	}

	slog.Info("form instance created", slog.String("formID", created.ID.Hex()), slog.String("templateSlug", template.Slug), slog.String("company", created.Company))
	c.JSON(http.StatusCreated, gin.H{
		"instance": created,
		"token":    token.Token,
		"link":     h.formLink(token.Token, created.Language),
	})
}

func (h *HttpEndpoints) formLink(token string, language string) string {
	return fmt.Sprintf("%s?token=%s&lang=%s", h.publicFormBaseURL, token, language)
}

func isDigitsOnly(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return value != ""
}

func (h *HttpEndpoints) getFormInstance(c *gin.Context) {
	formID := c.Param("formID")

	instance, err := h.formsDBConn.GetFormInstanceByID(formID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "form instance not found"})
			return
		}
		slog.Error("error fetching form instance", slog.String("formID", formID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error fetching form instance"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"instance": instance})
}

// deleteFormInstance removes the questionnaire together with everything
// it accumulated: answers, table rows, access tokens and attachment
// records. Stored attachment files stay in the filestore for manual
// cleanup.
func (h *HttpEndpoints) deleteFormInstance(c *gin.Context) {
	formID := c.Param("formID")

	if err := h.formsDBConn.DeleteFormInstance(formID); err != nil {
		slog.Error("error deleting form instance", slog.String("formID", formID), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.formsDBConn.DeleteAnswersForForm(formID); err != nil {
		slog.Error("error deleting answers of form", slog.String("formID", formID), slog.String("error", err.Error()))
	}
	if _, err := h.formsDBConn.DeleteTableRowsForForm(formID); err != nil {
		slog.Error("error deleting table rows of form", slog.String("formID", formID), slog.String("error", err.Error()))
	}
	if _, err := h.formsDBConn.DeleteAccessTokensForForm(formID); err != nil {
		slog.Error("error deleting access tokens of form", slog.String("formID", formID), slog.String("error", err.Error()))
	}
	if _, err := h.formsDBConn.DeleteFileInfosForForm(formID); err != nil {
		slog.Error("error deleting file infos of form", slog.String("formID", formID), slog.String("error", err.Error()))
	}

	slog.Info("form instance deleted", slog.String("formID", formID))
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// previewFormPayload renders the questionnaire the way the client API
// serves it, so operators can review a form without a link token.
func (h *HttpEndpoints) previewFormPayload(c *gin.Context) {
	formID := c.Param("formID")

	instance, err := h.formsDBConn.GetFormInstanceByID(formID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "form instance not found"})
		return
	}
	template, err := h.formsDBConn.GetFormTemplateByID(instance.TemplateID.Hex())
	if err != nil {
		slog.Error("form template not found", slog.String("formID", formID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "form template not found"})
		return
	}

	answers, err := h.formsDBConn.GetAnswersForForm(formID)
	if err != nil {
		slog.Error("error loading answers", slog.String("formID", formID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error loading form"})
		return
	}
	tableRows, err := h.formsDBConn.GetTableRowsForForm(formID)
	if err != nil {
		slog.Error("error loading table rows", slog.String("formID", formID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error loading form"})
		return
	}

	locale := c.DefaultQuery("lang", instance.Language)
	c.JSON(http.StatusOK, h.renderer.RenderPayload(template, instance, answers, tableRows, locale))
}

func (h *HttpEndpoints) getAccessTokens(c *gin.Context) {
	formID := c.Param("formID")

	tokens, err := h.formsDBConn.GetAccessTokensForForm(formID)
	if err != nil {
		slog.Error("error listing access tokens", slog.String("formID", formID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error listing access tokens"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}

// createAccessToken issues a new questionnaire link for the form. A zero
// expiresInDays keeps the link valid until it is deleted.
func (h *HttpEndpoints) createAccessToken(c *gin.Context) {
	formID := c.Param("formID")

	var req struct {
		ExpiresInDays int `json:"expiresInDays"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	instance, err := h.formsDBConn.GetFormInstanceByID(formID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "form instance not found"})
		return
	}

	token := formTypes.AccessToken{
		Token:  uuid.NewString(),
		FormID: instance.ID,
	}
	if req.ExpiresInDays > 0 {
		token.ExpiresAt = time.Now().AddDate(0, 0, req.ExpiresInDays)
	}

	if err := h.formsDBConn.CreateAccessToken(token); err != nil {
		slog.Error("error creating access token", slog.String("formID", formID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error creating access token"})
		return
	}

	slog.Info("access token issued", slog.String("formID", formID))
	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"link":  h.formLink(token.Token, instance.Language),
	})
}

func (h *HttpEndpoints) deleteAccessToken(c *gin.Context) {
	token := c.Param("token")

	if err := h.formsDBConn.DeleteAccessToken(token); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *HttpEndpoints) linkCRMDeal(c *gin.Context) {
	formID := c.Param("formID")

	var req struct {
		DealID string `json:"dealId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !isDigitsOnly(req.DealID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dealId must contain digits only"})
		return
	}

	if err := h.formsDBConn.UpdateFormInstanceCRMDealID(formID, req.DealID); err != nil {
		slog.Error("error linking CRM deal", slog.String("formID", formID), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slog.Info("CRM deal linked", slog.String("formID", formID), slog.String("dealID", req.DealID))
	c.JSON(http.StatusOK, gin.H{"linked": true})
}

func (h *HttpEndpoints) getCRMSyncLogs(c *gin.Context) {
	formID := c.Param("formID")

	query, err := apihelpers.ParsePaginatedQueryFromCtx(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logs, paginationInfo, err := h.formsDBConn.GetCRMSyncLogsForForm(formID, query.Page, query.Limit)
	if err != nil {
		slog.Error("error listing CRM sync logs", slog.String("formID", formID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error listing sync logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":       logs,
		"pagination": paginationInfo,
	})
}
