package apihandlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fmb1991/broker-forms-vf/pkg/apihelpers"
	mw "github.com/fmb1991/broker-forms-vf/pkg/apihelpers/middlewares"
	"github.com/fmb1991/broker-forms-vf/pkg/forms/engine"
	formTypes "github.com/fmb1991/broker-forms-vf/pkg/forms/types"
	"github.com/fmb1991/broker-forms-vf/pkg/utils"
)

func (h *HttpEndpoints) AddTemplateManagementAPI(rg *gin.RouterGroup) {
	templatesGroup := rg.Group("/form-templates")
	templatesGroup.Use(mw.RequireAdminSession(h.sessionSignKey))
	{
		templatesGroup.GET("", h.getFormTemplates)
		templatesGroup.POST("", mw.RequirePayload(), h.createFormTemplate)
		templatesGroup.GET("/:templateID", h.getFormTemplate)
		templatesGroup.PUT("/:templateID", mw.RequirePayload(), h.updateFormTemplate)
		templatesGroup.DELETE("/:templateID", h.deleteFormTemplate)
	}
}

func validateTemplate(template formTypes.FormTemplate) error {
	if !utils.IsURLSafe(template.Slug) {
		return fmt.Errorf("slug '%s' is empty or not URL safe", template.Slug)
	}

	switch template.Status {
	case formTypes.TEMPLATE_STATUS_DRAFT, formTypes.TEMPLATE_STATUS_ACTIVE, formTypes.TEMPLATE_STATUS_ARCHIVED:
	default:
		return fmt.Errorf("unknown template status '%s'", template.Status)
	}

	seen := map[string]bool{}
	for _, q := range template.Questions {
		if q.Code == "" {
			return fmt.Errorf("question without code")
		}
		if seen[q.Code] {
			return fmt.Errorf("duplicate question code '%s'", q.Code)
		}
		seen[q.Code] = true
	}
	return nil
}

func (h *HttpEndpoints) getFormTemplates(c *gin.Context) {
	query, err := apihelpers.ParsePaginatedQueryFromCtx(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	templates, paginationInfo, err := h.formsDBConn.GetFormTemplates(query.Filter, query.Page, query.Limit)
	if err != nil {
		slog.Error("error listing form templates", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error listing form templates"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"templates":  templates,
		"pagination": paginationInfo,
	})
}

func (h *HttpEndpoints) createFormTemplate(c *gin.Context) {
	var template formTypes.FormTemplate
	if err := c.ShouldBindJSON(&template); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if template.Status == "" {
		template.Status = formTypes.TEMPLATE_STATUS_DRAFT
	}
	if err := validateTemplate(template); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.formsDBConn.CreateFormTemplate(template)
	if err != nil {
		slog.Error("error creating form template", slog.String("slug", template.Slug), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error creating form template"})
		return
	}

	slog.Info("form template created", slog.String("templateID", created.ID.Hex()), slog.String("slug", created.Slug))
	c.JSON(http.StatusCreated, gin.H{"template": created})
}

func (h *HttpEndpoints) getFormTemplate(c *gin.Context) {
	templateID := c.Param("templateID")

	template, err := h.formsDBConn.GetFormTemplateByID(templateID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
			return
		}
		slog.Error("error fetching form template", slog.String("templateID", templateID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error fetching form template"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"template": template})
}

func (h *HttpEndpoints) updateFormTemplate(c *gin.Context) {
	templateID := c.Param("templateID")

	var template formTypes.FormTemplate
	if err := c.ShouldBindJSON(&template); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if template.Status == "" {
		template.Status = formTypes.TEMPLATE_STATUS_DRAFT
	}
	if err := validateTemplate(template); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.formsDBConn.UpdateFormTemplate(templateID, template); err != nil {
		slog.Error("error updating form template", slog.String("templateID", templateID), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// drop cached renderings of the previous revision
	updated, err := h.formsDBConn.GetFormTemplateByID(templateID)
	if err == nil {
		h.renderer.InvalidateTemplate(engine.TemplateCacheKey(updated))
	}

	slog.Info("form template updated", slog.String("templateID", templateID))
	c.JSON(http.StatusOK, gin.H{"template": updated})
}

func (h *HttpEndpoints) deleteFormTemplate(c *gin.Context) {
	templateID := c.Param("templateID")

	if err := h.formsDBConn.DeleteFormTemplate(templateID); err != nil {
		slog.Error("error deleting form template", slog.String("templateID", templateID), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slog.Info("form template deleted", slog.String("templateID", templateID))
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
