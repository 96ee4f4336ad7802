package apihandlers

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fmb1991/broker-forms-vf/pkg/filestore"
	formTypes "github.com/fmb1991/broker-forms-vf/pkg/forms/types"
	"github.com/fmb1991/broker-forms-vf/pkg/utils"
)

func (h *HttpEndpoints) maxUploadBytes(q formTypes.Question) int64 {
	maxMB := h.defaultMaxUploadMB
	if q.Config != nil && q.Config.MaxMB > 0 {
		maxMB = q.Config.MaxMB
	}
	if maxMB < 1 {
		maxMB = 10
	}
	return int64(maxMB) << 20
}

func (h *HttpEndpoints) requestUpload(c *gin.Context) {
	instance, template, ok := h.loadFormContext(c)
	if !ok {
		return
	}

	if instance.Status == formTypes.FORM_STATUS_SUBMITTED {
		c.JSON(http.StatusConflict, gin.H{"error": "form already submitted"})
		return
	}

	var req struct {
		QuestionCode string `json:"questionCode"`
		Filename     string `json:"filename"`
		ContentType  string `json:"contentType"`
		Size         int64  `json:"size"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	q, found := findQuestion(template, req.QuestionCode)
	if !found || q.Type != formTypes.QUESTION_TYPE_ATTACHMENT {
		c.JSON(http.StatusBadRequest, gin.H{"error": "not an attachment question"})
		return
	}

	if req.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filename is required"})
		return
	}

	if req.Size > h.maxUploadBytes(q) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
		return
	}

	if q.Config != nil && len(q.Config.Allowed) > 0 && req.ContentType != "" {
		if !utils.ContainsString(q.Config.Allowed, req.ContentType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file type not allowed"})
			return
		}
	}

	objectKey := filestore.BuildObjectKey(instance.ID.Hex(), req.QuestionCode, req.Filename)
	grant := h.signer.IssueUploadGrant(h.uploadBaseURL, objectKey)

	slog.Info("upload grant issued", slog.String("formID", instance.ID.Hex()), slog.String("questionCode", req.QuestionCode), slog.String("objectKey", objectKey))
	c.JSON(http.StatusOK, grant)
}

// uploadRawFile receives the file bytes against a pre-signed URL. The
// object key alone determines which form and question receives the file;
// the signature proves the grant was issued by us.
func (h *HttpEndpoints) uploadRawFile(c *gin.Context) {
	objectKey := c.Query("key")
	signature := c.Query("signature")
	expires, err := strconv.ParseInt(c.Query("expires"), 10, 64)
	if err != nil || objectKey == "" || signature == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid upload request"})
		return
	}

	if err := h.signer.ValidateUpload(objectKey, expires, signature); err != nil {
		slog.Warn("rejected upload signature", slog.String("objectKey", objectKey), slog.String("error", err.Error()))
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid or expired upload grant"})
		return
	}

	parts := strings.SplitN(objectKey, "/", 3)
	if len(parts) != 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid object key"})
		return
	}
	formID, questionCode, storedName := parts[0], parts[1], parts[2]

	instance, err := h.formsDBConn.GetFormInstanceByID(formID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "form not found"})
		return
	}
	if instance.Status == formTypes.FORM_STATUS_SUBMITTED {
		c.JSON(http.StatusConflict, gin.H{"error": "form already submitted"})
		return
	}

	template, err := h.formsDBConn.GetFormTemplateByID(instance.TemplateID.Hex())
	if err != nil {
		slog.Error("form template not found", slog.String("formID", formID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "form template not found"})
		return
	}
	q, found := findQuestion(template, questionCode)
	if !found || q.Type != formTypes.QUESTION_TYPE_ATTACHMENT {
		c.JSON(http.StatusBadRequest, gin.H{"error": "not an attachment question"})
		return
	}

	limited := http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes(q))
	content, err := io.ReadAll(limited)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
		return
	}

	head := content
	if len(head) > 512 {
		head = head[:512]
	}
	var allowedTypes []string
	if q.Config != nil {
		allowedTypes = q.Config.Allowed
	}
	contentType, err := utils.ValidateFileTypeFromContent(head, allowedTypes)
	if err != nil {
		slog.Warn("rejected upload content", slog.String("objectKey", objectKey), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	size, err := h.store.Save(objectKey, bytes.NewReader(content))
	if err != nil {
		slog.Error("error storing upload", slog.String("objectKey", objectKey), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error storing file"})
		return
	}

	// object keys store the file as "<unixmilli>-<original name>"
	displayName := storedName
	if idx := strings.IndexByte(storedName, '-'); idx > 0 && idx < len(storedName)-1 {
		displayName = storedName[idx+1:]
	}

	if _, err := h.formsDBConn.SaveFileInfo(formTypes.FileDoc{
		FormID:       instance.ID,
		QuestionCode: questionCode,
		Bucket:       filestore.UploadBucket,
		ObjectKey:    objectKey,
		Filename:     displayName,
		Size:         size,
		ContentType:  contentType,
		UploadedAt:   time.Now(),
	}); err != nil {
		slog.Error("error saving file info", slog.String("objectKey", objectKey), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error storing file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"objectKey": objectKey,
		"bucket":    filestore.UploadBucket,
		"size":      size,
	})
}
