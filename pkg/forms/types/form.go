package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	FORM_STATUS_DRAFT     = "draft"
	FORM_STATUS_SUBMITTED = "submitted"

	TEMPLATE_STATUS_DRAFT    = "draft"
	TEMPLATE_STATUS_ACTIVE   = "active"
	TEMPLATE_STATUS_ARCHIVED = "archived"
)

// CRM sync outcomes persisted on the form instance.
const (
	CRM_SYNC_STATUS_SUCCESS         = "SUCCESS"
	CRM_SYNC_STATUS_MISSING_DEAL_ID = "MISSING_DEAL_ID"
	CRM_SYNC_STATUS_FAILED_UPDATE   = "FAILED_UPDATE"
)

// FormTemplate is the versioned, operator-authored question set for one
// product/industry combination. Questions are embedded, ordered by their
// Order field.
type FormTemplate struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Slug         string             `bson:"slug" json:"slug"`
	ProductCode  string             `bson:"productCode,omitempty" json:"productCode,omitempty"`
	IndustryCode string             `bson:"industryCode,omitempty" json:"industryCode,omitempty"`
	Version      string             `bson:"version,omitempty" json:"version,omitempty"`
	Status       string             `bson:"status" json:"status"`
	Questions    []Question         `bson:"questions" json:"questions"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

type Contact struct {
	Name  string `bson:"name,omitempty" json:"name,omitempty"`
	Email string `bson:"email,omitempty" json:"email,omitempty"`
	Phone string `bson:"phone,omitempty" json:"phone,omitempty"`
}

// FormInstance is one issued questionnaire for one client.
type FormInstance struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	TemplateID       primitive.ObjectID `bson:"templateID" json:"templateId"`
	Company          string             `bson:"company" json:"company"`
	Contact          *Contact           `bson:"contact,omitempty" json:"contact,omitempty"`
	Language         string             `bson:"language" json:"language"`
	Status           string             `bson:"status" json:"status"`
	SubmittedAt      time.Time          `bson:"submittedAt,omitempty" json:"submittedAt,omitempty"`
	SubmittedByEmail string             `bson:"submittedByEmail,omitempty" json:"submittedByEmail,omitempty"`
	IsTestSubmission bool               `bson:"isTestSubmission,omitempty" json:"isTestSubmission,omitempty"`

	// CRM deal pipeline wiring
	CRMDealID      string `bson:"crmDealID,omitempty" json:"crmDealId,omitempty"`
	CRMSyncStatus  string `bson:"crmSyncStatus,omitempty" json:"crmSyncStatus,omitempty"`
	CRMSyncError   string `bson:"crmSyncError,omitempty" json:"crmSyncError,omitempty"`
	NeedsAttention bool   `bson:"needsAttention,omitempty" json:"needsAttention,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// AccessToken grants time-bounded edit access to one form instance. The
// token string is an opaque bearer credential.
type AccessToken struct {
	Token     string             `bson:"token" json:"token"`
	FormID    primitive.ObjectID `bson:"formID" json:"formId"`
	ExpiresAt time.Time          `bson:"expiresAt,omitempty" json:"expiresAt,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

func (t AccessToken) IsExpired() bool {
	return !t.ExpiresAt.IsZero() && t.ExpiresAt.Before(time.Now())
}

// AnswerDoc is one persisted answer, keyed by (form, question code).
// Value holds the type-specific answer shape.
type AnswerDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	FormID       primitive.ObjectID `bson:"formID" json:"formId"`
	QuestionCode string             `bson:"questionCode" json:"questionCode"`
	Value        interface{}        `bson:"value" json:"value"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// TableRowDoc is one persisted table row, keyed by (form, question code,
// row index). Every cell edit replaces the full row map.
type TableRowDoc struct {
	ID           primitive.ObjectID     `bson:"_id,omitempty" json:"id,omitempty"`
	FormID       primitive.ObjectID     `bson:"formID" json:"formId"`
	QuestionCode string                 `bson:"questionCode" json:"questionCode"`
	RowIndex     int                    `bson:"rowIndex" json:"rowIndex"`
	Row          map[string]interface{} `bson:"row" json:"row"`
	UpdatedAt    time.Time              `bson:"updatedAt" json:"updatedAt"`
}

// FileDoc records one uploaded attachment stored in the filestore.
type FileDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	FormID       primitive.ObjectID `bson:"formID" json:"formId"`
	QuestionCode string             `bson:"questionCode" json:"questionCode"`
	Bucket       string             `bson:"bucket" json:"bucket"`
	ObjectKey    string             `bson:"objectKey" json:"objectKey"`
	Filename     string             `bson:"filename" json:"filename"`
	Size         int64              `bson:"size,omitempty" json:"size,omitempty"`
	ContentType  string             `bson:"contentType,omitempty" json:"contentType,omitempty"`
	UploadedAt   time.Time          `bson:"uploadedAt" json:"uploadedAt"`
}

// CRMSyncLog is one append-only record of a CRM synchronization step.
type CRMSyncLog struct {
	ID        primitive.ObjectID     `bson:"_id,omitempty" json:"id,omitempty"`
	FormID    primitive.ObjectID     `bson:"formID" json:"formId"`
	Action    string                 `bson:"action" json:"action"`
	Details   map[string]interface{} `bson:"details,omitempty" json:"details,omitempty"`
	CreatedAt time.Time              `bson:"createdAt" json:"createdAt"`
}
