package crm

import (
	"log/slog"
	"strings"

	formTypes "github.com/fmb1991/broker-forms-vf/pkg/forms/types"
)

// sync log actions
const (
	SYNC_ACTION_SKIPPED_TEST     = "skipped_test_submission"
	SYNC_ACTION_MISSING_DEAL_ID  = "missing_deal_id"
	SYNC_ACTION_DEAL_STAGE_MOVED = "deal_stage_moved"
	SYNC_ACTION_UPDATE_FAILED    = "deal_update_failed"
)

// SyncStore is the slice of the forms DB the syncer writes to.
type SyncStore interface {
	UpdateFormInstanceCRMSyncState(id string, status string, syncError string, needsAttention bool) error
	AddCRMSyncLog(formID string, action string, details map[string]interface{}) error
}

// DealUpdater is the CRM operation the syncer performs.
type DealUpdater interface {
	UpdateDealStage(dealID string, stage string, pipeline string) error
}

// TestSubmissionConfig decides whether a submission came from a broker
// testing the form rather than a client.
type TestSubmissionConfig struct {
	TestEmailDomain string   `json:"test_email_domain" yaml:"test_email_domain"`
	TestEmails      []string `json:"test_emails" yaml:"test_emails"`
	ForceTestMode   bool     `json:"force_test_mode" yaml:"force_test_mode"`
}

func (c TestSubmissionConfig) IsTestSubmission(email string) bool {
	if c.ForceTestMode {
		return true
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, t := range c.TestEmails {
		if strings.ToLower(strings.TrimSpace(t)) == email {
			return true
		}
	}
	if c.TestEmailDomain != "" && strings.HasSuffix(email, "@"+strings.ToLower(c.TestEmailDomain)) {
		return true
	}
	return false
}

// Syncer moves the linked CRM deal forward when a form is submitted. It
// records every step in the sync log and flags instances that need manual
// attention. It never returns an error to its caller: a broken CRM
// connection must not block a client from submitting.
type Syncer struct {
	store      SyncStore
	client     DealUpdater
	pipeline   string
	dealStage  string
	testConfig TestSubmissionConfig
}

func NewSyncer(store SyncStore, client DealUpdater, pipeline string, dealStage string, testConfig TestSubmissionConfig) *Syncer {
	return &Syncer{
		store:      store,
		client:     client,
		pipeline:   pipeline,
		dealStage:  dealStage,
		testConfig: testConfig,
	}
}

func (s *Syncer) IsTestSubmission(email string) bool {
	return s.testConfig.IsTestSubmission(email)
}

// OnSubmitted runs the CRM side effects of one submission.
func (s *Syncer) OnSubmitted(instance formTypes.FormInstance) {
	formID := instance.ID.Hex()

	if instance.IsTestSubmission {
		s.log(formID, SYNC_ACTION_SKIPPED_TEST, map[string]interface{}{
			"submittedByEmail": instance.SubmittedByEmail,
		})
		return
	}

	if instance.CRMDealID == "" {
		s.log(formID, SYNC_ACTION_MISSING_DEAL_ID, nil)
		s.setSyncState(formID, formTypes.CRM_SYNC_STATUS_MISSING_DEAL_ID, "no CRM deal linked to this form", true)
		return
	}

	err := s.client.UpdateDealStage(instance.CRMDealID, s.dealStage, s.pipeline)
	if err != nil {
		slog.Error("CRM deal update failed",
			slog.String("formID", formID),
			slog.String("dealID", instance.CRMDealID),
			slog.String("error", err.Error()))
		s.log(formID, SYNC_ACTION_UPDATE_FAILED, map[string]interface{}{
			"dealID": instance.CRMDealID,
			"error":  err.Error(),
		})
		s.setSyncState(formID, formTypes.CRM_SYNC_STATUS_FAILED_UPDATE, err.Error(), true)
		return
	}

	s.log(formID, SYNC_ACTION_DEAL_STAGE_MOVED, map[string]interface{}{
		"dealID":    instance.CRMDealID,
		"dealStage": s.dealStage,
		"pipeline":  s.pipeline,
	})
	s.setSyncState(formID, formTypes.CRM_SYNC_STATUS_SUCCESS, "", false)
}

func (s *Syncer) log(formID string, action string, details map[string]interface{}) {
	if err := s.store.AddCRMSyncLog(formID, action, details); err != nil {
		slog.Error("failed to write CRM sync log",
			slog.String("formID", formID),
			slog.String("action", action),
			slog.String("error", err.Error()))
	}
}

func (s *Syncer) setSyncState(formID string, status string, syncError string, needsAttention bool) {
	if err := s.store.UpdateFormInstanceCRMSyncState(formID, status, syncError, needsAttention); err != nil {
		slog.Error("failed to update CRM sync state",
			slog.String("formID", formID),
			slog.String("error", err.Error()))
	}
}
