package formclient

import (
	"context"
	"io"

	"github.com/fmb1991/broker-forms-vf/pkg/filestore"
	"github.com/fmb1991/broker-forms-vf/pkg/forms/engine"
)

// SaveState tracks the remote persistence status of one question.
type SaveState string

const (
	SAVE_STATE_PENDING SaveState = "pending"
	SAVE_STATE_SAVED   SaveState = "saved"
	SAVE_STATE_FAILED  SaveState = "failed"
)

// SubmitResult carries the outcome of a submit attempt. MissingRequired
// holds the question codes the server rejected the submission for,
// verbatim.
type SubmitResult struct {
	Submitted       bool     `json:"submitted"`
	MissingRequired []string `json:"missing_required,omitempty"`
}

// Transport is the server round-trip surface of the coordinator. The
// HTTP implementation lives in this package; tests substitute fakes.
type Transport interface {
	FetchPayload(ctx context.Context) (engine.Payload, error)
	SaveAnswer(ctx context.Context, questionCode string, value interface{}) error
	SaveTableRow(ctx context.Context, questionCode string, rowIndex int, row map[string]interface{}) error
	Submit(ctx context.Context, submittedByEmail string) (SubmitResult, error)
	RequestUpload(ctx context.Context, questionCode string, filename string, contentType string, size int64) (filestore.UploadGrant, error)
	UploadRaw(ctx context.Context, uploadURL string, contentType string, src io.Reader) error
}
