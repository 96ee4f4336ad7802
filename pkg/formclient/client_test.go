package formclient

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fmb1991/broker-forms-vf/pkg/filestore"
	"github.com/fmb1991/broker-forms-vf/pkg/forms/engine"
	formTypes "github.com/fmb1991/broker-forms-vf/pkg/forms/types"
)

type savedAnswer struct {
	code  string
	value interface{}
}

type fakeTransport struct {
	mu sync.Mutex

	payload engine.Payload

	answers   []savedAnswer
	rows      []map[string]interface{}
	rowCalls  []string
	saveErr   error
	rowErr    error
	submitRes SubmitResult
	submitErr error

	uploadGrantErr error
	uploadRawErr   error
	uploadedBytes  string
}

func (f *fakeTransport) FetchPayload(ctx context.Context) (engine.Payload, error) {
	return f.payload, nil
}

func (f *fakeTransport) SaveAnswer(ctx context.Context, code string, value interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.answers = append(f.answers, savedAnswer{code: code, value: value})
	return nil
}

func (f *fakeTransport) SaveTableRow(ctx context.Context, code string, rowIndex int, row map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rowErr != nil {
		return f.rowErr
	}
	f.rowCalls = append(f.rowCalls, code)
	f.rows = append(f.rows, row)
	return nil
}

func (f *fakeTransport) Submit(ctx context.Context, email string) (SubmitResult, error) {
	return f.submitRes, f.submitErr
}

func (f *fakeTransport) RequestUpload(ctx context.Context, code string, filename string, contentType string, size int64) (filestore.UploadGrant, error) {
	if f.uploadGrantErr != nil {
		return filestore.UploadGrant{}, f.uploadGrantErr
	}
	return filestore.UploadGrant{ObjectKey: "f1/" + code + "/1-" + filename, UploadURL: "http://upload"}, nil
}

func (f *fakeTransport) UploadRaw(ctx context.Context, uploadURL string, contentType string, src io.Reader) error {
	if f.uploadRawErr != nil {
		return f.uploadRawErr
	}
	data, _ := io.ReadAll(src)
	f.uploadedBytes = string(data)
	return nil
}

func (f *fakeTransport) savedAnswers() []savedAnswer {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]savedAnswer, len(f.answers))
	copy(out, f.answers)
	return out
}

func testPayload() engine.Payload {
	return engine.Payload{
		Form: engine.FormMeta{ID: "f1", Status: formTypes.FORM_STATUS_DRAFT},
		Questions: []engine.RenderedQuestion{
			{Code: "company_name", Type: formTypes.QUESTION_TYPE_TEXT, Answer: ""},
			{Code: "has_claims", Type: formTypes.QUESTION_TYPE_BOOLEAN, Answer: map[string]interface{}{"value": true, "details": "um sinistro"}},
			{Code: "segments", Type: formTypes.QUESTION_TYPE_MULTI_SELECT, Answer: []interface{}{"cargo"}},
			{Code: "fleet", Type: formTypes.QUESTION_TYPE_TABLE, TableRows: []engine.RenderedRow{
				{RowIndex: 0, Row: map[string]interface{}{"plate": "AAA"}},
			}},
			{Code: "balance_sheet", Type: formTypes.QUESTION_TYPE_ATTACHMENT, Answer: map[string]interface{}{}},
		},
	}
}

func newLoadedClient(t *testing.T, transport *fakeTransport, opts ...Option) *Client {
	t.Helper()
	transport.payload = testPayload()
	c := NewClient(transport, opts...)
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestSetAnswerDebounces(t *testing.T) {
	transport := &fakeTransport{}
	c := newLoadedClient(t, transport, WithDebounceInterval(30*time.Millisecond))

	// three quick edits must collapse into one save of the last value
	for _, v := range []string{"T", "Tr", "Transportes"} {
		if err := c.SetAnswer("company_name", v); err != nil {
			t.Fatalf("SetAnswer: %v", err)
		}
	}

	if q, _ := c.Snapshot().Question("company_name"); q.Answer != "Transportes" {
		t.Error("local value must apply immediately")
	}
	if c.Snapshot().SaveStateOf("company_name") != SAVE_STATE_PENDING {
		t.Error("save state must be pending while the debounce runs")
	}
	if len(transport.savedAnswers()) != 0 {
		t.Error("save fired before the debounce window closed")
	}

	time.Sleep(100 * time.Millisecond)

	saved := transport.savedAnswers()
	if len(saved) != 1 || saved[0].value != "Transportes" {
		t.Errorf("saved = %+v", saved)
	}
	if c.Snapshot().SaveStateOf("company_name") != SAVE_STATE_SAVED {
		t.Error("save state must settle to saved")
	}
}

func TestFailedSaveKeepsLocalValue(t *testing.T) {
	transport := &fakeTransport{saveErr: errors.New("network down")}
	c := newLoadedClient(t, transport, WithDebounceInterval(5*time.Millisecond))

	if err := c.SetAnswer("company_name", "Transportes"); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	snap := c.Snapshot()
	if q, _ := snap.Question("company_name"); q.Answer != "Transportes" {
		t.Error("failed save must not roll back the local value")
	}
	if snap.SaveStateOf("company_name") != SAVE_STATE_FAILED {
		t.Errorf("save state = %s", snap.SaveStateOf("company_name"))
	}
}

func TestBooleanHelpersPreserveCompound(t *testing.T) {
	transport := &fakeTransport{}
	c := newLoadedClient(t, transport, WithDebounceInterval(5*time.Millisecond))

	if err := c.SetBooleanDetails("has_claims", "dois sinistros"); err != nil {
		t.Fatalf("SetBooleanDetails: %v", err)
	}
	q, _ := c.Snapshot().Question("has_claims")
	answer, ok := q.Answer.(formTypes.BoolAnswer)
	if !ok {
		t.Fatalf("answer type %T", q.Answer)
	}
	if answer.Value == nil || !*answer.Value {
		t.Error("details edit must preserve the choice")
	}
	if answer.Details != "dois sinistros" {
		t.Errorf("details = %q", answer.Details)
	}

	if err := c.SetBooleanChoice("has_claims", false); err != nil {
		t.Fatalf("SetBooleanChoice: %v", err)
	}
	q, _ = c.Snapshot().Question("has_claims")
	answer = q.Answer.(formTypes.BoolAnswer)
	if answer.Value == nil || *answer.Value {
		t.Error("choice not applied")
	}
	if answer.Details != "dois sinistros" {
		t.Error("choice edit must preserve the details")
	}
}

func TestToggleMultiSelect(t *testing.T) {
	transport := &fakeTransport{}
	c := newLoadedClient(t, transport, WithDebounceInterval(5*time.Millisecond))

	if err := c.ToggleMultiSelect("segments", "passenger"); err != nil {
		t.Fatalf("ToggleMultiSelect: %v", err)
	}
	q, _ := c.Snapshot().Question("segments")
	if got := q.Answer.([]string); len(got) != 2 || got[0] != "cargo" || got[1] != "passenger" {
		t.Errorf("after add: %v", got)
	}

	if err := c.ToggleMultiSelect("segments", "cargo"); err != nil {
		t.Fatalf("ToggleMultiSelect: %v", err)
	}
	q, _ = c.Snapshot().Question("segments")
	if got := q.Answer.([]string); len(got) != 1 || got[0] != "passenger" {
		t.Errorf("after remove: %v", got)
	}
}

func TestEditTableCellSendsFullRow(t *testing.T) {
	transport := &fakeTransport{}
	c := newLoadedClient(t, transport)

	if err := c.EditTableCell(context.Background(), "fleet", 0, "year", float64(2021)); err != nil {
		t.Fatalf("EditTableCell: %v", err)
	}

	if len(transport.rows) != 1 {
		t.Fatalf("row calls = %d", len(transport.rows))
	}
	sent := transport.rows[0]
	if sent["plate"] != "AAA" || sent["year"] != float64(2021) {
		t.Errorf("full row must be sent, got %v", sent)
	}
	if c.Snapshot().SaveStateOf("fleet") != SAVE_STATE_SAVED {
		t.Error("table edits save immediately")
	}
}

func TestAddTableRowSavesBeforeLocalAppend(t *testing.T) {
	transport := &fakeTransport{rowErr: errors.New("db down")}
	c := newLoadedClient(t, transport)

	if _, err := c.AddTableRow(context.Background(), "fleet"); err == nil {
		t.Fatal("expected error")
	}
	q, _ := c.Snapshot().Question("fleet")
	if len(q.TableRows) != 1 {
		t.Error("failed add must not append locally")
	}

	transport.rowErr = nil
	idx, err := c.AddTableRow(context.Background(), "fleet")
	if err != nil {
		t.Fatalf("AddTableRow: %v", err)
	}
	if idx != 1 {
		t.Errorf("new row index = %d", idx)
	}
	q, _ = c.Snapshot().Question("fleet")
	if len(q.TableRows) != 2 {
		t.Errorf("rows = %+v", q.TableRows)
	}
}

func TestUploadAttachmentAbortsOnFirstFailure(t *testing.T) {
	transport := &fakeTransport{uploadRawErr: errors.New("storage down")}
	c := newLoadedClient(t, transport)

	err := c.UploadAttachment(context.Background(), "balance_sheet", "balanco.pdf", "application/pdf", 5, strings.NewReader("bytes"))
	if err == nil {
		t.Fatal("expected error")
	}
	if len(transport.savedAnswers()) != 0 {
		t.Error("answer must not be saved when the upload failed")
	}

	transport.uploadRawErr = nil
	err = c.UploadAttachment(context.Background(), "balance_sheet", "balanco.pdf", "application/pdf", 5, strings.NewReader("bytes"))
	if err != nil {
		t.Fatalf("UploadAttachment: %v", err)
	}
	if transport.uploadedBytes != "bytes" {
		t.Errorf("uploaded = %q", transport.uploadedBytes)
	}
	saved := transport.savedAnswers()
	if len(saved) != 1 {
		t.Fatalf("saved = %+v", saved)
	}
	meta, ok := saved[0].value.(formTypes.AttachmentMeta)
	if !ok || meta.Filename != "balanco.pdf" || meta.ObjectKey == "" {
		t.Errorf("attachment meta = %+v", saved[0].value)
	}
}

func TestSubmitFlushesPendingSaves(t *testing.T) {
	transport := &fakeTransport{submitRes: SubmitResult{Submitted: true}}
	c := newLoadedClient(t, transport, WithDebounceInterval(time.Hour))

	if err := c.SetAnswer("company_name", "Transportes"); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}

	result, err := c.Submit(context.Background(), "financeiro@transportes.example")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !result.Submitted {
		t.Error("submit result not carried")
	}
	if saved := transport.savedAnswers(); len(saved) != 1 {
		t.Errorf("pending save must flush before submit, saved = %+v", saved)
	}
	if !c.Snapshot().Form.Locked() {
		t.Error("local form must lock after submit")
	}
}

func TestSubmitReportsMissingRequired(t *testing.T) {
	transport := &fakeTransport{submitRes: SubmitResult{Submitted: false, MissingRequired: []string{"company_cnpj", "fleet"}}}
	c := newLoadedClient(t, transport)

	result, err := c.Submit(context.Background(), "")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Submitted {
		t.Error("must not report submitted")
	}
	if len(result.MissingRequired) != 2 || result.MissingRequired[0] != "company_cnpj" {
		t.Errorf("missing = %v", result.MissingRequired)
	}
	if c.Snapshot().Form.Locked() {
		t.Error("rejected submit must not lock the form")
	}
}

func TestLockedFormRejectsEdits(t *testing.T) {
	transport := &fakeTransport{}
	transport.payload = testPayload()
	transport.payload.Form.Status = formTypes.FORM_STATUS_SUBMITTED

	c := NewClient(transport)
	defer c.Close()
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := c.SetAnswer("company_name", "x"); err != ErrFormLocked {
		t.Errorf("SetAnswer on locked form: %v", err)
	}
	if err := c.EditTableCell(context.Background(), "fleet", 0, "plate", "x"); err != ErrFormLocked {
		t.Errorf("EditTableCell on locked form: %v", err)
	}
}

func TestCloseMakesMutationsNoOps(t *testing.T) {
	transport := &fakeTransport{}
	c := newLoadedClient(t, transport, WithDebounceInterval(10*time.Millisecond))

	if err := c.SetAnswer("company_name", "x"); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}
	c.Close()
	c.Close() // second close is safe

	if err := c.SetAnswer("company_name", "y"); err != ErrClientClosed {
		t.Errorf("SetAnswer after close: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	if len(transport.savedAnswers()) != 0 {
		t.Error("scheduled save must not fire after close")
	}
}
