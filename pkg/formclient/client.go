package formclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fmb1991/broker-forms-vf/pkg/forms/engine"
	formTypes "github.com/fmb1991/broker-forms-vf/pkg/forms/types"
)

// How long a question's edits are coalesced before the save fires.
const DefaultDebounceInterval = 600 * time.Millisecond

var (
	ErrFormLocked      = errors.New("form is submitted and locked")
	ErrNotLoaded       = errors.New("form not loaded")
	ErrUnknownQuestion = errors.New("unknown question code")
	ErrClientClosed    = errors.New("client is closed")
)

// Client coordinates local form state with the server. Edits apply to the
// local snapshot immediately; remote saves are debounced per question so
// fast typing produces one write, not one per keystroke. Failed saves
// mark the question failed but never roll the local value back: the next
// edit retries.
type Client struct {
	transport Transport
	debounce  time.Duration

	mu       sync.Mutex
	snapshot Snapshot
	loaded   bool
	closed   bool
	timers   map[string]*time.Timer
	pending  map[string]interface{}
	inflight sync.WaitGroup
}

type Option func(*Client)

// WithDebounceInterval overrides the save coalescing window.
func WithDebounceInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.debounce = d
		}
	}
}

func NewClient(transport Transport, opts ...Option) *Client {
	c := &Client{
		transport: transport,
		debounce:  DefaultDebounceInterval,
		timers:    map[string]*time.Timer{},
		pending:   map[string]interface{}{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load fetches the full payload and resets the local state to it.
func (c *Client) Load(ctx context.Context) error {
	payload, err := c.transport.FetchPayload(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	c.snapshot = snapshotFromPayload(payload)
	c.loaded = true
	return nil
}

// Snapshot returns the current immutable view of the form.
func (c *Client) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

// SetAnswer applies a new answer value locally and schedules the
// debounced remote save.
func (c *Client) SetAnswer(code string, value interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editableLocked(code); err != nil {
		return err
	}

	c.snapshot = c.snapshot.withAnswer(code, value).withSaveState(code, SAVE_STATE_PENDING)
	c.pending[code] = value
	c.scheduleSaveLocked(code)
	return nil
}

// SetBooleanChoice sets the yes/no part of a compound boolean answer,
// preserving any details text already entered.
func (c *Client) SetBooleanChoice(code string, value bool) error {
	current := c.booleanAnswer(code)
	current.Value = &value
	return c.SetAnswer(code, current)
}

// SetBooleanDetails sets the free-text part of a compound boolean answer,
// preserving the choice.
func (c *Client) SetBooleanDetails(code string, details string) error {
	current := c.booleanAnswer(code)
	current.Details = details
	return c.SetAnswer(code, current)
}

func (c *Client) booleanAnswer(code string) formTypes.BoolAnswer {
	c.mu.Lock()
	q, ok := c.snapshot.Question(code)
	c.mu.Unlock()
	if !ok {
		return formTypes.BoolAnswer{}
	}

	coerced, err := engine.CoerceStoredAnswer(formTypes.Question{Code: code, Type: formTypes.QUESTION_TYPE_BOOLEAN}, q.Answer)
	if err != nil {
		return formTypes.BoolAnswer{}
	}
	answer, ok := coerced.(formTypes.BoolAnswer)
	if !ok {
		return formTypes.BoolAnswer{}
	}
	return answer
}

// ToggleMultiSelect adds the option to a multi-select answer if absent,
// removes it if present.
func (c *Client) ToggleMultiSelect(code string, option string) error {
	c.mu.Lock()
	q, ok := c.snapshot.Question(code)
	c.mu.Unlock()
	if !ok {
		return ErrUnknownQuestion
	}

	current := multiSelectValues(q.Answer)

	next := make([]string, 0, len(current)+1)
	found := false
	for _, item := range current {
		if item == option {
			found = true
			continue
		}
		next = append(next, item)
	}
	if !found {
		next = append(next, option)
	}
	return c.SetAnswer(code, next)
}

// multiSelectValues reads the selected values out of a multi-select answer
// without validating them against the option list; the snapshot answer came
// from the server and may predate an option being removed from the template.
func multiSelectValues(answer interface{}) []string {
	switch v := answer.(type) {
	case []string:
		return v
	case []interface{}:
		values := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				values = append(values, s)
			}
		}
		return values
	default:
		return nil
	}
}

// EditTableCell applies one cell edit. The full row is re-sent to the
// server immediately; table edits are not debounced because each edit is
// already one discrete action.
func (c *Client) EditTableCell(ctx context.Context, code string, rowIndex int, key string, value interface{}) error {
	c.mu.Lock()
	if err := c.editableLocked(code); err != nil {
		c.mu.Unlock()
		return err
	}
	q, ok := c.snapshot.Question(code)
	if !ok {
		c.mu.Unlock()
		return ErrUnknownQuestion
	}

	var currentRow engine.RenderedRow
	for _, r := range q.TableRows {
		if r.RowIndex == rowIndex {
			currentRow = r
			break
		}
	}
	row := make(map[string]interface{}, len(currentRow.Row)+1)
	for k, v := range currentRow.Row {
		row[k] = v
	}
	row[key] = value

	updated := currentRow
	updated.RowIndex = rowIndex
	updated.Row = row
	c.snapshot = c.snapshot.withTableRow(code, updated).withSaveState(code, SAVE_STATE_PENDING)
	c.mu.Unlock()

	if err := c.transport.SaveTableRow(ctx, code, rowIndex, row); err != nil {
		c.setSaveState(code, SAVE_STATE_FAILED)
		return err
	}
	c.setSaveState(code, SAVE_STATE_SAVED)
	return nil
}

// AddTableRow persists a new empty row and, on success, appends it
// locally. The new row's index is returned.
func (c *Client) AddTableRow(ctx context.Context, code string) (int, error) {
	c.mu.Lock()
	if err := c.editableLocked(code); err != nil {
		c.mu.Unlock()
		return 0, err
	}
	q, ok := c.snapshot.Question(code)
	if !ok {
		c.mu.Unlock()
		return 0, ErrUnknownQuestion
	}

	rows := make([]formTypes.TableRow, 0, len(q.TableRows))
	for _, r := range q.TableRows {
		rows = append(rows, formTypes.TableRow{RowIndex: r.RowIndex, Row: r.Row})
	}
	rowIndex := engine.NextRowIndex(rows)
	c.mu.Unlock()

	if err := c.transport.SaveTableRow(ctx, code, rowIndex, map[string]interface{}{}); err != nil {
		c.setSaveState(code, SAVE_STATE_FAILED)
		return 0, err
	}

	c.mu.Lock()
	c.snapshot = c.snapshot.
		withTableRow(code, engine.RenderedRow{RowIndex: rowIndex, Row: map[string]interface{}{}}).
		withSaveState(code, SAVE_STATE_SAVED)
	c.mu.Unlock()
	return rowIndex, nil
}

// UploadAttachment runs the three-step upload: request a grant, PUT the
// bytes, then save the attachment answer. The first failing step aborts
// the whole flow, leaving the previous answer in place.
func (c *Client) UploadAttachment(ctx context.Context, code string, filename string, contentType string, size int64, src io.Reader) error {
	c.mu.Lock()
	err := c.editableLocked(code)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	grant, err := c.transport.RequestUpload(ctx, code, filename, contentType, size)
	if err != nil {
		return fmt.Errorf("requesting upload grant: %w", err)
	}

	if err := c.transport.UploadRaw(ctx, grant.UploadURL, contentType, src); err != nil {
		return fmt.Errorf("uploading file bytes: %w", err)
	}

	meta := formTypes.AttachmentMeta{
		Bucket:      "form-uploads",
		ObjectKey:   grant.ObjectKey,
		Filename:    filename,
		Size:        size,
		ContentType: contentType,
	}
	if err := c.transport.SaveAnswer(ctx, code, meta); err != nil {
		c.setSaveState(code, SAVE_STATE_FAILED)
		return fmt.Errorf("saving attachment answer: %w", err)
	}

	c.mu.Lock()
	c.snapshot = c.snapshot.withAnswer(code, meta).withSaveState(code, SAVE_STATE_SAVED)
	c.mu.Unlock()
	return nil
}

// Submit flushes every pending save, then asks the server to finalize the
// form. On success the local form switches to its locked state.
func (c *Client) Submit(ctx context.Context, submittedByEmail string) (SubmitResult, error) {
	if err := c.Flush(); err != nil {
		return SubmitResult{}, err
	}

	result, err := c.transport.Submit(ctx, submittedByEmail)
	if err != nil {
		return result, err
	}
	if result.Submitted {
		c.mu.Lock()
		c.snapshot.Form.Status = formTypes.FORM_STATUS_SUBMITTED
		c.mu.Unlock()
	}
	return result, nil
}

// Flush fires every debounced save now and waits for in-flight saves to
// settle.
func (c *Client) Flush() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	codes := make([]string, 0, len(c.pending))
	for code := range c.pending {
		codes = append(codes, code)
	}
	for code, timer := range c.timers {
		timer.Stop()
		delete(c.timers, code)
	}
	c.mu.Unlock()

	for _, code := range codes {
		c.fireSave(code)
	}
	c.inflight.Wait()
	return nil
}

// Close stops all scheduled saves. Every later mutation becomes a no-op
// returning ErrClientClosed; calling Close twice is safe.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for code, timer := range c.timers {
		timer.Stop()
		delete(c.timers, code)
	}
	c.pending = map[string]interface{}{}
}

func (c *Client) editableLocked(code string) error {
	if c.closed {
		return ErrClientClosed
	}
	if !c.loaded {
		return ErrNotLoaded
	}
	if c.snapshot.Form.Locked() {
		return ErrFormLocked
	}
	if _, ok := c.snapshot.Question(code); !ok {
		return ErrUnknownQuestion
	}
	return nil
}

// scheduleSaveLocked resets the question's debounce timer. Caller holds
// the mutex.
func (c *Client) scheduleSaveLocked(code string) {
	if timer, ok := c.timers[code]; ok {
		timer.Stop()
	}
	c.timers[code] = time.AfterFunc(c.debounce, func() {
		c.fireSave(code)
	})
}

// fireSave sends the latest pending value of one question. Edits landing
// while the save is on the wire re-schedule a new save, so the last
// value always wins.
func (c *Client) fireSave(code string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	value, ok := c.pending[code]
	if !ok {
		c.mu.Unlock()
		return
	}
	delete(c.pending, code)
	delete(c.timers, code)
	c.inflight.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.inflight.Done()
		err := c.transport.SaveAnswer(context.Background(), code, value)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed {
			return
		}
		// a newer edit superseded this save; leave its pending state alone
		if _, stillPending := c.pending[code]; stillPending {
			return
		}
		if err != nil {
			c.snapshot = c.snapshot.withSaveState(code, SAVE_STATE_FAILED)
			return
		}
		c.snapshot = c.snapshot.withSaveState(code, SAVE_STATE_SAVED)
	}()
}

func (c *Client) setSaveState(code string, state SaveState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.snapshot = c.snapshot.withSaveState(code, state)
}
