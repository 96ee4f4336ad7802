package formclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fmb1991/broker-forms-vf/pkg/filestore"
	"github.com/fmb1991/broker-forms-vf/pkg/forms/engine"
)

// HTTPTransport talks to the client API using the questionnaire link
// token as bearer credential.
type HTTPTransport struct {
	RootURL string
	Token   string
	Timeout time.Duration
}

func NewHTTPTransport(rootURL string, token string, timeout time.Duration) *HTTPTransport {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPTransport{
		RootURL: rootURL,
		Token:   token,
		Timeout: timeout,
	}
}

func (t *HTTPTransport) FetchPayload(ctx context.Context) (engine.Payload, error) {
	var payload engine.Payload
	err := t.call(ctx, http.MethodGet, "/v1/forms/payload", nil, &payload)
	return payload, err
}

func (t *HTTPTransport) SaveAnswer(ctx context.Context, questionCode string, value interface{}) error {
	body := map[string]interface{}{
		"questionCode": questionCode,
		"value":        value,
	}
	return t.call(ctx, http.MethodPost, "/v1/forms/answers", body, nil)
}

func (t *HTTPTransport) SaveTableRow(ctx context.Context, questionCode string, rowIndex int, row map[string]interface{}) error {
	body := map[string]interface{}{
		"questionCode": questionCode,
		"rowIndex":     rowIndex,
		"row":          row,
	}
	return t.call(ctx, http.MethodPost, "/v1/forms/table-rows", body, nil)
}

func (t *HTTPTransport) Submit(ctx context.Context, submittedByEmail string) (SubmitResult, error) {
	body := map[string]interface{}{
		"submittedByEmail": submittedByEmail,
	}
	var result SubmitResult
	err := t.call(ctx, http.MethodPost, "/v1/forms/submit", body, &result)
	return result, err
}

func (t *HTTPTransport) RequestUpload(ctx context.Context, questionCode string, filename string, contentType string, size int64) (filestore.UploadGrant, error) {
	body := map[string]interface{}{
		"questionCode": questionCode,
		"filename":     filename,
		"contentType":  contentType,
		"size":         size,
	}
	var grant filestore.UploadGrant
	err := t.call(ctx, http.MethodPost, "/v1/forms/uploads", body, &grant)
	return grant, err
}

// UploadRaw PUTs the file bytes against a pre-signed URL. The URL already
// carries its own authorization, so no token is attached.
func (t *HTTPTransport) UploadRaw(ctx context.Context, uploadURL string, contentType string, src io.Reader) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, src)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	client := &http.Client{Timeout: t.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpError(resp)
	}
	return nil
}

func (t *HTTPTransport) call(ctx context.Context, method string, pathname string, payload interface{}, target interface{}) error {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.RootURL+pathname, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+t.Token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: t.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpError(resp)
	}
	if target == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(target)
}

func httpError(resp *http.Response) error {
	var errBody struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 2048)).Decode(&errBody); err == nil && errBody.Error != "" {
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, errBody.Error)
	}
	return fmt.Errorf("request failed with status %d", resp.StatusCode)
}
