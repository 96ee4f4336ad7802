package crm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const defaultHubSpotRootURL = "https://api.hubapi.com"

// HubSpotClient talks to the HubSpot CRM v3 API with a private app access
// token.
type HubSpotClient struct {
	RootURL     string
	AccessToken string
	Timeout     time.Duration
}

func NewHubSpotClient(accessToken string, timeout time.Duration) *HubSpotClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HubSpotClient{
		RootURL:     defaultHubSpotRootURL,
		AccessToken: accessToken,
		Timeout:     timeout,
	}
}

type dealUpdatePayload struct {
	Properties map[string]string `json:"properties"`
}

// UpdateDealStage moves one deal to the given stage within a pipeline.
func (c *HubSpotClient) UpdateDealStage(dealID string, stage string, pipeline string) error {
	payload := dealUpdatePayload{
		Properties: map[string]string{
			"dealstage": stage,
			"pipeline":  pipeline,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/crm/v3/objects/deals/%s", c.RootURL, dealID)
	req, err := http.NewRequest(http.MethodPatch, url, bytes.NewBuffer(body))
	if err != nil {
		slog.Error("unexpected error in preparing http request", slog.String("error", err.Error()))
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: c.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		slog.Error("unexpected error in http call", slog.String("error", err.Error()))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("hubspot deal update failed with status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
