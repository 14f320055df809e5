package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// leadDeskTimeFormat is the timestamp layout used by the LeadDesk API
const leadDeskTimeFormat = "2006-01-02 15:04:05"

// CallDetail is the dialer's call record as returned by the LeadDesk API
type CallDetail struct {
	ID            string `json:"id"`
	AgentID       string `json:"agent_id"`
	AgentUsername string `json:"agent_username"`
	AgentGroupID  string `json:"agent_group_id"`
	Number        string `json:"number"`
	TalkTime      string `json:"talk_time"`
	TalkStart     string `json:"talk_start"`
	TalkEnd       string `json:"talk_end"`
	OrderIDs      []int  `json:"order_ids"`
}

// Dialer fetches full call details from the external dialer platform
type Dialer interface {
	GetCall(ctx context.Context, callRefID string) (*CallDetail, error)
}

// LeadDeskClient is the HTTP client for the LeadDesk call API
type LeadDeskClient struct {
	baseURL   string
	authToken string
	client    *http.Client
}

// NewLeadDeskClient creates a LeadDesk API client
func NewLeadDeskClient(baseURL, authToken string, timeout time.Duration) *LeadDeskClient {
	return &LeadDeskClient{
		baseURL:   baseURL,
		authToken: authToken,
		client:    &http.Client{Timeout: timeout},
	}
}

// GetCall fetches one call by its LeadDesk reference id
func (c *LeadDeskClient) GetCall(ctx context.Context, callRefID string) (*CallDetail, error) {
	params := url.Values{}
	params.Set("auth", c.authToken)
	params.Set("mod", "call")
	params.Set("cmd", "get")
	params.Set("call_ref_id", callRefID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build LeadDesk request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("LeadDesk request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("LeadDesk returned status %d", resp.StatusCode)
	}

	var detail CallDetail
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		return nil, fmt.Errorf("failed to decode LeadDesk response: %w", err)
	}
	return &detail, nil
}
