// Package instantly wraps the Instantly.ai API used for cold-email
// outreach.
package instantly

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// Default base URL for the Instantly v2 API.
const defaultBaseURL = "https://api.instantly.ai/api/v2"

// Client defines the Instantly operations used by outreach.
type Client interface {
	AddLead(ctx context.Context, req AddLeadRequest) (*LeadResponse, error)
}

// AddLeadRequest adds one recipient to a campaign. Personalization is
// the generated first-line used by the campaign template.
type AddLeadRequest struct {
	Campaign        string            `json:"campaign"`
	Email           string            `json:"email"`
	FirstName       string            `json:"first_name,omitempty"`
	CompanyName     string            `json:"company_name,omitempty"`
	Personalization string            `json:"personalization,omitempty"`
	CustomVariables map[string]string `json:"custom_variables,omitempty"`
}

// LeadResponse is the created campaign lead.
type LeadResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Campaign string `json:"campaign"`
}

// APIError is returned when Instantly responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("instantly: HTTP %d: %s", e.StatusCode, e.Body)
}

// Option configures the httpClient.
type Option func(*httpClient)

// WithBaseURL overrides the default base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a new Instantly client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) AddLead(ctx context.Context, reqBody AddLeadRequest) (*LeadResponse, error) {
	buf, err := json.Marshal(reqBody)
	if err != nil {
		return nil, eris.Wrap(err, "instantly: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/leads", bytes.NewReader(buf))
	if err != nil {
		return nil, eris.Wrap(err, "instantly: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "instantly: add lead")
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "instantly: read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	var lead LeadResponse
	if err := json.Unmarshal(data, &lead); err != nil {
		return nil, eris.Wrap(err, "instantly: decode response")
	}
	return &lead, nil
}
