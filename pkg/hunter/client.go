// Package hunter wraps the Hunter.io email-finder API.
package hunter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

// Default base URL for the Hunter v2 API.
const defaultBaseURL = "https://api.hunter.io/v2"

// Client defines the Hunter operations used by enrichment.
type Client interface {
	DomainSearch(ctx context.Context, domain string) (*DomainSearchResult, error)
}

// DomainSearchResult holds the emails found for one domain.
type DomainSearchResult struct {
	Domain string  `json:"domain"`
	Emails []Email `json:"emails"`
}

// Email is one address found by Hunter with its confidence score.
type Email struct {
	Value      string `json:"value"`
	Type       string `json:"type"` // "personal" or "generic"
	Confidence int    `json:"confidence"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
}

// Best returns the highest-confidence email, or "" when none was found.
func (r *DomainSearchResult) Best() string {
	best := ""
	bestConfidence := -1
	for _, e := range r.Emails {
		if e.Confidence > bestConfidence {
			best = e.Value
			bestConfidence = e.Confidence
		}
	}
	return best
}

// APIError is returned when Hunter responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hunter: HTTP %d: %s", e.StatusCode, e.Body)
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

// NewClient creates a new Hunter client.
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

// domainSearchResponse is the wire envelope around the result.
type domainSearchResponse struct {
	Data DomainSearchResult `json:"data"`
}

func (c *httpClient) DomainSearch(ctx context.Context, domain string) (*DomainSearchResult, error) {
	endpoint := fmt.Sprintf("%s/domain-search?domain=%s&api_key=%s",
		c.baseURL, url.QueryEscape(domain), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, eris.Wrap(err, "hunter: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("hunter: domain search %s", domain))
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "hunter: read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	var envelope domainSearchResponse
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, eris.Wrap(err, "hunter: decode response")
	}
	return &envelope.Data, nil
}
