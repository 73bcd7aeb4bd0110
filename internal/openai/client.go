package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Options configures a Client.
type Options struct {
	APIKey  string
	BaseURL string
	// Timeout bounds the whole provider call. Generations over large
	// prompts or images run for minutes, so the default is minutes, not
	// seconds.
	Timeout      time.Duration
	Organization string
	HTTPClient   *http.Client
}

// Client performs outbound calls against the provider's two endpoints.
// It never retries; retry policy belongs to the job runner.
type Client struct {
	apiKey       string
	baseURL      string
	organization string
	client       *http.Client
}

// NewClient builds a provider client. The API key may be empty here; the
// pipeline rejects keyless requests before any call is attempted.
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Minute
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		apiKey:       strings.TrimSpace(opts.APIKey),
		baseURL:      baseURL,
		organization: strings.TrimSpace(opts.Organization),
		client:       client,
	}
}

// Endpoint returns the URL path serving the given family.
func (c *Client) Endpoint(family APIFamily) string {
	if family == FamilyResponses {
		return c.baseURL + "/responses"
	}
	return c.baseURL + "/chat/completions"
}

// Do posts the request body to the family's endpoint and returns the HTTP
// status with the raw response body. A returned error is transport-level;
// provider errors come back as a non-200 status instead.
func (c *Client) Do(ctx context.Context, family APIFamily, body any) (int, []byte, error) {
	if c.apiKey == "" {
		return 0, nil, errors.New("openai api key is required")
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(family), &buf)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.organization != "" {
		httpReq.Header.Set("OpenAI-Organization", c.organization)
	}
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return 0, nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, raw, nil
}
