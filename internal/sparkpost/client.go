// Package sparkpost is a minimal client for the SparkPost v1 REST API.
// It covers the resources the relay needs: transmissions, message-event
// search, webhooks, sending/inbound domains, relay webhooks and the
// suppression list. The client never retries; callers that want
// retry/backoff wrap it (see internal/pkg/httpretry).
package sparkpost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/ignite/sparkpost-relay/internal/config"
	"github.com/ignite/sparkpost-relay/internal/pkg/httpretry"
)

const (
	apiEndpoint   = "https://api.sparkpost.com/api/v1"
	apiEndpointEU = "https://api.eu.sparkpost.com/api/v1"

	userAgent = "sparkpost-relay/1.0"

	// The API expects datetimes as YYYY-MM-DDTHH:MM.
	datetimeFormat = "2006-01-02T15:04"

	// How many raw results to keep for diagnostics.
	maxResultLog = 20
)

// Client is a SparkPost API client. One instance is safe for concurrent
// use; the diagnostic result log is guarded internally.
type Client struct {
	baseURL    string
	apiKey     string
	subaccount int
	httpClient httpretry.HTTPDoer

	verbose bool

	mu         sync.Mutex
	results    []json.RawMessage
	verboseLog []string
}

// NewClient creates a SparkPost API client. It fails fast with a
// ConfigurationError when no API key is configured.
func NewClient(cfg config.SparkPostConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, &ConfigurationError{Reason: "an API key must be set before making requests"}
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = apiEndpoint
		if cfg.EUEndpoint {
			baseURL = apiEndpointEU
		}
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		subaccount: cfg.SubaccountID,
		verbose:    cfg.Verbose,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
	}, nil
}

// SetHTTPClient swaps the underlying transport. Useful for wrapping the
// client with httpretry on read-only call paths, or for tests.
func (c *Client) SetHTTPClient(doer httpretry.HTTPDoer) {
	c.httpClient = doer
}

// Subaccount returns the configured subaccount id (0 when unset).
func (c *Client) Subaccount() int {
	return c.subaccount
}

// resultEnvelope is the provider's uniform response wrapper.
type resultEnvelope struct {
	Results json.RawMessage `json:"results"`
	Errors  []ErrorEntry    `json:"errors"`
}

// request is the single primitive every resource method is built on.
// GET/DELETE requests carry query parameters; POST/PUT serialize body to
// JSON. The decoded "results" value is returned raw for the caller to
// unmarshal into its resource type.
func (c *Client) request(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	fullURL := c.baseURL + "/" + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var payload map[string]any
	var reqBody io.Reader
	var rawBody []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		rawBody = data
		reqBody = bytes.NewReader(data)
		// Keep a generic view of the payload for error enrichment.
		_ = json.Unmarshal(data, &payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.subaccount != 0 {
		req.Header.Set("X-MSYS-SUBACCOUNT", strconv.Itoa(c.subaccount))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Path: path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Path: path, Err: fmt.Errorf("reading response: %w", err)}
	}

	if c.verbose {
		c.recordExchange(method, fullURL, rawBody, resp.StatusCode, respBody)
	}

	// The API sometimes answers with a literal "{ }" which is not a
	// valid envelope. Treat it as a null result.
	var envelope resultEnvelope
	if string(bytes.TrimSpace(respBody)) == "{}" || string(bytes.TrimSpace(respBody)) == "{ }" {
		c.recordResult(json.RawMessage(`{"results":null}`))
		return nil, nil
	}

	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, &TransportError{Path: path, Err: fmt.Errorf("failed to decode %q: %w", respBody, err)}
	}

	c.recordResult(json.RawMessage(respBody))

	if len(envelope.Errors) > 0 {
		return nil, newAPIError(path, envelope.Errors, payload)
	}

	return envelope.Results, nil
}

// requestInto runs request and unmarshals the results into out.
func (c *Client) requestInto(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	results, err := c.request(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if out == nil || results == nil {
		return nil
	}
	if err := json.Unmarshal(results, out); err != nil {
		return &TransportError{Path: path, Err: fmt.Errorf("parsing results: %w", err)}
	}
	return nil
}

func (c *Client) recordResult(raw json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, raw)
	if len(c.results) > maxResultLog {
		c.results = c.results[len(c.results)-maxResultLog:]
	}
}

func (c *Client) recordExchange(method, url string, reqBody []byte, status int, respBody []byte) {
	entry := fmt.Sprintf("%s %s\n>> %s\n<< %d %s", method, url, reqBody, status, respBody)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verboseLog = append(c.verboseLog, entry)
	if len(c.verboseLog) > maxResultLog {
		c.verboseLog = c.verboseLog[len(c.verboseLog)-maxResultLog:]
	}
}

// Results returns the recent raw API responses, oldest first.
func (c *Client) Results() []json.RawMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]json.RawMessage, len(c.results))
	copy(out, c.results)
	return out
}

// LastResult returns the most recent raw API response, or nil.
func (c *Client) LastResult() json.RawMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.results) == 0 {
		return nil
	}
	return c.results[len(c.results)-1]
}

// VerboseLog returns captured request/response exchanges. Only populated
// when the client is configured with Verbose; meant for integration
// debugging, not production.
func (c *Client) VerboseLog() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.verboseLog))
	copy(out, c.verboseLog)
	return out
}

// validDatetime renders t in the format the API expects.
func validDatetime(t time.Time) string {
	return t.Format(datetimeFormat)
}
