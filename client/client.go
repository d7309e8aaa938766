// Package client is the Go HTTP client for the suiscope explain API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/brojonat/suiscope/service/llm"
	"github.com/brojonat/suiscope/service/translate"
)

// ExplainRequest is the body of an explain call.
type ExplainRequest struct {
	Identifier         string `json:"identifier"`
	IncludeExplanation bool   `json:"include_explanation,omitempty"`
	Mode               string `json:"mode,omitempty"` // full or simple
	SkipCache          bool   `json:"skip_cache,omitempty"`
}

// ExplainResponse is a translated transaction plus the optional narrative.
type ExplainResponse struct {
	Transaction      *translate.TranslatedTransaction `json:"transaction"`
	Explanation      *llm.Explanation                 `json:"explanation,omitempty"`
	ExplanationError string                           `json:"explanation_error,omitempty"`
	Cached           bool                             `json:"cached"`
}

// Flow is the visualization data of a transaction.
type Flow struct {
	Digest    string                    `json:"digest"`
	Type      translate.TransactionType `json:"type"`
	Flow      translate.FlowGraph       `json:"flow"`
	Steps     []translate.Step          `json:"steps"`
	Execution *translate.ExecutionFlow  `json:"execution,omitempty"`
}

// AsyncJob identifies a started explain workflow.
type AsyncJob struct {
	WorkflowID string `json:"workflow_id"`
	Digest     string `json:"digest"`
	StatusURL  string `json:"status_url"`
}

// AsyncResult is the output of a completed explain workflow.
type AsyncResult struct {
	Digest           string                           `json:"digest"`
	Transaction      *translate.TranslatedTransaction `json:"transaction,omitempty"`
	Explanation      *llm.Explanation                 `json:"explanation,omitempty"`
	ExplanationError string                           `json:"explanation_error,omitempty"`
	Published        bool                             `json:"published"`
}

// AsyncStatus is the state of an explain workflow.
type AsyncStatus struct {
	WorkflowID string       `json:"workflow_id"`
	Status     string       `json:"status"` // running, completed, failed
	StartedAt  *time.Time   `json:"started_at,omitempty"`
	Result     *AsyncResult `json:"result,omitempty"`
	Error      string       `json:"error,omitempty"`
}

// Done reports whether the workflow has finished, successfully or not.
func (s *AsyncStatus) Done() bool {
	return s.Status == "completed" || s.Status == "failed"
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
	Kind       string
	Remedy     string
	RequestID  string
}

func (e *APIError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("request failed (%d %s): %s", e.StatusCode, e.Kind, e.Message)
	}
	return fmt.Sprintf("request failed (%d): %s", e.StatusCode, e.Message)
}

// Client is the HTTP client for the suiscope explain service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new explain service client.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Explain translates a transaction and, if requested, asks for an LLM narrative.
func (c *Client) Explain(ctx context.Context, req ExplainRequest) (*ExplainResponse, error) {
	var out ExplainResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/explain", req, http.StatusOK, &out); err != nil {
		return nil, err
	}
	c.logger.Debug("transaction explained", "identifier", req.Identifier, "cached", out.Cached)
	return &out, nil
}

// GetTransaction returns the translation of a transaction.
func (c *Client) GetTransaction(ctx context.Context, identifier string, skipCache bool) (*translate.TranslatedTransaction, error) {
	path := "/api/v1/transactions/" + url.PathEscape(identifier)
	if skipCache {
		path += "?skip_cache=true"
	}
	var out translate.TranslatedTransaction
	if err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetFlow returns the flow graph and steps of a transaction.
func (c *Client) GetFlow(ctx context.Context, identifier string) (*Flow, error) {
	var out Flow
	if err := c.do(ctx, http.MethodGet, "/api/v1/transactions/"+url.PathEscape(identifier)+"/flow", nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StartAsync starts an explain workflow and returns without waiting.
func (c *Client) StartAsync(ctx context.Context, req ExplainRequest) (*AsyncJob, error) {
	var out AsyncJob
	if err := c.do(ctx, http.MethodPost, "/api/v1/explain/async", req, http.StatusAccepted, &out); err != nil {
		return nil, err
	}
	c.logger.Debug("explain workflow started", "workflow_id", out.WorkflowID, "digest", out.Digest)
	return &out, nil
}

// GetAsync returns the status of an explain workflow.
func (c *Client) GetAsync(ctx context.Context, workflowID string) (*AsyncStatus, error) {
	var out AsyncStatus
	if err := c.do(ctx, http.MethodGet, "/api/v1/explain/async/"+url.PathEscape(workflowID), nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AwaitAsync polls an explain workflow until it finishes or ctx is done.
func (c *Client) AwaitAsync(ctx context.Context, workflowID string, interval time.Duration) (*AsyncStatus, error) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		st, err := c.GetAsync(ctx, workflowID)
		if err != nil {
			return nil, err
		}
		if st.Done() {
			return st, nil
		}
		c.logger.Debug("workflow still running", "workflow_id", workflowID)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for workflow %s: %w", workflowID, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.parseErrorResponse(resp)
	}
	return nil
}

// Version returns the server's build version.
func (c *Client) Version(ctx context.Context) (string, error) {
	var out struct {
		Version string `json:"version"`
	}
	if err := c.do(ctx, http.MethodGet, "/version", nil, http.StatusOK, &out); err != nil {
		return "", err
	}
	return out.Version, nil
}

func (c *Client) do(ctx context.Context, method, path string, in interface{}, wantStatus int, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return c.parseErrorResponse(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// parseErrorResponse attempts to parse an error response from the server.
func (c *Client) parseErrorResponse(resp *http.Response) error {
	var errResp struct {
		Error     string `json:"error"`
		Kind      string `json:"kind"`
		Remedy    string `json:"remedy"`
		RequestID string `json:"request_id"`
	}

	body, _ := io.ReadAll(resp.Body)
	apiErr := &APIError{StatusCode: resp.StatusCode, RequestID: resp.Header.Get("X-Request-ID")}
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error == "" {
		apiErr.Message = string(bytes.TrimSpace(body))
		return apiErr
	}

	apiErr.Message = errResp.Error
	apiErr.Kind = errResp.Kind
	apiErr.Remedy = errResp.Remedy
	if errResp.RequestID != "" {
		apiErr.RequestID = errResp.RequestID
	}
	return apiErr
}
