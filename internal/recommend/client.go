// Package recommend talks to the external recommendation service.
package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cloo-solutions/cravings/internal/domain"
	"github.com/cloo-solutions/cravings/internal/logging"
	"github.com/cloo-solutions/cravings/internal/telemetry"
)

const (
	DefaultBaseURL = "http://127.0.0.1:8000"

	locationsPath = "/locations"
	cuisinesPath  = "/cuisines"
	recommendPath = "/recommend"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client rooted at baseURL. A zero timeout means no client-side limit.
func NewClient(baseURL string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NewClientWithHTTP lets callers supply their own transport.
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	c := NewClient(baseURL, 0)
	if httpClient != nil {
		c.httpClient = httpClient
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIError is returned for responses with status >= 400.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("recommendation API error (%d): %s", e.StatusCode, e.Message)
}

type locationsResponse struct {
	Locations []string `json:"locations"`
}

type cuisinesResponse struct {
	Cuisines []string `json:"cuisines"`
}

// Locations fetches the known localities. A missing field yields an empty list.
func (c *Client) Locations(ctx context.Context) ([]string, error) {
	var resp locationsResponse
	if err := c.do(ctx, http.MethodGet, locationsPath, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Locations == nil {
		return []string{}, nil
	}
	return resp.Locations, nil
}

// Cuisines fetches the known cuisines. A missing field yields an empty list.
func (c *Client) Cuisines(ctx context.Context) ([]string, error) {
	var resp cuisinesResponse
	if err := c.do(ctx, http.MethodGet, cuisinesPath, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Cuisines == nil {
		return []string{}, nil
	}
	return resp.Cuisines, nil
}

// Recommend issues exactly one POST /recommend.
func (c *Client) Recommend(ctx context.Context, intent domain.QueryIntent) (*domain.RecommendResponse, error) {
	var resp domain.RecommendResponse
	if err := c.do(ctx, http.MethodPost, recommendPath, intent, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "recommend "+method+" "+path, telemetry.SpanAttributes{
		SessionID: logging.SessionID(ctx),
		RequestID: logging.RequestID(ctx),
		Endpoint:  path,
		Operation: strings.TrimPrefix(path, "/"),
	})
	defer func() {
		if err != nil {
			span.SetError(err)
		}
		span.End()
	}()

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requestID := logging.RequestID(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    extractError(respBody),
		}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

// extractError prefers FastAPI's "detail" field, then "error", then the raw body.
func extractError(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if len(payload.Detail) > 0 {
			var detail string
			if err := json.Unmarshal(payload.Detail, &detail); err == nil {
				return detail
			}
			return string(payload.Detail)
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "empty response"
	}
	return msg
}
