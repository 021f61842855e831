// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the HTTP client for the shopdesk chat API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Configuration constants for the chat API.
const (
	// DefaultBaseURL is where the chat API runs during local development.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultChatPath is the path of the chat endpoint.
	DefaultChatPath = "/api/chat"

	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 60 * time.Second

	// DefaultUserAgent identifies the client.
	DefaultUserAgent = "shopdesk"

	// MaxResponseSize is the maximum allowed response body size.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit

	// RequestIDHeader carries a per-request UUID.
	RequestIDHeader = "X-Request-ID"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrMalformedResponse indicates a 2xx response that is not a chat reply.
var ErrMalformedResponse = errors.New("malformed chat response")

// APIError is returned for non-2xx responses.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("chat API error (HTTP %d)", e.Status)
	}
	return fmt.Sprintf("chat API error (HTTP %d): %s", e.Status, e.Message)
}

// errorBody is the error shape returned by the chat API.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// ChatRequest is the body of a chat request. A nil ConversationID is sent as
// null and starts a new conversation on the server.
type ChatRequest struct {
	Message        string  `json:"message"`
	ConversationID *string `json:"conversation_id"`
}

// NewChatRequest builds a request; an empty conversationID is sent as null.
func NewChatRequest(message, conversationID string) ChatRequest {
	req := ChatRequest{Message: message}
	if conversationID != "" {
		req.ConversationID = &conversationID
	}
	return req
}

// ChatResponse is the body of a successful chat reply.
type ChatResponse struct {
	Response       string     `json:"response"`
	ConversationID string     `json:"conversation_id"`
	Timestamp      *time.Time `json:"timestamp,omitempty"`
}

// healthResponse is the body of the root endpoint.
type healthResponse struct {
	Message string `json:"message"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the chat API.
type Client struct {
	baseURL    string
	chatPath   string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a client for the API at baseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		chatPath:   DefaultChatPath,
		userAgent:  DefaultUserAgent,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// WithChatPath sets the path of the chat endpoint.
func (c *Client) WithChatPath(path string) *Client {
	if path != "" {
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		c.chatPath = path
	}
	return c
}

// WithTimeout sets the request timeout. Zero disables it.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// WithUserAgent sets the User-Agent header.
func (c *Client) WithUserAgent(ua string) *Client {
	if ua != "" {
		c.userAgent = ua
	}
	return c
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ChatURL returns the full URL of the chat endpoint.
func (c *Client) ChatURL() string {
	return c.baseURL + c.chatPath
}

// Chat sends one message and returns the reply.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ChatURL(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	respBody, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if chatResp.ConversationID == "" {
		return nil, fmt.Errorf("%w: missing conversation_id", ErrMalformedResponse)
	}
	return &chatResp, nil
}

// Health checks that the API is reachable and returns its status message.
func (c *Client) Health(ctx context.Context) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	respBody, err := c.do(httpReq)
	if err != nil {
		return "", err
	}

	var health healthResponse
	if err := json.Unmarshal(respBody, &health); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return health.Message, nil
}

// do sends req and returns the body of a 2xx response.
func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(RequestIDHeader, uuid.NewString())

	c.logRequest(req)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logResponse(req, resp, time.Since(start))

	body, err := readResponse(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, body)
	}
	return body, nil
}

// newAPIError extracts the server's detail message when there is one.
func newAPIError(status int, body []byte) *APIError {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && len(eb.Detail) > 0 {
		var detail string
		if json.Unmarshal(eb.Detail, &detail) == nil {
			return &APIError{Status: status, Message: detail}
		}
		return &APIError{Status: status, Message: string(eb.Detail)}
	}
	return &APIError{Status: status, Message: strings.TrimSpace(string(body))}
}

// readResponse reads the response body with size limits to prevent memory exhaustion.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// =============================================================================
// LOGGING (without bodies)
// =============================================================================

func (c *Client) logRequest(req *http.Request) {
	log.Printf("API Request: %s %s [%s]", req.Method, req.URL.Path, req.Header.Get(RequestIDHeader))
}

func (c *Client) logResponse(req *http.Request, resp *http.Response, duration time.Duration) {
	log.Printf("API Response: %s [%s] (%v)", resp.Status, req.Header.Get(RequestIDHeader), duration)
}
