// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents a classified failure from the conversation service.
type ClientError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorKind categorizes client errors for handling.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindUnreachable
	KindServerError
	KindRejected
)

// Sentinel errors for easy checking.
var (
	ErrUnreachable = &ClientError{Kind: KindUnreachable, Message: "conversation service is unreachable"}
	ErrEmptyTurn   = errors.New("turn content is empty")
)

// IsUnreachable checks if an error indicates the service could not be reached.
func IsUnreachable(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Kind == KindUnreachable
	}
	return false
}

// IsRejected checks if an error is a content rejection (HTTP 400).
func IsRejected(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Kind == KindRejected
	}
	return false
}

// IsServerError checks if an error is a generic server failure.
func IsServerError(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Kind == KindServerError
	}
	return false
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the service client.
type ClientConfig struct {
	// BaseURL is the service API base URL, including the version prefix
	// (default: http://localhost:8000/api/v1). Externally configured.
	BaseURL string

	// Timeout for requests (default: 30s).
	Timeout time.Duration
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL: "http://localhost:8000/api/v1",
		Timeout: 30 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the conversation service.
// It is safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a new client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new client with custom configuration.
// Zero values fall back to defaults.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:8000/api/v1"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// =============================================================================
// OPERATIONS
// =============================================================================

// FetchOpening retrieves the opening message that seeds a new conversation.
func (c *Client) FetchOpening(ctx context.Context) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/opening", nil)
	if err != nil {
		return nil, &ClientError{Kind: KindUnreachable, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ClientError{Kind: KindUnreachable, Message: "failed to fetch opening message", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ClientError{
			Kind:    KindServerError,
			Message: "failed to fetch opening message: " + resp.Status,
		}
	}

	var result Response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Kind: KindServerError, Message: "failed to decode opening response", Cause: err}
	}
	if result.Type == "" {
		result.Type = TypeNormal
	}

	return &result, nil
}

// SubmitTurn sends a user turn together with the full conversation history,
// which must already include the turn being submitted. Content must be
// non-empty after trimming.
func (c *Client) SubmitTurn(ctx context.Context, content string, history []Message) (*Response, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyTurn
	}

	body, err := json.Marshal(messageRequest{
		Content: content,
		History: messageHistory{Messages: history},
	})
	if err != nil {
		return nil, &ClientError{Kind: KindUnknown, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/message", bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Kind: KindUnreachable, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ClientError{Kind: KindUnreachable, Message: "failed to submit turn", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		// The 400 body carries a detail describing why the content was
		// rejected. Diagnostic-only: callers must not surface it verbatim.
		var rejection rejectionBody
		detail := "invalid message"
		if err := json.NewDecoder(resp.Body).Decode(&rejection); err == nil && rejection.Detail != "" {
			detail = rejection.Detail
		}
		return nil, &ClientError{Kind: KindRejected, Message: detail}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ClientError{
			Kind:    KindServerError,
			Message: "failed to submit turn: " + resp.Status,
		}
	}

	var result Response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Kind: KindServerError, Message: "failed to decode turn response", Cause: err}
	}

	return &result, nil
}
