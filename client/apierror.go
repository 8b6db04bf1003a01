package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// APIError is the single normalized error carrier for failed calls. Every
// fatal outcome of an invocation funnels through this type: transport
// failures, request build/serialization failures, proof-signing failures, and
// non-2xx statuses the selected strategy treats as fatal.
type APIError struct {
	// HTTP status code; 0 when the request never produced a status.
	StatusCode int

	// HTTP status line message (eg "404 Not Found"); empty when unknown.
	StatusMessage string

	// Raw response body, when one could be recovered.
	Body []byte

	// Response headers, when a response was received.
	Headers http.Header

	// Underlying cause, if any.
	Wrapped error
}

func (e *APIError) Error() string {
	switch {
	case e.StatusCode > 0 && e.Wrapped != nil:
		return fmt.Sprintf("API request failed (HTTP %d): %s", e.StatusCode, e.Wrapped)
	case e.StatusCode > 0 && len(e.Body) > 0:
		return fmt.Sprintf("API request failed (HTTP %d): %s", e.StatusCode, strings.TrimSpace(string(e.Body)))
	case e.StatusCode > 0:
		return fmt.Sprintf("API request failed (HTTP %d)", e.StatusCode)
	case e.Wrapped != nil:
		return fmt.Sprintf("API request failed: %s", e.Wrapped)
	}
	return "API request failed"
}

func (e *APIError) Unwrap() error {
	return e.Wrapped
}

// ErrorBody is the error document many endpoints return alongside a non-2xx
// status.
type ErrorBody struct {
	Name    string `json:"error"`
	Message string `json:"message,omitempty"`
}

func (eb *ErrorBody) Error() string {
	if eb.Message != "" {
		return fmt.Sprintf("%s: %s", eb.Name, eb.Message)
	}
	return eb.Name
}

// errorFromExchange is the single construction point for protocol-level
// failures: it captures whatever status, headers, and body the exchange can
// provide. If the body parses as an [ErrorBody] and no other cause was given,
// it becomes the wrapped cause so callers get the server's own message.
func errorFromExchange(x *Exchange, cause error) *APIError {
	apiErr := &APIError{
		StatusCode:    x.StatusCode(),
		StatusMessage: x.Status(),
		Headers:       x.Header(),
		Wrapped:       cause,
	}
	body, err := x.Body()
	if err != nil {
		if apiErr.Wrapped == nil {
			apiErr.Wrapped = fmt.Errorf("reading error response body: %w", err)
		}
		return apiErr
	}
	apiErr.Body = body
	if apiErr.Wrapped == nil && len(body) > 0 {
		var eb ErrorBody
		if jsonErr := json.Unmarshal(body, &eb); jsonErr == nil && eb.Name != "" {
			apiErr.Wrapped = &eb
		}
	}
	return apiErr
}

// transportError wraps failures that happened before any HTTP status was
// available: URL building, connect, write, and timeout errors.
func transportError(cause error) *APIError {
	return &APIError{Wrapped: cause}
}
