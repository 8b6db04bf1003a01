package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Options is the optional per-call configuration bag: extra request headers.
// Header names colliding (case-insensitively) with Accept, Authorization, or
// Content-Type are silently dropped; those three are engine-controlled.
type Options struct {
	Headers map[string]string
}

// engine-controlled headers that caller Options can never override
func reservedHeader(name string) bool {
	switch strings.ToLower(name) {
	case "accept", "authorization", "content-type":
		return true
	}
	return false
}

// APIRequest describes one call through the engine.
type APIRequest struct {
	// HTTP method as a string, eg "GET" (required).
	Method string

	// Endpoint path, eg "/v1/bots" (required). A missing leading "/" is
	// tolerated.
	Path string

	// Optional query parameters, encoded in insertion order.
	Params Params

	// Optional request body. A non-nil body is serialized as JSON and sent
	// with Content-Type: application/json.
	Body any

	// Optional per-call extra headers.
	Options *Options

	// Strategy selectors for non-2xx statuses. Zero values are the strict
	// defaults (fail the call).
	OnNotFound    NotFoundHandling
	OnClientError ClientErrorHandling

	// Unauthenticated skips the Authorization header, for echo/diagnostic
	// endpoints that take no credentials.
	Unauthenticated bool
}

// HTTPRequest builds the [http.Request] for this call: URL from host + path +
// encoded query, Accept header, optional JSON body, then client-level default
// headers and per-call Options headers (reserved names filtered from both).
func (r *APIRequest) HTTPRequest(ctx context.Context, host string, defaultHeaders map[string]string) (*http.Request, error) {
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid host URL: %w", err)
	}
	if u.Scheme == "" {
		return nil, fmt.Errorf("empty scheme in host URL")
	}
	if u.Host == "" {
		return nil, fmt.Errorf("empty hostname in host URL")
	}
	if r.Method == "" {
		return nil, fmt.Errorf("empty request method")
	}
	if r.Path == "" {
		return nil, fmt.Errorf("empty request path")
	}
	path := r.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	// the endpoint path is appended to the base URL, which may itself carry a
	// path prefix (eg "https://host/api")
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = r.Params.Encode()

	var bodyReader *bytes.Reader
	if r.Body != nil {
		bodyJSON, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("serializing request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyJSON)
	}

	var httpReq *http.Request
	if bodyReader != nil {
		httpReq, err = http.NewRequestWithContext(ctx, r.Method, u.String(), bodyReader)
	} else {
		httpReq, err = http.NewRequestWithContext(ctx, r.Method, u.String(), nil)
	}
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Accept", "application/json")
	if bodyReader != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	// client-level defaults first...
	for k, v := range defaultHeaders {
		if reservedHeader(k) {
			continue
		}
		httpReq.Header.Set(k, v)
	}
	// ... then per-call headers take priority
	if r.Options != nil {
		for k, v := range r.Options.Headers {
			if reservedHeader(k) {
				continue
			}
			httpReq.Header.Set(k, v)
		}
	}

	return httpReq, nil
}
