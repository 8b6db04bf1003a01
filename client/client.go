package client

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/carlmjohnson/versioninfo"

	"github.com/lattice-web/lattice/robusthttp"
)

// Settings are the per-client timeouts, fixed at construction and shared
// read-only by every call made through the client. Zero means no timeout.
type Settings struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// ProofSigner produces a signed, single-use proof token bound to one request.
// See the dpop package for the standard implementation.
type ProofSigner interface {
	Proof(httpMethod, targetURL string) (string, error)
}

// APIClient is the invocation engine. All fields are treated as immutable
// after construction; the client is safe for concurrent use from multiple
// goroutines.
type APIClient struct {
	HTTPClient *http.Client
	Host       string
	Auth       AuthMethod

	// Proof, when non-nil, attaches a DPoP proof header to every call; there
	// is no per-call opt-out.
	Proof ProofSigner

	DefaultHeaders map[string]string
	UserAgent      string
}

// NewAPIClient builds a client for the given host (any trailing "/" is
// stripped) with an HTTP client derived from settings.
func NewAPIClient(host string, settings Settings) *APIClient {
	return &APIClient{
		HTTPClient: robusthttp.BaseClient(settings.ConnectTimeout, settings.ReadTimeout),
		Host:       strings.TrimRight(host, "/"),
	}
}

func (c *APIClient) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}

func (c *APIClient) userAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return "lattice-go/" + versioninfo.Short()
}

// Get performs a GET call. See [APIClient.Do] for response semantics.
func (c *APIClient) Get(ctx context.Context, path string, params Params, out any) error {
	_, err := c.Do(ctx, &APIRequest{Method: http.MethodGet, Path: path, Params: params}, out)
	return err
}

// Post performs a POST call with a JSON body.
func (c *APIClient) Post(ctx context.Context, path string, body, out any) error {
	_, err := c.Do(ctx, &APIRequest{Method: http.MethodPost, Path: path, Body: body}, out)
	return err
}

// Delete performs a DELETE call.
func (c *APIClient) Delete(ctx context.Context, path string, params Params, out any) error {
	_, err := c.Do(ctx, &APIRequest{Method: http.MethodDelete, Path: path, Params: params}, out)
	return err
}

// Do performs one call: build the URL and headers, attach credentials and the
// proof token, send the body if present, and resolve the response per the
// request's strategies. On success the decoded value (if any) is written to
// out, which must be nil or a non-nil pointer; the returned bool reports
// whether a value was produced. The exchange is always released before Do
// returns, on every path.
func (c *APIClient) Do(ctx context.Context, req *APIRequest, out any) (bool, error) {
	httpReq, err := req.HTTPRequest(ctx, c.Host, c.DefaultHeaders)
	if err != nil {
		return false, transportError(err)
	}
	httpReq.Header.Set("User-Agent", c.userAgent())

	if !req.Unauthenticated && c.Auth != nil {
		if err := c.Auth.AuthorizeRequest(httpReq); err != nil {
			return false, transportError(err)
		}
	}

	if c.Proof != nil {
		// a fresh proof per call; a signing failure fails the whole call
		// rather than downgrading to an unproven request
		proof, err := c.Proof.Proof(httpReq.Method, httpReq.URL.String())
		if err != nil {
			return false, transportError(err)
		}
		httpReq.Header.Set("DPoP", proof)
	}

	slog.Debug("API request", "method", httpReq.Method, "url", httpReq.URL.String())
	resp, err := c.httpClient().Do(httpReq)
	if err != nil {
		return false, transportError(err)
	}
	x := newExchange(resp)
	defer x.Close()

	return resolveResponse(x, req, out)
}
