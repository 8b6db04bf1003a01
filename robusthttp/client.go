// Package robusthttp constructs the HTTP clients used with the invocation
// engine. [BaseClient] is the engine default: pooled transport, configurable
// connect/read timeouts, and no retries, so each call maps to exactly one
// request on the wire. [RetryingClient] is an explicitly opt-in client with
// hashicorp/go-retryablehttp semantics, for callers that want retry behavior
// layered outside the engine.
package robusthttp

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Option customizes a client built by [BaseClient].
type Option func(*http.Client)

// WithTransport replaces the transport entirely.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *http.Client) {
		c.Transport = rt
	}
}

// WithInstrumentation wraps the transport for OTEL tracing of outgoing
// requests.
func WithInstrumentation() Option {
	return func(c *http.Client) {
		c.Transport = otelhttp.NewTransport(c.Transport)
	}
}

// Transport builds a pooled transport with the connect timeout applied to
// dialing and the read timeout applied to the wait for response headers. Zero
// disables the corresponding timeout.
func Transport(connectTimeout, readTimeout time.Duration) *http.Transport {
	tr := cleanhttp.DefaultPooledTransport()
	tr.DialContext = (&net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	tr.ResponseHeaderTimeout = readTimeout
	return tr
}

// BaseClient returns the non-retrying client the invocation engine uses. The
// read timeout also bounds the whole request via [http.Client.Timeout], so a
// stalled body read fails rather than hanging.
func BaseClient(connectTimeout, readTimeout time.Duration, options ...Option) *http.Client {
	client := &http.Client{
		Transport: Transport(connectTimeout, readTimeout),
		Timeout:   readTimeout,
	}
	for _, option := range options {
		option(client)
	}
	return client
}

// LeveledSlog adapts an *slog.Logger to retryablehttp's leveled logger.
type LeveledSlog struct {
	inner *slog.Logger
}

// re-writes HTTP client ERROR to WARN level (because of retries)
func (l LeveledSlog) Error(msg string, keysAndValues ...any) {
	l.inner.Warn(msg, keysAndValues...)
}

func (l LeveledSlog) Warn(msg string, keysAndValues ...any) {
	l.inner.Warn(msg, keysAndValues...)
}

func (l LeveledSlog) Info(msg string, keysAndValues ...any) {
	l.inner.Info(msg, keysAndValues...)
}

func (l LeveledSlog) Debug(msg string, keysAndValues ...any) {
	l.inner.Debug(msg, keysAndValues...)
}

// RetryingClient returns a client that retries on connection errors and 5xx
// statuses (except 501), logging intermediate failures at WARN. Never used by
// the engine itself; hand it to an APIClient explicitly if retries are wanted.
func RetryingClient(connectTimeout, readTimeout time.Duration, maxRetries int) *http.Client {
	logger := LeveledSlog{inner: slog.Default().With("subsystem", "RetryingHTTPClient")}
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Transport = Transport(connectTimeout, readTimeout)
	retryClient.RetryMax = maxRetries
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 10 * time.Second
	retryClient.Logger = retryablehttp.LeveledLogger(logger)
	retryClient.CheckRetry = NoThrottleRetryPolicy

	client := retryClient.StandardClient()
	client.Timeout = readTimeout
	return client
}

// NoThrottleRetryPolicy wraps retryablehttp.DefaultRetryPolicy but treats
// `429 Too Many Requests` as non-retryable, so the application can decide how
// to deal with rate-limiting.
func NoThrottleRetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if err == nil && resp.StatusCode == http.StatusTooManyRequests {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}
