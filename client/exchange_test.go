package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingBody wraps a response body and records whether Close was invoked.
type recordingBody struct {
	io.Reader
	closed bool
}

func (b *recordingBody) Close() error {
	b.closed = true
	return nil
}

// canned RoundTripper: returns a fixed response and exposes its body double
type cannedTransport struct {
	status int
	body   *recordingBody
	header http.Header
}

func (ct *cannedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode:    ct.status,
		Status:        http.StatusText(ct.status),
		Header:        ct.header,
		Body:          ct.body,
		ContentLength: -1,
		Request:       req,
	}, nil
}

func newCannedClient(status int, body string) (*APIClient, *recordingBody) {
	rb := &recordingBody{Reader: strings.NewReader(body)}
	c := &APIClient{
		HTTPClient: &http.Client{Transport: &cannedTransport{
			status: status,
			body:   rb,
			header: http.Header{"Content-Type": []string{"application/json"}},
		}},
		Host: "http://api.invalid",
	}
	return c, rb
}

func TestExchangeClosedOnEveryPath(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	{
		// normal success
		c, rb := newCannedClient(200, `{"name":"x"}`)
		var out widget
		_, err := c.Do(ctx, &APIRequest{Method: "GET", Path: "/v1/widget"}, &out)
		require.NoError(err)
		assert.True(rb.closed)
	}

	{
		// parse failure on 2xx
		c, rb := newCannedClient(200, `{"name": broken`)
		var out widget
		_, err := c.Do(ctx, &APIRequest{Method: "GET", Path: "/v1/widget"}, &out)
		require.Error(err)
		assert.True(rb.closed)
	}

	{
		// strict 404
		c, rb := newCannedClient(404, `{"error":"NotFound"}`)
		_, err := c.Do(ctx, &APIRequest{Method: "GET", Path: "/v1/widget"}, nil)
		require.Error(err)
		assert.True(rb.closed)
	}

	{
		// lenient 404: still released
		c, rb := newCannedClient(404, `{"error":"NotFound"}`)
		_, err := c.Do(ctx, &APIRequest{Method: "GET", Path: "/v1/widget", OnNotFound: NotFoundNil}, nil)
		require.NoError(err)
		assert.True(rb.closed)
	}

	{
		// 5xx
		c, rb := newCannedClient(503, "")
		_, err := c.Do(ctx, &APIRequest{Method: "GET", Path: "/v1/widget"}, nil)
		require.Error(err)
		assert.True(rb.closed)
	}
}

// always fails mid-stream, like a reset connection
type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestExchangeCloseBeforeBody(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	// drain failures during Close are swallowed; a later Body call reports an
	// empty body, not the drain error
	rb := &recordingBody{Reader: brokenReader{}}
	x := newExchange(&http.Response{
		StatusCode: 200,
		Status:     "200 OK",
		Body:       rb,
	})
	x.Close()
	assert.True(rb.closed)

	body, err := x.Body()
	require.NoError(err)
	assert.Empty(body)
}

func TestExchangeBodyCachedAndCloseIdempotent(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	rb := &recordingBody{Reader: strings.NewReader("payload")}
	x := newExchange(&http.Response{
		StatusCode:    200,
		Status:        "200 OK",
		Body:          rb,
		ContentLength: 7,
	})

	body, err := x.Body()
	require.NoError(err)
	assert.Equal("payload", string(body))

	// repeated reads return the cached bytes
	again, err := x.Body()
	require.NoError(err)
	assert.Equal(body, again)

	assert.Equal(int64(7), x.ContentLength())

	x.Close()
	x.Close() // second close is a no-op
	assert.True(rb.closed)
}
