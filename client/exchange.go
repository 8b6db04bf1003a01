package client

import (
	"io"
	"net/http"
	"sync"
)

// Exchange owns one request/response exchange. The response body is read
// lazily and cached on first access, so status handling can inspect it more
// than once. Close releases the underlying connection resources exactly once,
// regardless of how far the exchange got; it is safe to call on every exit
// path.
type Exchange struct {
	resp *http.Response

	bodyOnce sync.Once
	body     []byte
	bodyErr  error

	closeOnce sync.Once
}

func newExchange(resp *http.Response) *Exchange {
	return &Exchange{resp: resp}
}

func (x *Exchange) StatusCode() int {
	return x.resp.StatusCode
}

// Status returns the HTTP status line message, eg "404 Not Found".
func (x *Exchange) Status() string {
	return x.resp.Status
}

func (x *Exchange) Header() http.Header {
	return x.resp.Header
}

// ContentLength reports the declared response length; negative when unknown.
func (x *Exchange) ContentLength() int64 {
	return x.resp.ContentLength
}

// Body reads the full response body on first call and caches it. Repeated
// calls return the same bytes (or the same read error).
func (x *Exchange) Body() ([]byte, error) {
	x.bodyOnce.Do(func() {
		x.body, x.bodyErr = io.ReadAll(x.resp.Body)
	})
	return x.body, x.bodyErr
}

// Close releases the exchange. Any unread body is drained so the connection
// can be reused, and close errors are swallowed: failing to release one
// resource must not prevent releasing the rest.
func (x *Exchange) Close() {
	x.closeOnce.Do(func() {
		x.bodyOnce.Do(func() {
			// drain errors are swallowed like close errors; bodyErr is
			// reserved for reads requested through Body
			_, _ = io.Copy(io.Discard, x.resp.Body)
		})
		_ = x.resp.Body.Close()
	})
}
