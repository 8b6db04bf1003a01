package client

import (
	"encoding/base64"
	"net/http"
)

// AuthMethod attaches credentials to an outgoing request. Implementations
// must be safe for concurrent use; the engine calls AuthorizeRequest once per
// call, before the request is sent.
type AuthMethod interface {
	AuthorizeRequest(httpReq *http.Request) error
}

// BasicAuth is HTTP Basic authentication from a key/secret credential pair.
type BasicAuth struct {
	Key    string
	Secret string
}

func NewBasicAuth(key, secret string) *BasicAuth {
	return &BasicAuth{Key: key, Secret: secret}
}

func (a *BasicAuth) AuthorizeRequest(httpReq *http.Request) error {
	httpReq.Header.Set("Authorization", FormatBasicAuth(a.Key, a.Secret))
	return nil
}

// FormatBasicAuth renders a key/secret pair as an Authorization header value,
// per HTTP Basic Authentication.
func FormatBasicAuth(key, secret string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(key+":"+secret))
}
