// Package dpop builds signed, single-use proof-of-possession tokens bound to
// the HTTP method and URI of one specific request (DPoP proof JWTs).
//
// A [Signer] is constructed once from a private key in JWK form and used
// concurrently for the lifetime of a client. The key must declare its signing
// algorithm explicitly via the JWK "alg" parameter; a key without one is a
// configuration error caught at construction time rather than on the first
// call. Each proof carries fresh "jti" and "iat" claims and the public key in
// its protected header, and is serialized as a compact JWS with type
// "dpop+jwt".
package dpop

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

// HeaderName is the request header the proof token is attached as.
const HeaderName = "DPoP"

type proofClaims struct {
	jwt.RegisteredClaims

	HTTPMethod string `json:"htm"`
	TargetURI  string `json:"htu"`
}

// Signer produces DPoP proofs for one private key. Immutable after
// construction; safe for concurrent use.
type Signer struct {
	method    jwt.SigningMethod
	secretKey any
	publicJWK map[string]any
}

// NewSigner validates the key and prepares it for per-call signing. It fails
// when the key carries no explicit "alg" parameter, names an unsupported
// algorithm, or is symmetric (a proof must be verifiable with a public key).
func NewSigner(key jwk.Key) (*Signer, error) {
	if key == nil {
		return nil, fmt.Errorf("dpop: nil signing key")
	}
	alg := key.Algorithm()
	if alg == nil || alg.String() == "" {
		return nil, fmt.Errorf("dpop: signing key must declare an explicit algorithm (alg)")
	}
	if strings.HasPrefix(alg.String(), "HS") {
		return nil, fmt.Errorf("dpop: proof signing requires an asymmetric key, got alg %q", alg.String())
	}
	method := jwt.GetSigningMethod(alg.String())
	if method == nil {
		return nil, fmt.Errorf("dpop: unsupported signing algorithm: %q", alg.String())
	}

	var secretKey any
	if err := key.Raw(&secretKey); err != nil {
		return nil, fmt.Errorf("dpop: extracting raw signing key: %w", err)
	}

	pub, err := key.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("dpop: deriving public key: %w", err)
	}
	pubJSON, err := json.Marshal(pub)
	if err != nil {
		return nil, fmt.Errorf("dpop: serializing public key: %w", err)
	}
	var pubJWK map[string]any
	if err := json.Unmarshal(pubJSON, &pubJWK); err != nil {
		return nil, fmt.Errorf("dpop: serializing public key: %w", err)
	}

	return &Signer{
		method:    method,
		secretKey: secretKey,
		publicJWK: pubJWK,
	}, nil
}

// Algorithm reports the JWS algorithm proofs are signed with.
func (s *Signer) Algorithm() string {
	return s.method.Alg()
}

// Proof builds and signs a fresh proof bound to the given HTTP method and
// target URL. The query string (and fragment) is stripped from the "htu"
// claim; "jti" is a fresh random identifier and "iat" the current time.
func (s *Signer) Proof(httpMethod, targetURL string) (string, error) {
	htu, err := stripQuery(targetURL)
	if err != nil {
		return "", err
	}
	claims := proofClaims{
		HTTPMethod: httpMethod,
		TargetURI:  htu,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       randomNonce(),
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(s.method, claims)
	token.Header["typ"] = "dpop+jwt"
	token.Header["jwk"] = s.publicJWK

	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("dpop: signing proof: %w", err)
	}
	return signed, nil
}

func stripQuery(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("dpop: invalid target URL: %w", err)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

func randomNonce() string {
	buf := make([]byte, 16)
	rand.Read(buf)
	return base64.RawURLEncoding.EncodeToString(buf)
}
