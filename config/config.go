// Package config loads and validates the static configuration the invocation
// engine consumes: the API base URL, the service-owner and service credential
// pairs, optional proof-signing key, and timeouts. Construction is explicit;
// there is no process-wide default instance.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

// Environment variable names understood by [FromEnv].
const (
	EnvBaseURL            = "LATTICE_API_BASE_URL"
	EnvServiceOwnerKey    = "LATTICE_SERVICE_OWNER_KEY"
	EnvServiceOwnerSecret = "LATTICE_SERVICE_OWNER_SECRET"
	EnvServiceKey         = "LATTICE_SERVICE_KEY"
	EnvServiceSecret      = "LATTICE_SERVICE_SECRET"
	EnvProofKey           = "LATTICE_PROOF_SIGNING_KEY"
	EnvProofKeyFile       = "LATTICE_PROOF_SIGNING_KEY_FILE"
	EnvConnectTimeoutMS   = "LATTICE_CONNECT_TIMEOUT_MS"
	EnvReadTimeoutMS      = "LATTICE_READ_TIMEOUT_MS"
)

const (
	DefaultConnectTimeout = 10 * time.Second
	DefaultReadTimeout    = 30 * time.Second
)

type Config struct {
	// BaseURL is the API origin, eg "https://api.lattice.example". Any
	// trailing "/" is stripped at configuration time.
	BaseURL string

	// Service-owner credential pair, for owner-scoped endpoints.
	ServiceOwnerKey    string
	ServiceOwnerSecret string

	// Service credential pair, for service-scoped endpoints.
	ServiceKey    string
	ServiceSecret string

	// ProofKey, when set, enables DPoP proof-of-possession on every call. The
	// key must declare an explicit algorithm; this is checked when the signer
	// is constructed, not per call.
	ProofKey jwk.Key

	// Timeouts for all calls; zero means no timeout.
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// FromEnv builds a Config from environment variables, loading a .env file
// first if one exists (missing files are not an error).
func FromEnv() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		BaseURL:            os.Getenv(EnvBaseURL),
		ServiceOwnerKey:    os.Getenv(EnvServiceOwnerKey),
		ServiceOwnerSecret: os.Getenv(EnvServiceOwnerSecret),
		ServiceKey:         os.Getenv(EnvServiceKey),
		ServiceSecret:      os.Getenv(EnvServiceSecret),
	}

	var err error
	if cfg.ConnectTimeout, err = timeoutFromEnv(EnvConnectTimeoutMS, DefaultConnectTimeout); err != nil {
		return nil, err
	}
	if cfg.ReadTimeout, err = timeoutFromEnv(EnvReadTimeoutMS, DefaultReadTimeout); err != nil {
		return nil, err
	}

	if raw := os.Getenv(EnvProofKey); raw != "" {
		key, err := ParseProofKey([]byte(raw))
		if err != nil {
			return nil, err
		}
		cfg.ProofKey = key
	} else if fpath := os.Getenv(EnvProofKeyFile); fpath != "" {
		key, err := LoadProofKeyFile(fpath)
		if err != nil {
			return nil, err
		}
		cfg.ProofKey = key
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func timeoutFromEnv(name string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer (milliseconds), got %q", name, raw)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// Normalize strips the trailing "/" from the base URL so path joining is
// uniform everywhere downstream.
func (c *Config) Normalize() {
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
}

func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("missing API base URL (%s)", EnvBaseURL)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid API base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API base URL must include scheme and host: %q", c.BaseURL)
	}
	if c.ConnectTimeout < 0 || c.ReadTimeout < 0 {
		return fmt.Errorf("timeouts must be non-negative")
	}
	return nil
}

// ParseProofKey parses a proof-signing key from JWK JSON.
func ParseProofKey(raw []byte) (jwk.Key, error) {
	key, err := jwk.ParseKey(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing proof signing key: %w", err)
	}
	return key, nil
}

// LoadProofKeyFile reads a proof-signing key from a JWK JSON file on disk.
func LoadProofKeyFile(fpath string) (jwk.Key, error) {
	raw, err := os.ReadFile(fpath)
	if err != nil {
		return nil, fmt.Errorf("reading proof signing key file: %w", err)
	}
	return ParseProofKey(raw)
}
