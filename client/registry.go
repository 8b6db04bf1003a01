package client

import (
	"context"
	"fmt"

	"github.com/lattice-web/lattice/config"
	"github.com/lattice-web/lattice/dpop"
)

// Caller is the invocation surface shared by all engine versions.
type Caller interface {
	Do(ctx context.Context, req *APIRequest, out any) (bool, error)
}

// Constructor builds a Caller from configuration. Registered per version tag;
// see [Register] and [New].
type Constructor func(cfg *config.Config) (Caller, error)

// DefaultTag is the current engine version.
const DefaultTag = "v1"

// registry maps version tags to constructors. Populated at init time; not
// mutated afterwards, so no locking is needed.
var registry = map[string]Constructor{}

func init() {
	Register(DefaultTag, func(cfg *config.Config) (Caller, error) {
		return NewServiceClient(cfg)
	})
	Register("v1-owner", func(cfg *config.Config) (Caller, error) {
		return NewServiceOwnerClient(cfg)
	})
}

// Register adds a constructor for a version tag. Intended to be called from
// init functions; later registrations for the same tag replace earlier ones.
func Register(tag string, fn Constructor) {
	registry[tag] = fn
}

// New builds an engine for the first tag whose constructor succeeds, trying
// tags in the given order. With no tags, [DefaultTag] is used.
func New(cfg *config.Config, tags ...string) (Caller, error) {
	if len(tags) == 0 {
		tags = []string{DefaultTag}
	}
	var lastErr error
	for _, tag := range tags {
		fn, ok := registry[tag]
		if !ok {
			lastErr = fmt.Errorf("unknown engine version tag: %q", tag)
			continue
		}
		c, err := fn(cfg)
		if err != nil {
			lastErr = err
			continue
		}
		return c, nil
	}
	return nil, lastErr
}

// NewServiceClient builds an APIClient authenticating with the service
// credential pair, with a proof signer when the configuration carries a proof
// key.
func NewServiceClient(cfg *config.Config) (*APIClient, error) {
	return newConfiguredClient(cfg, NewBasicAuth(cfg.ServiceKey, cfg.ServiceSecret))
}

// NewServiceOwnerClient builds an APIClient authenticating with the
// service-owner credential pair.
func NewServiceOwnerClient(cfg *config.Config) (*APIClient, error) {
	return newConfiguredClient(cfg, NewBasicAuth(cfg.ServiceOwnerKey, cfg.ServiceOwnerSecret))
}

func newConfiguredClient(cfg *config.Config, auth AuthMethod) (*APIClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := NewAPIClient(cfg.BaseURL, Settings{
		ConnectTimeout: cfg.ConnectTimeout,
		ReadTimeout:    cfg.ReadTimeout,
	})
	c.Auth = auth
	if cfg.ProofKey != nil {
		signer, err := dpop.NewSigner(cfg.ProofKey)
		if err != nil {
			return nil, err
		}
		c.Proof = signer
	}
	return c, nil
}
