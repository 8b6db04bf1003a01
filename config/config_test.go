package config

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeyJSON(t *testing.T) []byte {
	t.Helper()
	raw, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	key, err := jwk.FromRaw(raw)
	require.NoError(t, err)
	require.NoError(t, key.Set(jwk.AlgorithmKey, jwa.ES256))
	buf, err := json.Marshal(key)
	require.NoError(t, err)
	return buf
}

func TestFromEnv(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	t.Setenv(EnvBaseURL, "https://api.lattice.example/")
	t.Setenv(EnvServiceKey, "svc-key")
	t.Setenv(EnvServiceSecret, "svc-secret")
	t.Setenv(EnvServiceOwnerKey, "owner-key")
	t.Setenv(EnvServiceOwnerSecret, "owner-secret")
	t.Setenv(EnvConnectTimeoutMS, "2500")
	t.Setenv(EnvReadTimeoutMS, "0")
	t.Setenv(EnvProofKey, string(testKeyJSON(t)))

	cfg, err := FromEnv()
	require.NoError(err)

	// trailing slash stripped at configuration time
	assert.Equal("https://api.lattice.example", cfg.BaseURL)
	assert.Equal("svc-key", cfg.ServiceKey)
	assert.Equal("owner-secret", cfg.ServiceOwnerSecret)
	assert.Equal(2500*time.Millisecond, cfg.ConnectTimeout)
	assert.Equal(time.Duration(0), cfg.ReadTimeout)
	assert.NotNil(cfg.ProofKey)
}

func TestFromEnvDefaults(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	t.Setenv(EnvBaseURL, "https://api.lattice.example")
	t.Setenv(EnvProofKey, "")
	t.Setenv(EnvProofKeyFile, "")
	t.Setenv(EnvConnectTimeoutMS, "")
	t.Setenv(EnvReadTimeoutMS, "")

	cfg, err := FromEnv()
	require.NoError(err)
	assert.Equal(DefaultConnectTimeout, cfg.ConnectTimeout)
	assert.Equal(DefaultReadTimeout, cfg.ReadTimeout)
	assert.Nil(cfg.ProofKey)
}

func TestFromEnvValidation(t *testing.T) {
	assert := assert.New(t)

	{
		// missing base URL
		t.Setenv(EnvBaseURL, "")
		_, err := FromEnv()
		assert.Error(err)
	}

	{
		// negative timeout
		t.Setenv(EnvBaseURL, "https://api.lattice.example")
		t.Setenv(EnvConnectTimeoutMS, "-5")
		_, err := FromEnv()
		assert.Error(err)
	}

	{
		// base URL without scheme
		t.Setenv(EnvBaseURL, "api.lattice.example")
		t.Setenv(EnvConnectTimeoutMS, "")
		_, err := FromEnv()
		assert.Error(err)
	}
}

func TestLoadProofKeyFile(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	fpath := filepath.Join(t.TempDir(), "proof.jwk")
	require.NoError(os.WriteFile(fpath, testKeyJSON(t), 0600))

	key, err := LoadProofKeyFile(fpath)
	require.NoError(err)
	assert.Equal("ES256", key.Algorithm().String())

	_, err = LoadProofKeyFile(filepath.Join(t.TempDir(), "missing.jwk"))
	assert.Error(err)

	_, err = ParseProofKey([]byte("not a jwk"))
	assert.Error(err)
}
