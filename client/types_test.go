package client

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeListMarshal(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	// nil and empty are wire-identical
	nilList, err := json.Marshal(ScopeList(nil))
	require.NoError(err)
	assert.Equal("[]", string(nilList))

	emptyList, err := json.Marshal(ScopeList{})
	require.NoError(err)
	assert.Equal("[]", string(emptyList))

	full, err := json.Marshal(ScopeList{"profile", "email"})
	require.NoError(err)
	assert.Equal(`["profile","email"]`, string(full))

	// nested in a request payload
	payload, err := json.Marshal(struct {
		Scopes ScopeList `json:"scopes"`
	}{})
	require.NoError(err)
	assert.Equal(`{"scopes":[]}`, string(payload))
}

func TestScopeListUnmarshal(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	var fromNull ScopeList
	require.NoError(json.Unmarshal([]byte("null"), &fromNull))
	assert.NotNil(fromNull)
	assert.Empty(fromNull)

	var fromEmpty ScopeList
	require.NoError(json.Unmarshal([]byte("[]"), &fromEmpty))
	assert.NotNil(fromEmpty)
	assert.Empty(fromEmpty)

	var fromList ScopeList
	require.NoError(json.Unmarshal([]byte(`["a","b"]`), &fromList))
	assert.Equal(ScopeList{"a", "b"}, fromList)

	var bad ScopeList
	assert.Error(json.Unmarshal([]byte(`{"not":"a list"}`), &bad))
}
