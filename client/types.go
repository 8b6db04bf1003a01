package client

import (
	"bytes"
	"encoding/json"
)

// ScopeList is the scope-list payload for the requestable-scopes update
// endpoint. That endpoint treats an empty list and an absent list as the same
// thing, so a nil ScopeList marshals as "[]" and a JSON null unmarshals as an
// empty (non-nil) list. Other endpoints should use plain []string.
type ScopeList []string

func (s ScopeList) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}

func (s *ScopeList) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*s = ScopeList{}
		return nil
	}
	var raw []string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == nil {
		raw = []string{}
	}
	*s = ScopeList(raw)
	return nil
}
