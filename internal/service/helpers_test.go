package service_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// mustField returns the raw JSON of one top-level field of doc.
func mustField(t *testing.T, doc json.RawMessage, field string) json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(doc, &m))
	v, ok := m[field]
	require.True(t, ok, "field %q missing from %s", field, doc)
	return v
}
