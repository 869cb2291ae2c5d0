package testutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// Envelope mirrors the agent-mode response shape for assertions.
type Envelope struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *EnvelopeError  `json:"error"`
	Meta  *EnvelopeMeta   `json:"meta"`
}

// EnvelopeError is the error object inside a failed envelope.
type EnvelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint"`
}

// EnvelopeMeta is the envelope's meta object. Count is a pointer so
// tests can tell "absent" from zero.
type EnvelopeMeta struct {
	Command    string `json:"command"`
	DurationMS int64  `json:"duration_ms"`
	Count      *int   `json:"count"`
}

// DecodeEnvelope parses one agent-mode envelope from raw output.
func DecodeEnvelope(t *testing.T, raw []byte) Envelope {
	t.Helper()

	var env Envelope
	require.NoError(t, json.Unmarshal(raw, &env), "not an envelope: %s", raw)
	return env
}

// DataInto unmarshals the envelope's data payload into v.
func (e Envelope) DataInto(t *testing.T, v any) {
	t.Helper()
	require.NotNil(t, e.Data, "envelope has no data")
	require.NoError(t, json.Unmarshal(e.Data, v))
}
