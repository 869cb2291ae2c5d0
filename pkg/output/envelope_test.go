package output

import (
	"encoding/json"
	"testing"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/yami-cli/yami/pkg/errcode"
)

func TestParseMode(t *testing.T) {
	m, err := ParseMode("agent")
	require.NoError(t, err)
	require.Equal(t, ModeAgent, m)

	_, err = ParseMode("robot")
	require.Error(t, err)
	require.Contains(t, err.Error(), `invalid mode "robot"`)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("yaml")
	require.NoError(t, err)
	require.Equal(t, FormatYAML, f)

	_, err = ParseFormat("xml")
	require.Error(t, err)
}

func TestDefaultFormat(t *testing.T) {
	require.Equal(t, FormatJSON, DefaultFormat(ModeAgent))
	require.Equal(t, FormatTable, DefaultFormat(ModeHuman))
}

func TestValidateFormat(t *testing.T) {
	require.NoError(t, ValidateFormat(ModeHuman, FormatTable))
	require.NoError(t, ValidateFormat(ModeAgent, FormatJSON))
	require.NoError(t, ValidateFormat(ModeAgent, FormatYAML))

	err := ValidateFormat(ModeAgent, FormatTable)
	require.Error(t, err)
	require.Contains(t, err.Error(), "not valid in agent mode")
}

func TestBuildSuccess(t *testing.T) {
	e := Build("collection list", []string{"a", "b"}, nil, 12*time.Millisecond)

	require.True(t, e.OK)
	require.Nil(t, e.Err)
	require.Equal(t, "collection list", e.Meta.Command)
	require.EqualValues(t, 12, e.Meta.DurationMS)
	require.NotNil(t, e.Meta.Count)
	require.Equal(t, 2, *e.Meta.Count)
}

func TestBuildCountOnlyForSequences(t *testing.T) {
	zero := 0
	one := 1

	tests := []struct {
		name string
		data any
		want *int
	}{
		{name: "slice", data: []string{"a"}, want: &one},
		{name: "empty slice", data: []int{}, want: &zero},
		{name: "object", data: map[string]string{"k": "v"}, want: nil},
		{name: "message", data: Messagef("done"), want: nil},
		{name: "scalar", data: "text", want: nil},
		{name: "bytes", data: []byte("raw"), want: nil},
		{name: "nil", data: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Build("x", tt.data, nil, 0)
			if tt.want == nil {
				require.Nil(t, e.Meta.Count)
			} else {
				require.NotNil(t, e.Meta.Count)
				require.Equal(t, *tt.want, *e.Meta.Count)
			}
		})
	}
}

func TestBuildClassifiedError(t *testing.T) {
	cause := errcode.Newf(errcode.NotFound, "collection %q not found", "ghost")
	e := Build("collection describe", nil, pkgerrors.Wrap(cause, "describe"), 5*time.Millisecond)

	require.False(t, e.OK)
	require.Equal(t, errcode.NotFound, e.Err.Code)
	require.NotEmpty(t, e.Err.Hint)
	require.Equal(t, "collection describe", e.Meta.Command)
}

func TestBuildUnclassifiedErrorFallsBack(t *testing.T) {
	e := Build("server version", nil, pkgerrors.New("socket hangup"), 0)

	require.False(t, e.OK)
	require.Equal(t, errcode.ConnectionError, e.Err.Code)
	require.Equal(t, "socket hangup", e.Err.Message)
	require.Empty(t, e.Err.Hint, "fallback errors carry no hint")
}

func TestUsageErrorHasNoMeta(t *testing.T) {
	e := UsageError(errcode.New(errcode.MissingArgument, "collection name is required"))

	require.False(t, e.OK)
	require.Nil(t, e.Meta)
	require.Equal(t, errcode.MissingArgument, e.Err.Code)
}

func TestEnvelopeKeyOrder(t *testing.T) {
	e := Build("collection create", Messagef("Collection '%s' created", "demo"), nil, 12*time.Millisecond)

	out, err := json.Marshal(e)
	require.NoError(t, err)
	require.Equal(t,
		`{"ok":true,"data":{"message":"Collection 'demo' created"},"meta":{"command":"collection create","duration_ms":12}}`,
		string(out))
}

func TestEnvelopeErrorKeyOrder(t *testing.T) {
	e := Build("collection drop", nil, errcode.Bare(errcode.ConnectionError, "connection refused"), 3*time.Millisecond)

	out, err := json.Marshal(e)
	require.NoError(t, err)
	require.Equal(t,
		`{"ok":false,"error":{"code":"CONNECTION_ERROR","message":"connection refused"},"meta":{"command":"collection drop","duration_ms":3}}`,
		string(out))
}
