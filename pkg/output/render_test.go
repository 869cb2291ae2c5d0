package output

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/require"
	"github.com/yami-cli/yami/pkg/errcode"
	"gopkg.in/yaml.v3"
	"gotest.tools/v3/golden"
)

func TestMain(m *testing.M) {
	pterm.DisableColor()
	os.Exit(m.Run())
}

type colRow struct {
	Name string `json:"name"`
}

type versionPayload struct {
	Version string `json:"version"`
}

type compactStarted struct {
	JobID int64 `json:"job_id"`
}

func (compactStarted) Note() string { return "Check status with: yami compact state 42" }

func renderTo(t *testing.T, e *Envelope, opts Options) (stdout, stderr string) {
	t.Helper()

	var out, errOut bytes.Buffer
	opts.Stdout = &out
	opts.Stderr = &errOut
	require.NoError(t, NewRenderer(opts).Render(e))

	return out.String(), errOut.String()
}

func TestRenderAgentJSONList(t *testing.T) {
	e := Build("collection list", []colRow{{"articles"}, {"products"}}, nil, 12*time.Millisecond)

	out, errOut := renderTo(t, e, Options{Mode: ModeAgent})
	golden.Assert(t, out, "envelope_list.golden")
	require.Empty(t, errOut)
}

func TestRenderAgentJSONError(t *testing.T) {
	e := Build("collection describe", nil,
		errcode.Newf(errcode.NotFound, "collection %q not found", "ghost"), 5*time.Millisecond)

	// Error envelopes stay on stdout in agent mode: one stream to parse.
	out, errOut := renderTo(t, e, Options{Mode: ModeAgent})
	golden.Assert(t, out, "envelope_error.golden")
	require.Empty(t, errOut)
}

func TestRenderAgentYAML(t *testing.T) {
	e := Build("server version", versionPayload{"v2.4.4"}, nil, 7*time.Millisecond)

	out, _ := renderTo(t, e, Options{Mode: ModeAgent, Format: FormatYAML})
	golden.Assert(t, out, "envelope_version_yaml.golden")
}

func TestRenderAgentYAMLKeepsListShape(t *testing.T) {
	e := Build("collection list", []colRow{{"articles"}, {"products"}}, nil, 0)

	out, _ := renderTo(t, e, Options{Mode: ModeAgent, Format: FormatYAML})
	require.Contains(t, out, "- name: articles")
	require.Contains(t, out, "- name: products")
	require.Contains(t, out, "count: 2")
}

func TestRenderPlainJSONList(t *testing.T) {
	e := Build("collection list", []colRow{{"articles"}, {"products"}}, nil, 12*time.Millisecond)

	out, _ := renderTo(t, e, Options{Mode: ModeHuman, Format: FormatJSON})
	golden.Assert(t, out, "plain_list.golden")
}

func TestRenderPlainJSONMessage(t *testing.T) {
	e := Build("collection create", Messagef("Collection '%s' created", "demo"), nil, 0)

	out, _ := renderTo(t, e, Options{Mode: ModeHuman, Format: FormatJSON})
	require.Equal(t, `{
  "status": "success",
  "message": "Collection 'demo' created"
}
`, out)
}

func TestRenderPlainJSONError(t *testing.T) {
	e := Build("collection drop", nil, errcode.Bare(errcode.ConnectionError, "connection refused"), 0)

	out, errOut := renderTo(t, e, Options{Mode: ModeHuman, Format: FormatJSON})
	require.Equal(t, `{
  "error": {
    "code": "CONNECTION_ERROR",
    "message": "connection refused"
  }
}
`, out)
	require.Empty(t, errOut)
}

func TestRenderPlainYAML(t *testing.T) {
	e := Build("server version", versionPayload{"v2.4.4"}, nil, 0)

	out, _ := renderTo(t, e, Options{Mode: ModeHuman, Format: FormatYAML})
	require.Equal(t, "version: v2.4.4\n", out)
}

func TestRenderTableListOfObjects(t *testing.T) {
	e := Build("collection list", []colRow{{"articles"}, {"products"}}, nil, 0)

	out, errOut := renderTo(t, e, Options{Mode: ModeHuman, Format: FormatTable})
	require.Contains(t, out, "name")
	require.Contains(t, out, "articles")
	require.Contains(t, out, "products")
	require.Empty(t, errOut)
}

func TestRenderTableStringList(t *testing.T) {
	e := Build("user list", []string{"root", "reader"}, nil, 0)

	out, _ := renderTo(t, e, Options{Mode: ModeHuman, Format: FormatTable})
	require.Contains(t, out, "Name")
	require.Contains(t, out, "root")
	require.Contains(t, out, "reader")
}

func TestRenderTableScalarList(t *testing.T) {
	e := Build("x", []int{1, 2}, nil, 0)

	out, _ := renderTo(t, e, Options{Mode: ModeHuman, Format: FormatTable})
	require.Equal(t, "1\n2\n", out)
}

func TestRenderTableSingleObject(t *testing.T) {
	e := Build("server version", versionPayload{"v2.4.4"}, nil, 0)

	out, _ := renderTo(t, e, Options{Mode: ModeHuman, Format: FormatTable})
	require.Contains(t, out, "Property")
	require.Contains(t, out, "Value")
	require.Contains(t, out, "version")
	require.Contains(t, out, "v2.4.4")
}

func TestRenderTableNestedValuesStayCompact(t *testing.T) {
	type indexRow struct {
		Name   string            `json:"name"`
		Params map[string]string `json:"params"`
	}
	e := Build("index list", []indexRow{{Name: "vector_idx", Params: map[string]string{"nlist": "128"}}}, nil, 0)

	out, _ := renderTo(t, e, Options{Mode: ModeHuman, Format: FormatTable})
	require.Contains(t, out, `{"nlist":"128"}`)
}

func TestRenderTableMessage(t *testing.T) {
	e := Build("collection create", Messagef("Collection 'demo' created"), nil, 0)

	out, _ := renderTo(t, e, Options{Mode: ModeHuman, Format: FormatTable})
	require.Contains(t, out, "SUCCESS")
	require.Contains(t, out, "Collection 'demo' created")

	out, _ = renderTo(t, e, Options{Mode: ModeHuman, Format: FormatTable, Quiet: true})
	require.Empty(t, out)
}

func TestRenderTableError(t *testing.T) {
	e := Build("collection describe", nil,
		errcode.Newf(errcode.NotFound, "collection %q not found", "ghost"), 0)

	out, errOut := renderTo(t, e, Options{Mode: ModeHuman, Format: FormatTable})
	require.Empty(t, out)
	require.Contains(t, errOut, "ERROR")
	require.Contains(t, errOut, `collection "ghost" not found`)
	require.Contains(t, errOut, "Hint:")
}

func TestRenderTableEmptyList(t *testing.T) {
	e := Build("collection list", []colRow{}, nil, 0)

	out, _ := renderTo(t, e, Options{Mode: ModeHuman, Format: FormatTable})
	require.Contains(t, out, "No data found")

	out, _ = renderTo(t, e, Options{Mode: ModeHuman, Format: FormatTable, Quiet: true})
	require.Empty(t, out)
}

func TestRenderTableNilData(t *testing.T) {
	e := Build("x", nil, nil, 0)

	out, _ := renderTo(t, e, Options{Mode: ModeHuman, Format: FormatTable})
	require.Contains(t, out, "No data")
}

func TestRenderNoteShownOnlyInHumanTables(t *testing.T) {
	e := Build("compact run", compactStarted{JobID: 42}, nil, 0)

	out, _ := renderTo(t, e, Options{Mode: ModeHuman, Format: FormatTable})
	require.Contains(t, out, "job_id")
	require.Contains(t, out, "42")
	require.Contains(t, out, "Check status with: yami compact state 42")

	out, _ = renderTo(t, e, Options{Mode: ModeAgent})
	require.NotContains(t, out, "Check status")

	out, _ = renderTo(t, e, Options{Mode: ModeHuman, Format: FormatTable, Quiet: true})
	require.NotContains(t, out, "Check status")
}

func TestOrderedKeysFollowStructOrder(t *testing.T) {
	type ordered struct {
		Zulu  string `json:"zulu"`
		Alpha string `json:"alpha"`
		Mike  string `json:"mike"`
	}

	raw, err := json.Marshal(ordered{"z", "a", "m"})
	require.NoError(t, err)

	keys, err := orderedKeys(raw)
	require.NoError(t, err)
	require.Equal(t, []string{"zulu", "alpha", "mike"}, keys)
}

func TestYAMLNodePreservesScalarTypes(t *testing.T) {
	raw, err := json.Marshal(map[string]any{
		"id":    "123",
		"count": 5,
		"ratio": 0.5,
		"on":    true,
		"gone":  nil,
	})
	require.NoError(t, err)

	node, err := yamlNode(raw)
	require.NoError(t, err)

	out, err := yaml.Marshal(node)
	require.NoError(t, err)

	var back map[string]any
	require.NoError(t, yaml.Unmarshal(out, &back))
	require.Equal(t, "123", back["id"], "numeric-looking strings must stay strings")
	require.Equal(t, 5, back["count"])
	require.Equal(t, 0.5, back["ratio"])
	require.Equal(t, true, back["on"])
	require.Nil(t, back["gone"])
}
