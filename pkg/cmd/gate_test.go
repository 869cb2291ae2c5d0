package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yami-cli/yami/pkg/cmd/testutil"
	"github.com/yami-cli/yami/pkg/errcode"
)

func TestGateForceSkipsPrompt(t *testing.T) {
	var out bytes.Buffer
	g := &gate{force: true, interactive: false, in: strings.NewReader(""), out: &out}

	require.NoError(t, g.confirm("Drop everything?"))
	require.Empty(t, out.String(), "--force never prints a prompt")
}

func TestGateNonInteractiveAborts(t *testing.T) {
	var out bytes.Buffer
	g := &gate{interactive: false, in: strings.NewReader("y\n"), out: &out}

	err := g.confirm("Drop everything?")
	require.ErrorIs(t, err, errcode.ErrAborted)
	require.Empty(t, out.String(), "no prompt may reach a non-terminal stream")
}

func TestGateAnswers(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		aborted bool
	}{
		{"yes short", "y\n", false},
		{"yes long", "yes\n", false},
		{"yes upper", "Y\n", false},
		{"yes padded", "  yes  \n", false},
		{"no short", "n\n", true},
		{"no long", "no\n", true},
		{"empty line", "\n", true},
		{"gibberish", "sure why not\n", true},
		{"eof", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			g := &gate{interactive: true, in: strings.NewReader(tt.input), out: &out}

			err := g.confirm("Drop collection 'demo'?")
			if tt.aborted {
				require.ErrorIs(t, err, errcode.ErrAborted)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, "Drop collection 'demo'? [y/N]: ", out.String())
		})
	}
}

func TestGateBlocksDropWithoutTerminal(t *testing.T) {
	h := &cliHarness{}

	res := h.run(t, "--uri", "http://localhost:19530", "collection", "drop", "demo")
	require.Equal(t, 1, res.code)

	env := res.envelope(t)
	require.False(t, env.OK)
	require.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	require.Contains(t, env.Error.Message, "aborted")
	require.Contains(t, env.Error.Message, "--force")
	require.NotNil(t, env.Meta)
	require.Equal(t, "collection drop", env.Meta.Command)

	// The abort happens before any connection is made.
	require.Zero(t, h.fake.Dials)
	require.Zero(t, h.fake.TotalCalls())
}

func TestGateForceRunsDrop(t *testing.T) {
	h := &cliHarness{}

	res := h.run(t, "--force", "--uri", "http://localhost:19530", "collection", "drop", "demo")
	require.Equal(t, 0, res.code)
	require.Equal(t, 1, h.fake.CallCount("DropCollection"))

	env := res.envelope(t)
	var msg struct {
		Message string `json:"message"`
	}
	env.DataInto(t, &msg)
	require.Equal(t, "Collection 'demo' dropped", msg.Message)
}

func TestGateGuardsEveryDestructiveCommand(t *testing.T) {
	destructive := [][]string{
		{"collection", "drop", "demo"},
		{"database", "drop", "staging"},
		{"partition", "drop", "demo", "p1"},
		{"data", "delete", "--ids", "1", "demo"},
	}

	for _, args := range destructive {
		t.Run(strings.Join(args[:2], " "), func(t *testing.T) {
			h := &cliHarness{}

			res := h.run(t, append([]string{"--uri", "http://localhost:19530"}, args...)...)
			require.Equal(t, 1, res.code)
			require.Contains(t, res.envelope(t).Error.Message, "aborted")
			require.Zero(t, h.fake.Dials)
		})
	}
}

func TestGateLeavesNonDestructiveAlone(t *testing.T) {
	h := &cliHarness{fake: &testutil.Fake{Users: []string{"root"}}}

	// No --force, non-interactive stdin: reads and non-gated writes
	// still run.
	res := h.run(t, "--uri", "http://localhost:19530", "user", "list")
	require.Equal(t, 0, res.code)
	require.Equal(t, 1, h.fake.CallCount("ListUsers"))

	res = h.run(t, "--uri", "http://localhost:19530", "alias", "drop", "docs-alias")
	require.Equal(t, 0, res.code)
	require.Equal(t, 1, h.fake.CallCount("DropAlias"))
}
