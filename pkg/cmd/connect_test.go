package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yami-cli/yami/pkg/cmd/testutil"
)

func TestConnect(t *testing.T) {
	h := &cliHarness{fake: &testutil.Fake{ServerVersion: "v2.4.4"}}

	res := h.run(t, "connect", "http://localhost:19530")
	require.Equal(t, 0, res.code)
	require.Equal(t, 1, h.fake.Dials)

	env := res.envelope(t)
	require.Equal(t, "connect", env.Meta.Command)

	var info ConnectInfo
	env.DataInto(t, &info)
	require.Equal(t, "http://localhost:19530", info.URI)
	require.Equal(t, "v2.4.4", info.ServerVersion)
}

func TestConnectPositionalBeatsFlag(t *testing.T) {
	h := &cliHarness{fake: &testutil.Fake{ServerVersion: "v2.4.4"}}

	res := h.run(t, "--uri", "http://flag.example:19530", "connect", "http://positional.example:19530")
	require.Equal(t, 0, res.code)
	require.Equal(t, "http://positional.example:19530", h.fake.LastConn.URI)
}

func TestConnectNothingResolves(t *testing.T) {
	h := &cliHarness{}

	res := h.run(t, "connect")
	require.Equal(t, 1, res.code)
	require.Contains(t, res.envelope(t).Error.Message, "no Milvus URI resolved")
	require.Zero(t, h.fake.Dials)
}

func TestConnectExtraArgument(t *testing.T) {
	h := &cliHarness{}

	res := h.run(t, "connect", "http://a:19530", "http://b:19530")
	require.Equal(t, 2, res.code)
	require.Contains(t, res.envelope(t).Error.Message, "unexpected argument")
}
