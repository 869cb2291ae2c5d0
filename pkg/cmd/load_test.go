package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yami-cli/yami/pkg/cmd/testutil"
)

func TestLoadCollection(t *testing.T) {
	h := &cliHarness{}

	res := h.run(t, "--uri", "http://localhost:19530", "load", "collection", "docs")
	require.Equal(t, 0, res.code)
	require.Equal(t, 1, h.fake.CallCount("LoadCollection"))
	require.False(t, h.fake.LastAsync)

	var msg struct {
		Message string `json:"message"`
	}
	res.envelope(t).DataInto(t, &msg)
	require.Equal(t, "Collection 'docs' loaded", msg.Message)
}

func TestLoadCollectionAsync(t *testing.T) {
	h := &cliHarness{}

	res := h.run(t, "--uri", "http://localhost:19530", "load", "collection", "--async", "docs")
	require.Equal(t, 0, res.code)
	require.True(t, h.fake.LastAsync)

	var msg struct {
		Message string `json:"message"`
	}
	res.envelope(t).DataInto(t, &msg)
	require.Equal(t, "Load of 'docs' started", msg.Message)
}

func TestLoadPartitions(t *testing.T) {
	h := &cliHarness{}

	res := h.run(t, "--uri", "http://localhost:19530",
		"load", "collection", "--partitions", "p1,p2", "docs")
	require.Equal(t, 0, res.code)
	require.Equal(t, 1, h.fake.CallCount("LoadPartitions"))
	require.Zero(t, h.fake.CallCount("LoadCollection"))
}

func TestLoadRelease(t *testing.T) {
	h := &cliHarness{}

	res := h.run(t, "--uri", "http://localhost:19530", "load", "release", "docs")
	require.Equal(t, 0, res.code)
	require.Equal(t, 1, h.fake.CallCount("ReleaseCollection"))

	res = h.run(t, "--uri", "http://localhost:19530",
		"load", "release", "--partitions", "p1", "docs")
	require.Equal(t, 0, res.code)
	require.Equal(t, 1, h.fake.CallCount("ReleasePartitions"))
}

func TestLoadState(t *testing.T) {
	h := &cliHarness{fake: &testutil.Fake{State: "Loaded"}}

	res := h.run(t, "--uri", "http://localhost:19530", "load", "state", "docs")
	require.Equal(t, 0, res.code)

	var payload struct {
		Collection string `json:"collection"`
		State      string `json:"state"`
	}
	res.envelope(t).DataInto(t, &payload)
	require.Equal(t, "docs", payload.Collection)
	require.Equal(t, "Loaded", payload.State)
}

func TestLoadProgress(t *testing.T) {
	h := &cliHarness{fake: &testutil.Fake{Progress: []int64{40}}}

	res := h.run(t, "--uri", "http://localhost:19530", "load", "progress", "docs")
	require.Equal(t, 0, res.code)

	var payload struct {
		Collection string `json:"collection"`
		Progress   int64  `json:"progress"`
	}
	res.envelope(t).DataInto(t, &payload)
	require.Equal(t, int64(40), payload.Progress)
}

func TestLoadWaitPollsUntilComplete(t *testing.T) {
	h := &cliHarness{fake: &testutil.Fake{Progress: []int64{40, 80, 100}}}

	res := h.run(t, "--uri", "http://localhost:19530",
		"load", "wait", "--interval", "0", "--timeout", "30", "docs")
	require.Equal(t, 0, res.code)
	require.Equal(t, 3, h.fake.CallCount("LoadProgress"))

	var payload struct {
		Progress int64 `json:"progress"`
	}
	res.envelope(t).DataInto(t, &payload)
	require.Equal(t, int64(100), payload.Progress)
}

func TestLoadWaitTimeout(t *testing.T) {
	// One stalled poll, then a zero timeout fires while the default
	// 2 second interval is still pending.
	h := &cliHarness{fake: &testutil.Fake{Progress: []int64{40, 40, 40}}}

	res := h.run(t, "--uri", "http://localhost:19530",
		"load", "wait", "--timeout", "0", "docs")
	require.Equal(t, 1, res.code)

	env := res.envelope(t)
	require.Equal(t, "CONNECTION_ERROR", env.Error.Code)
	require.Contains(t, env.Error.Message, "did not finish loading within")
	require.Equal(t, 1, h.fake.CallCount("LoadProgress"))
}
