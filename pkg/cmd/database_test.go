package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yami-cli/yami/pkg/cmd/testutil"
	"github.com/yami-cli/yami/pkg/milvus"
)

func TestDatabaseCreate(t *testing.T) {
	h := &cliHarness{}

	res := h.run(t, "--uri", "http://localhost:19530", "database", "create", "staging")
	require.Equal(t, 0, res.code)
	require.Equal(t, 1, h.fake.CallCount("CreateDatabase"))
	require.Equal(t, "Database 'staging' created", decodeMessage(t, res))
}

func TestDatabaseList(t *testing.T) {
	h := &cliHarness{fake: &testutil.Fake{Databases: []string{"default", "staging"}}}

	res := h.run(t, "--uri", "http://localhost:19530", "database", "list")
	require.Equal(t, 0, res.code)
	require.Equal(t, 2, *res.envelope(t).Meta.Count)
}

func TestDatabaseDropIsGated(t *testing.T) {
	h := &cliHarness{}

	res := h.run(t, "--uri", "http://localhost:19530", "database", "drop", "staging")
	require.Equal(t, 1, res.code)
	require.Contains(t, res.envelope(t).Error.Message, "aborted")
	require.Zero(t, h.fake.CallCount("DropDatabase"))

	res = h.run(t, "--force", "--uri", "http://localhost:19530", "database", "drop", "staging")
	require.Equal(t, 0, res.code)
	require.Equal(t, 1, h.fake.CallCount("DropDatabase"))
	require.Equal(t, "Database 'staging' dropped", decodeMessage(t, res))
}

func TestPartitionCreate(t *testing.T) {
	h := &cliHarness{}

	res := h.run(t, "--uri", "http://localhost:19530", "partition", "create", "docs", "2024")
	require.Equal(t, 0, res.code)
	require.Equal(t, 1, h.fake.CallCount("CreatePartition"))
	require.Equal(t, "Partition '2024' created", decodeMessage(t, res))
}

func TestPartitionList(t *testing.T) {
	h := &cliHarness{fake: &testutil.Fake{Partitions: []milvus.PartitionInfo{
		{Name: "_default", ID: 1},
		{Name: "2024", ID: 2},
	}}}

	res := h.run(t, "--uri", "http://localhost:19530", "partition", "list", "docs")
	require.Equal(t, 0, res.code)

	env := res.envelope(t)
	require.Equal(t, 2, *env.Meta.Count)

	var partitions []milvus.PartitionInfo
	env.DataInto(t, &partitions)
	require.Equal(t, "2024", partitions[1].Name)
}

func TestPartitionHas(t *testing.T) {
	h := &cliHarness{fake: &testutil.Fake{Exists: false}}

	res := h.run(t, "--uri", "http://localhost:19530", "partition", "has", "docs", "2024")
	require.Equal(t, 0, res.code)

	var payload struct {
		Collection string `json:"collection"`
		Partition  string `json:"partition"`
		Exists     bool   `json:"exists"`
	}
	res.envelope(t).DataInto(t, &payload)
	require.Equal(t, "docs", payload.Collection)
	require.Equal(t, "2024", payload.Partition)
	require.False(t, payload.Exists)
}

func TestPartitionDropIsGated(t *testing.T) {
	h := &cliHarness{}

	res := h.run(t, "--uri", "http://localhost:19530", "partition", "drop", "docs", "2024")
	require.Equal(t, 1, res.code)
	require.Zero(t, h.fake.CallCount("DropPartition"))

	res = h.run(t, "--force", "--uri", "http://localhost:19530", "partition", "drop", "docs", "2024")
	require.Equal(t, 0, res.code)
	require.Equal(t, 1, h.fake.CallCount("DropPartition"))
	require.Equal(t, "Partition '2024' dropped", decodeMessage(t, res))
}
