package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yami-cli/yami/pkg/cmd/testutil"
	"github.com/yami-cli/yami/pkg/milvus"
)

func TestCompactRun(t *testing.T) {
	h := &cliHarness{fake: &testutil.Fake{JobID: 4711}}

	res := h.run(t, "--uri", "http://localhost:19530", "compact", "run", "docs")
	require.Equal(t, 0, res.code)

	var job struct {
		JobID      int64  `json:"job_id"`
		Collection string `json:"collection"`
	}
	res.envelope(t).DataInto(t, &job)
	require.Equal(t, int64(4711), job.JobID)
	require.Equal(t, "docs", job.Collection)
}

func TestCompactState(t *testing.T) {
	h := &cliHarness{fake: &testutil.Fake{CompactStates: []string{"Executing"}}}

	res := h.run(t, "--uri", "http://localhost:19530", "compact", "state", "4711")
	require.Equal(t, 0, res.code)

	var payload struct {
		JobID int64  `json:"job_id"`
		State string `json:"state"`
	}
	res.envelope(t).DataInto(t, &payload)
	require.Equal(t, int64(4711), payload.JobID)
	require.Equal(t, "Executing", payload.State)
}

func TestCompactBadJobID(t *testing.T) {
	h := &cliHarness{}

	res := h.run(t, "--uri", "http://localhost:19530", "compact", "state", "soon")
	require.Equal(t, 2, res.code)
	require.Contains(t, res.envelope(t).Error.Message, `job id must be an integer, got "soon"`)
}

func TestCompactPlans(t *testing.T) {
	h := &cliHarness{fake: &testutil.Fake{Plans: &milvus.CompactionPlans{
		JobID: 4711,
		State: "Completed",
		Plans: []milvus.CompactionPlanInfo{{Sources: []int64{1, 2}, Target: 3}},
	}}}

	res := h.run(t, "--uri", "http://localhost:19530", "compact", "plans", "4711")
	require.Equal(t, 0, res.code)

	var plans milvus.CompactionPlans
	res.envelope(t).DataInto(t, &plans)
	require.Len(t, plans.Plans, 1)
	require.Equal(t, int64(3), plans.Plans[0].Target)
}

func TestCompactWaitPollsUntilComplete(t *testing.T) {
	h := &cliHarness{fake: &testutil.Fake{CompactStates: []string{"Executing", "Executing", "Completed"}}}

	res := h.run(t, "--uri", "http://localhost:19530",
		"compact", "wait", "--interval", "0", "--timeout", "30", "4711")
	require.Equal(t, 0, res.code)
	require.Equal(t, 3, h.fake.CallCount("CompactionState"))

	var payload struct {
		State string `json:"state"`
	}
	res.envelope(t).DataInto(t, &payload)
	require.Equal(t, "Completed", payload.State)
}

func TestCompactWaitTimeout(t *testing.T) {
	h := &cliHarness{fake: &testutil.Fake{CompactStates: []string{"Executing", "Executing"}}}

	res := h.run(t, "--uri", "http://localhost:19530",
		"compact", "wait", "--timeout", "0", "4711")
	require.Equal(t, 1, res.code)

	env := res.envelope(t)
	require.Equal(t, "CONNECTION_ERROR", env.Error.Code)
	require.Contains(t, env.Error.Message, "compaction job 4711 did not complete within")
}
