package milvus

import (
	"encoding/json"
	"testing"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"github.com/stretchr/testify/require"
	"github.com/yami-cli/yami/pkg/errcode"
)

func TestSearchParamSelection(t *testing.T) {
	sp, err := searchParam(0, 64)
	require.NoError(t, err)
	require.Equal(t, 64, sp.Params()["ef"])

	sp, err = searchParam(16, 0)
	require.NoError(t, err)
	require.Equal(t, 16, sp.Params()["nprobe"])

	sp, err = searchParam(0, 0)
	require.NoError(t, err)
	require.Equal(t, 1, sp.Params()["level"])
}

func TestSearchHitMarshalOrder(t *testing.T) {
	hit := SearchHit{
		ID:       int64(7),
		Distance: 0.25,
		Entity: map[string]any{
			"year":  2021,
			"title": "intro",
			"id":    int64(999),
		},
	}
	raw, err := json.Marshal(hit)
	require.NoError(t, err)
	require.Equal(t, `{"id":7,"distance":0.25,"title":"intro","year":2021}`, string(raw))
}

func TestRankerForDefaultsToRRF(t *testing.T) {
	r, err := rankerFor(HybridRequest{Requests: make([]SubSearch, 2)})
	require.NoError(t, err)
	require.NotNil(t, r)
}

func TestRankerForWeighted(t *testing.T) {
	r, err := rankerFor(HybridRequest{
		Requests: make([]SubSearch, 2),
		Weights:  []float64{0.7, 0.3},
	})
	require.NoError(t, err)
	require.NotNil(t, r)
}

func TestRankerForWeightCountMismatch(t *testing.T) {
	_, err := rankerFor(HybridRequest{
		Requests: make([]SubSearch, 3),
		Weights:  []float64{0.7, 0.3},
	})
	require.Error(t, err)
	ce, ok := errcode.From(err)
	require.True(t, ok)
	require.Equal(t, errcode.ValidationError, ce.Code)
	require.Contains(t, ce.Message, "got 2 weights for 3 sub-searches")
}

func TestFlattenHits(t *testing.T) {
	results := []client.SearchResult{{
		ResultCount: 2,
		IDs:         entity.NewColumnInt64("id", []int64{1, 2}),
		Fields:      client.ResultSet{entity.NewColumnVarChar("title", []string{"a", "b"})},
		Scores:      []float32{0.9, 0.4},
	}}

	hits := flattenHits(results)
	require.Len(t, hits, 2)
	require.Equal(t, int64(1), hits[0].ID)
	require.Equal(t, float32(0.9), hits[0].Distance)
	require.Equal(t, "a", hits[0].Entity["title"])
	require.Equal(t, int64(2), hits[1].ID)
}

func TestResultSetRows(t *testing.T) {
	rs := client.ResultSet{
		entity.NewColumnInt64("id", []int64{1, 2}),
		entity.NewColumnVarChar("title", []string{"intro", "follow-up"}),
	}

	rows := resultSetRows(rs)
	require.Len(t, rows, 2)
	require.Equal(t, map[string]any{"id": int64(1), "title": "intro"}, rows[0])
	require.Equal(t, map[string]any{"id": int64(2), "title": "follow-up"}, rows[1])
}

func TestResultSetRowsDecodesJSONColumns(t *testing.T) {
	rs := client.ResultSet{
		entity.NewColumnJSONBytes("meta", [][]byte{[]byte(`{"lang":"en"}`)}),
	}

	rows := resultSetRows(rs)
	require.Len(t, rows, 1)
	require.Equal(t, map[string]any{"lang": "en"}, rows[0]["meta"])
}

func TestResultSetRowsEmpty(t *testing.T) {
	require.Empty(t, resultSetRows(nil))
}
