package milvus

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"github.com/yami-cli/yami/pkg/errcode"
)

// SearchHit is one search result row. Output fields are flattened next
// to id and distance when serialized.
type SearchHit struct {
	ID       any
	Distance float32
	Entity   map[string]any
}

// MarshalJSON emits id and distance first, then the requested output
// fields in name order. Entity keys shadowing the fixed two are
// dropped since the id column is authoritative.
func (h SearchHit) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"id":`)
	if err := encodeJSON(&buf, h.ID); err != nil {
		return nil, err
	}
	buf.WriteString(`,"distance":`)
	if err := encodeJSON(&buf, h.Distance); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(h.Entity))
	for k := range h.Entity {
		if k == "id" || k == "distance" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		buf.WriteByte(',')
		if err := encodeJSON(&buf, k); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := encodeJSON(&buf, h.Entity[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeJSON(buf *bytes.Buffer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(raw)
	return nil
}

func (m *Client) Search(ctx context.Context, req SearchRequest) ([]SearchHit, error) {
	if len(req.Vector) == 0 {
		return nil, errcode.New(errcode.ValidationError, "search vector is empty")
	}
	sp, err := searchParam(req.NProbe, req.Ef)
	if err != nil {
		return nil, Translate(err)
	}
	var opts []client.SearchQueryOptionFunc
	if req.Offset > 0 {
		opts = append(opts, client.WithOffset(int64(req.Offset)))
	}
	results, err := m.c.Search(ctx, req.Collection, req.Partitions, req.Expr, req.OutputFields,
		[]entity.Vector{entity.FloatVector(req.Vector)}, req.VectorField, req.Metric, req.Limit, sp, opts...)
	if err != nil {
		return nil, Translate(err)
	}
	return flattenHits(results), nil
}

func (m *Client) Query(ctx context.Context, req QueryRequest) ([]map[string]any, error) {
	var opts []client.SearchQueryOptionFunc
	if req.Limit > 0 {
		opts = append(opts, client.WithLimit(int64(req.Limit)))
	}
	if req.Offset > 0 {
		opts = append(opts, client.WithOffset(int64(req.Offset)))
	}
	rs, err := m.c.Query(ctx, req.Collection, req.Partitions, req.Expr, req.OutputFields, opts...)
	if err != nil {
		return nil, Translate(err)
	}
	return resultSetRows(rs), nil
}

// Get fetches entities by primary key, resolving the key field from the
// schema the same way DeleteByIDs does.
func (m *Client) Get(ctx context.Context, collection string, ids, outputFields, partitions []string) ([]map[string]any, error) {
	coll, err := m.c.DescribeCollection(ctx, collection)
	if err != nil {
		return nil, Translate(err)
	}
	expr, err := pkExpr(coll.Schema, ids)
	if err != nil {
		return nil, err
	}
	rs, err := m.c.Query(ctx, collection, partitions, expr, outputFields)
	if err != nil {
		return nil, Translate(err)
	}
	return resultSetRows(rs), nil
}

func (m *Client) HybridSearch(ctx context.Context, req HybridRequest) ([]SearchHit, error) {
	if len(req.Requests) == 0 {
		return nil, errcode.New(errcode.ValidationError, "at least one search request is required")
	}
	subs := make([]*client.ANNSearchRequest, 0, len(req.Requests))
	for _, sub := range req.Requests {
		if len(sub.Vector) == 0 {
			return nil, errcode.Newf(errcode.ValidationError, "sub-search on field %q has no vector", sub.Field)
		}
		sp, err := searchParam(sub.NProbe, sub.Ef)
		if err != nil {
			return nil, Translate(err)
		}
		limit := sub.Limit
		if limit <= 0 {
			limit = req.Limit
		}
		subs = append(subs, client.NewANNSearchRequest(sub.Field, sub.Metric, sub.Expr,
			[]entity.Vector{entity.FloatVector(sub.Vector)}, sp, limit))
	}
	reranker, err := rankerFor(req)
	if err != nil {
		return nil, err
	}
	results, err := m.c.HybridSearch(ctx, req.Collection, req.Partitions, req.Limit, req.OutputFields, reranker, subs)
	if err != nil {
		return nil, Translate(err)
	}
	return flattenHits(results), nil
}

func rankerFor(req HybridRequest) (client.Reranker, error) {
	if len(req.Weights) > 0 {
		if len(req.Weights) != len(req.Requests) {
			return nil, errcode.Newf(errcode.ValidationError, "got %d weights for %d sub-searches", len(req.Weights), len(req.Requests))
		}
		return client.NewWeightedReranker(req.Weights), nil
	}
	rrf := client.NewRRFReranker()
	if req.RRFK > 0 {
		rrf = rrf.WithK(float64(req.RRFK))
	}
	return rrf, nil
}

// searchParam picks index tuning from the flags that were set: ef
// selects HNSW, nprobe selects IVF, neither falls back to AUTOINDEX.
func searchParam(nprobe, ef int) (entity.SearchParam, error) {
	switch {
	case ef > 0:
		return entity.NewIndexHNSWSearchParam(ef)
	case nprobe > 0:
		return entity.NewIndexIvfFlatSearchParam(nprobe)
	default:
		return entity.NewIndexAUTOINDEXSearchParam(1)
	}
}

func flattenHits(results []client.SearchResult) []SearchHit {
	hits := make([]SearchHit, 0)
	for _, res := range results {
		for i := 0; i < res.ResultCount; i++ {
			hit := SearchHit{Entity: make(map[string]any, len(res.Fields))}
			if i < len(res.Scores) {
				hit.Distance = res.Scores[i]
			}
			if res.IDs != nil {
				if v, err := res.IDs.Get(i); err == nil {
					hit.ID = v
				}
			}
			for _, col := range res.Fields {
				hit.Entity[col.Name()] = columnValue(col, i)
			}
			hits = append(hits, hit)
		}
	}
	return hits
}

func resultSetRows(rs client.ResultSet) []map[string]any {
	rows := make([]map[string]any, 0)
	if len(rs) == 0 {
		return rows
	}
	n := rs[0].Len()
	for i := 0; i < n; i++ {
		row := make(map[string]any, len(rs))
		for _, col := range rs {
			if i < col.Len() {
				row[col.Name()] = columnValue(col, i)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// columnValue extracts one cell. JSON columns are decoded so the value
// nests naturally instead of rendering as a byte array.
func columnValue(col entity.Column, i int) any {
	v, err := col.Get(i)
	if err != nil {
		return nil
	}
	if raw, ok := v.([]byte); ok && col.Type() == entity.FieldTypeJSON {
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err == nil {
			return decoded
		}
		return string(raw)
	}
	return v
}

func columnValues(col entity.Column) []any {
	if col == nil {
		return nil
	}
	vals := make([]any, 0, col.Len())
	for i := 0; i < col.Len(); i++ {
		vals = append(vals, columnValue(col, i))
	}
	return vals
}
