package milvus

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"github.com/yami-cli/yami/pkg/errcode"
)

func (m *Client) Insert(ctx context.Context, collection, partition string, rows []map[string]any) (*InsertResult, error) {
	coll, err := m.c.DescribeCollection(ctx, collection)
	if err != nil {
		return nil, Translate(err)
	}
	cols, err := BuildColumns(coll.Schema, rows, false)
	if err != nil {
		return nil, err
	}
	ids, err := m.c.Insert(ctx, collection, partition, cols...)
	if err != nil {
		return nil, Translate(err)
	}
	return &InsertResult{InsertCount: len(rows), IDs: columnValues(ids)}, nil
}

// Upsert differs from Insert in that the primary key must always be
// present, auto-generated or not.
func (m *Client) Upsert(ctx context.Context, collection, partition string, rows []map[string]any) (*UpsertResult, error) {
	coll, err := m.c.DescribeCollection(ctx, collection)
	if err != nil {
		return nil, Translate(err)
	}
	cols, err := BuildColumns(coll.Schema, rows, true)
	if err != nil {
		return nil, err
	}
	ids, err := m.c.Upsert(ctx, collection, partition, cols...)
	if err != nil {
		return nil, Translate(err)
	}
	return &UpsertResult{UpsertCount: len(rows), IDs: columnValues(ids)}, nil
}

func (m *Client) Delete(ctx context.Context, collection, partition, expr string) error {
	return Translate(m.c.Delete(ctx, collection, partition, expr))
}

// DeleteByIDs resolves the primary key field, renders the ids into a
// filter expression typed against it, and deletes the matches.
func (m *Client) DeleteByIDs(ctx context.Context, collection, partition string, ids []string) error {
	coll, err := m.c.DescribeCollection(ctx, collection)
	if err != nil {
		return Translate(err)
	}
	expr, err := pkExpr(coll.Schema, ids)
	if err != nil {
		return err
	}
	return Translate(m.c.Delete(ctx, collection, partition, expr))
}

// BuildColumns validates JSON-decoded rows against the schema and packs
// them into typed columns. Rows must carry exactly the schema fields:
// unknown keys, missing values, and type mismatches are rejected with
// the row index and field named. When withAutoPK is false a
// server-generated primary key must be absent from every row.
func BuildColumns(schema *entity.Schema, rows []map[string]any, withAutoPK bool) ([]entity.Column, error) {
	if schema == nil {
		return nil, errcode.New(errcode.ValidationError, "collection schema is empty")
	}
	if len(rows) == 0 {
		return nil, errcode.New(errcode.ValidationError, "no rows to write")
	}

	declared := make(map[string]bool, len(schema.Fields))
	for _, f := range schema.Fields {
		declared[f.Name] = true
	}
	for i, row := range rows {
		for key := range row {
			if !declared[key] {
				return nil, errcode.Newf(errcode.ValidationError, "row %d: unknown field %q", i, key)
			}
		}
	}

	cols := make([]entity.Column, 0, len(schema.Fields))
	for _, f := range schema.Fields {
		if f.AutoID && !withAutoPK {
			for i, row := range rows {
				if _, ok := row[f.Name]; ok {
					return nil, errcode.Newf(errcode.ValidationError, "row %d: field %q is generated by the server; omit it", i, f.Name)
				}
			}
			continue
		}
		col, err := buildColumn(f, rows)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return cols, nil
}

func buildColumn(f *entity.Field, rows []map[string]any) (entity.Column, error) {
	switch f.DataType {
	case entity.FieldTypeBool:
		vals := make([]bool, len(rows))
		for i := range rows {
			v, err := fieldValue(f, rows[i], i)
			if err != nil {
				return nil, err
			}
			b, ok := v.(bool)
			if !ok {
				return nil, typeError(f.Name, i, "bool", v)
			}
			vals[i] = b
		}
		return entity.NewColumnBool(f.Name, vals), nil

	case entity.FieldTypeInt8:
		vals, err := intValues[int8](f, rows, 8)
		if err != nil {
			return nil, err
		}
		return entity.NewColumnInt8(f.Name, vals), nil

	case entity.FieldTypeInt16:
		vals, err := intValues[int16](f, rows, 16)
		if err != nil {
			return nil, err
		}
		return entity.NewColumnInt16(f.Name, vals), nil

	case entity.FieldTypeInt32:
		vals, err := intValues[int32](f, rows, 32)
		if err != nil {
			return nil, err
		}
		return entity.NewColumnInt32(f.Name, vals), nil

	case entity.FieldTypeInt64:
		vals, err := intValues[int64](f, rows, 64)
		if err != nil {
			return nil, err
		}
		return entity.NewColumnInt64(f.Name, vals), nil

	case entity.FieldTypeFloat:
		vals := make([]float32, len(rows))
		for i := range rows {
			v, err := fieldValue(f, rows[i], i)
			if err != nil {
				return nil, err
			}
			n, ok := numeric(v)
			if !ok {
				return nil, typeError(f.Name, i, "float", v)
			}
			vals[i] = float32(n)
		}
		return entity.NewColumnFloat(f.Name, vals), nil

	case entity.FieldTypeDouble:
		vals := make([]float64, len(rows))
		for i := range rows {
			v, err := fieldValue(f, rows[i], i)
			if err != nil {
				return nil, err
			}
			n, ok := numeric(v)
			if !ok {
				return nil, typeError(f.Name, i, "double", v)
			}
			vals[i] = n
		}
		return entity.NewColumnDouble(f.Name, vals), nil

	case entity.FieldTypeVarChar:
		vals := make([]string, len(rows))
		for i := range rows {
			v, err := fieldValue(f, rows[i], i)
			if err != nil {
				return nil, err
			}
			s, ok := v.(string)
			if !ok {
				return nil, typeError(f.Name, i, "varchar", v)
			}
			vals[i] = s
		}
		return entity.NewColumnVarChar(f.Name, vals), nil

	case entity.FieldTypeJSON:
		vals := make([][]byte, len(rows))
		for i := range rows {
			v, err := fieldValue(f, rows[i], i)
			if err != nil {
				return nil, err
			}
			raw, err := json.Marshal(v)
			if err != nil {
				return nil, errcode.Newf(errcode.ValidationError, "row %d: field %q: %v", i, f.Name, err)
			}
			vals[i] = raw
		}
		return entity.NewColumnJSONBytes(f.Name, vals), nil

	case entity.FieldTypeFloatVector:
		dim := typeParamInt(f.TypeParams, entity.TypeParamDim)
		vals := make([][]float32, len(rows))
		for i := range rows {
			v, err := fieldValue(f, rows[i], i)
			if err != nil {
				return nil, err
			}
			vec, err := floatVector(f.Name, i, v, dim)
			if err != nil {
				return nil, err
			}
			vals[i] = vec
		}
		return entity.NewColumnFloatVector(f.Name, dim, vals), nil
	}

	return nil, errcode.Newf(errcode.ValidationError, "field %q: %s fields cannot be written from JSON rows", f.Name, fieldTypeName(f.DataType))
}

type signedInt interface {
	~int8 | ~int16 | ~int32 | ~int64
}

func intValues[T signedInt](f *entity.Field, rows []map[string]any, bits int) ([]T, error) {
	vals := make([]T, len(rows))
	for i := range rows {
		v, err := fieldValue(f, rows[i], i)
		if err != nil {
			return nil, err
		}
		n, err := integer(v, bits)
		if err != nil {
			return nil, typeError(f.Name, i, fmt.Sprintf("int%d", bits), v)
		}
		vals[i] = T(n)
	}
	return vals, nil
}

func fieldValue(f *entity.Field, row map[string]any, i int) (any, error) {
	v, ok := row[f.Name]
	if !ok {
		return nil, errcode.Newf(errcode.ValidationError, "row %d: missing value for field %q", i, f.Name)
	}
	return v, nil
}

func typeError(field string, row int, want string, got any) error {
	return errcode.Newf(errcode.ValidationError, "row %d: field %q: cannot use %v as %s", row, field, got, want)
}

// integer accepts the value shapes JSON decoding and flag parsing
// produce. Fractional floats and out-of-range values are rejected.
func integer(v any, bits int) (int64, error) {
	var n int64
	switch t := v.(type) {
	case json.Number:
		parsed, err := strconv.ParseInt(t.String(), 10, 64)
		if err != nil {
			return 0, err
		}
		n = parsed
	case float64:
		if t != math.Trunc(t) {
			return 0, fmt.Errorf("fractional value %v", t)
		}
		n = int64(t)
	case int:
		n = int64(t)
	case int64:
		n = t
	default:
		return 0, fmt.Errorf("unsupported value %v", v)
	}
	if bits < 64 {
		limit := int64(1) << (bits - 1)
		if n < -limit || n >= limit {
			return 0, fmt.Errorf("value %d overflows int%d", n, bits)
		}
	}
	return n, nil
}

func numeric(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}

func floatVector(field string, row int, v any, dim int) ([]float32, error) {
	var vec []float32
	switch t := v.(type) {
	case []float32:
		vec = t
	case []float64:
		vec = make([]float32, len(t))
		for i, f := range t {
			vec[i] = float32(f)
		}
	case []any:
		vec = make([]float32, len(t))
		for i, e := range t {
			n, ok := numeric(e)
			if !ok {
				return nil, typeError(field, row, "float vector element", e)
			}
			vec[i] = float32(n)
		}
	default:
		return nil, typeError(field, row, "float vector", v)
	}
	if dim > 0 && len(vec) != dim {
		return nil, errcode.Newf(errcode.ValidationError, "row %d: field %q: expected %d-dimensional vector, got %d dimensions", row, field, dim, len(vec))
	}
	return vec, nil
}

// pkExpr renders ids into a filter expression typed against the primary
// key, so callers can address entities without knowing the key field.
func pkExpr(schema *entity.Schema, ids []string) (string, error) {
	if len(ids) == 0 {
		return "", errcode.New(errcode.ValidationError, "at least one id is required")
	}
	var pk *entity.Field
	if schema != nil {
		for _, f := range schema.Fields {
			if f.PrimaryKey {
				pk = f
				break
			}
		}
	}
	if pk == nil {
		return "", errcode.New(errcode.ValidationError, "collection has no primary key field")
	}

	rendered := make([]string, len(ids))
	switch pk.DataType {
	case entity.FieldTypeInt64:
		for i, id := range ids {
			if _, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64); err != nil {
				return "", errcode.Newf(errcode.ValidationError, "id %q is not valid for int64 primary key %q", id, pk.Name)
			}
			rendered[i] = strings.TrimSpace(id)
		}
	case entity.FieldTypeVarChar:
		for i, id := range ids {
			rendered[i] = strconv.Quote(id)
		}
	default:
		return "", errcode.Newf(errcode.ValidationError, "primary key %q has unsupported type %s", pk.Name, fieldTypeName(pk.DataType))
	}
	return fmt.Sprintf("%s in [%s]", pk.Name, strings.Join(rendered, ", ")), nil
}
