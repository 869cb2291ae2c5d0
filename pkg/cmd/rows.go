package cmd

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/yami-cli/yami/pkg/errcode"
)

// loadRows reads entity rows from a file or an inline JSON string. A
// single object becomes a one-row batch; an array contributes one row
// per element.
func loadRows(file, inline string) ([]map[string]any, error) {
	raw := []byte(inline)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errcode.Newf(errcode.FileNotFound, "File not found: %s", file)
			}
			return nil, errcode.Newf(errcode.FileNotFound, "cannot read %s: %v", file, err)
		}
		raw = data
	}

	return decodeRows(raw)
}

func decodeRows(raw []byte) ([]map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, errcode.Newf(errcode.InvalidFormat, "invalid JSON: %v", err)
	}

	switch v := value.(type) {
	case map[string]any:
		return []map[string]any{v}, nil
	case []any:
		if len(v) == 0 {
			return nil, errcode.New(errcode.InvalidFormat, "row array is empty")
		}
		rows := make([]map[string]any, 0, len(v))
		for i, item := range v {
			row, ok := item.(map[string]any)
			if !ok {
				return nil, errcode.Newf(errcode.InvalidFormat, "row %d is not a JSON object", i)
			}
			rows = append(rows, row)
		}
		return rows, nil
	default:
		return nil, errcode.New(errcode.InvalidFormat, "rows must be a JSON object or an array of objects")
	}
}
