package cmd

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/yami-cli/yami/pkg/errcode"
)

// splitList splits a comma separated flag value, dropping blanks.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseVector decodes a flag value holding a JSON array of numbers.
func parseVector(flag, raw string) ([]float32, error) {
	var vec []float32
	if err := json.Unmarshal([]byte(raw), &vec); err != nil {
		return nil, errcode.Newf(errcode.ValidationError, "%s must be a JSON array of numbers", flag)
	}
	if len(vec) == 0 {
		return nil, errcode.Newf(errcode.ValidationError, "%s must not be empty", flag)
	}
	return vec, nil
}

// parseWeights decodes the comma separated weights of a weighted
// ranker.
func parseWeights(raw string) ([]float64, error) {
	parts := splitList(raw)
	weights := make([]float64, 0, len(parts))
	for _, p := range parts {
		w, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, errcode.Newf(errcode.ValidationError, "invalid weight %q: weights must be numbers", p)
		}
		weights = append(weights, w)
	}
	return weights, nil
}

// parseParams decodes a JSON object flag into string valued extra
// parameters.
func parseParams(flag, raw string) (map[string]string, error) {
	if raw == "" {
		return nil, nil
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, errcode.Newf(errcode.ValidationError, "%s must be a JSON object", flag)
	}

	params := make(map[string]string, len(obj))
	for k, v := range obj {
		switch t := v.(type) {
		case string:
			params[k] = t
		case float64:
			params[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			params[k] = strconv.FormatBool(t)
		default:
			b, err := json.Marshal(v)
			if err != nil {
				return nil, errcode.Newf(errcode.ValidationError, "%s: unsupported value for %q", flag, k)
			}
			params[k] = string(b)
		}
	}
	return params, nil
}
