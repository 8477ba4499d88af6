// Package devutil has helpers for inspecting records from the command line.
package devutil

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Field is one picked key and its JSON value.
type Field struct {
	Key   string
	Value any
}

// Pick round-trips v through JSON and returns the requested keys in the order given.
// Keys v does not have are skipped. No keys means every key, sorted.
func Pick(v any, keys ...string) ([]Field, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("devutil: marshal: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("devutil: %T is not a JSON object: %w", v, err)
	}

	if len(keys) == 0 {
		for k := range m {
			keys = append(keys, k)
		}
		slices.Sort(keys)
	}

	out := make([]Field, 0, len(keys))
	for _, k := range keys {
		if val, ok := m[k]; ok {
			out = append(out, Field{Key: k, Value: val})
		}
	}
	return out, nil
}
