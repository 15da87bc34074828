package spec

import "fmt"

// NormalizeValue turns the output of yaml.v3 decoding into plain JSON-shaped
// values: every mapping becomes map[string]any, whatever its key types.
func NormalizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = NormalizeValue(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = NormalizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = NormalizeValue(item)
		}
		return out
	default:
		return v
	}
}

// normalizeMap is NormalizeValue for values expected to be objects.
func normalizeMap(v any) (map[string]any, bool) {
	m, ok := NormalizeValue(v).(map[string]any)
	return m, ok
}
