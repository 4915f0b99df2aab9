package adapter

// Canonical returns a copy of an attribute map with every numeric value
// widened to float64. Manifest decoding yields ints where the API's JSON
// yields float64; comparison by deep equality needs one representation.
func Canonical(attrs map[string]any) map[string]any {
	if attrs == nil {
		return nil
	}
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		out[k] = CanonicalValue(v)
	}
	return out
}

// CanonicalValue canonicalizes a single value, recursing into maps and
// slices.
func CanonicalValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		return Canonical(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = CanonicalValue(item)
		}
		return out
	case int:
		return float64(typed)
	case int32:
		return float64(typed)
	case int64:
		return float64(typed)
	case uint:
		return float64(typed)
	case uint64:
		return float64(typed)
	case float32:
		return float64(typed)
	default:
		return v
	}
}

// StringField extracts a string field from a raw record.
func StringField(record map[string]any, field string) (string, bool) {
	raw, ok := record[field]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
