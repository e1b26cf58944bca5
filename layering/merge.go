// Package layering merges JSON documents ordered from strongest to weakest.
package layering

// MergeDocuments composes documents ordered from strongest to weakest,
// returning a new value that keeps explicit entries from stronger layers while
// filling missing object keys from weaker ones. Arrays and scalars are taken
// whole from the strongest layer that sets them. Inputs are never mutated.
func MergeDocuments(layers ...any) any {
	if len(layers) == 0 {
		return nil
	}

	merged := CloneDocument(layers[len(layers)-1])
	for i := len(layers) - 2; i >= 0; i-- {
		merged = mergeValue(layers[i], merged)
	}
	return merged
}

func mergeValue(strong, weak any) any {
	strongMap, ok := strong.(map[string]any)
	if !ok {
		if strong == nil {
			return CloneDocument(weak)
		}
		return CloneDocument(strong)
	}

	weakMap, _ := weak.(map[string]any)
	result := make(map[string]any, len(strongMap)+len(weakMap))
	for key, value := range weakMap {
		result[key] = CloneDocument(value)
	}
	for key, value := range strongMap {
		if existing, ok := result[key]; ok {
			result[key] = mergeValue(value, existing)
			continue
		}
		result[key] = CloneDocument(value)
	}
	return result
}

// CloneDocument deep copies the object and array containers of a decoded JSON
// value. Scalars are returned as-is.
func CloneDocument(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for key, item := range typed {
			clone[key] = CloneDocument(item)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, item := range typed {
			clone[i] = CloneDocument(item)
		}
		return clone
	default:
		return value
	}
}
