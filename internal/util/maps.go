package util

// BuildMap pairs keys with values by position. Keys left without a value
// map to def; values left without a key are dropped.
func BuildMap[K comparable, V any](keys []K, values []V, def V) map[K]V {
	m := make(map[K]V, len(keys))
	for i, key := range keys {
		if i < len(values) {
			m[key] = values[i]
		} else {
			m[key] = def
		}
	}
	return m
}
