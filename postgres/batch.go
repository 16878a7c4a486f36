package postgres

// lastByKey drops all but the last item of each key, keeping first-seen key
// order. A multi-row INSERT ... ON CONFLICT DO UPDATE fails when two rows of
// the statement share a conflict key.
func lastByKey[T any, K comparable](items []T, key func(T) K) []T {
	index := make(map[K]int, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		k := key(item)
		if i, ok := index[k]; ok {
			out[i] = item
			continue
		}
		index[k] = len(out)
		out = append(out, item)
	}
	return out
}
