package wave

import "sort"

// Item-count map helpers. All maps are item -> units; entries are kept
// strictly positive, a key dropping to zero or below is removed.

func mergeListMaps(maps []map[int]int, nItems int) map[int]int {
	merged := make(map[int]int, nItems)
	for _, m := range maps {
		for k, v := range m {
			merged[k] += v
		}
	}
	return merged
}

func mergeMap(a, b map[int]int) map[int]int {
	merged := make(map[int]int, len(a)+len(b))
	for k, v := range a {
		merged[k] = v
	}
	for k, v := range b {
		merged[k] += v
	}
	return merged
}

// removeMap subtracts b from a into a fresh map, dropping keys that end up
// at or below zero.
func removeMap(a, b map[int]int) map[int]int {
	result := make(map[int]int, len(a))
	for k, v := range a {
		result[k] = v
	}
	for k, v := range b {
		result[k] -= v
		if result[k] <= 0 {
			delete(result, k)
		}
	}
	return result
}

func mergeMapInPlace(dst, src map[int]int) {
	for k, v := range src {
		dst[k] += v
	}
}

func removeMapInPlace(dst, src map[int]int) {
	for k, v := range src {
		dst[k] -= v
		if dst[k] <= 0 {
			delete(dst, k)
		}
	}
}

// AnyExceeds reports whether demand exceeds avail on at least one item.
// It returns on the first offending key; it is an exists-check, not a
// dominance check.
func AnyExceeds(demand, avail map[int]int) bool {
	for k, v := range demand {
		if avail[k] < v {
			return true
		}
	}
	return false
}

func copyIntMap(m map[int]int) map[int]int {
	out := make(map[int]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyIntSet(s map[int]bool) map[int]bool {
	out := make(map[int]bool, len(s))
	for k := range s {
		out[k] = true
	}
	return out
}

func sortedKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
