package snapshot

import "sort"

// KeySet is the set of session keys present in one status snapshot.
type KeySet map[string]struct{}

// Keys builds a KeySet from a list of session keys.
func Keys(keys ...string) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Diff compares two successive snapshots' key sets. joined holds the keys in
// cur absent from prev (candidate connects), left the keys in prev absent
// from cur (candidate disconnects). Both are sorted so a cycle's emission
// order is deterministic.
func Diff(prev, cur KeySet) (joined, left []string) {
	for k := range cur {
		if _, ok := prev[k]; !ok {
			joined = append(joined, k)
		}
	}
	for k := range prev {
		if _, ok := cur[k]; !ok {
			left = append(left, k)
		}
	}
	sort.Strings(joined)
	sort.Strings(left)
	return joined, left
}
