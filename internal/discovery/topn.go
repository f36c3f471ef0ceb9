package discovery

import "sort"

// topNSize is spec §4.3's "Top-N maintenance" set size.
const topNSize = 30

// topSet is the in-memory sorted set of the best 30 results seen so far,
// ordered by CompositeScore descending. It is always read under the
// agent's progress mutex, so it needs no locking of its own.
type topSet struct {
	entries []TopEntry
}

// insert adds entry if it would place in the top topNSize, keeping the
// slice sorted by Score descending and trimmed to topNSize.
func (t *topSet) insert(entry TopEntry) {
	idx := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].Score < entry.Score
	})
	t.entries = append(t.entries, TopEntry{})
	copy(t.entries[idx+1:], t.entries[idx:])
	t.entries[idx] = entry

	if len(t.entries) > topNSize {
		t.entries = t.entries[:topNSize]
	}
}

// snapshot returns a defensive copy, since Progress snapshots must be
// atomic with respect to concurrent top-N updates (spec §5's ordering
// guarantee).
func (t *topSet) snapshot() []TopEntry {
	out := make([]TopEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// byTag groups the current top-N by StrategyTag, the unit
// cycle>=3's crossover step draws two parents from (spec §4.3: "two
// parents from top-30 of the same strategy tag").
func (t *topSet) byTag() map[string][]TopEntry {
	out := make(map[string][]TopEntry)
	for _, e := range t.entries {
		out[e.StrategyTag] = append(out[e.StrategyTag], e)
	}
	return out
}
