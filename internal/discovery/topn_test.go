package discovery

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTopSetInsertKeepsSortedAndTrimmed(t *testing.T) {
	var set topSet
	for i := 0; i < topNSize+10; i++ {
		set.insert(TopEntry{Fingerprint: string(rune('a' + i%26)), Score: float64(i)})
	}

	entries := set.snapshot()
	require.Len(t, entries, topNSize)
	for i := 1; i < len(entries); i++ {
		require.GreaterOrEqual(t, entries[i-1].Score, entries[i].Score)
	}
	// The highest-scored entries (last inserted) must survive the trim.
	require.Equal(t, float64(topNSize+9), entries[0].Score)
}

func TestTopSetByTagGroupsStrategies(t *testing.T) {
	var set topSet
	set.insert(TopEntry{StrategyTag: "single:rsi", Score: 10})
	set.insert(TopEntry{StrategyTag: "single:rsi", Score: 20})
	set.insert(TopEntry{StrategyTag: "combo", Score: 15})

	byTag := set.byTag()
	require.Len(t, byTag["single:rsi"], 2)
	require.Len(t, byTag["combo"], 1)
}

func TestTopSetSnapshotIsDefensiveCopy(t *testing.T) {
	var set topSet
	set.insert(TopEntry{Score: 1})
	snap := set.snapshot()
	snap[0].Score = 999

	require.Equal(t, float64(1), set.snapshot()[0].Score)
}
