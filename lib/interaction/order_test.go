package interaction

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestOrderPartitionsRecordingsFirst(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		rnd := rand.New(rand.NewSource(seed))

		list := make([]Interaction, 30)
		recordings := 0
		for i := range list {
			withRecording := i%3 != 0
			list[i] = Interaction{Transcript: string(rune('a' + i))}
			if withRecording {
				list[i].Url = "https://example.com/" + list[i].Transcript
				list[i].RecordingAvailable = true
				recordings++
			}
		}
		before := append([]Interaction{}, list...)

		Order(rnd, list)

		require.Len(t, list, len(before))
		for i, item := range list {
			require.Equal(t, i < recordings, item.RecordingAvailable,
				"seed %d: index %d on the wrong side of the partition", seed, i)
		}

		// same multiset of records, just reordered
		sortKey := func(l []Interaction) []Interaction {
			out := append([]Interaction{}, l...)
			sort.Slice(out, func(i, j int) bool { return out[i].Transcript < out[j].Transcript })
			return out
		}
		if diff := cmp.Diff(sortKey(before), sortKey(list)); diff != "" {
			t.Fatalf("seed %d: ordering changed the records themselves:\n%s", seed, diff)
		}
	}
}

func TestOrderAllWithoutRecordings(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	list := []Interaction{
		{Transcript: "a"},
		{Transcript: "b"},
		{Transcript: "c"},
	}
	Order(rnd, list)
	require.Len(t, list, 3)
	for _, i := range list {
		require.False(t, i.RecordingAvailable)
	}
}
