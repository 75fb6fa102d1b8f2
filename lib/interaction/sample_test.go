package interaction

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectUnseen(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))

	const total = 25
	seen := map[int]struct{}{}

	for i := 0; i < total; i++ {
		n, err := SelectUnseen(rnd, total, seen)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 0)
		require.Less(t, n, total)

		_, repeated := seen[n]
		require.False(t, repeated, "sampled %d twice", n)
		seen[n] = struct{}{}
	}

	require.Len(t, seen, total)

	_, err := SelectUnseen(rnd, total, seen)
	require.ErrorIs(t, err, ErrAllSeen)
}

func TestSelectUnseenDoesNotMutate(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))

	seen := map[int]struct{}{0: {}}
	_, err := SelectUnseen(rnd, 3, seen)
	require.NoError(t, err)
	require.Len(t, seen, 1)
}

func TestSessionEnumeratesEverything(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))

	list := make([]Interaction, 10)
	for i := range list {
		list[i] = Interaction{Transcript: string(rune('a' + i))}
	}
	session := NewSession(rnd, list)

	got := map[string]bool{}
	for range list {
		i, err := session.Next()
		require.NoError(t, err)
		require.False(t, got[i.Transcript], "interaction %q shown twice", i.Transcript)
		got[i.Transcript] = true
	}
	require.Equal(t, 0, session.Remaining())

	_, err := session.Next()
	require.ErrorIs(t, err, ErrAllSeen)
}
