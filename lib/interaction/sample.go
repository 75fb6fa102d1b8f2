package interaction

import (
	"errors"
	"math/rand"
)

var ErrAllSeen = errors.New("all numbers seen")

// SelectUnseen draws uniformly from [0, total) until it lands on an
// index not in seen. Rejection sampling over a uniform draw stays
// uniform over the remaining set, so no bias correction is needed.
//
// The caller must check len(seen) < total beforehand if it wants
// graceful degradation; the function itself fails with ErrAllSeen.
// It does not mutate seen, recording the returned index is the
// caller's job.
func SelectUnseen(rnd *rand.Rand, total int, seen map[int]struct{}) (int, error) {
	if len(seen) >= total {
		return 0, ErrAllSeen
	}
	for {
		n := rnd.Intn(total)
		if _, ok := seen[n]; !ok {
			return n, nil
		}
	}
}
