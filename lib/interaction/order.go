package interaction

import (
	"math/rand"
)

// Order reorders the given slice in place: a uniform shuffle followed
// by a stable partition that moves every recording-bearing interaction
// ahead of the recording-less ones. The relative shuffle order inside
// each group is preserved.
func Order(rnd *rand.Rand, list []Interaction) {
	rnd.Shuffle(len(list), func(i, j int) {
		list[i], list[j] = list[j], list[i]
	})

	partitioned := make([]Interaction, 0, len(list))
	for _, i := range list {
		if i.RecordingAvailable {
			partitioned = append(partitioned, i)
		}
	}
	for _, i := range list {
		if !i.RecordingAvailable {
			partitioned = append(partitioned, i)
		}
	}
	copy(list, partitioned)
}
