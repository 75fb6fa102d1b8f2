package interaction

import (
	"math/rand"
)

// Session tracks which interactions have already been shown during one
// survey attempt. The seen set grows monotonically and is only reset
// by constructing a fresh Session.
type Session struct {
	Interactions []Interaction
	seen         map[int]struct{}
	rnd          *rand.Rand
}

func NewSession(rnd *rand.Rand, list []Interaction) *Session {
	return &Session{
		Interactions: list,
		seen:         map[int]struct{}{},
		rnd:          rnd,
	}
}

func (s *Session) Remaining() int {
	return len(s.Interactions) - len(s.seen)
}

// Next returns an interaction that has not been returned before within
// this session and marks it as seen. Fails with ErrAllSeen once the
// session is exhausted.
func (s *Session) Next() (Interaction, error) {
	idx, err := SelectUnseen(s.rnd, len(s.Interactions), s.seen)
	if err != nil {
		return Interaction{}, err
	}
	s.seen[idx] = struct{}{}
	return s.Interactions[idx], nil
}
