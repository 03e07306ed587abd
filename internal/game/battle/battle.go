// Package battle implements the combat resolution engine and the
// exhaustive attack-order optimiser.
//
// A battle is a sequence of attackers taking turns against a single
// defender. Resolution is deterministic: the same state and order always
// produce the same outcome.
package battle

import (
	"github.com/Artemis21/polycalc-api/internal/game/unit"
)

// State holds one side's attackers and the shared defender. Resolution
// mutates units in place, so callers that need the pre-battle state must
// Clone first.
type State struct {
	Attackers []*unit.Unit
	Defender  *unit.Unit
}

// Clone returns a deep copy of the state. The copy shares nothing with the
// original.
func (s *State) Clone() *State {
	attackers := make([]*unit.Unit, len(s.Attackers))
	for i, a := range s.Attackers {
		attackers[i] = a.Clone()
	}
	return &State{Attackers: attackers, Defender: s.Defender.Clone()}
}

// Reorder returns a deep copy of the state with the attackers arranged in
// the given order: the copy's attacker i is a clone of s.Attackers[order[i]].
//
// Precondition: order must be a permutation of 0..len(s.Attackers)-1.
func (s *State) Reorder(order []int) *State {
	attackers := make([]*unit.Unit, len(order))
	for i, idx := range order {
		attackers[i] = s.Attackers[idx].Clone()
	}
	return &State{Attackers: attackers, Defender: s.Defender.Clone()}
}
