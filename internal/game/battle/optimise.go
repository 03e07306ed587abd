package battle

import (
	"errors"
)

// ErrNoAttackers is returned when the optimiser is given no attackers to
// order.
var ErrNoAttackers = errors.New("no attackers to order")

// Optimise plays out every possible attack order from the given state and
// returns the best order along with the final state it produces. The
// returned state's attackers appear in the winning order, so order[i] maps
// the i-th result back to s.Attackers[order[i]].
//
// Every trial starts from clones of s, so no trial leaks damage into
// another and s itself is never touched. Candidates are judged with
// BetterThan; on ties the earlier ordering in enumeration order stands.
// The search is exhaustive, trying all n! orderings.
//
// Postcondition: Returns ErrNoAttackers iff s has no attackers; otherwise
// the returned order is a permutation of 0..n-1.
func Optimise(s *State) ([]int, *State, error) {
	if len(s.Attackers) == 0 {
		return nil, nil, ErrNoAttackers
	}

	var (
		bestOrder []int
		bestState *State
	)
	perms := NewPermuter(len(s.Attackers))
	for {
		order, ok := perms.Next()
		if !ok {
			break
		}
		candidate := s.Reorder(order)
		ResolveSequence(candidate)
		if bestState == nil || candidate.BetterThan(bestState) {
			bestOrder = order
			bestState = candidate
		}
	}
	return bestOrder, bestState, nil
}
