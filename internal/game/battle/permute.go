package battle

// Permuter lazily enumerates all n! orderings of the integers 0..n-1 using
// the QuickPerm countdown algorithm. The identity ordering comes first;
// every later ordering differs from its predecessor by a single swap.
type Permuter struct {
	order   []int
	ctrl    []int
	i       int
	n       int
	started bool
}

// NewPermuter returns an enumerator over the orderings of 0..n-1. With
// n = 0 there is nothing to order and Next reports exhaustion immediately.
//
// Precondition: n must be >= 0.
func NewPermuter(n int) *Permuter {
	order := make([]int, n)
	for k := range order {
		order[k] = k
	}
	ctrl := make([]int, n+1)
	for k := range ctrl {
		ctrl[k] = k
	}
	return &Permuter{order: order, ctrl: ctrl, i: 1, n: n}
}

// Next returns the next ordering, or (nil, false) once all n! orderings
// have been produced. The returned slice is a fresh copy the caller owns.
func (p *Permuter) Next() ([]int, bool) {
	if p.n == 0 {
		return nil, false
	}
	if !p.started {
		p.started = true
		return p.snapshot(), true
	}
	if p.i >= p.n {
		return nil, false
	}

	p.ctrl[p.i]--
	j := 0
	if p.i%2 == 1 {
		j = p.ctrl[p.i]
	}
	p.order[j], p.order[p.i] = p.order[p.i], p.order[j]

	// Rewind the control array, skipping exhausted positions. ctrl[n] never
	// reaches zero, so the scan terminates.
	p.i = 1
	for p.ctrl[p.i] == 0 {
		p.ctrl[p.i] = p.i
		p.i++
	}
	return p.snapshot(), true
}

func (p *Permuter) snapshot() []int {
	out := make([]int, len(p.order))
	copy(out, p.order)
	return out
}
