package battle

import (
	"github.com/Artemis21/polycalc-api/internal/game/unit"
)

// Preference is a three-valued verdict from comparing two outcomes. The
// zero value is Indeterminate.
type Preference int

const (
	// Indeterminate means the two outcomes cannot be told apart.
	Indeterminate Preference = iota
	// Better means the first outcome is preferable.
	Better
	// Worse means the second outcome is preferable.
	Worse
)

func (p Preference) String() string {
	switch p {
	case Better:
		return "better"
	case Worse:
		return "worse"
	case Indeterminate:
		return "indeterminate"
	default:
		return "unknown"
	}
}

// Invert swaps Better and Worse; Indeterminate stays put.
func (p Preference) Invert() Preference {
	switch p {
	case Better:
		return Worse
	case Worse:
		return Better
	default:
		return Indeterminate
	}
}

// UnitPreference ranks unit a against unit b from the unit's own side:
// more health wins outright, and at equal health an unfrozen unit beats a
// frozen one.
func UnitPreference(a, b *unit.Unit) Preference {
	switch {
	case a.Health > b.Health:
		return Better
	case a.Health < b.Health:
		return Worse
	case !a.Frozen && b.Frozen:
		return Better
	case a.Frozen && !b.Frozen:
		return Worse
	}
	return Indeterminate
}

// DefenderPreference ranks s's defender outcome against other's from the
// attackers' point of view. Conversion dominates: a converted defender
// beats any unconverted one. When both are converted the healthier one is
// better, since it now fights for the attackers. When neither is, the
// per-unit verdict flips: the attackers want the defender worse off.
func (s *State) DefenderPreference(other *State) Preference {
	pref := UnitPreference(s.Defender, other.Defender)
	if s.Defender.Converted {
		if !other.Defender.Converted {
			return Better
		}
		return pref
	}
	if other.Defender.Converted {
		return Worse
	}
	return pref.Invert()
}

// DeadAttackers counts attackers whose health is strictly negative. A unit
// on exactly zero health is down but not dead.
func (s *State) DeadAttackers() int {
	dead := 0
	for _, a := range s.Attackers {
		if a.Health < 0 {
			dead++
		}
	}
	return dead
}

// AttackersAreBetter reports whether s lost strictly fewer attackers than
// other. Equal losses favour other; there is no secondary comparison on
// the survivors' health.
func (s *State) AttackersAreBetter(other *State) bool {
	return s.DeadAttackers() < other.DeadAttackers()
}

// BetterThan reports whether s is a strictly preferable outcome to other.
// The defender verdict decides when it is determinate; otherwise the side
// with fewer attacker deaths wins, ties going to other.
func (s *State) BetterThan(other *State) bool {
	if pref := s.DefenderPreference(other); pref != Indeterminate {
		return pref == Better
	}
	return s.AttackersAreBetter(other)
}
