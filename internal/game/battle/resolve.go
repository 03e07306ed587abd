package battle

import (
	"math"

	"github.com/Artemis21/polycalc-api/internal/game/unit"
)

// forceMultiplier scales the force ratio into hit points of damage.
const forceMultiplier = 4.5

// Retaliates reports whether defender strikes back when attacked by
// attacker. A frozen, converted, downed or retaliation-incapable defender
// never retaliates. Otherwise the attacker's override wins, then the
// defender's; with neither set, melee attackers are retaliated against and
// ranged attackers are safe unless the defender is ranged too.
func Retaliates(attacker, defender *unit.Unit) bool {
	switch {
	case defender.Frozen || defender.Converted:
		return false
	case defender.Health <= 0:
		return false
	case !defender.CanRetaliate:
		return false
	}
	if attacker.ForcedRetaliation != unit.RetaliationDefault {
		return attacker.ForcedRetaliation == unit.RetaliationForced
	}
	if defender.ForcedRetaliation != unit.RetaliationDefault {
		return defender.ForcedRetaliation == unit.RetaliationForced
	}
	return !attacker.Ranged || defender.Ranged
}

// ResolveAttack applies a single attack from attacker to defender,
// including the defender's retaliation when it fires. Both units may be
// mutated. Health is not clamped and goes negative on a killing blow.
//
// Forces scale with the attacking stat and the unit's remaining health
// fraction. Retaliation is decided after the damage lands, but deals
// damage based on the defender's pre-damage force.
//
// Postcondition: Neither unit's health increases when both start with
// positive health; a defender already below zero flips the force sum and
// can take negative damage. When both forces are zero the exchange is a
// no-op.
func ResolveAttack(attacker, defender *unit.Unit) {
	attackForce := attacker.Attack * (attacker.Health / attacker.MaxHealth)
	defenceForce := defender.DefenceWithBonus * (defender.Health / defender.MaxHealth)
	if attackForce+defenceForce == 0 {
		return
	}
	totalForce := forceMultiplier / (attackForce + defenceForce)

	defender.Health -= math.Round(attackForce * attacker.Attack * totalForce)
	if Retaliates(attacker, defender) {
		attacker.Health -= math.Round(defenceForce * defender.Defence * totalForce)
	}
}

// ResolveEncounter runs one attacker's full turn against defender: the
// attack itself, then any convert or freeze effect. A defender that has
// already been converted is out of the fight, and the whole encounter is a
// no-op. Status effects only land while the attacker survives the turn,
// and convert takes precedence over freeze.
func ResolveEncounter(attacker, defender *unit.Unit) {
	if defender.Converted {
		return
	}
	if attacker.Attack > 0 {
		ResolveAttack(attacker, defender)
	}
	if attacker.Health > 0 {
		if attacker.CanConvert {
			defender.Converted = true
		} else if attacker.CanFreeze {
			defender.Frozen = true
		}
	}
}

// ResolveSequence plays out the whole battle, each attacker in slice order
// taking one encounter against the shared defender. The state is mutated
// in place.
func ResolveSequence(s *State) {
	for _, attacker := range s.Attackers {
		ResolveEncounter(attacker, s.Defender)
	}
}
