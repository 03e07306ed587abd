package battle_test

import (
	"testing"

	"github.com/Artemis21/polycalc-api/internal/game/battle"
	"github.com/Artemis21/polycalc-api/internal/game/unit"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

// combatant builds a bare unit for comparison tests, where only health and
// status matter.
func combatant(health float64, frozen, converted bool) *unit.Unit {
	u := spawn(warriorTmpl, 0)
	u.Health = health
	u.Frozen = frozen
	u.Converted = converted
	return u
}

func defenderState(d *unit.Unit, attackerHealths ...float64) *battle.State {
	attackers := make([]*unit.Unit, len(attackerHealths))
	for i, h := range attackerHealths {
		attackers[i] = combatant(h, false, false)
	}
	return &battle.State{Attackers: attackers, Defender: d}
}

func TestPreference_String(t *testing.T) {
	assert.Equal(t, "better", battle.Better.String())
	assert.Equal(t, "worse", battle.Worse.String())
	assert.Equal(t, "indeterminate", battle.Indeterminate.String())
}

func TestPreference_Invert(t *testing.T) {
	assert.Equal(t, battle.Worse, battle.Better.Invert())
	assert.Equal(t, battle.Better, battle.Worse.Invert())
	assert.Equal(t, battle.Indeterminate, battle.Indeterminate.Invert())
}

func TestUnitPreference(t *testing.T) {
	tests := []struct {
		name string
		a    *unit.Unit
		b    *unit.Unit
		want battle.Preference
	}{
		{"healthier wins", combatant(7, false, false), combatant(5, false, false), battle.Better},
		{"less healthy loses", combatant(3, false, false), combatant(5, false, false), battle.Worse},
		{"health beats frozen status", combatant(7, true, false), combatant(5, false, false), battle.Better},
		{"equal health unfrozen wins", combatant(5, false, false), combatant(5, true, false), battle.Better},
		{"equal health frozen loses", combatant(5, true, false), combatant(5, false, false), battle.Worse},
		{"indistinguishable", combatant(5, false, false), combatant(5, false, false), battle.Indeterminate},
		{"both frozen indistinguishable", combatant(5, true, false), combatant(5, true, false), battle.Indeterminate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, battle.UnitPreference(tt.a, tt.b))
		})
	}
}

func TestUnitPreference_Property_Antisymmetric(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := combatant(float64(rapid.IntRange(-5, 15).Draw(t, "healthA")), rapid.Bool().Draw(t, "frozenA"), false)
		b := combatant(float64(rapid.IntRange(-5, 15).Draw(t, "healthB")), rapid.Bool().Draw(t, "frozenB"), false)

		forward := battle.UnitPreference(a, b)
		backward := battle.UnitPreference(b, a)

		assert.Equal(t, forward, backward.Invert())
		if a.Health == b.Health && a.Frozen == b.Frozen {
			assert.Equal(t, battle.Indeterminate, forward)
		} else {
			assert.NotEqual(t, battle.Indeterminate, forward)
		}
	})
}

func TestDefenderPreference(t *testing.T) {
	tests := []struct {
		name  string
		mine  *unit.Unit
		other *unit.Unit
		want  battle.Preference
	}{
		{"conversion dominates even at low health", combatant(1, false, true), combatant(15, false, false), battle.Better},
		{"unconverted loses to converted", combatant(-2, false, false), combatant(15, false, true), battle.Worse},
		{"both converted healthier is better", combatant(8, false, true), combatant(5, false, true), battle.Better},
		{"both converted equal is indeterminate", combatant(5, false, true), combatant(5, false, true), battle.Indeterminate},
		{"neither converted weaker defender is better", combatant(3, false, false), combatant(9, false, false), battle.Better},
		{"neither converted stronger defender is worse", combatant(9, false, false), combatant(3, false, false), battle.Worse},
		{"neither converted frozen defender is better", combatant(5, true, false), combatant(5, false, false), battle.Better},
		{"neither converted equal is indeterminate", combatant(5, false, false), combatant(5, false, false), battle.Indeterminate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := defenderState(tt.mine)
			other := defenderState(tt.other)

			assert.Equal(t, tt.want, s.DefenderPreference(other))
		})
	}
}

func TestDeadAttackers(t *testing.T) {
	s := defenderState(combatant(5, false, false), -1, 0, 3, -0.5)

	// Health zero is down but not dead.
	assert.Equal(t, 2, s.DeadAttackers())
}

func TestAttackersAreBetter(t *testing.T) {
	noLosses := defenderState(combatant(5, false, false), 4, 7)
	oneLoss := defenderState(combatant(5, false, false), -1, 7)

	assert.True(t, noLosses.AttackersAreBetter(oneLoss))
	assert.False(t, oneLoss.AttackersAreBetter(noLosses))
}

func TestAttackersAreBetter_TieFavoursOther(t *testing.T) {
	healthy := defenderState(combatant(5, false, false), 9, 9)
	battered := defenderState(combatant(5, false, false), 1, 0)

	// Equal death counts are a tie regardless of remaining health.
	assert.False(t, healthy.AttackersAreBetter(battered))
	assert.False(t, battered.AttackersAreBetter(healthy))
}

func TestBetterThan(t *testing.T) {
	t.Run("defender verdict decides", func(t *testing.T) {
		weakerDefender := defenderState(combatant(2, false, false), -1, -1)
		strongerDefender := defenderState(combatant(9, false, false), 10, 10)

		// A worse-off defender wins even at the cost of more attacker deaths.
		assert.True(t, weakerDefender.BetterThan(strongerDefender))
		assert.False(t, strongerDefender.BetterThan(weakerDefender))
	})

	t.Run("falls back to attacker deaths", func(t *testing.T) {
		noLosses := defenderState(combatant(5, false, false), 4, 7)
		oneLoss := defenderState(combatant(5, false, false), -1, 7)

		assert.True(t, noLosses.BetterThan(oneLoss))
		assert.False(t, oneLoss.BetterThan(noLosses))
	})

	t.Run("full tie favours the incumbent", func(t *testing.T) {
		a := defenderState(combatant(5, false, false), 9)
		b := defenderState(combatant(5, false, false), 2)

		assert.False(t, a.BetterThan(b))
		assert.False(t, b.BetterThan(a))
	})
}
