package battle_test

import (
	"testing"

	"github.com/Artemis21/polycalc-api/internal/game/battle"
	"github.com/Artemis21/polycalc-api/internal/game/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestOptimise_PicksBestOrder(t *testing.T) {
	s := &battle.State{
		Attackers: []*unit.Unit{spawn(warriorTmpl, 0), spawn(giantTmpl, 0)},
		Defender:  spawn(defenderTmpl, unit.FlagWalled),
	}

	order, best, err := battle.Optimise(s)
	require.NoError(t, err)

	// Giant first: the warrior mops up a weakened defender and survives its
	// retaliation on exactly zero health. Warrior first, the full-strength
	// retaliation kills it.
	assert.Equal(t, []int{1, 0}, order)
	assert.Equal(t, 6.0, best.Defender.Health)
	assert.Equal(t, 30.0, best.Attackers[0].Health)
	assert.Equal(t, 0.0, best.Attackers[1].Health)
	assert.Equal(t, 0, best.DeadAttackers())
}

func TestOptimise_DoesNotMutateInput(t *testing.T) {
	s := &battle.State{
		Attackers: []*unit.Unit{spawn(warriorTmpl, 0), spawn(giantTmpl, 0)},
		Defender:  spawn(defenderTmpl, unit.FlagWalled),
	}

	_, _, err := battle.Optimise(s)
	require.NoError(t, err)

	assert.Equal(t, 10.0, s.Attackers[0].Health)
	assert.Equal(t, 40.0, s.Attackers[1].Health)
	assert.Equal(t, 15.0, s.Defender.Health)
}

func TestOptimise_TieKeepsEarliestOrder(t *testing.T) {
	s := &battle.State{
		Attackers: []*unit.Unit{spawn(warriorTmpl, 0), spawn(archerTmpl, 0)},
		Defender:  spawn(warriorTmpl, 0),
	}

	order, best, err := battle.Optimise(s)
	require.NoError(t, err)

	// Both orders kill the defender with no attacker deaths; archer-first
	// would spare the warrior any retaliation, but with no health
	// comparison between survivors the first ordering stands.
	assert.Equal(t, []int{0, 1}, order)
	assert.Equal(t, -1.0, best.Defender.Health)
	assert.Equal(t, 5.0, best.Attackers[0].Health)
}

func TestOptimise_ConversionDominates(t *testing.T) {
	s := &battle.State{
		Attackers: []*unit.Unit{spawn(mindBenderTmpl, 0), spawn(catapultTmpl, 0)},
		Defender:  spawn(warriorTmpl, 0),
	}

	order, best, err := battle.Optimise(s)
	require.NoError(t, err)

	// Converting first leaves the defender untouched on our side; shooting
	// first leaves only a dying convert.
	assert.Equal(t, []int{0, 1}, order)
	assert.True(t, best.Defender.Converted)
	assert.Equal(t, 10.0, best.Defender.Health)
}

func TestOptimise_SingleAttacker(t *testing.T) {
	s := &battle.State{
		Attackers: []*unit.Unit{spawn(warriorTmpl, 0)},
		Defender:  spawn(warriorTmpl, 0),
	}

	order, best, err := battle.Optimise(s)
	require.NoError(t, err)

	assert.Equal(t, []int{0}, order)
	assert.Equal(t, 5.0, best.Defender.Health)
	assert.Equal(t, 5.0, best.Attackers[0].Health)
}

func TestOptimise_NoAttackers(t *testing.T) {
	s := &battle.State{Defender: spawn(warriorTmpl, 0)}

	_, _, err := battle.Optimise(s)
	assert.ErrorIs(t, err, battle.ErrNoAttackers)
}

func TestOptimise_Property_ResultMatchesReplay(t *testing.T) {
	pool := []unit.Template{warriorTmpl, archerTmpl, catapultTmpl, defenderTmpl, mindBenderTmpl}

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 4).Draw(t, "attackers")
		s := &battle.State{Defender: spawn(warriorTmpl, 0)}
		for i := 0; i < n; i++ {
			tmpl := pool[rapid.IntRange(0, len(pool)-1).Draw(t, "template")]
			s.Attackers = append(s.Attackers, spawn(tmpl, 0))
		}

		order, best, err := battle.Optimise(s)
		require.NoError(t, err)
		require.Len(t, order, n)

		used := make([]bool, n)
		for _, idx := range order {
			require.GreaterOrEqual(t, idx, 0)
			require.Less(t, idx, n)
			require.False(t, used[idx], "order must be a permutation")
			used[idx] = true
		}

		replay := s.Reorder(order)
		battle.ResolveSequence(replay)
		require.Len(t, best.Attackers, n)
		for i := range best.Attackers {
			assert.Equal(t, replay.Attackers[i].Health, best.Attackers[i].Health)
		}
		assert.Equal(t, replay.Defender.Health, best.Defender.Health)
		assert.Equal(t, replay.Defender.Frozen, best.Defender.Frozen)
		assert.Equal(t, replay.Defender.Converted, best.Defender.Converted)
	})
}
