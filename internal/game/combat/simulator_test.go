package combat_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/artifactsbot/internal/game/catalog"
	"github.com/cory-johannsen/artifactsbot/internal/game/combat"
	"github.com/cory-johannsen/artifactsbot/internal/game/dice"
	"github.com/cory-johannsen/artifactsbot/internal/game/stats"
)

func simulate(t *testing.T, src dice.Source, attacker stats.CombatStats, defender catalog.MonsterStats, iterations int) ([]combat.FightOutcome, bool) {
	t.Helper()
	sim := combat.NewSimulator(src, combat.WithLogger(zaptest.NewLogger(t)))
	outcomes, deterministic, err := sim.Simulate(attacker, defender, iterations)
	require.NoError(t, err)
	return outcomes, deterministic
}

func TestSimulate_RejectsNonPositiveIterations(t *testing.T) {
	sim := combat.NewSimulator(dice.NewSeededSource(1))
	for _, n := range []int{0, -1} {
		outcomes, _, err := sim.Simulate(stats.CombatStats{MaxHP: 100}, catalog.MonsterStats{HP: 10}, n)
		assert.True(t, errors.Is(err, combat.ErrInvalidInput), "iterations=%d", n)
		assert.Nil(t, outcomes)
	}
}

func TestSimulate_ErrInvalidInputMatchesStats(t *testing.T) {
	assert.True(t, errors.Is(combat.ErrInvalidInput, stats.ErrInvalidInput))
}

func TestSimulate_CharacterActsOnOddTurns(t *testing.T) {
	attacker := stats.CombatStats{MaxHP: 100, FireAttack: 50}
	defender := catalog.MonsterStats{HP: 50, EarthAttack: 10}

	outcomes, deterministic := simulate(t, dice.NewSeededSource(1), attacker, defender, 10)
	require.True(t, deterministic)
	require.Len(t, outcomes, 1)
	assert.Equal(t, combat.FightOutcome{
		Won:                               true,
		TurnsToResolve:                    1,
		TurnsToResolveWithInfiniteHealing: 1,
		RemainingHP:                       100,
	}, outcomes[0])
}

func TestSimulate_LossIsRecordedButFightContinues(t *testing.T) {
	attacker := stats.CombatStats{MaxHP: 10, FireAttack: 10}
	defender := catalog.MonsterStats{HP: 30, EarthAttack: 20}

	outcomes, deterministic := simulate(t, dice.NewSeededSource(1), attacker, defender, 1000)
	require.True(t, deterministic)
	require.Len(t, outcomes, 1)
	o := outcomes[0]
	assert.False(t, o.Won)
	assert.Equal(t, 2, o.TurnsToResolve)
	assert.Equal(t, 5, o.TurnsToResolveWithInfiniteHealing)
	assert.Equal(t, -30, o.RemainingHP)
	assert.False(t, o.Incomplete())
	assert.Equal(t, 31, o.HealingToWin())
}

func TestSimulate_TurnCap(t *testing.T) {
	outcomes, deterministic := simulate(t, dice.NewSeededSource(1), stats.CombatStats{MaxHP: 100}, catalog.MonsterStats{HP: 10}, 50)
	require.True(t, deterministic)
	require.Len(t, outcomes, 1)
	o := outcomes[0]
	assert.False(t, o.Won)
	assert.Equal(t, 0, o.TurnsToResolve)
	assert.Equal(t, combat.MaxTurns, o.TurnsToResolveWithInfiniteHealing)
	assert.Equal(t, 100, o.RemainingHP)
	assert.True(t, o.Incomplete())
}

func TestSimulate_ResistAboveHundredHealsTarget(t *testing.T) {
	attacker := stats.CombatStats{MaxHP: 100, FireAttack: 10}
	defender := catalog.MonsterStats{HP: 20, FireResist: 150}

	outcomes, deterministic := simulate(t, dice.NewSeededSource(7), attacker, defender, 200)
	require.False(t, deterministic)
	require.Len(t, outcomes, 200)
	for _, o := range outcomes {
		assert.True(t, o.Incomplete())
		assert.Equal(t, 100, o.RemainingHP)
		assert.Equal(t, combat.MaxTurns, o.TurnsToResolveWithInfiniteHealing)
	}
}

func TestSimulate_BlockRoll(t *testing.T) {
	attacker := stats.CombatStats{MaxHP: 100, FireAttack: 100}
	defender := catalog.MonsterStats{HP: 50, FireResist: 10}

	// Roll 5 is below resist 10 so the first hit is blocked; roll 500 lands.
	outcomes, deterministic := simulate(t, &dice.FixedSource{Values: []int{5, 500}}, attacker, defender, 1)
	require.False(t, deterministic)
	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].Won)
	assert.Equal(t, 3, outcomes[0].TurnsToResolve)

	// A roll equal to the resist lands.
	outcomes, _ = simulate(t, &dice.FixedSource{Values: []int{10}}, attacker, defender, 1)
	assert.True(t, outcomes[0].Won)
	assert.Equal(t, 1, outcomes[0].TurnsToResolve)
}

func TestSimulate_ParallelMatchesSequential(t *testing.T) {
	attacker := stats.CombatStats{MaxHP: 100, FireAttack: 100}
	defender := catalog.MonsterStats{HP: 200, FireResist: 10, EarthAttack: 10}
	want := combat.FightOutcome{
		Won:                               true,
		TurnsToResolve:                    5,
		TurnsToResolveWithInfiniteHealing: 5,
		RemainingHP:                       80,
	}

	sim := combat.NewSimulator(&dice.FixedSource{Values: []int{999}}, combat.WithWorkers(4))
	outcomes, deterministic, err := sim.Simulate(attacker, defender, 1000)
	require.NoError(t, err)
	require.False(t, deterministic)
	require.Len(t, outcomes, 1000)
	for i, o := range outcomes {
		require.Equal(t, want, o, "iteration %d", i)
	}
}

func TestBuildHits(t *testing.T) {
	attacker := stats.CombatStats{MaxHP: 100, FireAttack: 15, WaterAttack: 0, EarthResist: 25}
	defender := catalog.MonsterStats{HP: 10, FireResist: 10, EarthAttack: 8, AirAttack: 4}

	characterHits, monsterHits := combat.BuildHits(attacker, defender)
	// 15 - 1.5 = 13.5 rounds up.
	assert.Equal(t, []combat.Hit{{RealDamage: 14, Resist: 10}}, characterHits)
	assert.Equal(t, []combat.Hit{{RealDamage: 6, Resist: 25}, {RealDamage: 4, Resist: 0}}, monsterHits)
	assert.False(t, combat.IsDeterministic(characterHits, monsterHits))
	assert.True(t, combat.IsDeterministic([]combat.Hit{{RealDamage: 3}}, []combat.Hit{{RealDamage: 4}}))
}

// TestSimulate_WinRateMonotoneInAttack checks that more attack never lowers
// the win rate once sampling noise is small relative to the gaps.
func TestSimulate_WinRateMonotoneInAttack(t *testing.T) {
	defender := catalog.MonsterStats{HP: 100, FireResist: 50, EarthAttack: 30}
	sim := combat.NewSimulator(dice.NewSeededSource(42), combat.WithWorkers(2))

	var rates []float64
	for _, attack := range []int{40, 50, 70, 120} {
		outcomes, _, err := sim.Simulate(stats.CombatStats{MaxHP: 100, FireAttack: attack}, defender, 5000)
		require.NoError(t, err)
		wins := 0
		for _, o := range outcomes {
			if o.Won {
				wins++
			}
		}
		rates = append(rates, float64(wins)/float64(len(outcomes)))
	}
	assert.Equal(t, 0.0, rates[0])
	assert.Greater(t, rates[3], 0.99)
	for i := 1; i < len(rates); i++ {
		assert.GreaterOrEqual(t, rates[i], rates[i-1], "rates=%v", rates)
	}
}

func TestSimulate_Property_OutcomeShape(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		attacker := stats.CombatStats{
			MaxHP:       rapid.IntRange(1, 500).Draw(rt, "maxHP"),
			FireAttack:  rapid.IntRange(0, 60).Draw(rt, "fireAttack"),
			AirAttack:   rapid.IntRange(0, 60).Draw(rt, "airAttack"),
			WaterResist: rapid.IntRange(0, 60).Draw(rt, "waterResist"),
		}
		defender := catalog.MonsterStats{
			HP:          rapid.IntRange(1, 500).Draw(rt, "hp"),
			WaterAttack: rapid.IntRange(0, 60).Draw(rt, "waterAttack"),
			FireResist:  rapid.IntRange(0, 60).Draw(rt, "fireResist"),
		}
		iterations := rapid.IntRange(1, 30).Draw(rt, "iterations")
		seed := rapid.Uint64().Draw(rt, "seed")

		sim := combat.NewSimulator(dice.NewSeededSource(seed))
		outcomes, deterministic, err := sim.Simulate(attacker, defender, iterations)
		if err != nil {
			rt.Fatalf("Simulate: %v", err)
		}
		characterHits, monsterHits := combat.BuildHits(attacker, defender)
		assert.Equal(rt, combat.IsDeterministic(characterHits, monsterHits), deterministic)
		if deterministic {
			assert.Len(rt, outcomes, 1)
		} else {
			assert.Len(rt, outcomes, iterations)
		}
		for _, o := range outcomes {
			assert.GreaterOrEqual(rt, o.TurnsToResolveWithInfiniteHealing, 1)
			assert.LessOrEqual(rt, o.TurnsToResolveWithInfiniteHealing, combat.MaxTurns)
			if o.Won {
				assert.Equal(rt, o.TurnsToResolveWithInfiniteHealing, o.TurnsToResolve)
				assert.Equal(rt, 1, o.TurnsToResolve%2, "wins land on odd turns")
				continue
			}
			if o.TurnsToResolve > 0 {
				assert.Equal(rt, 0, o.TurnsToResolve%2, "deaths land on even turns")
				assert.LessOrEqual(rt, o.RemainingHP, 0)
			} else {
				assert.Equal(rt, combat.MaxTurns, o.TurnsToResolveWithInfiniteHealing)
			}
		}
	})
}
