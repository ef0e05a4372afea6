package combat

import (
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/artifactsbot/internal/game/catalog"
	"github.com/cory-johannsen/artifactsbot/internal/game/dice"
	"github.com/cory-johannsen/artifactsbot/internal/game/stats"
)

// ErrInvalidInput is returned for contract violations such as a non-positive
// iteration count. It is the same sentinel the stats package uses.
var ErrInvalidInput = stats.ErrInvalidInput

// minParallelIterations is the smallest batch worth fanning out to workers.
const minParallelIterations = 256

// Option configures a Simulator.
type Option func(*Simulator)

// WithWorkers sets how many goroutines run iterations. Values below 1 mean
// runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(s *Simulator) { s.workers = n }
}

// WithLogger sets the logger used for per-call debug lines.
func WithLogger(l *zap.Logger) Option {
	return func(s *Simulator) { s.logger = l }
}

// Simulator runs fights using an injected random source.
type Simulator struct {
	src     dice.Source
	workers int
	logger  *zap.Logger
}

// NewSimulator creates a Simulator drawing block rolls from src.
//
// Precondition: src must be non-nil and safe for concurrent use.
func NewSimulator(src dice.Source, opts ...Option) *Simulator {
	s := &Simulator{src: src, workers: 1, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.workers < 1 {
		s.workers = runtime.GOMAXPROCS(0)
	}
	return s
}

// BuildHits computes the character's hits against the monster and the
// monster's hits against the character. Elements with no positive attack are
// left out.
//
// Postcondition: every Hit.RealDamage == RoundHalfUp(attack - attack*resist*0.01).
func BuildHits(attacker stats.CombatStats, defender catalog.MonsterStats) (characterHits, monsterHits []Hit) {
	characterHits = make([]Hit, 0, len(stats.Elements))
	monsterHits = make([]Hit, 0, len(stats.Elements))
	for _, e := range stats.Elements {
		if a := attacker.Attack(e); a > 0 {
			characterHits = append(characterHits, newHit(a, stats.MonsterResist(defender, e)))
		}
		if a := stats.MonsterAttack(defender, e); a > 0 {
			monsterHits = append(monsterHits, newHit(a, attacker.Resist(e)))
		}
	}
	return characterHits, monsterHits
}

func newHit(attack, resist int) Hit {
	a := float64(attack)
	return Hit{
		RealDamage: stats.RoundHalfUp(a - a*float64(resist)*0.01),
		Resist:     resist,
	}
}

// IsDeterministic reports whether no hit on either side can be blocked, in
// which case every run of the fight plays out identically.
func IsDeterministic(characterHits, monsterHits []Hit) bool {
	for _, h := range characterHits {
		if h.Resist != 0 {
			return false
		}
	}
	for _, h := range monsterHits {
		if h.Resist != 0 {
			return false
		}
	}
	return true
}

// Simulate fights attacker against defender iterations times and returns one
// outcome per fight plus whether the encounter is deterministic. A
// deterministic encounter is fought exactly once whatever iterations says.
//
// Precondition: iterations > 0.
// Postcondition: len(outcomes) == 1 when deterministic, else iterations;
// outcomes are ordered by iteration.
func (s *Simulator) Simulate(attacker stats.CombatStats, defender catalog.MonsterStats, iterations int) ([]FightOutcome, bool, error) {
	if iterations <= 0 {
		return nil, false, fmt.Errorf("%w: iterations must be > 0, got %d", ErrInvalidInput, iterations)
	}
	if s.src == nil {
		return nil, false, fmt.Errorf("%w: simulator has no random source", ErrInvalidInput)
	}
	start := time.Now()

	characterHits, monsterHits := BuildHits(attacker, defender)
	deterministic := IsDeterministic(characterHits, monsterHits)
	if deterministic {
		iterations = 1
	}

	outcomes := make([]FightOutcome, iterations)
	if s.workers <= 1 || iterations < minParallelIterations {
		for i := range outcomes {
			outcomes[i] = s.fight(attacker.MaxHP, defender.HP, characterHits, monsterHits)
		}
	} else {
		var g errgroup.Group
		chunk := (iterations + s.workers - 1) / s.workers
		for lo := 0; lo < iterations; lo += chunk {
			hi := min(lo+chunk, iterations)
			g.Go(func() error {
				for i := lo; i < hi; i++ {
					outcomes[i] = s.fight(attacker.MaxHP, defender.HP, characterHits, monsterHits)
				}
				return nil
			})
		}
		_ = g.Wait()
	}

	s.logger.Debug("fight simulated",
		zap.Int("iterations", iterations),
		zap.Bool("deterministic", deterministic),
		zap.Int("character_hits", len(characterHits)),
		zap.Int("monster_hits", len(monsterHits)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return outcomes, deterministic, nil
}

// fight plays a single fight. All mutable state is local.
//
// The character acts on odd turns and the monster on even turns. A death is
// recorded but does not end the loop, so the turn count keeps running to show
// when the character would have won with unlimited healing. The first killing
// blow by the character ends the fight.
func (s *Simulator) fight(characterMaxHP, monsterMaxHP int, characterHits, monsterHits []Hit) FightOutcome {
	const (
		undecided = iota
		won
		lost
	)
	turn := 1
	characterHP := characterMaxHP
	monsterHP := monsterMaxHP
	lostOnTurn := 0
	result := undecided

	for turn < MaxTurns {
		if turn%2 == 0 {
			for _, h := range monsterHits {
				if s.landed(h) {
					characterHP -= h.RealDamage
				}
			}
			if result == undecided && characterHP <= 0 {
				result = lost
				lostOnTurn = turn
			}
		} else {
			for _, h := range characterHits {
				if s.landed(h) {
					monsterHP -= h.RealDamage
				}
			}
			if monsterHP <= 0 {
				if result == undecided {
					result = won
				}
				break
			}
		}
		turn++
	}

	out := FightOutcome{
		Won:                               result == won,
		TurnsToResolve:                    lostOnTurn,
		TurnsToResolveWithInfiniteHealing: turn,
		RemainingHP:                       characterHP,
	}
	if out.Won {
		out.TurnsToResolve = turn
	}
	return out
}

// landed reports whether h gets through. Hits with no positive resistance
// always land; otherwise the hit is blocked with probability Resist/1000.
func (s *Simulator) landed(h Hit) bool {
	return h.Resist <= 0 || h.Resist <= s.src.Intn(BlockRollSides)
}
