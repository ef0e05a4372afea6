// Package combat simulates turn-based fights between a character and a monster.
package combat

// MaxTurns caps a fight. The turn counter stops here; turn MaxTurns itself is
// never played.
const MaxTurns = 100

// BlockRollSides is the size of the block roll: a hit with resistance r is
// blocked when the roll in [0, BlockRollSides) is below r.
const BlockRollSides = 1000

// FightOutcome is the result of one simulated fight.
type FightOutcome struct {
	// Won is true when the character landed the first killing blow.
	Won bool
	// TurnsToResolve is the turn of the win, or of the character's death.
	// Zero means nobody died before the turn cap.
	TurnsToResolve int
	// TurnsToResolveWithInfiniteHealing is the last turn reached when the fight
	// keeps going past the character's death.
	TurnsToResolveWithInfiniteHealing int
	// RemainingHP is the character's HP when the loop ended. It can be negative.
	RemainingHP int
}

// Incomplete reports whether the fight hit the turn cap without a decision.
func (o FightOutcome) Incomplete() bool {
	return !o.Won && (o.TurnsToResolve <= 0 || o.TurnsToResolve >= MaxTurns)
}

// HealingToWin is the extra HP the character would have needed to survive
// until it won. Meaningful only for completed losses.
func (o FightOutcome) HealingToWin() int {
	return -o.RemainingHP + 1
}

// Hit is one elemental attack as it lands on a specific target.
type Hit struct {
	// RealDamage is the damage after the target's resistance.
	RealDamage int
	// Resist is the target's resistance percentage to this element. It doubles
	// as the per-mille chance that the hit is blocked.
	Resist int
}
