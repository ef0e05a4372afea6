// Package stats derives a character's effective combat stats from the items it
// has equipped.
package stats

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/artifactsbot/internal/game/catalog"
)

const (
	// BaseHP is a character's max HP before level and gear.
	BaseHP = 115
	// HPPerLevel is the max HP gained per character level.
	HPPerLevel = 5
)

// ErrInvalidInput is returned when a caller violates an input contract.
var ErrInvalidInput = errors.New("invalid input")

// CombatStats is a character's effective combat profile. Attack values are
// final (damage boosts applied); resistances are summed percentages.
type CombatStats struct {
	MaxHP          int
	FireAttack     int
	EarthAttack    int
	WaterAttack    int
	AirAttack      int
	FireResist     int
	EarthResist    int
	WaterResist    int
	AirResist      int
	CriticalStrike int
}

// Attack returns the final attack value for element e.
func (s CombatStats) Attack(e Element) int {
	switch e {
	case Fire:
		return s.FireAttack
	case Earth:
		return s.EarthAttack
	case Water:
		return s.WaterAttack
	case Air:
		return s.AirAttack
	}
	return 0
}

// Resist returns the resistance percentage for element e.
func (s CombatStats) Resist(e Element) int {
	switch e {
	case Fire:
		return s.FireResist
	case Earth:
		return s.EarthResist
	case Water:
		return s.WaterResist
	case Air:
		return s.AirResist
	}
	return 0
}

// MonsterAttack returns m's attack value for element e.
func MonsterAttack(m catalog.MonsterStats, e Element) int {
	switch e {
	case Fire:
		return m.FireAttack
	case Earth:
		return m.EarthAttack
	case Water:
		return m.WaterAttack
	case Air:
		return m.AirAttack
	}
	return 0
}

// MonsterResist returns m's resistance percentage for element e.
func MonsterResist(m catalog.MonsterStats, e Element) int {
	switch e {
	case Fire:
		return m.FireResist
	case Earth:
		return m.EarthResist
	case Water:
		return m.WaterResist
	case Air:
		return m.AirResist
	}
	return 0
}

// BoostedAttack applies a damage percentage to a raw attack value:
// RoundHalfUp(attack + attack*damagePercent*0.01). A zero attack stays zero.
func BoostedAttack(attack, damagePercent int) int {
	if attack == 0 {
		return 0
	}
	a := float64(attack)
	return RoundHalfUp(a + a*float64(damagePercent)*0.01)
}

// Aggregate sums the effects of every equipped item into a CombatStats for a
// character of the given level. Unknown effect codes are ignored.
//
// Precondition: level >= 0.
// Postcondition: MaxHP == BaseHP + level*HPPerLevel + sum of hp effects; each
// attack equals BoostedAttack(raw attack, damage %) for its element.
func Aggregate(items []catalog.Item, level int) (CombatStats, error) {
	if level < 0 {
		return CombatStats{}, fmt.Errorf("%w: level must be >= 0, got %d", ErrInvalidInput, level)
	}

	var (
		hp      = BaseHP + level*HPPerLevel
		crit    int
		attack  [elementCount]int
		damage  [elementCount]int
		resists [elementCount]int
	)
	for _, it := range items {
		for _, eff := range it.Effects {
			r, ok := effectRoutes[eff.Code]
			if !ok {
				continue
			}
			v := eff.Value * r.polarity
			switch r.bucket {
			case bucketHP:
				hp += v
			case bucketCriticalStrike:
				crit += v
			case bucketAttack:
				attack[r.element] += v
			case bucketDamage:
				damage[r.element] += v
			case bucketResist:
				resists[r.element] += v
			}
		}
	}

	return CombatStats{
		MaxHP:          hp,
		FireAttack:     BoostedAttack(attack[Fire], damage[Fire]),
		EarthAttack:    BoostedAttack(attack[Earth], damage[Earth]),
		WaterAttack:    BoostedAttack(attack[Water], damage[Water]),
		AirAttack:      BoostedAttack(attack[Air], damage[Air]),
		FireResist:     resists[Fire],
		EarthResist:    resists[Earth],
		WaterResist:    resists[Water],
		AirResist:      resists[Air],
		CriticalStrike: crit,
	}, nil
}
