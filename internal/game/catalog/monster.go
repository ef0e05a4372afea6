package catalog

import (
	"errors"
	"fmt"
)

// MonsterStats is the combat-relevant part of a monster. Resistances are
// percentages.
type MonsterStats struct {
	HP          int `json:"hp" yaml:"hp"`
	FireAttack  int `json:"attack_fire" yaml:"attack_fire"`
	EarthAttack int `json:"attack_earth" yaml:"attack_earth"`
	WaterAttack int `json:"attack_water" yaml:"attack_water"`
	AirAttack   int `json:"attack_air" yaml:"attack_air"`
	FireResist  int `json:"res_fire" yaml:"res_fire"`
	EarthResist int `json:"res_earth" yaml:"res_earth"`
	WaterResist int `json:"res_water" yaml:"res_water"`
	AirResist   int `json:"res_air" yaml:"res_air"`
}

// Drop is one entry of a monster's loot table. A Rate of N means a 1-in-N chance.
type Drop struct {
	Code        string `json:"code" yaml:"code"`
	Rate        int    `json:"rate" yaml:"rate"`
	MinQuantity int    `json:"min_quantity" yaml:"min_quantity"`
	MaxQuantity int    `json:"max_quantity" yaml:"max_quantity"`
}

// ChancePercent returns the drop chance as a percentage.
//
// Postcondition: returns 0 when Rate <= 0.
func (d Drop) ChancePercent() float64 {
	if d.Rate <= 0 {
		return 0
	}
	return 100.0 / float64(d.Rate)
}

// Monster is a fightable game monster.
type Monster struct {
	Code    string `json:"code" yaml:"code"`
	Name    string `json:"name" yaml:"name"`
	Level   int    `json:"level" yaml:"level"`
	MinGold int    `json:"min_gold" yaml:"min_gold"`
	MaxGold int    `json:"max_gold" yaml:"max_gold"`
	Drops   []Drop `json:"drops" yaml:"drops"`

	MonsterStats `yaml:",inline"`
}

// DropFor returns the loot entry for code and whether the monster drops it.
func (m Monster) DropFor(code string) (Drop, bool) {
	for _, d := range m.Drops {
		if d.Code == code {
			return d, true
		}
	}
	return Drop{}, false
}

// Validate checks that the Monster satisfies its invariants.
//
// Postcondition: returns nil iff Code and Name are set and HP is positive.
func (m Monster) Validate() error {
	var errs []error
	if m.Code == "" {
		errs = append(errs, errors.New("code must not be empty"))
	}
	if m.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if m.HP <= 0 {
		errs = append(errs, fmt.Errorf("hp must be > 0, got %d", m.HP))
	}
	if len(errs) > 0 {
		return fmt.Errorf("monster %q validation failed: %w", m.Code, errors.Join(errs...))
	}
	return nil
}
