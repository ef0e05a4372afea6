package catalog

import (
	"errors"
	"fmt"
)

// Slot names an equipment slot family. Ring, artifact and utility slots come
// in several numbered copies on a character; a Slot covers the whole family.
type Slot string

const (
	SlotNone      Slot = ""
	SlotWeapon    Slot = "weapon"
	SlotShield    Slot = "shield"
	SlotHelmet    Slot = "helmet"
	SlotBodyArmor Slot = "body_armor"
	SlotLegArmor  Slot = "leg_armor"
	SlotBoots     Slot = "boots"
	SlotRing      Slot = "ring"
	SlotAmulet    Slot = "amulet"
	SlotArtifact  Slot = "artifact"
	SlotUtility   Slot = "utility"
)

// slotCapacity is how many items of a slot family a character can wear.
var slotCapacity = map[Slot]int{
	SlotWeapon:    1,
	SlotShield:    1,
	SlotHelmet:    1,
	SlotBodyArmor: 1,
	SlotLegArmor:  1,
	SlotBoots:     1,
	SlotRing:      2,
	SlotAmulet:    1,
	SlotArtifact:  3,
	SlotUtility:   2,
}

// SlotForType maps an item type to the slot family it is worn in.
//
// Postcondition: returns SlotNone for types that cannot be equipped (resources, consumables, ...).
func SlotForType(itemType string) Slot {
	s := Slot(itemType)
	if _, ok := slotCapacity[s]; ok {
		return s
	}
	return SlotNone
}

// CraftItem is one ingredient of a recipe.
type CraftItem struct {
	Code     string `json:"code" yaml:"code"`
	Quantity int    `json:"quantity" yaml:"quantity"`
}

// Craft describes how an item is produced.
type Craft struct {
	Skill    string      `json:"skill" yaml:"skill"`
	Level    int         `json:"level" yaml:"level"`
	Items    []CraftItem `json:"items" yaml:"items"`
	Quantity int         `json:"quantity" yaml:"quantity"`
}

// Item is an equippable (or otherwise usable) game item.
type Item struct {
	Code        string   `json:"code" yaml:"code"`
	Name        string   `json:"name" yaml:"name"`
	Level       int      `json:"level" yaml:"level"`
	Type        string   `json:"type" yaml:"type"`
	Subtype     string   `json:"subtype" yaml:"subtype"`
	Description string   `json:"description" yaml:"description"`
	Effects     []Effect `json:"effects" yaml:"effects"`
	Craft       *Craft   `json:"craft,omitempty" yaml:"craft,omitempty"`
}

// Slot returns the slot family the item is worn in.
func (i Item) Slot() Slot {
	return SlotForType(i.Type)
}

// UsesIngredient reports whether code appears in the item's recipe.
func (i Item) UsesIngredient(code string) bool {
	if i.Craft == nil {
		return false
	}
	for _, ci := range i.Craft.Items {
		if ci.Code == code {
			return true
		}
	}
	return false
}

// Validate checks that the Item satisfies its invariants.
//
// Postcondition: returns nil iff Code and Name are set and Level is non-negative.
func (i Item) Validate() error {
	var errs []error
	if i.Code == "" {
		errs = append(errs, errors.New("code must not be empty"))
	}
	if i.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if i.Level < 0 {
		errs = append(errs, fmt.Errorf("level must be >= 0, got %d", i.Level))
	}
	if len(errs) > 0 {
		return fmt.Errorf("item %q validation failed: %w", i.Code, errors.Join(errs...))
	}
	return nil
}
