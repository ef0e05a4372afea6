// Package catalog holds the game data the bot works with: items, monsters,
// characters and the effect vocabulary, as supplied by the game API or by
// offline YAML files.
package catalog

import "encoding/json"

// Effect codes known to the bot. The vocabulary grows with the game; codes not
// listed here are carried through untouched and simply have no display name.
const (
	EffectAlchemy          = "alchemy"
	EffectAntipoison       = "antipoison"
	EffectAirAttack        = "attack_air"
	EffectEarthAttack      = "attack_earth"
	EffectFireAttack       = "attack_fire"
	EffectWaterAttack      = "attack_water"
	EffectAirDamageBoost   = "boost_dmg_air"
	EffectEarthDamageBoost = "boost_dmg_earth"
	EffectFireDamageBoost  = "boost_dmg_fire"
	EffectWaterDamageBoost = "boost_dmg_water"
	EffectHPBoost          = "boost_hp"
	EffectAirResistBoost   = "boost_res_air"
	EffectEarthResistBoost = "boost_res_earth"
	EffectFireResistBoost  = "boost_res_fire"
	EffectWaterResistBoost = "boost_res_water"
	EffectBurn             = "burn"
	EffectCriticalStrike   = "critical_strike"
	EffectDamage           = "dmg"
	EffectAirDamage        = "dmg_air"
	EffectEarthDamage      = "dmg_earth"
	EffectFireDamage       = "dmg_fire"
	EffectWaterDamage      = "dmg_water"
	EffectFishing          = "fishing"
	EffectGold             = "gold"
	EffectHaste            = "haste"
	EffectHeal             = "heal"
	EffectHealing          = "healing"
	EffectHP               = "hp"
	EffectInventorySpace   = "inventory_space"
	EffectLifesteal        = "lifesteal"
	EffectMining           = "mining"
	EffectPoison           = "poison"
	EffectProspecting      = "prospecting"
	EffectAirResist        = "res_air"
	EffectEarthResist      = "res_earth"
	EffectFireResist       = "res_fire"
	EffectWaterResist      = "res_water"
	EffectRestore          = "restore"
	EffectTeleportX        = "teleport_x"
	EffectTeleportY        = "teleport_y"
	EffectWisdom           = "wisdom"
	EffectWoodcutting      = "woodcutting"
)

var effectDisplayNames = map[string]string{
	EffectAlchemy:          "% Alchemy CD",
	EffectAntipoison:       "Antipoison",
	EffectAirAttack:        "Air Attack",
	EffectEarthAttack:      "Earth Attack",
	EffectFireAttack:       "Fire Attack",
	EffectWaterAttack:      "Water Attack",
	EffectAirDamageBoost:   "% Air Damage Boost",
	EffectEarthDamageBoost: "% Earth Damage Boost",
	EffectFireDamageBoost:  "% Fire Damage Boost",
	EffectWaterDamageBoost: "% Water Damage Boost",
	EffectHPBoost:          "HP Boost",
	EffectAirResistBoost:   "% Air Res Boost",
	EffectEarthResistBoost: "% Earth Res Boost",
	EffectFireResistBoost:  "% Fire Res Boost",
	EffectWaterResistBoost: "% Water Res Boost",
	EffectBurn:             "% Burn",
	EffectCriticalStrike:   "% Critical Strike",
	EffectDamage:           "% Damage",
	EffectAirDamage:        "% Air Damage",
	EffectEarthDamage:      "% Earth Damage",
	EffectFireDamage:       "% Fire Damage",
	EffectWaterDamage:      "% Water Damage",
	EffectFishing:          "% Fishing CD",
	EffectGold:             "Gold",
	EffectHaste:            "Haste",
	EffectHeal:             "HP Heal",
	EffectHealing:          "% Healing",
	EffectHP:               "Max HP",
	EffectInventorySpace:   "Inventory Space",
	EffectLifesteal:        "% Lifesteal",
	EffectMining:           "% Mining CD",
	EffectPoison:           "Poison",
	EffectProspecting:      "Prospecting",
	EffectAirResist:        "% Res Air",
	EffectEarthResist:      "% Res Earth",
	EffectFireResist:       "% Res Fire",
	EffectWaterResist:      "% Res Water",
	EffectRestore:          "HP Restore",
	EffectTeleportX:        "(X) Teleport",
	EffectTeleportY:        "(Y) Teleport",
	EffectWisdom:           "Wisdom",
	EffectWoodcutting:      "% Woodcutting CD",
}

// DisplayName returns the human-readable label for an effect code, or the code
// itself when it is not part of the known vocabulary.
func DisplayName(code string) string {
	if name, ok := effectDisplayNames[code]; ok {
		return name
	}
	return code
}

// Effect is a named numeric modifier carried by an item.
type Effect struct {
	Code  string `json:"code" yaml:"code"`
	Value int    `json:"value" yaml:"value"`
}

// UnmarshalJSON accepts both the current "code" key and the older "name" key
// the API used for effect codes.
func (e *Effect) UnmarshalJSON(data []byte) error {
	var raw struct {
		Code  string `json:"code"`
		Name  string `json:"name"`
		Value int    `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Code = raw.Code
	if e.Code == "" {
		e.Code = raw.Name
	}
	e.Value = raw.Value
	return nil
}
