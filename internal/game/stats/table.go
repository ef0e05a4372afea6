package stats

import "github.com/cory-johannsen/artifactsbot/internal/game/catalog"

// bucket identifies the accumulator an effect feeds.
type bucket int

const (
	bucketHP bucket = iota
	bucketCriticalStrike
	bucketAttack
	bucketDamage
	bucketResist
)

// Element is one of the four damage elements.
type Element int

const (
	Fire Element = iota
	Earth
	Water
	Air
)

const elementCount = 4

// Elements lists every element in display order.
var Elements = [elementCount]Element{Fire, Earth, Water, Air}

func (e Element) String() string {
	switch e {
	case Fire:
		return "Fire"
	case Earth:
		return "Earth"
	case Water:
		return "Water"
	case Air:
		return "Air"
	}
	return "Unknown"
}

// route says where an effect's value goes: a bucket, the element for
// elemental buckets, and a sign applied to the value.
type route struct {
	bucket   bucket
	element  Element
	polarity int
}

// effectRoutes maps effect codes to accumulators. The base and "boost_"
// spellings of a stat share a route. Codes absent from the table do not
// affect combat stats.
var effectRoutes = map[string]route{
	catalog.EffectHP:             {bucket: bucketHP, polarity: 1},
	catalog.EffectHPBoost:        {bucket: bucketHP, polarity: 1},
	catalog.EffectCriticalStrike: {bucket: bucketCriticalStrike, polarity: 1},

	catalog.EffectFireAttack:  {bucketAttack, Fire, 1},
	catalog.EffectEarthAttack: {bucketAttack, Earth, 1},
	catalog.EffectWaterAttack: {bucketAttack, Water, 1},
	catalog.EffectAirAttack:   {bucketAttack, Air, 1},

	catalog.EffectFireDamage:       {bucketDamage, Fire, 1},
	catalog.EffectFireDamageBoost:  {bucketDamage, Fire, 1},
	catalog.EffectEarthDamage:      {bucketDamage, Earth, 1},
	catalog.EffectEarthDamageBoost: {bucketDamage, Earth, 1},
	catalog.EffectWaterDamage:      {bucketDamage, Water, 1},
	catalog.EffectWaterDamageBoost: {bucketDamage, Water, 1},
	catalog.EffectAirDamage:        {bucketDamage, Air, 1},
	catalog.EffectAirDamageBoost:   {bucketDamage, Air, 1},

	catalog.EffectFireResist:       {bucketResist, Fire, 1},
	catalog.EffectFireResistBoost:  {bucketResist, Fire, 1},
	catalog.EffectEarthResist:      {bucketResist, Earth, 1},
	catalog.EffectEarthResistBoost: {bucketResist, Earth, 1},
	catalog.EffectWaterResist:      {bucketResist, Water, 1},
	catalog.EffectWaterResistBoost: {bucketResist, Water, 1},
	catalog.EffectAirResist:        {bucketResist, Air, 1},
	catalog.EffectAirResistBoost:   {bucketResist, Air, 1},
}

// AffectsCombat reports whether an effect code contributes to CombatStats.
func AffectsCombat(code string) bool {
	_, ok := effectRoutes[code]
	return ok
}
