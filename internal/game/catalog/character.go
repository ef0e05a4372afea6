package catalog

// InventorySlot is one backpack entry of a character.
type InventorySlot struct {
	Slot     int    `json:"slot"`
	Code     string `json:"code"`
	Quantity int    `json:"quantity"`
}

// Character is a player character as reported by the game API.
type Character struct {
	Name  string `json:"name"`
	Skin  string `json:"skin"`
	Level int    `json:"level"`
	XP    int    `json:"xp"`
	MaxXP int    `json:"max_xp"`
	Gold  int    `json:"gold"`

	MiningLevel          int `json:"mining_level"`
	MiningXP             int `json:"mining_xp"`
	MiningMaxXP          int `json:"mining_max_xp"`
	WoodcuttingLevel     int `json:"woodcutting_level"`
	WoodcuttingXP        int `json:"woodcutting_xp"`
	WoodcuttingMaxXP     int `json:"woodcutting_max_xp"`
	FishingLevel         int `json:"fishing_level"`
	FishingXP            int `json:"fishing_xp"`
	FishingMaxXP         int `json:"fishing_max_xp"`
	WeaponcraftingLevel  int `json:"weaponcrafting_level"`
	WeaponcraftingXP     int `json:"weaponcrafting_xp"`
	WeaponcraftingMaxXP  int `json:"weaponcrafting_max_xp"`
	GearcraftingLevel    int `json:"gearcrafting_level"`
	GearcraftingXP       int `json:"gearcrafting_xp"`
	GearcraftingMaxXP    int `json:"gearcrafting_max_xp"`
	JewelrycraftingLevel int `json:"jewelrycrafting_level"`
	JewelrycraftingXP    int `json:"jewelrycrafting_xp"`
	JewelrycraftingMaxXP int `json:"jewelrycrafting_max_xp"`
	CookingLevel         int `json:"cooking_level"`
	CookingXP            int `json:"cooking_xp"`
	CookingMaxXP         int `json:"cooking_max_xp"`
	AlchemyLevel         int `json:"alchemy_level"`
	AlchemyXP            int `json:"alchemy_xp"`
	AlchemyMaxXP         int `json:"alchemy_max_xp"`

	HP             int `json:"hp"`
	MaxHP          int `json:"max_hp"`
	CriticalStrike int `json:"critical_strike"`
	FireAttack     int `json:"attack_fire"`
	EarthAttack    int `json:"attack_earth"`
	WaterAttack    int `json:"attack_water"`
	AirAttack      int `json:"attack_air"`
	FireDamage     int `json:"dmg_fire"`
	EarthDamage    int `json:"dmg_earth"`
	WaterDamage    int `json:"dmg_water"`
	AirDamage      int `json:"dmg_air"`
	FireResist     int `json:"res_fire"`
	EarthResist    int `json:"res_earth"`
	WaterResist    int `json:"res_water"`
	AirResist      int `json:"res_air"`

	WeaponSlot    string `json:"weapon_slot"`
	ShieldSlot    string `json:"shield_slot"`
	HelmetSlot    string `json:"helmet_slot"`
	BodyArmorSlot string `json:"body_armor_slot"`
	LegArmorSlot  string `json:"leg_armor_slot"`
	BootsSlot     string `json:"boots_slot"`
	Ring1Slot     string `json:"ring1_slot"`
	Ring2Slot     string `json:"ring2_slot"`
	AmuletSlot    string `json:"amulet_slot"`
	Artifact1Slot string `json:"artifact1_slot"`
	Artifact2Slot string `json:"artifact2_slot"`
	Artifact3Slot string `json:"artifact3_slot"`

	Utility1Slot         string `json:"utility1_slot"`
	Utility1SlotQuantity int    `json:"utility1_slot_quantity"`
	Utility2Slot         string `json:"utility2_slot"`
	Utility2SlotQuantity int    `json:"utility2_slot_quantity"`

	Inventory []InventorySlot `json:"inventory"`
}

// SkillProgress is one skill line of a character sheet.
type SkillProgress struct {
	Name  string
	Level int
	XP    int
	MaxXP int
}

// Skills returns the combat level followed by every gathering and crafting skill.
func (c Character) Skills() []SkillProgress {
	return []SkillProgress{
		{"Combat", c.Level, c.XP, c.MaxXP},
		{"Mining", c.MiningLevel, c.MiningXP, c.MiningMaxXP},
		{"Woodcutting", c.WoodcuttingLevel, c.WoodcuttingXP, c.WoodcuttingMaxXP},
		{"Fishing", c.FishingLevel, c.FishingXP, c.FishingMaxXP},
		{"Weaponcrafting", c.WeaponcraftingLevel, c.WeaponcraftingXP, c.WeaponcraftingMaxXP},
		{"Gearcrafting", c.GearcraftingLevel, c.GearcraftingXP, c.GearcraftingMaxXP},
		{"Jewelrycrafting", c.JewelrycraftingLevel, c.JewelrycraftingXP, c.JewelrycraftingMaxXP},
		{"Cooking", c.CookingLevel, c.CookingXP, c.CookingMaxXP},
		{"Alchemy", c.AlchemyLevel, c.AlchemyXP, c.AlchemyMaxXP},
	}
}

// EquippedItemCodes returns the codes of the gear a character wears, in slot
// order (weapon through the third artifact). Empty slots and utility slots are
// skipped.
//
// Postcondition: len(result) <= 12.
func (c Character) EquippedItemCodes() []string {
	slots := []string{
		c.WeaponSlot, c.ShieldSlot, c.HelmetSlot, c.BodyArmorSlot, c.LegArmorSlot,
		c.BootsSlot, c.Ring1Slot, c.Ring2Slot, c.AmuletSlot,
		c.Artifact1Slot, c.Artifact2Slot, c.Artifact3Slot,
	}
	codes := make([]string, 0, len(slots))
	for _, s := range slots {
		if s != "" {
			codes = append(codes, s)
		}
	}
	return codes
}
