package handlers

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cory-johannsen/artifactsbot/internal/command"
	"github.com/cory-johannsen/artifactsbot/internal/companion"
	"github.com/cory-johannsen/artifactsbot/internal/frontend/telnet"
	"github.com/cory-johannsen/artifactsbot/internal/game/catalog"
	"github.com/cory-johannsen/artifactsbot/internal/game/stats"
)

const columnGap = 4

var titleCaser = cases.Title(language.English)

// none marks an empty field.
var none = telnet.Colorize(telnet.Dim, "-")

func title(text string) string {
	return telnet.Colorize(telnet.Bold+telnet.BrightYellow, text)
}

func heading(text string) string {
	return telnet.Colorize(telnet.Cyan, text)
}

func code(c string) string {
	return telnet.Colorize(telnet.BrightCyan, c)
}

// field renders "Label: value", or "Label: -" for an empty value.
func field(label, value string) string {
	if value == "" {
		value = none
	}
	return heading(label+":") + " " + value
}

// section renders a heading followed by indented entries.
func section(label string, entries []string) []string {
	out := []string{heading(label)}
	if len(entries) == 0 {
		return append(out, "  "+none)
	}
	for _, e := range entries {
		out = append(out, "  "+e)
	}
	return out
}

// typeLabel turns "body_armor" into "Body Armor".
func typeLabel(s string) string {
	return titleCaser.String(strings.ReplaceAll(s, "_", " "))
}

// percentage formats current/max as a percentage with at most one decimal.
func percentage(current, max int) string {
	if max <= 0 {
		return "0"
	}
	return trimZeros(strconv.FormatFloat(float64(current)/float64(max)*100, 'f', 1, 64))
}

func trimZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	return strings.TrimSuffix(strings.TrimRight(s, "0"), ".")
}

// dropRate formats a loot entry's chance and quantity range, e.g. "12.5% (1-3)".
func dropRate(d catalog.Drop) string {
	s := trimZeros(strconv.FormatFloat(d.ChancePercent(), 'f', 2, 64)) + "%"
	if d.MinQuantity != d.MaxQuantity {
		s += fmt.Sprintf(" (%d-%d)", d.MinQuantity, d.MaxQuantity)
	}
	return s
}

// RenderItem formats an item with its recipe, the items it is used in and
// the monsters that drop it.
func RenderItem(item catalog.Item, reg *catalog.Registry) []string {
	lines := []string{
		title(fmt.Sprintf("%s (%s)", item.Name, item.Code)),
		field("Type", typeLabel(item.Type)) + "   " + field("Subtype", typeLabel(item.Subtype)) + "   " + field("Level", strconv.Itoa(item.Level)),
	}
	if item.Description != "" {
		lines = append(lines, telnet.Colorize(telnet.Dim, item.Description))
	}
	if len(item.Effects) > 0 {
		effects := make([]string, len(item.Effects))
		for i, e := range item.Effects {
			effects[i] = fmt.Sprintf("%d %s", e.Value, catalog.DisplayName(e.Code))
		}
		lines = append(lines, section("Effects", effects)...)
	}
	if item.Craft != nil {
		recipe := make([]string, len(item.Craft.Items))
		for i, ci := range item.Craft.Items {
			recipe[i] = fmt.Sprintf("%s x%d", code(ci.Code), ci.Quantity)
		}
		lines = append(lines, field("Craft Skill", fmt.Sprintf("%s %d", item.Craft.Skill, item.Craft.Level)))
		lines = append(lines, section("Craft Recipe", recipe)...)
	}
	if reg == nil {
		return lines
	}
	if used := reg.ItemsCraftedWith(item.Code); len(used) > 0 {
		codes := make([]string, len(used))
		for i, u := range used {
			codes[i] = code(u.Code)
		}
		lines = append(lines, section("Used to Craft", codes)...)
	}
	if droppers := reg.MonstersDropping(item.Code); len(droppers) > 0 {
		entries := make([]string, 0, len(droppers))
		for _, m := range droppers {
			d, _ := m.DropFor(item.Code)
			entries = append(entries, code(m.Code)+" "+dropRate(d))
		}
		lines = append(lines, section("Dropped By", entries)...)
	}
	return lines
}

// elementLines lists the non-zero values of get per element. Positive-only
// lists (attacks) pass positiveOnly.
func elementLines(get func(stats.Element) int, suffix string, positiveOnly bool) []string {
	var out []string
	for _, e := range stats.Elements {
		v := get(e)
		if v == 0 || (positiveOnly && v < 0) {
			continue
		}
		out = append(out, fmt.Sprintf("%s: %d%s", e, v, suffix))
	}
	return out
}

// RenderMonster formats a monster's combat stats and loot table.
func RenderMonster(m catalog.Monster) []string {
	lines := []string{
		title(fmt.Sprintf("%s (%s)", m.Name, m.Code)),
		field("Level", strconv.Itoa(m.Level)) + "   " + field("Max HP", strconv.Itoa(m.HP)) + "   " +
			field("Gold", fmt.Sprintf("%d - %d", m.MinGold, m.MaxGold)),
	}
	attack := section("Attack", elementLines(func(e stats.Element) int { return stats.MonsterAttack(m.MonsterStats, e) }, "", true))
	resist := section("Resist", elementLines(func(e stats.Element) int { return stats.MonsterResist(m.MonsterStats, e) }, "%", false))
	lines = append(lines, telnet.Columns(attack, resist, columnGap)...)

	drops := make([]string, len(m.Drops))
	for i, d := range m.Drops {
		drops[i] = code(d.Code) + " " + dropRate(d)
	}
	return append(lines, section("Drops", drops)...)
}

// RenderCharacter formats a character sheet: skills, gear, inventory and
// the combat numbers the game reports.
func RenderCharacter(c catalog.Character) []string {
	lines := []string{title(c.Name)}

	skills := make([]string, 0, 9)
	for _, s := range c.Skills() {
		skills = append(skills, fmt.Sprintf("%s: %d (%s%%)", s.Name, s.Level, percentage(s.XP, s.MaxXP)))
	}
	equipment := equipmentEntries(c)
	lines = append(lines, telnet.Columns(section("Skills", skills), section("Equipment", equipment), columnGap)...)

	var inventory []string
	for _, s := range c.Inventory {
		if s.Quantity > 0 {
			inventory = append(inventory, fmt.Sprintf("%s x%d", code(s.Code), s.Quantity))
		}
	}
	lines = append(lines, section("Inventory", inventory)...)
	lines = append(lines, field("Max HP", strconv.Itoa(c.MaxHP)))

	boosted := map[stats.Element]int{
		stats.Fire:  stats.RoundHalfUp(float64(c.FireAttack) * (1 + float64(c.FireDamage)/100)),
		stats.Earth: stats.RoundHalfUp(float64(c.EarthAttack) * (1 + float64(c.EarthDamage)/100)),
		stats.Water: stats.RoundHalfUp(float64(c.WaterAttack) * (1 + float64(c.WaterDamage)/100)),
		stats.Air:   stats.RoundHalfUp(float64(c.AirAttack) * (1 + float64(c.AirDamage)/100)),
	}
	raw := map[stats.Element]int{stats.Fire: c.FireAttack, stats.Earth: c.EarthAttack, stats.Water: c.WaterAttack, stats.Air: c.AirAttack}
	resists := map[stats.Element]int{stats.Fire: c.FireResist, stats.Earth: c.EarthResist, stats.Water: c.WaterResist, stats.Air: c.AirResist}

	attack := elementLines(func(e stats.Element) int {
		if raw[e] <= 0 {
			return 0
		}
		return boosted[e]
	}, "", true)
	resist := elementLines(func(e stats.Element) int { return resists[e] }, "%", false)
	return append(lines, telnet.Columns(section("Attack", attack), section("Resist", resist), columnGap)...)
}

func equipmentEntries(c catalog.Character) []string {
	codes := c.EquippedItemCodes()
	out := make([]string, 0, len(codes)+2)
	for _, ic := range codes {
		out = append(out, code(ic))
	}
	if c.Utility1SlotQuantity > 0 {
		out = append(out, fmt.Sprintf("%s x%d", code(c.Utility1Slot), c.Utility1SlotQuantity))
	}
	if c.Utility2SlotQuantity > 0 {
		out = append(out, fmt.Sprintf("%s x%d", code(c.Utility2Slot), c.Utility2SlotQuantity))
	}
	return out
}

// RenderEquipment lists the item codes a character wears as one
// comma-separated line, ready to paste into the simulate command.
func RenderEquipment(name string, codes []string) []string {
	if len(codes) == 0 {
		return []string{fmt.Sprintf("%s has nothing equipped.", name)}
	}
	return []string{
		heading(name + "'s equipment:"),
		strings.Join(codes, ","),
	}
}

// RenderSimulation formats the loadout, the derived stats and the fight report.
func RenderSimulation(res companion.SimulationResult) []string {
	s := res.Stats
	lines := []string{
		title(fmt.Sprintf("Simulate: %s vs %s", res.CharacterName, res.Monster.Name)),
		field("Equipment", code(strings.Join(res.ItemCodes, ","))),
		field("Character Level", strconv.Itoa(res.Level)),
	}

	var offense []string
	for _, e := range stats.Elements {
		if v := s.Attack(e); v != 0 {
			offense = append(offense, fmt.Sprintf("%d %s Atk", v, e))
		}
	}
	if s.CriticalStrike != 0 {
		offense = append(offense, fmt.Sprintf("%d%% Critical", s.CriticalStrike))
	}
	defense := []string{fmt.Sprintf("%d Max HP", s.MaxHP)}
	for _, e := range stats.Elements {
		if v := s.Resist(e); v != 0 {
			defense = append(defense, fmt.Sprintf("%d%% %s Res", v, e))
		}
	}
	lines = append(lines, telnet.Columns(section("Offense", offense), section("Defense", defense), columnGap)...)

	color := telnet.BrightGreen
	if res.Summary.Wins == 0 {
		color = telnet.BrightRed
	}
	lines = append(lines, heading("Results"))
	for i, l := range res.Summary.Lines() {
		if i == 0 {
			l = telnet.Colorize(color, l)
		}
		lines = append(lines, "  "+l)
	}
	return lines
}

// RenderHelp lists commands by category. Admin commands appear only when
// admin is set.
func RenderHelp(byCategory map[string][]*command.Command, admin bool) []string {
	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		if c == command.CategoryAdmin && !admin {
			continue
		}
		categories = append(categories, c)
	}
	sort.Strings(categories)

	var lines []string
	for _, c := range categories {
		lines = append(lines, heading(typeLabel(c)+" commands"))
		for _, cmd := range byCategory[c] {
			usage := cmd.Name
			if len(cmd.Aliases) > 0 {
				usage += " (" + strings.Join(cmd.Aliases, ", ") + ")"
			}
			if cmd.Usage != "" {
				usage += " " + cmd.Usage
			}
			lines = append(lines, "  "+telnet.Colorize(telnet.BrightCyan, usage))
			lines = append(lines, "      "+cmd.Help)
		}
	}
	lines = append(lines, telnet.Colorize(telnet.Dim, "Mention [[an item or monster]] anywhere in a line to look it up."))
	return lines
}
