// Package command provides the command registry, parser, and built-in command
// definitions for the chat front end.
package command

// Categories for organizing commands.
const (
	CategoryGame   = "game"
	CategorySystem = "system"
	CategoryAdmin  = "admin"
)

// Handler identifiers mapping commands to their implementation.
const (
	HandlerSimulate           = "simulate"
	HandlerSimulateCharacter  = "simulate_character"
	HandlerCharacter          = "character"
	HandlerCharacterEquipment = "character_equipment"
	HandlerMonster            = "monster"
	HandlerItem               = "item"
	HandlerHelp               = "help"
	HandlerQuit               = "quit"
	HandlerReload             = "reload"
	HandlerUptime             = "uptime"
)

// Command defines a user-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage shows the argument syntax, without the command name.
	Usage string
	// Help is the short help text.
	Help string
	// Category groups the command for help output.
	Category string
	// Handler selects the implementation.
	Handler string
}

// BuiltinCommands returns all built-in commands.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "simulate", Aliases: []string{"sim"}, Usage: "<monster> | <item,item,...> [| level]",
			Help: "Simulate fights against a monster with the given equipment", Category: CategoryGame, Handler: HandlerSimulate},
		{Name: "simulate-character", Aliases: []string{"simc"}, Usage: "<name> | <monster>",
			Help: "Simulate fights using a character's current equipment", Category: CategoryGame, Handler: HandlerSimulateCharacter},
		{Name: "character", Aliases: []string{"char"}, Usage: "<name>",
			Help: "Show a character's levels and stats", Category: CategoryGame, Handler: HandlerCharacter},
		{Name: "character-equipment", Aliases: []string{"gear"}, Usage: "<name>",
			Help: "List a character's equipped item codes", Category: CategoryGame, Handler: HandlerCharacterEquipment},
		{Name: "monster", Aliases: []string{"mon"}, Usage: "<name>",
			Help: "Show a monster's stats and drops", Category: CategoryGame, Handler: HandlerMonster},
		{Name: "item", Usage: "<name>",
			Help: "Show an item's effects and recipe", Category: CategoryGame, Handler: HandlerItem},

		{Name: "help", Aliases: []string{"?"}, Help: "List available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit"}, Help: "Disconnect", Category: CategorySystem, Handler: HandlerQuit},

		{Name: "reload", Help: "Reload game data from the server", Category: CategoryAdmin, Handler: HandlerReload},
		{Name: "uptime", Help: "Show how long the bot has been running", Category: CategoryAdmin, Handler: HandlerUptime},
	}
}
