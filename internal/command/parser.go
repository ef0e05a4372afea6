package command

import (
	"regexp"
	"strconv"
	"strings"
)

// ParseResult holds the parsed command name and arguments from a text line.
type ParseResult struct {
	// Command is the first word of the input, lowercased.
	Command string
	// RawArgs is the text after the command, trimmed.
	RawArgs string
}

// Parse splits a text line into a command word and the rest.
//
// Postcondition: Returns a ParseResult. If line is blank, Command is empty.
func Parse(line string) ParseResult {
	line = strings.TrimSpace(line)
	if line == "" {
		return ParseResult{}
	}
	cmd, rest, _ := strings.Cut(line, " ")
	return ParseResult{
		Command: strings.ToLower(cmd),
		RawArgs: strings.TrimSpace(rest),
	}
}

// UsageError is an argument problem whose message is shown to the user.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string { return e.Message }

// Fields splits raw on '|' and trims each field. A blank raw yields no fields.
func Fields(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// List splits a comma-separated list, trimming entries and dropping empty ones.
func List(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SimulateArgs are the parsed arguments of the simulate command.
type SimulateArgs struct {
	Monster string
	Items   []string
	// Level is zero when omitted.
	Level int
}

// ParseSimulateArgs parses "<monster> | <item,item,...> [| level]".
//
// Postcondition: returns a *UsageError for missing or malformed fields.
func ParseSimulateArgs(raw string) (SimulateArgs, error) {
	fields := Fields(raw)
	var args SimulateArgs
	if len(fields) == 0 || fields[0] == "" {
		return args, &UsageError{Message: "Invalid `monster`."}
	}
	args.Monster = fields[0]
	if len(fields) < 2 {
		return args, &UsageError{Message: "Invalid `items`."}
	}
	args.Items = List(fields[1])
	if len(args.Items) == 0 {
		return args, &UsageError{Message: "Invalid `items`."}
	}
	if len(fields) > 3 {
		return args, &UsageError{Message: "Too many arguments."}
	}
	if len(fields) == 3 && fields[2] != "" {
		level, err := strconv.Atoi(fields[2])
		if err != nil {
			return args, &UsageError{Message: "Invalid `level`."}
		}
		args.Level = level
	}
	return args, nil
}

// ParseNameAndMonster parses "<name> | <monster>".
func ParseNameAndMonster(raw string) (name, monster string, err error) {
	fields := Fields(raw)
	if len(fields) == 0 || fields[0] == "" {
		return "", "", &UsageError{Message: "Invalid `name`."}
	}
	if len(fields) != 2 || fields[1] == "" {
		return "", "", &UsageError{Message: "Invalid `monster`."}
	}
	return fields[0], fields[1], nil
}

var mentionPattern = regexp.MustCompile(`(?i)\[\[([a-z_\s&]{2,50})]]`)

// FindMention returns the text inside the first [[...]] tag in line.
func FindMention(line string) (string, bool) {
	m := mentionPattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	name := strings.TrimSpace(m[1])
	return name, name != ""
}
