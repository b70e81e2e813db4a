package models

import "strings"

// CommandType enumerates the farmhand text commands.
type CommandType string

const (
	CommandWeight  CommandType = "weight"
	CommandTreat   CommandType = "treat"
	CommandMove    CommandType = "move"
	CommandNote    CommandType = "note"
	CommandDue     CommandType = "due"
	CommandStatus  CommandType = "status"
	CommandWeather CommandType = "weather"
	CommandHelp    CommandType = "help"
	CommandUnknown CommandType = "unknown"
)

var commandAliases = map[string]CommandType{
	"weight":   CommandWeight,
	"weigh":    CommandWeight,
	"wt":       CommandWeight,
	"treat":    CommandTreat,
	"sick":     CommandTreat,
	"move":     CommandMove,
	"note":     CommandNote,
	"due":      CommandDue,
	"status":   CommandStatus,
	"weather":  CommandWeather,
	"forecast": CommandWeather,
	"help":     CommandHelp,
	"?":        CommandHelp,
}

// Command represents a parsed worker instruction extracted from WhatsApp text.
// Args keep the sender's casing so pasture names and notes survive.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// AutomationReply is the canned usage text for a command.
type AutomationReply struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// CommandUsage lists the usage text per command, in help order.
var CommandUsage = []struct {
	Type  CommandType
	Reply AutomationReply
}{
	{CommandWeight, AutomationReply{Title: "Weigh-in", Message: "/weight <tag> <lbs> [yyyy-mm-dd], e.g. /weight C-12 845"}},
	{CommandTreat, AutomationReply{Title: "Treatment", Message: "/treat <tag> <type> [product], e.g. /treat C-12 illness LA-200"}},
	{CommandMove, AutomationReply{Title: "Pasture move", Message: "/move <tag> <pasture>, e.g. /move C-12 North Meadow"}},
	{CommandNote, AutomationReply{Title: "Journal", Message: "/note <text>, e.g. /note fixed the creek fence"}},
	{CommandDue, AutomationReply{Title: "Due soon", Message: "/due [days], lists dams due within 30 days by default"}},
	{CommandStatus, AutomationReply{Title: "Animal status", Message: "/status <tag>"}},
	{CommandWeather, AutomationReply{Title: "Weather", Message: "/weather <place>, e.g. /weather Lancaster PA"}},
}

// ParseCommand derives a Command instance from free-form text messages. A
// message is a command only when it starts with a slash or a known keyword.
func ParseCommand(message string) Command {
	cmd := Command{Type: CommandUnknown, Raw: message}

	tokens := strings.Fields(strings.TrimSpace(message))
	if len(tokens) == 0 {
		return cmd
	}

	head := strings.ToLower(strings.TrimPrefix(tokens[0], "/"))
	if t, ok := commandAliases[head]; ok {
		cmd.Type = t
	}
	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}
	return cmd
}
