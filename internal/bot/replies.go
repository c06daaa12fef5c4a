package bot

import "fmt"

// replies is the bot's user-facing string table, keyed by (command, key).
// ValidateReplies runs at startup so a missing key is a boot error instead of
// a blank message at runtime.
var replies = map[string]map[string]string{
	"initialize": {
		"help":    "Please initialize this group with !initialize to enable stats tracking",
		"already": "Group already initialized",
		"success": "Group successfully initialized",
	},
	"add": {
		"help":    "Add a command with !add <name>: <response>, or a description with !add description <name>: <text>",
		"success": "Command !%s added!",
		"failure": "Command !%s already exists",
		"error":   "Could not parse that. Usage: !add <name>: <response>",
	},
	"edit": {
		"help":    "Edit a command with !edit <name>: <new response>",
		"success": "Command !%s updated",
		"error":   "Could not parse that. Usage: !edit <name>: <new response>",
	},
	"delete": {
		"help":    "Delete a command with !delete <name>",
		"success": "Command !%s deleted",
		"error":   "Command !%s does not exist",
	},
	"mod":      {"help": "Promote a member with !mod <username>"},
	"unmod":    {"help": "Demote a member with !unmod <username>"},
	"ignore":   {"help": "Ignore a member with !ignore <username>"},
	"unignore": {"help": "Stop ignoring a member with !unignore <username>"},
	"roll": {
		"help":         "Roll a die with !roll <sides>",
		"number_error": "That is not a number I can work with",
	},
	"jpeg": {"help": "Deep-fry an image with !jpeg <image url>"},
	"remindme": {
		"help":       "Set a reminder with !remindme <amount> <unit> <message>",
		"unit_error": "I can do minutes, hours, days, weeks, months, or years",
	},
	"dispatch": {
		"unknown":    "Command !%s does not exist",
		"ignored":    "No",
		"mod_only":   "You must be a mod to use !%s",
		"not_found":  "Could not find %s in this group",
		"no_gallery": "No gallery pictures found",
	},
}

// Reply fetches a string resource. Keys are validated at startup, so an
// unknown key returning "" indicates a programming error.
func Reply(command, key string) string {
	return replies[command][key]
}

// requiredReplies are the keys every deployment must carry beyond the
// per-command help texts.
var requiredReplies = [][2]string{
	{"initialize", "help"},
	{"dispatch", "unknown"},
	{"dispatch", "ignored"},
	{"dispatch", "mod_only"},
}

// ValidateReplies checks that every command requiring arguments has help text
// and that the dispatcher's fixed replies exist.
func ValidateReplies(reg *Registry) error {
	for _, desc := range reg.All() {
		if desc.RequiresArgs && Reply(desc.Name, "help") == "" {
			return fmt.Errorf("missing help text for command %q", desc.Name)
		}
	}
	for _, pair := range requiredReplies {
		if Reply(pair[0], pair[1]) == "" {
			return fmt.Errorf("missing reply string %s.%s", pair[0], pair[1])
		}
	}
	return nil
}
