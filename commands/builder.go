package commands

import (
	"corp-bot/commands/defs"
	"corp-bot/model"
	"slices"
	"strings"
)

// WrongChannelMessage is the reply to a command used outside its channels.
const WrongChannelMessage = "That command can't be used in this channel."

// GenerateCommands returns the command catalog in help order.
func GenerateCommands() []*defs.Command {
	return []*defs.Command{
		defs.Sync,
		defs.Apps,
		defs.Schedule,
		defs.Subscribe,
		defs.Unsubscribe,
		defs.Whitelist,
		defs.Unwhitelist,
		defs.Query,
		defs.Help,
		defs.Source,
		defs.Status,
	}
}

// Lookup finds a command by name, ignoring case.
func Lookup(name string) (*defs.Command, bool) {
	for _, cmd := range GenerateCommands() {
		if strings.EqualFold(cmd.Name, name) {
			return cmd, true
		}
	}
	return nil, false
}

// Allowed reports whether cmd may be used in channelID.
func Allowed(cmd *defs.Command, channelID string, channels model.CommandChannelConfig) bool {
	if slices.Contains(channels.Private, channelID) {
		return true
	}
	return cmd.Scope == defs.ScopePublic && slices.Contains(channels.Public, channelID)
}

// HelpText renders the catalog. Private commands are only listed when
// private is set.
func HelpText(prefix string, private bool) string {
	var builder strings.Builder
	builder.WriteString("**Commands:**\n")
	for _, cmd := range GenerateCommands() {
		if cmd.Scope == defs.ScopePrivate && !private {
			continue
		}
		builder.WriteString("`")
		builder.WriteString(prefix)
		builder.WriteString(cmd.Name)
		if cmd.Usage != "" {
			builder.WriteString(" ")
			builder.WriteString(cmd.Usage)
		}
		builder.WriteString("` ")
		builder.WriteString(cmd.Description)
		builder.WriteString("\n")
	}
	return strings.TrimRight(builder.String(), "\n")
}
