package defs

// Scope controls which configured channels a command may be used in.
type Scope int

const (
	// ScopePublic commands work in public and private command channels.
	ScopePublic Scope = iota
	// ScopePrivate commands only work in private command channels.
	ScopePrivate
)

// Command describes one prefix command.
type Command struct {
	Name        string
	Usage       string
	Description string
	Scope       Scope
}

var Sync = &Command{
	Name:        "sync",
	Description: "Sync the roster with the corporation",
	Scope:       ScopePrivate,
}

var Apps = &Command{
	Name:        "apps",
	Description: "List new applications",
	Scope:       ScopePrivate,
}

var Schedule = &Command{
	Name:        "schedule",
	Description: "Show the scheduled jobs and when they run next",
	Scope:       ScopePrivate,
}

var Subscribe = &Command{
	Name:        "subscribe",
	Usage:       "[role]",
	Description: "Subscribe to a role, or list the roles you can subscribe to",
	Scope:       ScopePublic,
}

var Unsubscribe = &Command{
	Name:        "unsubscribe",
	Usage:       "[role]",
	Description: "Unsubscribe from a role, or list the roles you have",
	Scope:       ScopePublic,
}

var Whitelist = &Command{
	Name:        "whitelist",
	Usage:       "[name|description|days]",
	Description: "Show the activity whitelist, or add a member to it. Leave out days to whitelist permanently",
	Scope:       ScopePrivate,
}

var Unwhitelist = &Command{
	Name:        "unwhitelist",
	Usage:       "<name>",
	Description: "Remove a member from the activity whitelist",
	Scope:       ScopePrivate,
}

var Query = &Command{
	Name:        "query",
	Usage:       "<reddit|char>|<value>",
	Description: "Look up the characters of a reddit user, or a character's details",
	Scope:       ScopePrivate,
}

var Help = &Command{
	Name:        "help",
	Description: "Show this message",
	Scope:       ScopePublic,
}

var Source = &Command{
	Name:        "source",
	Description: "Link the bot's source code",
	Scope:       ScopePublic,
}

var Status = &Command{
	Name:        "status",
	Description: "Display bot and system status information",
	Scope:       ScopePublic,
}
