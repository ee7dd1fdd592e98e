package commands

import (
	"corp-bot/commands/defs"
	"corp-bot/model"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	cmd, ok := Lookup("WhiteList")
	require.True(t, ok)
	assert.Same(t, defs.Whitelist, cmd)

	_, ok = Lookup("rollcard")
	assert.False(t, ok)
}

func TestAllowed(t *testing.T) {
	channels := model.CommandChannelConfig{Public: []string{"pub"}, Private: []string{"priv"}}

	assert.True(t, Allowed(defs.Subscribe, "pub", channels))
	assert.True(t, Allowed(defs.Subscribe, "priv", channels))
	assert.False(t, Allowed(defs.Subscribe, "elsewhere", channels))
	assert.False(t, Allowed(defs.Whitelist, "pub", channels))
	assert.True(t, Allowed(defs.Whitelist, "priv", channels))
}

func TestHelpText(t *testing.T) {
	public := HelpText("!", false)
	assert.Contains(t, public, "`!subscribe [role]` Subscribe to a role")
	assert.NotContains(t, public, "!whitelist")

	private := HelpText("!", true)
	assert.Contains(t, private, "`!whitelist [name|description|days]`")
	assert.Contains(t, private, "`!query <reddit|char>|<value>`")
	assert.Equal(t, len(GenerateCommands())+1, len(strings.Split(private, "\n")))
}
