package config

import (
	"corp-bot/model"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
guild_id: "111"
url_root: https://corp.example.com/api
member_db_path: data/members.db
corporation:
  id: 98000001
  name: Wormbros
intervals:
  apps: 10m
  killboard: 1d
channels:
  recruitment: "200"
  activity: "300"
command_channels:
  public: ["400"]
  private: ["500"]
subscribable_roles:
  - name: Fleet Pings
    description: Pinged for fleets
activity_whitelist:
  - name: Jane Doe
    description: CEO
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("CORPBOT_GUILD_ID", "999")

	cfg, err := Load(writeConfig(t, testConfig))
	require.NoError(t, err)

	assert.Equal(t, "token", cfg.BotToken)
	assert.Equal(t, "999", cfg.GuildID)
	assert.Equal(t, "!", cfg.CommandPrefix)
	assert.Equal(t, 30, cfg.ActivityTimeDays)
	assert.Equal(t, model.CorporationConfig{ID: 98000001, Name: "Wormbros"}, cfg.Corporation)
	assert.Equal(t, 10*time.Minute, cfg.Intervals.Apps)
	assert.Equal(t, time.Duration(0), cfg.Intervals.Sync)
	assert.Equal(t, 24*time.Hour, cfg.Intervals.Killboard)
	assert.Equal(t, 20*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, []string{"500"}, cfg.CommandChannels.Private)
	require.Len(t, cfg.SubscribableRoles, 1)
	assert.Equal(t, "Fleet Pings", cfg.SubscribableRoles[0].Name)
	require.Len(t, cfg.ActivityWhitelist, 1)
	assert.Equal(t, "Jane Doe", cfg.ActivityWhitelist[0].Name)
}

func TestLoadIntervalSeconds(t *testing.T) {
	t.Setenv("BOT_TOKEN", "token")
	body := strings.Replace(testConfig, "  apps: 10m\n", "  apps: 300\n  sync: 90.5\n", 1)
	require.NotEqual(t, testConfig, body)

	cfg, err := Load(writeConfig(t, body))
	require.NoError(t, err)
	assert.Equal(t, 300*time.Second, cfg.Intervals.Apps)
	assert.Equal(t, 90500*time.Millisecond, cfg.Intervals.Sync)
	assert.Equal(t, 24*time.Hour, cfg.Intervals.Killboard)
	assert.Equal(t, time.Second, cfg.SchedulerTick)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *model.Config {
		return &model.Config{
			BotToken:         "token",
			GuildID:          "111",
			URLRoot:          "https://corp.example.com/api",
			MemberDBPath:     "members.db",
			Corporation:      model.CorporationConfig{ID: 1},
			ActivityTimeDays: 30,
			CommandPrefix:    "!",
		}
	}
	require.NoError(t, Validate(valid()))

	missing := valid()
	missing.BotToken = ""
	missing.Corporation.ID = 0
	assert.EqualError(t, Validate(missing), "missing required config: bot_token, corporation.id")

	days := valid()
	days.ActivityTimeDays = 0
	assert.Error(t, Validate(days))

	prefix := valid()
	prefix.CommandPrefix = ""
	assert.Error(t, Validate(prefix))

	interval := valid()
	interval.Intervals.Sync = -time.Second
	assert.Error(t, Validate(interval))
}
