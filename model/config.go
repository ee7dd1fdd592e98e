package model

import "time"

// CorporationConfig identifies the corporation whose members are audited.
type CorporationConfig struct {
	ID   int64  `mapstructure:"id"`
	Name string `mapstructure:"name"`
}

// IntervalConfig holds the recurring job intervals. A zero interval disables the job.
type IntervalConfig struct {
	Apps      time.Duration `mapstructure:"apps"`
	Sync      time.Duration `mapstructure:"sync"`
	Killboard time.Duration `mapstructure:"killboard"`
}

// HTTPConfig bounds every outbound REST call.
type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	Retries uint64        `mapstructure:"retries"`
}

// ChannelConfig names the channels scheduled reports are posted to.
type ChannelConfig struct {
	Recruitment string `mapstructure:"recruitment"`
	Activity    string `mapstructure:"activity"`
	Log         string `mapstructure:"log"`
}

// CommandChannelConfig lists the channels commands may be used in.
type CommandChannelConfig struct {
	Public  []string `mapstructure:"public"`
	Private []string `mapstructure:"private"`
}

// EndpointConfig holds the base URLs of the third-party services.
type EndpointConfig struct {
	ESI       string `mapstructure:"esi"`
	Killboard string `mapstructure:"killboard"`
}

// KillboardConfig holds killboard request settings.
type KillboardConfig struct {
	UserAgent string `mapstructure:"user_agent"`
}

// PastebinConfig enables uploading the audit report to a paste host.
type PastebinConfig struct {
	Key string `mapstructure:"key"`
	URL string `mapstructure:"url"`
}

// Config holds the application configuration.
type Config struct {
	BotToken          string               `mapstructure:"bot_token"`
	CommandPrefix     string               `mapstructure:"command_prefix"`
	GuildID           string               `mapstructure:"guild_id"`
	URLRoot           string               `mapstructure:"url_root"`
	APISecret         string               `mapstructure:"api_secret"`
	MemberDBPath      string               `mapstructure:"member_db_path"`
	StateDBPath       string               `mapstructure:"state_db_path"`
	Corporation       CorporationConfig    `mapstructure:"corporation"`
	ActivityTimeDays  int                  `mapstructure:"activity_time_days"`
	Intervals         IntervalConfig       `mapstructure:"intervals"`
	SchedulerTick     time.Duration        `mapstructure:"scheduler_tick"`
	HTTP              HTTPConfig           `mapstructure:"http"`
	Channels          ChannelConfig        `mapstructure:"channels"`
	CommandChannels   CommandChannelConfig `mapstructure:"command_channels"`
	SubscribableRoles []SubscribableRole   `mapstructure:"subscribable_roles"`
	ActivityWhitelist []WhitelistEntry     `mapstructure:"activity_whitelist"`
	Killboard         KillboardConfig      `mapstructure:"killboard"`
	Endpoints         EndpointConfig       `mapstructure:"endpoints"`
	Pastebin          PastebinConfig       `mapstructure:"pastebin"`
	MetricsAddr       string               `mapstructure:"metrics_addr"`
	SourceURL         string               `mapstructure:"source_url"`
}
