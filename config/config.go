package config

import (
	"corp-bot/model"
	"corp-bot/utils"
	"errors"
	"fmt"
	"log"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CORPBOT_GUILD_ID.
const EnvPrefix = "CORPBOT"

func setDefaults(v *viper.Viper) {
	v.SetDefault("command_prefix", "!")
	v.SetDefault("state_db_path", "data/state.db")
	v.SetDefault("activity_time_days", 30)
	v.SetDefault("intervals.apps", 300*time.Second)
	v.SetDefault("intervals.sync", time.Duration(0))
	v.SetDefault("intervals.killboard", 24*time.Hour)
	v.SetDefault("scheduler_tick", time.Second)
	v.SetDefault("http.timeout", 20*time.Second)
	v.SetDefault("http.retries", 3)
	v.SetDefault("endpoints.esi", "https://esi.evetech.net/latest")
	v.SetDefault("endpoints.killboard", "https://zkillboard.com/api")
	v.SetDefault("pastebin.url", "https://pastebin.com/api/api_post.php")

	// Keys without a default are still bound so env overrides reach Unmarshal.
	for _, key := range []string{
		"guild_id", "url_root", "api_secret", "member_db_path",
		"corporation.id", "corporation.name",
		"channels.recruitment", "channels.activity", "channels.log",
		"killboard.user_agent", "pastebin.key", "metrics_addr", "source_url",
	} {
		_ = v.BindEnv(key)
	}
}

var durationType = reflect.TypeOf(time.Duration(0))

// durationHook decodes durations written with a day component, such as "1d".
// Bare numbers are seconds.
func durationHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != durationType || from == durationType {
			return data, nil
		}
		v := reflect.ValueOf(data)
		switch from.Kind() {
		case reflect.String:
			return utils.ParseDuration(v.String())
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return time.Duration(v.Int()) * time.Second, nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return time.Duration(v.Uint()) * time.Second, nil
		case reflect.Float32, reflect.Float64:
			return time.Duration(v.Float() * float64(time.Second)), nil
		default:
			return data, nil
		}
	}
}

// Load reads .env, then the config document at path (or config.{yaml,json}
// in the working directory or ./data when path is empty), then environment
// overrides.
func Load(path string) (*model.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("bot_token", EnvPrefix+"_BOT_TOKEN", "BOT_TOKEN"); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("data")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
		log.Println("Info: no config file found, relying on environment variables")
	} else {
		log.Printf("Loaded config from %s", v.ConfigFileUsed())
	}

	cfg := &model.Config{}
	hooks := mapstructure.ComposeDecodeHookFunc(durationHook(), mapstructure.StringToSliceHookFunc(","))
	if err := v.Unmarshal(cfg, viper.DecodeHook(hooks)); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the bot cannot start without.
func Validate(cfg *model.Config) error {
	var missing []string
	if cfg.BotToken == "" {
		missing = append(missing, "bot_token")
	}
	if cfg.GuildID == "" {
		missing = append(missing, "guild_id")
	}
	if cfg.URLRoot == "" {
		missing = append(missing, "url_root")
	}
	if cfg.MemberDBPath == "" {
		missing = append(missing, "member_db_path")
	}
	if cfg.Corporation.ID == 0 {
		missing = append(missing, "corporation.id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	if cfg.ActivityTimeDays <= 0 {
		return fmt.Errorf("activity_time_days must be positive, got %d", cfg.ActivityTimeDays)
	}
	if cfg.CommandPrefix == "" {
		return errors.New("command_prefix must not be empty")
	}
	if cfg.Intervals.Apps < 0 || cfg.Intervals.Sync < 0 || cfg.Intervals.Killboard < 0 {
		return errors.New("job intervals must not be negative")
	}
	return nil
}
