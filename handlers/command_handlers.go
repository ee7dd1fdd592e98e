package handlers

import (
	"context"
	"corp-bot/bot"
	"corp-bot/commands"
	"corp-bot/model"
	"corp-bot/tasks"
	"corp-bot/utils"
	"corp-bot/whitelist"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

var errWhitelistUsage = errors.New("bad whitelist usage")

func commandHandlers(b *bot.Bot) map[string]commandFunc {
	cfg := b.GetConfig()
	return map[string]commandFunc{
		"sync": func(ctx context.Context, s Session, m *discordgo.MessageCreate, args string) error {
			return sendAll(s, m.ChannelID, tasks.Describe(b.Roster.Sync(ctx), "No changes to the roster."))
		},
		"apps": func(ctx context.Context, s Session, m *discordgo.MessageCreate, args string) error {
			return sendAll(s, m.ChannelID, tasks.Describe(b.Roster.Apps(ctx), "No new applications."))
		},
		"schedule": func(ctx context.Context, s Session, m *discordgo.MessageCreate, args string) error {
			return utils.SendMessage(s, m.ChannelID, renderSchedule(b.Scheduler.Jobs()))
		},
		"subscribe": func(ctx context.Context, s Session, m *discordgo.MessageCreate, args string) error {
			reply, err := b.Subscriptions.Subscribe(ctx, m.Author.ID, args)
			if err != nil {
				return err
			}
			return utils.SendMessage(s, m.ChannelID, reply)
		},
		"unsubscribe": func(ctx context.Context, s Session, m *discordgo.MessageCreate, args string) error {
			reply, err := b.Subscriptions.Unsubscribe(ctx, m.Author.ID, args)
			if err != nil {
				return err
			}
			return utils.SendMessage(s, m.ChannelID, reply)
		},
		"whitelist": func(ctx context.Context, s Session, m *discordgo.MessageCreate, args string) error {
			return handleWhitelist(ctx, s, m, b.Whitelist, args)
		},
		"unwhitelist": func(ctx context.Context, s Session, m *discordgo.MessageCreate, args string) error {
			if args == "" {
				return model.UserErrorf("Usage: `%sunwhitelist <name>`", cfg.CommandPrefix)
			}
			if err := b.Whitelist.Remove(ctx, args); err != nil {
				return err
			}
			return utils.SendMessage(s, m.ChannelID, fmt.Sprintf("Removed %s from the activity whitelist.", args))
		},
		"query": func(ctx context.Context, s Session, m *discordgo.MessageCreate, args string) error {
			reply, err := b.Query.Query(ctx, args)
			if err != nil {
				return err
			}
			return utils.SendMessage(s, m.ChannelID, reply)
		},
		"help": func(ctx context.Context, s Session, m *discordgo.MessageCreate, args string) error {
			private := slices.Contains(cfg.CommandChannels.Private, m.ChannelID)
			return utils.SendMessage(s, m.ChannelID, commands.HelpText(cfg.CommandPrefix, private))
		},
		"source": func(ctx context.Context, s Session, m *discordgo.MessageCreate, args string) error {
			if cfg.SourceURL == "" {
				return utils.SendMessage(s, m.ChannelID, "No source link is configured.")
			}
			return utils.SendMessage(s, m.ChannelID, cfg.SourceURL)
		},
		"status": func(ctx context.Context, s Session, m *discordgo.MessageCreate, args string) error {
			return SystemInfoHandler(s, m.ChannelID, statusSource{b})
		},
	}
}

func sendAll(s Session, channelID string, messages []string) error {
	for _, message := range messages {
		if err := utils.SendMessage(s, channelID, message); err != nil {
			return err
		}
	}
	return nil
}

func renderSchedule(jobs []bot.JobInfo) string {
	if len(jobs) == 0 {
		return "No jobs are scheduled."
	}
	var builder strings.Builder
	builder.WriteString("**Scheduled jobs:**\n")
	for _, j := range jobs {
		last := "never"
		if !j.LastRun.IsZero() {
			last = j.LastRun.UTC().Format("2006-01-02 15:04 UTC")
		}
		fmt.Fprintf(&builder, "- %s every %s, last run %s, next run %s\n",
			j.Name, j.Interval, last, j.NextRun.UTC().Format("2006-01-02 15:04 UTC"))
	}
	return strings.TrimRight(builder.String(), "\n")
}

// parseWhitelistArgs parses "name|description|days". Description and days
// are optional; missing days means permanent.
func parseWhitelistArgs(args string) (name, description string, days int, err error) {
	parts := strings.Split(args, "|")
	if len(parts) > 3 {
		return "", "", 0, model.NewUserError(errWhitelistUsage, "Too many arguments. Usage: `whitelist name|description|days`")
	}
	name = strings.TrimSpace(parts[0])
	if name == "" {
		return "", "", 0, model.NewUserError(errWhitelistUsage, "A name is required. Usage: `whitelist name|description|days`")
	}
	if len(parts) > 1 {
		description = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 && strings.TrimSpace(parts[2]) != "" {
		days, err = strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			return "", "", 0, model.NewUserError(errWhitelistUsage, "%q is not a number of days.", strings.TrimSpace(parts[2]))
		}
	}
	return name, description, days, nil
}

func handleWhitelist(ctx context.Context, s Session, m *discordgo.MessageCreate, store *whitelist.Store, args string) error {
	if args == "" {
		entries, err := store.List(ctx)
		if err != nil {
			return err
		}
		return utils.SendMessage(s, m.ChannelID, whitelist.Render(entries, store.ActivityDays()))
	}

	name, description, days, err := parseWhitelistArgs(args)
	if err != nil {
		return err
	}
	entry, err := store.Add(ctx, name, description, days)
	if err != nil {
		return err
	}
	duration := "permanently"
	if days > 0 {
		duration = fmt.Sprintf("for %d days", days)
	}
	return utils.SendMessage(s, m.ChannelID, fmt.Sprintf("Added %s to the activity whitelist %s.", entry.Name, duration))
}

type statusSource struct {
	b *bot.Bot
}

func (s statusSource) JobCount() int {
	return len(s.b.Scheduler.Jobs())
}

func (s statusSource) Uptime() time.Duration {
	if s.b.StartedAt.IsZero() {
		return 0
	}
	return time.Since(s.b.StartedAt)
}

func (s statusSource) Latency() time.Duration {
	return s.b.Session.HeartbeatLatency()
}
