package bot

import (
	"corp-bot/model"
	"corp-bot/query"
	"corp-bot/subscription"
	"corp-bot/tasks"
	"corp-bot/utils"
	"corp-bot/whitelist"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Services are the domain services commands and jobs work with.
type Services struct {
	Roster        tasks.Roster
	Whitelist     *whitelist.Store
	Subscriptions *subscription.Manager
	Query         *query.Service
}

type Bot struct {
	Session   *discordgo.Session
	Scheduler *Scheduler
	Services
	config    *model.Config
	StartedAt time.Time
}

func (b *Bot) GetConfig() *model.Config {
	return b.config
}

// New creates the discord session and the scheduler. Services are attached
// by the caller before Run.
func New(cfg *model.Config) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent
	dg.StateEnabled = false

	b := &Bot{
		Session: dg,
		config:  cfg,
	}
	b.Scheduler = NewScheduler(b, cfg.SchedulerTick)
	b.Scheduler.OnFailure = b.reportJobFailure
	b.Scheduler.OnWarning = b.reportJobWarning
	return b, nil
}

// Send posts a job message to a channel, split to the message limit.
func (b *Bot) Send(channelID, content string) error {
	return utils.SendMessage(b.Session, channelID, content)
}

func (b *Bot) reportJobFailure(name string, err error) {
	if logErr := utils.LogError(b.Session, b.config.Channels.Log, "Scheduler", name, err.Error()); logErr != nil {
		log.Printf("Failed to send job failure log: %v", logErr)
	}
}

func (b *Bot) reportJobWarning(name, warning string) {
	if logErr := utils.LogWarn(b.Session, b.config.Channels.Log, "Scheduler", name, warning); logErr != nil {
		log.Printf("Failed to send job warning log: %v", logErr)
	}
}

func (b *Bot) Close() {
	log.Println("Gracefully shutting down.")
	if err := b.Session.Close(); err != nil {
		log.Printf("Error closing session: %v", err)
	}
}
