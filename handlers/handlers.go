package handlers

import (
	"context"
	"corp-bot/bot"
	"corp-bot/commands"
	"corp-bot/model"
	"corp-bot/utils"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// commandTimeout bounds a single command, external calls included.
const commandTimeout = 2 * time.Minute

// Session is the part of the discord session command handlers use.
type Session interface {
	utils.MessageSender
	utils.EmbedSender
	ChannelTyping(channelID string, options ...discordgo.RequestOption) error
}

type commandFunc func(ctx context.Context, s Session, m *discordgo.MessageCreate, args string) error

// Router dispatches prefix commands to their handlers.
type Router struct {
	prefix   string
	channels model.CommandChannelConfig
	handlers map[string]commandFunc
	timeout  time.Duration
}

func NewRouter(prefix string, channels model.CommandChannelConfig, handlers map[string]commandFunc) *Router {
	return &Router{
		prefix:   prefix,
		channels: channels,
		handlers: handlers,
		timeout:  commandTimeout,
	}
}

// Register wires the command router into the bot's session.
func Register(b *bot.Bot) {
	cfg := b.GetConfig()
	router := NewRouter(cfg.CommandPrefix, cfg.CommandChannels, commandHandlers(b))
	addHandlers(b, router)
}

func addHandlers(b *bot.Bot, router *Router) {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as: %v#%v", s.State.User.Username, s.State.User.Discriminator)
	})
	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		router.Handle(s, m)
	})
}

// parseCommand splits "!name args" into its name and argument string.
func parseCommand(prefix, content string) (name, args string, ok bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", "", false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(content, prefix))
	if rest == "" {
		return "", "", false
	}
	name, args, _ = strings.Cut(rest, " ")
	return strings.ToLower(name), strings.TrimSpace(args), true
}

// Handle routes one message. Messages from bots, without the prefix or
// naming an unknown command are ignored.
func (r *Router) Handle(s Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	name, args, ok := parseCommand(r.prefix, m.Content)
	if !ok {
		return
	}
	cmd, ok := commands.Lookup(name)
	if !ok {
		return
	}
	handler, ok := r.handlers[cmd.Name]
	if !ok {
		return
	}
	log.Printf("Command %q from %s in channel %s", m.Content, m.Author.Username, m.ChannelID)

	if !commands.Allowed(cmd, m.ChannelID, r.channels) {
		utils.SendReply(s, m.ChannelID, commands.WrongChannelMessage)
		return
	}

	if err := s.ChannelTyping(m.ChannelID); err != nil {
		log.Printf("Failed to send typing indicator: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := handler(ctx, s, m, args); err != nil {
		if userErr, ok := model.AsUserError(err); ok {
			utils.SendErrorResponse(s, m.ChannelID, userErr.Msg)
			return
		}
		log.Printf("Command %s failed: %v", cmd.Name, err)
		utils.SendReply(s, m.ChannelID, "An error occurred")
	}
}
