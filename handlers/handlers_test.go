package handlers

import (
	"context"
	"corp-bot/bot"
	"corp-bot/commands"
	"corp-bot/model"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	messages []string
	embeds   []*discordgo.MessageEmbed
	typing   int
}

func (f *fakeSession) ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.messages = append(f.messages, content)
	return &discordgo.Message{}, nil
}

func (f *fakeSession) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.embeds = append(f.embeds, embed)
	return &discordgo.Message{}, nil
}

func (f *fakeSession) ChannelTyping(channelID string, options ...discordgo.RequestOption) error {
	f.typing++
	return nil
}

func message(channelID, content string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ChannelID: channelID,
		Content:   content,
		Author:    &discordgo.User{ID: "u1", Username: "jane"},
	}}
}

func newTestRouter(calls *[]string) *Router {
	reply := func(name string) commandFunc {
		return func(ctx context.Context, s Session, m *discordgo.MessageCreate, args string) error {
			*calls = append(*calls, name+":"+args)
			_, err := s.ChannelMessageSend(m.ChannelID, "ok")
			return err
		}
	}
	return NewRouter("!", model.CommandChannelConfig{Public: []string{"public"}, Private: []string{"private"}}, map[string]commandFunc{
		"subscribe": reply("subscribe"),
		"sync":      reply("sync"),
		"query": func(ctx context.Context, s Session, m *discordgo.MessageCreate, args string) error {
			return model.UserErrorf("Usage: `query reddit|<name>`")
		},
		"apps": func(ctx context.Context, s Session, m *discordgo.MessageCreate, args string) error {
			return errors.New("connection refused")
		},
	})
}

func TestParseCommand(t *testing.T) {
	name, args, ok := parseCommand("!", "!Whitelist  Jane Doe|vacation|14 ")
	require.True(t, ok)
	assert.Equal(t, "whitelist", name)
	assert.Equal(t, "Jane Doe|vacation|14", args)

	_, _, ok = parseCommand("!", "hello")
	assert.False(t, ok)
	_, _, ok = parseCommand("!", "!")
	assert.False(t, ok)
}

func TestRouter(t *testing.T) {
	var calls []string
	r := newTestRouter(&calls)

	t.Run("public command in public channel", func(t *testing.T) {
		s := &fakeSession{}
		r.Handle(s, message("public", "!subscribe Fleet Pings"))
		assert.Equal(t, []string{"ok"}, s.messages)
		assert.Equal(t, 1, s.typing)
	})

	t.Run("private command in public channel", func(t *testing.T) {
		s := &fakeSession{}
		r.Handle(s, message("public", "!sync"))
		assert.Equal(t, []string{commands.WrongChannelMessage}, s.messages)
	})

	t.Run("any command in private channel", func(t *testing.T) {
		s := &fakeSession{}
		r.Handle(s, message("private", "!sync"))
		r.Handle(s, message("private", "!subscribe"))
		assert.Equal(t, []string{"ok", "ok"}, s.messages)
	})

	t.Run("unlisted channel", func(t *testing.T) {
		s := &fakeSession{}
		r.Handle(s, message("general", "!subscribe"))
		assert.Equal(t, []string{commands.WrongChannelMessage}, s.messages)
	})

	t.Run("user error is shown", func(t *testing.T) {
		s := &fakeSession{}
		r.Handle(s, message("private", "!query"))
		assert.Equal(t, []string{"❌ Usage: `query reddit|<name>`"}, s.messages)
	})

	t.Run("other errors are generic", func(t *testing.T) {
		s := &fakeSession{}
		r.Handle(s, message("private", "!apps"))
		assert.Equal(t, []string{"An error occurred"}, s.messages)
	})

	t.Run("ignored messages", func(t *testing.T) {
		s := &fakeSession{}
		r.Handle(s, message("private", "!unknown"))
		r.Handle(s, message("private", "just chatting"))
		botMsg := message("private", "!sync")
		botMsg.Author.Bot = true
		r.Handle(s, botMsg)
		assert.Empty(t, s.messages)
	})

	assert.Equal(t, []string{"subscribe:Fleet Pings", "sync:", "subscribe:"}, calls)
}

func TestParseWhitelistArgs(t *testing.T) {
	name, desc, days, err := parseWhitelistArgs("Jane Doe|vacation|14")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", name)
	assert.Equal(t, "vacation", desc)
	assert.Equal(t, 14, days)

	name, desc, days, err = parseWhitelistArgs("Jane Doe")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", name)
	assert.Empty(t, desc)
	assert.Zero(t, days)

	for _, bad := range []string{"a|b|c|d", "|vacation|3", "Jane|vacation|two"} {
		_, _, _, err = parseWhitelistArgs(bad)
		assert.ErrorIs(t, err, errWhitelistUsage, bad)
	}
}

func TestRenderSchedule(t *testing.T) {
	assert.Equal(t, "No jobs are scheduled.", renderSchedule(nil))

	next := time.Date(2026, 10, 19, 13, 0, 0, 0, time.UTC)
	out := renderSchedule([]bot.JobInfo{{Name: "apps", Interval: 5 * time.Minute, NextRun: next}})
	assert.Equal(t, "**Scheduled jobs:**\n- apps every 5m0s, last run never, next run 2026-10-19 13:00 UTC", out)
}

type staticStatus struct{}

func (staticStatus) JobCount() int          { return 3 }
func (staticStatus) Uptime() time.Duration  { return 90 * time.Minute }
func (staticStatus) Latency() time.Duration { return 40 * time.Millisecond }

func TestSystemInfoHandler(t *testing.T) {
	s := &fakeSession{}
	require.NoError(t, SystemInfoHandler(s, "public", staticStatus{}))
	require.Len(t, s.embeds, 1)

	fields := map[string]string{}
	for _, f := range s.embeds[0].Fields {
		fields[f.Name] = f.Value
	}
	assert.Equal(t, "3", fields["📅 Scheduled jobs"])
	assert.Equal(t, "1h30m0s", fields["⌛ Uptime"])
	assert.Equal(t, "40ms", fields["⏱️ WebSocket latency"])
}
