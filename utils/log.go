package utils

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

type LogLevel string

const (
	Info  LogLevel = "INFO"
	Warn  LogLevel = "WARN"
	Error LogLevel = "ERROR"
)

// EmbedSender is the part of the discord session used to post log embeds.
type EmbedSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

func getColor(level LogLevel) int {
	switch level {
	case Info:
		return 3066993 // Green
	case Warn:
		return 15105570 // Orange
	case Error:
		return 15158332 // Red
	default:
		return 3447003 // Blue
	}
}

// LogEmbed builds the embed posted to the log channel.
func LogEmbed(level LogLevel, module, operation, extraInfo string) *discordgo.MessageEmbed {
	if extraInfo == "" {
		extraInfo = "-"
	}
	return &discordgo.MessageEmbed{
		Title: string(level) + " Log",
		Color: getColor(level),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Module", Value: module},
			{Name: "Operation", Value: operation},
			{Name: "Details", Value: Truncate(extraInfo, 1024)},
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

func sendLog(s EmbedSender, channelID string, level LogLevel, module, operation, extraInfo string) error {
	if s == nil || channelID == "" {
		return nil
	}
	_, err := s.ChannelMessageSendEmbed(channelID, LogEmbed(level, module, operation, extraInfo))
	return err
}

func LogInfo(s EmbedSender, channelID, module, operation, extraInfo string) error {
	return sendLog(s, channelID, Info, module, operation, extraInfo)
}

func LogWarn(s EmbedSender, channelID, module, operation, extraInfo string) error {
	return sendLog(s, channelID, Warn, module, operation, extraInfo)
}

func LogError(s EmbedSender, channelID, module, operation, extraInfo string) error {
	return sendLog(s, channelID, Error, module, operation, extraInfo)
}
