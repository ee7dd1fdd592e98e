package utils

import (
	"log"

	"github.com/bwmarrin/discordgo"
)

// MessageSender is the part of the discord session used to post plain messages.
type MessageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// SendMessage posts content, split into as many messages as the gateway limit requires.
func SendMessage(s MessageSender, channelID, content string) error {
	for _, part := range SplitMessage(content) {
		if _, err := s.ChannelMessageSend(channelID, part); err != nil {
			return err
		}
	}
	return nil
}

// SendReply posts a reply and logs delivery failures.
func SendReply(s MessageSender, channelID, content string) {
	if err := SendMessage(s, channelID, content); err != nil {
		log.Printf("Error sending reply to channel %s: %v", channelID, err)
	}
}

// SendErrorResponse posts an error reply.
func SendErrorResponse(s MessageSender, channelID, message string) {
	SendReply(s, channelID, "❌ "+message)
}
