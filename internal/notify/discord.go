package notify

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"stardom/internal/game"

	"github.com/bwmarrin/discordgo"
)

const discordMessageLimit = 2000

type channelSender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Discord posts week reports to one channel through a bot account.
type Discord struct {
	session   channelSender
	channelID string
}

func NewDiscord(token, channelID string) (*Discord, error) {
	token = strings.TrimSpace(token)
	channelID = strings.TrimSpace(channelID)
	if token == "" || channelID == "" {
		return nil, fmt.Errorf("discord token and channel id are required")
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	return &Discord{session: session, channelID: channelID}, nil
}

func (d *Discord) Publish(ctx context.Context, _, player string, r game.WeekReport) error {
	msg := "```\n" + FormatReport(player, r) + "\n```"
	if len(msg) > discordMessageLimit {
		cut := discordMessageLimit - 7
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut] + "...\n```"
	}
	if _, err := d.session.ChannelMessageSend(d.channelID, msg, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord send: %w", err)
	}
	return nil
}
