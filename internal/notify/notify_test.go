package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"stardom/internal/game"

	"github.com/bwmarrin/discordgo"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
)

func sampleReport() game.WeekReport {
	return game.WeekReport{
		Week:  7,
		Stats: game.WeeklyStats{Week: 7, TotalStreams: 12_345, Listeners: 900, Followers: 4_000, WealthCents: 512_050},
		Events: []game.Event{
			{Kind: game.EventSongViral, Week: 7, Message: "Night Drive went viral"},
			{Kind: game.EventMerchSold, Week: 7, Message: "sold 12 hoodies"},
			{Kind: game.EventTrendStarted, Week: 7, Message: "drill is rising"},
		},
	}
}

func TestFormatReport(t *testing.T) {
	got := FormatReport("Test Artist", sampleReport())
	for _, want := range []string{"Test Artist | week 7", "streams 12345", "cash $5120.50", "- Night Drive went viral", "+2 more events"} {
		if !strings.Contains(got, want) {
			t.Fatalf("report missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "hoodies") {
		t.Fatalf("non-headline event listed:\n%s", got)
	}
}

func TestFormatCents(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{123_456, "$1234.56"},
		{-250, "-$2.50"},
	}
	for _, tc := range tests {
		if got := FormatCents(tc.in); got != tc.want {
			t.Fatalf("FormatCents(%d) = %q want %q", tc.in, got, tc.want)
		}
	}
}

type fakeChannel struct {
	channel, content string
	err              error
}

func (f *fakeChannel) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.channel, f.content = channelID, content
	return &discordgo.Message{}, f.err
}

func TestDiscordPublish(t *testing.T) {
	fake := &fakeChannel{}
	d := &Discord{session: fake, channelID: "123"}
	if err := d.Publish(context.Background(), "g1", "Test Artist", sampleReport()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if fake.channel != "123" || !strings.HasPrefix(fake.content, "```") || !strings.Contains(fake.content, "week 7") {
		t.Fatalf("sent %q to %q", fake.content, fake.channel)
	}

	fake.err = errors.New("rate limited")
	if err := d.Publish(context.Background(), "g1", "Test Artist", sampleReport()); err == nil {
		t.Fatalf("expected send error")
	}
	if _, err := NewDiscord("", "123"); err == nil {
		t.Fatalf("expected error without a token")
	}
}

func TestDiscordPublishTruncatesOnRuneBoundary(t *testing.T) {
	fake := &fakeChannel{}
	d := &Discord{session: fake, channelID: "123"}
	player := strings.Repeat("é", 1_500)
	if err := d.Publish(context.Background(), "g1", player, sampleReport()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(fake.content) > discordMessageLimit {
		t.Fatalf("message is %d bytes", len(fake.content))
	}
	if !utf8.ValidString(fake.content) {
		t.Fatalf("message is not valid utf-8")
	}
	if !strings.HasSuffix(fake.content, "...\n```") {
		t.Fatalf("missing truncation marker: %q", fake.content[len(fake.content)-10:])
	}
}

type fakeWhatsApp struct {
	to  types.JID
	msg *waE2E.Message
}

func (f *fakeWhatsApp) SendMessage(_ context.Context, to types.JID, message *waE2E.Message, _ ...whatsmeow.SendRequestExtra) (whatsmeow.SendResponse, error) {
	f.to, f.msg = to, message
	return whatsmeow.SendResponse{}, nil
}

func TestWhatsAppPublish(t *testing.T) {
	fake := &fakeWhatsApp{}
	jid := types.NewJID("15550001111", types.DefaultUserServer)
	w := &WhatsApp{sender: fake, recipient: jid}
	if err := w.Publish(context.Background(), "g1", "Test Artist", sampleReport()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if fake.to != jid || !strings.Contains(fake.msg.GetConversation(), "week 7") {
		t.Fatalf("sent %q to %v", fake.msg.GetConversation(), fake.to)
	}
}

type countingPublisher struct {
	calls int
	err   error
}

func (c *countingPublisher) Publish(context.Context, string, string, game.WeekReport) error {
	c.calls++
	return c.err
}

func TestFanoutJoinsErrors(t *testing.T) {
	ok := &countingPublisher{}
	bad := &countingPublisher{err: errors.New("down")}
	f := Fanout{ok, nil, bad, NewLog(nil)}
	err := f.Publish(context.Background(), "g1", "Test Artist", sampleReport())
	if !errors.Is(err, bad.err) {
		t.Fatalf("err = %v", err)
	}
	if ok.calls != 1 || bad.calls != 1 {
		t.Fatalf("calls ok=%d bad=%d", ok.calls, bad.calls)
	}
}
