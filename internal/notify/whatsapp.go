package notify

import (
	"context"
	"fmt"
	"io"
	"strings"

	"stardom/internal/game"

	_ "github.com/lib/pq"
	"github.com/mdp/qrterminal/v3"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"
)

type messageSender interface {
	SendMessage(ctx context.Context, to types.JID, message *waE2E.Message, extra ...whatsmeow.SendRequestExtra) (whatsmeow.SendResponse, error)
}

// WhatsApp sends week reports to one chat from a linked device. The device session lives
// in postgres next to the saves.
type WhatsApp struct {
	client    *whatsmeow.Client
	sender    messageSender
	recipient types.JID
}

// NewWhatsApp connects the linked device stored at databaseURL. An unpaired device prints a
// pairing QR code to qrOut and waits until it is scanned or ctx ends.
func NewWhatsApp(ctx context.Context, databaseURL, recipient string, qrOut io.Writer) (*WhatsApp, error) {
	jid, err := types.ParseJID(strings.TrimSpace(recipient))
	if err != nil {
		return nil, fmt.Errorf("whatsapp recipient: %w", err)
	}
	container, err := sqlstore.New(ctx, "postgres", databaseURL, waLog.Noop)
	if err != nil {
		return nil, fmt.Errorf("whatsapp device store: %w", err)
	}
	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("whatsapp device: %w", err)
	}
	client := whatsmeow.NewClient(device, waLog.Noop)

	if client.Store.ID != nil {
		if err := client.Connect(); err != nil {
			return nil, fmt.Errorf("whatsapp connect: %w", err)
		}
		return &WhatsApp{client: client, sender: client, recipient: jid}, nil
	}

	qrChan, err := client.GetQRChannel(ctx)
	if err != nil {
		return nil, fmt.Errorf("whatsapp qr channel: %w", err)
	}
	if err := client.Connect(); err != nil {
		return nil, fmt.Errorf("whatsapp connect: %w", err)
	}
	for evt := range qrChan {
		switch evt.Event {
		case "code":
			qrterminal.GenerateHalfBlock(evt.Code, qrterminal.L, qrOut)
		case "success":
			return &WhatsApp{client: client, sender: client, recipient: jid}, nil
		default:
			if evt.Error != nil {
				client.Disconnect()
				return nil, fmt.Errorf("whatsapp pairing: %w", evt.Error)
			}
		}
	}
	client.Disconnect()
	return nil, fmt.Errorf("whatsapp pairing did not complete")
}

func (w *WhatsApp) Publish(ctx context.Context, _, player string, r game.WeekReport) error {
	msg := &waE2E.Message{Conversation: proto.String(FormatReport(player, r))}
	if _, err := w.sender.SendMessage(ctx, w.recipient, msg); err != nil {
		return fmt.Errorf("whatsapp send: %w", err)
	}
	return nil
}

func (w *WhatsApp) Close() {
	if w.client != nil {
		w.client.Disconnect()
	}
}
