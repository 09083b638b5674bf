package services

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mdp/qrterminal/v3"
	"go.mau.fi/whatsmeow"
	waProto "go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	waTypes "go.mau.fi/whatsmeow/types"
	waEvents "go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	_ "modernc.org/sqlite" // SQLite driver for whatsmeow store

	"github.com/shoushou-fitness/clubbot/internal/domain"
	"github.com/shoushou-fitness/clubbot/internal/metrics"
	"github.com/shoushou-fitness/clubbot/internal/render"
	"github.com/shoushou-fitness/clubbot/internal/textkey"
	"github.com/shoushou-fitness/clubbot/pkg/logging"
)

// waSender is the part of the whatsmeow client used for sending.
type waSender interface {
	IsConnected() bool
	SendMessage(ctx context.Context, to waTypes.JID, message *waProto.Message, extra ...whatsmeow.SendRequestExtra) (whatsmeow.SendResponse, error)
}

// WhatsAppService is a text-only channel. Rich payloads are flattened with
// render.PlainText and joined into one message.
type WhatsAppService struct {
	client  *whatsmeow.Client
	sender  waSender
	metrics *metrics.BotMetrics
	logger  *logging.Logger
}

func NewWhatsAppService(ctx context.Context, storePath string, m *metrics.BotMetrics, logger *logging.Logger) (*WhatsAppService, error) {
	if logger == nil {
		logger = logging.Default()
	}
	logger.Info("initializing whatsapp service", "store_path", storePath)

	container, err := sqlstore.New(ctx, "sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout=5000&_pragma=foreign_keys=on", storePath), waLog.Stdout("SQLStore", "WARN", true))
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlstore: %w", err)
	}

	// Get the first device from the store, or create a new one if none exists
	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		logger.Info("no existing device found, creating new device", "error", err)
		deviceStore = container.NewDevice()
	}

	client := whatsmeow.NewClient(deviceStore, waLog.Stdout("Client", "WARN", true))
	service := &WhatsAppService{client: client, sender: client, metrics: m, logger: logger}

	client.AddEventHandler(func(evt interface{}) {
		switch v := evt.(type) {
		case *waEvents.Connected:
			logger.Info("whatsapp client connected")
		case *waEvents.Disconnected:
			logger.Warn("whatsapp client disconnected", "event", fmt.Sprintf("%v", v))
		case *waEvents.LoggedOut:
			logger.Warn("whatsapp client logged out")
		}
	})

	if client.Store.ID == nil {
		logger.Info("no session found, starting QR code pairing")
		qr, _ := client.GetQRChannel(ctx)
		if err = client.Connect(); err != nil {
			return nil, fmt.Errorf("failed to connect: %w", err)
		}
		for evt := range qr {
			if evt.Event == "code" {
				fmt.Fprintln(os.Stdout, "Scan this QR code in WhatsApp to pair the club bot:")
				qrterminal.GenerateHalfBlock(evt.Code, qrterminal.L, os.Stdout)
			} else {
				logger.Info("qr event", "event", evt.Event)
			}
		}
	} else {
		logger.Info("existing session found", "device_id", client.Store.ID.String())
		if err = client.Connect(); err != nil {
			return nil, fmt.Errorf("failed to connect with existing session: %w", err)
		}
		// Wait a bit for the connection to stabilize
		time.Sleep(3 * time.Second)
		if !client.IsConnected() {
			logger.Warn("whatsapp client may not be fully connected yet")
		}
	}

	return service, nil
}

// Reply sends payloads back to the sender. WhatsApp has no reply token.
func (w *WhatsAppService) Reply(ctx context.Context, replyToken, userID string, payloads []domain.ReplyPayload) error {
	return w.Push(ctx, userID, payloads)
}

// Push sends payloads to the phone number in userID.
func (w *WhatsAppService) Push(ctx context.Context, userID string, payloads []domain.ReplyPayload) error {
	text := flatten(payloads)
	if text == "" {
		return nil
	}
	phone := normalizePhone(userID)
	if phone == "" {
		return fmt.Errorf("invalid whatsapp recipient %q", userID)
	}
	if !w.sender.IsConnected() {
		w.metrics.ObserveOutbound("whatsapp", "error")
		return fmt.Errorf("WhatsApp client is not connected")
	}

	to := waTypes.NewJID(phone, waTypes.DefaultUserServer)
	resp, err := w.sender.SendMessage(ctx, to, &waProto.Message{Conversation: &text})
	if err != nil {
		w.metrics.ObserveOutbound("whatsapp", "error")
		return fmt.Errorf("failed to send whatsapp message: %w", err)
	}

	w.metrics.ObserveOutbound("whatsapp", "sent")
	w.logger.Debug("whatsapp message sent", "message_id", resp.ID, "to", phone)
	return nil
}

func (w *WhatsAppService) IsConnected() bool {
	return w.sender.IsConnected()
}

func (w *WhatsAppService) AddEventHandler(handler func(interface{})) {
	w.client.AddEventHandler(handler)
}

func (w *WhatsAppService) Disconnect() {
	w.client.Disconnect()
}

func flatten(payloads []domain.ReplyPayload) string {
	parts := make([]string, 0, len(payloads))
	for _, p := range payloads {
		if s := strings.TrimSpace(render.PlainText(p)); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

// ExtractText returns the text body of a whatsmeow message event.
func ExtractText(e *waEvents.Message) string {
	if e.Message.GetConversation() != "" {
		return e.Message.GetConversation()
	}
	if e.Message.ExtendedTextMessage != nil {
		return e.Message.ExtendedTextMessage.GetText()
	}
	return ""
}

// stripDevicePart drops the ":device" suffix of a JID user part.
func stripDevicePart(user string) string {
	if i := strings.IndexByte(user, ':'); i >= 0 {
		return user[:i]
	}
	return user
}

// normalizePhone reduces a JID or a formatted number to bare digits.
func normalizePhone(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '@'); i >= 0 {
		s = s[:i]
	}
	return textkey.Digits(stripDevicePart(s))
}
