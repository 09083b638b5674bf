package handlers

import (
	"context"
	"net/http"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/shoushou-fitness/clubbot/internal/domain"
	"github.com/shoushou-fitness/clubbot/pkg/logging"
)

const maxWebhookBody = 1 << 20

// SignatureVerifier checks the webhook signature and decodes the callback.
type SignatureVerifier interface {
	ParseRequest(r *http.Request) (*webhook.CallbackRequest, error)
}

// EventHandler consumes one verified inbound message.
type EventHandler interface {
	HandleEvent(ctx context.Context, msg domain.InboundMessage) error
}

// LineWebhookHandler verifies LINE callbacks and hands text messages to the bot.
type LineWebhookHandler struct {
	verifier SignatureVerifier
	events   EventHandler
	logger   *logging.Logger
}

func NewLineWebhookHandler(verifier SignatureVerifier, events EventHandler, logger *logging.Logger) *LineWebhookHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &LineWebhookHandler{verifier: verifier, events: events, logger: logger}
}

func (h *LineWebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBody)
	cb, err := h.verifier.ParseRequest(r)
	if err != nil {
		h.logger.Warn("rejected webhook", "error", err, "remote_ip", r.RemoteAddr)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	for _, msg := range textMessages(cb) {
		// reply failures are logged by the bot; LINE must still get a 200
		_ = h.events.HandleEvent(r.Context(), msg)
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// textMessages keeps only text message events with a user id.
func textMessages(cb *webhook.CallbackRequest) []domain.InboundMessage {
	var out []domain.InboundMessage
	for _, event := range cb.Events {
		ev, ok := event.(webhook.MessageEvent)
		if !ok {
			continue
		}
		text, ok := ev.Message.(webhook.TextMessageContent)
		if !ok {
			continue
		}
		userID := sourceUserID(ev.Source)
		if userID == "" {
			continue
		}
		out = append(out, domain.InboundMessage{
			Channel:    ChannelLine,
			UserID:     userID,
			Text:       text.Text,
			ReplyToken: ev.ReplyToken,
		})
	}
	return out
}

func sourceUserID(src webhook.SourceInterface) string {
	switch s := src.(type) {
	case webhook.UserSource:
		return s.UserId
	case webhook.GroupSource:
		return s.UserId
	case webhook.RoomSource:
		return s.UserId
	}
	return ""
}
