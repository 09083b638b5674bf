package handlers

import (
	"context"
	"strings"
	"sync"

	waEvents "go.mau.fi/whatsmeow/types/events"

	"github.com/shoushou-fitness/clubbot/internal/domain"
	"github.com/shoushou-fitness/clubbot/internal/metrics"
	"github.com/shoushou-fitness/clubbot/internal/render"
	"github.com/shoushou-fitness/clubbot/internal/router"
	"github.com/shoushou-fitness/clubbot/internal/services"
	"github.com/shoushou-fitness/clubbot/pkg/logging"
)

const (
	ChannelLine     = "line"
	ChannelWhatsApp = "whatsapp"
)

// BotDeps are the collaborators of the conversation pipeline.
type BotDeps struct {
	Router   *router.Router
	States   domain.StateStore
	Lookup   domain.LookupEngine
	Renderer *render.Renderer
	Metrics  *metrics.BotMetrics
	Logger   *logging.Logger
	// ReplyOnUnroutable answers unknown text with the help panel instead of
	// staying silent.
	ReplyOnUnroutable bool
}

// BotHandler runs one inbound text through state, router, lookup and
// renderer, and sends at most one reply.
type BotHandler struct {
	router            *router.Router
	states            domain.StateStore
	lookup            domain.LookupEngine
	renderer          *render.Renderer
	metrics           *metrics.BotMetrics
	logger            *logging.Logger
	replyOnUnroutable bool

	mu         sync.RWMutex
	messengers map[string]domain.Messenger
}

func NewBotHandler(deps BotDeps) *BotHandler {
	if deps.Router == nil {
		deps.Router = router.Default()
	}
	if deps.Renderer == nil {
		deps.Renderer = render.New(render.Options{})
	}
	if deps.Logger == nil {
		deps.Logger = logging.Default()
	}
	return &BotHandler{
		router:            deps.Router,
		states:            deps.States,
		lookup:            deps.Lookup,
		renderer:          deps.Renderer,
		metrics:           deps.Metrics,
		logger:            deps.Logger,
		replyOnUnroutable: deps.ReplyOnUnroutable,
		messengers:        make(map[string]domain.Messenger),
	}
}

// AddChannel registers the messenger that answers events from channel.
func (h *BotHandler) AddChannel(channel string, m domain.Messenger) {
	h.mu.Lock()
	h.messengers[channel] = m
	h.mu.Unlock()
}

// Messenger returns the messenger registered for channel.
func (h *BotHandler) Messenger(channel string) (domain.Messenger, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	m, ok := h.messengers[channel]
	return m, ok
}

// Respond computes the reply for one text from userID. It never fails:
// lookup errors become failure payloads. An empty result means no reply.
func (h *BotHandler) Respond(ctx context.Context, userID, text string) []domain.ReplyPayload {
	logger := h.logger.With("user_id", userID)

	current, err := h.states.Get(ctx, userID)
	if err != nil {
		logger.Error("failed to load conversation state", "error", err)
		current = domain.Idle
	}

	action, next := h.router.Route(userID, text, current)
	h.metrics.ObserveAction(action.Rule, string(action.Kind))
	logger.Info("routed", "rule", action.Rule, "action", action.Kind, "expectation", next.Expectation)

	// persisted before any lookup so a pending expectation is consumed once
	if next != current {
		if err := h.states.Set(ctx, userID, next); err != nil {
			logger.Error("failed to save conversation state", "error", err)
		}
	}

	switch action.Kind {
	case domain.ActionRunQuery:
		return h.runQuery(ctx, logger, action)
	case domain.ActionUnhandled:
		return h.unroutable()
	}
	return h.renderer.Action(action)
}

func (h *BotHandler) runQuery(ctx context.Context, logger *logging.Logger, action domain.Action) []domain.ReplyPayload {
	if action.Query == nil {
		return nil
	}
	req := *action.Query

	res, err := h.lookup.Query(ctx, req)
	if err != nil {
		logger.Error("lookup failed", "kind", req.Kind, "error", err)
		return []domain.ReplyPayload{render.BackendFailure(err)}
	}
	if !res.Found() && req.Fallback {
		logger.Debug("fallback lookup missed", "kind", req.Kind)
		return h.unroutable()
	}
	return h.renderer.Result(res)
}

func (h *BotHandler) unroutable() []domain.ReplyPayload {
	if !h.replyOnUnroutable {
		return nil
	}
	return []domain.ReplyPayload{render.Panel(domain.PanelHelp)}
}

// HandleEvent answers a verified inbound message through its channel.
func (h *BotHandler) HandleEvent(ctx context.Context, msg domain.InboundMessage) error {
	payloads := h.Respond(ctx, msg.UserID, msg.Text)
	if len(payloads) == 0 {
		h.metrics.ObserveInbound(msg.Channel, "ignored")
		return nil
	}

	m, ok := h.Messenger(msg.Channel)
	if !ok {
		h.metrics.ObserveInbound(msg.Channel, "no_channel")
		h.logger.Error("no messenger for channel", "channel", msg.Channel, "user_id", msg.UserID)
		return nil
	}

	if err := m.Reply(ctx, msg.ReplyToken, msg.UserID, payloads); err != nil {
		h.metrics.ObserveInbound(msg.Channel, "reply_failed")
		h.logger.Error("failed to send reply", "channel", msg.Channel, "user_id", msg.UserID, "error", err)
		return err
	}
	h.metrics.ObserveInbound(msg.Channel, "replied")
	return nil
}

// HandleMessage is the whatsmeow event handler.
func (h *BotHandler) HandleMessage(evt interface{}) {
	switch e := evt.(type) {
	case *waEvents.Message:
		if e.Message.GetConversation() == "" && e.Message.ExtendedTextMessage == nil {
			return
		}

		// ignore our own messages and group chats
		if e.Info.IsFromMe || e.Info.IsGroup {
			return
		}

		text := strings.TrimSpace(services.ExtractText(e))
		if text == "" {
			return
		}

		_ = h.HandleEvent(context.Background(), domain.InboundMessage{
			Channel: ChannelWhatsApp,
			UserID:  e.Info.MessageSource.Sender.User,
			Text:    text,
		})
	}
}
