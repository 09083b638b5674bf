package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/shoushou-fitness/clubbot/internal/domain"
	"github.com/shoushou-fitness/clubbot/internal/metrics"
	"github.com/shoushou-fitness/clubbot/pkg/logging"
)

const channelNATS = "nats"

// Responder computes the reply payloads for one user text.
type Responder interface {
	Respond(ctx context.Context, userID, text string) []domain.ReplyPayload
}

// RouteRequest is the body of a request on the routing subject.
type RouteRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

// RouteResponse carries the rendered payloads back to the requester. An
// empty payload list means the bot would stay silent.
type RouteResponse struct {
	UserID   string                `json:"user_id"`
	Payloads []domain.ReplyPayload `json:"payloads"`
	Error    string                `json:"error,omitempty"`
}

// NATSConfig controls the NATS connection.
type NATSConfig struct {
	URL     string
	Subject string
	Name    string
	Timeout time.Duration
}

// NATSTransport answers route requests over NATS request/reply.
type NATSTransport struct {
	conn      *nats.Conn
	sub       *nats.Subscription
	subject   string
	timeout   time.Duration
	responder Responder
	metrics   *metrics.BotMetrics
	logger    *logging.Logger
}

func NewNATSTransport(cfg NATSConfig, responder Responder, m *metrics.BotMetrics, logger *logging.Logger) (*NATSTransport, error) {
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	name := cfg.Name
	if name == "" {
		name = "clubbot"
	}

	conn, err := nats.Connect(cfg.URL,
		nats.Name(name),
		nats.Timeout(timeout),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	logger.Info("connected to NATS", "url", cfg.URL)

	return &NATSTransport{
		conn:      conn,
		subject:   cfg.Subject,
		timeout:   timeout,
		responder: responder,
		metrics:   m,
		logger:    logger,
	}, nil
}

func (nt *NATSTransport) Start() error {
	sub, err := nt.conn.Subscribe(nt.subject, nt.handleRouteRequest)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", nt.subject, err)
	}
	nt.sub = sub

	nt.logger.Info("subscribed", "subject", nt.subject)
	return nil
}

func (nt *NATSTransport) handleRouteRequest(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), nt.timeout)
	defer cancel()

	data := Handle(ctx, nt.responder, msg.Data, nt.metrics)
	if err := msg.Respond(data); err != nil {
		nt.logger.Error("failed to send response", "subject", msg.Subject, "error", err)
	}
}

// Handle decodes a RouteRequest, runs it through r and encodes the response.
func Handle(ctx context.Context, r Responder, data []byte, m *metrics.BotMetrics) []byte {
	var req RouteRequest
	if err := json.Unmarshal(data, &req); err != nil {
		m.ObserveInbound(channelNATS, "invalid")
		return encode(RouteResponse{Error: "invalid request format"})
	}
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		m.ObserveInbound(channelNATS, "invalid")
		return encode(RouteResponse{Error: "user_id is required"})
	}

	payloads := r.Respond(ctx, req.UserID, req.Text)
	if payloads == nil {
		payloads = []domain.ReplyPayload{}
	}
	m.ObserveInbound(channelNATS, "replied")
	return encode(RouteResponse{UserID: req.UserID, Payloads: payloads})
}

func encode(resp RouteResponse) []byte {
	data, err := json.Marshal(resp)
	if err != nil {
		return []byte(`{"error":"internal error"}`)
	}
	return data
}

func (nt *NATSTransport) Close() error {
	if nt.sub != nil {
		_ = nt.sub.Unsubscribe()
	}
	if nt.conn != nil {
		nt.conn.Close()
		nt.logger.Info("NATS connection closed")
	}
	return nil
}
