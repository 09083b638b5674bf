package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/shoushou-fitness/clubbot/internal/domain"
	"github.com/shoushou-fitness/clubbot/internal/metrics"
	"github.com/shoushou-fitness/clubbot/pkg/logging"
)

const (
	maxLineMessages     = 5
	maxLineTextRunes    = 5000
	maxLineTitleRunes   = 40
	maxLineButtonsRunes = 60
	maxLineAltTextRunes = 400
	defaultAltText      = "Shoushou Fitness"
)

// LineConfig controls how the LINE client behaves.
type LineConfig struct {
	BaseURL       string
	AccessToken   string
	ChannelSecret string
	Timeout       time.Duration
	HTTPClient    *http.Client
	Metrics       *metrics.BotMetrics
	Logger        *logging.Logger
}

// LineClient sends replies through the LINE Messaging API and parses its
// signed webhook callbacks.
type LineClient struct {
	api           *messaging_api.MessagingApiAPI
	channelSecret string
	metrics       *metrics.BotMetrics
	logger        *logging.Logger
}

func NewLineClient(cfg LineConfig) (*LineClient, error) {
	if strings.TrimSpace(cfg.AccessToken) == "" {
		return nil, errors.New("line: channel access token is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	opts := []messaging_api.MessagingApiAPIOption{messaging_api.WithHTTPClient(httpClient)}
	if baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); baseURL != "" {
		opts = append(opts, messaging_api.WithEndpoint(baseURL))
	}
	api, err := messaging_api.NewMessagingApiAPI(cfg.AccessToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("line: create client: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &LineClient{
		api:           api,
		channelSecret: cfg.ChannelSecret,
		metrics:       cfg.Metrics,
		logger:        logger,
	}, nil
}

// ParseRequest verifies the X-Line-Signature header and decodes the callback.
func (c *LineClient) ParseRequest(r *http.Request) (*webhook.CallbackRequest, error) {
	if c.channelSecret == "" {
		return nil, errors.New("line: channel secret not configured")
	}
	return webhook.ParseRequest(c.channelSecret, r)
}

// Reply answers an inbound event. Without a reply token it falls back to a push.
func (c *LineClient) Reply(ctx context.Context, replyToken, userID string, payloads []domain.ReplyPayload) error {
	if len(payloads) == 0 {
		return nil
	}
	if replyToken == "" {
		return c.Push(ctx, userID, payloads)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.api.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   toLineMessages(payloads),
	})
	return c.observe("reply", err)
}

// Push sends payloads to userID outside a reply window.
func (c *LineClient) Push(ctx context.Context, userID string, payloads []domain.ReplyPayload) error {
	if len(payloads) == 0 {
		return nil
	}
	if strings.TrimSpace(userID) == "" {
		return errors.New("line: user id is required for push")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.api.PushMessage(&messaging_api.PushMessageRequest{
		To:       userID,
		Messages: toLineMessages(payloads),
	}, "")
	return c.observe("push", err)
}

func (c *LineClient) observe(call string, err error) error {
	if err != nil {
		c.metrics.ObserveOutbound("line", "error")
		return fmt.Errorf("line: %s: %w", call, err)
	}
	c.metrics.ObserveOutbound("line", "sent")
	return nil
}

func toLineMessages(payloads []domain.ReplyPayload) []messaging_api.MessageInterface {
	n := len(payloads)
	if n > maxLineMessages {
		n = maxLineMessages
	}
	out := make([]messaging_api.MessageInterface, 0, n)
	for _, p := range payloads[:n] {
		out = append(out, toLineMessage(p))
	}
	return out
}

func toLineMessage(p domain.ReplyPayload) messaging_api.MessageInterface {
	alt := clip(firstNonEmpty(p.AltText, p.Title, p.Text, defaultAltText), maxLineAltTextRunes)
	switch p.Type {
	case domain.PayloadButtonMenu:
		text := p.Text
		if p.Title != "" {
			text = clip(text, maxLineButtonsRunes)
		}
		return &messaging_api.TemplateMessage{AltText: alt, Template: &messaging_api.ButtonsTemplate{
			Title:   clip(p.Title, maxLineTitleRunes),
			Text:    firstNonEmpty(text, alt),
			Actions: lineActions(p.Actions),
		}}

	case domain.PayloadConfirmPrompt:
		return &messaging_api.TemplateMessage{AltText: alt, Template: &messaging_api.ConfirmTemplate{
			Text:    firstNonEmpty(p.Text, alt),
			Actions: lineActions(p.Actions),
		}}

	case domain.PayloadImageCarousel:
		cols := make([]messaging_api.ImageCarouselColumn, 0, len(p.Columns))
		for _, col := range p.Columns {
			cols = append(cols, messaging_api.ImageCarouselColumn{
				ImageUrl: col.ImageURL,
				Action:   &messaging_api.MessageAction{Label: col.Action.Label, Text: col.Action.Text},
			})
		}
		return &messaging_api.TemplateMessage{AltText: alt, Template: &messaging_api.ImageCarouselTemplate{Columns: cols}}

	case domain.PayloadCarousel:
		bubbles := make([]messaging_api.FlexBubble, 0, len(p.Bubbles))
		for _, b := range p.Bubbles {
			bubbles = append(bubbles, toFlexBubble(b))
		}
		return &messaging_api.FlexMessage{AltText: alt, Contents: &messaging_api.FlexCarousel{Contents: bubbles}}
	}
	return &messaging_api.TextMessage{Text: clip(firstNonEmpty(p.Text, alt), maxLineTextRunes)}
}

func toFlexBubble(b domain.Bubble) messaging_api.FlexBubble {
	body := []messaging_api.FlexComponentInterface{
		&messaging_api.FlexText{Text: firstNonEmpty(b.Title, "-"), Weight: messaging_api.FlexTextWEIGHT_BOLD, Size: "lg", Wrap: true},
	}
	for _, f := range b.Fields {
		body = append(body, &messaging_api.FlexText{Text: f.Label + ": " + f.Value, Size: "sm", Wrap: true})
	}
	bubble := messaging_api.FlexBubble{
		Body: &messaging_api.FlexBox{Layout: messaging_api.FlexBoxLAYOUT_VERTICAL, Spacing: "sm", Contents: body},
	}
	if b.ImageURL != "" {
		bubble.Hero = &messaging_api.FlexImage{Url: b.ImageURL, Size: "full", AspectMode: messaging_api.FlexImageASPECT_MODE_COVER}
	}
	if len(b.Footer) > 0 {
		buttons := make([]messaging_api.FlexComponentInterface, 0, len(b.Footer))
		for _, a := range b.Footer {
			buttons = append(buttons, &messaging_api.FlexButton{
				Style:  messaging_api.FlexButtonSTYLE_PRIMARY,
				Action: &messaging_api.MessageAction{Label: a.Label, Text: a.Text},
			})
		}
		bubble.Footer = &messaging_api.FlexBox{Layout: messaging_api.FlexBoxLAYOUT_VERTICAL, Contents: buttons}
	}
	return bubble
}

func lineActions(actions []domain.MessageAction) []messaging_api.ActionInterface {
	out := make([]messaging_api.ActionInterface, 0, len(actions))
	for _, a := range actions {
		out = append(out, &messaging_api.MessageAction{Label: a.Label, Text: a.Text})
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func clip(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
