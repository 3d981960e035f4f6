package messaging

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

// LineTransport delivers messages through the LINE Messaging API. Requests are
// bounded by the HTTP client timeout; ctx is only checked before sending.
type LineTransport struct {
	api *messaging_api.MessagingApiAPI
}

func NewLineTransport(accessToken string, timeout time.Duration) (*LineTransport, error) {
	api, err := messaging_api.NewMessagingApiAPI(accessToken,
		messaging_api.WithHTTPClient(&http.Client{Timeout: timeout}))
	if err != nil {
		return nil, fmt.Errorf("line client: %w", err)
	}
	return &LineTransport{api: api}, nil
}

func (t *LineTransport) Reply(ctx context.Context, replyToken string, msgs ...Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := toLineMessages(msgs)
	if err != nil {
		return err
	}
	_, err = t.api.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   payload,
	})
	if err != nil {
		return fmt.Errorf("reply message: %w", err)
	}
	return nil
}

func (t *LineTransport) Push(ctx context.Context, to string, msgs ...Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := toLineMessages(msgs)
	if err != nil {
		return err
	}
	_, err = t.api.PushMessage(&messaging_api.PushMessageRequest{
		To:       to,
		Messages: payload,
	}, "")
	if err != nil {
		return fmt.Errorf("push message to %s: %w", to, err)
	}
	return nil
}

func toLineMessages(msgs []Message) ([]messaging_api.MessageInterface, error) {
	out := make([]messaging_api.MessageInterface, 0, len(msgs))
	for _, msg := range msgs {
		if msg.Card == nil {
			out = append(out, messaging_api.TextMessage{Text: msg.Text})
			continue
		}
		raw, err := msg.Card.JSON()
		if err != nil {
			return nil, fmt.Errorf("encode card: %w", err)
		}
		contents, err := messaging_api.UnmarshalFlexContainer(raw)
		if err != nil {
			return nil, fmt.Errorf("decode flex container: %w", err)
		}
		out = append(out, messaging_api.FlexMessage{AltText: msg.Card.AltText, Contents: contents})
	}
	return out, nil
}

// ParseWebhook verifies the request signature and returns the text message
// and postback events it carries. Other event types are dropped.
func ParseWebhook(channelSecret string, r *http.Request) ([]Event, error) {
	cb, err := webhook.ParseRequest(channelSecret, r)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			return nil, ErrInvalidSignature
		}
		return nil, fmt.Errorf("parse webhook: %w", err)
	}
	events := make([]Event, 0, len(cb.Events))
	for _, raw := range cb.Events {
		switch e := raw.(type) {
		case webhook.MessageEvent:
			text, ok := e.Message.(webhook.TextMessageContent)
			if !ok {
				continue
			}
			ev := Event{Kind: EventMessage, ReplyToken: e.ReplyToken, Text: text.Text}
			ev.UserID, ev.GroupID = sourceIDs(e.Source)
			events = append(events, ev)
		case webhook.PostbackEvent:
			ev := Event{Kind: EventPostback, ReplyToken: e.ReplyToken}
			if e.Postback != nil {
				ev.Data = e.Postback.Data
			}
			ev.UserID, ev.GroupID = sourceIDs(e.Source)
			events = append(events, ev)
		}
	}
	return events, nil
}

func sourceIDs(source webhook.SourceInterface) (userID, groupID string) {
	switch s := source.(type) {
	case webhook.UserSource:
		return s.UserId, ""
	case *webhook.UserSource:
		return s.UserId, ""
	case webhook.GroupSource:
		return s.UserId, s.GroupId
	case *webhook.GroupSource:
		return s.UserId, s.GroupId
	case webhook.RoomSource:
		return s.UserId, s.RoomId
	case *webhook.RoomSource:
		return s.UserId, s.RoomId
	}
	return "", ""
}
