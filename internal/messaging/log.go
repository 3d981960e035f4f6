package messaging

import (
	"context"

	"go.uber.org/zap"
)

// LogTransport writes outgoing messages to the logger instead of sending them.
// Used when no channel access token is configured.
type LogTransport struct {
	Logger *zap.Logger
}

func (t LogTransport) Reply(_ context.Context, replyToken string, msgs ...Message) error {
	for _, msg := range msgs {
		t.Logger.Info("reply", zap.String("reply_token", replyToken), describe(msg))
	}
	return nil
}

func (t LogTransport) Push(_ context.Context, to string, msgs ...Message) error {
	for _, msg := range msgs {
		t.Logger.Info("push", zap.String("to", to), describe(msg))
	}
	return nil
}

func describe(msg Message) zap.Field {
	if msg.Card != nil {
		return zap.String("card", msg.Card.AltText)
	}
	return zap.String("text", msg.Text)
}
