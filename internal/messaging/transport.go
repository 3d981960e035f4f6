// Package messaging sends replies and pushes to chat groups and turns
// incoming webhook payloads into plain events.
package messaging

import (
	"context"

	"piaopiao-backend-go/internal/card"
)

// Message is either plain text or a card. Card wins when both are set.
type Message struct {
	Text string
	Card *card.Document
}

func Text(text string) Message {
	return Message{Text: text}
}

func Card(doc card.Document) Message {
	return Message{Card: &doc}
}

type Transport interface {
	Reply(ctx context.Context, replyToken string, msgs ...Message) error
	Push(ctx context.Context, to string, msgs ...Message) error
}

type EventKind string

const (
	EventMessage  EventKind = "message"
	EventPostback EventKind = "postback"
)

// Event is one webhook event reduced to what the bot dispatches on.
type Event struct {
	Kind       EventKind
	ReplyToken string
	UserID     string
	GroupID    string
	Text       string
	Data       string
}

// ChatID is where pushes for this event should go: the group when the event
// came from one, otherwise the user.
func (e Event) ChatID() string {
	if e.GroupID != "" {
		return e.GroupID
	}
	return e.UserID
}
