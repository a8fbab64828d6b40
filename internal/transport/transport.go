// Package transport defines the boundary between the bot and the chat network.
//
// The bot core only sees these types; a concrete adapter (internal/telegram)
// turns them into network calls. Session handling, pairing and reconnects
// live entirely inside the adapter.
package transport

import "context"

// MessageRef identifies one chat message so that a later send can quote it.
//
// The reference is opaque to the core: it is stored, serialised into the
// processor request as message_key, and handed back to the adapter.
type MessageRef struct {
	ChatID    string `json:"chat_id"`
	MessageID int64  `json:"message_id"`
	SenderID  string `json:"sender_id,omitempty"`
}

// QuotedMessage is the message an inbound message replies to.
type QuotedMessage struct {
	Ref  MessageRef
	Text string
}

// Message is one inbound chat message.
//
// Fields:
//   - Ref: Reference used to thread replies to this message
//   - ChatID: Conversation the message arrived in
//   - IsGroup: Whether the conversation is a group chat
//   - Text: Message text ("" for media without caption)
//   - Quoted: The replied-to message, nil when the message is not a reply
//   - FromSelf: Whether the bot itself sent the message
type Message struct {
	Ref      MessageRef
	ChatID   string
	IsGroup  bool
	Text     string
	Quoted   *QuotedMessage
	FromSelf bool
}

// Image is an outbound picture. Either URL or Data is set.
type Image struct {
	URL     string
	Data    []byte
	Caption string
}

// Sender delivers outbound messages. A nil quote sends a plain message.
type Sender interface {
	SendText(ctx context.Context, chatID, text string, quote *MessageRef) error
	SendImage(ctx context.Context, chatID string, img Image, quote *MessageRef) error
}

// Directory resolves conversation metadata.
type Directory interface {
	ChatTitle(ctx context.Context, chatID string) (string, error)
}

// Handler consumes inbound messages.
type Handler interface {
	HandleMessage(ctx context.Context, msg Message)
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, msg Message)

// HandleMessage calls f(ctx, msg).
func (f HandlerFunc) HandleMessage(ctx context.Context, msg Message) {
	f(ctx, msg)
}
