package telegram

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"loadbot/internal/transport"
)

// Update represents a Telegram update from getUpdates.
type Update struct {
	UpdateID int              `json:"update_id"`
	Message  *IncomingMessage `json:"message,omitempty"`
}

// IncomingMessage represents a received Telegram message.
type IncomingMessage struct {
	MessageID      int64            `json:"message_id"`
	From           *User            `json:"from,omitempty"`
	Chat           *Chat            `json:"chat,omitempty"`
	Text           string           `json:"text"`
	Caption        string           `json:"caption"`
	ReplyToMessage *IncomingMessage `json:"reply_to_message,omitempty"`
}

// Chat represents a Telegram chat.
type Chat struct {
	ID    int64  `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
}

// User represents a Telegram user.
type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	Username  string `json:"username,omitempty"`
}

// getUpdates fetches new updates using long polling.
//
// Parameters:
//   - offset: Update ID to start from (acknowledges everything before it)
func (c *Client) getUpdates(ctx context.Context, offset int) ([]Update, error) {
	payload := map[string]interface{}{
		"offset":          offset,
		"timeout":         int(c.pollTimeout / time.Second),
		"allowed_updates": []string{"message"},
	}

	raw, err := c.doRequest(ctx, "getUpdates", payload)
	if err != nil {
		return nil, err
	}

	var updates []Update
	if err := json.Unmarshal(raw, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// Poll listens for incoming messages and hands them to h, one at a time.
//
// Update processing loop:
//  1. Long poll for updates
//  2. Convert each message and pass it to the handler
//  3. Advance the offset to acknowledge processed updates
//  4. Repeat until ctx is cancelled
func (c *Client) Poll(ctx context.Context, h transport.Handler) {
	if c == nil {
		log.Println("⚠️  Telegram not configured, update handler disabled")
		return
	}

	log.Println("✓ Starting Telegram update handler...")
	offset := 0

	for {
		select {
		case <-ctx.Done():
			log.Println("🛑 Telegram update handler stopped")
			return
		default:
		}

		updates, err := c.getUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			log.Printf("⚠️  Error getting Telegram updates: %v", err)
			select {
			case <-ctx.Done():
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, update := range updates {
			offset = update.UpdateID + 1
			if update.Message == nil {
				continue
			}
			h.HandleMessage(ctx, c.toTransport(update.Message))
		}
	}
}

// toTransport converts a Bot API message into the transport form.
func (c *Client) toTransport(m *IncomingMessage) transport.Message {
	msg := transport.Message{
		Ref:  refOf(m),
		Text: m.Text,
	}
	if msg.Text == "" {
		msg.Text = m.Caption
	}
	if m.Chat != nil {
		msg.ChatID = strconv.FormatInt(m.Chat.ID, 10)
		msg.IsGroup = m.Chat.Type == "group" || m.Chat.Type == "supergroup"
	}
	if m.From != nil && c.selfID != 0 && m.From.ID == c.selfID {
		msg.FromSelf = true
	}
	if r := m.ReplyToMessage; r != nil {
		quoted := &transport.QuotedMessage{Ref: refOf(r), Text: r.Text}
		if quoted.Text == "" {
			quoted.Text = r.Caption
		}
		msg.Quoted = quoted
	}
	return msg
}

func refOf(m *IncomingMessage) transport.MessageRef {
	ref := transport.MessageRef{MessageID: m.MessageID}
	if m.Chat != nil {
		ref.ChatID = strconv.FormatInt(m.Chat.ID, 10)
	}
	if m.From != nil {
		ref.SenderID = strconv.FormatInt(m.From.ID, 10)
	}
	return ref
}
