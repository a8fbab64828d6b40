// Package bot wires extraction, the request queue and the chat transport
// together.
//
// This package provides:
//   - Handler: turns inbound chat messages into queued loading requests
//   - Dispatcher: runs one queued request against the processor and reports
//     the outcome back to the chat
package bot

import (
	"context"
	"errors"
	"log"

	"loadbot/internal/contextstore"
	apperr "loadbot/internal/errors"
	"loadbot/internal/extract"
	"loadbot/internal/queue"
	"loadbot/internal/record"
	"loadbot/internal/transport"
)

// Enqueuer accepts validated requests.
type Enqueuer interface {
	Enqueue(chatID string, rec record.Record, origin transport.MessageRef) (queue.Item, int)
}

// HandlerConfig selects which messages are treated as commands.
//
// Fields:
//   - GroupName: Only groups with exactly this title are served
//   - TriggerPhrase: Case-insensitive phrase that marks a command
type HandlerConfig struct {
	GroupName     string
	TriggerPhrase string
}

// Handler processes inbound messages.
//
// Thread-safety:
//   - Stateless apart from its collaborators, which are all safe for
//     concurrent use
type Handler struct {
	cfg      HandlerConfig
	sender   transport.Sender
	dir      transport.Directory
	contexts *contextstore.Store
	queue    Enqueuer
}

// NewHandler creates a Handler.
func NewHandler(cfg HandlerConfig, sender transport.Sender, dir transport.Directory, contexts *contextstore.Store, q Enqueuer) *Handler {
	return &Handler{
		cfg:      cfg,
		sender:   sender,
		dir:      dir,
		contexts: contexts,
		queue:    q,
	}
}

// HandleMessage runs the command pipeline for one inbound message.
//
// Flow:
//  1. Ignore own messages, private chats and texts without the trigger
//  2. Ignore groups whose title is not the configured group
//  3. Remember the message as reply context for the chat
//  4. Extract and validate the record (quoted message + command text)
//  5. Reply with the problem, or enqueue and acknowledge with the position
func (h *Handler) HandleMessage(ctx context.Context, msg transport.Message) {
	if msg.FromSelf || !msg.IsGroup {
		return
	}
	if !extract.ContainsTrigger(msg.Text, h.cfg.TriggerPhrase) {
		return
	}

	title, err := h.dir.ChatTitle(ctx, msg.ChatID)
	if err != nil {
		log.Printf("❌ Error checking group metadata for %s: %v", msg.ChatID, err)
		return
	}
	if title != h.cfg.GroupName {
		log.Printf("❌ Command ignored: group %q is not %q", title, h.cfg.GroupName)
		return
	}
	log.Printf("✅ Command accepted from group: %q", title)

	h.contexts.Put(msg.ChatID, msg.Ref)

	cmd := extract.Command{Text: msg.Text}
	if msg.Quoted != nil {
		cmd.HasQuote = true
		cmd.Quoted = msg.Quoted.Text
	}

	rec, err := extract.FromCommand(cmd, h.cfg.TriggerPhrase)
	if err != nil {
		h.reject(ctx, msg, err)
		return
	}

	item, position := h.queue.Enqueue(msg.ChatID, rec, msg.Ref)
	log.Printf("📦 Request %s queued for %s at position %d", item.ID, msg.ChatID, position)

	h.send(ctx, msg.ChatID, QueuedText(position), nil)
}

// reject replies to a command that could not be turned into a request.
func (h *Handler) reject(ctx context.Context, msg transport.Message, err error) {
	var missingCtx *apperr.MissingQuotedContextError
	var incomplete *apperr.ExtractionIncompleteError

	switch {
	case errors.As(err, &missingCtx):
		log.Printf("❌ %s", missingCtx.Message)
		h.send(ctx, msg.ChatID, "❌ "+missingCtx.Message, &msg.Ref)
	case errors.As(err, &incomplete):
		log.Printf("❌ Missing fields: %v", incomplete.Missing)
		h.send(ctx, msg.ChatID, MissingText(incomplete.Missing), &msg.Ref)
	default:
		log.Printf("❌ Error in command: %v", err)
		h.send(ctx, msg.ChatID, "❌ Error processing the command", &msg.Ref)
	}
}

func (h *Handler) send(ctx context.Context, chatID, text string, quote *transport.MessageRef) {
	if err := h.sender.SendText(ctx, chatID, text, quote); err != nil {
		log.Printf("⚠️  %v", apperr.NewNotificationError(chatID, err))
	}
}
