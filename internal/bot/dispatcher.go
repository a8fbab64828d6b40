package bot

import (
	"context"
	"log"
	"time"

	"loadbot/internal/contextstore"
	apperr "loadbot/internal/errors"
	"loadbot/internal/health"
	"loadbot/internal/journal"
	"loadbot/internal/processor"
	"loadbot/internal/queue"
	"loadbot/internal/record"
	"loadbot/internal/summary"
	"loadbot/internal/transport"
)

// Processor executes one loading request.
type Processor interface {
	Process(ctx context.Context, chatID string, rec record.Record, origin transport.MessageRef) (*processor.Result, error)
}

// DispatcherConfig holds the optional pieces of the dispatch step.
//
// Fields:
//   - ReceiptRecipient: Chat that receives the receipt card after each
//     success ("" disables it)
//   - Journal: Dispatch log (nil disables it)
//   - Monitor: Health monitor updated after every dispatch (may be nil)
//   - Render: Receipt renderer (summary.Render when nil)
type DispatcherConfig struct {
	ReceiptRecipient string
	Journal          *journal.Journal
	Monitor          *health.Monitor
	Render           func(summary.Receipt) ([]byte, error)
}

// Dispatcher implements queue.Dispatcher.
type Dispatcher struct {
	cfg       DispatcherConfig
	processor Processor
	sender    transport.Sender
	contexts  *contextstore.Store
	now       func() time.Time
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(cfg DispatcherConfig, p Processor, sender transport.Sender, contexts *contextstore.Store) *Dispatcher {
	if cfg.Render == nil {
		cfg.Render = summary.Render
	}
	return &Dispatcher{
		cfg:       cfg,
		processor: p,
		sender:    sender,
		contexts:  contexts,
		now:       time.Now,
	}
}

// Dispatch sends one item to the processor and reports the outcome.
//
// Flow:
//  1. Refresh the chat's reply context with the command message
//  2. Call the processor (bounded by the processor client's timeout)
//  3. Success: threaded reply, then the receipt card (best effort)
//  4. Failure: threaded reply carrying the cause
//  5. Journal the outcome and update the health monitor
//
// Returns:
//   - error: The processor failure; notification problems are only logged
func (d *Dispatcher) Dispatch(ctx context.Context, item queue.Item, seq int) error {
	d.contexts.Put(item.ChatID, item.Origin)
	log.Printf("💾 Stored message context for %s", item.ChatID)

	res, err := d.processor.Process(ctx, item.ChatID, item.Record, item.Origin)
	dispatchedAt := d.now()

	entry := journal.Entry{
		Seq:          seq,
		ItemID:       item.ID,
		ChatID:       item.ChatID,
		EnqueuedAt:   item.EnqueuedAt,
		DispatchedAt: dispatchedAt,
		Record:       item.Record,
	}

	if err != nil {
		detail := apperr.DetailOf(err)
		log.Printf("❌ Error sending request %d to processor: %v", seq, err)

		d.notify(ctx, item.ChatID, processor.FailureText(err), &item.Origin)

		entry.Outcome = journal.OutcomeFailed
		entry.Detail = detail
		d.record(entry, "error: "+detail)
		return err
	}

	reply := processor.SuccessText(res)
	d.notify(ctx, item.ChatID, reply, &item.Origin)
	log.Printf("✅ Success message sent for request %d", seq)

	d.sendReceipt(ctx, summary.Receipt{
		Seq:          seq,
		ChatID:       item.ChatID,
		Record:       item.Record,
		ActualWeight: res.ActualWeight,
		Reply:        reply,
		DispatchedAt: dispatchedAt,
	})

	entry.Outcome = journal.OutcomeSuccess
	entry.Detail = reply
	entry.ActualWeight = res.ActualWeight
	d.record(entry, "success")
	return nil
}

// sendReceipt renders and sends the receipt card. Failures are logged only.
func (d *Dispatcher) sendReceipt(ctx context.Context, r summary.Receipt) {
	if d.cfg.ReceiptRecipient == "" {
		return
	}

	png, err := d.cfg.Render(r)
	if err != nil {
		log.Printf("⚠️  Receipt was not rendered: %v", err)
		return
	}

	img := transport.Image{Data: png}
	if err := d.sender.SendImage(ctx, d.cfg.ReceiptRecipient, img, nil); err != nil {
		log.Printf("⚠️  Receipt was not sent: %v", apperr.NewNotificationError(d.cfg.ReceiptRecipient, err))
		return
	}
	log.Printf("✅ Receipt sent to recipient: %s", d.cfg.ReceiptRecipient)
}

func (d *Dispatcher) notify(ctx context.Context, chatID, text string, quote *transport.MessageRef) {
	if err := d.sender.SendText(ctx, chatID, text, quote); err != nil {
		log.Printf("⚠️  %v", apperr.NewNotificationError(chatID, err))
	}
}

func (d *Dispatcher) record(entry journal.Entry, status string) {
	if err := d.cfg.Journal.Append(entry); err != nil {
		log.Printf("⚠️  Failed to write dispatch journal: %v", err)
	}
	if d.cfg.Monitor != nil {
		d.cfg.Monitor.UpdateDispatchStatus(status)
	}
}
