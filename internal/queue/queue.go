// Package queue serialises loading requests towards the external processor.
//
// The Controller owns a FIFO of accepted requests and a single drain loop.
// Invariants:
//   - At most one Dispatch call is in flight at any time
//   - Items are dispatched in enqueue order, each exactly once
//   - A failed item never blocks the items behind it
//   - The pacing wait between items holds no lock
package queue

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"loadbot/internal/record"
	"loadbot/internal/transport"
)

// DefaultPacing is the pause between two dispatches.
const DefaultPacing = 10 * time.Second

// Item is one accepted request waiting for dispatch.
//
// Fields:
//   - ID: Unique per enqueue
//   - ChatID: Conversation the request came from
//   - Record: Validated, uppercased record (value copy)
//   - Origin: Command message, used to thread replies
//   - EnqueuedAt: When the request was accepted
type Item struct {
	ID         string
	ChatID     string
	Record     record.Record
	Origin     transport.MessageRef
	EnqueuedAt time.Time
}

// Dispatcher performs the external call for one item and sends the
// resulting notifications. A non-nil error marks the item as failed.
//
// seq is the 1-based dispatch sequence number (currentPosition).
type Dispatcher interface {
	Dispatch(ctx context.Context, item Item, seq int) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, item Item, seq int) error

// Dispatch calls f.
func (f DispatcherFunc) Dispatch(ctx context.Context, item Item, seq int) error {
	return f(ctx, item, seq)
}

// NextRequest describes the head of the queue.
type NextRequest struct {
	ChatID  string    `json:"chatId"`
	AddedAt time.Time `json:"addedAt"`
}

// Status is a consistent snapshot of the queue.
type Status struct {
	TotalProcessed  int          `json:"totalProcessed"`
	CurrentPosition int          `json:"currentPosition"`
	LastProcessedAt *time.Time   `json:"lastProcessedAt"`
	QueueLength     int          `json:"queueLength"`
	IsProcessing    bool         `json:"isProcessing"`
	NextRequest     *NextRequest `json:"nextRequest"`
}

// Controller owns the request queue and its drain loop.
//
// Thread-safety:
//   - items, flags and counters are protected by mu
//   - Dispatch and the pacing wait run without holding mu
type Controller struct {
	mu         sync.Mutex
	items      []Item
	processing bool // a drain loop is active (dispatching or pacing)
	inFlight   bool // Dispatch is currently running
	stop       chan struct{}
	closed     bool
	done       chan struct{}

	totalProcessed  int
	currentPosition int
	lastProcessedAt time.Time

	dispatcher Dispatcher
	pacing     time.Duration
	baseCtx    context.Context
	now        func() time.Time
	wg         sync.WaitGroup
}

// New creates a Controller.
//
// Parameters:
//   - ctx: Parent context for dispatches; its cancellation does not abort a
//     dispatch already issued
//   - d: Performs the external call and notifications
//   - pacing: Pause between dispatches (<= 0 disables pacing)
func New(ctx context.Context, d Dispatcher, pacing time.Duration) *Controller {
	return &Controller{
		dispatcher: d,
		pacing:     pacing,
		baseCtx:    context.WithoutCancel(ctx),
		done:       make(chan struct{}),
		now:        time.Now,
	}
}

// Enqueue appends a request and starts the drain loop if it is idle.
//
// Returns:
//   - Item: The stored item (with its generated ID)
//   - int: Zero-based position snapshot, len(queue)-1 after the append
func (c *Controller) Enqueue(chatID string, rec record.Record, origin transport.MessageRef) (Item, int) {
	item := Item{
		ID:         uuid.NewString(),
		ChatID:     chatID,
		Record:     rec,
		Origin:     origin,
		EnqueuedAt: c.now(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = append(c.items, item)
	position := len(c.items) - 1
	log.Printf("➕ Added request to queue. Queue length: %d", len(c.items))

	if c.closed {
		log.Println("⚠️  Queue is shutting down, request will not be dispatched")
		return item, position
	}

	if !c.processing {
		c.processing = true
		c.stop = make(chan struct{})
		c.wg.Add(1)
		go c.drain(c.stop)
	}

	return item, position
}

// drain dispatches items until the queue is empty, the loop is superseded
// by Clear, or the controller is closed.
func (c *Controller) drain(stop chan struct{}) {
	defer c.wg.Done()

	c.mu.Lock()
	log.Printf("🔄 Starting queue processing. Queue length: %d", len(c.items))
	c.mu.Unlock()

	for {
		c.mu.Lock()
		if c.stop != stop {
			// Clear released the flag during our pacing wait
			c.mu.Unlock()
			return
		}
		if c.closed || len(c.items) == 0 {
			c.processing = false
			c.stop = nil
			total := c.totalProcessed
			c.mu.Unlock()
			log.Printf("✅ Queue processing completed. Total processed: %d", total)
			return
		}

		item := c.items[0]
		c.items[0] = Item{}
		c.items = c.items[1:]
		c.currentPosition++
		seq := c.currentPosition
		c.inFlight = true
		c.mu.Unlock()

		log.Printf("⏳ Processing request %d - From: %s", seq, item.ChatID)
		err := c.dispatcher.Dispatch(c.baseCtx, item, seq)

		c.mu.Lock()
		c.inFlight = false
		if err == nil {
			c.totalProcessed++
			c.lastProcessedAt = c.now()
		}
		remaining := len(c.items)
		c.mu.Unlock()

		if err != nil {
			log.Printf("❌ Request %d failed: %v", seq, err)
		} else {
			log.Printf("✅ Completed request %d", seq)
		}

		if remaining > 0 && c.pacing > 0 {
			log.Printf("⏸️  Waiting %v before next request...", c.pacing)
			c.wait(stop)
		}
	}
}

// wait sleeps for the pacing interval unless the loop is stopped first.
func (c *Controller) wait(stop chan struct{}) {
	timer := time.NewTimer(c.pacing)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-stop:
	case <-c.done:
	}
}

// Status returns a snapshot of counters, queue length and the head item.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Status{
		TotalProcessed:  c.totalProcessed,
		CurrentPosition: c.currentPosition,
		QueueLength:     len(c.items),
		IsProcessing:    c.processing,
	}
	if !c.lastProcessedAt.IsZero() {
		t := c.lastProcessedAt
		s.LastProcessedAt = &t
	}
	if len(c.items) > 0 {
		s.NextRequest = &NextRequest{ChatID: c.items[0].ChatID, AddedAt: c.items[0].EnqueuedAt}
	}
	return s
}

// Clear drops every queued item that has not been dispatched yet.
//
// An idle loop (pacing between items) is stopped and the in-progress flag
// released at once. A dispatch already in flight runs to completion and
// keeps the flag until it finishes.
//
// Returns:
//   - int: Number of items removed
func (c *Controller) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.items)
	c.items = nil

	if c.processing && !c.inFlight {
		close(c.stop)
		c.stop = nil
		c.processing = false
	}

	log.Printf("🧹 Queue cleared. Removed %d requests", n)
	return n
}

// Close stops the drain loop after the current dispatch and waits for it.
//
// Items still queued are left undispatched.
func (c *Controller) Close(ctx context.Context) error {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.done)
	}
	c.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
