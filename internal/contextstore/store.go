// Package contextstore remembers, per conversation, which message replies
// should be threaded to.
//
// Entries are written when a command is accepted and again when it is
// dispatched. They expire 24 hours after their last write; expiry only
// happens in Sweep, so a read never extends or removes an entry.
//
// Thread-safety:
//   - All operations are protected by RWMutex
//   - Safe for concurrent use by the inbound handler, the queue worker and
//     the control endpoints
package contextstore

import (
	"context"
	"log"
	"sync"
	"time"

	"loadbot/internal/transport"
)

// DefaultTTL is how long an entry survives without being rewritten.
const DefaultTTL = 24 * time.Hour

// Entry is the stored reply context of one conversation.
type Entry struct {
	Ref      transport.MessageRef
	StoredAt time.Time
}

// Store maps conversation IDs to their most recent reply context.
type Store struct {
	mu      sync.RWMutex
	entries map[string]Entry
	ttl     time.Duration
	now     func() time.Time
}

// New creates an empty store. A non-positive ttl falls back to DefaultTTL.
func New(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		entries: make(map[string]Entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Put stores ref for chatID with the current time, replacing any older entry.
func (s *Store) Put(chatID string, ref transport.MessageRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[chatID] = Entry{Ref: ref, StoredAt: s.now()}
}

// Get returns the entry for chatID. Age is not checked here.
func (s *Store) Get(chatID string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[chatID]
	return e, ok
}

// Delete removes the entry for chatID, if any.
func (s *Store) Delete(chatID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, chatID)
}

// Clear removes every entry.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]Entry)
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep removes every entry stored more than the TTL before now.
//
// Returns:
//   - int: Number of entries removed
func (s *Store) Sweep(now time.Time) int {
	cutoff := now.Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for chatID, e := range s.entries {
		if e.StoredAt.Before(cutoff) {
			delete(s.entries, chatID)
			removed++
		}
	}
	return removed
}

// Run sweeps the store every interval until ctx is cancelled.
//
// Intended to run in its own goroutine.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(s.now()); n > 0 {
				log.Printf("🧹 Cleaned up %d old message contexts", n)
			}
		}
	}
}
