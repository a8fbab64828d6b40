package contextstore

import (
	"context"
	"testing"
	"time"

	"loadbot/internal/transport"
)

func fixedClock(t *time.Time) func() time.Time {
	return func() time.Time { return *t }
}

func TestPutGetOverwrite(t *testing.T) {
	s := New(0)
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	s.now = fixedClock(&now)

	s.Put("chat-1", transport.MessageRef{ChatID: "chat-1", MessageID: 1})
	now = now.Add(time.Minute)
	s.Put("chat-1", transport.MessageRef{ChatID: "chat-1", MessageID: 2})

	e, ok := s.Get("chat-1")
	if !ok {
		t.Fatal("expected entry to exist")
	}
	if e.Ref.MessageID != 2 {
		t.Errorf("expected latest write to win but got message %d", e.Ref.MessageID)
	}
	if !e.StoredAt.Equal(now) {
		t.Errorf("expected timestamp %v but got %v", now, e.StoredAt)
	}

	if _, ok := s.Get("chat-2"); ok {
		t.Error("expected no entry for unknown chat")
	}
}

func TestSweepBoundary(t *testing.T) {
	stored := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		sweepAt   time.Time
		wantEntry bool
	}{
		{"just before expiry", stored.Add(23*time.Hour + 59*time.Minute), true},
		{"just after expiry", stored.Add(24*time.Hour + time.Minute), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(DefaultTTL)
			now := stored
			s.now = fixedClock(&now)
			s.Put("chat-1", transport.MessageRef{ChatID: "chat-1", MessageID: 7})

			s.Sweep(tt.sweepAt)

			_, ok := s.Get("chat-1")
			if ok != tt.wantEntry {
				t.Errorf("expected entry present=%v but got %v", tt.wantEntry, ok)
			}
		})
	}
}

func TestGetDoesNotExtend(t *testing.T) {
	s := New(DefaultTTL)
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	s.now = fixedClock(&now)
	s.Put("chat-1", transport.MessageRef{ChatID: "chat-1"})

	now = now.Add(20 * time.Hour)
	s.Get("chat-1")

	if n := s.Sweep(now.Add(5 * time.Hour)); n != 1 {
		t.Errorf("expected read entry to expire on its original schedule, removed %d", n)
	}
}

func TestDeleteAndClear(t *testing.T) {
	s := New(0)
	s.Put("a", transport.MessageRef{ChatID: "a"})
	s.Put("b", transport.MessageRef{ChatID: "b"})

	s.Delete("a")
	if _, ok := s.Get("a"); ok {
		t.Error("expected 'a' to be deleted")
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 entry but got %d", s.Len())
	}

	s.Clear()
	if s.Len() != 0 {
		t.Errorf("expected empty store but got %d entries", s.Len())
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	s := New(0)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Run(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected Run to return after cancel")
	}
}
