package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"loadbot/internal/record"
)

func readAll(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open journal: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse journal: %v", err)
	}
	return rows
}

func TestOpenWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dispatches.csv")

	if _, err := Open(path); err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}
	if _, err := Open(path); err != nil {
		t.Fatalf("expected reopen to succeed but got: %v", err)
	}

	rows := readAll(t, path)
	if len(rows) != 1 {
		t.Fatalf("expected only the header row but got %d rows", len(rows))
	}
	if rows[0][0] != "seq" {
		t.Errorf("expected header to start with 'seq' but got %q", rows[0][0])
	}
}

func TestAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dispatches.csv")
	j, err := Open(path)
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}

	now := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	err = j.Append(Entry{
		Seq:          1,
		ItemID:       "abc",
		ChatID:       "-1001",
		EnqueuedAt:   now,
		DispatchedAt: now,
		Outcome:      OutcomeFailed,
		Detail:       "SO not found, retry later",
		Record:       record.Record{VehicleNum: "MH12AB1234", Weight: "25"},
	})
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}

	rows := readAll(t, path)
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row but got %d rows", len(rows))
	}
	row := rows[1]
	if row[5] != OutcomeFailed {
		t.Errorf("expected outcome %q but got %q", OutcomeFailed, row[5])
	}
	if row[6] != "SO not found, retry later" {
		t.Errorf("expected detail with comma preserved but got %q", row[6])
	}
	if row[7] != "MH12AB1234" {
		t.Errorf("expected vehicle 'MH12AB1234' but got %q", row[7])
	}
}

func TestConcurrentAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dispatches.csv")
	j, err := Open(path)
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := j.Append(Entry{Seq: i, Outcome: OutcomeSuccess}); err != nil {
				t.Errorf("append failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if rows := readAll(t, path); len(rows) != 21 {
		t.Errorf("expected 21 rows but got %d", len(rows))
	}
}

func TestDisabledJournal(t *testing.T) {
	j, err := Open("")
	if err != nil || j != nil {
		t.Fatalf("expected nil journal without error, got %v, %v", j, err)
	}
	if err := j.Append(Entry{Seq: 1}); err != nil {
		t.Errorf("expected no-op append but got: %v", err)
	}
	if j.Path() != "" {
		t.Errorf("expected empty path but got %q", j.Path())
	}
}
