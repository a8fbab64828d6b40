// Package journal keeps an append-only CSV log of dispatched requests.
//
// The journal is an audit trail for operators. It is written once per
// dispatch and never read back by the bot, so no queue or context state
// survives a restart through it.
//
// Thread-safety:
//   - All writes are protected by mutex
//   - Safe for concurrent use, although the queue worker is the only writer
package journal

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"loadbot/internal/record"
)

// bufferSize for buffered I/O (64KB)
const bufferSize = 64 * 1024

// Outcome values written to the journal.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// header is the first row of a new journal file.
var header = []string{
	"seq", "item_id", "chat_id", "enqueued_at", "dispatched_at", "outcome", "detail",
	"vehicle_num", "destination", "weight", "actual_weight", "so_no", "phone_num",
	"driver_license", "driver_name", "product_type",
}

// Entry is one dispatch outcome.
//
// Fields:
//   - Seq: Dispatch sequence number
//   - ItemID: Queue item ID
//   - Outcome: OutcomeSuccess or OutcomeFailed
//   - Detail: Failure cause or the success reply text
type Entry struct {
	Seq          int
	ItemID       string
	ChatID       string
	EnqueuedAt   time.Time
	DispatchedAt time.Time
	Outcome      string
	Detail       string
	ActualWeight string
	Record       record.Record
}

func (e Entry) row() []string {
	r := e.Record
	return []string{
		strconv.Itoa(e.Seq),
		e.ItemID,
		e.ChatID,
		e.EnqueuedAt.Format(time.RFC3339),
		e.DispatchedAt.Format(time.RFC3339),
		e.Outcome,
		e.Detail,
		r.VehicleNum,
		r.Destination,
		r.Weight,
		e.ActualWeight,
		r.SONo,
		r.PhoneNum,
		r.DriverLicense,
		r.DriverName,
		r.ProductType,
	}
}

// Journal appends dispatch entries to a CSV file.
type Journal struct {
	mu   sync.Mutex
	path string
}

// Open prepares the journal at path, writing the header if the file is new
// or empty.
//
// Returns:
//   - *Journal: Ready-to-use journal; nil (a no-op journal) when path is ""
//   - error: File I/O error
func Open(path string) (*Journal, error) {
	if path == "" {
		log.Println("📋 Dispatch journal disabled")
		return nil, nil
	}

	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err) || (err == nil && info.Size() == 0):
		log.Printf("📋 Creating dispatch journal %s", path)
		if err := writeRows(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, [][]string{header}); err != nil {
			return nil, fmt.Errorf("failed to create journal: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to stat journal: %w", err)
	default:
		log.Printf("📚 Appending to existing dispatch journal %s", path)
	}

	return &Journal{path: path}, nil
}

// Append writes entries at the end of the journal. A nil Journal ignores
// the call.
func (j *Journal) Append(entries ...Entry) error {
	if j == nil || len(entries) == 0 {
		return nil
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = e.row()
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	return writeRows(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, rows)
}

// Path returns the journal file path ("" for a nil journal).
func (j *Journal) Path() string {
	if j == nil {
		return ""
	}
	return j.path
}

// writeRows opens path with flag and writes rows through a buffered CSV writer.
func writeRows(path string, flag int, rows [][]string) error {
	file, err := os.OpenFile(path, flag, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	bufferedWriter := bufio.NewWriterSize(file, bufferSize)
	writer := csv.NewWriter(bufferedWriter)

	for _, r := range rows {
		if err := writer.Write(r); err != nil {
			return err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return bufferedWriter.Flush()
}
