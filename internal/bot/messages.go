package bot

import (
	"fmt"
	"strings"

	"loadbot/internal/record"
)

// MissingText is the reply listing required fields that could not be found.
func MissingText(missing []string) string {
	labels := make([]string, len(missing))
	for i, f := range missing {
		labels[i] = record.Label(f)
	}
	return "❌ *Details Missing*\n\nMissing: " + strings.Join(labels, ", ")
}

// QueuedText acknowledges an accepted command with its queue position.
func QueuedText(position int) string {
	return fmt.Sprintf("⏳ *Processing* - Queue #%d", position)
}
