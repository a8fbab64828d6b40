package extract

import (
	"strings"

	apperr "loadbot/internal/errors"
	"loadbot/internal/record"
)

// Command is the text input of one control command.
//
// Fields:
//   - Text: The command message itself (trigger line, driver line, extras)
//   - Quoted: Text of the message the command replies to
//   - HasQuote: Whether the command replied to any message at all
type Command struct {
	Text     string
	Quoted   string
	HasQuote bool
}

// FromCommand assembles and validates the record for a control command.
//
// Flow:
//  1. Product from the quoted message (if any)
//  2. When the text starts with the trigger phrase:
//     a. a quoted message with text is required
//     b. both strategies run over the quoted text and are merged
//     c. the driver line supplies name/license, trailing fields override
//     d. a product named after the driver line overrides the quoted one
//  3. Uppercase every field, then check the required fields
//
// Returns:
//   - record.Record: The uppercased record (also returned on validation failure)
//   - error: *MissingQuotedContextError or *ExtractionIncompleteError
func FromCommand(cmd Command, trigger string) (record.Record, error) {
	var rec record.Record

	if cmd.HasQuote && cmd.Quoted != "" {
		rec.ProductType = ClassifyProduct(cmd.Quoted)
	}

	if startsWithTrigger(cmd.Text, trigger) {
		if !cmd.HasQuote {
			return rec, apperr.NewMissingQuotedContextError("Please reply to a message with '" + trigger + "' command")
		}
		if cmd.Quoted == "" {
			return rec, apperr.NewMissingQuotedContextError("Could not extract text from the original message")
		}

		product := rec.ProductType
		rec = Extract(cmd.Quoted)
		rec.ProductType = product

		if info, ok := ParseDriverInfo(cmd.Text); ok {
			rec.DriverName = info.Name
			rec.DriverLicense = info.License
			rec.FillFrom(info.Extra)
		}

		if ls := lines(cmd.Text); len(ls) > 2 {
			if p := ClassifyProduct(strings.Join(ls[2:], "\n")); p != "" {
				rec.ProductType = p
			}
		}
	}

	rec = rec.Upper()
	if missing := rec.Missing(); len(missing) > 0 {
		return rec, apperr.NewExtractionIncompleteError(missing)
	}
	return rec, nil
}

// ContainsTrigger reports whether text mentions the trigger phrase anywhere,
// ignoring case.
func ContainsTrigger(text, trigger string) bool {
	return trigger != "" && strings.Contains(strings.ToLower(text), strings.ToLower(trigger))
}

func startsWithTrigger(text, trigger string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(text)), strings.ToLower(trigger))
}
