package processor

import (
	"math"
	"strconv"
	"strings"

	apperr "loadbot/internal/errors"
)

// weightTolerance is how far actual and requested weights may differ and
// still count as the same quantity.
const weightTolerance = 0.01

// SuccessText composes the chat reply for a successful dispatch.
//
// Equal weights (within tolerance) or an unparseable weight on either side
// give the plain acknowledgement; otherwise both quantities are reported.
func SuccessText(res *Result) string {
	requested, errR := strconv.ParseFloat(strings.TrimSpace(res.RequestedWeight), 64)
	actual, errA := strconv.ParseFloat(strings.TrimSpace(res.ActualWeight), 64)
	if errR != nil || errA != nil || math.Abs(requested-actual) < weightTolerance {
		return "Done ✅"
	}
	return "AP done for " + formatWeight(actual) + " MT to load " + formatWeight(requested) + " MT ✅"
}

// FailureText composes the chat reply for a failed dispatch.
func FailureText(err error) string {
	detail := apperr.DetailOf(err)
	if detail == "" {
		detail = "An unexpected error occurred while processing your request."
	}
	return "❌ *Processing Failed*\n\n*Error:* " + detail
}

// formatWeight prints a weight without trailing zeros (25 not 25.000).
func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}
