// Package extract recovers structured loading requests from free chat text.
//
// This package is pure: no I/O, no logging, no shared state. It provides:
//   - WholeMessage: field rules applied once to the entire text
//   - PerLine: the same rules applied line by line, first line wins
//   - Merge / Extract: whole-message result first, per-line as fallback
//   - ClassifyProduct: product-line isolation and catalog lookup
//   - ParseDriverInfo: driver name/license from the command's second line
//   - FromCommand: the full control-command pipeline, up to validation
package extract

import (
	"strings"

	"loadbot/internal/catalog"
	"loadbot/internal/record"
)

var (
	vehicleRule     = catalog.Lookup(catalog.VehicleNum)
	soRule          = catalog.Lookup(catalog.SONo)
	phoneRule       = catalog.Lookup(catalog.PhoneNum)
	weightRule      = catalog.Lookup(catalog.Weight)
	destinationRule = catalog.Lookup(catalog.Destination)
	licenseRule     = catalog.Lookup(catalog.DriverLicense)
)

// Extract runs both strategies over text and merges them.
func Extract(text string) record.Record {
	return Merge(WholeMessage(text), PerLine(text))
}

// WholeMessage applies each field rule to the whole text once.
//
// Ten-digit tokens are bucketed by leading digit (see bucketTenDigit).
// The destination comes from the first line whose weight expression has
// text in front of it, with any vehicle number removed.
func WholeMessage(text string) record.Record {
	var r record.Record
	if text == "" {
		return r
	}

	r.VehicleNum, _ = vehicleRule.Find(text)
	r.PhoneNum, r.SONo = bucketTenDigit(text, "", "")
	r.Weight, _ = weightRule.Find(text)

	for _, line := range strings.Split(text, "\n") {
		if !weightRule.Matches(line) {
			continue
		}
		if dest, ok := destinationFrom(line); ok {
			r.Destination = dest
			break
		}
	}

	return r
}

// PerLine applies the field rules to each non-empty line. A value found on
// an earlier line is never replaced by a later one.
func PerLine(text string) record.Record {
	var r record.Record

	for _, line := range lines(text) {
		if r.VehicleNum == "" {
			r.VehicleNum, _ = vehicleRule.Find(line)
		}

		r.PhoneNum, r.SONo = bucketTenDigit(line, r.PhoneNum, r.SONo)

		if r.Weight == "" {
			if w, loc := weightRule.Find(line); loc != nil {
				r.Weight = w
				// destination lives on the weight line
				if dest, ok := destinationFrom(line); ok && r.Destination == "" {
					r.Destination = dest
				}
			}
		}
	}

	return r
}

// Merge prefers the whole-message value of every field and falls back to the
// per-line value only when the whole-message strategy found nothing.
func Merge(whole, perLine record.Record) record.Record {
	pick := func(a, b string) string {
		if a != "" {
			return a
		}
		return b
	}
	return record.Record{
		VehicleNum:    pick(whole.VehicleNum, perLine.VehicleNum),
		Destination:   pick(whole.Destination, perLine.Destination),
		Weight:        pick(whole.Weight, perLine.Weight),
		SONo:          pick(whole.SONo, perLine.SONo),
		PhoneNum:      pick(whole.PhoneNum, perLine.PhoneNum),
		DriverLicense: pick(whole.DriverLicense, perLine.DriverLicense),
		DriverName:    pick(whole.DriverName, perLine.DriverName),
		ProductType:   pick(whole.ProductType, perLine.ProductType),
	}
}

// bucketTenDigit scans the 10-digit tokens of text in order. Leading 4-9 is a
// phone candidate, leading 0-3 an SO candidate; only the first token of each
// bucket is kept and already-filled buckets are left alone.
func bucketTenDigit(text, phone, so string) (string, string) {
	for _, tok := range catalog.TenDigit.FindAllString(text, -1) {
		if tok[0] >= '4' && tok[0] <= '9' {
			if phone == "" {
				phone = tok
			}
			continue
		}
		if so == "" {
			so = tok
		}
	}
	return phone, so
}

// destinationFrom returns the text in front of the weight expression on line.
func destinationFrom(line string) (string, bool) {
	dest, loc := destinationRule.Find(line)
	if loc == nil {
		return "", false
	}
	dest = strings.TrimSpace(dest)
	if v, _ := vehicleRule.Find(dest); v != "" {
		dest = strings.TrimSpace(strings.Replace(dest, v, "", 1))
	}
	return dest, true
}

// lines splits text into trimmed, non-empty lines.
func lines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
