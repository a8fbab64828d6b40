package extract

import (
	"strings"

	"loadbot/internal/catalog"
)

// ProductLine isolates the line that describes the product.
//
// Lines holding the vehicle number, SO number, phone number or a weight
// expression are skipped, as are empty lines. The first remaining line that
// contains a digit is returned; "" means there is no product line.
func ProductLine(text string) string {
	vehicle, _ := vehicleRule.Find(text)
	so, _ := soRule.Find(text)
	phone, _ := phoneRule.Find(text)
	_, weightLoc := weightRule.Find(text)

	claimed := func(line string) bool {
		switch {
		case vehicle != "" && strings.Contains(line, vehicle):
			return true
		case so != "" && strings.Contains(line, so):
			return true
		case phone != "" && strings.Contains(line, phone):
			return true
		case weightLoc != nil && catalog.WeightExpr.MatchString(line):
			return true
		}
		return false
	}

	for _, line := range lines(text) {
		if claimed(line) {
			continue
		}
		if catalog.Digit.MatchString(line) {
			return line
		}
	}
	return ""
}

// ClassifyProduct returns the canonical product named in text, or "".
func ClassifyProduct(text string) string {
	line := ProductLine(text)
	if line == "" {
		return ""
	}
	return catalog.MatchProduct(line)
}
