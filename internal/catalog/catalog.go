// Package catalog holds the static matching tables used to read loading requests.
//
// The package is pure data plus two small lookups:
//   - Rules: one matcher per record field, in precedence order
//   - Products: canonical product names with their alternate spellings
package catalog

import "regexp"

// Field identifies a record field by its wire name.
type Field string

// Record fields recognised by the extraction rules.
const (
	VehicleNum    Field = "vehicle_num"
	SONo          Field = "so_no"
	PhoneNum      Field = "phone_num"
	Weight        Field = "weight"
	Destination   Field = "destination"
	DriverLicense Field = "driver_license"
)

// Rule is a single field matcher.
//
// Fields:
//   - Field: Record field the rule fills
//   - Pattern: Compiled matcher
//   - Group: Capture group holding the value (0 = whole match)
type Rule struct {
	Field   Field
	Pattern *regexp.Regexp
	Group   int
}

// Find returns the value and the span of the first match of the rule in text.
//
// Returns:
//   - string: Matched value (the configured capture group)
//   - []int: Start/end offsets of the whole match, nil when nothing matched
func (r Rule) Find(text string) (string, []int) {
	m := r.Pattern.FindStringSubmatchIndex(text)
	if m == nil {
		return "", nil
	}
	g := r.Group * 2
	if m[g] < 0 {
		return "", nil
	}
	return text[m[g]:m[g+1]], m[:2]
}

// Matches reports whether the rule matches anywhere in text.
func (r Rule) Matches(text string) bool {
	return r.Pattern.MatchString(text)
}

// Auxiliary patterns that are not tied to a single field.
var (
	// TenDigit matches any standalone 10-digit token; the leading digit decides
	// whether it is a phone number (4-9) or a sales-order number (0-3).
	TenDigit = regexp.MustCompile(`\b\d{10}\b`)

	// WeightExpr matches a weight expression anywhere in a line (no leading boundary).
	WeightExpr = regexp.MustCompile(`(?i)\d+(?:\.\d+)?\s*MT\b`)

	// Digit matches any line carrying at least one digit.
	Digit = regexp.MustCompile(`\d`)
)

// Rules lists the field matchers in precedence order. The first rule declared
// for a field wins when several could apply.
var Rules = []Rule{
	// xx11xx1111: 2 letters, 1-2 digits, 1-2 letters, 3-4 digits
	{Field: VehicleNum, Pattern: regexp.MustCompile(`\b[A-Za-z]{2}\d{1,2}[A-Za-z]{1,2}\d{3,4}\b`)},
	{Field: SONo, Pattern: regexp.MustCompile(`\b[0-3]\d{9}\b`)},
	{Field: PhoneNum, Pattern: regexp.MustCompile(`\b[4-9]\d{9}\b`)},
	{Field: Weight, Pattern: regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*MT\b`), Group: 1},
	// text before "<number> MT" on the same line
	{Field: Destination, Pattern: regexp.MustCompile(`(?i)^(.*?)\s+\d+(?:\.\d+)?\s*MT\b`), Group: 1},
	{Field: DriverLicense, Pattern: regexp.MustCompile(`\b\d{4}\b`)},
}

// Lookup returns the highest-precedence rule for a field.
//
// Panics if the field has no rule; the table is static so that is a programming error.
func Lookup(f Field) Rule {
	for _, r := range Rules {
		if r.Field == f {
			return r
		}
	}
	panic("catalog: no rule for field " + string(f))
}
