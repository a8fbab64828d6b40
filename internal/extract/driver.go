package extract

import (
	"strings"

	"loadbot/internal/record"
)

// DriverInfo is what the second line of a control command yields.
//
// Fields:
//   - Name: Free text before the license number
//   - License: First standalone 4-digit token on the line
//   - Trailing: Text after the license plus every later line
//   - Extra: Fields recovered from Trailing by the field extractor
type DriverInfo struct {
	Name     string
	License  string
	Trailing string
	Extra    record.Record
}

// ParseDriverInfo reads the driver line of a control command.
//
// Line 1 is the command itself; line 2 is expected to look like
// "RAM KUMAR - 4521 anything else". Returns false when the command has fewer
// than two non-empty lines or the driver line has no 4-digit token.
func ParseDriverInfo(command string) (DriverInfo, bool) {
	ls := lines(command)
	if len(ls) < 2 {
		return DriverInfo{}, false
	}

	driverLine := ls[1]
	license, loc := licenseRule.Find(driverLine)
	if loc == nil {
		return DriverInfo{}, false
	}

	info := DriverInfo{License: license}

	name := strings.TrimSpace(driverLine[:loc[0]])
	name = strings.TrimRight(name, "-:,")
	info.Name = strings.TrimSpace(name)

	trailing := strings.TrimSpace(driverLine[loc[1]:])
	if len(ls) > 2 {
		trailing += "\n" + strings.Join(ls[2:], "\n")
	}
	info.Trailing = strings.TrimSpace(trailing)

	if info.Trailing != "" {
		info.Extra = Extract(info.Trailing)
	}

	return info, true
}
