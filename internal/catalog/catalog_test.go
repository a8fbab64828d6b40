package catalog

import "testing"

func TestMatchProduct(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected string
	}{
		{"croptek dashed code", "C-9-24-24", "N 40 KG MAHADHAN CROPTEK 9:24:24"},
		{"croptek short code", "n9", "N 40 KG MAHADHAN CROPTEK 9:24:24"},
		{"croptek ratio", "9:24:24", "N 40 KG MAHADHAN CROPTEK 9:24:24"},
		{"smartek 20", "S-20 bags", "N 50 KG MAHADHAN SMARTEK NPKS 20:20:0:13"},
		{"24:24:0 ratio", "24.24.0", "N 50 KG MAHADHAN 24:24:0"},
		{"11:30:14 ratio", "11:30:14", "N 40 KG MAHADHAN CROPTEK NPK 11:30:14"},
		{"8:21:21 ratio", "NPK 8:21:21", "N 40 KG MAHADHAN CROPTEK NPK 8:21:21"},
		{"10:26:26 dashed", "10-26-26", "N 50 KG MAHADHAN SMARTEK NPK 10:26:26"},
		{"16:20:0:13 packed", "1620013", "N 50 KG MAHADHAN SMARTEK NPKS 16:20:0:13"},
		{"unknown", "ABC 777", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchProduct(tt.line)
			if got != tt.expected {
				t.Errorf("expected %q but got %q", tt.expected, got)
			}
		})
	}
}

func TestMatchProductIsStable(t *testing.T) {
	line := "croptek c 9"
	first := MatchProduct(line)
	for i := 0; i < 5; i++ {
		if got := MatchProduct(line); got != first {
			t.Fatalf("expected %q on run %d but got %q", first, i, got)
		}
	}
}

func TestRuleFind(t *testing.T) {
	tests := []struct {
		name     string
		field    Field
		text     string
		expected string
	}{
		{"vehicle", VehicleNum, "truck MH12AB1234 ready", "MH12AB1234"},
		{"short vehicle", VehicleNum, "GJ5X123", "GJ5X123"},
		{"so number", SONo, "SO 1234567890", "1234567890"},
		{"phone", PhoneNum, "call 9876543210", "9876543210"},
		{"weight group", Weight, "PUNE 25.5 mt", "25.5"},
		{"destination group", Destination, "PUNE 25 MT", "PUNE"},
		{"license", DriverLicense, "RAM - 4521", "4521"},
		{"no weight", Weight, "25 KG", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := Lookup(tt.field).Find(tt.text)
			if got != tt.expected {
				t.Errorf("expected %q but got %q", tt.expected, got)
			}
		})
	}
}

func TestLookupUnknownFieldPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown field")
		}
	}()
	Lookup(Field("nope"))
}
