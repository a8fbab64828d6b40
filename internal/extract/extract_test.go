package extract

import (
	"reflect"
	"testing"

	"loadbot/internal/record"
)

func TestWholeMessageWorkedExample(t *testing.T) {
	text := "MH12AB1234\nSO 1234567890\nWEIGHT 25 MT\nC-9-24-24"

	got := Extract(text)
	if got.VehicleNum != "MH12AB1234" {
		t.Errorf("expected vehicle 'MH12AB1234' but got %q", got.VehicleNum)
	}
	if got.SONo != "1234567890" {
		t.Errorf("expected so_no '1234567890' but got %q", got.SONo)
	}
	if got.Weight != "25" {
		t.Errorf("expected weight '25' but got %q", got.Weight)
	}
	if got.PhoneNum != "" {
		t.Errorf("expected no phone but got %q", got.PhoneNum)
	}

	product := ClassifyProduct(text)
	if product != "N 40 KG MAHADHAN CROPTEK 9:24:24" {
		t.Errorf("expected croptek 9:24:24 but got %q", product)
	}
}

func TestTenDigitBucketing(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		expectedPhone string
		expectedSO    string
	}{
		{"one of each", "9876543210 0123456789", "9876543210", "0123456789"},
		{"first per bucket wins", "0123456789 9876543210 0999999999 8888888888", "9876543210", "0123456789"},
		{"phones only", "9876543210\n8765432109", "9876543210", ""},
		{"so only", "SO 3123456789", "", "3123456789"},
		{"leading four is phone", "4123456789", "4123456789", ""},
		{"eleven digits ignored", "98765432101", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, r := range []record.Record{WholeMessage(tt.text), PerLine(tt.text)} {
				if r.PhoneNum != tt.expectedPhone {
					t.Errorf("expected phone %q but got %q", tt.expectedPhone, r.PhoneNum)
				}
				if r.SONo != tt.expectedSO {
					t.Errorf("expected so_no %q but got %q", tt.expectedSO, r.SONo)
				}
			}
		})
	}
}

func TestDestination(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"text before weight", "PUNE 25 MT", "PUNE"},
		{"vehicle stripped", "MH12AB1234 NASHIK ROAD 25.5 mt", "NASHIK ROAD"},
		{"later line when first has no prefix", "25 MT\nSATARA 30 MT", "SATARA"},
		{"no weight no destination", "PUNE\nMH12AB1234", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WholeMessage(tt.text).Destination
			if got != tt.expected {
				t.Errorf("expected %q but got %q", tt.expected, got)
			}
		})
	}
}

func TestPerLineFirstLineWins(t *testing.T) {
	text := "MH12AB1234\nNASHIK 20 MT\nKA01X999 30 MT"

	got := PerLine(text)
	if got.VehicleNum != "MH12AB1234" {
		t.Errorf("expected vehicle from first line but got %q", got.VehicleNum)
	}
	if got.Weight != "20" {
		t.Errorf("expected weight '20' but got %q", got.Weight)
	}
	if got.Destination != "NASHIK" {
		t.Errorf("expected destination 'NASHIK' but got %q", got.Destination)
	}
}

func TestPerLineDestinationOnlyFromWeightLine(t *testing.T) {
	text := "25 MT\nSATARA 30 MT"

	if got := PerLine(text).Destination; got != "" {
		t.Errorf("expected no per-line destination but got %q", got)
	}
	// whole-message finds it on the second line and must win the merge
	if got := Extract(text).Destination; got != "SATARA" {
		t.Errorf("expected merged destination 'SATARA' but got %q", got)
	}
}

func TestMergePrefersWholeMessage(t *testing.T) {
	whole := record.Record{VehicleNum: "MH12AB1234", Weight: "25"}
	perLine := record.Record{VehicleNum: "KA01AB9999", Weight: "30", SONo: "0123456789", Destination: "PUNE"}

	got := Merge(whole, perLine)
	expected := record.Record{VehicleNum: "MH12AB1234", Weight: "25", SONo: "0123456789", Destination: "PUNE"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %+v but got %+v", expected, got)
	}
}

func TestMergeNeverOverridesWholeMessage(t *testing.T) {
	inputs := []string{
		"MH12AB1234\nPUNE 25 MT\n9876543210\n0123456789",
		"25 MT\nSATARA 30 MT",
		"GJ5X123 RAJKOT 12 mt 9876543210",
		"",
		"nothing useful here",
	}

	for _, text := range inputs {
		whole := WholeMessage(text)
		merged := Extract(text)
		for _, f := range []string{"vehicle_num", "destination", "weight", "so_no", "phone_num"} {
			if w := whole.Get(f); w != "" && merged.Get(f) != w {
				t.Errorf("%q: expected %s %q from whole-message but got %q", text, f, w, merged.Get(f))
			}
		}
	}
}

func TestProductLine(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"skips claimed lines", "MH12AB1234\nPUNE 25 MT\n9876543210\nC-9-24-24", "C-9-24-24"},
		{"skips lines without digits", "MH12AB1234\nCROPTEK\n11:30:14", "11:30:14"},
		{"none left", "MH12AB1234\nPUNE 25 MT", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProductLine(tt.text); got != tt.expected {
				t.Errorf("expected %q but got %q", tt.expected, got)
			}
		})
	}
}

func TestClassifyProductNoMatch(t *testing.T) {
	if got := ClassifyProduct("MH12AB1234\nBAGS 777"); got != "" {
		t.Errorf("expected no product but got %q", got)
	}
}
