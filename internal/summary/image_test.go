package summary

import (
	"bytes"
	"image/png"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fogleman/gg"

	"loadbot/internal/record"
)

func sampleReceipt() Receipt {
	return Receipt{
		Seq:    3,
		ChatID: "-1001",
		Record: record.Record{
			VehicleNum:    "MH12AB1234",
			Destination:   "PUNE",
			Weight:        "25",
			SONo:          "1234567890",
			PhoneNum:      "9876543210",
			DriverLicense: "4521",
			DriverName:    "RAM KUMAR",
		},
		ActualWeight: "24",
		Reply:        "AP done for 24 MT to load 25 MT",
		DispatchedAt: time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC),
	}
}

func TestRows(t *testing.T) {
	rows := sampleReceipt().Rows()

	values := make(map[string]string)
	for _, r := range rows {
		values[r.label] = r.value
	}

	tests := []struct {
		label    string
		expected string
	}{
		{"Vehicle Number", "MH12AB1234"},
		{"Driver Name", "RAM KUMAR"},
		{"Requested", "25 MT"},
		{"Loaded", "24 MT"},
		{"Product", "-"},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := values[tt.label]; got != tt.expected {
				t.Errorf("expected %q but got %q", tt.expected, got)
			}
		})
	}
}

func TestWrapText(t *testing.T) {
	dc := gg.NewContext(1, 1)

	text := "N 50 KG MAHADHAN SMARTEK NPKS 20:20:0:13"
	w, _ := dc.MeasureString(text)

	if lines := wrapText(dc, text, w+1); len(lines) != 1 {
		t.Errorf("expected single line when it fits, got %v", lines)
	}

	lines := wrapText(dc, text, w/2)
	if len(lines) < 2 {
		t.Fatalf("expected wrapping, got %v", lines)
	}
	if strings.Join(lines, " ") != text {
		t.Errorf("expected wrapped lines to rejoin to %q but got %q", text, strings.Join(lines, " "))
	}
}

func TestRender(t *testing.T) {
	for _, bold := range []bool{false, true} {
		if _, err := os.Stat(findFont(bold)); err != nil {
			t.Skip("no system font available")
		}
	}

	data, err := Render(sampleReceipt())
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("expected valid PNG but got: %v", err)
	}
	if img.Bounds().Dx() != int(cardWidth) {
		t.Errorf("expected width %d but got %d", int(cardWidth), img.Bounds().Dx())
	}
}
