// Package summary renders the receipt card sent after a successful dispatch.
package summary

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/fogleman/gg"

	"loadbot/internal/record"
)

// Receipt holds what the card shows about one dispatched request.
type Receipt struct {
	Seq          int
	ChatID       string
	Record       record.Record
	ActualWeight string
	Reply        string
	DispatchedAt time.Time
}

// Card styling constants, rendered at 2x scale for chat clarity
const (
	cardWidth     = 900.0
	cardMargin    = 40.0
	cellPaddingX  = 20.0
	cellPaddingY  = 16.0
	minRowHeight  = 64.0
	labelWidth    = 280.0
	fontSize      = 26
	titleFontSz   = 38
	titlePadding  = 130.0
	footerPadding = 90.0
)

// Light theme colors
var (
	bgColor       = color.RGBA{R: 245, G: 247, B: 250, A: 255} // Light gray bg
	titleColor    = color.RGBA{R: 30, G: 41, B: 59, A: 255}    // Dark slate
	labelBgColor  = color.RGBA{R: 37, G: 99, B: 235, A: 255}   // Blue
	labelTxtColor = color.RGBA{R: 255, G: 255, B: 255, A: 255} // White
	rowEvenColor  = color.RGBA{R: 255, G: 255, B: 255, A: 255} // White
	rowOddColor   = color.RGBA{R: 241, G: 245, B: 249, A: 255} // Subtle blue-gray
	textColor     = color.RGBA{R: 30, G: 41, B: 59, A: 255}    // Dark slate
	borderColor   = color.RGBA{R: 203, G: 213, B: 225, A: 255} // Slate border
	footerColor   = color.RGBA{R: 100, G: 116, B: 139, A: 255} // Muted slate
)

// row is one label/value line of the card.
type row struct {
	label string
	value string
}

// Rows lists the card lines in display order. Empty values show as "-".
func (r Receipt) Rows() []row {
	rec := r.Record
	weight := func(w string) string {
		if w == "" {
			return ""
		}
		return w + " MT"
	}
	rows := []row{
		{record.Label("vehicle_num"), rec.VehicleNum},
		{record.Label("driver_name"), rec.DriverName},
		{record.Label("driver_license"), rec.DriverLicense},
		{record.Label("phone_num"), rec.PhoneNum},
		{record.Label("so_no"), rec.SONo},
		{"Destination", rec.Destination},
		{"Product", rec.ProductType},
		{"Requested", weight(rec.Weight)},
		{"Loaded", weight(r.ActualWeight)},
	}
	for i := range rows {
		if strings.TrimSpace(rows[i].value) == "" {
			rows[i].value = "-"
		}
	}
	return rows
}

// findFont locates a font file across Linux and Windows paths.
func findFont(bold bool) string {
	var candidates []string
	if runtime.GOOS == "windows" {
		winRoot := os.Getenv("WINDIR")
		if winRoot == "" {
			winRoot = `C:\Windows`
		}
		if bold {
			candidates = []string{winRoot + `\Fonts\arialbd.ttf`, winRoot + `\Fonts\Arial Bold.ttf`}
		} else {
			candidates = []string{winRoot + `\Fonts\arial.ttf`, winRoot + `\Fonts\Arial.ttf`}
		}
	} else {
		if bold {
			candidates = []string{
				"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
				"/usr/share/fonts/TTF/DejaVuSans-Bold.ttf",
			}
		} else {
			candidates = []string{
				"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
				"/usr/share/fonts/TTF/DejaVuSans.ttf",
			}
		}
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return candidates[0]
}

// wrapText splits text into multiple lines to fit within maxWidth.
func wrapText(dc *gg.Context, text string, maxWidth float64) []string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))

	if maxWidth <= 0 {
		return []string{text}
	}
	if w, _ := dc.MeasureString(text); w <= maxWidth {
		return []string{text}
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if tw, _ := dc.MeasureString(candidate); tw > maxWidth {
			lines = append(lines, current)
			current = word
		} else {
			current = candidate
		}
	}
	return append(lines, current)
}

// layout computes the wrapped value lines and height of every row.
func layout(dc *gg.Context, rows []row, valueWidth float64) ([][]string, []float64) {
	_, lineH := dc.MeasureString("Ay")
	lineSpacing := lineH + 4

	wrapped := make([][]string, len(rows))
	heights := make([]float64, len(rows))
	for i, r := range rows {
		wrapped[i] = wrapText(dc, r.value, valueWidth-cellPaddingX*2)
		h := float64(len(wrapped[i]))*lineSpacing + cellPaddingY*2
		if h < minRowHeight {
			h = minRowHeight
		}
		heights[i] = h
	}
	return wrapped, heights
}

// Render draws the receipt card and returns PNG bytes.
func Render(r Receipt) ([]byte, error) {
	boldFont := findFont(true)
	regularFont := findFont(false)

	rows := r.Rows()
	tableWidth := cardWidth - cardMargin*2
	valueWidth := tableWidth - labelWidth

	// ---- Step 1: Measure ----
	tmpDC := gg.NewContext(1, 1)
	if err := tmpDC.LoadFontFace(regularFont, fontSize); err != nil {
		return nil, fmt.Errorf("failed to load regular font: %w", err)
	}
	wrapped, heights := layout(tmpDC, rows, valueWidth)

	var tableHeight float64
	for _, h := range heights {
		tableHeight += h
	}
	canvasHeight := titlePadding + tableHeight + footerPadding

	// ---- Step 2: Draw ----
	dc := gg.NewContext(int(cardWidth), int(canvasHeight))
	dc.SetColor(bgColor)
	dc.Clear()

	if err := dc.LoadFontFace(boldFont, titleFontSz); err != nil {
		return nil, fmt.Errorf("failed to load bold font: %w", err)
	}
	dc.SetColor(titleColor)
	dc.DrawStringAnchored(fmt.Sprintf("Loading Request #%d", r.Seq), cardWidth/2, titlePadding/2-14, 0.5, 0.5)

	dc.LoadFontFace(regularFont, 22)
	dc.SetColor(footerColor)
	dc.DrawStringAnchored(r.DispatchedAt.Format("02 Jan 2006, 03:04 PM"), cardWidth/2, titlePadding/2+28, 0.5, 0.5)

	_, lineH := tmpDC.MeasureString("Ay")
	lineSpacing := lineH + 4
	curY := titlePadding

	for i, rw := range rows {
		h := heights[i]

		// label cell
		dc.SetColor(labelBgColor)
		dc.DrawRectangle(cardMargin, curY, labelWidth, h)
		dc.Fill()
		dc.LoadFontFace(boldFont, fontSize)
		dc.SetColor(labelTxtColor)
		dc.DrawStringAnchored(rw.label, cardMargin+cellPaddingX, curY+h/2, 0, 0.5)

		// value cell
		if i%2 == 0 {
			dc.SetColor(rowEvenColor)
		} else {
			dc.SetColor(rowOddColor)
		}
		dc.DrawRectangle(cardMargin+labelWidth, curY, valueWidth, h)
		dc.Fill()

		dc.LoadFontFace(regularFont, fontSize)
		dc.SetColor(textColor)
		startY := curY + (h-float64(len(wrapped[i]))*lineSpacing)/2 + lineH
		for j, line := range wrapped[i] {
			dc.DrawString(line, cardMargin+labelWidth+cellPaddingX, startY+float64(j)*lineSpacing)
		}

		dc.SetColor(borderColor)
		dc.SetLineWidth(0.5)
		dc.DrawLine(cardMargin, curY+h, cardMargin+tableWidth, curY+h)
		dc.Stroke()

		curY += h
	}

	dc.SetColor(borderColor)
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(cardMargin, titlePadding, tableWidth, tableHeight, 12)
	dc.Stroke()

	dc.LoadFontFace(boldFont, 28)
	dc.SetColor(titleColor)
	dc.DrawStringAnchored(r.Reply, cardWidth/2, canvasHeight-footerPadding/2, 0.5, 0.5)

	// ---- Step 3: Encode to PNG ----
	return encodeImage(dc.Image())
}

func encodeImage(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
