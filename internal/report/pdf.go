package report

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

const qrImageName = "sha256-qr"

// SavePDF renders the tag sheet into a PDF document.
func SavePDF(sheet TagSheet, out string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Tag Sheet", false)
	pdf.SetAuthor("mp3tag", false)
	pdf.SetCreator("mp3tag", false)
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	addPDFTitle(pdf, "Tag Sheet")
	if err := addFileSection(pdf, tr, sheet); err != nil {
		return err
	}
	addFramesSection(pdf, tr, sheet.Frames)

	if pdf.Err() {
		return pdf.Error()
	}
	return pdf.OutputFileAndClose(out)
}

func addPDFTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)
}

func addFileSection(pdf *gofpdf.Fpdf, tr func(string) string, sheet TagSheet) error {
	top := pdf.GetY()
	if sheet.Sha256 != "" {
		png, err := SheetQR(sheet, 256)
		if err != nil {
			return err
		}
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(qrImageName, opts, bytes.NewReader(png))
		pageW, _ := pdf.GetPageSize()
		_, _, right, _ := pdf.GetMargins()
		pdf.ImageOptions(qrImageName, pageW-right-30, top, 30, 30, false, opts, 0, "")
	}

	pdf.SetFont("Helvetica", "", 11)
	items := []struct {
		label string
		value string
	}{
		{label: "File", value: filepath.Base(sheet.Path)},
		{label: "Size", value: strconv.FormatInt(sheet.FileSize, 10) + " bytes"},
		{label: "ID3 version", value: fmt.Sprintf("2.%d", sheet.Version)},
		{label: "Frames", value: strconv.Itoa(len(sheet.Frames))},
		{label: "Scan stopped", value: emptyFallback(sheet.Stop, "-")},
		{label: "Generated", value: sheet.GeneratedAt.Format(time.RFC3339)},
	}
	for _, item := range items {
		pdf.CellFormat(40, 6, item.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(100, 6, tr(item.value), "", 1, "L", false, 0, "")
	}
	pdf.SetFont("Courier", "", 8)
	pdf.CellFormat(0, 5, "SHA-256 "+emptyFallback(sheet.Sha256, "-"), "", 1, "L", false, 0, "")
	if y := top + 32; pdf.GetY() < y {
		pdf.SetY(y)
	}
	pdf.Ln(4)
	return nil
}

func addFramesSection(pdf *gofpdf.Fpdf, tr func(string) string, frames []FrameRow) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Frames")
	pdf.Ln(9)

	if len(frames) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, "No frames found.", "", "L", false)
		return
	}

	headers := []string{"ID", "Tag", "Value", "Size", "Offset"}
	widths := []float64{18, 26, 96, 20, 20}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range frames {
		values := []string{
			row.ID,
			emptyFallback(row.Label, "-"),
			tr(row.Value),
			strconv.Itoa(int(row.Size)),
			strconv.FormatInt(row.Offset, 10),
		}
		renderTableRow(pdf, widths, values, 5)
	}
}

func renderTableRow(pdf *gofpdf.Fpdf, widths []float64, values []string, lineHeight float64) {
	xStart := pdf.GetX()
	yStart := pdf.GetY()
	maxLines := 1
	splitCols := make([][]string, len(values))
	for i, val := range values {
		text := strings.TrimSpace(val)
		if text == "" {
			text = "-"
		}
		lines := pdf.SplitText(text, widths[i]-2)
		if len(lines) == 0 {
			lines = []string{""}
		}
		splitCols[i] = lines
		if len(lines) > maxLines {
			maxLines = len(lines)
		}
	}
	rowHeight := float64(maxLines) * lineHeight
	x := xStart
	for i, lines := range splitCols {
		pdf.SetXY(x, yStart)
		pdf.MultiCell(widths[i], lineHeight, strings.Join(lines, "\n"), "1", "L", false)
		x += widths[i]
	}
	pdf.SetXY(xStart, yStart+rowHeight)
}

func emptyFallback(val, fallback string) string {
	if strings.TrimSpace(val) == "" {
		return fallback
	}
	return val
}
