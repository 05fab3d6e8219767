// Package report renders risk assessments as PDF documents.
// Clean Architecture: Adapter implementing ports.ReportRenderer.
package report

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/signintech/gopdf"

	"github.com/curehelp/curehelp-go/internal/domain/entities"
)

const (
	fontFamily = "DejaVu"
	brandName  = "CureHelp+"
	disclaimer = "Disclaimer: This report is for informational purposes only. Always consult a doctor."

	pageWidth = 595.28
	margin    = 50.0
	rowHeight = 20.0
)

// DefaultFontPaths are tried in order when no font path is configured.
var DefaultFontPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
	"/Library/Fonts/DejaVuSans.ttf",
}

type rgb struct{ r, g, b uint8 }

var (
	colorHeader = rgb{0x0d, 0x47, 0xa1}
	colorAccent = rgb{0x19, 0x76, 0xd2}
	colorText   = rgb{0x33, 0x33, 0x33}
	colorMuted  = rgb{0x88, 0x88, 0x88}
	colorTrack  = rgb{0xe0, 0xe0, 0xe0}
	colorStripe = rgb{0xf7, 0xf9, 0xfc}

	bandColors = map[entities.RiskBand]rgb{
		entities.RiskLow:    {0x4c, 0xaf, 0x50},
		entities.RiskMedium: {0xff, 0x98, 0x00},
		entities.RiskHigh:   {0xd3, 0x2f, 0x2f},
	}
)

// PDFRenderer implements ports.ReportRenderer with gopdf, one A4 page per assessment.
type PDFRenderer struct {
	fontPaths []string
	now       func() time.Time
}

// NewPDFRenderer creates a renderer. An empty fontPath falls back to DefaultFontPaths.
func NewPDFRenderer(fontPath string) *PDFRenderer {
	paths := DefaultFontPaths
	if fontPath != "" {
		paths = []string{fontPath}
	}
	return &PDFRenderer{fontPaths: paths, now: time.Now}
}

// FontPaths lists the font files the renderer will try.
func (r *PDFRenderer) FontPaths() []string { return r.fontPaths }

// FindFont returns the first readable path.
func FindFont(paths []string) (string, bool) {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

// Render implements ports.ReportRenderer.
func (r *PDFRenderer) Render(ctx context.Context, assessments []entities.RiskAssessment) ([]byte, error) {
	if len(assessments) == 0 {
		return nil, entities.ErrNoPredictions
	}

	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	if err := r.loadFont(pdf); err != nil {
		return nil, err
	}

	generated := r.now().Format("2006-01-02 15:04")
	for _, a := range assessments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pdf.AddPage()
		if err := renderPage(pdf, a, generated); err != nil {
			return nil, fmt.Errorf("rendering %s page: %w", a.Condition, err)
		}
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("writing PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *PDFRenderer) loadFont(pdf *gopdf.GoPdf) error {
	var lastErr error
	for _, path := range r.fontPaths {
		if err := pdf.AddTTFFont(fontFamily, path); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}
	return fmt.Errorf("loading PDF font (install ttf-dejavu or set PDF_FONT_PATH): %w", lastErr)
}

func renderPage(pdf *gopdf.GoPdf, a entities.RiskAssessment, generated string) error {
	contentWidth := pageWidth - 2*margin

	// Header
	if err := centered(pdf, brandName, 22, colorHeader, 50, contentWidth); err != nil {
		return err
	}
	if err := centered(pdf, disclaimer, 9, colorMuted, 80, contentWidth); err != nil {
		return err
	}
	if err := centered(pdf, pageTitle(a), 18, colorAccent, 115, contentWidth); err != nil {
		return err
	}

	// Risk bar
	band := bandColors[a.Band]
	barY := 160.0
	setFill(pdf, colorTrack)
	pdf.RectFromUpperLeftWithStyle(margin, barY, contentWidth, 14, "F")
	setFill(pdf, band)
	if w := contentWidth * a.Risk / 100; w > 0 {
		pdf.RectFromUpperLeftWithStyle(margin, barY, w, 14, "F")
	}
	label := fmt.Sprintf("%.1f%% (%s risk)", a.Risk, a.Band)
	if err := centered(pdf, label, 16, band, barY+24, contentWidth); err != nil {
		return err
	}

	// Inputs table
	y := 230.0
	colWidth := contentWidth / 2
	if err := pdf.SetFont(fontFamily, "", 10); err != nil {
		return err
	}
	setFill(pdf, colorHeader)
	pdf.RectFromUpperLeftWithStyle(margin, y, contentWidth, rowHeight, "F")
	setText(pdf, rgb{0xff, 0xff, 0xff})
	if err := tableRow(pdf, y, colWidth, "Parameter", "Value"); err != nil {
		return err
	}

	setText(pdf, colorText)
	for i, in := range a.Inputs {
		y += rowHeight
		if i%2 == 1 {
			setFill(pdf, colorStripe)
			pdf.RectFromUpperLeftWithStyle(margin, y, contentWidth, rowHeight, "F")
		}
		if err := tableRow(pdf, y, colWidth, in.Name, formatValue(in.Value)); err != nil {
			return err
		}
	}
	if len(a.Inputs) == 0 {
		y += rowHeight
		if err := tableRow(pdf, y, colWidth, "No inputs recorded", ""); err != nil {
			return err
		}
	}

	// Footer
	return centered(pdf, "Generated: "+generated, 7, colorMuted, 800, contentWidth)
}

func centered(pdf *gopdf.GoPdf, text string, size float64, c rgb, y, width float64) error {
	if err := pdf.SetFont(fontFamily, "", size); err != nil {
		return err
	}
	setText(pdf, c)
	pdf.SetXY(margin, y)
	return pdf.CellWithOption(&gopdf.Rect{W: width, H: size + 4}, text, gopdf.CellOption{Align: gopdf.Center | gopdf.Middle})
}

func tableRow(pdf *gopdf.GoPdf, y, colWidth float64, left, right string) error {
	opt := gopdf.CellOption{Align: gopdf.Left | gopdf.Middle}
	pdf.SetXY(margin+6, y)
	if err := pdf.CellWithOption(&gopdf.Rect{W: colWidth - 6, H: rowHeight}, left, opt); err != nil {
		return err
	}
	pdf.SetXY(margin+colWidth+6, y)
	return pdf.CellWithOption(&gopdf.Rect{W: colWidth - 6, H: rowHeight}, right, opt)
}

func setText(pdf *gopdf.GoPdf, c rgb) { pdf.SetTextColor(c.r, c.g, c.b) }
func setFill(pdf *gopdf.GoPdf, c rgb) { pdf.SetFillColor(c.r, c.g, c.b) }

// pageTitle reads "<Condition> Risk", followed by the model's label when there is one.
func pageTitle(a entities.RiskAssessment) string {
	title := conditionTitle(a.Condition) + " Risk"
	if a.Label != "" {
		title += " (" + a.Label + ")"
	}
	return title
}

func conditionTitle(c entities.Condition) string {
	s := string(c)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
