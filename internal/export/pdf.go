package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/zulandar/qadesk/internal/metrics"
)

// PDFOptions controls rendering.
type PDFOptions struct {
	// FontPath is a TrueType font with CJK coverage. Without it the core
	// Helvetica font is used and non-Latin text does not render.
	FontPath string
}

const fontFamily = "qadesk"

// Render draws a laid-out document with fpdf.
func Render(doc *Document, opts PDFOptions) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(Margin, Margin, Margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("qadesk", true)
	pdf.SetTitle("测试报告", true)

	family := "Helvetica"
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if opts.FontPath != "" {
		pdf.AddUTF8Font(fontFamily, "", opts.FontPath)
		pdf.AddUTF8Font(fontFamily, "B", opts.FontPath)
		if pdf.Err() {
			return nil, fmt.Errorf("export: load font %s: %w", opts.FontPath, pdf.Error())
		}
		family = fontFamily
		tr = func(s string) string { return s }
	}

	for _, page := range doc.Pages {
		pdf.AddPage()
		for _, l := range page.Lines {
			style := ""
			if l.Bold {
				style = "B"
			}
			pdf.SetFont(family, style, l.Size)
			txt := tr(l.Text)
			x := l.X
			if l.Align == AlignCenter {
				x -= pdf.GetStringWidth(txt) / 2
			}
			pdf.Text(x, l.Y, txt)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("export: render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// ReportPDF lays out and renders a report, returning its download name.
func ReportPDF(data ReportData, opts PDFOptions) (string, []byte, error) {
	body, err := Render(Layout(data), opts)
	if err != nil {
		return "", nil, err
	}
	metrics.Export("pdf")
	return ReportFilename(data.Report.Name, data.GeneratedAt), body, nil
}

// ReportFilename is "<report name>_<YYYY-MM-DD>.pdf".
func ReportFilename(name string, at time.Time) string {
	return safeName(name) + "_" + at.Format("2006-01-02") + ".pdf"
}

// safeName strips path separators so a name can be used as a filename.
func safeName(s string) string {
	return strings.NewReplacer("/", "-", `\`, "-").Replace(strings.TrimSpace(s))
}
