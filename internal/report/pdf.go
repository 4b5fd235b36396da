package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/0x6d61/scandash/internal/scan"
)

const (
	pdfMarginX   = 15.0
	pdfTextWidth = 180.0
	pdfLabelW    = 40.0
	pdfPageBreak = 260.0
)

// PDFReporter renders the detail view as an A4 PDF document.
type PDFReporter struct{}

// Format returns "pdf".
func (r *PDFReporter) Format() string {
	return "pdf"
}

// ContentType returns the PDF MIME type.
func (r *PDFReporter) ContentType() string {
	return "application/pdf"
}

// pdfDoc wraps gofpdf with the few layout helpers the report needs.
type pdfDoc struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func (d *pdfDoc) heading(text string) {
	if d.pdf.GetY() > pdfPageBreak {
		d.pdf.AddPage()
	}
	d.pdf.Ln(4)
	d.pdf.SetFont("Arial", "B", 12)
	d.pdf.SetX(pdfMarginX)
	d.pdf.Cell(pdfTextWidth, 10, d.tr(text))
	d.pdf.Ln(8)
}

func (d *pdfDoc) field(label, value string) {
	if d.pdf.GetY() > pdfPageBreak {
		d.pdf.AddPage()
	}
	d.pdf.SetFont("Arial", "B", 10)
	d.pdf.SetX(pdfMarginX)
	d.pdf.Cell(pdfLabelW, 8, d.tr(label))
	d.pdf.SetFont("Arial", "", 10)
	d.pdf.Cell(pdfTextWidth-pdfLabelW, 8, d.tr(value))
	d.pdf.Ln(6)
}

func (d *pdfDoc) para(text string) {
	d.pdf.SetFont("Arial", "", 10)
	d.pdf.SetX(pdfMarginX)
	d.pdf.MultiCell(pdfTextWidth, 6, d.tr(text), "", "", false)
}

// Generate writes the record's detail view as PDF to w.
func (r *PDFReporter) Generate(ctx context.Context, rec *scan.Scan, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Security Scan Report: "+rec.Domain, true)
	pdf.SetCreator("scandash", true)
	pdf.AddPage()
	d := &pdfDoc{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	pdf.SetFont("Arial", "B", 16)
	pdf.SetX(pdfMarginX)
	pdf.Cell(pdfTextWidth, 10, d.tr("Security Scan Report"))
	pdf.Ln(12)

	d.heading("Scan Information:")
	d.field("Domain:", rec.Domain)
	d.field("URL:", rec.URL)
	d.field("Score:", fmt.Sprintf("%d/100 (%s)", rec.SecurityScore, Label(scan.ScoreBand(rec.SecurityScore))))
	d.field("Risk:", Label(rec.Risk))
	d.field("Status:", Label(rec.Status))
	d.field("Scanned:", rec.Timestamp)

	if rec.AISummary != "" {
		d.heading("AI Summary:")
		d.para(rec.AISummary)
	}

	d.heading(fmt.Sprintf("Vulnerabilities (%d):", len(rec.Vulnerabilities)))
	if len(rec.Vulnerabilities) == 0 {
		d.para("No vulnerabilities found.")
	}
	for i, v := range rec.Vulnerabilities {
		pdf.SetFont("Arial", "B", 10)
		pdf.SetX(pdfMarginX)
		pdf.Cell(pdfTextWidth, 8, d.tr(fmt.Sprintf("%d. [%s] %s", i+1, Label(v.Severity), v.Name)))
		pdf.Ln(6)
		if v.Description != "" {
			d.para(v.Description)
		}
		if v.Affected != "" {
			d.field("Affected:", v.Affected)
		}
	}

	if len(rec.Ports) > 0 {
		d.heading(fmt.Sprintf("Ports (%d):", len(rec.Ports)))
		for _, p := range rec.Ports {
			d.field(fmt.Sprintf("%d/%s", p.Number, p.Service),
				fmt.Sprintf("%s, %s risk", p.State, strings.ToLower(Label(p.Risk))))
		}
	}

	if len(rec.Pages) > 0 {
		d.heading(fmt.Sprintf("Pages (%d):", len(rec.Pages)))
		d.para(strings.Join(rec.Pages, "\n"))
	}

	if ph := rec.Phishing; ph != nil {
		d.heading("Phishing Analysis:")
		d.field("Detected:", fmt.Sprintf("%s (%s)", yesNo(ph.Detected), Label(ph.RiskLevel)))
		if len(ph.Indicators) > 0 {
			d.field("Indicators:", strings.Join(ph.Indicators, ", "))
		}
		if ph.Description != "" {
			d.para(ph.Description)
		}
	}

	if tech := rec.Technology; tech != nil {
		d.heading("Technology Stack:")
		d.field("Server:", orDash(tech.Server))
		if tech.CMS != "" {
			d.field("CMS:", tech.CMS)
		}
		if tech.Language != "" {
			d.field("Language:", tech.Language)
		}
		d.field("Frameworks:", orDash(strings.Join(tech.Frameworks, ", ")))
		d.field("Libraries:", orDash(strings.Join(tech.Libraries, ", ")))
	}

	if ssl := rec.SSL; ssl != nil {
		d.heading("SSL Certificate:")
		d.field("Valid:", fmt.Sprintf("%s (grade %s)", yesNo(ssl.Valid), orDash(string(ssl.Grade))))
		d.field("Issuer:", orDash(ssl.Issuer))
		d.field("Expires:", orDash(ssl.ExpiryDate))
		d.field("Protocol:", orDash(ssl.Protocol))
		d.field("HTTPS enforced:", yesNo(ssl.HTTPSEnforced))
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("report: render pdf: %w", err)
	}
	return pdf.Output(w)
}
