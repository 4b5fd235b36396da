package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/0x6d61/scandash/internal/scan"
)

const (
	doubleLine = "\u2550" // ═
	singleLine = "\u2500" // ─
	lineWidth  = 50
)

// TextReporter outputs plain terminal text.
type TextReporter struct{}

// Format returns "text".
func (r *TextReporter) Format() string {
	return "text"
}

// ContentType returns the plain text MIME type.
func (r *TextReporter) ContentType() string {
	return "text/plain; charset=utf-8"
}

// Generate writes the record's detail view to w.
func (r *TextReporter) Generate(ctx context.Context, rec *scan.Scan, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b := &strings.Builder{}

	doubleBar := strings.Repeat(doubleLine, lineWidth)
	singleBar := strings.Repeat(singleLine, lineWidth)

	fmt.Fprintln(b, doubleBar)
	fmt.Fprintln(b, "scandash - Security Scan Report")
	fmt.Fprintln(b, doubleBar)

	fmt.Fprintf(b, "Domain:  %s\n", rec.Domain)
	fmt.Fprintf(b, "URL:     %s\n", rec.URL)
	fmt.Fprintf(b, "Score:   %d/100 (%s)\n", rec.SecurityScore, Label(scan.ScoreBand(rec.SecurityScore)))
	fmt.Fprintf(b, "Risk:    %s\n", Label(rec.Risk))
	fmt.Fprintf(b, "Status:  %s\n", Label(rec.Status))
	fmt.Fprintf(b, "Scanned: %s\n", rec.Timestamp)

	if rec.AISummary != "" {
		fmt.Fprintln(b, singleBar)
		fmt.Fprintln(b, "AI Summary:")
		fmt.Fprintf(b, "  %s\n", rec.AISummary)
	}

	fmt.Fprintln(b, singleBar)
	if len(rec.Vulnerabilities) == 0 {
		fmt.Fprintln(b, "No vulnerabilities found.")
	} else {
		fmt.Fprintf(b, "Vulnerabilities (%d):\n", len(rec.Vulnerabilities))
		for _, v := range rec.Vulnerabilities {
			fmt.Fprintf(b, "  [%s] %s (%s)\n", Label(v.Severity), v.Name, v.ID)
			if v.Description != "" {
				fmt.Fprintf(b, "    %s\n", v.Description)
			}
			if v.Affected != "" {
				fmt.Fprintf(b, "    Affected: %s\n", v.Affected)
			}
		}
	}

	if len(rec.Ports) > 0 {
		fmt.Fprintln(b, singleBar)
		fmt.Fprintf(b, "Ports (%d):\n", len(rec.Ports))
		for _, p := range rec.Ports {
			fmt.Fprintf(b, "  %-12s %-9s %s\n",
				fmt.Sprintf("%d/%s", p.Number, p.Service), p.State, Label(p.Risk))
		}
	}

	if len(rec.Pages) > 0 {
		fmt.Fprintln(b, singleBar)
		fmt.Fprintf(b, "Pages (%d):\n", len(rec.Pages))
		for _, p := range rec.Pages {
			fmt.Fprintf(b, "  %s\n", p)
		}
	}

	if ph := rec.Phishing; ph != nil {
		fmt.Fprintln(b, singleBar)
		fmt.Fprintln(b, "Phishing:")
		fmt.Fprintf(b, "  Detected:   %s (%s)\n", yesNo(ph.Detected), Label(ph.RiskLevel))
		if len(ph.Indicators) > 0 {
			fmt.Fprintf(b, "  Indicators: %s\n", strings.Join(ph.Indicators, ", "))
		}
		if ph.Description != "" {
			fmt.Fprintf(b, "  %s\n", ph.Description)
		}
	}

	if tech := rec.Technology; tech != nil {
		fmt.Fprintln(b, singleBar)
		fmt.Fprintln(b, "Technology:")
		fmt.Fprintf(b, "  Server:     %s\n", orDash(tech.Server))
		if tech.CMS != "" {
			fmt.Fprintf(b, "  CMS:        %s\n", tech.CMS)
		}
		if tech.Language != "" {
			fmt.Fprintf(b, "  Language:   %s\n", tech.Language)
		}
		fmt.Fprintf(b, "  Frameworks: %s\n", orDash(strings.Join(tech.Frameworks, ", ")))
		fmt.Fprintf(b, "  Libraries:  %s\n", orDash(strings.Join(tech.Libraries, ", ")))
	}

	if ssl := rec.SSL; ssl != nil {
		fmt.Fprintln(b, singleBar)
		fmt.Fprintln(b, "SSL:")
		fmt.Fprintf(b, "  Valid:    %s (grade %s)\n", yesNo(ssl.Valid), orDash(string(ssl.Grade)))
		fmt.Fprintf(b, "  Issuer:   %s\n", orDash(ssl.Issuer))
		fmt.Fprintf(b, "  Expires:  %s\n", orDash(ssl.ExpiryDate))
		fmt.Fprintf(b, "  Protocol: %s\n", orDash(ssl.Protocol))
		fmt.Fprintf(b, "  HTTPS enforced: %s\n", yesNo(ssl.HTTPSEnforced))
	}

	fmt.Fprintln(b, doubleBar)
	counts := severityCounts(rec.Vulnerabilities)
	fmt.Fprintf(b, "Summary: %d vulnerabilities (%d critical), %d open port(s), phishing %s\n",
		len(rec.Vulnerabilities), counts[scan.SeverityCritical], openPorts(rec.Ports),
		yesNo(rec.PhishingDetected()))
	fmt.Fprintln(b, doubleBar)

	_, err := io.WriteString(w, b.String())
	return err
}
