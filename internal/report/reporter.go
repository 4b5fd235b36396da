// Package report renders the detail view of a scan record.
package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/0x6d61/scandash/internal/scan"
)

// Reporter generates output in a specific format.
type Reporter interface {
	// Format returns the format name (e.g., "text", "json", "pdf").
	Format() string

	// ContentType returns the MIME type of the generated document.
	ContentType() string

	// Generate writes the formatted record to w.
	Generate(ctx context.Context, rec *scan.Scan, w io.Writer) error
}

// New creates a reporter by format name ("text", "json" or "pdf").
// The format name is case-insensitive.
func New(format string) (Reporter, error) {
	switch strings.ToLower(format) {
	case "text":
		return &TextReporter{}, nil
	case "json":
		return &JSONReporter{}, nil
	case "pdf":
		return &PDFReporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported report format: %q", format)
	}
}

// Filename returns the download name for rec in the given format.
func Filename(rec *scan.Scan, r Reporter) string {
	ext := r.Format()
	if ext == "text" {
		ext = "txt"
	}
	return fmt.Sprintf("scan-%s.%s", rec.ID, ext)
}

// Label title-cases an enum value for display ("critical" -> "Critical").
func Label[T ~string](v T) string {
	if v == "" {
		return "-"
	}
	return cases.Title(language.English).String(string(v))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// severityCounts counts vulnerabilities per severity. Every severity is
// present in the result.
func severityCounts(vulns []scan.Vulnerability) map[scan.Severity]int {
	out := map[scan.Severity]int{
		scan.SeverityCritical: 0,
		scan.SeverityHigh:     0,
		scan.SeverityMedium:   0,
		scan.SeverityLow:      0,
	}
	for _, v := range vulns {
		out[v.Severity]++
	}
	return out
}

func openPorts(ports []scan.Port) int {
	n := 0
	for _, p := range ports {
		if p.State == scan.PortOpen {
			n++
		}
	}
	return n
}
