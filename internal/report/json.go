package report

import (
	"context"
	"encoding/json"
	"io"

	"github.com/0x6d61/scandash/internal/scan"
)

// JSONReporter outputs structured JSON.
type JSONReporter struct {
	// Compact outputs single-line JSON when true (no indentation).
	Compact bool
}

// Format returns "json".
func (r *JSONReporter) Format() string {
	return "json"
}

// ContentType returns the JSON MIME type.
func (r *JSONReporter) ContentType() string {
	return "application/json"
}

// jsonOutput is the top-level JSON structure.
type jsonOutput struct {
	SchemaVersion string      `json:"schema_version"`
	Tool          string      `json:"tool"`
	Band          scan.Band   `json:"band"`
	Scan          *scan.Scan  `json:"scan"`
	Summary       jsonSummary `json:"summary"`
}

// jsonSummary represents the summary in JSON.
type jsonSummary struct {
	TotalVulnerabilities int                   `json:"total_vulnerabilities"`
	BySeverity           map[scan.Severity]int `json:"by_severity"`
	OpenPorts            int                   `json:"open_ports"`
	PhishingDetected     bool                  `json:"phishing_detected"`
}

// Generate writes the record as JSON to w.
func (r *JSONReporter) Generate(ctx context.Context, rec *scan.Scan, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	counts := severityCounts(rec.Vulnerabilities)

	output := jsonOutput{
		SchemaVersion: "1.0",
		Tool:          "scandash",
		Band:          scan.ScoreBand(rec.SecurityScore),
		Scan:          rec,
		Summary: jsonSummary{
			TotalVulnerabilities: len(rec.Vulnerabilities),
			BySeverity:           counts,
			OpenPorts:            openPorts(rec.Ports),
			PhishingDetected:     rec.PhishingDetected(),
		},
	}

	enc := json.NewEncoder(w)
	if !r.Compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(output)
}
