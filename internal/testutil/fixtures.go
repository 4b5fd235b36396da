package testutil

import (
	"time"

	"github.com/0x6d61/scandash/internal/scan"
)

// Epoch is the virtual start time used by tests.
var Epoch = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

// NewScan returns a minimal completed record with the given id and score.
func NewScan(id string, score int) *scan.Scan {
	s := &scan.Scan{
		ID:            id,
		Domain:        id + ".example.com",
		URL:           "https://" + id + ".example.com",
		SecurityScore: score,
		Status:        scan.StatusCompleted,
		Timestamp:     scan.FormatTimestamp(Epoch),
	}
	s.Normalize()
	return s
}

// DetailedScan returns a record with every report section filled in.
func DetailedScan(id string) *scan.Scan {
	s := NewScan(id, 42)
	s.AISummary = "Lookalike login page served over plain HTTP."
	s.Vulnerabilities = []scan.Vulnerability{
		{ID: "VULN-1", Name: "Credential form over HTTP", Severity: scan.SeverityCritical,
			Description: "Login form submits without TLS.", Affected: "/login"},
		{ID: "VULN-2", Name: "Outdated jQuery", Severity: scan.SeverityMedium,
			Description: "jQuery 1.8.3 has known XSS issues."},
	}
	s.Ports = []scan.Port{
		{Number: 80, Service: "http", State: scan.PortOpen, Risk: scan.RiskMedium},
		{Number: 21, Service: "ftp", State: scan.PortFiltered, Risk: scan.RiskHigh},
	}
	s.Pages = []string{"/", "/login"}
	s.Phishing = &scan.PhishingAnalysis{
		Detected:    true,
		RiskLevel:   scan.PhishingHigh,
		Indicators:  []string{"Lookalike domain", "Recently registered"},
		Description: "Impersonates a bank login page.",
	}
	s.Technology = &scan.TechnologyStack{
		Server:     "Apache/2.2.15",
		CMS:        "WordPress 4.9",
		Frameworks: []string{"Bootstrap"},
		Libraries:  []string{"jQuery 1.8.3"},
		Language:   "PHP",
	}
	s.SSL = &scan.SSLInfo{
		Valid:         false,
		Issuer:        "None",
		ExpiryDate:    "N/A",
		Protocol:      "None",
		HTTPSEnforced: false,
		Grade:         scan.GradeF,
	}
	return s
}
