// Package stats derives dashboard statistics from a registry snapshot.
package stats

import "github.com/0x6d61/scandash/internal/scan"

// Dashboard is the aggregate shown in the sidebar and overview cards. It is
// always recomputed from the current records and never stored.
type Dashboard struct {
	TotalScans       int `json:"totalScans"`
	PhishingDetected int `json:"phishingDetected"`
	CriticalRisks    int `json:"criticalRisks"`
	AverageScore     int `json:"averageScore"`
}

// Compute aggregates scans. AverageScore is the mean score rounded down
// (integer division) and is 0 for an empty slice.
func Compute(scans []*scan.Scan) Dashboard {
	var d Dashboard
	total := 0
	for _, s := range scans {
		if s == nil {
			continue
		}
		d.TotalScans++
		total += s.SecurityScore
		if s.PhishingDetected() {
			d.PhishingDetected++
		}
		if s.Risk == scan.RiskCritical {
			d.CriticalRisks++
		}
	}
	if d.TotalScans > 0 {
		d.AverageScore = total / d.TotalScans
	}
	return d
}

// ByRisk counts records per risk category. Every category is present in the
// result, with zero when unused.
func ByRisk(scans []*scan.Scan) map[scan.Risk]int {
	out := map[scan.Risk]int{
		scan.RiskCritical: 0,
		scan.RiskHigh:     0,
		scan.RiskMedium:   0,
		scan.RiskLow:      0,
	}
	for _, s := range scans {
		if s == nil || !s.Risk.Valid() {
			continue
		}
		out[s.Risk]++
	}
	return out
}
