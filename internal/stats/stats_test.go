package stats

import (
	"testing"

	"github.com/0x6d61/scandash/internal/scan"
)

func rec(score int, phishing bool) *scan.Scan {
	s := &scan.Scan{ID: "x", SecurityScore: score}
	s.Normalize()
	if phishing {
		s.Phishing = &scan.PhishingAnalysis{Detected: true, RiskLevel: scan.PhishingHigh}
	}
	return s
}

func TestCompute_Empty(t *testing.T) {
	got := Compute(nil)
	if got != (Dashboard{}) {
		t.Errorf("Compute(nil) = %+v, want zero value", got)
	}
	if got.AverageScore != 0 {
		t.Errorf("AverageScore = %d, want 0", got.AverageScore)
	}
}

func TestCompute_AverageRoundsDown(t *testing.T) {
	got := Compute([]*scan.Scan{rec(90, false), rec(40, false), rec(70, false)})
	if got.AverageScore != 66 {
		t.Errorf("AverageScore = %d, want 66", got.AverageScore)
	}
	if got.TotalScans != 3 {
		t.Errorf("TotalScans = %d, want 3", got.TotalScans)
	}
}

func TestCompute_Counts(t *testing.T) {
	scans := []*scan.Scan{
		rec(18, true),  // critical, phishing
		rec(38, false), // critical
		rec(58, true),  // high, phishing
		rec(71, false), // medium
		rec(92, false), // low
		nil,
	}
	got := Compute(scans)
	want := Dashboard{
		TotalScans:       5,
		PhishingDetected: 2,
		CriticalRisks:    2,
		AverageScore:     (18 + 38 + 58 + 71 + 92) / 5,
	}
	if got != want {
		t.Errorf("Compute = %+v, want %+v", got, want)
	}
}

func TestCompute_PhishingNotDetected(t *testing.T) {
	s := rec(80, false)
	s.Phishing = &scan.PhishingAnalysis{Detected: false, RiskLevel: scan.PhishingLow}
	if got := Compute([]*scan.Scan{s}); got.PhishingDetected != 0 {
		t.Errorf("PhishingDetected = %d, want 0", got.PhishingDetected)
	}
}

func TestByRisk(t *testing.T) {
	got := ByRisk([]*scan.Scan{rec(10, false), rec(20, false), rec(60, false), rec(99, false)})
	want := map[scan.Risk]int{
		scan.RiskCritical: 2,
		scan.RiskHigh:     1,
		scan.RiskMedium:   0,
		scan.RiskLow:      1,
	}
	for risk, n := range want {
		if got[risk] != n {
			t.Errorf("ByRisk[%s] = %d, want %d", risk, got[risk], n)
		}
	}
}
