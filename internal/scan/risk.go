package scan

import "time"

// Score cutoffs. A score strictly below a cutoff falls in the lower band.
// CriticalBelow and MediumBelow are the display band edges used by
// ScoreBand. HighBelow is a local policy choice: it splits the display's
// medium band so that RiskHigh is reachable from a score.
const (
	CriticalBelow = 50
	HighBelow     = 65
	MediumBelow   = 75
)

// RiskForScore is the canonical score to risk derivation. The registry
// applies it on every insert, so a stored record never carries a risk that
// disagrees with its score.
//
// Scores below 50 are critical and scores from 75 up are low, matching the
// display bands. The 50-74 band is split at HighBelow (65): 50-64 is high
// and 65-74 is medium. That split is policy, not part of the display
// contract; ScoreBand reports both halves as medium.
func RiskForScore(score int) Risk {
	switch {
	case score < CriticalBelow:
		return RiskCritical
	case score < HighBelow:
		return RiskHigh
	case score < MediumBelow:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Band is the three-level colour band used when a score is displayed.
type Band string

const (
	BandCritical Band = "critical"
	BandMedium   Band = "medium"
	BandLow      Band = "low"
)

// ScoreBand maps a score onto the display band. It uses the same 50/75
// cutoffs as RiskForScore and folds high into medium.
func ScoreBand(score int) Band {
	switch {
	case score < CriticalBelow:
		return BandCritical
	case score < MediumBelow:
		return BandMedium
	default:
		return BandLow
	}
}

// Normalize sets the derived fields of s: Risk from SecurityScore, and a
// missing status defaults to completed.
func (s *Scan) Normalize() {
	s.Risk = RiskForScore(s.SecurityScore)
	if s.Status == "" {
		s.Status = StatusCompleted
	}
}

// FormatTimestamp renders t the way scan timestamps are stored.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Time parses the record's timestamp. The zero time is returned when the
// timestamp is empty or malformed.
func (s *Scan) Time() time.Time {
	t, err := time.Parse(time.RFC3339, s.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}
