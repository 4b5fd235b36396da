package dashboard

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"

	"github.com/0x6d61/scandash/internal/scan"
	"github.com/0x6d61/scandash/internal/simulator"
)

// RecordBuilder turns a finished simulation into a registry record.
type RecordBuilder interface {
	Build(res simulator.Result) (*scan.Scan, error)
}

// SyntheticBuilder builds a placeholder record for a simulated scan. The
// score is a stable hash of the URL so the same target always lands in the
// same band. No findings are attached.
type SyntheticBuilder struct {
	// NewID generates record ids. Defaults to a random UUID.
	NewID func() string
}

// Build implements RecordBuilder.
func (b SyntheticBuilder) Build(res simulator.Result) (*scan.Scan, error) {
	target := NormalizeURL(res.Target)
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("dashboard: build record for %q: %w", res.Target, err)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return nil, fmt.Errorf("dashboard: build record for %q: no host", res.Target)
	}

	id := uuid.NewString()
	if b.NewID != nil {
		id = b.NewID()
	}

	rec := &scan.Scan{
		ID:            id,
		Domain:        host,
		URL:           target,
		SecurityScore: SyntheticScore(target),
		Status:        scan.StatusCompleted,
		Timestamp:     scan.FormatTimestamp(res.FinishedAt),
		AISummary: fmt.Sprintf("Simulated assessment of %s. No live checks were run, "+
			"so no findings are available.", host),
	}
	rec.Normalize()
	return rec, nil
}

// NormalizeURL prefixes https:// when target has no http(s) scheme.
func NormalizeURL(target string) string {
	target = strings.TrimSpace(target)
	lower := strings.ToLower(target)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return target
	}
	return "https://" + target
}

// SyntheticScore maps a URL onto 0-100.
func SyntheticScore(u string) int {
	return int(xxh3.HashString(strings.ToLower(u)) % 101)
}
