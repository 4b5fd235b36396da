// Package scan defines the scan record model shown on the dashboard.
package scan

// Risk is the coarse severity classification attached to a scan.
type Risk string

const (
	RiskCritical Risk = "critical"
	RiskHigh     Risk = "high"
	RiskMedium   Risk = "medium"
	RiskLow      Risk = "low"
)

// Valid reports whether r is one of the known risk categories.
func (r Risk) Valid() bool {
	switch r {
	case RiskCritical, RiskHigh, RiskMedium, RiskLow:
		return true
	}
	return false
}

// Status is the lifecycle status of a scan.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusRunning   Status = "running"
	StatusFailed    Status = "failed"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusCompleted, StatusRunning, StatusFailed:
		return true
	}
	return false
}

// Severity is the severity of a single vulnerability.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// PortState is the observed state of a port.
type PortState string

const (
	PortOpen     PortState = "open"
	PortClosed   PortState = "closed"
	PortFiltered PortState = "filtered"
)

// PhishingLevel is the phishing risk level. It has a "none" value that the
// scan risk does not.
type PhishingLevel string

const (
	PhishingHigh   PhishingLevel = "high"
	PhishingMedium PhishingLevel = "medium"
	PhishingLow    PhishingLevel = "low"
	PhishingNone   PhishingLevel = "none"
)

// Grade is an SSL letter grade.
type Grade string

const (
	GradeAPlus Grade = "A+"
	GradeA     Grade = "A"
	GradeB     Grade = "B"
	GradeC     Grade = "C"
	GradeD     Grade = "D"
	GradeF     Grade = "F"
)

// Scan is one completed or in-progress security assessment.
//
// JSON and YAML keys follow the dashboard front end's camelCase names.
type Scan struct {
	ID            string `json:"id" yaml:"id"`
	Domain        string `json:"domain" yaml:"domain"`
	URL           string `json:"url" yaml:"url"`
	SecurityScore int    `json:"securityScore" yaml:"securityScore"`
	Risk          Risk   `json:"risk" yaml:"risk"`
	Status        Status `json:"status" yaml:"status"`
	Timestamp     string `json:"timestamp" yaml:"timestamp"`

	// Detailed report payload; all optional.
	Vulnerabilities []Vulnerability   `json:"vulnerabilities,omitempty" yaml:"vulnerabilities,omitempty"`
	Ports           []Port            `json:"ports,omitempty" yaml:"ports,omitempty"`
	Pages           []string          `json:"pages,omitempty" yaml:"pages,omitempty"`
	Phishing        *PhishingAnalysis `json:"phishing,omitempty" yaml:"phishing,omitempty"`
	Technology      *TechnologyStack  `json:"technology,omitempty" yaml:"technology,omitempty"`
	SSL             *SSLInfo          `json:"ssl,omitempty" yaml:"ssl,omitempty"`
	AISummary       string            `json:"aiSummary,omitempty" yaml:"aiSummary,omitempty"`
}

// Vulnerability is a single finding inside a scan report.
type Vulnerability struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Severity    Severity `json:"severity" yaml:"severity"`
	Description string   `json:"description" yaml:"description"`
	Affected    string   `json:"affected,omitempty" yaml:"affected,omitempty"`
}

// Port is an observed network port.
type Port struct {
	Number  int       `json:"number" yaml:"number"`
	Service string    `json:"service" yaml:"service"`
	State   PortState `json:"state" yaml:"state"`
	Risk    Risk      `json:"risk" yaml:"risk"`
}

// PhishingAnalysis summarizes phishing indicators for a domain.
type PhishingAnalysis struct {
	Detected    bool          `json:"detected" yaml:"detected"`
	RiskLevel   PhishingLevel `json:"riskLevel" yaml:"riskLevel"`
	Indicators  []string      `json:"indicators" yaml:"indicators"`
	Description string        `json:"description" yaml:"description"`
}

// TechnologyStack is the detected server-side and client-side stack.
type TechnologyStack struct {
	Frameworks []string `json:"frameworks" yaml:"frameworks"`
	Server     string   `json:"server" yaml:"server"`
	CMS        string   `json:"cms,omitempty" yaml:"cms,omitempty"`
	Libraries  []string `json:"libraries" yaml:"libraries"`
	Language   string   `json:"language,omitempty" yaml:"language,omitempty"`
}

// SSLInfo describes the certificate and TLS posture.
type SSLInfo struct {
	Valid         bool   `json:"valid" yaml:"valid"`
	Issuer        string `json:"issuer" yaml:"issuer"`
	ExpiryDate    string `json:"expiryDate" yaml:"expiryDate"`
	Protocol      string `json:"protocol" yaml:"protocol"`
	HTTPSEnforced bool   `json:"httpsEnforced" yaml:"httpsEnforced"`
	Grade         Grade  `json:"grade" yaml:"grade"`
}

// PhishingDetected reports whether the scan carries a positive phishing
// analysis.
func (s *Scan) PhishingDetected() bool {
	return s.Phishing != nil && s.Phishing.Detected
}

// Clone returns a deep copy of s.
func (s *Scan) Clone() *Scan {
	if s == nil {
		return nil
	}
	c := *s
	if s.Vulnerabilities != nil {
		c.Vulnerabilities = append([]Vulnerability(nil), s.Vulnerabilities...)
	}
	if s.Ports != nil {
		c.Ports = append([]Port(nil), s.Ports...)
	}
	if s.Pages != nil {
		c.Pages = append([]string(nil), s.Pages...)
	}
	if s.Phishing != nil {
		p := *s.Phishing
		p.Indicators = append([]string(nil), s.Phishing.Indicators...)
		c.Phishing = &p
	}
	if s.Technology != nil {
		t := *s.Technology
		t.Frameworks = append([]string(nil), s.Technology.Frameworks...)
		t.Libraries = append([]string(nil), s.Technology.Libraries...)
		c.Technology = &t
	}
	if s.SSL != nil {
		ssl := *s.SSL
		c.SSL = &ssl
	}
	return &c
}
