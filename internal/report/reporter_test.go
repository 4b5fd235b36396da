package report

import (
	"testing"

	"github.com/0x6d61/scandash/internal/scan"
)

func TestNew(t *testing.T) {
	tests := []struct {
		input      string
		wantFormat string
		wantType   string
	}{
		{"text", "text", "text/plain; charset=utf-8"},
		{"TEXT", "text", "text/plain; charset=utf-8"},
		{"json", "json", "application/json"},
		{"Json", "json", "application/json"},
		{"pdf", "pdf", "application/pdf"},
		{"PDF", "pdf", "application/pdf"},
	}
	for _, tt := range tests {
		r, err := New(tt.input)
		if err != nil {
			t.Errorf("New(%q) returned error: %v", tt.input, err)
			continue
		}
		if r.Format() != tt.wantFormat {
			t.Errorf("New(%q).Format() = %q, want %q", tt.input, r.Format(), tt.wantFormat)
		}
		if r.ContentType() != tt.wantType {
			t.Errorf("New(%q).ContentType() = %q, want %q", tt.input, r.ContentType(), tt.wantType)
		}
	}
}

func TestNew_Invalid(t *testing.T) {
	r, err := New("xml")
	if err == nil {
		t.Fatal("New(\"xml\") should return error for unsupported format")
	}
	if r != nil {
		t.Errorf("New(\"xml\") returned non-nil reporter: %v", r)
	}
}

func TestFilename(t *testing.T) {
	rec := &scan.Scan{ID: "scan-001"}
	tests := []struct {
		format string
		want   string
	}{
		{"text", "scan-scan-001.txt"},
		{"json", "scan-scan-001.json"},
		{"pdf", "scan-scan-001.pdf"},
	}
	for _, tt := range tests {
		r, _ := New(tt.format)
		if got := Filename(rec, r); got != tt.want {
			t.Errorf("Filename(%s) = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"critical", "Critical"},
		{"completed", "Completed"},
		{"", "-"},
	}
	for _, tt := range tests {
		if got := Label(tt.in); got != tt.want {
			t.Errorf("Label(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := Label(scan.RiskHigh); got != "High" {
		t.Errorf("Label(RiskHigh) = %q, want High", got)
	}
}
