package registry

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/0x6d61/scandash/internal/scan"
)

//go:embed seed/scans.yaml
var defaultSeed []byte

type seedFile struct {
	Scans []*scan.Scan `yaml:"scans"`
}

// LoadSeed decodes a YAML fixture of the form `scans: [...]`.
func LoadSeed(r io.Reader) ([]*scan.Scan, error) {
	var f seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("registry: decode seed: %w", err)
	}
	return f.Scans, nil
}

// DefaultSeed returns the embedded demo records.
func DefaultSeed() ([]*scan.Scan, error) {
	return LoadSeed(bytes.NewReader(defaultSeed))
}

// Seed inserts scans into reg in order. It stops at the first failure.
func Seed(ctx context.Context, reg *Registry, scans []*scan.Scan) error {
	for _, s := range scans {
		if err := reg.Insert(ctx, s); err != nil {
			return fmt.Errorf("registry: seed %q: %w", s.ID, err)
		}
	}
	return nil
}
