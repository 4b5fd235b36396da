// Package registry holds the ordered in-memory collection of scan records
// that backs every dashboard view.
package registry

import (
	"context"
	"errors"

	"github.com/0x6d61/scandash/internal/scan"
)

var (
	// ErrDuplicateID is returned when a record with the same ID is already
	// present.
	ErrDuplicateID = errors.New("registry: duplicate scan id")

	// ErrInvalidRecord is returned when a record fails validation on insert.
	ErrInvalidRecord = errors.New("registry: invalid scan record")
)

// Store is a backend for scan records. Implementations keep insertion order
// and must be safe for concurrent use.
type Store interface {
	// Insert appends a record. It returns ErrDuplicateID when the ID is taken.
	Insert(ctx context.Context, s *scan.Scan) error

	// List returns all records in insertion order.
	List(ctx context.Context) ([]*scan.Scan, error)

	// Find returns the record with the given ID, or (nil, nil) if absent.
	Find(ctx context.Context, id string) (*scan.Scan, error)

	// Remove deletes the record with the given ID. Removing an absent ID is
	// not an error; the boolean reports whether anything was removed.
	Remove(ctx context.Context, id string) (bool, error)

	// Len returns the number of stored records.
	Len(ctx context.Context) (int, error)

	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)
