package registry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/0x6d61/scandash/internal/scan"
)

// Registry is the validated front for a Store. It is constructed once at
// startup and injected into the dashboard that owns it.
type Registry struct {
	store  Store
	logger *slog.Logger

	// onChange is called with the new record count after every mutation.
	onChange func(n int)
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for mutations.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithChangeHook registers fn to be called with the record count after each
// insert or effective remove.
func WithChangeHook(fn func(n int)) Option {
	return func(r *Registry) {
		r.onChange = fn
	}
}

// New wraps store in a Registry.
func New(store Store, opts ...Option) *Registry {
	r := &Registry{
		store:  store,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open creates a Registry on the named backend ("memory" or "sqlite").
// The SQLite backend always runs in memory.
func Open(backend string, opts ...Option) (*Registry, error) {
	switch strings.ToLower(backend) {
	case "", BackendMemory:
		return New(NewMemoryStore(), opts...), nil
	case BackendSQLite:
		st, err := NewSQLiteStore(":memory:")
		if err != nil {
			return nil, err
		}
		return New(st, opts...), nil
	default:
		return nil, fmt.Errorf("registry: unsupported backend %q", backend)
	}
}

// Insert validates rec, derives its risk from the score and stores a copy.
func (r *Registry) Insert(ctx context.Context, rec *scan.Scan) error {
	if err := validate(rec); err != nil {
		return err
	}
	c := rec.Clone()
	c.Normalize()
	if err := r.store.Insert(ctx, c); err != nil {
		return err
	}
	r.logger.Debug("scan inserted", "id", c.ID, "domain", c.Domain, "score", c.SecurityScore, "risk", c.Risk)
	r.changed(ctx)
	return nil
}

// List returns the current records in insertion order.
func (r *Registry) List(ctx context.Context) ([]*scan.Scan, error) {
	return r.store.List(ctx)
}

// Find returns the matching record, or (nil, nil) when none exists.
func (r *Registry) Find(ctx context.Context, id string) (*scan.Scan, error) {
	return r.store.Find(ctx, id)
}

// Remove deletes the record if present. A missing ID is a silent no-op.
func (r *Registry) Remove(ctx context.Context, id string) (bool, error) {
	removed, err := r.store.Remove(ctx, id)
	if err != nil {
		return false, err
	}
	if removed {
		r.logger.Debug("scan removed", "id", id)
		r.changed(ctx)
	}
	return removed, nil
}

// Len returns the record count.
func (r *Registry) Len(ctx context.Context) (int, error) {
	return r.store.Len(ctx)
}

// Close releases the backing store.
func (r *Registry) Close() error {
	return r.store.Close()
}

func (r *Registry) changed(ctx context.Context) {
	if r.onChange == nil {
		return
	}
	n, err := r.store.Len(ctx)
	if err != nil {
		r.logger.Warn("registry length unavailable", "error", err)
		return
	}
	r.onChange(n)
}

func validate(rec *scan.Scan) error {
	if rec == nil {
		return fmt.Errorf("%w: nil record", ErrInvalidRecord)
	}
	if strings.TrimSpace(rec.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidRecord)
	}
	if rec.SecurityScore < 0 || rec.SecurityScore > 100 {
		return fmt.Errorf("%w: score %d out of range 0-100", ErrInvalidRecord, rec.SecurityScore)
	}
	if rec.Status != "" && !rec.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidRecord, rec.Status)
	}
	return nil
}
