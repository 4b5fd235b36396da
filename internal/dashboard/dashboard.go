// Package dashboard owns the registry and the UI-facing state around it:
// the detail selection, the two-phase deletion flow, live scan sessions and
// the auto-refresh loop. Display layers (HTTP, CLI) only talk to a Dashboard.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/0x6d61/scandash/internal/registry"
	"github.com/0x6d61/scandash/internal/scan"
	"github.com/0x6d61/scandash/internal/simulator"
	"github.com/0x6d61/scandash/internal/stats"
	"github.com/0x6d61/scandash/internal/timer"
)

// DefaultSessionTTL is how long a finished session stays queryable.
const DefaultSessionTTL = 5 * time.Minute

// Observer receives counters for metrics. All methods must be safe for
// concurrent use.
type Observer interface {
	SimulationFinished(outcome string)
	Refreshed(outcome string)
	ScanDeleted()
}

// Simulation outcomes reported to the Observer.
const (
	OutcomeCompleted = "completed"
	OutcomeRejected  = "rejected"
	OutcomeAbandoned = "abandoned"
	OutcomeFailed    = "failed"
)

type nopObserver struct{}

func (nopObserver) SimulationFinished(string) {}
func (nopObserver) Refreshed(string)          {}
func (nopObserver) ScanDeleted()              {}

// Dashboard is the single owner of dashboard state. It is safe for
// concurrent use.
type Dashboard struct {
	reg        *registry.Registry
	logger     *slog.Logger
	sched      timer.Scheduler
	builder    RecordBuilder
	observer   Observer
	simOpts    []simulator.Option
	sessionTTL time.Duration

	mu            sync.Mutex
	selected      string
	pendingDelete string
	sessions      map[string]*Session
}

// Option configures a Dashboard.
type Option func(*Dashboard)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dashboard) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithScheduler sets the scheduler used by simulations and session expiry.
func WithScheduler(s timer.Scheduler) Option {
	return func(d *Dashboard) {
		if s != nil {
			d.sched = s
		}
	}
}

// WithRecordBuilder replaces the builder that turns a finished simulation
// into a registry record.
func WithRecordBuilder(b RecordBuilder) Option {
	return func(d *Dashboard) {
		if b != nil {
			d.builder = b
		}
	}
}

// WithObserver sets the metrics observer.
func WithObserver(o Observer) Option {
	return func(d *Dashboard) {
		if o != nil {
			d.observer = o
		}
	}
}

// WithSimulatorTimings overrides the simulator tick and settle delays.
func WithSimulatorTimings(tick, settle time.Duration) Option {
	return func(d *Dashboard) {
		d.simOpts = append(d.simOpts, simulator.WithTimings(tick, settle))
	}
}

// WithSessionTTL sets how long finished sessions are kept.
func WithSessionTTL(ttl time.Duration) Option {
	return func(d *Dashboard) {
		if ttl > 0 {
			d.sessionTTL = ttl
		}
	}
}

// New creates a Dashboard around reg.
func New(reg *registry.Registry, opts ...Option) *Dashboard {
	d := &Dashboard{
		reg:        reg,
		logger:     slog.New(slog.DiscardHandler),
		sched:      timer.Real{},
		builder:    SyntheticBuilder{},
		observer:   nopObserver{},
		sessionTTL: DefaultSessionTTL,
		sessions:   make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registry returns the underlying registry.
func (d *Dashboard) Registry() *registry.Registry { return d.reg }

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

// ListScans returns every record in insertion order.
func (d *Dashboard) ListScans(ctx context.Context) ([]*scan.Scan, error) {
	scans, err := d.reg.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: list scans: %w", err)
	}
	return scans, nil
}

// Stats recomputes the dashboard statistics from the current records.
func (d *Dashboard) Stats(ctx context.Context) (stats.Dashboard, error) {
	scans, err := d.ListScans(ctx)
	if err != nil {
		return stats.Dashboard{}, err
	}
	return stats.Compute(scans), nil
}

// RiskBreakdown returns per-risk record counts.
func (d *Dashboard) RiskBreakdown(ctx context.Context) (map[scan.Risk]int, error) {
	scans, err := d.ListScans(ctx)
	if err != nil {
		return nil, err
	}
	return stats.ByRisk(scans), nil
}

// Scan returns one record, or (nil, nil) when the id is unknown.
func (d *Dashboard) Scan(ctx context.Context, id string) (*scan.Scan, error) {
	rec, err := d.reg.Find(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("dashboard: find %q: %w", id, err)
	}
	return rec, nil
}

// ---------------------------------------------------------------------------
// Detail selection
// ---------------------------------------------------------------------------

// Select opens the detail view for id. An unknown id returns (nil, nil) and
// leaves the current selection unchanged.
func (d *Dashboard) Select(ctx context.Context, id string) (*scan.Scan, error) {
	rec, err := d.Scan(ctx, id)
	if err != nil || rec == nil {
		return nil, err
	}
	d.mu.Lock()
	d.selected = id
	d.mu.Unlock()
	return rec, nil
}

// Selected returns the record shown in the detail view, or nil.
func (d *Dashboard) Selected(ctx context.Context) (*scan.Scan, error) {
	d.mu.Lock()
	id := d.selected
	d.mu.Unlock()
	if id == "" {
		return nil, nil
	}
	return d.Scan(ctx, id)
}

// SelectedID returns the id of the detail view, or "".
func (d *Dashboard) SelectedID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.selected
}

// ClearSelection closes the detail view.
func (d *Dashboard) ClearSelection() {
	d.mu.Lock()
	d.selected = ""
	d.mu.Unlock()
}
