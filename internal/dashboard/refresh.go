package dashboard

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/0x6d61/scandash/internal/timer"
)

// Refresh defaults.
const (
	DefaultRefreshInterval = 10 * time.Second
	DefaultRefreshLatency  = time.Second
)

// Refresh outcomes reported to the Observer.
const (
	RefreshOK      = "ok"
	RefreshSkipped = "skipped"
	RefreshError   = "error"
)

// FetchFunc reloads dashboard data.
type FetchFunc func(ctx context.Context) error

// RefreshConfig configures a Refresher. Zero values take the defaults.
type RefreshConfig struct {
	Interval  time.Duration
	Latency   time.Duration
	Scheduler timer.Scheduler
	Logger    *slog.Logger
	Observer  Observer
}

// Refresher runs data reloads with an in-progress guard: a refresh started
// while another is still running is skipped.
type Refresher struct {
	fetch    FetchFunc
	interval time.Duration
	latency  time.Duration
	sched    timer.Scheduler
	logger   *slog.Logger
	observer Observer

	inFlight atomic.Bool
}

// NewRefresher creates a Refresher around fetch.
func NewRefresher(fetch FetchFunc, cfg RefreshConfig) *Refresher {
	r := &Refresher{
		fetch:    fetch,
		interval: cfg.Interval,
		latency:  cfg.Latency,
		sched:    cfg.Scheduler,
		logger:   cfg.Logger,
		observer: cfg.Observer,
	}
	if r.interval <= 0 {
		r.interval = DefaultRefreshInterval
	}
	if r.latency < 0 {
		r.latency = 0
	}
	if r.sched == nil {
		r.sched = timer.Real{}
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}
	if r.observer == nil {
		r.observer = nopObserver{}
	}
	return r
}

// NewRefresher returns a Refresher that reloads this dashboard's registry.
func (d *Dashboard) NewRefresher(cfg RefreshConfig) *Refresher {
	if cfg.Logger == nil {
		cfg.Logger = d.logger
	}
	if cfg.Observer == nil {
		cfg.Observer = d.observer
	}
	return NewRefresher(d.reload, cfg)
}

func (d *Dashboard) reload(ctx context.Context) error {
	n, err := d.reg.Len(ctx)
	if err != nil {
		return err
	}
	d.logger.Debug("registry reloaded", "scans", n)
	return nil
}

// InFlight reports whether a refresh is running.
func (r *Refresher) InFlight() bool { return r.inFlight.Load() }

// Refresh waits out the configured latency and runs the fetch. It returns
// false without fetching when another refresh is in progress. A non-silent
// refresh logs a confirmation.
func (r *Refresher) Refresh(ctx context.Context, silent bool) (bool, error) {
	if !r.inFlight.CompareAndSwap(false, true) {
		r.observer.Refreshed(RefreshSkipped)
		r.logger.Debug("refresh skipped, already in progress")
		return false, nil
	}
	defer r.inFlight.Store(false)

	if r.latency > 0 {
		ready := make(chan struct{})
		t := r.sched.AfterFunc(r.latency, func() { close(ready) })
		select {
		case <-ctx.Done():
			t.Stop()
			return false, ctx.Err()
		case <-ready:
		}
	}

	if err := r.fetch(ctx); err != nil {
		r.observer.Refreshed(RefreshError)
		r.logger.Warn("refresh failed", "error", err)
		return false, err
	}
	r.observer.Refreshed(RefreshOK)
	if !silent {
		r.logger.Info("data refreshed")
	}
	return true, nil
}

// Run triggers a silent refresh every interval until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	r.logger.Info("auto-refresh started", "interval", r.interval)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("auto-refresh stopped")
			return nil
		case <-ticker.C:
			_, _ = r.Refresh(ctx, true)
		}
	}
}
