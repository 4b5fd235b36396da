package dashboard

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/0x6d61/scandash/internal/testutil"
)

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestRefresh_OverlapIsSkipped(t *testing.T) {
	sched := testutil.NewManualScheduler(testutil.Epoch)
	obs := newCountingObserver()
	var fetches atomic.Int32
	r := NewRefresher(func(context.Context) error {
		fetches.Add(1)
		return nil
	}, RefreshConfig{Latency: time.Second, Scheduler: sched, Observer: obs})

	first := make(chan bool, 1)
	go func() {
		ok, _ := r.Refresh(context.Background(), false)
		first <- ok
	}()
	waitFor(t, func() bool { return r.InFlight() && sched.Pending() == 1 })

	ok, err := r.Refresh(context.Background(), true)
	if err != nil || ok {
		t.Errorf("overlapping Refresh() = %v, %v, want false, nil", ok, err)
	}

	sched.Advance(time.Second)
	if !<-first {
		t.Error("first Refresh() = false, want true")
	}
	if fetches.Load() != 1 {
		t.Errorf("fetch ran %d times, want 1", fetches.Load())
	}
	if r.InFlight() {
		t.Error("InFlight() = true after refresh finished")
	}
	if obs.refresh(RefreshSkipped) != 1 || obs.refresh(RefreshOK) != 1 {
		t.Errorf("observer refreshes = %+v", obs.refreshes)
	}

	// The guard is released: the next refresh runs.
	go func() {
		ok, _ := r.Refresh(context.Background(), true)
		first <- ok
	}()
	waitFor(t, func() bool { return sched.Pending() == 1 })
	sched.Advance(time.Second)
	if !<-first {
		t.Error("refresh after release = false, want true")
	}
}

func TestRefresh_FetchError(t *testing.T) {
	boom := errors.New("boom")
	obs := newCountingObserver()
	r := NewRefresher(func(context.Context) error { return boom }, RefreshConfig{Observer: obs})

	ok, err := r.Refresh(context.Background(), false)
	if ok || !errors.Is(err, boom) {
		t.Errorf("Refresh() = %v, %v, want false, boom", ok, err)
	}
	if r.InFlight() {
		t.Error("guard not released after error")
	}
	if obs.refresh(RefreshError) != 1 {
		t.Errorf("error count = %d, want 1", obs.refresh(RefreshError))
	}
}

func TestRefresh_CancelledWhileWaiting(t *testing.T) {
	sched := testutil.NewManualScheduler(testutil.Epoch)
	r := NewRefresher(func(context.Context) error {
		t.Error("fetch ran after cancel")
		return nil
	}, RefreshConfig{Latency: time.Second, Scheduler: sched})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ok, err := r.Refresh(ctx, true)
	if ok || !errors.Is(err, context.Canceled) {
		t.Errorf("Refresh() = %v, %v, want false, context.Canceled", ok, err)
	}
	if sched.Pending() != 0 {
		t.Errorf("latency timer not stopped: Pending() = %d", sched.Pending())
	}
}

func TestRefresher_RunTicks(t *testing.T) {
	var fetches atomic.Int32
	r := NewRefresher(func(context.Context) error {
		fetches.Add(1)
		return nil
	}, RefreshConfig{Interval: 5 * time.Millisecond, Latency: 0})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	waitFor(t, func() bool { return fetches.Load() >= 2 })
	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() = %v, want nil", err)
	}
}

func TestDashboardRefresher(t *testing.T) {
	d := newSeeded(t)
	r := d.NewRefresher(RefreshConfig{})
	ok, err := r.Refresh(context.Background(), false)
	if !ok || err != nil {
		t.Errorf("Refresh() = %v, %v, want true, nil", ok, err)
	}
}
