package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/0x6d61/scandash/internal/registry"
	"github.com/0x6d61/scandash/internal/scan"
	"github.com/0x6d61/scandash/internal/testutil"
)

type countingObserver struct {
	mu          sync.Mutex
	simulations map[string]int
	refreshes   map[string]int
	deletes     int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{simulations: map[string]int{}, refreshes: map[string]int{}}
}

func (o *countingObserver) SimulationFinished(outcome string) {
	o.mu.Lock()
	o.simulations[outcome]++
	o.mu.Unlock()
}

func (o *countingObserver) Refreshed(outcome string) {
	o.mu.Lock()
	o.refreshes[outcome]++
	o.mu.Unlock()
}

func (o *countingObserver) ScanDeleted() {
	o.mu.Lock()
	o.deletes++
	o.mu.Unlock()
}

func (o *countingObserver) simulation(outcome string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.simulations[outcome]
}

func (o *countingObserver) refresh(outcome string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.refreshes[outcome]
}

// newSeeded returns a dashboard over scan-a (90), scan-b (40), scan-c (70).
func newSeeded(t *testing.T, opts ...Option) *Dashboard {
	t.Helper()
	reg := registry.New(registry.NewMemoryStore())
	ctx := context.Background()
	for _, s := range []*scan.Scan{
		testutil.NewScan("scan-a", 90),
		testutil.NewScan("scan-b", 40),
		testutil.NewScan("scan-c", 70),
	} {
		if err := reg.Insert(ctx, s); err != nil {
			t.Fatalf("Insert(%s) error: %v", s.ID, err)
		}
	}
	return New(reg, opts...)
}

func ids(scans []*scan.Scan) []string {
	out := make([]string, len(scans))
	for i, s := range scans {
		out[i] = s.ID
	}
	return out
}

func TestStats(t *testing.T) {
	d := newSeeded(t)
	got, err := d.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error: %v", err)
	}
	if got.TotalScans != 3 {
		t.Errorf("TotalScans = %d, want 3", got.TotalScans)
	}
	if got.AverageScore != 66 {
		t.Errorf("AverageScore = %d, want 66", got.AverageScore)
	}
	if got.CriticalRisks != 1 {
		t.Errorf("CriticalRisks = %d, want 1", got.CriticalRisks)
	}
}

func TestStats_EmptyRegistry(t *testing.T) {
	d := New(registry.New(registry.NewMemoryStore()))
	got, err := d.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error: %v", err)
	}
	if got.TotalScans != 0 || got.AverageScore != 0 {
		t.Errorf("Stats() = %+v, want zero values", got)
	}
}

func TestRiskBreakdown(t *testing.T) {
	d := newSeeded(t)
	got, err := d.RiskBreakdown(context.Background())
	if err != nil {
		t.Fatalf("RiskBreakdown() error: %v", err)
	}
	want := map[scan.Risk]int{scan.RiskCritical: 1, scan.RiskHigh: 0, scan.RiskMedium: 1, scan.RiskLow: 1}
	for r, n := range want {
		if got[r] != n {
			t.Errorf("RiskBreakdown()[%s] = %d, want %d", r, got[r], n)
		}
	}
}

func TestSelect(t *testing.T) {
	ctx := context.Background()
	d := newSeeded(t)

	rec, err := d.Select(ctx, "scan-b")
	if err != nil || rec == nil {
		t.Fatalf("Select(scan-b) = %v, %v", rec, err)
	}
	if d.SelectedID() != "scan-b" {
		t.Errorf("SelectedID() = %q, want scan-b", d.SelectedID())
	}

	rec, err = d.Select(ctx, "missing")
	if err != nil || rec != nil {
		t.Errorf("Select(missing) = %v, %v, want nil, nil", rec, err)
	}
	if d.SelectedID() != "scan-b" {
		t.Errorf("unknown id changed selection to %q", d.SelectedID())
	}

	sel, err := d.Selected(ctx)
	if err != nil || sel == nil || sel.ID != "scan-b" {
		t.Errorf("Selected() = %v, %v", sel, err)
	}

	d.ClearSelection()
	sel, err = d.Selected(ctx)
	if err != nil || sel != nil {
		t.Errorf("Selected() after clear = %v, %v, want nil", sel, err)
	}
}

func TestDelete_ClearsMatchingSelection(t *testing.T) {
	ctx := context.Background()
	d := newSeeded(t)
	if _, err := d.Select(ctx, "scan-b"); err != nil {
		t.Fatal(err)
	}

	if err := d.RequestDelete("scan-b"); err != nil {
		t.Fatalf("RequestDelete() error: %v", err)
	}
	out, err := d.ConfirmDelete(ctx)
	if err != nil {
		t.Fatalf("ConfirmDelete() error: %v", err)
	}
	if !out.Deleted || out.ID != "scan-b" || !out.SelectionCleared {
		t.Errorf("ConfirmDelete() = %+v", out)
	}
	if d.SelectedID() != "" {
		t.Errorf("selection = %q, want cleared", d.SelectedID())
	}
	scans, _ := d.ListScans(ctx)
	if got := ids(scans); len(got) != 2 || got[0] != "scan-a" || got[1] != "scan-c" {
		t.Errorf("ListScans() = %v, want [scan-a scan-c]", got)
	}
}

func TestDelete_KeepsOtherSelection(t *testing.T) {
	ctx := context.Background()
	d := newSeeded(t)
	if _, err := d.Select(ctx, "scan-a"); err != nil {
		t.Fatal(err)
	}
	out, err := d.DeleteScan(ctx, "scan-c")
	if err != nil {
		t.Fatalf("DeleteScan() error: %v", err)
	}
	if out.SelectionCleared {
		t.Error("SelectionCleared = true for a different id")
	}
	if d.SelectedID() != "scan-a" {
		t.Errorf("selection = %q, want scan-a", d.SelectedID())
	}
}

func TestDelete_MissingIDIsNoop(t *testing.T) {
	ctx := context.Background()
	obs := newCountingObserver()
	d := newSeeded(t, WithObserver(obs))

	out, err := d.DeleteScan(ctx, "scan-zzz")
	if err != nil {
		t.Fatalf("DeleteScan(missing) error: %v", err)
	}
	if out.Deleted {
		t.Error("Deleted = true for missing id")
	}
	scans, _ := d.ListScans(ctx)
	if len(scans) != 3 {
		t.Errorf("len(ListScans()) = %d, want 3", len(scans))
	}
	if obs.deletes != 0 {
		t.Errorf("observer saw %d deletes, want 0", obs.deletes)
	}
}

func TestDelete_Cancel(t *testing.T) {
	ctx := context.Background()
	d := newSeeded(t)
	if err := d.RequestDelete("scan-a"); err != nil {
		t.Fatal(err)
	}
	if id, ok := d.PendingDelete(); !ok || id != "scan-a" {
		t.Errorf("PendingDelete() = %q, %v", id, ok)
	}
	d.CancelDelete()
	if _, ok := d.PendingDelete(); ok {
		t.Error("PendingDelete() still armed after cancel")
	}

	out, err := d.ConfirmDelete(ctx)
	if err != nil {
		t.Fatalf("ConfirmDelete() error: %v", err)
	}
	if out != (DeleteOutcome{}) {
		t.Errorf("ConfirmDelete() without pending = %+v, want zero", out)
	}
	n, _ := d.Registry().Len(ctx)
	if n != 3 {
		t.Errorf("Len() = %d, want 3", n)
	}
}

func TestDelete_NewRequestReplacesPending(t *testing.T) {
	ctx := context.Background()
	d := newSeeded(t)
	_ = d.RequestDelete("scan-a")
	_ = d.RequestDelete("scan-c")

	out, err := d.ConfirmDelete(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if out.ID != "scan-c" {
		t.Errorf("confirmed %q, want scan-c", out.ID)
	}
	if rec, _ := d.Scan(ctx, "scan-a"); rec == nil {
		t.Error("scan-a removed by replaced request")
	}
}

func TestRequestDelete_EmptyID(t *testing.T) {
	d := newSeeded(t)
	if err := d.RequestDelete(""); !errors.Is(err, ErrNoDeleteTarget) {
		t.Errorf("RequestDelete(\"\") = %v, want ErrNoDeleteTarget", err)
	}
}
