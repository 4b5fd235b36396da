package dashboard

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoDeleteTarget is returned by RequestDelete for an empty id.
var ErrNoDeleteTarget = errors.New("dashboard: no delete target")

// DeleteOutcome reports what a confirmed delete did.
type DeleteOutcome struct {
	// Deleted is true when a record was actually removed.
	Deleted bool `json:"deleted"`
	// ID is the id that was confirmed, empty when nothing was pending.
	ID string `json:"id"`
	// SelectionCleared is true when the detail view showed the deleted id.
	SelectionCleared bool `json:"selectionCleared"`
}

// RequestDelete arms a delete for id. Nothing is removed until
// ConfirmDelete. A new request replaces an older pending one.
func (d *Dashboard) RequestDelete(id string) error {
	if id == "" {
		return ErrNoDeleteTarget
	}
	d.mu.Lock()
	prev := d.pendingDelete
	d.pendingDelete = id
	d.mu.Unlock()

	if prev != "" && prev != id {
		d.logger.Debug("pending delete replaced", "previous", prev, "id", id)
	}
	return nil
}

// PendingDelete returns the armed id, if any.
func (d *Dashboard) PendingDelete() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pendingDelete, d.pendingDelete != ""
}

// CancelDelete discards the pending delete.
func (d *Dashboard) CancelDelete() {
	d.mu.Lock()
	d.pendingDelete = ""
	d.mu.Unlock()
}

// ConfirmDelete removes the pending record and closes the detail view if it
// showed that record. Without a pending delete it does nothing. Removing an
// id that no longer exists succeeds with Deleted false.
func (d *Dashboard) ConfirmDelete(ctx context.Context) (DeleteOutcome, error) {
	d.mu.Lock()
	id := d.pendingDelete
	d.pendingDelete = ""
	d.mu.Unlock()

	if id == "" {
		return DeleteOutcome{}, nil
	}

	removed, err := d.reg.Remove(ctx, id)
	if err != nil {
		return DeleteOutcome{ID: id}, fmt.Errorf("dashboard: delete %q: %w", id, err)
	}

	out := DeleteOutcome{Deleted: removed, ID: id}
	d.mu.Lock()
	if d.selected == id {
		d.selected = ""
		out.SelectionCleared = true
	}
	d.mu.Unlock()

	if removed {
		d.observer.ScanDeleted()
		d.logger.Info("scan deleted", "id", id, "selection_cleared", out.SelectionCleared)
	}
	return out, nil
}

// DeleteScan requests and confirms a delete in one call.
func (d *Dashboard) DeleteScan(ctx context.Context, id string) (DeleteOutcome, error) {
	if err := d.RequestDelete(id); err != nil {
		return DeleteOutcome{}, err
	}
	return d.ConfirmDelete(ctx)
}
