// Package timer provides the cancellable scheduled-callback abstraction the
// simulator and refresher are driven by.
package timer

import "time"

// Timer is a pending callback.
type Timer interface {
	// Stop prevents the callback from firing. It returns false if the
	// callback already fired or was stopped.
	Stop() bool
}

// Scheduler runs fn once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
	Now() time.Time
}

// Real schedules callbacks on the runtime timer heap.
type Real struct{}

var _ Scheduler = Real{}

func (Real) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

func (Real) Now() time.Time { return time.Now() }
