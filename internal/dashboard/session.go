package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/0x6d61/scandash/internal/simulator"
)

// ErrSessionNotFound is returned for an unknown or expired session id.
var ErrSessionNotFound = errors.New("dashboard: session not found")

// SessionStatus is the lifecycle of one New Scan session.
type SessionStatus string

const (
	SessionRunning   SessionStatus = "running"
	SessionCompleted SessionStatus = "completed"
	SessionAbandoned SessionStatus = "abandoned"
	SessionFailed    SessionStatus = "failed"
)

// Session is one New Scan dialog: a simulator plus the view state its
// events populate.
type Session struct {
	id          string
	target      string
	startedNote string
	createdAt   time.Time
	sim         *simulator.Simulator
	done        chan struct{}

	mu         sync.Mutex
	status     SessionStatus
	progress   float64
	log        []simulator.LogLine
	scanID     string
	err        error
	finishedAt time.Time
}

// SessionView is a point-in-time copy of a Session.
type SessionView struct {
	ID          string        `json:"id"`
	Target      string        `json:"target"`
	StartedNote string        `json:"startedNote"`
	Status      SessionStatus `json:"status"`
	Progress    float64       `json:"progress"`
	Log         []string      `json:"log"`
	ScanID      string        `json:"scanId,omitempty"`
	Error       string        `json:"error,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	FinishedAt  *time.Time    `json:"finishedAt,omitempty"`
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Done is closed once the session stops running.
func (s *Session) Done() <-chan struct{} { return s.done }

// View returns a snapshot of the session.
func (s *Session) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := SessionView{
		ID:          s.id,
		Target:      s.target,
		StartedNote: s.startedNote,
		Status:      s.status,
		Progress:    s.progress,
		Log:         make([]string, len(s.log)),
		ScanID:      s.scanID,
		CreatedAt:   s.createdAt,
	}
	for i, l := range s.log {
		v.Log[i] = l.String()
	}
	if s.err != nil {
		v.Error = s.err.Error()
	}
	if !s.finishedAt.IsZero() {
		t := s.finishedAt
		v.FinishedAt = &t
	}
	return v
}

// finish moves a running session to status. It reports false if the
// session had already finished.
func (s *Session) finish(status SessionStatus, at time.Time, scanID string, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != SessionRunning {
		return false
	}
	s.status = status
	s.scanID = scanID
	s.err = err
	s.finishedAt = at
	close(s.done)
	return true
}

func (s *Session) expired(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.finishedAt.IsZero() && now.Sub(s.finishedAt) >= ttl
}

func (s *Session) running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status == SessionRunning
}

// StartScan validates target and starts a simulated scan in a new session.
// Only one session runs at a time; a second start returns simulator.ErrBusy.
// Validation failures return simulator.ErrEmptyInput or ErrInvalidFormat
// and create no session. Extra hooks are called after the session's own
// bookkeeping for each event.
func (d *Dashboard) StartScan(target string, extra ...simulator.Hooks) (*Session, error) {
	if _, err := simulator.Validate(target); err != nil {
		d.logger.Info("scan target rejected", "target", target, "reason", simulator.UserMessage(err))
		for _, h := range extra {
			if h.OnRejected != nil {
				h.OnRejected(err)
			}
		}
		d.observer.SimulationFinished(OutcomeRejected)
		return nil, err
	}

	sess := &Session{
		id:          uuid.NewString(),
		target:      target,
		startedNote: "Starting scan for: " + target,
		createdAt:   d.sched.Now(),
		done:        make(chan struct{}),
		status:      SessionRunning,
	}

	hooks := simulator.Hooks{
		OnLogAppended: func(l simulator.LogLine) {
			sess.mu.Lock()
			sess.log = append(sess.log, l)
			sess.mu.Unlock()
			for _, h := range extra {
				if h.OnLogAppended != nil {
					h.OnLogAppended(l)
				}
			}
		},
		OnProgressChanged: func(p float64) {
			sess.mu.Lock()
			sess.progress = p
			sess.mu.Unlock()
			for _, h := range extra {
				if h.OnProgressChanged != nil {
					h.OnProgressChanged(p)
				}
			}
		},
		OnCompleted: func(res simulator.Result) {
			d.complete(sess, res)
			for _, h := range extra {
				if h.OnCompleted != nil {
					h.OnCompleted(res)
				}
			}
		},
		OnRejected: func(err error) {
			for _, h := range extra {
				if h.OnRejected != nil {
					h.OnRejected(err)
				}
			}
		},
	}
	opts := append([]simulator.Option{
		simulator.WithScheduler(d.sched),
		simulator.WithLogger(d.logger.With("session", sess.id)),
	}, d.simOpts...)
	sess.sim = simulator.New(hooks, opts...)

	d.mu.Lock()
	d.pruneLocked()
	for _, other := range d.sessions {
		if other.running() {
			d.mu.Unlock()
			return nil, simulator.ErrBusy
		}
	}
	d.sessions[sess.id] = sess
	d.mu.Unlock()

	d.logger.Info(sess.startedNote, "session", sess.id)
	if err := sess.sim.Submit(target); err != nil {
		d.mu.Lock()
		delete(d.sessions, sess.id)
		d.mu.Unlock()
		d.observer.SimulationFinished(OutcomeRejected)
		return nil, err
	}
	return sess, nil
}

func (d *Dashboard) complete(sess *Session, res simulator.Result) {
	rec, err := d.builder.Build(res)
	if err == nil {
		err = d.reg.Insert(context.Background(), rec)
	}
	if err != nil {
		err = fmt.Errorf("dashboard: record scan of %q: %w", res.Target, err)
		if sess.finish(SessionFailed, res.FinishedAt, "", err) {
			d.observer.SimulationFinished(OutcomeFailed)
		}
		d.logger.Error("scan record not saved", "session", sess.id, "error", err)
		return
	}
	if sess.finish(SessionCompleted, res.FinishedAt, rec.ID, nil) {
		d.observer.SimulationFinished(OutcomeCompleted)
	}
	d.logger.Info("scan recorded", "session", sess.id, "id", rec.ID,
		"domain", rec.Domain, "score", rec.SecurityScore, "risk", rec.Risk)
}

// Session returns a snapshot of the session with the given id.
func (d *Dashboard) Session(id string) (SessionView, error) {
	d.mu.Lock()
	d.pruneLocked()
	sess, ok := d.sessions[id]
	d.mu.Unlock()
	if !ok {
		return SessionView{}, ErrSessionNotFound
	}
	return sess.View(), nil
}

// AbandonScan closes a session. A running simulation is disposed and no
// record is created. Abandoning a finished session is a no-op.
func (d *Dashboard) AbandonScan(id string) error {
	d.mu.Lock()
	sess, ok := d.sessions[id]
	d.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	d.abandon(sess)
	return nil
}

// abandon finishes sess only when a running simulation was actually
// disposed. Once the simulation has settled, completion owns the session.
func (d *Dashboard) abandon(sess *Session) {
	if !sess.sim.Dispose() {
		return
	}
	if sess.finish(SessionAbandoned, d.sched.Now(), "", nil) {
		d.observer.SimulationFinished(OutcomeAbandoned)
		d.logger.Info("scan abandoned", "session", sess.id, "target", sess.target)
	}
}

// Close abandons every running session.
func (d *Dashboard) Close() {
	d.mu.Lock()
	live := make([]*Session, 0, len(d.sessions))
	for _, s := range d.sessions {
		live = append(live, s)
	}
	d.mu.Unlock()
	for _, s := range live {
		if s.running() {
			d.abandon(s)
		}
	}
}

func (d *Dashboard) pruneLocked() {
	now := d.sched.Now()
	for id, s := range d.sessions {
		if s.expired(now, d.sessionTTL) {
			delete(d.sessions, id)
		}
	}
}
