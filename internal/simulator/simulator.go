// Package simulator runs the fake scan progress state machine behind the
// New Scan flow. No scanning happens: the machine emits a fixed list of
// milestone log lines on a timer and then reports completion.
package simulator

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/0x6d61/scandash/internal/timer"
)

// State is the simulator lifecycle state.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateRunning
	StateCompleted
	StateRejected
)

// String returns the lowercase state name.
func (s State) String() string {
	names := [...]string{"idle", "validating", "running", "completed", "rejected"}
	if int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// Milestones are the messages emitted one per tick, in order.
var Milestones = [...]string{
	"Initializing scan engine...",
	"Resolving DNS records...",
	"Checking SSL certificate...",
	"Scanning open ports...",
	"Crawling website pages...",
	"Analyzing vulnerabilities...",
	"Checking for phishing indicators...",
	"Detecting technology stack...",
	"Generating security report...",
	"Scan complete!",
}

// Default timings.
const (
	DefaultTickInterval = 800 * time.Millisecond
	DefaultSettleDelay  = time.Second
)

// LogLine is one timestamped milestone entry.
type LogLine struct {
	Time    time.Time `json:"time"`
	Step    int       `json:"step"`
	Message string    `json:"message"`
}

// String renders the line as "[15:04:05] message".
func (l LogLine) String() string {
	return fmt.Sprintf("[%s] %s", l.Time.Format("15:04:05"), l.Message)
}

// Result is handed to OnCompleted when a simulation finishes.
type Result struct {
	Target     string
	StartedAt  time.Time
	FinishedAt time.Time
	Log        []LogLine
}

// Hooks receive simulator events. Nil hooks are skipped. Hooks are called
// without the simulator lock held, in emission order.
type Hooks struct {
	OnLogAppended     func(line LogLine)
	OnProgressChanged func(percent float64)
	OnCompleted       func(result Result)
	OnRejected        func(err error)
}

// Simulator is a single-use-at-a-time progress state machine:
//
//	Idle -> Validating -> Running -> Completed -> Idle
//	        Validating -> Rejected -> Idle
//
// A Simulator is safe for concurrent use.
type Simulator struct {
	hooks  Hooks
	sched  timer.Scheduler
	logger *slog.Logger
	tick   time.Duration
	settle time.Duration

	mu        sync.Mutex
	state     State
	target    string
	steps     int
	log       []LogLine
	progress  float64
	startedAt time.Time
	rejectErr error
	pending   timer.Timer
	// gen invalidates callbacks scheduled before the last Submit or Dispose.
	gen uint64
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithScheduler sets the scheduler that drives ticks.
func WithScheduler(s timer.Scheduler) Option {
	return func(sim *Simulator) {
		if s != nil {
			sim.sched = s
		}
	}
}

// WithTimings overrides the tick interval and the settle delay. Zero values
// keep the defaults.
func WithTimings(tick, settle time.Duration) Option {
	return func(sim *Simulator) {
		if tick > 0 {
			sim.tick = tick
		}
		if settle > 0 {
			sim.settle = settle
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(sim *Simulator) {
		if l != nil {
			sim.logger = l
		}
	}
}

// New creates an idle Simulator.
func New(hooks Hooks, opts ...Option) *Simulator {
	s := &Simulator{
		hooks:  hooks,
		sched:  timer.Real{},
		logger: slog.New(slog.DiscardHandler),
		tick:   DefaultTickInterval,
		settle: DefaultSettleDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates target and, on success, starts the simulation. A
// rejected machine is acknowledged implicitly. Submitting while a
// simulation is running returns ErrBusy.
func (s *Simulator) Submit(target string) error {
	s.mu.Lock()
	if s.state != StateIdle && s.state != StateRejected {
		s.mu.Unlock()
		return ErrBusy
	}
	s.state = StateValidating
	s.rejectErr = nil

	normalized, err := Validate(target)
	if err != nil {
		s.state = StateRejected
		s.rejectErr = err
		s.mu.Unlock()

		s.logger.Info("scan target rejected", "target", target, "reason", UserMessage(err))
		if s.hooks.OnRejected != nil {
			s.hooks.OnRejected(err)
		}
		return err
	}

	s.gen++
	gen := s.gen
	s.state = StateRunning
	s.target = normalized
	s.steps = 0
	s.log = nil
	s.progress = 0
	s.startedAt = s.sched.Now()
	s.pending = s.sched.AfterFunc(s.tick, func() { s.onTick(gen) })
	s.mu.Unlock()

	s.logger.Info("starting scan", "target", normalized)
	return nil
}

func (s *Simulator) onTick(gen uint64) {
	s.mu.Lock()
	if s.gen != gen || s.state != StateRunning {
		s.mu.Unlock()
		return
	}
	s.pending = nil
	line := LogLine{
		Time:    s.sched.Now(),
		Step:    s.steps + 1,
		Message: Milestones[s.steps],
	}
	s.steps++
	s.log = append(s.log, line)
	s.progress = float64(s.steps*100) / float64(len(Milestones))
	progress := s.progress
	last := s.steps == len(Milestones)
	s.mu.Unlock()

	s.logger.Debug("scan milestone", "step", line.Step, "message", line.Message, "progress", progress)
	if s.hooks.OnLogAppended != nil {
		s.hooks.OnLogAppended(line)
	}
	if s.hooks.OnProgressChanged != nil {
		s.hooks.OnProgressChanged(progress)
	}

	// The next step is scheduled only after the hooks ran. A Dispose from
	// inside a hook bumps gen and is honoured here.
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen || s.state != StateRunning {
		return
	}
	if last {
		s.pending = s.sched.AfterFunc(s.settle, func() { s.onSettled(gen) })
		return
	}
	s.pending = s.sched.AfterFunc(s.tick, func() { s.onTick(gen) })
}

func (s *Simulator) onSettled(gen uint64) {
	s.mu.Lock()
	if s.gen != gen || s.state != StateRunning {
		s.mu.Unlock()
		return
	}
	s.pending = nil
	s.state = StateCompleted
	result := Result{
		Target:     s.target,
		StartedAt:  s.startedAt,
		FinishedAt: s.sched.Now(),
		Log:        append([]LogLine(nil), s.log...),
	}
	s.mu.Unlock()

	s.logger.Info("scan simulation complete", "target", result.Target,
		"duration", result.FinishedAt.Sub(result.StartedAt))
	if s.hooks.OnCompleted != nil {
		s.hooks.OnCompleted(result)
	}

	s.mu.Lock()
	if s.gen == gen && s.state == StateCompleted {
		s.resetLocked()
	}
	s.mu.Unlock()
}

// Dispose abandons the current simulation: the pending timer is stopped,
// no completion is reported and the machine returns to Idle. It reports
// whether a running simulation was abandoned.
func (s *Simulator) Dispose() bool {
	s.mu.Lock()
	wasRunning := s.state == StateRunning
	target := s.target
	s.gen++
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	s.resetLocked()
	s.mu.Unlock()

	if wasRunning {
		s.logger.Info("scan simulation abandoned", "target", target)
	}
	return wasRunning
}

// Acknowledge returns a rejected machine to Idle.
func (s *Simulator) Acknowledge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateRejected {
		s.resetLocked()
	}
}

func (s *Simulator) resetLocked() {
	s.state = StateIdle
	s.target = ""
	s.steps = 0
	s.log = nil
	s.progress = 0
	s.rejectErr = nil
	s.startedAt = time.Time{}
}

// State returns the current state.
func (s *Simulator) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Progress returns the completion percentage of the running simulation.
func (s *Simulator) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// Log returns a copy of the log lines emitted so far.
func (s *Simulator) Log() []LogLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]LogLine(nil), s.log...)
}

// Target returns the target of the running simulation.
func (s *Simulator) Target() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target
}

// Err returns the rejection error while the machine is Rejected.
func (s *Simulator) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rejectErr
}
