// Package runctl holds the run state of the organize pipeline: the single
// active run guard, the cooperative stop flag and the progress/log sink.
package runctl

import (
	"log/slog"
	"sync"

	"github.com/nikbrunner/bmsort/internal/apperr"
)

// State is the lifecycle state of a run.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateStopped   State = "stopped"
	StateFailed    State = "failed"
)

// Event kinds pushed to listeners.
const (
	EventProgress = "organize.progress"
	EventLog      = "organize.log"
)

// Progress is a snapshot of run counters.
type Progress struct {
	PercentComplete int `json:"percentComplete"`
	CurrentBatch    int `json:"currentBatch"`
	TotalBatches    int `json:"totalBatches"`
	Processed       int `json:"processed"`
	SuccessCount    int `json:"successCount"`
	FailureCount    int `json:"failureCount"`
}

// Event is one push notification. Progress is set for EventProgress, Text
// for EventLog.
type Event struct {
	Kind     string    `json:"kind"`
	Progress *Progress `json:"progress,omitempty"`
	Text     string    `json:"text,omitempty"`
}

// Listener receives events. It must not block for long.
type Listener func(Event)

// Status is the externally visible run state.
type Status struct {
	IsOrganizing bool  `json:"isOrganizing"`
	ShouldStop   bool  `json:"shouldStop"`
	State        State `json:"state"`
}

// Controller guards a single active run and fans out its events.
type Controller struct {
	mu         sync.Mutex
	state      State
	shouldStop bool
	listeners  map[int]Listener
	nextID     int
	logger     *slog.Logger
}

// NewController returns an idle controller.
func NewController(logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		state:     StateIdle,
		listeners: make(map[int]Listener),
		logger:    logger,
	}
}

// Begin marks a run as active. It fails with apperr.ErrRunActive when a run
// is already in flight.
func (c *Controller) Begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateRunning {
		return apperr.ErrRunActive
	}
	c.state = StateRunning
	c.shouldStop = false
	return nil
}

// End records the terminal state of the active run and clears the stop flag.
func (c *Controller) End(state State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
	c.shouldStop = false
}

// RequestStop asks the active run to stop at its next safe point. It
// reports whether a run was active; repeated calls are no-ops.
func (c *Controller) RequestStop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateRunning {
		return false
	}
	if !c.shouldStop {
		c.shouldStop = true
		c.logger.Info("organize: stop requested")
	}
	return true
}

// StopRequested reports whether the active run should stop.
func (c *Controller) StopRequested() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shouldStop
}

// IsActive reports whether a run is in flight.
func (c *Controller) IsActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateRunning
}

// Status returns the current run state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		IsOrganizing: c.state == StateRunning,
		ShouldStop:   c.shouldStop,
		State:        c.state,
	}
}

// Subscribe registers l and returns a function that removes it.
func (c *Controller) Subscribe(l Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = l
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// Progress publishes a progress snapshot.
func (c *Controller) Progress(p Progress) {
	c.publish(Event{Kind: EventProgress, Progress: &p})
}

// Log publishes a log line.
func (c *Controller) Log(text string) {
	c.publish(Event{Kind: EventLog, Text: text})
}

// publish delivers ev to every listener. A panicking listener is logged and
// skipped; delivery never affects the run.
func (c *Controller) publish(ev Event) {
	c.mu.Lock()
	listeners := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	c.mu.Unlock()

	for _, l := range listeners {
		c.deliver(l, ev)
	}
}

func (c *Controller) deliver(l Listener, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("organize: listener failed",
				slog.String("event", ev.Kind),
				slog.Any("panic", r))
		}
	}()
	l(ev)
}
