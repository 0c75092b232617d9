package runctl_test

import (
	"errors"
	"log/slog"
	"sync"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/bmsort/internal/apperr"
	"github.com/nikbrunner/bmsort/internal/runctl"
)

func newController() *runctl.Controller {
	return runctl.NewController(slog.New(slog.DiscardHandler))
}

func TestController_Lifecycle(t *testing.T) {
	c := newController()
	assert.Equal(t, c.Status().State, runctl.StateIdle)
	assert.Assert(t, !c.IsActive())

	assert.NilError(t, c.Begin())
	assert.Assert(t, c.IsActive())
	assert.DeepEqual(t, c.Status(), runctl.Status{IsOrganizing: true, State: runctl.StateRunning})

	err := c.Begin()
	assert.Assert(t, errors.Is(err, apperr.ErrRunActive))

	c.End(runctl.StateCompleted)
	assert.Assert(t, !c.IsActive())
	assert.Equal(t, c.Status().State, runctl.StateCompleted)

	assert.NilError(t, c.Begin(), "a new run may start after the previous one ended")
}

func TestController_RequestStop(t *testing.T) {
	c := newController()

	assert.Assert(t, !c.RequestStop(), "stop without a run is a no-op")
	assert.Assert(t, !c.StopRequested())

	assert.NilError(t, c.Begin())
	assert.Assert(t, c.RequestStop())
	assert.Assert(t, c.RequestStop(), "repeated stop requests are harmless")
	assert.Assert(t, c.StopRequested())
	assert.Assert(t, c.Status().ShouldStop)

	c.End(runctl.StateStopped)
	assert.Assert(t, !c.StopRequested(), "flags reset when the run ends")

	assert.NilError(t, c.Begin())
	assert.Assert(t, !c.StopRequested(), "a new run starts without a pending stop")
}

func TestController_Events(t *testing.T) {
	c := newController()

	var mu sync.Mutex
	var got []runctl.Event
	unsubscribe := c.Subscribe(func(ev runctl.Event) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, ev)
	})

	c.Progress(runctl.Progress{PercentComplete: 50, CurrentBatch: 1, TotalBatches: 2})
	c.Log("hello")

	assert.Equal(t, len(got), 2)
	assert.Equal(t, got[0].Kind, runctl.EventProgress)
	assert.Equal(t, got[0].Progress.PercentComplete, 50)
	assert.Equal(t, got[1].Kind, runctl.EventLog)
	assert.Equal(t, got[1].Text, "hello")

	unsubscribe()
	c.Log("ignored")
	assert.Equal(t, len(got), 2)
}

func TestController_PanickingListener(t *testing.T) {
	c := newController()

	c.Subscribe(func(runctl.Event) { panic("boom") })
	delivered := 0
	c.Subscribe(func(runctl.Event) { delivered++ })

	c.Log("still delivered")
	assert.Equal(t, delivered, 1)
}
