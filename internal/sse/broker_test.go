package sse

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/bmsort/internal/runctl"
)

func newTestBroker(t *testing.T) *Broker {
	t.Helper()
	b := NewBroker(slog.New(slog.DiscardHandler))
	t.Cleanup(b.Close)
	return b
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := newTestBroker(t)
	assert.Equal(t, b.ClientCount(), 0)
	ch := b.Subscribe()
	assert.Equal(t, b.ClientCount(), 1)
	b.Unsubscribe(ch)
	assert.Equal(t, b.ClientCount(), 0)
}

func TestPublishProgress(t *testing.T) {
	b := newTestBroker(t)
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(runctl.Event{Kind: runctl.EventProgress, Progress: &runctl.Progress{
		PercentComplete: 50, CurrentBatch: 1, TotalBatches: 2, Processed: 5, SuccessCount: 4, FailureCount: 1,
	}})

	select {
	case msg := <-ch:
		s := string(msg)
		assert.Assert(t, strings.HasPrefix(s, "event: organize.progress\n"), s)
		assert.Assert(t, strings.Contains(s, `"percentComplete":50`), s)
		assert.Assert(t, strings.Contains(s, `"failureCount":1`), s)
		assert.Assert(t, strings.HasSuffix(s, "\n\n"), s)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestEncodeLog(t *testing.T) {
	raw, err := Encode(runctl.Event{Kind: runctl.EventLog, Text: "moved \"Go docs\""})
	assert.NilError(t, err)
	assert.Equal(t, string(raw), "event: organize.log\ndata: {\"text\":\"moved \\\"Go docs\\\"\"}\n\n")
}

func TestAttachForwardsControllerEvents(t *testing.T) {
	b := newTestBroker(t)
	ctl := runctl.NewController(slog.New(slog.DiscardHandler))
	detach := b.Attach(ctl)
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ctl.Log("batch 1 failed")

	select {
	case msg := <-ch:
		assert.Assert(t, strings.Contains(string(msg), "batch 1 failed"))
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}

	detach()
	ctl.Log("after detach")
	select {
	case msg := <-ch:
		t.Fatalf("unexpected message after detach: %q", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	b := NewBroker(nil)
	ch := b.Subscribe()
	b.Close()
	b.Close()

	_, ok := <-ch
	assert.Assert(t, !ok)
	assert.Equal(t, b.ClientCount(), 0)
	b.Publish(runctl.Event{Kind: runctl.EventLog, Text: "ignored"})
}

func TestSSEHandler(t *testing.T) {
	b := newTestBroker(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for b.ClientCount() != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, b.ClientCount(), 1)

	b.Publish(runctl.Event{Kind: runctl.EventLog, Text: "hello"})
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	assert.Equal(t, w.Header().Get("Content-Type"), "text/event-stream")
	assert.Assert(t, strings.Contains(w.Body.String(), "event: organize.log"))
}
