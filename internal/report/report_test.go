package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/bmsort/internal/organizer"
	"github.com/nikbrunner/bmsort/internal/runctl"
)

func TestWriteYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs", "organize.yaml")
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	err := WriteYAML(path, Report{
		Config: RunConfig{Provider: "deepseek", Model: "deepseek-chat", Storage: "/tmp/bookmarks.json", BatchRetries: 1},
		Summary: &organizer.Summary{
			Total: 7, Success: 5, Failure: 2, Processed: 7,
			State:      runctl.StateCompleted,
			Message:    "Organize completed: 5 succeeded, 2 failed",
			Logs:       []string{"✗ batch 2/2 failed (transport): connection refused"},
			StartedAt:  started,
			FinishedAt: started.Add(12 * time.Second),
		},
	})
	assert.NilError(t, err)

	raw, err := os.ReadFile(path)
	assert.NilError(t, err)
	assert.Assert(t, strings.Contains(string(raw), "provider: deepseek"))
	assert.Assert(t, strings.Contains(string(raw), "state: completed"))
	assert.Assert(t, !strings.Contains(string(raw), "rootFolder"))

	got, err := ReadYAML(path)
	assert.NilError(t, err)
	assert.Equal(t, got.Summary.Failure, 2)
	assert.Equal(t, got.Summary.Logs[0], "✗ batch 2/2 failed (transport): connection refused")
	assert.Assert(t, got.Summary.StartedAt.Equal(started))
}

func TestWriteYAMLWithoutSummary(t *testing.T) {
	err := WriteYAML(filepath.Join(t.TempDir(), "r.yaml"), Report{})
	assert.ErrorContains(t, err, "no summary")
}
