package main

import (
	"bytes"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/bmsort/internal/bookmarks"
	"github.com/nikbrunner/bmsort/internal/folderindex"
	"github.com/nikbrunner/bmsort/internal/organizer"
	"github.com/nikbrunner/bmsort/internal/runctl"
)

func TestPlainPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := plainPrinter(&buf)

	p(runctl.Event{Kind: runctl.EventProgress, Progress: &runctl.Progress{
		PercentComplete: 40, CurrentBatch: 2, TotalBatches: 3, Processed: 5, SuccessCount: 4, FailureCount: 1,
	}})
	p(runctl.Event{Kind: runctl.EventLog, Text: "✗ batch 2/3 failed (transport): connection refused"})
	p(runctl.Event{Kind: runctl.EventProgress})

	assert.Equal(t, buf.String(),
		"[ 40%] batch 2/3  processed 5  ok 4  failed 1\n"+
			"✗ batch 2/3 failed (transport): connection refused\n")
}

func TestPrintCheck(t *testing.T) {
	tests := []struct {
		name string
		chk  *organizer.CheckResult
		want string
	}{
		{
			name: "not bookmarked",
			chk:  &organizer.CheckResult{},
			want: "https://go.dev is not bookmarked\n",
		},
		{
			name: "top level",
			chk:  &organizer.CheckResult{IsBookmarked: true, Bookmark: &bookmarks.Node{Title: "Go"}},
			want: "https://go.dev is bookmarked as \"Go\" at the top level\n",
		},
		{
			name: "in folder",
			chk: &organizer.CheckResult{
				IsBookmarked: true,
				Bookmark:     &bookmarks.Node{Title: "Go"},
				Folder:       &folderindex.Entry{Path: "Development/Go"},
			},
			want: "https://go.dev is bookmarked as \"Go\" in Development/Go\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printCheck(&buf, "https://go.dev", tt.chk)
			assert.Equal(t, buf.String(), tt.want)
		})
	}
}

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"organize", "add", "check", "import", "export", "serve"} {
		assert.Assert(t, names[want], want)
	}
}
