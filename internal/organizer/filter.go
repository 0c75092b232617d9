package organizer

import (
	"strings"

	"github.com/nikbrunner/bmsort/internal/bookmarks"
)

// BatchSize is the number of bookmarks sent to the classifier per call.
const BatchSize = 5

// internalSchemes mark browser and extension pages that are never organized.
var internalSchemes = []string{
	"chrome://",
	"chrome-extension://",
	"edge://",
	"brave://",
	"opera://",
	"vivaldi://",
	"about:",
	"moz-extension://",
	"safari-extension://",
}

// Eligible reports whether a bookmark takes part in an organize run: it
// needs a title and an http(s) URL that is not a browser-internal page.
func Eligible(r bookmarks.Record) bool {
	if strings.TrimSpace(r.Title) == "" {
		return false
	}
	url := strings.ToLower(strings.TrimSpace(r.URL))
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return false
	}
	for _, scheme := range internalSchemes {
		if strings.Contains(url, scheme) {
			return false
		}
	}
	return true
}

// Filter returns the eligible records in their original order.
func Filter(records []bookmarks.Record) []bookmarks.Record {
	out := make([]bookmarks.Record, 0, len(records))
	for _, r := range records {
		if Eligible(r) {
			out = append(out, r)
		}
	}
	return out
}

// Batches splits records into consecutive slices of at most size items.
func Batches(records []bookmarks.Record, size int) [][]bookmarks.Record {
	if size <= 0 {
		size = BatchSize
	}
	batches := make([][]bookmarks.Record, 0, (len(records)+size-1)/size)
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		batches = append(batches, records[start:end])
	}
	return batches
}
