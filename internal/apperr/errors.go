// Package apperr defines the error categories shared by the organize pipeline.
package apperr

import "errors"

var (
	// ErrConfig: missing or invalid classifier configuration. Fatal, checked before a run starts.
	ErrConfig = errors.New("config error")
	// ErrTransport: network or endpoint failure talking to the classifier.
	ErrTransport = errors.New("transport error")
	// ErrSchema: classifier response not parseable or not the expected shape.
	ErrSchema = errors.New("schema error")
	// ErrUpstream: classifier reported a non-success status.
	ErrUpstream = errors.New("upstream error")
	// ErrTargetNotFound: recommended folder path is not in the folder index.
	ErrTargetNotFound = errors.New("target folder not found")
	// ErrMutation: bookmark backend rejected a create or move.
	ErrMutation = errors.New("mutation rejected")
	// ErrTraversal: bookmark tree could not be read.
	ErrTraversal = errors.New("traversal error")

	ErrRunActive = errors.New("an organize run is already active")
	ErrNotFound  = errors.New("not found")
	ErrInvalid   = errors.New("invalid input")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrConfig, "config"},
	{ErrTransport, "transport"},
	{ErrSchema, "schema"},
	{ErrUpstream, "upstream"},
	{ErrTargetNotFound, "target-not-found"},
	{ErrMutation, "mutation"},
	{ErrTraversal, "traversal"},
	{ErrRunActive, "run-active"},
	{ErrNotFound, "not-found"},
	{ErrInvalid, "invalid"},
}

// Kind returns a short label for the category of err, or "unknown".
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "unknown"
}
