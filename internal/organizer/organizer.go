// Package organizer runs the batch classification-and-placement pipeline
// and the single bookmark add flow.
package organizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nikbrunner/bmsort/internal/ai"
	"github.com/nikbrunner/bmsort/internal/apperr"
	"github.com/nikbrunner/bmsort/internal/bookmarks"
	"github.com/nikbrunner/bmsort/internal/folderindex"
	"github.com/nikbrunner/bmsort/internal/placement"
	"github.com/nikbrunner/bmsort/internal/runctl"
)

// Classifier is the gateway to the external classifier.
type Classifier interface {
	Ready() error
	ClassifyBatch(ctx context.Context, items []ai.BatchItem, folders []ai.Folder) (*ai.BatchRecommendation, error)
	ClassifyOne(ctx context.Context, page ai.Page, folders []ai.Folder) (*ai.Recommendation, error)
}

// flusher is implemented by backends that buffer mutations.
type flusher interface {
	Flush() error
}

// Params configures an Organizer.
type Params struct {
	Backend    bookmarks.Backend
	Classifier Classifier
	Controller *runctl.Controller
	Logger     *slog.Logger
	// Retries is the number of extra attempts for a failed batch call.
	Retries    int
	RetryDelay time.Duration
	// RootFolder is the path new folder trees are created under by AddBookmark.
	RootFolder string
}

// Organizer drives organize runs against one backend.
type Organizer struct {
	backend    bookmarks.Backend
	classifier Classifier
	ctl        *runctl.Controller
	logger     *slog.Logger
	retries    int
	retryDelay time.Duration
	rootFolder string
}

// New creates an Organizer. A nil Controller gets a private one.
func New(p Params) *Organizer {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctl := p.Controller
	if ctl == nil {
		ctl = runctl.NewController(logger)
	}
	return &Organizer{
		backend:    p.Backend,
		classifier: p.Classifier,
		ctl:        ctl,
		logger:     logger,
		retries:    max(p.Retries, 0),
		retryDelay: p.RetryDelay,
		rootFolder: p.RootFolder,
	}
}

// Controller returns the run controller.
func (o *Organizer) Controller() *runctl.Controller {
	return o.ctl
}

// Summary is the outcome of an organize run.
type Summary struct {
	Total      int          `json:"total" yaml:"total"`
	Success    int          `json:"success" yaml:"success"`
	Failure    int          `json:"failure" yaml:"failure"`
	Processed  int          `json:"processed" yaml:"processed"`
	Stopped    bool         `json:"stopped" yaml:"stopped"`
	State      runctl.State `json:"state" yaml:"state"`
	Message    string       `json:"message" yaml:"message"`
	Logs       []string     `json:"logs" yaml:"logs"`
	StartedAt  time.Time    `json:"startedAt" yaml:"startedAt"`
	FinishedAt time.Time    `json:"finishedAt" yaml:"finishedAt"`
}

// OrganizeAll reads the whole tree from the backend and organizes every
// eligible bookmark in it.
func (o *Organizer) OrganizeAll(ctx context.Context) (*Summary, error) {
	if err := o.begin(); err != nil {
		return nil, err
	}
	defer o.failOnPanic()

	root, err := o.backend.Tree(ctx)
	if err != nil {
		o.ctl.End(runctl.StateFailed)
		if !errors.Is(err, apperr.ErrTraversal) {
			err = fmt.Errorf("%w: %v", apperr.ErrTraversal, err)
		}
		o.logger.Error("organize: cannot read bookmark tree", slog.String("error", err.Error()))
		return nil, err
	}

	return o.run(ctx, bookmarks.Flatten(root), folderindex.Build(root)), nil
}

// Organize runs the pipeline over records using idx as the folder snapshot.
// It blocks until the run completes or stops.
func (o *Organizer) Organize(ctx context.Context, records []bookmarks.Record, idx *folderindex.Index) (*Summary, error) {
	if err := o.begin(); err != nil {
		return nil, err
	}
	defer o.failOnPanic()
	return o.run(ctx, records, idx), nil
}

// failOnPanic ends a run that panicked as failed, so the next run can start,
// and re-panics.
func (o *Organizer) failOnPanic() {
	r := recover()
	if r == nil {
		return
	}
	if o.ctl.IsActive() {
		o.ctl.End(runctl.StateFailed)
	}
	o.logger.Error("organize: run panicked", slog.Any("panic", r))
	panic(r)
}

// begin applies the start guard: one active run and configured credentials.
func (o *Organizer) begin() error {
	if o.ctl.IsActive() {
		return apperr.ErrRunActive
	}
	if err := o.classifier.Ready(); err != nil {
		return err
	}
	return o.ctl.Begin()
}

func (o *Organizer) run(ctx context.Context, records []bookmarks.Record, idx *folderindex.Index) *Summary {
	items := Filter(records)
	batches := Batches(items, BatchSize)
	resolver := placement.NewResolver(idx, nil, "")

	sum := &Summary{
		Total:     len(items),
		State:     runctl.StateRunning,
		Logs:      []string{},
		StartedAt: time.Now(),
	}
	o.logger.Info("organize: started",
		slog.Int("bookmarks", len(records)),
		slog.Int("eligible", sum.Total),
		slog.Int("batches", len(batches)),
		slog.Int("folders", idx.Len()))

	// Work already dispatched finishes even when ctx is cancelled.
	callCtx := context.WithoutCancel(ctx)

	for i, batch := range batches {
		current := i + 1
		if o.stopRequested(ctx) {
			sum.Stopped = true
			break
		}

		o.ctl.Progress(progress(sum, current, len(batches), percent(sum.Processed, sum.Total)))

		rec, err := o.classifyBatch(ctx, callCtx, batch, idx)
		if err != nil {
			if errors.Is(err, errStopped) {
				sum.Stopped = true
				break
			}
			sum.Failure += len(batch)
			sum.Processed += len(batch)
			o.record(sum, slog.LevelWarn, fmt.Sprintf("✗ batch %d/%d failed (%s): %v", current, len(batches), apperr.Kind(err), err))
			if o.stopRequested(ctx) {
				sum.Stopped = true
				break
			}
			continue
		}

		o.apply(callCtx, sum, batch, rec, resolver)

		if o.stopRequested(ctx) {
			sum.Stopped = true
			break
		}
	}

	return o.finish(sum, len(batches))
}

var errStopped = errors.New("stopped before classifier call")

const backoffPoll = 50 * time.Millisecond

// classifyBatch calls the classifier with up to o.retries extra attempts.
// The stop flag is checked before every attempt.
func (o *Organizer) classifyBatch(ctx, callCtx context.Context, batch []bookmarks.Record, idx *folderindex.Index) (*ai.BatchRecommendation, error) {
	items := make([]ai.BatchItem, len(batch))
	for i, r := range batch {
		parent, _ := idx.FindByID(r.ParentID)
		items[i] = ai.BatchItem{
			Title:       r.Title,
			URL:         r.URL,
			ID:          r.ID,
			ParentID:    r.ParentID,
			ParentTitle: parent.Title,
		}
	}
	folders := aiFolders(idx)

	var lastErr error
	for attempt := 0; attempt <= o.retries; attempt++ {
		if o.stopRequested(ctx) {
			if lastErr != nil {
				return nil, lastErr
			}
			return nil, errStopped
		}
		if attempt > 0 {
			o.logger.Info("organize: retrying batch",
				slog.Int("attempt", attempt+1),
				slog.String("error", lastErr.Error()))
			if !o.backoff(ctx) {
				return nil, lastErr
			}
		}

		rec, err := o.classifier.ClassifyBatch(callCtx, items, folders)
		if err == nil && rec == nil {
			err = fmt.Errorf("%w: classifier returned no recommendations", apperr.ErrSchema)
		}
		if err == nil {
			return rec, nil
		}
		lastErr = err
		if !ai.IsRetryable(err) {
			break
		}
	}
	return nil, lastErr
}

// backoff waits retryDelay before the next attempt. It returns false when
// ctx is cancelled or a stop is requested during the wait.
func (o *Organizer) backoff(ctx context.Context) bool {
	if o.retryDelay <= 0 {
		return true
	}
	deadline := time.After(o.retryDelay)
	tick := time.NewTicker(backoffPoll)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			o.ctl.RequestStop()
			return false
		case <-deadline:
			return !o.stopRequested(ctx)
		case <-tick.C:
			if o.ctl.StopRequested() {
				return false
			}
		}
	}
}

// apply resolves and moves every item of a classified batch. Each item
// succeeds or fails on its own.
func (o *Organizer) apply(ctx context.Context, sum *Summary, batch []bookmarks.Record, rec *ai.BatchRecommendation, resolver *placement.Resolver) {
	if extra := len(rec.Recommendations) - len(batch); extra > 0 {
		o.logger.Debug("organize: ignoring extra recommendations", slog.Int("extra", extra))
	}

	for i, item := range batch {
		sum.Processed++

		if i >= len(rec.Recommendations) {
			sum.Failure++
			o.record(sum, slog.LevelWarn, fmt.Sprintf("✗ %q: no recommendation returned", item.Title))
			continue
		}
		r := rec.Recommendations[i]

		target, err := resolver.ResolveExisting(r.ExistingPath, r.Reason)
		if err != nil {
			sum.Failure++
			o.record(sum, slog.LevelWarn, fmt.Sprintf("✗ %q: %v", item.Title, err))
			continue
		}

		if item.ParentID == target.FolderID {
			sum.Success++
			o.record(sum, slog.LevelInfo, fmt.Sprintf("✓ %q already in %q", item.Title, target.Path))
			continue
		}

		if _, err := o.backend.Move(ctx, item.ID, target.FolderID); err != nil {
			if !errors.Is(err, apperr.ErrMutation) {
				err = fmt.Errorf("%w: %v", apperr.ErrMutation, err)
			}
			sum.Failure++
			o.record(sum, slog.LevelWarn, fmt.Sprintf("✗ %q: %v", item.Title, err))
			continue
		}

		sum.Success++
		o.record(sum, slog.LevelInfo, fmt.Sprintf("✓ moved %q to %q: %s", item.Title, target.Path, target.Reason))
	}
}

func (o *Organizer) finish(sum *Summary, totalBatches int) *Summary {
	sum.FinishedAt = time.Now()
	pct := 100
	if sum.Stopped {
		sum.State = runctl.StateStopped
		sum.Message = fmt.Sprintf("Organize stopped: %d succeeded, %d failed, %d of %d processed",
			sum.Success, sum.Failure, sum.Processed, sum.Total)
		pct = percent(sum.Processed, sum.Total)
	} else {
		sum.State = runctl.StateCompleted
		sum.Message = fmt.Sprintf("Organize completed: %d succeeded, %d failed", sum.Success, sum.Failure)
	}

	currentBatch := (sum.Processed + BatchSize - 1) / BatchSize
	o.ctl.Progress(progress(sum, currentBatch, totalBatches, pct))

	if f, ok := o.backend.(flusher); ok {
		if err := f.Flush(); err != nil {
			o.record(sum, slog.LevelError, fmt.Sprintf("✗ saving bookmarks failed: %v", err))
		}
	}

	o.ctl.End(sum.State)
	o.logger.Info("organize: finished",
		slog.String("state", string(sum.State)),
		slog.Int("total", sum.Total),
		slog.Int("success", sum.Success),
		slog.Int("failure", sum.Failure),
		slog.Duration("elapsed", sum.FinishedAt.Sub(sum.StartedAt)))
	return sum
}

// stopRequested reports a pending stop. A cancelled ctx counts as one.
func (o *Organizer) stopRequested(ctx context.Context) bool {
	if ctx.Err() != nil {
		o.ctl.RequestStop()
		return true
	}
	return o.ctl.StopRequested()
}

// record appends a log line to the summary and publishes it.
func (o *Organizer) record(sum *Summary, level slog.Level, line string) {
	sum.Logs = append(sum.Logs, line)
	o.logger.Log(context.Background(), level, line)
	o.ctl.Log(line)
}

func progress(sum *Summary, current, total, pct int) runctl.Progress {
	return runctl.Progress{
		PercentComplete: pct,
		CurrentBatch:    current,
		TotalBatches:    total,
		Processed:       sum.Processed,
		SuccessCount:    sum.Success,
		FailureCount:    sum.Failure,
	}
}

func percent(done, total int) int {
	if total == 0 {
		return 100
	}
	return done * 100 / total
}

func aiFolders(idx *folderindex.Index) []ai.Folder {
	entries := idx.Entries()
	folders := make([]ai.Folder, len(entries))
	for i, e := range entries {
		folders[i] = ai.Folder{ID: e.ID, Title: e.Title, Path: e.Path}
	}
	return folders
}
