// Package placement turns classifier recommendations into concrete folder
// targets.
package placement

import (
	"context"
	"fmt"
	"strings"

	"github.com/nikbrunner/bmsort/internal/ai"
	"github.com/nikbrunner/bmsort/internal/apperr"
	"github.com/nikbrunner/bmsort/internal/folderindex"
)

const maxSuggestions = 3

// Result is where an item was placed and why.
type Result struct {
	FolderID    string `json:"folderId"`
	IsNewFolder bool   `json:"isNewFolder"`
	Path        string `json:"path"`
	Reason      string `json:"reason"`
}

// Resolver resolves recommendations against one run's folder index.
type Resolver struct {
	idx        *folderindex.Index
	create     folderindex.CreateFolderFunc
	rootFolder string
}

// NewResolver creates a resolver. New folder trees are created under
// rootFolder, or at the top level when it is empty. create may be nil when
// only existing targets are resolved.
func NewResolver(idx *folderindex.Index, create folderindex.CreateFolderFunc, rootFolder string) *Resolver {
	return &Resolver{
		idx:        idx,
		create:     create,
		rootFolder: strings.Join(folderindex.Split(rootFolder), folderindex.Separator),
	}
}

// ResolveExisting looks up an existing folder by exact path. It never
// creates folders.
func (r *Resolver) ResolveExisting(path, reason string) (Result, error) {
	e, ok := r.idx.FindByPath(path)
	if !ok {
		return Result{}, r.notFound(path)
	}
	return Result{FolderID: e.ID, Path: e.Path, Reason: reason}, nil
}

// Resolve handles a single-page recommendation: an existing path must be
// indexed, a new path is found or created.
func (r *Resolver) Resolve(ctx context.Context, rec *ai.Recommendation) (Result, error) {
	if rec.Existing() {
		return r.ResolveExisting(rec.ExistingPath, rec.Reason)
	}
	if r.create == nil {
		return Result{}, fmt.Errorf("%w: folder creation not available", apperr.ErrMutation)
	}

	path := r.newFolderPath(rec.NewPath)
	_, existed := r.idx.FindByPath(path)

	e, err := r.idx.FindOrCreateByPath(ctx, path, r.create)
	if err != nil {
		return Result{}, err
	}
	return Result{FolderID: e.ID, IsNewFolder: !existed, Path: e.Path, Reason: rec.Reason}, nil
}

func (r *Resolver) newFolderPath(path string) string {
	clean := strings.Join(folderindex.Split(path), folderindex.Separator)
	if r.rootFolder == "" || clean == r.rootFolder || strings.HasPrefix(clean, r.rootFolder+folderindex.Separator) {
		return clean
	}
	return folderindex.Join(r.rootFolder, clean)
}

func (r *Resolver) notFound(path string) error {
	hints := r.idx.Suggest(path, maxSuggestions)
	if len(hints) == 0 {
		return fmt.Errorf("%w: folder %q does not exist", apperr.ErrTargetNotFound, path)
	}
	return fmt.Errorf("%w: folder %q does not exist (closest: %s)",
		apperr.ErrTargetNotFound, path, strings.Join(hints, ", "))
}
