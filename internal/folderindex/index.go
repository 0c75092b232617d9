// Package folderindex keeps a path-addressed view of the folder hierarchy
// for the duration of one run.
package folderindex

import (
	"context"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/nikbrunner/bmsort/internal/apperr"
	"github.com/nikbrunner/bmsort/internal/bookmarks"
	"github.com/nikbrunner/bmsort/internal/model"
)

// Separator joins folder titles into a path.
const Separator = "/"

// Entry is one folder as seen by the classifier and the resolver.
type Entry struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Path     string `json:"path"`
	ParentID string `json:"parentId"`
}

// CreateFolderFunc creates a folder titled title under parentID.
type CreateFolderFunc func(ctx context.Context, title, parentID string) (model.Folder, error)

// Index maps paths and ids to folder entries. It is owned by a single run
// and not safe for concurrent use.
type Index struct {
	entries []Entry
	byPath  map[string]int
	byID    map[string]int

	// shadowed holds folders whose path an earlier folder already took.
	shadowed map[string]Entry
}

// Build traverses the tree once and indexes every titled folder.
// Folders with an empty title are skipped and do not extend the path of
// their children.
func Build(root *bookmarks.Node) *Index {
	idx := &Index{
		byPath:   make(map[string]int),
		byID:     make(map[string]int),
		shadowed: make(map[string]Entry),
	}
	if root == nil {
		return idx
	}

	var walk func(n *bookmarks.Node, path string)
	walk = func(n *bookmarks.Node, path string) {
		if !n.IsFolder() {
			return
		}
		if n.ID != bookmarks.RootID && n.Title != "" {
			path = Join(path, n.Title)
			idx.insert(Entry{ID: n.ID, Title: n.Title, Path: path, ParentID: n.ParentID})
		}
		for _, c := range n.Children {
			walk(c, path)
		}
	}
	walk(root, "")
	return idx
}

// insert adds e. The first folder for a path wins path lookups; later ones
// stay reachable by id only.
func (idx *Index) insert(e Entry) {
	if _, ok := idx.byPath[e.Path]; ok {
		idx.shadowed[e.ID] = e
		return
	}
	idx.entries = append(idx.entries, e)
	i := len(idx.entries) - 1
	idx.byPath[e.Path] = i
	idx.byID[e.ID] = i
}

// Len returns the number of indexed folders.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Entries returns a copy of all entries in traversal order, followed by
// folders created during the run.
func (idx *Index) Entries() []Entry {
	out := make([]Entry, len(idx.entries))
	copy(out, idx.entries)
	return out
}

// FindByPath looks up a folder by exact path.
func (idx *Index) FindByPath(path string) (Entry, bool) {
	i, ok := idx.byPath[path]
	if !ok {
		return Entry{}, false
	}
	return idx.entries[i], true
}

// FindByID looks up a folder by id, including folders whose path is
// shadowed by an earlier sibling of the same title.
func (idx *Index) FindByID(id string) (Entry, bool) {
	if i, ok := idx.byID[id]; ok {
		return idx.entries[i], true
	}
	e, ok := idx.shadowed[id]
	return e, ok
}

// FindOrCreateByPath walks path from the top level, creating each missing
// folder through create. Created folders are indexed immediately, so a
// second call with the same path creates nothing.
func (idx *Index) FindOrCreateByPath(ctx context.Context, path string, create CreateFolderFunc) (Entry, error) {
	segments := Split(path)
	if len(segments) == 0 {
		return Entry{}, fmt.Errorf("%w: empty folder path %q", apperr.ErrMutation, path)
	}

	var current Entry
	parentID := bookmarks.RootID
	prefix := ""
	for _, title := range segments {
		prefix = Join(prefix, title)
		if e, ok := idx.FindByPath(prefix); ok {
			current = e
			parentID = e.ID
			continue
		}

		f, err := create(ctx, title, parentID)
		if err != nil {
			return Entry{}, fmt.Errorf("create folder %q: %w", prefix, err)
		}
		current = Entry{ID: f.ID, Title: f.Title, Path: prefix, ParentID: parentID}
		idx.insert(current)
		parentID = f.ID
	}
	return current, nil
}

// Suggest returns up to limit indexed paths that fuzzily resemble path,
// best first. It only feeds hints; lookups stay exact.
func (idx *Index) Suggest(path string, limit int) []string {
	if path == "" || limit <= 0 {
		return nil
	}
	matches := fuzzy.FindFrom(path, entryPaths(idx.entries))
	if len(matches) == 0 {
		segments := Split(path)
		if len(segments) > 1 {
			matches = fuzzy.FindFrom(segments[len(segments)-1], entryPaths(idx.entries))
		}
	}

	out := make([]string, 0, min(limit, len(matches)))
	for _, m := range matches {
		if len(out) == limit {
			break
		}
		out = append(out, m.Str)
	}
	return out
}

// entryPaths implements fuzzy.Source over entry paths.
type entryPaths []Entry

func (e entryPaths) String(i int) string {
	return e[i].Path
}

func (e entryPaths) Len() int {
	return len(e)
}

// Split splits a path on the separator and drops empty segments.
func Split(path string) []string {
	var segments []string
	for _, s := range strings.Split(path, Separator) {
		if s = strings.TrimSpace(s); s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// Join appends title to path.
func Join(path, title string) string {
	if path == "" {
		return title
	}
	return path + Separator + title
}
