package bookmarks

import (
	"context"

	"github.com/nikbrunner/bmsort/internal/model"
)

// Query selects nodes by exact field match. Empty fields match anything;
// a nil ParentID matches any parent while a pointer to RootID selects the top level.
type Query struct {
	Title    string
	URL      string
	ParentID *string
}

// Backend is the bookmark tree the pipeline reads and mutates.
// Reads observe earlier writes from the same process immediately.
type Backend interface {
	Tree(ctx context.Context) (*Node, error)
	CreateFolder(ctx context.Context, title, parentID string) (model.Folder, error)
	CreateBookmark(ctx context.Context, title, url, parentID string) (model.Bookmark, error)
	Move(ctx context.Context, id, parentID string) (model.Bookmark, error)
	Search(ctx context.Context, q Query) ([]Node, error)
}
