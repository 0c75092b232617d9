// Package bookmarks exposes the bookmark tree to the organize pipeline:
// an owned tree snapshot, flat traversals over it and the Backend
// operations that mutate it.
package bookmarks

import (
	"time"

	"github.com/nikbrunner/bmsort/internal/model"
)

// RootID is the id of the synthetic tree root. Its children are the top level
// folders and bookmarks.
const RootID = ""

// Node is one folder or bookmark in a tree snapshot. Folders have an empty URL.
type Node struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url,omitempty"`
	ParentID  string    `json:"parentId"`
	DateAdded time.Time `json:"dateAdded"`
	Children  []*Node   `json:"children,omitempty"`
}

// IsFolder reports whether the node is a folder.
func (n *Node) IsFolder() bool {
	return n.URL == ""
}

// Record is a flat view of a bookmark inside a run.
type Record struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	ParentID  string    `json:"parentId"`
	DateAdded time.Time `json:"dateAdded"`
}

// BuildTree assembles a tree snapshot from the store. Folders come before
// bookmarks at every level, each in store order.
func BuildTree(store *model.Store) *Node {
	root := &Node{ID: RootID}
	var fill func(parent *Node, parentID *string)
	fill = func(parent *Node, parentID *string) {
		for _, f := range store.GetFoldersInFolder(parentID) {
			child := &Node{
				ID:        f.ID,
				Title:     f.Title,
				ParentID:  parent.ID,
				DateAdded: f.CreatedAt,
			}
			parent.Children = append(parent.Children, child)
			id := f.ID
			fill(child, &id)
		}
		for _, b := range store.GetBookmarksInFolder(parentID) {
			parent.Children = append(parent.Children, &Node{
				ID:        b.ID,
				Title:     b.Title,
				URL:       b.URL,
				ParentID:  parent.ID,
				DateAdded: b.CreatedAt,
			})
		}
	}
	fill(root, nil)
	return root
}

// Flatten returns every bookmark in the tree in pre-order.
func Flatten(root *Node) []Record {
	var records []Record
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.URL != "" {
			records = append(records, Record{
				ID:        n.ID,
				Title:     n.Title,
				URL:       n.URL,
				ParentID:  n.ParentID,
				DateAdded: n.DateAdded,
			})
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return records
}
