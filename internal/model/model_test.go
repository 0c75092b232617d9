package model_test

import (
	"errors"
	"testing"

	"github.com/nikbrunner/bmsort/internal/model"
)

func stringPtr(s string) *string { return &s }

func TestStore_GetFoldersInFolder(t *testing.T) {
	store := model.Store{
		Folders: []model.Folder{
			{ID: "f1", Title: "Development", ParentID: nil},
			{ID: "f2", Title: "React", ParentID: stringPtr("f1")},
			{ID: "f3", Title: "Design", ParentID: nil},
			{ID: "f4", Title: "Node", ParentID: stringPtr("f1")},
		},
		Bookmarks: []model.Bookmark{},
	}

	if got := len(store.GetFoldersInFolder(nil)); got != 2 {
		t.Errorf("expected 2 top level folders, got %d", got)
	}
	if got := len(store.GetFoldersInFolder(stringPtr("f1"))); got != 2 {
		t.Errorf("expected 2 nested folders in f1, got %d", got)
	}
	if got := len(store.GetFoldersInFolder(stringPtr("f3"))); got != 0 {
		t.Errorf("expected 0 folders in f3, got %d", got)
	}
}

func TestStore_GetBookmarksInFolder(t *testing.T) {
	f1ID := "f1"
	store := model.Store{
		Folders: []model.Folder{{ID: "f1", Title: "Development"}},
		Bookmarks: []model.Bookmark{
			{ID: "b1", Title: "Top Bookmark", URL: "https://example.com", FolderID: nil},
			{ID: "b2", Title: "Nested Bookmark", URL: "https://example.org", FolderID: &f1ID},
			{ID: "b3", Title: "Another Top", URL: "https://example.net", FolderID: nil},
		},
	}

	if got := len(store.GetBookmarksInFolder(nil)); got != 2 {
		t.Errorf("expected 2 top level bookmarks, got %d", got)
	}
	if got := len(store.GetBookmarksInFolder(&f1ID)); got != 1 {
		t.Errorf("expected 1 nested bookmark, got %d", got)
	}
}

func TestStore_ChildFolder(t *testing.T) {
	store := model.Store{
		Folders: []model.Folder{
			{ID: "f1", Title: "Tech"},
			{ID: "f2", Title: "Go", ParentID: stringPtr("f1")},
			{ID: "f3", Title: "Go"},
		},
	}

	child := store.ChildFolder(stringPtr("f1"), "Go")
	if child == nil || child.ID != "f2" {
		t.Fatalf("expected f2 under f1, got %+v", child)
	}
	top := store.ChildFolder(nil, "Go")
	if top == nil || top.ID != "f3" {
		t.Fatalf("expected top level f3, got %+v", top)
	}
	if store.ChildFolder(stringPtr("f1"), "Rust") != nil {
		t.Error("expected nil for missing child")
	}
}

func TestStore_MoveBookmark(t *testing.T) {
	store := model.NewStore()
	if err := store.AddFolder(model.Folder{ID: "f1", Title: "Reading"}); err != nil {
		t.Fatalf("AddFolder: %v", err)
	}
	if err := store.AddBookmark(model.Bookmark{ID: "b1", Title: "Go", URL: "https://go.dev"}); err != nil {
		t.Fatalf("AddBookmark: %v", err)
	}

	moved, err := store.MoveBookmark("b1", stringPtr("f1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if moved.FolderID == nil || *moved.FolderID != "f1" {
		t.Errorf("expected bookmark in f1, got %v", moved.FolderID)
	}

	if _, err := store.MoveBookmark("missing", nil); !errors.Is(err, model.ErrBookmarkNotFound) {
		t.Errorf("expected ErrBookmarkNotFound, got %v", err)
	}
	if _, err := store.MoveBookmark("b1", stringPtr("nope")); !errors.Is(err, model.ErrFolderNotFound) {
		t.Errorf("expected ErrFolderNotFound, got %v", err)
	}
}

func TestStore_AddFolder_RequiresParent(t *testing.T) {
	store := model.NewStore()
	err := store.AddFolder(model.Folder{ID: "f2", Title: "Orphan", ParentID: stringPtr("f1")})
	if !errors.Is(err, model.ErrFolderNotFound) {
		t.Fatalf("expected ErrFolderNotFound, got %v", err)
	}
}

// === Import Merge Tests ===

func TestStore_ImportMerge_SkipsDuplicateURLs(t *testing.T) {
	store := model.Store{
		Folders: []model.Folder{},
		Bookmarks: []model.Bookmark{
			{ID: "existing", Title: "Existing", URL: "https://example.com"},
		},
	}

	added, skipped := store.ImportMerge(nil, []model.Bookmark{
		{ID: "new1", Title: "Duplicate", URL: "https://example.com"},
		{ID: "new2", Title: "New Site", URL: "https://newsite.com"},
	})

	if added != 1 || skipped != 1 {
		t.Errorf("expected 1 added / 1 skipped, got %d / %d", added, skipped)
	}
	if len(store.Bookmarks) != 2 {
		t.Errorf("expected 2 bookmarks, got %d", len(store.Bookmarks))
	}
}

func TestStore_ImportMerge_ReusesFolderByTitle(t *testing.T) {
	store := model.Store{
		Folders: []model.Folder{
			{ID: "existing-folder", Title: "Development"},
		},
	}

	store.ImportMerge(
		[]model.Folder{
			{ID: "imported-folder", Title: "Development"},
			{ID: "imported-child", Title: "Go", ParentID: stringPtr("imported-folder")},
		},
		[]model.Bookmark{
			{ID: "b1", Title: "New Bookmark", URL: "https://new.com", FolderID: stringPtr("imported-child")},
		},
	)

	if len(store.Folders) != 2 {
		t.Fatalf("expected 2 folders (one reused), got %d", len(store.Folders))
	}
	child := store.ChildFolder(stringPtr("existing-folder"), "Go")
	if child == nil {
		t.Fatal("expected Go to be re-parented under the existing Development folder")
	}
	if got := store.Bookmarks[0].FolderID; got == nil || *got != child.ID {
		t.Errorf("bookmark should be in %s, got %v", child.ID, got)
	}
}
