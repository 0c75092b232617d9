package model

import (
	"errors"
	"fmt"
)

var (
	ErrBookmarkNotFound = errors.New("bookmark not found")
	ErrFolderNotFound   = errors.New("folder not found")
)

// Store holds all bookmarks and folders.
type Store struct {
	Folders   []Folder   `json:"folders"`
	Bookmarks []Bookmark `json:"bookmarks"`
}

// NewStore creates an empty Store with initialized slices.
func NewStore() *Store {
	return &Store{
		Folders:   []Folder{},
		Bookmarks: []Bookmark{},
	}
}

// GetFoldersInFolder returns folders with the given parent ID.
// Pass nil for top level folders.
func (s *Store) GetFoldersInFolder(parentID *string) []Folder {
	var result []Folder
	for _, f := range s.Folders {
		if ptrEqual(f.ParentID, parentID) {
			result = append(result, f)
		}
	}
	return result
}

// GetBookmarksInFolder returns bookmarks in the given folder.
// Pass nil for top level bookmarks.
func (s *Store) GetBookmarksInFolder(folderID *string) []Bookmark {
	var result []Bookmark
	for _, b := range s.Bookmarks {
		if ptrEqual(b.FolderID, folderID) {
			result = append(result, b)
		}
	}
	return result
}

// GetFolderByID finds a folder by ID, returns nil if not found.
func (s *Store) GetFolderByID(id string) *Folder {
	for i := range s.Folders {
		if s.Folders[i].ID == id {
			return &s.Folders[i]
		}
	}
	return nil
}

// GetBookmarkByID finds a bookmark by ID, returns nil if not found.
func (s *Store) GetBookmarkByID(id string) *Bookmark {
	for i := range s.Bookmarks {
		if s.Bookmarks[i].ID == id {
			return &s.Bookmarks[i]
		}
	}
	return nil
}

// ChildFolder returns the first folder under parentID with the given title.
func (s *Store) ChildFolder(parentID *string, title string) *Folder {
	for i := range s.Folders {
		if s.Folders[i].Title == title && ptrEqual(s.Folders[i].ParentID, parentID) {
			return &s.Folders[i]
		}
	}
	return nil
}

// HasBookmarkURL reports whether any bookmark uses url.
func (s *Store) HasBookmarkURL(url string) bool {
	for _, b := range s.Bookmarks {
		if b.URL == url {
			return true
		}
	}
	return false
}

// AddFolder appends a folder. The parent, when set, must exist.
func (s *Store) AddFolder(f Folder) error {
	if f.ParentID != nil && s.GetFolderByID(*f.ParentID) == nil {
		return fmt.Errorf("%w: parent %s", ErrFolderNotFound, *f.ParentID)
	}
	s.Folders = append(s.Folders, f)
	return nil
}

// AddBookmark appends a bookmark. The folder, when set, must exist.
func (s *Store) AddBookmark(b Bookmark) error {
	if b.FolderID != nil && s.GetFolderByID(*b.FolderID) == nil {
		return fmt.Errorf("%w: %s", ErrFolderNotFound, *b.FolderID)
	}
	s.Bookmarks = append(s.Bookmarks, b)
	return nil
}

// MoveBookmark re-parents a bookmark. folderID nil moves it to the top level.
func (s *Store) MoveBookmark(id string, folderID *string) (*Bookmark, error) {
	b := s.GetBookmarkByID(id)
	if b == nil {
		return nil, fmt.Errorf("%w: %s", ErrBookmarkNotFound, id)
	}
	if folderID != nil && s.GetFolderByID(*folderID) == nil {
		return nil, fmt.Errorf("%w: %s", ErrFolderNotFound, *folderID)
	}
	if folderID != nil {
		target := *folderID
		b.FolderID = &target
	} else {
		b.FolderID = nil
	}
	return b, nil
}

// ImportMerge merges imported folders and bookmarks into the store.
// Folders are reused when a folder with the same title exists under the same
// (remapped) parent; bookmarks whose URL already exists are skipped.
// Imported folders must be ordered parents first.
func (s *Store) ImportMerge(folders []Folder, bookmarks []Bookmark) (added, skipped int) {
	idMap := make(map[string]string, len(folders))

	remap := func(id *string) *string {
		if id == nil {
			return nil
		}
		if mapped, ok := idMap[*id]; ok {
			return &mapped
		}
		return nil
	}

	for _, f := range folders {
		parent := remap(f.ParentID)
		if existing := s.ChildFolder(parent, f.Title); existing != nil {
			idMap[f.ID] = existing.ID
			continue
		}
		f.ParentID = parent
		s.Folders = append(s.Folders, f)
		idMap[f.ID] = f.ID
	}

	for _, b := range bookmarks {
		if s.HasBookmarkURL(b.URL) {
			skipped++
			continue
		}
		b.FolderID = remap(b.FolderID)
		s.Bookmarks = append(s.Bookmarks, b)
		added++
	}

	return added, skipped
}

// ptrEqual compares two string pointers for equality.
func ptrEqual(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
