package bookmarks

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/nikbrunner/bmsort/internal/apperr"
	"github.com/nikbrunner/bmsort/internal/model"
	"github.com/nikbrunner/bmsort/internal/storage"
)

// StoreBackend implements Backend on an in-memory model.Store.
// Mutations stay in memory until Flush writes them to the storage.
type StoreBackend struct {
	mu      sync.RWMutex
	store   *model.Store
	storage storage.Storage // nil = memory only
	dirty   bool
}

// NewStoreBackend wraps an already loaded store.
func NewStoreBackend(store *model.Store, st storage.Storage) *StoreBackend {
	if store == nil {
		store = model.NewStore()
	}
	return &StoreBackend{store: store, storage: st}
}

// OpenStoreBackend loads the store from st and wraps it.
func OpenStoreBackend(st storage.Storage) (*StoreBackend, error) {
	store, err := st.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: load bookmarks: %v", apperr.ErrTraversal, err)
	}
	return NewStoreBackend(store, st), nil
}

// Tree returns a fresh snapshot of the whole tree.
func (b *StoreBackend) Tree(ctx context.Context) (*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrTraversal, err)
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return BuildTree(b.store), nil
}

// CreateFolder adds a folder under parentID (RootID for the top level).
func (b *StoreBackend) CreateFolder(ctx context.Context, title, parentID string) (model.Folder, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Folder{}, fmt.Errorf("%w: folder title is empty", apperr.ErrMutation)
	}
	if err := ctx.Err(); err != nil {
		return model.Folder{}, fmt.Errorf("%w: %v", apperr.ErrMutation, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	folder := model.NewFolder(model.NewFolderParams{
		Title:    title,
		ParentID: model.StringPtr(parentID),
	})
	if err := b.store.AddFolder(folder); err != nil {
		return model.Folder{}, fmt.Errorf("%w: create folder %q: %v", apperr.ErrMutation, title, err)
	}
	b.dirty = true
	return folder, nil
}

// CreateBookmark adds a bookmark under parentID.
func (b *StoreBackend) CreateBookmark(ctx context.Context, title, url, parentID string) (model.Bookmark, error) {
	if strings.TrimSpace(url) == "" {
		return model.Bookmark{}, fmt.Errorf("%w: bookmark url is empty", apperr.ErrMutation)
	}
	if err := ctx.Err(); err != nil {
		return model.Bookmark{}, fmt.Errorf("%w: %v", apperr.ErrMutation, err)
	}
	if title == "" {
		title = url
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	bookmark := model.NewBookmark(model.NewBookmarkParams{
		Title:    title,
		URL:      url,
		FolderID: model.StringPtr(parentID),
	})
	if err := b.store.AddBookmark(bookmark); err != nil {
		return model.Bookmark{}, fmt.Errorf("%w: create bookmark %q: %v", apperr.ErrMutation, title, err)
	}
	b.dirty = true
	return bookmark, nil
}

// Move re-parents bookmark id under parentID.
func (b *StoreBackend) Move(ctx context.Context, id, parentID string) (model.Bookmark, error) {
	if err := ctx.Err(); err != nil {
		return model.Bookmark{}, fmt.Errorf("%w: %v", apperr.ErrMutation, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	moved, err := b.store.MoveBookmark(id, model.StringPtr(parentID))
	if err != nil {
		return model.Bookmark{}, fmt.Errorf("%w: move %s: %v", apperr.ErrMutation, id, err)
	}
	b.dirty = true
	return *moved, nil
}

// Search returns folders and bookmarks matching every set field of q.
func (b *StoreBackend) Search(ctx context.Context, q Query) ([]Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	matches := func(title, url, parent string) bool {
		if q.Title != "" && q.Title != title {
			return false
		}
		if q.URL != "" && q.URL != url {
			return false
		}
		if q.ParentID != nil && *q.ParentID != parent {
			return false
		}
		return true
	}

	var results []Node
	if q.URL == "" {
		for _, f := range b.store.Folders {
			if matches(f.Title, "", model.Deref(f.ParentID)) {
				results = append(results, Node{
					ID:        f.ID,
					Title:     f.Title,
					ParentID:  model.Deref(f.ParentID),
					DateAdded: f.CreatedAt,
				})
			}
		}
	}
	for _, bm := range b.store.Bookmarks {
		if matches(bm.Title, bm.URL, model.Deref(bm.FolderID)) {
			results = append(results, Node{
				ID:        bm.ID,
				Title:     bm.Title,
				URL:       bm.URL,
				ParentID:  model.Deref(bm.FolderID),
				DateAdded: bm.CreatedAt,
			})
		}
	}
	return results, nil
}

// Folder returns the folder with id, or false.
func (b *StoreBackend) Folder(id string) (model.Folder, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	f := b.store.GetFolderByID(id)
	if f == nil {
		return model.Folder{}, false
	}
	return *f, true
}

// Snapshot returns a deep copy of the current store.
func (b *StoreBackend) Snapshot() *model.Store {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return copyStore(b.store)
}

// Merge imports folders and bookmarks, see model.Store.ImportMerge.
func (b *StoreBackend) Merge(folders []model.Folder, bms []model.Bookmark) (added, skipped int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	added, skipped = b.store.ImportMerge(folders, bms)
	if added > 0 || len(folders) > 0 {
		b.dirty = true
	}
	return added, skipped
}

// Flush writes pending mutations to the storage.
func (b *StoreBackend) Flush() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.storage == nil || !b.dirty {
		return nil
	}
	if err := b.storage.Save(b.store); err != nil {
		return fmt.Errorf("save bookmarks: %w", err)
	}
	b.dirty = false
	return nil
}

// Reload replaces the in-memory store with the stored one.
// Unflushed mutations are discarded.
func (b *StoreBackend) Reload() error {
	if b.storage == nil {
		return nil
	}
	store, err := b.storage.Load()
	if err != nil {
		return fmt.Errorf("%w: reload bookmarks: %v", apperr.ErrTraversal, err)
	}
	b.mu.Lock()
	b.store = store
	b.dirty = false
	b.mu.Unlock()
	return nil
}

// Dirty reports whether there are unflushed mutations.
func (b *StoreBackend) Dirty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dirty
}

func copyStore(s *model.Store) *model.Store {
	out := &model.Store{
		Folders:   make([]model.Folder, len(s.Folders)),
		Bookmarks: make([]model.Bookmark, len(s.Bookmarks)),
	}
	for i, f := range s.Folders {
		if f.ParentID != nil {
			p := *f.ParentID
			f.ParentID = &p
		}
		out.Folders[i] = f
	}
	for i, bm := range s.Bookmarks {
		if bm.FolderID != nil {
			p := *bm.FolderID
			bm.FolderID = &p
		}
		out.Bookmarks[i] = bm
	}
	return out
}
