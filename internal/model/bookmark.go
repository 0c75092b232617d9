package model

import "time"

// Bookmark is a saved page. FolderID nil means the bookmark sits at the top level.
type Bookmark struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	FolderID  *string   `json:"folderId"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewBookmarkParams holds parameters for creating a new Bookmark.
type NewBookmarkParams struct {
	Title    string
	URL      string
	FolderID *string
}

// NewBookmark creates a Bookmark with a generated id.
func NewBookmark(params NewBookmarkParams) Bookmark {
	return Bookmark{
		ID:        NewID(),
		Title:     params.Title,
		URL:       params.URL,
		FolderID:  params.FolderID,
		CreatedAt: time.Now(),
	}
}
