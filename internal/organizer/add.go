package organizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/nikbrunner/bmsort/internal/ai"
	"github.com/nikbrunner/bmsort/internal/apperr"
	"github.com/nikbrunner/bmsort/internal/bookmarks"
	"github.com/nikbrunner/bmsort/internal/folderindex"
	"github.com/nikbrunner/bmsort/internal/model"
	"github.com/nikbrunner/bmsort/internal/placement"
)

// AddResult reports where a single bookmark was created.
type AddResult struct {
	Bookmark    model.Bookmark `json:"bookmark"`
	IsNewFolder bool           `json:"isNewFolder"`
	Path        string         `json:"path"`
	Reason      string         `json:"reason"`
}

// ValidatePage checks that page has a usable http(s) URL.
func ValidatePage(page ai.Page) error {
	err := validation.ValidateStruct(&page,
		validation.Field(&page.URL, validation.Required, is.URL,
			validation.By(func(any) error {
				lower := strings.ToLower(page.URL)
				if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
					return fmt.Errorf("must be an http or https URL")
				}
				return nil
			})),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
	}
	return nil
}

// AddBookmark asks the classifier for a folder for page, creating the
// recommended folder tree when needed, and creates the bookmark there.
func (o *Organizer) AddBookmark(ctx context.Context, page ai.Page) (*AddResult, error) {
	if err := ValidatePage(page); err != nil {
		return nil, err
	}
	if strings.TrimSpace(page.Title) == "" {
		page.Title = page.URL
	}
	if err := o.classifier.Ready(); err != nil {
		return nil, err
	}

	root, err := o.backend.Tree(ctx)
	if err != nil {
		return nil, err
	}
	idx := folderindex.Build(root)

	rec, err := o.classifier.ClassifyOne(ctx, page, aiFolders(idx))
	if err != nil {
		return nil, err
	}

	resolver := placement.NewResolver(idx, o.backend.CreateFolder, o.rootFolder)
	target, err := resolver.Resolve(ctx, rec)
	if err != nil {
		return nil, err
	}

	bm, err := o.backend.CreateBookmark(ctx, page.Title, page.URL, target.FolderID)
	if err != nil {
		return nil, err
	}

	if f, ok := o.backend.(flusher); ok {
		if err := f.Flush(); err != nil {
			return nil, err
		}
	}

	o.logger.Info("add: bookmark created",
		slog.String("title", bm.Title),
		slog.String("path", target.Path),
		slog.Bool("newFolder", target.IsNewFolder))

	return &AddResult{
		Bookmark:    bm,
		IsNewFolder: target.IsNewFolder,
		Path:        target.Path,
		Reason:      target.Reason,
	}, nil
}

// CheckResult reports whether a URL is already bookmarked.
type CheckResult struct {
	IsBookmarked bool               `json:"isBookmarked"`
	Bookmark     *bookmarks.Node    `json:"bookmark,omitempty"`
	Folder       *folderindex.Entry `json:"folder,omitempty"`
}

// Check looks up url in the backend. Folder is the parent of the first
// match, nil for a top level bookmark.
func (o *Organizer) Check(ctx context.Context, url string) (*CheckResult, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("%w: url is empty", apperr.ErrInvalid)
	}

	matches, err := o.backend.Search(ctx, bookmarks.Query{URL: url})
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return &CheckResult{}, nil
	}

	res := &CheckResult{IsBookmarked: true, Bookmark: &matches[0]}
	if matches[0].ParentID == bookmarks.RootID {
		return res, nil
	}

	root, err := o.backend.Tree(ctx)
	if err != nil {
		return nil, err
	}
	if e, ok := folderindex.Build(root).FindByID(matches[0].ParentID); ok {
		res.Folder = &e
	}
	return res, nil
}
