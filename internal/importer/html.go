// Package importer reads browser bookmark exports.
package importer

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/nikbrunner/bmsort/internal/model"
)

// ParseFile parses the Netscape bookmark HTML file at path.
func ParseFile(path string) ([]model.Folder, []model.Bookmark, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	folders, bms, err := ParseHTMLBookmarks(f)
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return folders, bms, nil
}

// ParseHTMLBookmarks parses Netscape bookmark HTML and returns folders and
// bookmarks with fresh ids. Parents always precede their children.
func ParseHTMLBookmarks(r io.Reader) ([]model.Folder, []model.Bookmark, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, nil, err
	}

	var folders []model.Folder
	var bookmarks []model.Bookmark

	var stack []*string // open folder ids, empty = top level
	var pending *model.Folder

	parent := func() *string {
		if len(stack) == 0 {
			return nil
		}
		return stack[len(stack)-1]
	}

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				title := textContent(n)
				if title == "" {
					return
				}
				folder := model.NewFolder(model.NewFolderParams{
					Title:    title,
					ParentID: parent(),
				})
				if ts, ok := addDate(n); ok {
					folder.CreatedAt = ts
				}
				folders = append(folders, folder)
				// Pushed when its DL opens.
				pending = &folders[len(folders)-1]
				return

			case "a":
				href := strings.TrimSpace(attr(n, "href"))
				if href == "" {
					return
				}
				title := textContent(n)
				if title == "" {
					title = href
				}
				bookmark := model.NewBookmark(model.NewBookmarkParams{
					Title:    title,
					URL:      href,
					FolderID: parent(),
				})
				if ts, ok := addDate(n); ok {
					bookmark.CreatedAt = ts
				}
				bookmarks = append(bookmarks, bookmark)
				return

			case "dl":
				pushed := false
				if pending != nil {
					id := pending.ID
					stack = append(stack, &id)
					pending = nil
					pushed = true
				}
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}
				if pushed {
					stack = stack[:len(stack)-1]
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)
	return folders, bookmarks, nil
}

func addDate(n *html.Node) (time.Time, bool) {
	raw := attr(n, "add_date")
	if raw == "" {
		return time.Time{}, false
	}
	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(ts, 0), true
}

func textContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// attr returns the value of an attribute, case-insensitive.
func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}
