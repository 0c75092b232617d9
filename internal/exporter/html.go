// Package exporter writes the bookmark tree in the Netscape bookmark format
// browsers import.
package exporter

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/bmsort/internal/bookmarks"
)

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/bookmarks-organized-YYYY-MM-DD.html
func DefaultExportPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("bookmarks-organized-%s.html", time.Now().Format("2006-01-02"))
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportHTML renders the tree below root.
func ExportHTML(root *bookmarks.Node) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")
	if root != nil {
		writeChildren(&b, root, 1)
	}
	b.WriteString("</DL><p>\n")

	return b.String()
}

// WriteFile renders the tree to path, creating parent directories.
func WriteFile(path string, root *bookmarks.Node) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(ExportHTML(root)), 0644)
}

func writeChildren(b *strings.Builder, n *bookmarks.Node, indent int) {
	prefix := strings.Repeat("    ", indent)

	for _, c := range n.Children {
		if c.IsFolder() {
			fmt.Fprintf(b, "%s<DT><H3%s>%s</H3>\n", prefix, dateAttr(c.DateAdded), html.EscapeString(c.Title))
			fmt.Fprintf(b, "%s<DL><p>\n", prefix)
			writeChildren(b, c, indent+1)
			fmt.Fprintf(b, "%s</DL><p>\n", prefix)
			continue
		}
		fmt.Fprintf(b, "%s<DT><A HREF=\"%s\"%s>%s</A>\n",
			prefix,
			html.EscapeString(c.URL),
			dateAttr(c.DateAdded),
			html.EscapeString(c.Title),
		)
	}
}

func dateAttr(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf(" ADD_DATE=\"%d\"", t.Unix())
}
