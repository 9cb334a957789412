// Package fs exports processed documentation as local markdown files.
package fs

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/fwojciec/docqa"
)

// PagePath converts a page URL to a relative markdown file path.
// Example: https://example.com/docs/api/users → docs/api/users.md
func PagePath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", docqa.Errorf(docqa.EINVALID, "invalid page URL %q: %v", rawURL, err)
	}

	// Cleaning against the root drops any leading "..".
	p := path.Clean("/" + u.Path)
	if p == "/" {
		return "index.md", nil
	}
	p = strings.TrimPrefix(p, "/")

	if strings.HasSuffix(u.Path, "/") {
		return p + "/index.md", nil
	}
	return p + ".md", nil
}

// FormatPage renders page as markdown with YAML frontmatter.
func FormatPage(page *docqa.Page) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("source: ")
	b.WriteString(page.SourceURL)
	b.WriteString("\ntitle: ")
	b.WriteString(page.Title)
	if !page.FetchedAt.IsZero() {
		b.WriteString("\nfetched: ")
		b.WriteString(page.FetchedAt.Format("2006-01-02"))
	}
	b.WriteString("\n---\n\n")
	b.WriteString(page.Content)
	return b.String()
}

// DirName returns the default export directory name for a site: its host.
func DirName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "docs"
	}
	return strings.ToLower(u.Hostname())
}

// Exporter writes the pages of document indexes below Dir.
type Exporter struct {
	Dir    string
	Logger *slog.Logger
}

func (e *Exporter) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}

// Export writes every page of idx to Dir/name and returns the number of
// files written. Pages are written to Dir/name.tmp, which replaces
// Dir/name only after every page was written.
func (e *Exporter) Export(ctx context.Context, name string, idx *docqa.DocumentIndex) (int, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return 0, docqa.Errorf(docqa.EINVALID, "invalid export name %q", name)
	}
	if idx == nil {
		return 0, docqa.Errorf(docqa.EINVALID, "document index required")
	}

	tmp := filepath.Join(e.Dir, name+".tmp")
	final := filepath.Join(e.Dir, name)
	if err := os.RemoveAll(tmp); err != nil {
		return 0, err
	}

	n, err := e.writePages(ctx, tmp, idx)
	if err != nil {
		_ = os.RemoveAll(tmp)
		return 0, err
	}

	if err := os.RemoveAll(final); err != nil {
		return 0, err
	}
	if err := os.Rename(tmp, final); err != nil {
		return 0, err
	}

	e.logger().Info("exported document", "doc_id", idx.DocID, "dir", final, "pages", n)
	return n, nil
}

func (e *Exporter) writePages(ctx context.Context, dir string, idx *docqa.DocumentIndex) (int, error) {
	n := 0
	for _, u := range idx.PageOrder {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		page, ok := idx.Pages[u]
		if !ok {
			continue
		}

		src := page.SourceURL
		if src == "" {
			src = "https://" + page.URL
		}
		rel, err := PagePath(src)
		if err != nil {
			return 0, err
		}

		full := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			return 0, err
		}
		if err := os.WriteFile(full, []byte(FormatPage(page)), 0644); err != nil {
			return 0, err
		}
		n++
	}
	return n, nil
}
