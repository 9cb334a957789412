package docqa

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// nonHTMLExtensions lists path extensions that never lead to an HTML page.
var nonHTMLExtensions = map[string]bool{
	".7z": true, ".avi": true, ".bmp": true, ".css": true, ".csv": true,
	".doc": true, ".docx": true, ".eot": true, ".epub": true, ".exe": true,
	".gif": true, ".gz": true, ".ico": true, ".jpeg": true, ".jpg": true,
	".js": true, ".json": true, ".mov": true, ".mp3": true, ".mp4": true,
	".otf": true, ".pdf": true, ".png": true, ".ppt": true, ".pptx": true,
	".rar": true, ".rss": true, ".svg": true, ".tar": true, ".tgz": true,
	".ttf": true, ".wasm": true, ".wav": true, ".webm": true, ".webp": true,
	".woff": true, ".woff2": true, ".xls": true, ".xlsx": true, ".xml": true,
	".zip": true,
}

// NormalizeURL returns the canonical key of a URL: lowercased host plus path,
// with trailing slashes, query and fragment removed. The scheme is dropped so
// http and https variants of a page share a key.
//
// NormalizeURL is idempotent.
func NormalizeURL(rawURL string) string {
	s := strings.TrimSpace(rawURL)
	if !strings.Contains(s, "://") && !strings.HasPrefix(s, "//") {
		s = "//" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return stripURLSuffixes(strings.TrimSpace(rawURL))
	}
	return strings.TrimRight(strings.ToLower(u.Host)+u.EscapedPath(), "/")
}

func stripURLSuffixes(s string) string {
	if i := strings.IndexAny(s, "?#"); i != -1 {
		s = s[:i]
	}
	return strings.TrimRight(s, "/")
}

// DocumentID returns the deterministic identifier of the documentation rooted
// at rawURL. It joins status, index and persisted records of one document.
func DocumentID(rawURL string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(NormalizeURL(rawURL)))
}

// ContentHash returns the xxHash of content as a hex string.
func ContentHash(content string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}

// IsHTMLLink reports whether rawURL may point to an HTML page, judging by
// the extension of its path. Extensionless paths are assumed to be HTML.
func IsHTMLLink(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	ext := strings.ToLower(path.Ext(u.Path))
	return !nonHTMLExtensions[ext]
}

// ValidateURL returns EINVALID unless rawURL is an absolute http(s) URL.
func ValidateURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return Errorf(EINVALID, "URL required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Errorf(EINVALID, "invalid URL %q: %v", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Errorf(EINVALID, "URL %q must use http or https", rawURL)
	}
	if u.Host == "" {
		return Errorf(EINVALID, "URL %q has no host", rawURL)
	}
	return nil
}
