package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docqa"
)

var _ docqa.PageReader = (*LoggingPageReader)(nil)

// LoggingPageReader wraps a PageReader, logging every page read.
type LoggingPageReader struct {
	next   docqa.PageReader
	logger *slog.Logger
}

// NewLoggingPageReader creates a new LoggingPageReader.
func NewLoggingPageReader(next docqa.PageReader, logger *slog.Logger) *LoggingPageReader {
	return &LoggingPageReader{next: next, logger: logger}
}

// ReadPage logs the URL, title, content size and links of the page read.
func (r *LoggingPageReader) ReadPage(ctx context.Context, url string) (page *docqa.Page, err error) {
	defer func(begin time.Time) {
		attrs := []any{"url", url, "duration", time.Since(begin)}
		if page != nil {
			attrs = append(attrs, "title", page.Title, "bytes", len(page.Content), "links", len(page.Links))
		}
		if err != nil {
			r.logger.Warn("read page", append(attrs, "err", err)...)
			return
		}
		r.logger.Info("read page", attrs...)
	}(time.Now())
	return r.next.ReadPage(ctx, url)
}
