// Package slog provides decorators that log docqa collaborators with log/slog.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docqa"
)

var _ docqa.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher logs raw HTTP fetches. Successful fetches are logged at
// debug level since the page reader already reports each page.
type LoggingFetcher struct {
	next   docqa.Fetcher
	logger *slog.Logger
}

func NewLoggingFetcher(next docqa.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (string, error) {
	begin := time.Now()
	html, err := f.next.Fetch(ctx, url)
	if err != nil {
		f.logger.WarnContext(ctx, "fetch failed",
			"url", url,
			"code", docqa.ErrorCode(err),
			"err", err,
		)
		return "", err
	}
	f.logger.DebugContext(ctx, "fetched",
		"url", url,
		"bytes", len(html),
		"duration", time.Since(begin),
	)
	return html, nil
}

func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
