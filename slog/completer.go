package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docqa"
)

var _ docqa.Completer = (*LoggingCompleter)(nil)

// LoggingCompleter wraps a Completer with logging.
type LoggingCompleter struct {
	next   docqa.Completer
	logger *slog.Logger
}

// NewLoggingCompleter creates a new LoggingCompleter.
func NewLoggingCompleter(next docqa.Completer, logger *slog.Logger) *LoggingCompleter {
	return &LoggingCompleter{next: next, logger: logger}
}

// Complete logs prompt and reply sizes and delegates to the wrapped completer.
func (c *LoggingCompleter) Complete(ctx context.Context, req docqa.CompletionRequest) (reply string, err error) {
	defer func(begin time.Time) {
		prompt := 0
		for _, m := range req.Messages {
			prompt += len(m.Content)
		}
		c.logger.Info("complete",
			"messages", len(req.Messages),
			"prompt_bytes", prompt,
			"reply_bytes", len(reply),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Complete(ctx, req)
}
