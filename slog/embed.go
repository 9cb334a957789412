package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docqa"
)

var _ docqa.EmbeddingModel = (*LoggingEmbeddingModel)(nil)

// LoggingEmbeddingModel wraps an EmbeddingModel with debug logging.
type LoggingEmbeddingModel struct {
	next   docqa.EmbeddingModel
	logger *slog.Logger
}

// NewLoggingEmbeddingModel creates a new LoggingEmbeddingModel.
func NewLoggingEmbeddingModel(next docqa.EmbeddingModel, logger *slog.Logger) *LoggingEmbeddingModel {
	return &LoggingEmbeddingModel{next: next, logger: logger}
}

// LoggingLoader wraps the models produced by load with logging.
func LoggingLoader(load docqa.ModelLoader, logger *slog.Logger) docqa.ModelLoader {
	return func(ctx context.Context) (docqa.EmbeddingModel, error) {
		begin := time.Now()
		model, err := load(ctx)
		logger.Info("load embedding model", "duration", time.Since(begin), "err", err)
		if err != nil {
			return nil, err
		}
		return NewLoggingEmbeddingModel(model, logger), nil
	}
}

// Embed logs batch size and duration and delegates to the wrapped model.
func (m *LoggingEmbeddingModel) Embed(ctx context.Context, texts []string) (vecs [][]float32, err error) {
	defer func(begin time.Time) {
		m.logger.Debug("embed",
			"texts", len(texts),
			"vectors", len(vecs),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return m.next.Embed(ctx, texts)
}

// Close logs and delegates to the wrapped model.
func (m *LoggingEmbeddingModel) Close() error {
	err := m.next.Close()
	m.logger.Info("close embedding model", "err", err)
	return err
}
