package prometheus

import (
	"context"
	"time"

	"github.com/fwojciec/docqa"
)

// PageReader counts pages read by the wrapped reader.
type PageReader struct {
	next    docqa.PageReader
	metrics *Metrics
}

var _ docqa.PageReader = (*PageReader)(nil)

// InstrumentPageReader wraps next with page metrics.
func (m *Metrics) InstrumentPageReader(next docqa.PageReader) *PageReader {
	return &PageReader{next: next, metrics: m}
}

// ReadPage delegates to the wrapped reader and counts the outcome by site.
func (r *PageReader) ReadPage(ctx context.Context, url string) (*docqa.Page, error) {
	page, err := r.next.ReadPage(ctx, url)
	site := SanitizeSite(url)
	r.metrics.pagesTotal.WithLabelValues(site, status(err)).Inc()
	if page != nil {
		r.metrics.pageBytesTotal.WithLabelValues(site).Add(float64(len(page.Content)))
	}
	return page, err
}

// EmbeddingModel times calls to the wrapped model.
type EmbeddingModel struct {
	next    docqa.EmbeddingModel
	metrics *Metrics
}

var _ docqa.EmbeddingModel = (*EmbeddingModel)(nil)

// InstrumentLoader wraps the models produced by load with embedding metrics.
func (m *Metrics) InstrumentLoader(load docqa.ModelLoader) docqa.ModelLoader {
	return func(ctx context.Context) (docqa.EmbeddingModel, error) {
		model, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return &EmbeddingModel{next: model, metrics: m}, nil
	}
}

// Embed delegates to the wrapped model and records latency and batch size.
func (e *EmbeddingModel) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	vecs, err := e.next.Embed(ctx, texts)
	e.metrics.embedDuration.WithLabelValues(status(err)).Observe(time.Since(start).Seconds())
	e.metrics.embedTextsTotal.Add(float64(len(texts)))
	return vecs, err
}

// Close delegates to the wrapped model.
func (e *EmbeddingModel) Close() error {
	return e.next.Close()
}

// Completer times calls to the wrapped completer.
type Completer struct {
	next    docqa.Completer
	metrics *Metrics
}

var _ docqa.Completer = (*Completer)(nil)

// InstrumentCompleter wraps next with completion metrics.
func (m *Metrics) InstrumentCompleter(next docqa.Completer) *Completer {
	return &Completer{next: next, metrics: m}
}

// Complete delegates to the wrapped completer and records its latency.
func (c *Completer) Complete(ctx context.Context, req docqa.CompletionRequest) (string, error) {
	start := time.Now()
	reply, err := c.next.Complete(ctx, req)
	c.metrics.completionDuration.WithLabelValues(status(err)).Observe(time.Since(start).Seconds())
	return reply, err
}
