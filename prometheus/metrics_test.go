package prometheus_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/docqa"
	"github.com/fwojciec/docqa/mock"
	docprom "github.com/fwojciec/docqa/prometheus"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMetrics(t *testing.T) (*docprom.Metrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return docprom.NewMetrics(reg), reg
}

// metricValue returns the value of the counter or gauge series of name
// whose labels include all of labels.
func metricValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	series:
		for _, m := range mf.GetMetric() {
			got := make(map[string]string)
			for _, lp := range m.GetLabel() {
				got[lp.GetName()] = lp.GetValue()
			}
			for k, v := range labels {
				if got[k] != v {
					continue series
				}
			}
			if c := m.GetCounter(); c != nil {
				return c.GetValue()
			}
			if g := m.GetGauge(); g != nil {
				return g.GetValue()
			}
			if h := m.GetHistogram(); h != nil {
				return float64(h.GetSampleCount())
			}
		}
	}
	return 0
}

func TestMetrics_ObserveJob(t *testing.T) {
	t.Parallel()

	m, reg := newMetrics(t)
	started := time.Now()

	m.ObserveJob(&docqa.Job{Queue: docqa.QueueDocumentation, State: docqa.JobQueued})
	m.ObserveJob(&docqa.Job{Queue: docqa.QueueDocumentation, State: docqa.JobInProgress, StartedAt: &started})
	assert.Equal(t, float64(1), metricValue(t, reg, "docqa_jobs_in_progress", nil))

	m.ObserveJob(&docqa.Job{Queue: docqa.QueueDocumentation, State: docqa.JobCompleted, StartedAt: &started})
	m.ObserveJob(&docqa.Job{Queue: docqa.QueueDefault, State: docqa.JobCancelled})

	assert.Equal(t, float64(0), metricValue(t, reg, "docqa_jobs_in_progress", nil))
	assert.Equal(t, float64(1), metricValue(t, reg, "docqa_jobs_total",
		map[string]string{"queue": docqa.QueueDocumentation, "state": "completed"}))
	assert.Equal(t, float64(1), metricValue(t, reg, "docqa_jobs_total",
		map[string]string{"queue": docqa.QueueDefault, "state": "cancelled"}))
}

func TestMetrics_InstrumentPageReader(t *testing.T) {
	t.Parallel()

	m, reg := newMetrics(t)
	reader := m.InstrumentPageReader(&mock.PageReader{
		ReadPageFn: func(_ context.Context, url string) (*docqa.Page, error) {
			if url == "https://Docs.Example.com/broken" {
				return nil, errors.New("boom")
			}
			return &docqa.Page{URL: url, Content: "hello"}, nil
		},
	})

	_, err := reader.ReadPage(context.Background(), "https://Docs.Example.com/guide")
	require.NoError(t, err)
	_, err = reader.ReadPage(context.Background(), "https://Docs.Example.com/broken")
	require.Error(t, err)

	assert.Equal(t, float64(1), metricValue(t, reg, "docqa_pages_total",
		map[string]string{"site": "docs.example.com", "status": "ok"}))
	assert.Equal(t, float64(1), metricValue(t, reg, "docqa_pages_total",
		map[string]string{"site": "docs.example.com", "status": "error"}))
	assert.Equal(t, float64(5), metricValue(t, reg, "docqa_page_bytes_total",
		map[string]string{"site": "docs.example.com"}))
}

func TestMetrics_InstrumentLoader(t *testing.T) {
	t.Parallel()

	t.Run("records embedding calls", func(t *testing.T) {
		t.Parallel()

		m, reg := newMetrics(t)
		closed := false
		load := m.InstrumentLoader(func(context.Context) (docqa.EmbeddingModel, error) {
			return &mock.EmbeddingModel{
				EmbedFn: func(_ context.Context, texts []string) ([][]float32, error) {
					return make([][]float32, len(texts)), nil
				},
				CloseFn: func() error {
					closed = true
					return nil
				},
			}, nil
		})

		model, err := load(context.Background())
		require.NoError(t, err)
		_, err = model.Embed(context.Background(), []string{"a", "b", "c"})
		require.NoError(t, err)
		require.NoError(t, model.Close())

		assert.True(t, closed)
		assert.Equal(t, float64(3), metricValue(t, reg, "docqa_embedded_texts_total", nil))
		assert.Equal(t, float64(1), metricValue(t, reg, "docqa_embed_duration_seconds",
			map[string]string{"status": "ok"}))
	})

	t.Run("passes load errors through", func(t *testing.T) {
		t.Parallel()

		m, _ := newMetrics(t)
		load := m.InstrumentLoader(func(context.Context) (docqa.EmbeddingModel, error) {
			return nil, errors.New("no model")
		})

		model, err := load(context.Background())
		require.Error(t, err)
		assert.Nil(t, model)
	})
}

func TestMetrics_InstrumentCompleter(t *testing.T) {
	t.Parallel()

	m, reg := newMetrics(t)
	completer := m.InstrumentCompleter(&mock.Completer{
		CompleteFn: func(context.Context, docqa.CompletionRequest) (string, error) {
			return "", errors.New("quota")
		},
	})

	_, err := completer.Complete(context.Background(), docqa.CompletionRequest{})
	require.Error(t, err)

	assert.Equal(t, float64(1), metricValue(t, reg, "docqa_completion_duration_seconds",
		map[string]string{"status": "error"}))
}

func TestMetrics_Middleware(t *testing.T) {
	t.Parallel()

	m, reg := newMetrics(t)
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/documents/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Handle("/metrics", docprom.Handler(reg))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/documents/abc", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	assert.Equal(t, float64(1), metricValue(t, reg, "http_requests_total",
		map[string]string{"method": "GET", "code": "418"}))
	assert.Equal(t, float64(1), metricValue(t, reg, "http_request_duration_seconds",
		map[string]string{"method": "GET", "route": "/documents/{id}"}))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "http_requests_total")
}

func TestMetrics_RegistersOnce(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	docprom.NewMetrics(reg)
	assert.Panics(t, func() { docprom.NewMetrics(reg) })

	other := prometheus.NewRegistry()
	m := docprom.NewMetrics(other)
	m.ObserveJob(&docqa.Job{Queue: docqa.QueueDefault, State: docqa.JobQueued})
	m.ObserveJob(&docqa.Job{Queue: docqa.QueueHighPriority, State: docqa.JobQueued})
	count, err := testutil.GatherAndCount(other, "docqa_jobs_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSanitizeSite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"https://Docs.Example.com/guide", "docs.example.com"},
		{"example.com/path", "example.com"},
		{"http://localhost:8080/x", "localhost"},
		{"", "unknown"},
		{"http://%zz", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, docprom.SanitizeSite(tt.in))
		})
	}
}
