package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/docqa"
	"github.com/fwojciec/docqa/crawl"
	"github.com/fwojciec/docqa/embed"
	"github.com/fwojciec/docqa/gemini"
	"github.com/fwojciec/docqa/goquery"
	"github.com/fwojciec/docqa/htmltomarkdown"
	dochttp "github.com/fwojciec/docqa/http"
	"github.com/fwojciec/docqa/job"
	"github.com/fwojciec/docqa/localembed"
	"github.com/fwojciec/docqa/memory"
	"github.com/fwojciec/docqa/pipeline"
	docprom "github.com/fwojciec/docqa/prometheus"
	"github.com/fwojciec/docqa/qwen"
	"github.com/fwojciec/docqa/readability"
	"github.com/fwojciec/docqa/search"
	docslog "github.com/fwojciec/docqa/slog"
	"github.com/fwojciec/docqa/sqlite"
	"github.com/fwojciec/docqa/trafilatura"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database holding processed documents.
	DB *sqlite.DB

	// In-memory statuses, indexes and jobs of this process.
	Store *memory.Store
	Queue *job.Queue

	// Registry collects the metrics served on --metrics-addr.
	Registry *prometheus.Registry
	Metrics  *docprom.Metrics

	Service *pipeline.Service

	closers []io.Closer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var errs []error
	if m.Queue != nil {
		errs = append(errs, m.Queue.Close())
	}
	for i := len(m.closers) - 1; i >= 0; i-- {
		errs = append(errs, m.closers[i].Close())
	}
	if m.DB != nil {
		errs = append(errs, m.DB.Close())
	}
	return errors.Join(errs...)
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docqa"),
		kong.Description("Crawl documentation sites and answer questions about them"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'docqa --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set DOCQA_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	logger := newLogger(stderr, cli.Verbose)
	if err := m.wire(ctx, cli, stderr, logger); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	runCtx, cancel := context.WithCancel(gctx)

	deps := &Dependencies{
		Ctx:       runCtx,
		Stdout:    stdout,
		Stderr:    stderr,
		Service:   m.Service,
		Jobs:      m.Queue,
		Documents: m.Service.Documents,
	}

	g.Go(func() error {
		defer cancel()
		return kongCtx.Run(deps)
	})
	g.Go(func() error {
		return m.Queue.RunReaper(runCtx)
	})
	if cli.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cli.MetricsAddr,
			Handler:           NewRouter(m.Registry, m.Metrics),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("serving metrics", "addr", cli.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-runCtx.Done()
			shutdownCtx, done := context.WithTimeout(context.WithoutCancel(runCtx), 5*time.Second)
			defer done()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

// wire builds the pipeline for the parsed command line.
func (m *Main) wire(ctx context.Context, cli *CLI, stderr io.Writer, logger *slog.Logger) error {
	m.Registry = prometheus.NewRegistry()
	m.Registry.MustRegister(collectors.NewGoCollector())
	m.Metrics = docprom.NewMetrics(m.Registry)
	metrics := m.Metrics

	var client *genai.Client
	if cli.Embedder == "gemini" || cli.Completer == "gemini" {
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
			return fmt.Errorf("GEMINI_API_KEY not set")
		}
		var err error
		client, err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return fmt.Errorf("failed to connect to Gemini API: %w", err)
		}
	}

	var load docqa.ModelLoader = localembed.Load
	if cli.Embedder == "gemini" {
		load = gemini.Loader(client, gemini.DefaultEmbeddingModel)
	}
	engine := embed.NewEngine(metrics.InstrumentLoader(docslog.LoggingLoader(load, logger)))

	fetcher := dochttp.NewFetcher(dochttp.WithTimeout(orDuration(cli.Process.Timeout, dochttp.DefaultFetchTimeout)))
	m.closers = append(m.closers, fetcher)

	reader := &crawl.Reader{
		Fetcher:   docslog.NewLoggingFetcher(fetcher, logger),
		Extractor: newExtractor(cli.Process.Extractor),
		Converter: htmltomarkdown.NewConverter(),
		Links:     goquery.NewLinkExtractor(),
	}

	m.Store = memory.NewStore()
	m.Queue = job.NewQueue(m.Store, m.Store)
	m.Queue.Workers = cli.Workers
	m.Queue.Observer = metrics
	m.Queue.Logger = logger

	m.Service = &pipeline.Service{
		Crawler: &crawl.Crawler{
			Reader:   metrics.InstrumentPageReader(docslog.NewLoggingPageReader(reader, logger)),
			Limiter:  crawl.NewDomainLimiter(orDuration(cli.Process.Delay, time.Second)),
			Statuses: m.Store,
			MaxPages: cli.Process.MaxPages,
			Logger:   logger,
		},
		Indexer:   &search.Indexer{Embedder: engine, Logger: logger},
		Retriever: &search.Retriever{Embedder: engine, Logger: logger},
		Statuses:  m.Store,
		Indexes:   m.Store,
		Jobs:      m.Queue,
		Documents: sqlite.NewDocumentStore(m.DB),
		Logger:    logger,
	}

	switch cli.Completer {
	case "gemini":
		m.Service.Completer = metrics.InstrumentCompleter(
			docslog.NewLoggingCompleter(gemini.NewCompleter(client, ""), logger))
	case "qwen":
		m.Service.Completer = metrics.InstrumentCompleter(
			docslog.NewLoggingCompleter(qwen.NewCompleter(os.Getenv("QWEN_API_URL"), os.Getenv("QWEN_API_KEY")), logger))
	}

	if cli.Ask.MaxTokens > 0 {
		tokens, err := gemini.NewTokenCounter(gemini.DefaultTokenizerModel)
		if err != nil {
			logger.Warn("token counter unavailable, estimating tokens from length", "err", err)
		} else {
			m.Service.Tokens = tokens
		}
	}

	return nil
}

func newExtractor(name string) docqa.Extractor {
	switch name {
	case "readability":
		return readability.NewExtractor()
	case "goquery":
		return goquery.NewExtractor()
	default:
		return trafilatura.NewExtractor()
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func orDuration(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

func defaultDBPath() string {
	if path := os.Getenv("DOCQA_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "docqa.db"
	}
	dir := filepath.Join(home, ".docqa")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "docqa.db")
}
