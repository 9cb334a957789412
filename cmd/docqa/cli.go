package main

import (
	"context"
	"io"
	"time"

	"github.com/fwojciec/docqa"
)

// defaultPollInterval is how often process reports progress.
const defaultPollInterval = 500 * time.Millisecond

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Service   docqa.DocService
	Jobs      docqa.JobQueue
	Documents docqa.DocumentStore

	// PollInterval defaults to defaultPollInterval.
	PollInterval time.Duration
}

func (d *Dependencies) pollInterval() time.Duration {
	if d.PollInterval <= 0 {
		return defaultPollInterval
	}
	return d.PollInterval
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose     bool   `short:"v" help:"Log debug output to stderr"`
	MetricsAddr string `name:"metrics-addr" env:"DOCQA_METRICS_ADDR" help:"Serve Prometheus metrics on this address while running"`
	Workers     int    `default:"3" help:"Concurrent background jobs"`
	Embedder    string `enum:"local,gemini" default:"local" env:"DOCQA_EMBEDDER" help:"Embedding backend (local, gemini)"`
	Completer   string `enum:"none,gemini,qwen" default:"none" env:"DOCQA_COMPLETER" help:"Summary and answer backend (none, gemini, qwen)"`

	Process ProcessCmd `cmd:"" help:"Crawl and index a documentation site"`
	Ask     AskCmd     `cmd:"" help:"Ask a question about a processed site"`
	Status  StatusCmd  `cmd:"" help:"Show the processing status of a site"`
	Delete  DeleteCmd  `cmd:"" help:"Delete a processed site"`
	Export  ExportCmd  `cmd:"" help:"Write the pages of a processed site as markdown files"`
}

// ProcessCmd is the "process" subcommand.
type ProcessCmd struct {
	URL        string        `arg:"" help:"Documentation URL"`
	Language   string        `short:"l" default:"es" help:"Language of the generated summary"`
	MaxDepth   int           `short:"d" name:"max-depth" default:"3" help:"Link depth followed from the seed page"`
	MaxPages   int           `name:"max-pages" default:"50" help:"Maximum number of pages visited"`
	Exclude    []string      `short:"x" sep:"none" help:"Skip URLs matching regex (repeatable)"`
	SinglePage bool          `name:"single-page" help:"Process only the seed page"`
	Delay      time.Duration `default:"1s" help:"Delay between requests to one domain"`
	Timeout    time.Duration `default:"10s" help:"Timeout of a single page request"`
	Extractor  string        `enum:"trafilatura,readability,goquery" default:"trafilatura" help:"Main content extractor"`
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	URL       string `arg:"" help:"Documentation URL"`
	Question  string `arg:"" help:"Question to ask about the documentation"`
	Language  string `short:"l" default:"es" help:"Language of the answer"`
	MaxTokens int    `name:"max-tokens" help:"Bound the retrieved context to this many tokens"`
	TopK      int    `name:"top-k" default:"5" help:"Number of passages retrieved"`
	Sources   bool   `short:"s" help:"List the sites the passages came from"`
}

// StatusCmd is the "status" subcommand.
type StatusCmd struct {
	URL string `arg:"" help:"Documentation URL"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	URL   string `arg:"" help:"Documentation URL"`
	Force bool   `help:"Confirm deletion"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	URL  string `arg:"" help:"Documentation URL"`
	Dir  string `short:"o" default:"." help:"Parent directory of the export"`
	Name string `short:"n" help:"Export directory name (defaults to the site host)"`
}
