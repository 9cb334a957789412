package docqa

import "context"

// DefaultMaxDepth is the default link depth followed from the seed page.
const DefaultMaxDepth = 3

// DefaultLanguageCode is the default language of generated summaries and answers.
const DefaultLanguageCode = "es"

// ProcessRequest asks for a documentation site to be crawled and indexed.
type ProcessRequest struct {
	URL           string   `json:"url"`
	LanguageCode  string   `json:"languageCode"`
	MaxDepth      int      `json:"maxDepth"`
	ExcludedPaths []string `json:"excludedPaths,omitempty"`

	// AnalyzeSubsections follows links from the seed page. Defaults to true;
	// when false only the seed page is processed.
	AnalyzeSubsections *bool `json:"analyzeSubsections,omitempty"`
}

// ProcessResult is the outcome of processing a documentation site.
type ProcessResult struct {
	Status           DocumentState `json:"status"`
	DocID            string        `json:"docId"`
	Title            string        `json:"title"`
	Summary          string        `json:"summary"`
	KeyConcepts      []string      `json:"keyConcepts"`
	SectionsAnalyzed int           `json:"sectionsAnalyzed"`
	TotalPages       int           `json:"totalPages"`
}

// QueryRequest asks a question about a processed site.
type QueryRequest struct {
	URL          string `json:"url"`
	Question     string `json:"question"`
	LanguageCode string `json:"languageCode"`

	// MaxTokens bounds the context passed on with the answer. Zero means no bound.
	MaxTokens      int  `json:"maxTokens"`
	IncludeSources bool `json:"includeSources"`

	// TopK is the number of chunks retrieved. Defaults to 5.
	TopK int `json:"topK"`
}

// QueryResult holds the retrieved context for a question.
type QueryResult struct {
	// Answer is empty unless a Completer is configured.
	Answer     string         `json:"answer,omitempty"`
	Chunks     []SearchResult `json:"answerContextChunks"`
	Sources    []string       `json:"sources,omitempty"`
	Confidence float64        `json:"confidence"`
	Mode       SearchMode     `json:"mode"`
}

// DocService exposes the crawl, index and query pipeline.
type DocService interface {
	// Process crawls and indexes req.URL and waits for the result.
	Process(ctx context.Context, req ProcessRequest) (*ProcessResult, error)

	// ProcessAsync enqueues Process and returns the job id.
	ProcessAsync(ctx context.Context, req ProcessRequest) (string, error)

	// Status returns the processing status of url.
	Status(ctx context.Context, url string) (*DocumentStatus, error)

	// Query retrieves context for a question about a processed site.
	Query(ctx context.Context, req QueryRequest) (*QueryResult, error)

	// QueryAsync enqueues Query and returns the job id.
	QueryAsync(ctx context.Context, req QueryRequest) (string, error)

	// Cancel stops processing of url. Returns false if nothing was running.
	Cancel(ctx context.Context, url string) (bool, error)
}
