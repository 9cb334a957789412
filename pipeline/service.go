// Package pipeline composes the crawler, indexer, retriever and job queue
// into the docqa.DocService operations.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/fwojciec/docqa"
	"github.com/fwojciec/docqa/crawl"
	"github.com/fwojciec/docqa/search"
)

// Job names recorded on the queue.
const (
	ProcessJobName = "doc_process"
	QueryJobName   = "doc_query"
)

const (
	// maxAnalysisRunes bounds the crawled content sent for analysis.
	maxAnalysisRunes = 30000

	// completionTokens bounds generated summaries and answers.
	completionTokens = 1000

	indexingProgress = 95.0
)

var _ docqa.DocService = (*Service)(nil)

// Service implements docqa.DocService.
type Service struct {
	Crawler   *crawl.Crawler
	Indexer   *search.Indexer
	Retriever *search.Retriever
	Statuses  docqa.StatusService
	Indexes   docqa.IndexStore
	Jobs      docqa.JobQueue

	// ProcessTimeout bounds a ProcessAsync job. Zero uses the queue default.
	ProcessTimeout time.Duration

	// Documents persists processed documents. Optional.
	Documents docqa.DocumentStore

	// Completer writes summaries and answers. Optional; without it summaries
	// are built from the crawled text and Query returns context only.
	Completer docqa.Completer

	// Tokens counts context tokens for QueryRequest.MaxTokens. Optional;
	// without it four runes count as one token.
	Tokens docqa.TokenCounter

	Logger *slog.Logger
	Now    func() time.Time

	mu      sync.Mutex
	running map[string]context.CancelFunc
}

// Process crawls and indexes req.URL and waits for the result.
func (s *Service) Process(ctx context.Context, req docqa.ProcessRequest) (*docqa.ProcessResult, error) {
	r, err := s.prepare(req)
	if err != nil {
		return nil, err
	}
	if err := s.start(ctx, r, ""); err != nil {
		return nil, err
	}
	return s.process(ctx, r)
}

// ProcessAsync records an in-progress status and enqueues the processing job
// on the documentation queue.
func (s *Service) ProcessAsync(ctx context.Context, req docqa.ProcessRequest) (string, error) {
	r, err := s.prepare(req)
	if err != nil {
		return "", err
	}
	if err := s.start(ctx, r, "queued"); err != nil {
		return "", err
	}

	id, err := s.Jobs.Enqueue(ctx, docqa.JobRequest{
		Name:    ProcessJobName,
		Args:    map[string]any{"url": r.req.URL, "languageCode": r.req.LanguageCode, "maxDepth": r.depth},
		Queue:   docqa.QueueDocumentation,
		Timeout: s.ProcessTimeout,
		Task: docqa.TaskFunc(func(ctx context.Context) (any, error) {
			return s.process(ctx, r)
		}),
	})
	if err != nil {
		s.finish(context.WithoutCancel(ctx), r.docID, docqa.DocumentFailed, "enqueue failed: "+docqa.ErrorMessage(err))
		return "", err
	}

	if _, err := s.Statuses.UpdateStatus(ctx, r.docID, docqa.StatusUpdate{JobID: &id}); err != nil {
		s.logger().Debug("record job id", "doc_id", r.docID, "job", id, "err", err)
	}
	return id, nil
}

// Status returns the processing status of url. Documents only known to the
// document store report their persisted status.
func (s *Service) Status(ctx context.Context, url string) (*docqa.DocumentStatus, error) {
	if strings.TrimSpace(url) == "" {
		return nil, docqa.Errorf(docqa.EINVALID, "URL required")
	}
	docID := docqa.DocumentID(url)
	status, err := s.Statuses.FindStatus(ctx, docID)
	if err != nil {
		return nil, err
	}
	if status.State != docqa.DocumentNotFound || s.Documents == nil {
		return status, nil
	}

	doc, err := s.Documents.FindDocumentByID(ctx, docID)
	if docqa.ErrorCode(err) == docqa.ENOTFOUND {
		return status, nil
	} else if err != nil {
		return nil, fmt.Errorf("find document: %w", err)
	}
	persisted := doc.Status
	return &persisted, nil
}

// Query retrieves the passages of a processed site most relevant to the
// question and, with a Completer, answers it.
func (s *Service) Query(ctx context.Context, req docqa.QueryRequest) (*docqa.QueryResult, error) {
	if strings.TrimSpace(req.URL) == "" {
		return nil, docqa.Errorf(docqa.EINVALID, "URL required")
	}
	if strings.TrimSpace(req.Question) == "" {
		return nil, docqa.Errorf(docqa.EINVALID, "question required")
	}
	if req.MaxTokens < 0 {
		return nil, docqa.Errorf(docqa.EINVALID, "max tokens must not be negative")
	}
	if req.LanguageCode == "" {
		req.LanguageCode = docqa.DefaultLanguageCode
	}

	idx, err := s.findIndex(ctx, docqa.DocumentID(req.URL))
	if err != nil {
		return nil, err
	}

	found, err := s.Retriever.Search(ctx, idx, req.Question, req.TopK)
	if err != nil {
		return nil, err
	}
	chunks, err := s.fitContext(ctx, found.Results, req.MaxTokens)
	if err != nil {
		return nil, err
	}

	result := &docqa.QueryResult{
		Chunks:     chunks,
		Confidence: docqa.Confidence(found),
		Mode:       found.Mode,
	}
	if req.IncludeSources {
		result.Sources = docqa.Sources(chunks)
	}
	if s.Completer != nil && len(chunks) > 0 {
		answer, err := s.Completer.Complete(ctx, answerRequest(req, chunks))
		switch {
		case err == nil:
			result.Answer = answer
		case ctx.Err() != nil:
			return nil, ctx.Err()
		default:
			s.logger().Warn("answer generation failed, returning context only", "doc_id", idx.DocID, "err", err)
		}
	}
	return result, nil
}

// QueryAsync enqueues Query on the high priority queue.
func (s *Service) QueryAsync(ctx context.Context, req docqa.QueryRequest) (string, error) {
	if strings.TrimSpace(req.URL) == "" {
		return "", docqa.Errorf(docqa.EINVALID, "URL required")
	}
	if strings.TrimSpace(req.Question) == "" {
		return "", docqa.Errorf(docqa.EINVALID, "question required")
	}
	return s.Jobs.Enqueue(ctx, docqa.JobRequest{
		Name:  QueryJobName,
		Args:  map[string]any{"url": req.URL, "question": req.Question},
		Queue: docqa.QueueHighPriority,
		Task: docqa.TaskFunc(func(ctx context.Context) (any, error) {
			return s.Query(ctx, req)
		}),
	})
}

// Cancel stops processing of url: the job is cancelled, the running crawl
// stops scheduling pages and the status becomes cancelled. A fetch already
// in flight is aborted through its context. The run's outcome, including
// its index, is discarded.
func (s *Service) Cancel(ctx context.Context, url string) (bool, error) {
	if strings.TrimSpace(url) == "" {
		return false, docqa.Errorf(docqa.EINVALID, "URL required")
	}
	docID := docqa.DocumentID(url)
	status, err := s.Statuses.FindStatus(ctx, docID)
	if err != nil {
		return false, err
	}
	if status.State != docqa.DocumentInProgress {
		return false, nil
	}

	cancelled := state(docqa.DocumentCancelled)
	message := "cancelled"
	if _, err := s.Statuses.UpdateStatus(ctx, docID, docqa.StatusUpdate{State: cancelled, Message: &message}); err != nil {
		if docqa.ErrorCode(err) == docqa.ECONFLICT {
			return false, nil
		}
		return false, err
	}
	if status.JobID != "" {
		s.Jobs.Cancel(ctx, status.JobID)
	}
	s.mu.Lock()
	stop := s.running[docID]
	s.mu.Unlock()
	if stop != nil {
		stop()
	}
	s.logger().Info("processing cancelled", "doc_id", docID, "url", url)
	return true, nil
}

// run is a validated process request.
type run struct {
	req      docqa.ProcessRequest
	docID    string
	depth    int
	excluded []*regexp.Regexp
}

func (s *Service) prepare(req docqa.ProcessRequest) (*run, error) {
	if err := docqa.ValidateURL(req.URL); err != nil {
		return nil, err
	}
	if req.MaxDepth < 0 {
		return nil, docqa.Errorf(docqa.EINVALID, "max depth must not be negative")
	}
	if req.LanguageCode == "" {
		req.LanguageCode = docqa.DefaultLanguageCode
	}

	depth := req.MaxDepth
	if depth == 0 {
		depth = docqa.DefaultMaxDepth
	}
	if req.AnalyzeSubsections != nil && !*req.AnalyzeSubsections {
		depth = 0
	}

	excluded := make([]*regexp.Regexp, 0, len(req.ExcludedPaths))
	for _, p := range req.ExcludedPaths {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, docqa.Errorf(docqa.EINVALID, "invalid excluded path %q: %v", p, err)
		}
		excluded = append(excluded, re)
	}

	return &run{req: req, docID: docqa.DocumentID(req.URL), depth: depth, excluded: excluded}, nil
}

// start records a fresh in-progress status for r.
func (s *Service) start(ctx context.Context, r *run, message string) error {
	if message == "" {
		message = "starting"
	}
	err := s.Statuses.StartStatus(ctx, &docqa.DocumentStatus{
		DocID:   r.docID,
		URL:     r.req.URL,
		State:   docqa.DocumentInProgress,
		Message: message,
	})
	if err != nil {
		return fmt.Errorf("start status: %w", err)
	}
	return nil
}

// process crawls, indexes and analyzes r. The status is left terminal.
func (s *Service) process(ctx context.Context, r *run) (*docqa.ProcessResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.track(r.docID, cancel)
	defer s.untrack(r.docID)

	log := s.logger().With("doc_id", r.docID, "url", r.req.URL)
	result, err := s.build(ctx, r, log)
	if err == nil {
		return result, nil
	}

	bg := context.WithoutCancel(ctx)
	switch {
	case s.cancelled(bg, r.docID):
		log.Info("processing cancelled")
		return nil, context.Canceled
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		s.finish(bg, r.docID, docqa.DocumentFailed, "Error: processing timed out")
		log.Warn("processing timed out", "err", err)
		return nil, err
	case ctx.Err() != nil || errors.Is(err, context.Canceled):
		s.finish(bg, r.docID, docqa.DocumentCancelled, "cancelled")
		log.Info("processing stopped", "err", ctx.Err())
		return nil, context.Canceled
	}
	s.finish(bg, r.docID, docqa.DocumentFailed, "Error: "+docqa.ErrorMessage(err))
	log.Error("processing failed", "err", err)
	return nil, err
}

// cancelled reports whether Cancel has moved the status of docID.
func (s *Service) cancelled(ctx context.Context, docID string) bool {
	status, err := s.Statuses.FindStatus(ctx, docID)
	return err == nil && status.State == docqa.DocumentCancelled
}

func (s *Service) build(ctx context.Context, r *run, log *slog.Logger) (*docqa.ProcessResult, error) {
	// A run cancelled while queued never starts crawling.
	status, err := s.Statuses.FindStatus(ctx, r.docID)
	if err != nil {
		return nil, fmt.Errorf("find status: %w", err)
	}
	if status.State != docqa.DocumentInProgress {
		return nil, context.Canceled
	}

	crawled, err := s.Crawler.Crawl(ctx, crawl.Request{
		DocID:    r.docID,
		SeedURL:  r.req.URL,
		MaxDepth: r.depth,
		Excluded: r.excluded,
	})
	if err != nil {
		return nil, fmt.Errorf("crawl: %w", err)
	}

	pages := len(crawled.Pages)
	message := fmt.Sprintf("indexing %d pages", pages)
	progress := indexingProgress
	s.update(ctx, r.docID, docqa.StatusUpdate{Message: &message, CompletionPercentage: &progress})

	idx, err := s.Indexer.Build(ctx, r.docID, r.req.URL, crawled.Pages)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	summary, concepts := s.analyze(ctx, r.req.LanguageCode, crawled.Pages)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	title := r.req.URL
	if pages > 0 && crawled.Pages[0].Title != "" {
		title = crawled.Pages[0].Title
	}

	// Publish the index last and withdraw it if the run was cancelled
	// meanwhile, so a cancelled run leaves nothing to query.
	if err := s.Indexes.PutIndex(ctx, idx); err != nil {
		return nil, fmt.Errorf("store index: %w", err)
	}
	completed := state(docqa.DocumentCompleted)
	done := 100.0
	message = fmt.Sprintf("processed %d pages", pages)
	status, err = s.Statuses.UpdateStatus(ctx, r.docID, docqa.StatusUpdate{
		State:                completed,
		SectionsAnalyzed:     &pages,
		TotalPages:           &crawled.Visited,
		CompletionPercentage: &done,
		Message:              &message,
	})
	if err != nil {
		if delErr := s.Indexes.DeleteIndex(context.WithoutCancel(ctx), r.docID); delErr != nil {
			log.Error("withdraw index", "err", delErr)
		}
		if docqa.ErrorCode(err) == docqa.ECONFLICT {
			return nil, context.Canceled
		}
		return nil, fmt.Errorf("complete status: %w", err)
	}

	if s.Documents != nil {
		doc := &docqa.Document{
			ID:           r.docID,
			URL:          r.req.URL,
			Title:        title,
			Summary:      summary,
			KeyConcepts:  concepts,
			LanguageCode: r.req.LanguageCode,
			Status:       *status,
			ProcessedAt:  s.now().UTC(),
		}
		if err := s.Documents.SaveDocument(ctx, doc, idx); err != nil {
			log.Warn("persist document", "err", err)
		}
	}

	log.Info("processed documentation", "pages", pages, "failed", crawled.Failed, "chunks", len(idx.Chunks))
	return &docqa.ProcessResult{
		Status:           docqa.DocumentCompleted,
		DocID:            r.docID,
		Title:            title,
		Summary:          summary,
		KeyConcepts:      concepts,
		SectionsAnalyzed: pages,
		TotalPages:       crawled.Visited,
	}, nil
}

// analyze summarizes pages with the Completer, falling back to the opening
// lines and section headings of the crawled text.
func (s *Service) analyze(ctx context.Context, language string, pages []*docqa.Page) (string, []string) {
	content := joinContent(pages)
	if s.Completer != nil && content != "" {
		text, err := s.Completer.Complete(ctx, analysisRequest(language, content))
		if err == nil {
			summary, concepts := docqa.ParseAnalysis(text)
			if summary != "" {
				return summary, concepts
			}
		} else if ctx.Err() == nil {
			s.logger().Warn("analysis failed, using fallback summary", "err", err)
		}
	}
	return docqa.FallbackSummary(content), docqa.FallbackKeyConcepts(pages)
}

// findIndex returns the in-memory index of docID, loading it from the
// document store when needed.
func (s *Service) findIndex(ctx context.Context, docID string) (*docqa.DocumentIndex, error) {
	idx, err := s.Indexes.FindIndex(ctx, docID)
	if err == nil || docqa.ErrorCode(err) != docqa.ENOTFOUND || s.Documents == nil {
		return idx, err
	}

	idx, err = s.Documents.FindIndex(ctx, docID)
	if err != nil {
		return nil, err
	}
	if err := s.Indexes.PutIndex(ctx, idx); err != nil {
		return nil, fmt.Errorf("cache index: %w", err)
	}
	return idx, nil
}

// fitContext keeps the leading results whose combined text fits within
// maxTokens.
func (s *Service) fitContext(ctx context.Context, results []docqa.SearchResult, maxTokens int) ([]docqa.SearchResult, error) {
	var tc docqa.TokenCounter = docqa.ApproxTokens{}
	if s.Tokens != nil {
		tc = s.Tokens
	}
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Text
	}
	n, err := docqa.FitTokens(ctx, tc, texts, maxTokens)
	if err != nil {
		return nil, err
	}
	return results[:n], nil
}

func (s *Service) update(ctx context.Context, docID string, upd docqa.StatusUpdate) {
	if _, err := s.Statuses.UpdateStatus(ctx, docID, upd); err != nil {
		s.logger().Debug("update status", "doc_id", docID, "err", err)
	}
}

// finish moves the status to a terminal state unless it already is.
func (s *Service) finish(ctx context.Context, docID string, st docqa.DocumentState, message string) {
	_, err := s.Statuses.UpdateStatus(ctx, docID, docqa.StatusUpdate{State: &st, Message: &message})
	if err != nil && docqa.ErrorCode(err) != docqa.ECONFLICT {
		s.logger().Error("finish status", "doc_id", docID, "err", err)
	}
}

func (s *Service) track(docID string, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running == nil {
		s.running = make(map[string]context.CancelFunc)
	}
	s.running[docID] = cancel
}

func (s *Service) untrack(docID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.running, docID)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func analysisRequest(language, content string) docqa.CompletionRequest {
	prompt := fmt.Sprintf(`Analyze the following documentation and provide:
1. A concise summary
2. The most important key concepts
3. The main structure

Documentation:
%s

Respond in %s and make sure the summary is clear and structured.`, content, language)

	return docqa.CompletionRequest{
		Messages: []docqa.Message{
			{Role: "system", Content: "You are an expert in analyzing and summarizing technical documentation."},
			{Role: "user", Content: prompt},
		},
		MaxTokens: completionTokens,
	}
}

func answerRequest(req docqa.QueryRequest, chunks []docqa.SearchResult) docqa.CompletionRequest {
	prompt := fmt.Sprintf(`Answer the question using the documentation excerpts below.

Question: %s

Documentation:
%s

Respond in %s and include specific examples or references where possible.`, req.Question, docqa.FormatContext(chunks), req.LanguageCode)

	return docqa.CompletionRequest{
		Messages: []docqa.Message{
			{Role: "system", Content: "You are an expert in technical documentation and can provide detailed answers based on documentation content."},
			{Role: "user", Content: prompt},
		},
		MaxTokens: completionTokens,
	}
}

// joinContent concatenates page contents, truncated to maxAnalysisRunes.
func joinContent(pages []*docqa.Page) string {
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		if p.Content != "" {
			parts = append(parts, p.Content)
		}
	}
	content := strings.Join(parts, "\n\n")
	if utf8.RuneCountInString(content) <= maxAnalysisRunes {
		return content
	}
	return string([]rune(content)[:maxAnalysisRunes])
}

func state(s docqa.DocumentState) *docqa.DocumentState {
	return &s
}
