package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fwojciec/docqa"
)

// Compile-time interface verification.
var _ docqa.DocumentStore = (*DocumentStore)(nil)

// DocumentStore implements docqa.DocumentStore using SQLite.
type DocumentStore struct {
	db *DB
}

// NewDocumentStore creates a new DocumentStore.
func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// SaveDocument replaces any stored record of doc with doc, the pages and
// the chunks of idx in one transaction.
func (s *DocumentStore) SaveDocument(ctx context.Context, doc *docqa.Document, idx *docqa.DocumentIndex) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	if idx == nil {
		return docqa.Errorf(docqa.EINVALID, "document index required")
	}
	if idx.DocID != doc.ID {
		return docqa.Errorf(docqa.EINVALID, "index belongs to document %s, not %s", idx.DocID, doc.ID)
	}

	concepts, err := encodeStrings(doc.KeyConcepts)
	if err != nil {
		return fmt.Errorf("encode key concepts: %w", err)
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", doc.ID); err != nil {
		return err
	}

	st := doc.Status
	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (id, url, title, summary, key_concepts, language_code,
			state, sections_analyzed, total_pages, completion_percentage, message, job_id,
			status_updated_at, processed_at, built_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.URL, doc.Title, doc.Summary, concepts, doc.LanguageCode,
		string(st.State), st.SectionsAnalyzed, st.TotalPages, st.CompletionPercentage, st.Message, st.JobID,
		formatTime(st.UpdatedAt), formatTime(doc.ProcessedAt), formatTime(idx.BuiltAt))
	if err != nil {
		return err
	}

	for pos, url := range idx.PageOrder {
		page, ok := idx.Pages[url]
		if !ok {
			continue
		}
		links, err := encodeStrings(page.Links)
		if err != nil {
			return fmt.Errorf("encode links: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO pages (document_id, url, source_url, title, content, links, content_hash, position, fetched_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, doc.ID, page.URL, page.SourceURL, page.Title, page.Content, links, page.ContentHash, pos,
			formatTime(page.FetchedAt))
		if err != nil {
			return err
		}
	}

	for _, c := range idx.Chunks {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO chunks (id, document_id, page_url, position, text, embedding)
			VALUES (?, ?, ?, ?, ?, ?)
		`, c.ID, doc.ID, c.PageURL, c.Index, c.Text, encodeEmbedding(c.Embedding))
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// FindDocumentByID retrieves a document by ID.
func (s *DocumentStore) FindDocumentByID(ctx context.Context, id string) (*docqa.Document, error) {
	var doc docqa.Document
	var concepts, state, statusUpdatedAt, processedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, url, title, summary, key_concepts, language_code,
			state, sections_analyzed, total_pages, completion_percentage, message, job_id,
			status_updated_at, processed_at
		FROM documents
		WHERE id = ?
	`, id).Scan(&doc.ID, &doc.URL, &doc.Title, &doc.Summary, &concepts, &doc.LanguageCode,
		&state, &doc.Status.SectionsAnalyzed, &doc.Status.TotalPages, &doc.Status.CompletionPercentage,
		&doc.Status.Message, &doc.Status.JobID, &statusUpdatedAt, &processedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, docqa.Errorf(docqa.ENOTFOUND, "document not found")
	}
	if err != nil {
		return nil, err
	}

	if doc.KeyConcepts, err = decodeStrings(concepts, "key_concepts"); err != nil {
		return nil, err
	}
	if doc.Status.UpdatedAt, err = parseRFC3339(statusUpdatedAt, "status_updated_at"); err != nil {
		return nil, err
	}
	if doc.ProcessedAt, err = parseRFC3339(processedAt, "processed_at"); err != nil {
		return nil, err
	}
	doc.Status.DocID = doc.ID
	doc.Status.URL = doc.URL
	doc.Status.State = docqa.DocumentState(state)

	return &doc, nil
}

// FindIndex rebuilds the stored index of a document, including its
// keyword index.
func (s *DocumentStore) FindIndex(ctx context.Context, id string) (*docqa.DocumentIndex, error) {
	idx := &docqa.DocumentIndex{DocID: id, Pages: make(map[string]*docqa.Page)}
	var builtAt string

	err := s.db.QueryRowContext(ctx, "SELECT url, built_at FROM documents WHERE id = ?", id).Scan(&idx.URL, &builtAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, docqa.Errorf(docqa.ENOTFOUND, "document not found")
	}
	if err != nil {
		return nil, err
	}
	if idx.BuiltAt, err = parseRFC3339(builtAt, "built_at"); err != nil {
		return nil, err
	}

	if err := s.loadPages(ctx, idx); err != nil {
		return nil, err
	}
	if err := s.loadChunks(ctx, idx); err != nil {
		return nil, err
	}
	return idx, nil
}

func (s *DocumentStore) loadPages(ctx context.Context, idx *docqa.DocumentIndex) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT url, source_url, title, content, links, content_hash, fetched_at
		FROM pages
		WHERE document_id = ?
		ORDER BY position ASC
	`, idx.DocID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var page docqa.Page
		var links, fetchedAt string
		if err := rows.Scan(&page.URL, &page.SourceURL, &page.Title, &page.Content, &links,
			&page.ContentHash, &fetchedAt); err != nil {
			return err
		}
		if page.Links, err = decodeStrings(links, "links"); err != nil {
			return err
		}
		if page.FetchedAt, err = parseRFC3339(fetchedAt, "fetched_at"); err != nil {
			return err
		}
		idx.Pages[page.URL] = &page
		idx.PageOrder = append(idx.PageOrder, page.URL)
		idx.AddPageKeywords(&page)
	}
	return rows.Err()
}

func (s *DocumentStore) loadChunks(ctx context.Context, idx *docqa.DocumentIndex) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, page_url, position, text, embedding
		FROM chunks
		WHERE document_id = ?
		ORDER BY position ASC
	`, idx.DocID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		chunk := &docqa.Chunk{DocID: idx.DocID}
		var embedding []byte
		if err := rows.Scan(&chunk.ID, &chunk.PageURL, &chunk.Index, &chunk.Text, &embedding); err != nil {
			return err
		}
		if chunk.Embedding, err = decodeEmbedding(embedding); err != nil {
			return fmt.Errorf("chunk %s: %w", chunk.ID, err)
		}
		idx.Chunks = append(idx.Chunks, chunk)
	}
	return rows.Err()
}

// DeleteDocument permanently removes a document with its pages and chunks.
func (s *DocumentStore) DeleteDocument(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return docqa.Errorf(docqa.ENOTFOUND, "document not found")
	}

	return nil
}
