package docqa

import (
	"context"
	"time"
)

// DocumentState is the processing state of a document.
type DocumentState string

// DocumentState values.
const (
	DocumentNotFound   DocumentState = "not_found"
	DocumentInProgress DocumentState = "in_progress"
	DocumentCompleted  DocumentState = "completed"
	DocumentFailed     DocumentState = "failed"
	DocumentCancelled  DocumentState = "cancelled"
)

// Terminal reports whether no further progress will be recorded in state s.
func (s DocumentState) Terminal() bool {
	return s == DocumentCompleted || s == DocumentFailed || s == DocumentCancelled
}

// DocumentStatus is the pollable progress record of one document.
type DocumentStatus struct {
	DocID                string        `json:"docId"`
	URL                  string        `json:"url"`
	State                DocumentState `json:"status"`
	SectionsAnalyzed     int           `json:"sectionsAnalyzed"`
	TotalPages           int           `json:"totalPages"`
	CompletionPercentage float64       `json:"completionPercentage"`
	Message              string        `json:"message,omitempty"`
	JobID                string        `json:"jobId,omitempty"`
	UpdatedAt            time.Time     `json:"updatedAt"`
}

// StatusUpdate represents a partial update to a DocumentStatus.
// Nil fields are left unchanged.
type StatusUpdate struct {
	State                *DocumentState
	SectionsAnalyzed     *int
	TotalPages           *int
	CompletionPercentage *float64
	Message              *string
	JobID                *string
}

// StatusService stores per-document processing status.
type StatusService interface {
	// StartStatus records a fresh in_progress status for a new run.
	// Returns ECONFLICT if a run for the document is already in progress.
	StartStatus(ctx context.Context, status *DocumentStatus) error

	// FindStatus returns a snapshot of the document's status.
	// Unknown documents yield a status in state DocumentNotFound, never an error.
	FindStatus(ctx context.Context, docID string) (*DocumentStatus, error)

	// UpdateStatus applies upd. Once a status is terminal, updates are
	// rejected with ECONFLICT. Returns ENOTFOUND for unknown documents.
	UpdateStatus(ctx context.Context, docID string, upd StatusUpdate) (*DocumentStatus, error)
}
