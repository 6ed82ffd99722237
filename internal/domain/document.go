package domain

import (
	"fmt"
	"time"
)

// DocumentStatus represents the lifecycle state of an uploaded document.
type DocumentStatus string

const (
	DocumentStatusQueued     DocumentStatus = "queued"
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusReviewed   DocumentStatus = "reviewed"
	DocumentStatusError      DocumentStatus = "error"
)

// IsTerminal reports whether no further pipeline mutation occurs in this state
// absent a fresh manual re-run.
func (s DocumentStatus) IsTerminal() bool {
	return s == DocumentStatusReviewed || s == DocumentStatusError
}

// Document represents an uploaded contract awaiting or holding risk analysis.
// RiskSummary is nil until the document reaches the reviewed status.
type Document struct {
	ID          string
	Title       string
	Industry    string
	FilePath    string
	Status      DocumentStatus
	RiskSummary []RiskItem
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewDocument creates a new Document in the queued state.
func NewDocument(id, title, industry, filePath string, createdAt time.Time) *Document {
	return &Document{
		ID:        id,
		Title:     title,
		Industry:  industry,
		FilePath:  filePath,
		Status:    DocumentStatusQueued,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

// ValidateDocument validates a Document instance.
func ValidateDocument(d *Document) error {
	if d == nil {
		return fmt.Errorf("document cannot be nil")
	}

	if d.ID == "" {
		return fmt.Errorf("document ID is required")
	}

	if d.Title == "" {
		return fmt.Errorf("document Title is required")
	}

	if d.FilePath == "" {
		return fmt.Errorf("document FilePath is required")
	}

	switch d.Status {
	case DocumentStatusQueued, DocumentStatusProcessing, DocumentStatusReviewed, DocumentStatusError:
	default:
		return ErrInvalidDocumentStatus
	}

	return nil
}
