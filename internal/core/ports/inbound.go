package ports

import (
	"context"

	"github.com/caseworks/evidence-intake/internal/core/domain"
)

// SubmitRequest carries everything the boundary knows about an incoming
// document.
type SubmitRequest struct {
	CaseID   string
	Content  []byte
	Filename string
	MimeType string
	TypeHint string
	Priority string
	Source   domain.DocumentSource
}

// DocumentIntake is the inbound contract for document submission.
type DocumentIntake interface {
	Submit(ctx context.Context, req SubmitRequest) (*domain.Document, error)
}

// DocumentProcessor drives the extraction + validation pipeline for one
// document, asynchronously from submission.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// BulkOutcome is the per-id result of a bulk review operation. A bad id in a
// batch never blocks the rest.
type BulkOutcome struct {
	DocumentID string `json:"document_id"`
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
}

// DocumentReviewer is the inbound contract for human review decisions and
// manual field corrections.
type DocumentReviewer interface {
	Approve(ctx context.Context, documentID, reviewedBy string) error
	Reject(ctx context.Context, documentID, reviewedBy, reason string) error
	BulkApprove(ctx context.Context, documentIDs []string, reviewedBy string) ([]BulkOutcome, error)
	BulkReject(ctx context.Context, documentIDs []string, reviewedBy, reason string) ([]BulkOutcome, error)
	CorrectField(ctx context.Context, documentID, fieldName, newValue, correctedBy string) (*domain.Extraction, error)
	Reprocess(ctx context.Context, documentID string) error
}

// DocumentReader is the inbound read model.
type DocumentReader interface {
	Get(ctx context.Context, documentID string) (*domain.Document, error)
	Extractions(ctx context.Context, documentID string) ([]*domain.Extraction, error)
	List(ctx context.Context) ([]*domain.Document, error)
	ListByStatus(ctx context.Context, status domain.DocumentStatus) ([]*domain.Document, error)
	ListByCategory(ctx context.Context, category domain.Category) ([]*domain.Document, error)
}
