package ports

import (
	"context"
	"time"

	"github.com/caseworks/evidence-intake/internal/core/domain"
)

// DocumentRepository is the authoritative in-memory registry of documents and
// extractions. Registration is atomic with the case-scoped content-hash index
// so two concurrent submissions of identical bytes cannot miss each other.
type DocumentRepository interface {
	// Register stores a new document and indexes its content hash. If the
	// same hash already exists within the same case, the stored document is
	// flagged as a duplicate and the id of the matched document is returned.
	Register(ctx context.Context, doc *domain.Document) (duplicateOf string, err error)

	Get(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context) ([]*domain.Document, error)
	ListByStatus(ctx context.Context, status domain.DocumentStatus) ([]*domain.Document, error)
	ListByCategory(ctx context.Context, category domain.Category) ([]*domain.Document, error)

	// Transition compare-and-sets the document status: it fails unless the
	// current status equals from and from → to is a legal lifecycle step.
	// errMessage is stored on the document (empty clears it).
	Transition(ctx context.Context, id string, from, to domain.DocumentStatus, errMessage string) error

	// SaveExtractionOutcome records what processing learned about the
	// document: its classified type, aggregate confidence and page count.
	SaveExtractionOutcome(ctx context.Context, id string, docType domain.DocumentType, confidence float64, pageCount int) error

	// MarkReviewed records the human decision metadata after a review
	// transition.
	MarkReviewed(ctx context.Context, id, reviewedBy, reason string) error

	// ReplaceExtractions discards any prior extractions for the document and
	// stores the given set. Reprocessing relies on this being idempotent.
	ReplaceExtractions(ctx context.Context, documentID string, extractions []*domain.Extraction) error
	GetExtractions(ctx context.Context, documentID string) ([]*domain.Extraction, error)
	UpdateExtraction(ctx context.Context, extraction *domain.Extraction) error
}

// BlobStorage stores raw document content. The returned location is opaque to
// the core.
type BlobStorage interface {
	Upload(ctx context.Context, caseID, documentID string, data []byte, filename, contentType string) (string, error)
	Download(ctx context.Context, location string) ([]byte, error)
}

// ExtractedField is one raw (field, value, confidence) triple from the
// extraction engine, before normalization.
type ExtractedField struct {
	Name       string
	Value      string
	Confidence float64
}

// ExtractionOutput is the contract of the external document-intelligence
// call: a classified type plus raw field triples.
type ExtractionOutput struct {
	DocumentType string
	Fields       []ExtractedField
	PageCount    int
}

// FieldExtractor calls the external extraction engine.
type FieldExtractor interface {
	Extract(ctx context.Context, content []byte, mimeType string) (ExtractionOutput, error)
}

// PageCounter determines a document's page count from its raw content at
// intake, before any extraction has run.
type PageCounter interface {
	Count(content []byte, mimeType string) int
}

// AuditEvent is one append-only record of a lifecycle transition or a
// correction.
type AuditEvent struct {
	DocumentID string
	CaseID     string
	Action     string
	Detail     string
	Actor      string
	OccurredAt time.Time
}

// AuditSink receives lifecycle audit events. Fire-and-forget from the core's
// perspective: sink failures are logged, never propagated.
type AuditSink interface {
	Append(ctx context.Context, event AuditEvent) error
}

// CaseReferenceProvider looks up authoritative case-record values (applicant
// name of record and similar) used by cross-reference rules. An empty map
// means no reference data is available and cross-reference rules are skipped.
type CaseReferenceProvider interface {
	Lookup(ctx context.Context, caseID string) (map[string]string, error)
}

// MessageQueue publishes/consumes document-ingested events between the API
// and worker processes.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
}
