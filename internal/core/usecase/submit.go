package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/caseworks/evidence-intake/internal/core/domain"
	"github.com/caseworks/evidence-intake/internal/core/ports"
)

type SubmitDocumentUseCase struct {
	repo    ports.DocumentRepository
	storage ports.BlobStorage
	queue   ports.MessageQueue
	pages   ports.PageCounter
	audit   ports.AuditSink
}

func NewSubmitDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.BlobStorage,
	queue ports.MessageQueue,
	pages ports.PageCounter,
	audit ports.AuditSink,
) *SubmitDocumentUseCase {
	return &SubmitDocumentUseCase{
		repo:    repo,
		storage: storage,
		queue:   queue,
		pages:   pages,
		audit:   audit,
	}
}

// Submit registers an incoming document: content hash, blob upload,
// case-scoped duplicate check, and the ingestion event that hands it to the
// worker. Duplicates are flagged and kept, never rejected here.
func (uc *SubmitDocumentUseCase) Submit(ctx context.Context, req ports.SubmitRequest) (*domain.Document, error) {
	if err := validateSubmit(req); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	source := req.Source
	if source == "" {
		source = domain.SourceUpload
	}

	location, err := uc.storage.Upload(ctx, req.CaseID, id, req.Content, req.Filename, req.MimeType)
	if err != nil {
		return nil, domain.WrapError(domain.ErrExternalService, "upload to blob storage", err)
	}

	doc := &domain.Document{
		ID:          id,
		CaseID:      req.CaseID,
		Type:        domain.ParseDocumentType(req.TypeHint),
		Source:      source,
		Status:      domain.StatusUploaded,
		Priority:    domain.ParsePriority(req.Priority),
		Filename:    req.Filename,
		SizeBytes:   int64(len(req.Content)),
		MimeType:    req.MimeType,
		ContentHash: domain.ContentDigest(req.Content),
		StoragePath: location,
		PageCount:   uc.pages.Count(req.Content, req.MimeType),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	duplicateOf, err := uc.repo.Register(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("register document: %w", err)
	}

	appendAudit(ctx, uc.audit, ports.AuditEvent{
		DocumentID: doc.ID,
		CaseID:     doc.CaseID,
		Action:     "document_submitted",
		Detail:     fmt.Sprintf("filename=%s type=%s", doc.Filename, doc.Type),
		OccurredAt: now,
	})
	if duplicateOf != "" {
		appendAudit(ctx, uc.audit, ports.AuditEvent{
			DocumentID: doc.ID,
			CaseID:     doc.CaseID,
			Action:     "duplicate_detected",
			Detail:     fmt.Sprintf("matches document %s", duplicateOf),
			OccurredAt: now,
		})
	}

	if err := uc.queue.PublishDocumentIngested(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("publish ingestion event: %w", err)
	}

	return doc, nil
}

func validateSubmit(req ports.SubmitRequest) error {
	switch {
	case strings.TrimSpace(req.CaseID) == "":
		return domain.WrapError(domain.ErrInvalidInput, "submit document", errors.New("case id is required"))
	case len(req.Content) == 0:
		return domain.WrapError(domain.ErrInvalidInput, "submit document", errors.New("document content is empty"))
	case strings.TrimSpace(req.Filename) == "":
		return domain.WrapError(domain.ErrInvalidInput, "submit document", errors.New("filename is required"))
	}
	return nil
}
