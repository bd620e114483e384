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

// DefaultBulkLimit caps how many ids one bulk review call may carry.
const DefaultBulkLimit = 50

type ReviewUseCase struct {
	repo      ports.DocumentRepository
	queue     ports.MessageQueue
	audit     ports.AuditSink
	bulkLimit int
}

func NewReviewUseCase(repo ports.DocumentRepository, queue ports.MessageQueue, audit ports.AuditSink, bulkLimit int) *ReviewUseCase {
	if bulkLimit <= 0 {
		bulkLimit = DefaultBulkLimit
	}
	return &ReviewUseCase{repo: repo, queue: queue, audit: audit, bulkLimit: bulkLimit}
}

// Approve records a human approval of a document awaiting review.
func (uc *ReviewUseCase) Approve(ctx context.Context, documentID, reviewedBy string) error {
	return uc.humanDecision(ctx, documentID, reviewedBy, "", domain.StatusApproved)
}

// Reject records a human rejection of a document awaiting review.
func (uc *ReviewUseCase) Reject(ctx context.Context, documentID, reviewedBy, reason string) error {
	return uc.humanDecision(ctx, documentID, reviewedBy, reason, domain.StatusRejected)
}

func (uc *ReviewUseCase) humanDecision(ctx context.Context, documentID, reviewedBy, reason string, to domain.DocumentStatus) error {
	if err := validateID(documentID); err != nil {
		return err
	}
	if err := uc.repo.Transition(ctx, documentID, domain.StatusNeedsReview, to, ""); err != nil {
		return err
	}
	if err := uc.repo.MarkReviewed(ctx, documentID, reviewedBy, reason); err != nil {
		return err
	}

	doc, err := uc.repo.Get(ctx, documentID)
	if err != nil {
		return err
	}
	appendAudit(ctx, uc.audit, ports.AuditEvent{
		DocumentID: documentID,
		CaseID:     doc.CaseID,
		Action:     "review_decision",
		Detail:     fmt.Sprintf("status=%s reason=%s", to, reason),
		Actor:      reviewedBy,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// BulkApprove applies Approve per id, up to the configured batch limit. Each
// id succeeds or fails independently.
func (uc *ReviewUseCase) BulkApprove(ctx context.Context, documentIDs []string, reviewedBy string) ([]ports.BulkOutcome, error) {
	return uc.bulk(ctx, documentIDs, func(ctx context.Context, id string) error {
		return uc.Approve(ctx, id, reviewedBy)
	})
}

// BulkReject applies Reject per id, up to the configured batch limit.
func (uc *ReviewUseCase) BulkReject(ctx context.Context, documentIDs []string, reviewedBy, reason string) ([]ports.BulkOutcome, error) {
	return uc.bulk(ctx, documentIDs, func(ctx context.Context, id string) error {
		return uc.Reject(ctx, id, reviewedBy, reason)
	})
}

func (uc *ReviewUseCase) bulk(ctx context.Context, documentIDs []string, apply func(context.Context, string) error) ([]ports.BulkOutcome, error) {
	if len(documentIDs) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "bulk review", errors.New("no document ids"))
	}
	if len(documentIDs) > uc.bulkLimit {
		return nil, domain.WrapError(domain.ErrInvalidInput, "bulk review",
			fmt.Errorf("%d ids exceeds batch limit %d", len(documentIDs), uc.bulkLimit))
	}

	outcomes := make([]ports.BulkOutcome, 0, len(documentIDs))
	for _, id := range documentIDs {
		outcome := ports.BulkOutcome{DocumentID: id, OK: true}
		if err := apply(ctx, id); err != nil {
			outcome.OK = false
			outcome.Error = err.Error()
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

// CorrectField applies a manual correction to one extracted field. The first
// correction preserves the machine-read value; every correction is ground
// truth (confidence 1.0) and audited.
func (uc *ReviewUseCase) CorrectField(ctx context.Context, documentID, fieldName, newValue, correctedBy string) (*domain.Extraction, error) {
	if err := validateID(documentID); err != nil {
		return nil, err
	}

	extractions, err := uc.repo.GetExtractions(ctx, documentID)
	if err != nil {
		return nil, err
	}

	// same lookup rule as validation: field names match case-insensitively
	var target *domain.Extraction
	for _, ex := range extractions {
		if strings.EqualFold(ex.FieldName, fieldName) {
			target = ex
			break
		}
	}
	if target == nil {
		return nil, domain.WrapError(domain.ErrNotFound, "correct field",
			fmt.Errorf("no extraction %q for document %s", fieldName, documentID))
	}

	previous := target.FieldValue
	target.Correct(newValue, correctedBy)
	if err := uc.repo.UpdateExtraction(ctx, target); err != nil {
		return nil, err
	}

	doc, err := uc.repo.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	detail := fmt.Sprintf("field=%s", fieldName)
	if !target.IsPII {
		detail = fmt.Sprintf("field=%s previous=%q", fieldName, previous)
	}
	appendAudit(ctx, uc.audit, ports.AuditEvent{
		DocumentID: documentID,
		CaseID:     doc.CaseID,
		Action:     "field_corrected",
		Detail:     detail,
		Actor:      correctedBy,
		OccurredAt: time.Now().UTC(),
	})
	return target, nil
}

// Reprocess claims the document back into processing and re-queues it. Prior
// extractions are discarded when the new run stores its results, so the call
// is idempotent.
func (uc *ReviewUseCase) Reprocess(ctx context.Context, documentID string) error {
	if err := validateID(documentID); err != nil {
		return err
	}

	doc, err := uc.repo.Get(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.Status.Terminal() {
		return domain.WrapError(domain.ErrInvalidTransition, "reprocess",
			fmt.Errorf("document %s is %s", documentID, doc.Status))
	}

	if err := uc.repo.Transition(ctx, documentID, doc.Status, domain.StatusProcessing, ""); err != nil {
		return err
	}
	appendAudit(ctx, uc.audit, ports.AuditEvent{
		DocumentID: documentID,
		CaseID:     doc.CaseID,
		Action:     "reprocess_requested",
		Detail:     fmt.Sprintf("from=%s", doc.Status),
		OccurredAt: time.Now().UTC(),
	})

	if err := uc.queue.PublishDocumentIngested(ctx, documentID); err != nil {
		return fmt.Errorf("publish reprocess event: %w", err)
	}
	return nil
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.WrapError(domain.ErrInvalidInput, "parse document id", err)
	}
	return nil
}
