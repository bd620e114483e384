package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/caseworks/evidence-intake/internal/core/domain"
	"github.com/caseworks/evidence-intake/internal/core/ports"
	"github.com/caseworks/evidence-intake/internal/core/validation"
)

var _ ports.DocumentProcessor = (*ProcessDocumentUseCase)(nil)

type ProcessDocumentUseCase struct {
	repo      ports.DocumentRepository
	storage   ports.BlobStorage
	extractor ports.FieldExtractor
	caseRefs  ports.CaseReferenceProvider
	engine    *validation.Engine
	audit     ports.AuditSink

	// validation PASSED still routes to review below this overall confidence
	confidenceThreshold float64

	// optional hook for per-rule-result instrumentation
	onRuleResult func(ruleType, status string)
}

// SetRuleResultObserver installs a callback invoked once per rule result
// during validation. Nil disables it.
func (uc *ProcessDocumentUseCase) SetRuleResultObserver(fn func(ruleType, status string)) {
	uc.onRuleResult = fn
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.BlobStorage,
	extractor ports.FieldExtractor,
	caseRefs ports.CaseReferenceProvider,
	engine *validation.Engine,
	audit ports.AuditSink,
	confidenceThreshold float64,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		repo:                repo,
		storage:             storage,
		extractor:           extractor,
		caseRefs:            caseRefs,
		engine:              engine,
		audit:               audit,
		confidenceThreshold: confidenceThreshold,
	}
}

// ProcessByID drives one document through extraction, normalization and
// validation. Extractor and storage errors park the document in FAILED with
// the error recorded; a later reprocess supersedes everything stored here.
func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	doc, err := uc.repo.Get(ctx, documentID)
	if err != nil {
		return fmt.Errorf("fetch document by id: %w", err)
	}

	if err := uc.transition(ctx, doc, doc.Status, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("claim for processing: %w", err)
	}

	extractions, err := uc.extractPipeline(ctx, doc)
	if err != nil {
		if failErr := uc.transition(ctx, doc, domain.StatusProcessing, domain.StatusFailed, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.transition(ctx, doc, domain.StatusProcessing, domain.StatusExtracted, ""); err != nil {
		return fmt.Errorf("set status=extracted: %w", err)
	}
	if err := uc.transition(ctx, doc, domain.StatusExtracted, domain.StatusValidating, ""); err != nil {
		return fmt.Errorf("set status=validating: %w", err)
	}

	verdict := uc.validate(ctx, doc, extractions)
	final, reason := uc.decide(doc, verdict)

	if err := uc.transition(ctx, doc, domain.StatusValidating, final, ""); err != nil {
		return fmt.Errorf("set final status: %w", err)
	}
	if final == domain.StatusNeedsReview || final == domain.StatusRejected {
		if err := uc.repo.MarkReviewed(ctx, doc.ID, "", reason); err != nil {
			return fmt.Errorf("record review reason: %w", err)
		}
	}
	return nil
}

// extractPipeline downloads the content, runs the external extraction engine
// and stores the normalized extraction records, replacing any prior set.
func (uc *ProcessDocumentUseCase) extractPipeline(ctx context.Context, doc *domain.Document) ([]*domain.Extraction, error) {
	content, err := uc.storage.Download(ctx, doc.StoragePath)
	if err != nil {
		return nil, domain.WrapError(domain.ErrExternalService, "download content", err)
	}

	output, err := uc.extractor.Extract(ctx, content, doc.MimeType)
	if err != nil {
		return nil, domain.WrapError(domain.ErrExternalService, "extract fields", err)
	}

	extractions, err := NormalizeExtractions(doc.ID, output.Fields)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.ReplaceExtractions(ctx, doc.ID, extractions); err != nil {
		return nil, fmt.Errorf("store extractions: %w", err)
	}

	// adopt the classified type only when intake had nothing better
	docType := doc.Type
	if classified := domain.ParseDocumentType(output.DocumentType); docType == domain.TypeOther && classified != domain.TypeOther {
		docType = classified
	}
	pageCount := doc.PageCount
	if output.PageCount > 0 {
		pageCount = output.PageCount
	}
	confidence := OverallConfidence(extractions)

	if err := uc.repo.SaveExtractionOutcome(ctx, doc.ID, docType, confidence, pageCount); err != nil {
		return nil, fmt.Errorf("save extraction outcome: %w", err)
	}
	doc.Type = docType
	doc.Confidence = confidence
	doc.PageCount = pageCount

	return extractions, nil
}

func (uc *ProcessDocumentUseCase) validate(ctx context.Context, doc *domain.Document, extractions []*domain.Extraction) validation.Verdict {
	var ref validation.CaseReference
	if uc.caseRefs != nil {
		if values, err := uc.caseRefs.Lookup(ctx, doc.CaseID); err == nil {
			ref = validation.CaseReference(values)
		}
	}

	verdict := uc.engine.Evaluate(doc, extractions, ref)
	if uc.onRuleResult != nil {
		for _, res := range verdict.Results {
			uc.onRuleResult(string(res.RuleType), string(res.Status))
		}
	}

	// persist the field-level stamps the engine applied
	for _, ex := range extractions {
		if ex.Validated {
			_ = uc.repo.UpdateExtraction(ctx, ex)
		}
	}

	appendAudit(ctx, uc.audit, ports.AuditEvent{
		DocumentID: doc.ID,
		CaseID:     doc.CaseID,
		Action:     "validation_completed",
		Detail:     fmt.Sprintf("status=%s rules=%d", verdict.Status, len(verdict.Results)),
		OccurredAt: time.Now().UTC(),
	})
	return verdict
}

// decide maps the validation verdict onto the terminal routing. Policy: a
// FAILED verdict rejects outright; review is reserved for ambiguity
// (warnings, low confidence, duplicate content).
func (uc *ProcessDocumentUseCase) decide(doc *domain.Document, verdict validation.Verdict) (domain.DocumentStatus, string) {
	switch {
	case verdict.Status == domain.ValidationFailed:
		return domain.StatusRejected, firstFailure(verdict.Results)
	case verdict.Status == domain.ValidationWarning:
		return domain.StatusNeedsReview, "validation produced warnings"
	case doc.IsDuplicate:
		return domain.StatusNeedsReview, "duplicate content within case"
	case doc.Confidence < uc.confidenceThreshold:
		return domain.StatusNeedsReview, fmt.Sprintf("overall confidence %.2f below threshold %.2f", doc.Confidence, uc.confidenceThreshold)
	default:
		return domain.StatusApproved, ""
	}
}

func firstFailure(results []validation.Result) string {
	for _, res := range results {
		if res.Status == validation.ResultFailed && res.Severity == validation.SeverityError {
			return res.Message
		}
	}
	return "validation failed"
}

func (uc *ProcessDocumentUseCase) transition(ctx context.Context, doc *domain.Document, from, to domain.DocumentStatus, errMessage string) error {
	if err := uc.repo.Transition(ctx, doc.ID, from, to, errMessage); err != nil {
		return err
	}
	doc.Status = to
	appendAudit(ctx, uc.audit, ports.AuditEvent{
		DocumentID: doc.ID,
		CaseID:     doc.CaseID,
		Action:     "status_changed",
		Detail:     fmt.Sprintf("%s -> %s", from, to),
		OccurredAt: time.Now().UTC(),
	})
	return nil
}
