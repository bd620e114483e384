package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/caseworks/evidence-intake/internal/core/domain"
	"github.com/caseworks/evidence-intake/internal/infrastructure/repository/memory"
)

type reviewFixture struct {
	repo   *memory.Store
	queue  *fakeQueue
	audit  *fakeAudit
	review *ReviewUseCase
}

func newReviewFixture(bulkLimit int) *reviewFixture {
	f := &reviewFixture{
		repo:  memory.NewStore(),
		queue: &fakeQueue{},
		audit: &fakeAudit{},
	}
	f.review = NewReviewUseCase(f.repo, f.queue, f.audit, bulkLimit)
	return f
}

// seedDocument registers a document already sitting in the given status.
func (f *reviewFixture) seedDocument(t *testing.T, status domain.DocumentStatus) *domain.Document {
	t.Helper()
	now := time.Now().UTC()
	doc := &domain.Document{
		ID:          uuid.NewString(),
		CaseID:      "case-1001",
		Type:        domain.TypeW2,
		Source:      domain.SourceUpload,
		Status:      status,
		Priority:    domain.PriorityStandard,
		Filename:    "w2.pdf",
		MimeType:    "application/pdf",
		ContentHash: domain.ContentDigest([]byte(uuid.NewString())),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.repo.Register(context.Background(), doc); err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestApprove(t *testing.T) {
	f := newReviewFixture(0)
	ctx := context.Background()
	doc := f.seedDocument(t, domain.StatusNeedsReview)

	if err := f.review.Approve(ctx, doc.ID, "caseworker-a"); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	got, _ := f.repo.Get(ctx, doc.ID)
	if got.Status != domain.StatusApproved {
		t.Fatalf("status = %s, want approved", got.Status)
	}
	if got.ReviewedBy != "caseworker-a" || got.ReviewedAt == nil {
		t.Fatalf("reviewer not recorded: %+v", got)
	}
	if !f.audit.has("review_decision") {
		t.Errorf("audit actions = %v, missing review_decision", f.audit.actions())
	}
}

func TestRejectRecordsReason(t *testing.T) {
	f := newReviewFixture(0)
	ctx := context.Background()
	doc := f.seedDocument(t, domain.StatusNeedsReview)

	if err := f.review.Reject(ctx, doc.ID, "caseworker-a", "illegible scan"); err != nil {
		t.Fatalf("Reject: %v", err)
	}

	got, _ := f.repo.Get(ctx, doc.ID)
	if got.Status != domain.StatusRejected {
		t.Fatalf("status = %s, want rejected", got.Status)
	}
	if got.ReviewReason != "illegible scan" {
		t.Fatalf("reason = %q", got.ReviewReason)
	}
}

func TestApproveRequiresReviewableStatus(t *testing.T) {
	f := newReviewFixture(0)
	ctx := context.Background()
	doc := f.seedDocument(t, domain.StatusUploaded)

	err := f.review.Approve(ctx, doc.ID, "caseworker-a")
	if !domain.IsKind(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestReviewRejectsMalformedID(t *testing.T) {
	f := newReviewFixture(0)
	ctx := context.Background()

	if err := f.review.Approve(ctx, "not-a-uuid", "caseworker-a"); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("Approve: expected invalid input, got %v", err)
	}
	if err := f.review.Reprocess(ctx, "not-a-uuid"); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("Reprocess: expected invalid input, got %v", err)
	}
}

func TestBulkApproveReportsPerID(t *testing.T) {
	f := newReviewFixture(0)
	ctx := context.Background()

	good := f.seedDocument(t, domain.StatusNeedsReview)
	wrongState := f.seedDocument(t, domain.StatusApproved)
	missing := uuid.NewString()

	outcomes, err := f.review.BulkApprove(ctx, []string{good.ID, wrongState.ID, missing}, "caseworker-a")
	if err != nil {
		t.Fatalf("BulkApprove: %v", err)
	}
	if len(outcomes) != 3 {
		t.Fatalf("got %d outcomes, want 3", len(outcomes))
	}

	if !outcomes[0].OK {
		t.Errorf("reviewable document failed: %s", outcomes[0].Error)
	}
	if outcomes[1].OK || outcomes[2].OK {
		t.Error("bad ids must fail individually, not silently succeed")
	}
	if outcomes[1].Error == "" || outcomes[2].Error == "" {
		t.Error("failed outcomes must carry the error")
	}

	got, _ := f.repo.Get(ctx, good.ID)
	if got.Status != domain.StatusApproved {
		t.Fatal("one bad id in the batch blocked a good one")
	}
}

func TestBulkLimits(t *testing.T) {
	f := newReviewFixture(2)
	ctx := context.Background()

	if _, err := f.review.BulkApprove(ctx, nil, "caseworker-a"); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("empty batch: expected invalid input, got %v", err)
	}

	ids := []string{uuid.NewString(), uuid.NewString(), uuid.NewString()}
	if _, err := f.review.BulkReject(ctx, ids, "caseworker-a", "x"); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("oversized batch: expected invalid input, got %v", err)
	}
}

func TestCorrectField(t *testing.T) {
	f := newReviewFixture(0)
	ctx := context.Background()
	doc := f.seedDocument(t, domain.StatusNeedsReview)

	wages, err := domain.NewExtraction(uuid.NewString(), doc.ID, "wages", "5O000", 0.61)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.repo.ReplaceExtractions(ctx, doc.ID, []*domain.Extraction{wages}); err != nil {
		t.Fatal(err)
	}

	corrected, err := f.review.CorrectField(ctx, doc.ID, "wages", "50000", "caseworker-a")
	if err != nil {
		t.Fatalf("CorrectField: %v", err)
	}
	if corrected.FieldValue != "50000" || corrected.OriginalValue != "5O000" {
		t.Fatalf("correction not applied: %+v", corrected)
	}
	if corrected.Confidence != 1.0 || !corrected.ManuallyCorrected {
		t.Fatalf("correction must be ground truth: %+v", corrected)
	}

	stored, _ := f.repo.GetExtractions(ctx, doc.ID)
	if stored[0].FieldValue != "50000" {
		t.Fatal("correction not persisted")
	}
	if !f.audit.has("field_corrected") {
		t.Errorf("audit actions = %v, missing field_corrected", f.audit.actions())
	}

	if _, err := f.review.CorrectField(ctx, doc.ID, "absent_field", "x", "caseworker-a"); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for unknown field, got %v", err)
	}
}

func TestCorrectFieldMatchesCaseInsensitively(t *testing.T) {
	f := newReviewFixture(0)
	ctx := context.Background()
	doc := f.seedDocument(t, domain.StatusNeedsReview)

	wages, err := domain.NewExtraction(uuid.NewString(), doc.ID, "wages", "5O000", 0.61)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.repo.ReplaceExtractions(ctx, doc.ID, []*domain.Extraction{wages}); err != nil {
		t.Fatal(err)
	}

	corrected, err := f.review.CorrectField(ctx, doc.ID, "Wages", "50000", "caseworker-a")
	if err != nil {
		t.Fatalf("CorrectField with mixed-case field name: %v", err)
	}
	if corrected.FieldName != "wages" || corrected.FieldValue != "50000" {
		t.Fatalf("correction not applied to the stored field: %+v", corrected)
	}
}

func TestCorrectFieldHidesPIIFromAudit(t *testing.T) {
	f := newReviewFixture(0)
	ctx := context.Background()
	doc := f.seedDocument(t, domain.StatusNeedsReview)

	ssn, err := domain.NewExtraction(uuid.NewString(), doc.ID, "ssn", "123-45-6780", 0.7)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.repo.ReplaceExtractions(ctx, doc.ID, []*domain.Extraction{ssn}); err != nil {
		t.Fatal(err)
	}

	if _, err := f.review.CorrectField(ctx, doc.ID, "ssn", "123-45-6789", "caseworker-a"); err != nil {
		t.Fatal(err)
	}

	for _, ev := range f.audit.events {
		if ev.Action != "field_corrected" {
			continue
		}
		if ev.Detail != "field=ssn" {
			t.Fatalf("audit detail leaked a PII value: %q", ev.Detail)
		}
		return
	}
	t.Fatal("field_corrected event not recorded")
}

func TestReprocess(t *testing.T) {
	f := newReviewFixture(0)
	ctx := context.Background()
	doc := f.seedDocument(t, domain.StatusFailed)

	if err := f.review.Reprocess(ctx, doc.ID); err != nil {
		t.Fatalf("Reprocess: %v", err)
	}

	got, _ := f.repo.Get(ctx, doc.ID)
	if got.Status != domain.StatusProcessing {
		t.Fatalf("status = %s, want processing", got.Status)
	}
	if len(f.queue.published) != 1 || f.queue.published[0] != doc.ID {
		t.Fatalf("published = %v, want the reprocessed id", f.queue.published)
	}
	if !f.audit.has("reprocess_requested") {
		t.Errorf("audit actions = %v, missing reprocess_requested", f.audit.actions())
	}
}

func TestReprocessClaimInvalidatesStaleWriter(t *testing.T) {
	f := newReviewFixture(0)
	ctx := context.Background()
	doc := f.seedDocument(t, domain.StatusFailed)

	if err := f.review.Reprocess(ctx, doc.ID); err != nil {
		t.Fatalf("Reprocess: %v", err)
	}

	// a writer still holding the pre-reprocess status loses the compare-and-set
	err := f.repo.Transition(ctx, doc.ID, domain.StatusFailed, domain.StatusNeedsReview, "")
	if !domain.IsKind(err, domain.ErrInvalidTransition) {
		t.Fatalf("stale transition = %v, want invalid transition", err)
	}

	got, _ := f.repo.Get(ctx, doc.ID)
	if got.Status != domain.StatusProcessing {
		t.Fatalf("status = %s, want processing after the reprocess claim", got.Status)
	}
}

func TestReprocessRefusesTerminalStatuses(t *testing.T) {
	f := newReviewFixture(0)
	ctx := context.Background()

	for _, status := range []domain.DocumentStatus{domain.StatusApproved, domain.StatusRejected} {
		doc := f.seedDocument(t, status)
		err := f.review.Reprocess(ctx, doc.ID)
		if !domain.IsKind(err, domain.ErrInvalidTransition) {
			t.Fatalf("%s: expected invalid transition, got %v", status, err)
		}
	}
	if len(f.queue.published) != 0 {
		t.Fatal("refused reprocess must not publish an event")
	}
}
