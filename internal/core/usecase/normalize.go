package usecase

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/caseworks/evidence-intake/internal/core/domain"
	"github.com/caseworks/evidence-intake/internal/core/ports"
)

// NormalizeExtractions turns the raw (field, value, confidence) triples from
// the extraction engine into typed extraction records with PII
// classification. Any out-of-range confidence fails the whole batch: a
// malformed extractor response is not partially trusted.
func NormalizeExtractions(documentID string, fields []ports.ExtractedField) ([]*domain.Extraction, error) {
	extractions := make([]*domain.Extraction, 0, len(fields))
	for _, f := range fields {
		ex, err := domain.NewExtraction(uuid.NewString(), documentID, f.Name, f.Value, f.Confidence)
		if err != nil {
			return nil, err
		}
		extractions = append(extractions, ex)
	}
	return extractions, nil
}

// OverallConfidence aggregates per-field confidences into the document-level
// score: the arithmetic mean, 0 when nothing was extracted.
func OverallConfidence(extractions []*domain.Extraction) float64 {
	if len(extractions) == 0 {
		return 0
	}
	var sum float64
	for _, ex := range extractions {
		sum += ex.Confidence
	}
	return sum / float64(len(extractions))
}

// appendAudit is fire-and-forget: audit sink failures are logged, never
// propagated into the document lifecycle.
func appendAudit(ctx context.Context, sink ports.AuditSink, event ports.AuditEvent) {
	if sink == nil {
		return
	}
	if err := sink.Append(ctx, event); err != nil {
		slog.Warn("audit_append_failed",
			"document_id", event.DocumentID,
			"action", event.Action,
			"error", err,
		)
	}
}
