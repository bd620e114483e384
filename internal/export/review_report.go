// Package export produces XLSX reports for caseworkers.
package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/caseworks/evidence-intake/internal/core/domain"
	"github.com/caseworks/evidence-intake/internal/core/ports"
)

// Service turns the review queue into an XLSX workbook: one row per document
// awaiting human review, with its failing context.
type Service struct {
	repo   ports.DocumentRepository
	logger *slog.Logger
}

func NewService(repo ports.DocumentRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// ReviewQueueXLSX returns workbook bytes listing every NEEDS_REVIEW document.
// Extraction values are masked: the report leaves the system.
func (s *Service) ReviewQueueXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	docs, err := s.repo.ListByStatus(ctx, domain.StatusNeedsReview)
	if err != nil {
		return nil, fmt.Errorf("list review queue: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Review Queue"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headers := []string{
		"Document ID",
		"Case ID",
		"Type",
		"Category",
		"Priority",
		"Filename",
		"Confidence",
		"Duplicate",
		"Review Reason",
		"Submitted",
		"Flagged Fields",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, doc := range docs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, doc.ID)
		write(2, doc.CaseID)
		write(3, string(doc.Type))
		write(4, string(doc.Category()))
		write(5, string(doc.Priority))
		write(6, doc.Filename)
		write(7, fmt.Sprintf("%.2f", doc.Confidence))
		write(8, doc.IsDuplicate)
		write(9, doc.ReviewReason)
		write(10, doc.CreatedAt.Format("2006-01-02"))
		write(11, s.flaggedFields(ctx, doc.ID))
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("review_report_generated",
		"documents", len(docs),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func (s *Service) flaggedFields(ctx context.Context, documentID string) string {
	extractions, err := s.repo.GetExtractions(ctx, documentID)
	if err != nil {
		return ""
	}
	flagged := ""
	for _, ex := range extractions {
		if !ex.Validated || ex.ValidationStatus == domain.ValidationPassed {
			continue
		}
		if flagged != "" {
			flagged += "; "
		}
		flagged += fmt.Sprintf("%s=%s (%s)", ex.FieldName, ex.DisplayValue(false), ex.ValidationStatus)
	}
	return flagged
}
