package usecase

import (
	"context"

	"github.com/caseworks/evidence-intake/internal/core/domain"
	"github.com/caseworks/evidence-intake/internal/core/ports"
)

// DocumentQueryUseCase is the read model over the document registry.
type DocumentQueryUseCase struct {
	repo ports.DocumentRepository
}

func NewDocumentQueryUseCase(repo ports.DocumentRepository) *DocumentQueryUseCase {
	return &DocumentQueryUseCase{repo: repo}
}

func (uc *DocumentQueryUseCase) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	if err := validateID(documentID); err != nil {
		return nil, err
	}
	return uc.repo.Get(ctx, documentID)
}

func (uc *DocumentQueryUseCase) Extractions(ctx context.Context, documentID string) ([]*domain.Extraction, error) {
	if err := validateID(documentID); err != nil {
		return nil, err
	}
	if _, err := uc.repo.Get(ctx, documentID); err != nil {
		return nil, err
	}
	return uc.repo.GetExtractions(ctx, documentID)
}

func (uc *DocumentQueryUseCase) List(ctx context.Context) ([]*domain.Document, error) {
	return uc.repo.List(ctx)
}

func (uc *DocumentQueryUseCase) ListByStatus(ctx context.Context, status domain.DocumentStatus) ([]*domain.Document, error) {
	return uc.repo.ListByStatus(ctx, status)
}

func (uc *DocumentQueryUseCase) ListByCategory(ctx context.Context, category domain.Category) ([]*domain.Document, error) {
	return uc.repo.ListByCategory(ctx, category)
}
