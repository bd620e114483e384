package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/caseworks/evidence-intake/internal/core/domain"
)

// Store is the authoritative in-memory document registry. All index
// mutations (registration, hash insertion, status transition) happen under
// one lock, so per-document updates are atomic and two concurrent
// submissions of identical content always see each other.
type Store struct {
	mu          sync.RWMutex
	documents   map[string]*domain.Document
	extractions map[string][]*domain.Extraction
	hashIndex   map[hashKey]string
}

// hashKey scopes the dedup index to one case: identical content in two
// different cases is not a duplicate.
type hashKey struct {
	caseID string
	digest string
}

func NewStore() *Store {
	return &Store{
		documents:   make(map[string]*domain.Document),
		extractions: make(map[string][]*domain.Extraction),
		hashIndex:   make(map[hashKey]string),
	}
}

// Register stores the document and indexes its content hash atomically. On a
// case-scoped hash hit the new document is flagged as a duplicate (and the
// matched id returned) but still registered; routing is the pipeline's call.
func (s *Store) Register(_ context.Context, doc *domain.Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.documents[doc.ID]; exists {
		return "", domain.WrapError(domain.ErrInvalidInput, "register document",
			fmt.Errorf("document %s already registered", doc.ID))
	}

	key := hashKey{caseID: doc.CaseID, digest: doc.ContentHash}
	duplicateOf := ""
	if existing, hit := s.hashIndex[key]; hit {
		duplicateOf = existing
		doc.IsDuplicate = true
	} else {
		s.hashIndex[key] = doc.ID
	}

	s.documents[doc.ID] = copyDocument(doc)
	return duplicateOf, nil
}

func (s *Store) Get(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get document", fmt.Errorf("document %s", id))
	}
	return copyDocument(doc), nil
}

func (s *Store) List(_ context.Context) ([]*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(*domain.Document) bool { return true }), nil
}

func (s *Store) ListByStatus(_ context.Context, status domain.DocumentStatus) ([]*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(d *domain.Document) bool { return d.Status == status }), nil
}

func (s *Store) ListByCategory(_ context.Context, category domain.Category) ([]*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(d *domain.Document) bool { return d.Category() == category }), nil
}

// collect is called with the read lock held. Results are ordered by creation
// time so listings are stable.
func (s *Store) collect(keep func(*domain.Document) bool) []*domain.Document {
	out := make([]*domain.Document, 0)
	for _, doc := range s.documents {
		if keep(doc) {
			out = append(out, copyDocument(doc))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Transition compare-and-sets the status. The from guard rejects a stale
// writer that lost a race with reprocess; the lifecycle table rejects
// anything else.
func (s *Store) Transition(_ context.Context, id string, from, to domain.DocumentStatus, errMessage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[id]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "transition document", fmt.Errorf("document %s", id))
	}
	if doc.Status != from {
		return domain.WrapError(domain.ErrInvalidTransition, "transition document",
			fmt.Errorf("document %s is %s, expected %s", id, doc.Status, from))
	}
	if !domain.CanTransition(from, to) {
		return domain.WrapError(domain.ErrInvalidTransition, "transition document",
			fmt.Errorf("%s -> %s is not allowed", from, to))
	}

	doc.Status = to
	doc.Error = errMessage
	doc.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) SaveExtractionOutcome(_ context.Context, id string, docType domain.DocumentType, confidence float64, pageCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[id]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "save extraction outcome", fmt.Errorf("document %s", id))
	}
	doc.Type = docType
	doc.Confidence = confidence
	doc.PageCount = pageCount
	doc.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) MarkReviewed(_ context.Context, id, reviewedBy, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[id]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "mark reviewed", fmt.Errorf("document %s", id))
	}
	now := time.Now().UTC()
	doc.ReviewReason = reason
	if reviewedBy != "" {
		doc.ReviewedBy = reviewedBy
		doc.ReviewedAt = &now
	}
	doc.UpdatedAt = now
	return nil
}

func (s *Store) ReplaceExtractions(_ context.Context, documentID string, extractions []*domain.Extraction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[documentID]; !ok {
		return domain.WrapError(domain.ErrNotFound, "replace extractions", fmt.Errorf("document %s", documentID))
	}

	stored := make([]*domain.Extraction, 0, len(extractions))
	for _, ex := range extractions {
		stored = append(stored, copyExtraction(ex))
	}
	s.extractions[documentID] = stored
	return nil
}

func (s *Store) GetExtractions(_ context.Context, documentID string) ([]*domain.Extraction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Extraction, 0, len(s.extractions[documentID]))
	for _, ex := range s.extractions[documentID] {
		out = append(out, copyExtraction(ex))
	}
	return out, nil
}

func (s *Store) UpdateExtraction(_ context.Context, extraction *domain.Extraction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.extractions[extraction.DocumentID]
	for i, ex := range stored {
		if ex.ID == extraction.ID {
			stored[i] = copyExtraction(extraction)
			return nil
		}
	}
	return domain.WrapError(domain.ErrNotFound, "update extraction",
		fmt.Errorf("extraction %s for document %s", extraction.ID, extraction.DocumentID))
}

func copyDocument(doc *domain.Document) *domain.Document {
	out := *doc
	if doc.ReviewedAt != nil {
		at := *doc.ReviewedAt
		out.ReviewedAt = &at
	}
	return &out
}

func copyExtraction(ex *domain.Extraction) *domain.Extraction {
	out := *ex
	return &out
}
