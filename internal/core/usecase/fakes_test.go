package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/caseworks/evidence-intake/internal/core/ports"
)

// fakeStorage is an in-memory blob store keyed by the location it hands out.
type fakeStorage struct {
	mu        sync.Mutex
	blobs     map[string][]byte
	uploadErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{blobs: make(map[string][]byte)}
}

func (s *fakeStorage) Upload(_ context.Context, caseID, documentID string, data []byte, filename, _ string) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	location := fmt.Sprintf("%s/%s_%s", caseID, documentID, filename)
	s.blobs[location] = data
	return location, nil
}

func (s *fakeStorage) Download(_ context.Context, location string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[location]
	if !ok {
		return nil, fmt.Errorf("no blob at %s", location)
	}
	return data, nil
}

type fakeQueue struct {
	mu         sync.Mutex
	published  []string
	publishErr error
}

func (q *fakeQueue) PublishDocumentIngested(_ context.Context, documentID string) error {
	if q.publishErr != nil {
		return q.publishErr
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.published = append(q.published, documentID)
	return nil
}

func (q *fakeQueue) SubscribeDocumentIngested(context.Context, func(context.Context, string) error) error {
	return errors.New("not implemented in fake")
}

// fakeExtractor serves one canned response, or fails.
type fakeExtractor struct {
	output ports.ExtractionOutput
	err    error
	calls  int
}

func (e *fakeExtractor) Extract(context.Context, []byte, string) (ports.ExtractionOutput, error) {
	e.calls++
	if e.err != nil {
		return ports.ExtractionOutput{}, e.err
	}
	return e.output, nil
}

type fakeAudit struct {
	mu     sync.Mutex
	events []ports.AuditEvent
	err    error
}

func (a *fakeAudit) Append(_ context.Context, event ports.AuditEvent) error {
	if a.err != nil {
		return a.err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, event)
	return nil
}

func (a *fakeAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.events))
	for _, ev := range a.events {
		out = append(out, ev.Action)
	}
	return out
}

func (a *fakeAudit) has(action string) bool {
	for _, got := range a.actions() {
		if got == action {
			return true
		}
	}
	return false
}

type fakeCaseRefs struct {
	values map[string]map[string]string
}

func (p *fakeCaseRefs) Lookup(_ context.Context, caseID string) (map[string]string, error) {
	return p.values[caseID], nil
}

type fixedPageCounter struct{ pages int }

func (c fixedPageCounter) Count([]byte, string) int { return c.pages }
