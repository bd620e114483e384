// Package caseref supplies authoritative case-record data for
// cross-reference validation. The real system resolves this against the case
// management service; the static provider covers tests and local runs.
package caseref

import "context"

// Static serves reference values from a fixed per-case table.
type Static struct {
	values map[string]map[string]string
}

func NewStatic(values map[string]map[string]string) *Static {
	if values == nil {
		values = make(map[string]map[string]string)
	}
	return &Static{values: values}
}

func (s *Static) Lookup(_ context.Context, caseID string) (map[string]string, error) {
	return s.values[caseID], nil
}

// None is a provider with no reference data; cross-reference rules skip.
type None struct{}

func (None) Lookup(context.Context, string) (map[string]string, error) {
	return nil, nil
}
