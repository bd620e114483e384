package validation

import (
	"fmt"
	"sync"
	"time"

	"github.com/caseworks/evidence-intake/internal/core/domain"
)

// Verdict is the aggregate outcome of one evaluation run together with the
// ordered per-rule results. It is ephemeral and never persisted.
type Verdict struct {
	Status  domain.ValidationStatus `json:"status"`
	Results []Result                `json:"results"`
}

// Engine holds the rule registry keyed by document type. Rules evaluate in
// registration order. Safe for concurrent use.
type Engine struct {
	mu    sync.RWMutex
	rules map[domain.DocumentType][]*Rule
	now   func() time.Time
}

func NewEngine() *Engine {
	e := &Engine{
		rules: make(map[domain.DocumentType][]*Rule),
		now:   func() time.Time { return time.Now().UTC() },
	}
	registerBuiltins(e)
	return e
}

// AddRule registers a custom rule. The rule was already validated at
// construction, so registration cannot fail on a malformed pattern; it fails
// only on an id collision.
func (e *Engine) AddRule(r *Rule) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, existing := range e.rules[r.DocumentType] {
		if existing.ID == r.ID {
			return domain.WrapError(domain.ErrRuleConfig, "add rule",
				fmt.Errorf("rule %q already registered for %s", r.ID, r.DocumentType))
		}
	}
	e.rules[r.DocumentType] = append(e.rules[r.DocumentType], r)
	return nil
}

// RemoveRule unregisters a custom rule. Built-in rules can never be removed.
func (e *Engine) RemoveRule(docType domain.DocumentType, ruleID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	rules := e.rules[docType]
	for i, r := range rules {
		if r.ID != ruleID {
			continue
		}
		if r.BuiltIn {
			return domain.WrapError(domain.ErrRuleConfig, "remove rule",
				fmt.Errorf("rule %q is built-in", ruleID))
		}
		e.rules[docType] = append(rules[:i:i], rules[i+1:]...)
		return nil
	}
	return domain.WrapError(domain.ErrNotFound, "remove rule",
		fmt.Errorf("no rule %q for %s", ruleID, docType))
}

// Rules returns a snapshot of the rules registered for a document type.
func (e *Engine) Rules(docType domain.DocumentType) []*Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*Rule, len(e.rules[docType]))
	copy(out, e.rules[docType])
	return out
}

// Evaluate runs every rule registered for the document's type against its
// extractions and stamps each touched extraction with its field-level
// verdict. Error-severity failures aggregate to FAILED, warning-severity
// findings to WARNING; info-severity findings are advisory and never
// degrade the verdict.
func (e *Engine) Evaluate(doc *domain.Document, extractions []*domain.Extraction, ref CaseReference) Verdict {
	rules := e.Rules(doc.Type)
	now := e.now()

	results := make([]Result, 0, len(rules))
	for _, r := range rules {
		results = append(results, r.Evaluate(extractions, ref, now))
	}

	stampExtractions(extractions, results)
	return Verdict{Status: aggregate(results), Results: results}
}

func aggregate(results []Result) domain.ValidationStatus {
	sawWarning := false
	for _, res := range results {
		if res.Status != ResultFailed && res.Status != ResultWarning {
			continue
		}
		switch res.Severity {
		case SeverityError:
			if res.Status == ResultFailed {
				return domain.ValidationFailed
			}
			sawWarning = true
		case SeverityWarning:
			sawWarning = true
		}
		// info-severity findings stay out of the aggregate
	}
	if sawWarning {
		return domain.ValidationWarning
	}
	return domain.ValidationPassed
}

// stampExtractions records the worst non-skipped outcome per field on the
// extraction itself. Fields no rule touched stay unvalidated.
func stampExtractions(extractions []*domain.Extraction, results []Result) {
	perField := make(map[string]domain.ValidationStatus)
	for _, res := range results {
		if res.FieldName == "" || res.Status == ResultSkipped {
			continue
		}
		current, seen := perField[res.FieldName]

		var status domain.ValidationStatus
		switch {
		case res.Status == ResultFailed && res.Severity == SeverityError:
			status = domain.ValidationFailed
		case (res.Status == ResultFailed || res.Status == ResultWarning) && res.Severity != SeverityInfo:
			status = domain.ValidationWarning
		default:
			status = domain.ValidationPassed
		}

		if !seen || worse(status, current) {
			perField[res.FieldName] = status
		}
	}

	for _, ex := range extractions {
		if status, ok := perField[ex.FieldName]; ok {
			ex.SetValidationResult(status)
		}
	}
}

func worse(a, b domain.ValidationStatus) bool {
	rank := map[domain.ValidationStatus]int{
		domain.ValidationPassed:  0,
		domain.ValidationWarning: 1,
		domain.ValidationFailed:  2,
	}
	return rank[a] > rank[b]
}
