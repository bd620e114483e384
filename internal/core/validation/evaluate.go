package validation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/caseworks/evidence-intake/internal/core/domain"
)

// CaseReference is authoritative case data supplied alongside a document for
// cross-reference checks, keyed by reference name (e.g. "applicant_name").
type CaseReference map[string]string

// Evaluate runs one rule against a document's extractions. The clock is
// injected so age rules are testable.
func (r *Rule) Evaluate(extractions []*domain.Extraction, ref CaseReference, now time.Time) Result {
	switch r.Type {
	case RuleRequiredField:
		return r.evalRequired(extractions)
	case RuleFormat:
		return r.evalFormat(extractions)
	case RuleRange:
		return r.evalRange(extractions)
	case RuleCrossReference:
		return r.evalCrossReference(extractions, ref)
	case RuleAge:
		return r.evalAge(extractions, now)
	default:
		return r.skip(fmt.Sprintf("unknown rule type %q", r.Type))
	}
}

func findField(extractions []*domain.Extraction, name string) *domain.Extraction {
	for _, ex := range extractions {
		if strings.EqualFold(ex.FieldName, name) {
			return ex
		}
	}
	return nil
}

func (r *Rule) evalRequired(extractions []*domain.Extraction) Result {
	ex := findField(extractions, r.FieldName)
	if ex == nil || strings.TrimSpace(ex.FieldValue) == "" {
		return r.fail(fmt.Sprintf("required field %q is missing or empty", r.FieldName))
	}
	return r.pass()
}

func (r *Rule) evalFormat(extractions []*domain.Extraction) Result {
	ex := findField(extractions, r.FieldName)
	if ex == nil {
		return r.skip(fmt.Sprintf("field %q not extracted", r.FieldName))
	}
	// full-string match, not substring
	if !r.pattern.MatchString(ex.FieldValue) || r.pattern.FindString(ex.FieldValue) != ex.FieldValue {
		return r.fail(fmt.Sprintf("field %q does not match expected format", r.FieldName))
	}
	return r.pass()
}

func (r *Rule) evalRange(extractions []*domain.Extraction) Result {
	ex := findField(extractions, r.FieldName)
	if ex == nil {
		return r.skip(fmt.Sprintf("field %q not extracted", r.FieldName))
	}

	value, err := parseNumeric(ex.FieldValue)
	if err != nil {
		return r.fail(fmt.Sprintf("field %q is not numeric", r.FieldName))
	}

	if min, ok := numParam(r.Params, "min"); ok && value < min {
		return r.fail(fmt.Sprintf("field %q value %v is below minimum %v", r.FieldName, value, min))
	}
	if max, ok := numParam(r.Params, "max"); ok && value > max {
		return r.fail(fmt.Sprintf("field %q value %v is above maximum %v", r.FieldName, value, max))
	}
	return r.pass()
}

func (r *Rule) evalCrossReference(extractions []*domain.Extraction, ref CaseReference) Result {
	key, _ := r.Params["reference_key"].(string)
	if key == "" {
		key = r.FieldName
	}
	authoritative, ok := ref[key]
	if !ok || authoritative == "" {
		return r.skip(fmt.Sprintf("no case reference value for %q", key))
	}

	ex := findField(extractions, r.FieldName)
	if ex == nil {
		return r.fail(fmt.Sprintf("field %q not extracted for cross-reference", r.FieldName))
	}
	if !FuzzyMatch(ex.FieldValue, authoritative) {
		return r.fail(fmt.Sprintf("field %q does not match case record", r.FieldName))
	}
	return r.pass()
}

func (r *Rule) evalAge(extractions []*domain.Extraction, now time.Time) Result {
	ex := findField(extractions, r.FieldName)
	if ex == nil {
		return r.skip(fmt.Sprintf("field %q not extracted", r.FieldName))
	}

	parsed, ok := parseDate(ex.FieldValue)
	if !ok {
		// An unparsable date means unexpected formatting, not a stale
		// document. Never fail on it.
		return r.skip(fmt.Sprintf("field %q date %q did not parse", r.FieldName, ex.FieldValue))
	}

	maxAgeDays, hasMax := numParam(r.Params, "max_age_days")
	if !hasMax {
		return r.skip("age rule has no max_age_days")
	}
	cutoff := now.AddDate(0, 0, -int(maxAgeDays))
	if parsed.Before(cutoff) {
		return r.fail(fmt.Sprintf("field %q is older than %d days", r.FieldName, int(maxAgeDays)))
	}
	return r.pass()
}

// parseNumeric parses a number out of a currency-ish string, stripping
// currency symbols, thousands separators and surrounding whitespace.
func parseNumeric(raw string) (float64, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	return strconv.ParseFloat(cleaned, 64)
}

// dateLayouts is tried in order; first parse wins.
var dateLayouts = []string{
	"01/02/2006", // US month/day/year
	"1/2/2006",
	"2006-01-02", // ISO
	"2006",       // bare year
}

func parseDate(raw string) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func numParam(p Params, key string) (float64, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
