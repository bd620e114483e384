package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/caseworks/evidence-intake/internal/core/domain"
)

type RuleType string

const (
	RuleRequiredField  RuleType = "required_field"
	RuleFormat         RuleType = "format"
	RuleRange          RuleType = "range"
	RuleCrossReference RuleType = "cross_reference"
	RuleAge            RuleType = "age"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Params carries the free-form rule parameters: "pattern" for format rules,
// "min"/"max" for range rules, "reference_key" for cross-reference rules,
// "max_age_days" for age rules.
type Params map[string]any

// Rule is one declarative validation check against a single extracted field
// of documents of one type. Built-in rules cannot be removed at runtime.
type Rule struct {
	ID           string              `json:"id"`
	DocumentType domain.DocumentType `json:"document_type"`
	Type         RuleType            `json:"rule_type"`
	FieldName    string              `json:"field_name"`
	Params       Params              `json:"parameters,omitempty"`
	Severity     Severity            `json:"severity"`
	Message      string              `json:"message"`
	BuiltIn      bool                `json:"built_in"`

	// compiled at construction for format rules; never at evaluation time
	pattern *regexp.Regexp
}

// NewRule validates and constructs a rule. Format rules compile their regex
// here so a malformed pattern is rejected synchronously at registration.
func NewRule(id string, docType domain.DocumentType, ruleType RuleType, fieldName string, params Params, severity Severity, message string) (*Rule, error) {
	r := &Rule{
		ID:           id,
		DocumentType: docType,
		Type:         ruleType,
		FieldName:    fieldName,
		Params:       params,
		Severity:     severity,
		Message:      message,
	}

	switch ruleType {
	case RuleRequiredField, RuleRange, RuleCrossReference, RuleAge:
	case RuleFormat:
		raw, _ := params["pattern"].(string)
		if raw == "" {
			return nil, domain.WrapError(domain.ErrRuleConfig, "new rule",
				fmt.Errorf("format rule %q has no pattern", id))
		}
		compiled, err := regexp.Compile(raw)
		if err != nil {
			return nil, domain.WrapError(domain.ErrRuleConfig, "new rule",
				fmt.Errorf("format rule %q pattern: %w", id, err))
		}
		r.pattern = compiled
	default:
		return nil, domain.WrapError(domain.ErrRuleConfig, "new rule",
			fmt.Errorf("unknown rule type %q", ruleType))
	}

	switch severity {
	case SeverityError, SeverityWarning, SeverityInfo:
	default:
		return nil, domain.WrapError(domain.ErrRuleConfig, "new rule",
			fmt.Errorf("unknown severity %q", severity))
	}

	if fieldName == "" && ruleType != RuleCrossReference {
		return nil, domain.WrapError(domain.ErrRuleConfig, "new rule",
			errors.New("rule has no target field"))
	}
	return r, nil
}

// ResultStatus is the outcome of one rule evaluation. Skipped is used when a
// rule cannot apply (e.g. an unparsable date) and must count as neither pass
// nor fail.
type ResultStatus string

const (
	ResultPassed  ResultStatus = "passed"
	ResultFailed  ResultStatus = "failed"
	ResultWarning ResultStatus = "warning"
	ResultSkipped ResultStatus = "skipped"
)

// Result is the ephemeral outcome of evaluating one rule.
type Result struct {
	RuleID    string       `json:"rule_id"`
	RuleType  RuleType     `json:"rule_type"`
	FieldName string       `json:"field_name"`
	Status    ResultStatus `json:"status"`
	Severity  Severity     `json:"severity"`
	Message   string       `json:"message"`
}

func (r *Rule) pass() Result {
	return Result{RuleID: r.ID, RuleType: r.Type, FieldName: r.FieldName, Status: ResultPassed, Severity: r.Severity, Message: ""}
}

func (r *Rule) fail(detail string) Result {
	msg := r.Message
	if msg == "" {
		msg = detail
	}
	return Result{RuleID: r.ID, RuleType: r.Type, FieldName: r.FieldName, Status: ResultFailed, Severity: r.Severity, Message: msg}
}

func (r *Rule) skip(detail string) Result {
	return Result{RuleID: r.ID, RuleType: r.Type, FieldName: r.FieldName, Status: ResultSkipped, Severity: r.Severity, Message: detail}
}
