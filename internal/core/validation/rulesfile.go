package validation

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/caseworks/evidence-intake/internal/core/domain"
)

// RulesFile is the on-disk declaration of custom validation rules. Example:
//
//	rules:
//	  - id: w2.employer_name.format
//	    document_type: w2
//	    rule_type: format
//	    field_name: employer_name
//	    severity: warning
//	    message: employer name contains suspicious characters
//	    parameters:
//	      pattern: "^[A-Za-z0-9 .,&'-]+$"
type RulesFile struct {
	Rules []RuleDecl `yaml:"rules"`
}

type RuleDecl struct {
	ID           string         `yaml:"id"`
	DocumentType string         `yaml:"document_type"`
	RuleType     string         `yaml:"rule_type"`
	FieldName    string         `yaml:"field_name"`
	Severity     string         `yaml:"severity"`
	Message      string         `yaml:"message"`
	Parameters   map[string]any `yaml:"parameters"`
}

// LoadRulesFile parses a YAML rules file and registers every declared rule.
// Each rule goes through the same construction-time validation as rules added
// at runtime, so a malformed pattern fails the load, not a later evaluation.
func LoadRulesFile(e *Engine, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read rules file: %w", err)
	}

	var file RulesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return 0, domain.WrapError(domain.ErrRuleConfig, "parse rules file", err)
	}

	loaded := 0
	for _, decl := range file.Rules {
		r, err := NewRule(
			decl.ID,
			domain.ParseDocumentType(decl.DocumentType),
			RuleType(decl.RuleType),
			decl.FieldName,
			Params(decl.Parameters),
			Severity(decl.Severity),
			decl.Message,
		)
		if err != nil {
			return loaded, err
		}
		if err := e.AddRule(r); err != nil {
			return loaded, err
		}
		loaded++
	}
	return loaded, nil
}
