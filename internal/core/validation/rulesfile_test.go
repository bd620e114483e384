package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/caseworks/evidence-intake/internal/core/domain"
)

func writeRulesFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadRulesFile(t *testing.T) {
	path := writeRulesFile(t, `
rules:
  - id: w2.employer_name.format
    document_type: w2
    rule_type: format
    field_name: employer_name
    severity: warning
    message: employer name contains suspicious characters
    parameters:
      pattern: "^[A-Za-z0-9 .,&'-]+$"
  - id: paystub.net_pay.range
    document_type: paystub
    rule_type: range
    field_name: net_pay
    severity: error
    parameters:
      min: 0
`)

	e := NewEngine()
	before := len(e.Rules(domain.TypeW2))

	loaded, err := LoadRulesFile(e, path)
	if err != nil {
		t.Fatalf("LoadRulesFile: %v", err)
	}
	if loaded != 2 {
		t.Fatalf("loaded %d rules, want 2", loaded)
	}
	if got := len(e.Rules(domain.TypeW2)); got != before+1 {
		t.Fatalf("W-2 rule count = %d, want %d", got, before+1)
	}

	var found *Rule
	for _, r := range e.Rules(domain.TypeW2) {
		if r.ID == "w2.employer_name.format" {
			found = r
			break
		}
	}
	if found == nil {
		t.Fatal("loaded rule not registered")
	}
	if found.BuiltIn {
		t.Error("file-loaded rule must not be marked built-in")
	}
}

func TestLoadRulesFileRejectsMalformedRule(t *testing.T) {
	path := writeRulesFile(t, `
rules:
  - id: bad.pattern
    document_type: w2
    rule_type: format
    field_name: ssn
    severity: error
    parameters:
      pattern: "[unclosed"
`)

	e := NewEngine()
	loaded, err := LoadRulesFile(e, path)
	if err == nil {
		t.Fatal("expected malformed pattern to fail the load")
	}
	if !domain.IsKind(err, domain.ErrRuleConfig) {
		t.Fatalf("expected rule config error, got %v", err)
	}
	if loaded != 0 {
		t.Fatalf("loaded = %d, want 0", loaded)
	}
}

func TestLoadRulesFileRejectsBadYAML(t *testing.T) {
	path := writeRulesFile(t, "rules: [not: closed")

	e := NewEngine()
	if _, err := LoadRulesFile(e, path); err == nil {
		t.Fatal("expected YAML parse failure")
	}
}

func TestLoadRulesFileMissingFile(t *testing.T) {
	e := NewEngine()
	if _, err := LoadRulesFile(e, filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected missing file to error")
	}
}
