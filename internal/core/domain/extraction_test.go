package domain

import (
	"strings"
	"testing"
)

func TestNewExtractionRejectsOutOfRangeConfidence(t *testing.T) {
	for _, confidence := range []float64{-0.01, 1.01, 2} {
		_, err := NewExtraction("ex-1", "doc-1", "wages", "100", confidence)
		if err == nil {
			t.Fatalf("expected error for confidence %v", confidence)
		}
		if !IsKind(err, ErrInvalidInput) {
			t.Fatalf("expected invalid input kind, got %v", err)
		}
	}

	for _, confidence := range []float64{0, 0.5, 1} {
		if _, err := NewExtraction("ex-1", "doc-1", "wages", "100", confidence); err != nil {
			t.Fatalf("expected confidence %v to be accepted, got %v", confidence, err)
		}
	}
}

func TestNewExtractionClassifiesPII(t *testing.T) {
	ex, err := NewExtraction("ex-1", "doc-1", "ssn", "123-45-6789", 0.9)
	if err != nil {
		t.Fatal(err)
	}
	if !ex.IsPII || ex.PIIType != PIISSN {
		t.Fatalf("expected ssn field to classify as SSN PII, got %v/%v", ex.IsPII, ex.PIIType)
	}

	plain, err := NewExtraction("ex-2", "doc-1", "employer_name", "ACME Corp", 0.9)
	if err != nil {
		t.Fatal(err)
	}
	if plain.IsPII || plain.PIIType != PIINone {
		t.Fatalf("expected employer_name to be non-PII, got %v/%v", plain.IsPII, plain.PIIType)
	}
}

func TestMaskValue(t *testing.T) {
	if got := MaskValue(PIISSN, "123-45-6789"); got != "XXX-XX-6789" {
		t.Errorf("SSN mask = %q, want XXX-XX-6789", got)
	}
	if got := MaskValue(PIIBankAccount, "123456789012"); got != "****9012" {
		t.Errorf("bank account mask = %q, want ****9012", got)
	}
	if got := MaskValue(PIIDateOfBirth, "01/02/1990"); got != strings.Repeat("*", 10) {
		t.Errorf("unrecognized PII type mask = %q, want full mask", got)
	}
	if got := MaskValue(PIINone, "visible"); got != "visible" {
		t.Errorf("non-PII mask = %q, want passthrough", got)
	}
}

func TestDisplayValueHonorsAuthorization(t *testing.T) {
	ex, err := NewExtraction("ex-1", "doc-1", "account_number", "123456789012", 0.8)
	if err != nil {
		t.Fatal(err)
	}
	if got := ex.DisplayValue(false); got != "****9012" {
		t.Fatalf("unauthorized display = %q, want masked", got)
	}
	if got := ex.DisplayValue(true); got != "123456789012" {
		t.Fatalf("authorized display = %q, want true value", got)
	}
}

func TestCorrectCapturesOriginalValueOnce(t *testing.T) {
	ex, err := NewExtraction("ex-1", "doc-1", "wages", "50000", 0.72)
	if err != nil {
		t.Fatal(err)
	}

	ex.Correct("52000", "caseworker-a")
	if ex.OriginalValue != "50000" {
		t.Fatalf("expected original value 50000, got %q", ex.OriginalValue)
	}
	if ex.FieldValue != "52000" || !ex.ManuallyCorrected || ex.CorrectedBy != "caseworker-a" {
		t.Fatalf("first correction not applied: %+v", ex)
	}
	if ex.Confidence != 1.0 {
		t.Fatalf("expected confidence forced to 1.0, got %v", ex.Confidence)
	}

	ex.Correct("53000", "caseworker-b")
	if ex.OriginalValue != "50000" {
		t.Fatalf("second correction must not overwrite original value, got %q", ex.OriginalValue)
	}
	if ex.FieldValue != "53000" || ex.CorrectedBy != "caseworker-b" {
		t.Fatalf("second correction not applied: %+v", ex)
	}
}

func TestSetValidationResult(t *testing.T) {
	ex, err := NewExtraction("ex-1", "doc-1", "wages", "50000", 0.9)
	if err != nil {
		t.Fatal(err)
	}
	if ex.Validated {
		t.Fatal("new extraction must not be validated")
	}
	ex.SetValidationResult(ValidationWarning)
	if !ex.Validated || ex.ValidationStatus != ValidationWarning {
		t.Fatalf("validation result not recorded: %+v", ex)
	}
}

func TestContentDigestIsDeterministic(t *testing.T) {
	a := ContentDigest([]byte("w2 scan bytes"))
	b := ContentDigest([]byte("w2 scan bytes"))
	c := ContentDigest([]byte("different bytes"))

	if a != b {
		t.Fatalf("same bytes produced different digests: %s vs %s", a, b)
	}
	if a == c {
		t.Fatal("different bytes produced the same digest")
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
}
