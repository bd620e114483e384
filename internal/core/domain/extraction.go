package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type PIIType string

const (
	PIINone        PIIType = ""
	PIISSN         PIIType = "ssn"
	PIIBankAccount PIIType = "bank_account"
	PIIDateOfBirth PIIType = "date_of_birth"
	PIIDriversID   PIIType = "drivers_license_number"
)

// piiFields classifies extraction field names. Unlisted fields are not PII.
var piiFields = map[string]PIIType{
	"ssn":                    PIISSN,
	"social_security_number": PIISSN,
	"account_number":         PIIBankAccount,
	"routing_number":         PIIBankAccount,
	"date_of_birth":          PIIDateOfBirth,
	"dob":                    PIIDateOfBirth,
	"license_number":         PIIDriversID,
}

// ClassifyPII returns the PII type for a field name, PIINone if not PII.
func ClassifyPII(fieldName string) PIIType {
	return piiFields[strings.ToLower(strings.TrimSpace(fieldName))]
}

type ValidationStatus string

const (
	ValidationPassed  ValidationStatus = "passed"
	ValidationFailed  ValidationStatus = "failed"
	ValidationWarning ValidationStatus = "warning"
)

// Extraction is one structured field pulled out of a document. The original
// value is captured exactly once, on the first manual correction.
type Extraction struct {
	ID                string           `json:"id"`
	DocumentID        string           `json:"document_id"`
	FieldName         string           `json:"field_name"`
	FieldValue        string           `json:"field_value"`
	OriginalValue     string           `json:"original_value,omitempty"`
	Confidence        float64          `json:"confidence"`
	IsPII             bool             `json:"is_pii"`
	PIIType           PIIType          `json:"pii_type,omitempty"`
	ManuallyCorrected bool             `json:"manually_corrected"`
	CorrectedBy       string           `json:"corrected_by,omitempty"`
	Validated         bool             `json:"validated"`
	ValidationStatus  ValidationStatus `json:"validation_status,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// NewExtraction builds an extraction record for a raw (field, value,
// confidence) triple, classifying PII from the field name. Confidence outside
// [0,1] is an input error.
func NewExtraction(id, documentID, fieldName, value string, confidence float64) (*Extraction, error) {
	if confidence < 0 || confidence > 1 {
		return nil, WrapError(ErrInvalidInput, "new extraction",
			fmt.Errorf("confidence %v out of range [0,1] for field %q", confidence, fieldName))
	}
	if strings.TrimSpace(fieldName) == "" {
		return nil, WrapError(ErrInvalidInput, "new extraction", errors.New("empty field name"))
	}

	piiType := ClassifyPII(fieldName)
	now := time.Now().UTC()
	return &Extraction{
		ID:         id,
		DocumentID: documentID,
		FieldName:  fieldName,
		FieldValue: value,
		Confidence: confidence,
		IsPII:      piiType != PIINone,
		PIIType:    piiType,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// DisplayValue returns the field value masked per its PII type unless the
// caller is authorized to see PII.
func (e *Extraction) DisplayValue(includePII bool) string {
	if !e.IsPII || includePII {
		return e.FieldValue
	}
	return MaskValue(e.PIIType, e.FieldValue)
}

// MaskValue masks a raw value according to its PII type. Unrecognized PII
// types are fully masked rather than leaked.
func MaskValue(piiType PIIType, value string) string {
	switch piiType {
	case PIINone:
		return value
	case PIISSN:
		return "XXX-XX-" + lastN(value, 4)
	case PIIBankAccount:
		return "****" + lastN(value, 4)
	default:
		return strings.Repeat("*", len(value))
	}
}

func lastN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// Correct applies a manual correction. The pre-correction value is preserved
// as OriginalValue on the first call only; a human correction is treated as
// ground truth, so confidence is forced to 1.
func (e *Extraction) Correct(newValue, correctedBy string) {
	if !e.ManuallyCorrected {
		e.OriginalValue = e.FieldValue
	}
	e.FieldValue = newValue
	e.ManuallyCorrected = true
	e.CorrectedBy = correctedBy
	e.Confidence = 1.0
	e.UpdatedAt = time.Now().UTC()
}

// SetValidationResult records the verdict the validation engine reached for
// this field. Only the engine calls this.
func (e *Extraction) SetValidationResult(status ValidationStatus) {
	e.Validated = true
	e.ValidationStatus = status
	e.UpdatedAt = time.Now().UTC()
}
