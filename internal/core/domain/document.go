package domain

import "time"

type DocumentStatus string

const (
	StatusUploaded    DocumentStatus = "uploaded"
	StatusProcessing  DocumentStatus = "processing"
	StatusExtracted   DocumentStatus = "extracted"
	StatusValidating  DocumentStatus = "validating"
	StatusApproved    DocumentStatus = "approved"
	StatusNeedsReview DocumentStatus = "needs_review"
	StatusRejected    DocumentStatus = "rejected"
	StatusFailed      DocumentStatus = "failed"
)

// Terminal reports whether no further transition is allowed from s.
func (s DocumentStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

type DocumentType string

const (
	TypeW2             DocumentType = "w2"
	TypePaystub        DocumentType = "paystub"
	TypeTaxReturn      DocumentType = "tax_return"
	TypeBankStatement  DocumentType = "bank_statement"
	TypeDriversLicense DocumentType = "drivers_license"
	TypePassport       DocumentType = "passport"
	TypeSSNCard        DocumentType = "ssn_card"
	TypeBirthCert      DocumentType = "birth_certificate"
	TypeUtilityBill    DocumentType = "utility_bill"
	TypeLeaseAgreement DocumentType = "lease_agreement"
	TypeMortgageStmt   DocumentType = "mortgage_statement"
	TypeOther          DocumentType = "other"
)

// DocumentTypes lists every known type, TypeOther last.
var DocumentTypes = []DocumentType{
	TypeW2, TypePaystub, TypeTaxReturn, TypeBankStatement,
	TypeDriversLicense, TypePassport, TypeSSNCard, TypeBirthCert,
	TypeUtilityBill, TypeLeaseAgreement, TypeMortgageStmt,
	TypeOther,
}

// ParseDocumentType maps a free-form hint onto the closed enum,
// falling back to TypeOther for anything unrecognized.
func ParseDocumentType(s string) DocumentType {
	for _, t := range DocumentTypes {
		if string(t) == s {
			return t
		}
	}
	return TypeOther
}

type Category string

const (
	CategoryIncome    Category = "income"
	CategoryIdentity  Category = "identity"
	CategoryResidency Category = "residency"
	CategoryOther     Category = "other"
)

// Categorize maps a document type onto its evidence category. The mapping is
// total: unknown or unclassified types land in CategoryOther.
func (t DocumentType) Categorize() Category {
	switch t {
	case TypeW2, TypePaystub, TypeTaxReturn, TypeBankStatement:
		return CategoryIncome
	case TypeDriversLicense, TypePassport, TypeSSNCard, TypeBirthCert:
		return CategoryIdentity
	case TypeUtilityBill, TypeLeaseAgreement, TypeMortgageStmt:
		return CategoryResidency
	default:
		return CategoryOther
	}
}

type DocumentSource string

const (
	SourceUpload DocumentSource = "upload"
	SourceEmail  DocumentSource = "email"
)

type Priority string

const (
	PriorityStandard     Priority = "standard"
	PriorityExpedited    Priority = "expedited"
	PriorityResubmission Priority = "resubmission"
)

// ParsePriority maps a free-form hint onto the closed priority enum.
func ParsePriority(s string) Priority {
	switch Priority(s) {
	case PriorityExpedited:
		return PriorityExpedited
	case PriorityResubmission:
		return PriorityResubmission
	default:
		return PriorityStandard
	}
}

type Document struct {
	ID           string         `json:"id"`
	CaseID       string         `json:"case_id"`
	Type         DocumentType   `json:"document_type"`
	Source       DocumentSource `json:"source"`
	Status       DocumentStatus `json:"status"`
	Priority     Priority       `json:"priority"`
	Filename     string         `json:"filename"`
	SizeBytes    int64          `json:"size_bytes"`
	MimeType     string         `json:"mime_type"`
	ContentHash  string         `json:"content_hash"`
	StoragePath  string         `json:"storage_path"`
	IsDuplicate  bool           `json:"is_duplicate"`
	Confidence   float64        `json:"confidence,omitempty"`
	PageCount    int            `json:"page_count,omitempty"`
	Error        string         `json:"error,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	ReviewedBy   string         `json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time     `json:"reviewed_at,omitempty"`
	ReviewReason string         `json:"review_reason,omitempty"`
}

// Category returns the evidence category of the document's type.
func (d *Document) Category() Category {
	return d.Type.Categorize()
}

// allowedTransitions is the document lifecycle. Reprocess is handled
// separately in CanTransition: any non-terminal status may re-enter
// processing.
var allowedTransitions = map[DocumentStatus][]DocumentStatus{
	StatusUploaded:    {StatusProcessing},
	StatusProcessing:  {StatusExtracted, StatusFailed},
	StatusExtracted:   {StatusValidating},
	StatusValidating:  {StatusApproved, StatusNeedsReview, StatusRejected},
	StatusNeedsReview: {StatusApproved, StatusRejected},
	StatusFailed:      {},
	StatusApproved:    {},
	StatusRejected:    {},
}

// CanTransition reports whether from → to is a legal lifecycle step.
func CanTransition(from, to DocumentStatus) bool {
	if to == StatusProcessing {
		return !from.Terminal()
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
