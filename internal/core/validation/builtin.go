package validation

import (
	"fmt"

	"github.com/caseworks/evidence-intake/internal/core/domain"
)

type builtinSpec struct {
	id        string
	docType   domain.DocumentType
	ruleType  RuleType
	fieldName string
	params    Params
	severity  Severity
	message   string
}

// builtinRules is the default per-type rule catalog. These cover the common
// case-evidence checks; caseworkers layer custom rules on top via the rules
// file or the admin surface.
var builtinRules = []builtinSpec{
	// W-2
	{"w2.employer_name.required", domain.TypeW2, RuleRequiredField, "employer_name", nil, SeverityError, "W-2 must name the employer"},
	{"w2.wages.required", domain.TypeW2, RuleRequiredField, "wages", nil, SeverityError, "W-2 must report wages"},
	{"w2.wages.range", domain.TypeW2, RuleRange, "wages", Params{"min": 0.0}, SeverityError, "W-2 wages cannot be negative"},
	{"w2.ssn.format", domain.TypeW2, RuleFormat, "ssn", Params{"pattern": `^\d{3}-\d{2}-\d{4}$`}, SeverityWarning, "W-2 SSN is not in NNN-NN-NNNN form"},
	{"w2.employee_name.crossref", domain.TypeW2, RuleCrossReference, "employee_name", Params{"reference_key": "applicant_name"}, SeverityError, "W-2 employee name does not match the applicant of record"},
	{"w2.tax_year.age", domain.TypeW2, RuleAge, "tax_year", Params{"max_age_days": 730.0}, SeverityWarning, "W-2 is older than two tax years"},

	// Paystub
	{"paystub.employer_name.required", domain.TypePaystub, RuleRequiredField, "employer_name", nil, SeverityError, "paystub must name the employer"},
	{"paystub.gross_pay.required", domain.TypePaystub, RuleRequiredField, "gross_pay", nil, SeverityError, "paystub must report gross pay"},
	{"paystub.gross_pay.range", domain.TypePaystub, RuleRange, "gross_pay", Params{"min": 0.0}, SeverityError, "paystub gross pay cannot be negative"},
	{"paystub.pay_date.age", domain.TypePaystub, RuleAge, "pay_date", Params{"max_age_days": 90.0}, SeverityError, "paystub is older than 90 days"},
	{"paystub.employee_name.crossref", domain.TypePaystub, RuleCrossReference, "employee_name", Params{"reference_key": "applicant_name"}, SeverityError, "paystub employee name does not match the applicant of record"},

	// Bank statement
	{"bank.account_number.required", domain.TypeBankStatement, RuleRequiredField, "account_number", nil, SeverityError, "bank statement must show an account number"},
	{"bank.statement_date.age", domain.TypeBankStatement, RuleAge, "statement_date", Params{"max_age_days": 90.0}, SeverityWarning, "bank statement is older than 90 days"},

	// Driver's license
	{"dl.name.required", domain.TypeDriversLicense, RuleRequiredField, "name", nil, SeverityError, "license must show a name"},
	{"dl.license_number.required", domain.TypeDriversLicense, RuleRequiredField, "license_number", nil, SeverityError, "license must show a license number"},
	{"dl.name.crossref", domain.TypeDriversLicense, RuleCrossReference, "name", Params{"reference_key": "applicant_name"}, SeverityError, "license name does not match the applicant of record"},
	{"dl.expiration_date.required", domain.TypeDriversLicense, RuleRequiredField, "expiration_date", nil, SeverityWarning, "license has no visible expiration date"},

	// Passport
	{"passport.name.required", domain.TypePassport, RuleRequiredField, "name", nil, SeverityError, "passport must show a name"},
	{"passport.name.crossref", domain.TypePassport, RuleCrossReference, "name", Params{"reference_key": "applicant_name"}, SeverityError, "passport name does not match the applicant of record"},

	// SSN card
	{"ssncard.ssn.required", domain.TypeSSNCard, RuleRequiredField, "ssn", nil, SeverityError, "SSN card must show the number"},
	{"ssncard.ssn.format", domain.TypeSSNCard, RuleFormat, "ssn", Params{"pattern": `^\d{3}-\d{2}-\d{4}$`}, SeverityError, "SSN is not in NNN-NN-NNNN form"},

	// Utility bill
	{"utility.service_address.required", domain.TypeUtilityBill, RuleRequiredField, "service_address", nil, SeverityError, "utility bill must show a service address"},
	{"utility.account_holder.required", domain.TypeUtilityBill, RuleRequiredField, "account_holder", nil, SeverityError, "utility bill must name the account holder"},
	{"utility.account_holder.crossref", domain.TypeUtilityBill, RuleCrossReference, "account_holder", Params{"reference_key": "applicant_name"}, SeverityWarning, "utility bill account holder does not match the applicant"},
	{"utility.bill_date.age", domain.TypeUtilityBill, RuleAge, "bill_date", Params{"max_age_days": 60.0}, SeverityError, "utility bill is older than 60 days"},

	// Lease agreement
	{"lease.tenant_name.required", domain.TypeLeaseAgreement, RuleRequiredField, "tenant_name", nil, SeverityError, "lease must name the tenant"},
	{"lease.property_address.required", domain.TypeLeaseAgreement, RuleRequiredField, "property_address", nil, SeverityError, "lease must show the property address"},
	{"lease.tenant_name.crossref", domain.TypeLeaseAgreement, RuleCrossReference, "tenant_name", Params{"reference_key": "applicant_name"}, SeverityError, "lease tenant does not match the applicant of record"},
}

func registerBuiltins(e *Engine) {
	for _, spec := range builtinRules {
		r, err := NewRule(spec.id, spec.docType, spec.ruleType, spec.fieldName, spec.params, spec.severity, spec.message)
		if err != nil {
			// builtins are compile-time-known; this is a programmer error
			panic(fmt.Sprintf("builtin rule %s: %v", spec.id, err))
		}
		r.BuiltIn = true
		if err := e.AddRule(r); err != nil {
			panic(fmt.Sprintf("builtin rule %s: %v", spec.id, err))
		}
	}
}
