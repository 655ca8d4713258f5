// Package forms maps raw document-extracted key/value data onto canonical
// field names per regulated form type and validates the mapped fields
// against per-form regulatory rules.
package forms

import "fmt"

// FormType identifies a regulated bankruptcy form. It is a closed set:
// unknown identifiers are rejected up front, never routed to a default
// rule set.
type FormType string

const (
	// FormB101 is the Voluntary Petition for Individuals Filing for Bankruptcy.
	FormB101 FormType = "B101"
	// FormB106I is Schedule I: Your Income.
	FormB106I FormType = "B106I"
	// FormB106J is Schedule J: Your Expenses.
	FormB106J FormType = "B106J"
	// FormB107 is the Statement of Financial Affairs.
	FormB107 FormType = "B107"
	// FormB122A is the Chapter 7 Statement of Current Monthly Income (means test).
	FormB122A FormType = "B122A-1"
)

// ParseFormType validates a raw form type identifier.
func ParseFormType(s string) (FormType, error) {
	switch FormType(s) {
	case FormB101, FormB106I, FormB106J, FormB107, FormB122A:
		return FormType(s), nil
	default:
		return "", fmt.Errorf("unknown form type %q", s)
	}
}

// Description returns the official form title.
func (ft FormType) Description() string {
	switch ft {
	case FormB101:
		return "Voluntary Petition for Individuals Filing for Bankruptcy"
	case FormB106I:
		return "Schedule I: Your Income"
	case FormB106J:
		return "Schedule J: Your Expenses"
	case FormB107:
		return "Statement of Financial Affairs for Individuals"
	case FormB122A:
		return "Chapter 7 Statement of Your Current Monthly Income"
	default:
		return string(ft)
	}
}

// Severity ranks a validation finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// MappingResult is the canonical view of one document's extracted data,
// produced fresh per (form type, document data) pair and immutable once
// produced.
type MappingResult struct {
	FormType FormType `json:"form_type"`
	// MappedFields holds canonical field names. A canonical field with no
	// matching non-empty source alias is absent, never empty-string.
	MappedFields map[string]string `json:"mapped_fields"`
	// SourceFields records, per canonical field, the source alias whose
	// value was used.
	SourceFields map[string]string `json:"source_fields"`
}

// Issue is one validation finding against a mapped field.
type Issue struct {
	Field      string   `json:"field"`
	Message    string   `json:"message"`
	Severity   Severity `json:"severity"`
	Regulation string   `json:"regulation,omitempty"`
}

// ValidationResult separates findings by severity.
type ValidationResult struct {
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

// HasErrors reports whether any error-severity finding exists.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings reports whether any warning-severity finding exists.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}
