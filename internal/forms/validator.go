package forms

import (
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	numericPattern  = regexp.MustCompile(`^-?\$?[\d,]+(\.\d+)?$`)
	ssnLast4Pattern = regexp.MustCompile(`^\d{4}$`)
	datePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$|^\d{1,2}/\d{1,2}/\d{4}$`)
	positiveInt     = regexp.MustCompile(`^[1-9]\d*$`)
	chapterPattern  = regexp.MustCompile(`^(7|11|12|13)$`)
)

// rule describes one check against a canonical mapped field. Required rules
// fire on absent or empty values; optional rules only run their checks when
// the field is present.
type rule struct {
	Field      string
	Required   bool
	Checks     []validation.Rule
	Severity   Severity
	Message    string
	Regulation string
}

var formRules = map[FormType][]rule{
	FormB101: {
		{Field: "debtor_name", Required: true, Severity: SeverityError,
			Message: "debtor name is required", Regulation: "Fed. R. Bankr. P. 1005"},
		{Field: "chapter", Required: true, Checks: []validation.Rule{validation.Match(chapterPattern)},
			Severity: SeverityError, Message: "chapter must be 7, 11, 12, or 13", Regulation: "11 U.S.C. § 301"},
		{Field: "district", Required: true, Severity: SeverityError,
			Message: "filing district is required", Regulation: "28 U.S.C. § 1408"},
		{Field: "ssn_last4", Checks: []validation.Rule{validation.Match(ssnLast4Pattern)},
			Severity: SeverityWarning, Message: "SSN must be redacted to the last four digits", Regulation: "Fed. R. Bankr. P. 9037(a)"},
		{Field: "case_number", Severity: SeverityWarning, Required: false,
			Checks:  []validation.Rule{validation.Match(regexp.MustCompile(`^\d{2}-\d{4,6}$`))},
			Message: "case number format looks unusual"},
		{Field: "filing_date", Checks: []validation.Rule{validation.Match(datePattern)},
			Severity: SeverityWarning, Message: "filing date is not a recognizable date"},
	},
	FormB106I: {
		{Field: "debtor_name", Required: true, Severity: SeverityError,
			Message: "debtor name is required", Regulation: "Fed. R. Bankr. P. 1007(b)(1)"},
		{Field: "monthly_gross_income", Required: true, Checks: []validation.Rule{validation.Match(numericPattern)},
			Severity: SeverityError, Message: "monthly gross income must be a number", Regulation: "Fed. R. Bankr. P. 1007(b)(1)"},
		{Field: "monthly_net_income", Checks: []validation.Rule{validation.Match(numericPattern)},
			Severity: SeverityWarning, Message: "monthly net income must be a number"},
		{Field: "employer_name", Severity: SeverityWarning, Required: true,
			Message: "employer name is missing"},
	},
	FormB106J: {
		{Field: "debtor_name", Required: true, Severity: SeverityError,
			Message: "debtor name is required", Regulation: "Fed. R. Bankr. P. 1007(b)(1)"},
		{Field: "total_monthly_expenses", Required: true, Checks: []validation.Rule{validation.Match(numericPattern)},
			Severity: SeverityError, Message: "total monthly expenses must be a number", Regulation: "Fed. R. Bankr. P. 1007(b)(1)"},
		{Field: "rent_or_mortgage", Severity: SeverityWarning, Required: true,
			Message: "housing expense is missing"},
		{Field: "monthly_net_income", Checks: []validation.Rule{validation.Match(numericPattern)},
			Severity: SeverityWarning, Message: "monthly net income must be a number"},
	},
	FormB107: {
		{Field: "debtor_name", Required: true, Severity: SeverityError,
			Message: "debtor name is required", Regulation: "Fed. R. Bankr. P. 1007(b)(1)"},
		{Field: "income_current_year", Checks: []validation.Rule{validation.Match(numericPattern)},
			Severity: SeverityWarning, Message: "current-year income must be a number"},
		{Field: "income_prior_year", Checks: []validation.Rule{validation.Match(numericPattern)},
			Severity: SeverityWarning, Message: "prior-year income must be a number"},
		{Field: "marital_status", Severity: SeverityWarning, Required: true,
			Message: "marital status is missing"},
	},
	FormB122A: {
		{Field: "current_monthly_income", Required: true, Checks: []validation.Rule{validation.Match(numericPattern)},
			Severity: SeverityError, Message: "current monthly income must be a number", Regulation: "11 U.S.C. § 707(b)(2)(A)"},
		{Field: "household_size", Required: true, Checks: []validation.Rule{validation.Match(positiveInt)},
			Severity: SeverityError, Message: "household size must be at least 1", Regulation: "11 U.S.C. § 707(b)(7)"},
		{Field: "state", Severity: SeverityWarning, Required: true,
			Message: "state of residence is missing"},
	},
}

// Validate runs the per-form rule set over the mapped canonical fields and
// returns every issue found, split by severity. Validation problems never
// short-circuit: the caller always sees the full list.
func Validate(formType FormType, mapped map[string]string) (*ValidationResult, error) {
	rules, ok := formRules[formType]
	if !ok {
		return nil, fmt.Errorf("no validation rules for form %s", formType)
	}

	result := &ValidationResult{}
	for _, r := range rules {
		value, present := mapped[r.Field]
		if !present || value == "" {
			if r.Required {
				result.add(Issue{Field: r.Field, Message: r.Message, Severity: r.Severity, Regulation: r.Regulation})
			}
			continue
		}
		if len(r.Checks) == 0 {
			continue
		}
		if err := validation.Validate(value, r.Checks...); err != nil {
			result.add(Issue{Field: r.Field, Message: r.Message, Severity: r.Severity, Regulation: r.Regulation})
		}
	}
	return result, nil
}

func (r *ValidationResult) add(issue Issue) {
	if issue.Severity == SeverityError {
		r.Errors = append(r.Errors, issue)
		return
	}
	r.Warnings = append(r.Warnings, issue)
}
