package types

// EligibilityRule names the rule that made an employee ineligible.
// An empty rule means the employee is eligible.
type EligibilityRule string

const (
	EligibilityRuleNone                  EligibilityRule = ""
	EligibilityRuleInactive              EligibilityRule = "inactive"
	EligibilityRuleExcludedTitle         EligibilityRule = "excluded_title"
	EligibilityRuleExcludedDepartment    EligibilityRule = "excluded_department"
	EligibilityRuleExcludedPosition      EligibilityRule = "excluded_position"
	EligibilityRuleCompanyCodeNotAllowed EligibilityRule = "company_code_not_allowed"
	EligibilityRuleCompanyCodeExcluded   EligibilityRule = "company_code_excluded"
	EligibilityRuleDirectReports         EligibilityRule = "direct_reports"
	EligibilityRuleNoTenureDate          EligibilityRule = "no_tenure_date"
	EligibilityRuleTenure                EligibilityRule = "tenure"
)

func (r EligibilityRule) String() string {
	return string(r)
}
