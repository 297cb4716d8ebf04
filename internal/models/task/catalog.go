package task

import "slices"

const CategoryTax = "Tax Services"
const CategoryAccounting = "Accounting Services"
const CategoryConsulting = "Consulting Services"
const CategoryOther = "Other"

var catalog = map[string][]string{
	CategoryTax: {
		"Personal Tax Preparation",
		"Corporate Tax Preparation",
		"Tax Problem Resolution/Offer & Compromise",
		"Penalty Abatement",
		"Federal/State Representation",
		"1099 Creation",
		"E-file",
	},
	CategoryAccounting: {
		"Marked Financial Statements",
		"Quickbooks Financial Statements",
		"Payroll",
		"Sales Tax",
		"Initial QB Setup: Chart of Accounts & GL",
		"Audit Services",
		"P&L",
		"Invoice",
		"Compliance Check",
	},
	CategoryConsulting: {
		"Business Consulting",
		"Financial Planning",
		"Tax Strategy",
		"Consulting Call",
		"New Business Setup",
	},
	CategoryOther: {
		"Other",
	},
}

// ValidCategory проверяет пару категория/тип. Пустые значения допустимы,
// но тип без категории - нет.
func ValidCategory(category, taskType string) bool {
	if category == "" {
		return taskType == ""
	}
	types, ok := catalog[category]
	if !ok {
		return false
	}
	if taskType == "" {
		return true
	}
	return slices.Contains(types, taskType)
}
