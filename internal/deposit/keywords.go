package deposit

// nonTaxableKeywords mark allowances that do not count toward income.
var nonTaxableKeywords = normalizeAll([]string{
	// commuting
	"交通費", "通勤手当", "commuting allowance", "transportation allowance",
	// business trips and lodging
	"出張手当", "宿泊手当", "business trip", "lodging allowance",
	// celebratory and condolence gifts
	"慶弔見舞金", "結婚祝金", "出産祝金", "condolence", "congratulatory",
	// meals
	"食事手当", "meal allowance",
	// housing
	"住宅手当", "家賃補助", "housing allowance", "rent subsidy",
})

// salaryKeywords suggest payroll without naming an employer. Bank
// statements print payroll in half-width katakana without small kana, so
// both spellings are listed.
var salaryKeywords = normalizeAll([]string{
	"給与", "給料", "賞与", "ボーナス", "時給", "バイト", "アルバイト",
	"キュウヨ", "キユウヨ", "ショウヨ", "シヨウヨ",
	"salary", "payroll", "wage", "bonus", "hourly", "part-time",
})

// IsNonTaxable reports whether the description names a non-taxable allowance.
func IsNonTaxable(description string) bool {
	return containsAny(Normalize(description), nonTaxableKeywords)
}

// HasSalaryKeyword reports whether the description looks like payroll.
func HasSalaryKeyword(description string) bool {
	return containsAny(Normalize(description), salaryKeywords)
}
