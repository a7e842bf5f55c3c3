package tax

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Statutory caps referenced by the tips advisor. These are display constants
// only; the engine never enforces them on inputs.
const (
	cap80C              = 150_000
	cap80D              = 25_000
	cap24b              = 200_000
	highIncomeThreshold = 1_000_000
)

// rupees formats amounts with Indian digit grouping for tip text.
var rupees = message.NewPrinter(language.MustParse("en-IN"))

// SavingTips evaluates the advisory rules in a fixed order and returns every
// tip that applies. The NPS tip is unconditional, so the result is never
// empty. Order matters for presentation only.
func SavingTips(income, investments80C, healthInsurance, homeLoanInterest, eduLoanInterest int64) []string {
	tips := make([]string, 0, 6)

	if investments80C < cap80C {
		tips = append(tips, rupees.Sprintf(
			"You can invest Rs. %d more under section 80C (PPF, ELSS, NSC, etc.) to maximize your tax benefits.",
			cap80C-investments80C))
	}

	if healthInsurance < cap80D {
		tips = append(tips,
			"Consider buying health insurance for yourself and family (up to Rs. 25,000 deduction under 80D).")
	}

	if homeLoanInterest > 0 && homeLoanInterest < cap24b {
		tips = append(tips, rupees.Sprintf(
			"You can claim up to Rs. 2,00,000 for home loan interest under Section 24b. Current claim: Rs. %d",
			homeLoanInterest))
	}

	if eduLoanInterest == 0 {
		tips = append(tips,
			"Interest paid on education loans is fully deductible under Section 80E (no upper limit).")
	}

	tips = append(tips,
		"Consider investing in NPS (National Pension Scheme) for additional deduction of up to Rs. 50,000 under Section 80CCD(1B).")

	if income > highIncomeThreshold {
		tips = append(tips,
			"Consider splitting income with family members (income splitting) to reduce tax burden.")
	}

	return tips
}
