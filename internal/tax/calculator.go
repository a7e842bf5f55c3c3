// Package tax implements the FY 2023-24 Indian income-tax engine: the
// progressive bracket calculators for both regimes, the regime comparison, and
// the saving-tips advisor. Everything here is a pure function over whole-rupee
// inputs; callers may invoke any of it concurrently.
package tax

import "github.com/taxbot-india/engine-go/internal/domain"

// slab is one tier of a progressive bracket table. Incomes up to UpTo
// (inclusive) pay Fixed plus Rate on the amount above From. UpTo == 0 marks
// the open-ended top tier.
type slab struct {
	From  int64
	UpTo  int64
	Rate  float64
	Fixed float64
}

// Old regime slabs (FY 2023-24). Income is expected net of deductions.
var oldRegimeSlabs = []slab{
	{From: 0, UpTo: 250_000, Rate: 0, Fixed: 0},
	{From: 250_000, UpTo: 500_000, Rate: 0.05, Fixed: 0},
	{From: 500_000, UpTo: 1_000_000, Rate: 0.20, Fixed: 12_500},
	{From: 1_000_000, Rate: 0.30, Fixed: 112_500},
}

// New regime slabs (FY 2023-24). Full gross income is taxed, no deductions.
var newRegimeSlabs = []slab{
	{From: 0, UpTo: 300_000, Rate: 0, Fixed: 0},
	{From: 300_000, UpTo: 600_000, Rate: 0.05, Fixed: 0},
	{From: 600_000, UpTo: 900_000, Rate: 0.10, Fixed: 15_000},
	{From: 900_000, UpTo: 1_200_000, Rate: 0.15, Fixed: 45_000},
	{From: 1_200_000, UpTo: 1_500_000, Rate: 0.20, Fixed: 90_000},
	{From: 1_500_000, Rate: 0.30, Fixed: 150_000},
}

// CessRate is the Education and Health Cess applied on top of the base tax.
const CessRate = 0.04

// slabTax resolves the tier for income and applies its closed-form formula.
// Incomes exactly at a tier boundary fall into the lower tier. Negative input
// is clamped to zero.
func slabTax(income int64, slabs []slab) float64 {
	if income < 0 {
		income = 0
	}
	for _, s := range slabs {
		if s.UpTo == 0 || income <= s.UpTo {
			return s.Fixed + float64(income-s.From)*s.Rate
		}
	}
	return 0
}

// withCess builds the breakdown triple from a base tax amount.
// No rounding is applied; display-level rounding is the caller's concern.
func withCess(baseTax float64) domain.TaxBreakdown {
	cess := baseTax * CessRate
	return domain.TaxBreakdown{
		BaseTax:  baseTax,
		Cess:     cess,
		TotalTax: baseTax + cess,
	}
}

// OldRegimeTax computes the old-regime liability for an income already net of
// deductions.
func OldRegimeTax(taxableIncome int64) domain.TaxBreakdown {
	return withCess(slabTax(taxableIncome, oldRegimeSlabs))
}

// NewRegimeTax computes the new-regime liability on gross income.
func NewRegimeTax(grossIncome int64) domain.TaxBreakdown {
	return withCess(slabTax(grossIncome, newRegimeSlabs))
}

// OldRegimeTaxable is the effective old-regime taxable income:
// gross income minus all deductions, floored at zero.
func OldRegimeTaxable(income int64, deductions domain.DeductionSet) int64 {
	taxable := income - deductions.Total()
	if taxable < 0 {
		return 0
	}
	return taxable
}

// Compare reports the cheaper regime and the absolute savings. The comparison
// is strictly-less on total tax: only when the old regime is strictly cheaper
// does it win; an exact tie reports the New Regime with zero savings.
func Compare(oldRegime, newRegime domain.TaxBreakdown) domain.RegimeVerdict {
	if oldRegime.TotalTax < newRegime.TotalTax {
		return domain.RegimeVerdict{
			Regime:  domain.RegimeOld,
			Savings: newRegime.TotalTax - oldRegime.TotalTax,
		}
	}
	return domain.RegimeVerdict{
		Regime:  domain.RegimeNew,
		Savings: oldRegime.TotalTax - newRegime.TotalTax,
	}
}

// Brackets exposes the fixed slab table for a regime, for display purposes.
func Brackets(regime domain.Regime) []domain.BracketRow {
	slabs := newRegimeSlabs
	if regime == domain.RegimeOld {
		slabs = oldRegimeSlabs
	}
	rows := make([]domain.BracketRow, 0, len(slabs))
	for _, s := range slabs {
		rows = append(rows, domain.BracketRow{
			From:  s.From,
			UpTo:  s.UpTo,
			Rate:  s.Rate,
			Fixed: s.Fixed,
		})
	}
	return rows
}
