package tax_test

import (
	"math"
	"testing"

	"github.com/taxbot-india/engine-go/internal/domain"
	"github.com/taxbot-india/engine-go/internal/tax"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestOldRegimeTax(t *testing.T) {
	tests := []struct {
		name          string
		taxableIncome int64
		wantBase      float64
		wantTotal     float64
	}{
		{"zero income", 0, 0, 0},
		{"within exempt slab", 200_000, 0, 0},
		{"slab boundary 2.5L", 250_000, 0, 0},
		{"just above 2.5L", 250_001, 0.05, 0.052},
		{"5L boundary", 500_000, 12_500, 13_000},
		{"mid 20 percent slab", 600_000, 32_500, 33_800},
		{"10L boundary", 1_000_000, 112_500, 117_000},
		{"above 10L", 1_200_000, 172_500, 179_400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tax.OldRegimeTax(tt.taxableIncome)
			if !almostEqual(got.BaseTax, tt.wantBase) {
				t.Errorf("BaseTax = %v, want %v", got.BaseTax, tt.wantBase)
			}
			if !almostEqual(got.TotalTax, tt.wantTotal) {
				t.Errorf("TotalTax = %v, want %v", got.TotalTax, tt.wantTotal)
			}
		})
	}
}

func TestNewRegimeTax(t *testing.T) {
	tests := []struct {
		name      string
		income    int64
		wantBase  float64
		wantTotal float64
	}{
		{"zero income", 0, 0, 0},
		{"within exempt slab", 250_000, 0, 0},
		{"3L boundary", 300_000, 0, 0},
		{"6L boundary", 600_000, 15_000, 15_600},
		{"9L boundary", 900_000, 45_000, 46_800},
		{"12L boundary", 1_200_000, 90_000, 93_600},
		{"15L boundary", 1_500_000, 150_000, 156_000},
		{"above 15L", 2_000_000, 300_000, 312_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tax.NewRegimeTax(tt.income)
			if !almostEqual(got.BaseTax, tt.wantBase) {
				t.Errorf("BaseTax = %v, want %v", got.BaseTax, tt.wantBase)
			}
			if !almostEqual(got.TotalTax, tt.wantTotal) {
				t.Errorf("TotalTax = %v, want %v", got.TotalTax, tt.wantTotal)
			}
		})
	}
}

func TestCessIsFourPercentOfBase(t *testing.T) {
	for _, income := range []int64{400_000, 750_000, 1_300_000, 5_000_000} {
		bd := tax.NewRegimeTax(income)
		if !almostEqual(bd.Cess, bd.BaseTax*0.04) {
			t.Errorf("income %d: Cess = %v, want 4%% of %v", income, bd.Cess, bd.BaseTax)
		}
		if !almostEqual(bd.TotalTax, bd.BaseTax+bd.Cess) {
			t.Errorf("income %d: TotalTax = %v, want BaseTax+Cess", income, bd.TotalTax)
		}
	}
}

// Liability at each slab boundary must equal the limit of the formula from
// below; the closed-form Fixed amounts encode exactly that.
func TestSlabContinuityAtBoundaries(t *testing.T) {
	boundaries := []int64{250_000, 500_000, 1_000_000}
	for _, b := range boundaries {
		below := tax.OldRegimeTax(b)
		above := tax.OldRegimeTax(b + 1)
		if above.BaseTax < below.BaseTax {
			t.Errorf("old regime discontinuous at %d: %v then %v", b, below.BaseTax, above.BaseTax)
		}
	}

	boundaries = []int64{300_000, 600_000, 900_000, 1_200_000, 1_500_000}
	for _, b := range boundaries {
		below := tax.NewRegimeTax(b)
		above := tax.NewRegimeTax(b + 1)
		if above.BaseTax < below.BaseTax {
			t.Errorf("new regime discontinuous at %d: %v then %v", b, below.BaseTax, above.BaseTax)
		}
	}
}

func TestTaxIsMonotonicInIncome(t *testing.T) {
	var prevOld, prevNew float64
	for income := int64(0); income <= 3_000_000; income += 10_000 {
		o := tax.OldRegimeTax(income)
		n := tax.NewRegimeTax(income)
		if o.TotalTax < prevOld {
			t.Fatalf("old regime tax decreased at income %d", income)
		}
		if n.TotalTax < prevNew {
			t.Fatalf("new regime tax decreased at income %d", income)
		}
		prevOld, prevNew = o.TotalTax, n.TotalTax
	}
}

func TestNegativeIncomeClampsToZero(t *testing.T) {
	if got := tax.OldRegimeTax(-50_000); got.TotalTax != 0 {
		t.Errorf("expected zero tax for negative income, got %v", got.TotalTax)
	}
	if got := tax.NewRegimeTax(-1); got.TotalTax != 0 {
		t.Errorf("expected zero tax for negative income, got %v", got.TotalTax)
	}
}

func TestOldRegimeTaxable(t *testing.T) {
	d := domain.DeductionSet{Investments80C: 150_000, HealthInsurance: 25_000, HomeLoanInterest: 200_000}

	if got := tax.OldRegimeTaxable(1_200_000, d); got != 825_000 {
		t.Errorf("taxable = %d, want 825000", got)
	}

	// Deductions above income floor at zero.
	if got := tax.OldRegimeTaxable(300_000, d); got != 0 {
		t.Errorf("taxable = %d, want 0", got)
	}
}

func TestCompare(t *testing.T) {
	t.Run("moderate income no deductions favors new regime", func(t *testing.T) {
		oldBD := tax.OldRegimeTax(600_000) // 33,800 total
		newBD := tax.NewRegimeTax(600_000) // 15,600 total
		v := tax.Compare(oldBD, newBD)
		if v.Regime != domain.RegimeNew {
			t.Fatalf("expected New Regime, got %q", v.Regime)
		}
		if !almostEqual(v.Savings, 18_200) {
			t.Errorf("savings = %v, want 18200", v.Savings)
		}
	})

	t.Run("high deductions favor old regime", func(t *testing.T) {
		d := domain.DeductionSet{Investments80C: 150_000, HealthInsurance: 25_000, HomeLoanInterest: 200_000}
		oldBD := tax.OldRegimeTax(tax.OldRegimeTaxable(1_200_000, d)) // 825,000 taxable
		newBD := tax.NewRegimeTax(1_200_000)
		v := tax.Compare(oldBD, newBD)
		if v.Regime != domain.RegimeOld {
			t.Fatalf("expected Old Regime, got %q", v.Regime)
		}
		if !almostEqual(v.Savings, newBD.TotalTax-oldBD.TotalTax) {
			t.Errorf("savings = %v, want %v", v.Savings, newBD.TotalTax-oldBD.TotalTax)
		}
	})

	t.Run("exact tie resolves to new regime with zero savings", func(t *testing.T) {
		// 2.5L is tax free under both regimes.
		oldBD := tax.OldRegimeTax(250_000)
		newBD := tax.NewRegimeTax(250_000)
		v := tax.Compare(oldBD, newBD)
		if v.Regime != domain.RegimeNew {
			t.Fatalf("expected tie to resolve to New Regime, got %q", v.Regime)
		}
		if v.Savings != 0 {
			t.Errorf("savings = %v, want 0", v.Savings)
		}
	})
}

func TestBrackets(t *testing.T) {
	oldRows := tax.Brackets(domain.RegimeOld)
	if len(oldRows) != 4 {
		t.Fatalf("expected 4 old regime rows, got %d", len(oldRows))
	}
	if oldRows[3].UpTo != 0 {
		t.Errorf("expected open-ended top tier, got UpTo=%d", oldRows[3].UpTo)
	}

	newRows := tax.Brackets(domain.RegimeNew)
	if len(newRows) != 6 {
		t.Fatalf("expected 6 new regime rows, got %d", len(newRows))
	}
	if newRows[5].Rate != 0.30 {
		t.Errorf("expected 30%% top rate, got %v", newRows[5].Rate)
	}
}
