package service_test

import (
	"context"
	"testing"

	"github.com/taxbot-india/engine-go/internal/domain"
	"github.com/taxbot-india/engine-go/internal/infra/observability"
	"github.com/taxbot-india/engine-go/internal/service"

	"go.uber.org/zap"
)

func TestCalculate_NewRegimeRecommended(t *testing.T) {
	svc := service.NewTaxService(observability.NewMetrics(), zap.NewNop())

	resp := svc.Calculate(context.Background(), &domain.CalculateTaxRequest{Income: 600_000})

	if resp.CalculationID == "" {
		t.Error("expected a calculation ID")
	}
	if resp.OldRegime.Breakdown.TotalTax != 33_800 {
		t.Errorf("old regime total = %v, want 33800", resp.OldRegime.Breakdown.TotalTax)
	}
	if resp.NewRegime.Breakdown.TotalTax != 15_600 {
		t.Errorf("new regime total = %v, want 15600", resp.NewRegime.Breakdown.TotalTax)
	}
	if resp.Recommendation.Regime != domain.RegimeNew {
		t.Errorf("recommendation = %q, want New Regime", resp.Recommendation.Regime)
	}
	if resp.Recommendation.Savings != 18_200 {
		t.Errorf("savings = %v, want 18200", resp.Recommendation.Savings)
	}
	if len(resp.Tips) == 0 {
		t.Error("expected at least one tip")
	}
}

func TestCalculate_OldRegimeRecommended(t *testing.T) {
	svc := service.NewTaxService(observability.NewMetrics(), zap.NewNop())

	resp := svc.Calculate(context.Background(), &domain.CalculateTaxRequest{
		Income: 1_200_000,
		Deductions: domain.DeductionSet{
			Investments80C:   150_000,
			HealthInsurance:  25_000,
			HomeLoanInterest: 200_000,
		},
	})

	if resp.TotalDeductions != 375_000 {
		t.Errorf("total deductions = %d, want 375000", resp.TotalDeductions)
	}
	if resp.OldRegime.TaxableIncome != 825_000 {
		t.Errorf("old taxable = %d, want 825000", resp.OldRegime.TaxableIncome)
	}
	if resp.NewRegime.TaxableIncome != 1_200_000 {
		t.Errorf("new taxable = %d, want full gross income", resp.NewRegime.TaxableIncome)
	}
	if resp.OldRegime.Breakdown.TotalTax != 80_600 {
		t.Errorf("old regime total = %v, want 80600", resp.OldRegime.Breakdown.TotalTax)
	}
	if resp.Recommendation.Regime != domain.RegimeOld {
		t.Errorf("recommendation = %q, want Old Regime", resp.Recommendation.Regime)
	}
}

func TestCalculate_UniqueCalculationIDs(t *testing.T) {
	svc := service.NewTaxService(observability.NewMetrics(), zap.NewNop())

	req := &domain.CalculateTaxRequest{Income: 500_000}
	a := svc.Calculate(context.Background(), req)
	b := svc.Calculate(context.Background(), req)
	if a.CalculationID == b.CalculationID {
		t.Error("expected distinct calculation IDs per request")
	}
}

func TestBrackets(t *testing.T) {
	svc := service.NewTaxService(observability.NewMetrics(), zap.NewNop())

	rows := svc.Brackets(context.Background(), domain.RegimeOld)
	if len(rows) != 4 {
		t.Errorf("expected 4 old regime rows, got %d", len(rows))
	}
	rows = svc.Brackets(context.Background(), domain.RegimeNew)
	if len(rows) != 6 {
		t.Errorf("expected 6 new regime rows, got %d", len(rows))
	}
}
