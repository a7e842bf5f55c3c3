// Package service provides the business logic layer (use cases).
// TaxService handles calculations, tips and bracket lookups;
// PredictionService wraps the regime predictor with caching and
// concurrency limits; AuthService issues and validates tokens.
package service

import (
	"context"
	"time"

	"github.com/taxbot-india/engine-go/internal/domain"
	"github.com/taxbot-india/engine-go/internal/infra/observability"
	"github.com/taxbot-india/engine-go/internal/tax"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var taxTracer = otel.Tracer("service/tax")

// TaxService orchestrates the pure tax engine: both regime calculators,
// the comparator and the tips advisor.
type TaxService struct {
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewTaxService creates a new tax service.
func NewTaxService(metrics *observability.Metrics, logger *zap.Logger) *TaxService {
	return &TaxService{metrics: metrics, logger: logger}
}

// Calculate runs both regimes over the request, compares them and attaches
// the applicable saving tips.
func (s *TaxService) Calculate(ctx context.Context, req *domain.CalculateTaxRequest) *domain.CalculateTaxResponse {
	_, span := taxTracer.Start(ctx, "TaxService.Calculate")
	defer span.End()
	start := time.Now()

	oldTaxable := tax.OldRegimeTaxable(req.Income, req.Deductions)
	oldBreakdown := tax.OldRegimeTax(oldTaxable)
	newBreakdown := tax.NewRegimeTax(req.Income)
	verdict := tax.Compare(oldBreakdown, newBreakdown)

	tips := tax.SavingTips(req.Income,
		req.Deductions.Investments80C,
		req.Deductions.HealthInsurance,
		req.Deductions.HomeLoanInterest,
		req.Deductions.EducationLoanInterest)

	span.SetAttributes(
		attribute.Int64("tax.income", req.Income),
		attribute.String("tax.recommended_regime", string(verdict.Regime)),
	)
	s.metrics.IncrCalculation(string(verdict.Regime))
	s.metrics.RecordRequestDuration("calculate", time.Since(start))

	s.logger.Debug("tax calculated",
		zap.Int64("income", req.Income),
		zap.Int64("total_deductions", req.Deductions.Total()),
		zap.String("recommendation", string(verdict.Regime)),
		zap.Float64("savings", verdict.Savings),
	)

	return &domain.CalculateTaxResponse{
		CalculationID:   uuid.New().String(),
		Income:          req.Income,
		TotalDeductions: req.Deductions.Total(),
		OldRegime: domain.RegimeResult{
			TaxableIncome: oldTaxable,
			Breakdown:     oldBreakdown,
		},
		NewRegime: domain.RegimeResult{
			TaxableIncome: req.Income,
			Breakdown:     newBreakdown,
		},
		Recommendation: verdict,
		Tips:           tips,
	}
}

// Tips evaluates the saving-tips rules standalone, without a full calculation.
func (s *TaxService) Tips(ctx context.Context, income int64, deductions domain.DeductionSet) []string {
	_, span := taxTracer.Start(ctx, "TaxService.Tips")
	defer span.End()

	return tax.SavingTips(income,
		deductions.Investments80C,
		deductions.HealthInsurance,
		deductions.HomeLoanInterest,
		deductions.EducationLoanInterest)
}

// Brackets returns the fixed slab table for the requested regime.
func (s *TaxService) Brackets(ctx context.Context, regime domain.Regime) []domain.BracketRow {
	_, span := taxTracer.Start(ctx, "TaxService.Brackets")
	defer span.End()
	span.SetAttributes(attribute.String("tax.regime", string(regime)))

	return tax.Brackets(regime)
}
