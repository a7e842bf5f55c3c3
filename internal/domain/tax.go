package domain

// Regime identifies one of the two statutory tax regimes for FY 2023-24.
type Regime string

const (
	// RegimeOld is the legacy progressive structure permitting itemized deductions.
	RegimeOld Regime = "Old Regime"
	// RegimeNew is the alternative structure with lower rates and no deductions.
	RegimeNew Regime = "New Regime"
)

// DeductionSet carries the caller-supplied deduction amounts in whole rupees.
// Values are trusted as already capped at their statutory maximums; the engine
// performs no cap enforcement.
type DeductionSet struct {
	Investments80C        int64 `json:"investments_80c" validate:"gte=0"`
	HealthInsurance       int64 `json:"health_insurance" validate:"gte=0"`
	HomeLoanInterest      int64 `json:"home_loan_interest" validate:"gte=0"`
	EducationLoanInterest int64 `json:"education_loan_interest" validate:"gte=0"`
	HRAExemption          int64 `json:"hra_exemption" validate:"gte=0"`
}

// Total sums all deduction categories.
func (d DeductionSet) Total() int64 {
	return d.Investments80C + d.HealthInsurance + d.HomeLoanInterest +
		d.EducationLoanInterest + d.HRAExemption
}

// TaxBreakdown is the result of one bracket calculation. Cess is always 4% of
// BaseTax and TotalTax is their sum. Produced fresh per call; never mutated.
type TaxBreakdown struct {
	BaseTax  float64 `json:"base_tax"`
	Cess     float64 `json:"cess"`
	TotalTax float64 `json:"total_tax"`
}

// RegimeVerdict names the cheaper regime and the absolute savings against the
// other one. Ties resolve to the New Regime with zero savings.
type RegimeVerdict struct {
	Regime  Regime  `json:"regime"`
	Savings float64 `json:"savings"`
}

// RegimeResult pairs the taxable income used for a regime with its breakdown.
type RegimeResult struct {
	TaxableIncome int64        `json:"taxable_income"`
	Breakdown     TaxBreakdown `json:"breakdown"`
}

// BracketRow describes one tier of a progressive bracket table.
// UpTo == 0 means the tier is open-ended.
type BracketRow struct {
	From  int64   `json:"from"`
	UpTo  int64   `json:"up_to,omitempty"`
	Rate  float64 `json:"rate"`
	Fixed float64 `json:"fixed"`
}

// CalculateTaxRequest is the body of POST /v1/tax/calculate.
type CalculateTaxRequest struct {
	Income     int64        `json:"income" validate:"gte=0"`
	Deductions DeductionSet `json:"deductions"`
}

// CalculateTaxResponse is the full calculation contract payload: both regime
// breakdowns, the verdict and the saving tips.
type CalculateTaxResponse struct {
	CalculationID   string        `json:"calculation_id"`
	Income          int64         `json:"income"`
	TotalDeductions int64         `json:"total_deductions"`
	OldRegime       RegimeResult  `json:"old_regime"`
	NewRegime       RegimeResult  `json:"new_regime"`
	Recommendation  RegimeVerdict `json:"recommendation"`
	Tips            []string      `json:"tips"`
}

// EngineMetrics is the JSON snapshot served by GET /v1/metrics/engine.
type EngineMetrics struct {
	TotalCalculations     int64   `json:"total_calculations"`
	OldRegimeRecommended  int64   `json:"old_regime_recommended"`
	NewRegimeRecommended  int64   `json:"new_regime_recommended"`
	TotalPredictions      int64   `json:"total_predictions"`
	OldRegimePredicted    int64   `json:"old_regime_predicted"`
	NewRegimePredicted    int64   `json:"new_regime_predicted"`
	PredictionCacheHitPct float64 `json:"prediction_cache_hit_pct"`
	Period                string  `json:"period"`
}
