package domain

// Prediction is the output of the regime predictor: a regime label, the model's
// confidence for that label as a percentage, and a templated explanation.
// Ephemeral; never persisted.
type Prediction struct {
	Regime            Regime  `json:"regime"`
	ConfidencePercent float64 `json:"confidence_percent"`
	Explanation       string  `json:"explanation"`
}

// PredictRequest is the body of POST /v1/tax/predict. Age is optional and
// defaults to 30 when zero.
type PredictRequest struct {
	Income                int64 `json:"income" validate:"gte=0"`
	Investments80C        int64 `json:"investments_80c" validate:"gte=0"`
	HealthInsurance       int64 `json:"health_insurance" validate:"gte=0"`
	HRAExemption          int64 `json:"hra_exemption" validate:"gte=0"`
	HomeLoanInterest      int64 `json:"home_loan_interest" validate:"gte=0"`
	EducationLoanInterest int64 `json:"education_loan_interest" validate:"gte=0"`
	Age                   int   `json:"age,omitempty" validate:"omitempty,gte=18,lte=100"`
}

// PredictResponse wraps a Prediction with a request-scoped identifier.
type PredictResponse struct {
	PredictionID string `json:"prediction_id"`
	Prediction
}
