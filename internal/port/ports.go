// Package port defines the interfaces (ports) for pluggable dependencies.
// Following hexagonal architecture, these ports decouple the service layer
// from concrete implementations.
package port

import "github.com/taxbot-india/engine-go/internal/domain"

// RegimePredictor produces a regime prediction from the seven raw inputs.
// Implementations must be safe for concurrent use once constructed.
type RegimePredictor interface {
	Predict(income, investments80C, healthInsurance, hraExemption, homeLoanInterest, eduLoanInterest int64, age int) domain.Prediction
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
