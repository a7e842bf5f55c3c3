// Package predictor implements the regime predictor: a shallow decision-tree
// classifier fitted at construction time on a synthetic, seeded training set
// of taxpayer profiles. Construction is the only expensive step; a constructed
// Predictor is immutable and safe for concurrent use.
package predictor

import (
	"math/rand"

	"github.com/taxbot-india/engine-go/internal/domain"
)

const (
	// DefaultSeed reproduces the canonical training set.
	DefaultSeed = 42
	// DefaultSamples is the training set size.
	DefaultSamples = 100
	// DefaultAge substitutes a missing age input.
	DefaultAge = 30

	maxTreeDepth = 5

	labelNew = 0
	labelOld = 1

	// Thresholds for the explanation decision table, not for the model.
	highDeductionMark = 150_000
	lowDeductionMark  = 50_000
)

// Predictor holds the synthetic training set and the tree fitted on it.
type Predictor struct {
	profiles []TrainingProfile
	tree     *decisionTree
}

// New synthesizes the training set from the given seed, fits the tree and
// returns the ready predictor. The same seed yields bit-identical training
// data and therefore identical predictions. samples <= 0 falls back to
// DefaultSamples.
func New(seed int64, samples int) *Predictor {
	if samples <= 0 {
		samples = DefaultSamples
	}
	rng := rand.New(rand.NewSource(seed))
	profiles := synthesizeProfiles(rng, samples)

	features := make([][]float64, len(profiles))
	labels := make([]int, len(profiles))
	for i, p := range profiles {
		features[i] = p.featureVector()
		labels[i] = p.Label
	}

	return &Predictor{
		profiles: profiles,
		tree:     fitTree(features, labels, maxTreeDepth),
	}
}

// TrainingSet returns a copy of the synthetic profiles the tree was fitted on.
func (p *Predictor) TrainingSet() []TrainingProfile {
	out := make([]TrainingProfile, len(p.profiles))
	copy(out, p.profiles)
	return out
}

// Predict classifies a taxpayer profile. age <= 0 defaults to DefaultAge.
// Confidence is the leaf probability of the predicted class as a percentage.
func (p *Predictor) Predict(income, investments80C, healthInsurance, hraExemption, homeLoanInterest, eduLoanInterest int64, age int) domain.Prediction {
	if age <= 0 {
		age = DefaultAge
	}
	totalDeductions := investments80C + healthInsurance + hraExemption +
		homeLoanInterest + eduLoanInterest

	probs := p.tree.predictProba([]float64{
		float64(income),
		float64(investments80C),
		float64(healthInsurance),
		float64(hraExemption),
		float64(homeLoanInterest),
		float64(eduLoanInterest),
		float64(age),
		float64(totalDeductions),
	})

	label := labelNew
	if probs[labelOld] > probs[labelNew] {
		label = labelOld
	}

	regime := domain.RegimeNew
	if label == labelOld {
		regime = domain.RegimeOld
	}

	return domain.Prediction{
		Regime:            regime,
		ConfidencePercent: probs[label] * 100,
		Explanation:       explain(label, totalDeductions),
	}
}

// explain selects the templated explanation from the predicted label and the
// total deduction amount.
func explain(label int, totalDeductions int64) string {
	if label == labelOld {
		if totalDeductions > highDeductionMark {
			return "Your high deduction amount makes the Old Regime more beneficial."
		}
		return "Based on your profile, the Old Regime provides better tax benefits."
	}
	if totalDeductions < lowDeductionMark {
		return "With low deductions, the New Regime's reduced tax rates are more beneficial."
	}
	return "Based on your overall profile, the New Regime appears to be more advantageous."
}
