package predictor

import "math/rand"

// TrainingProfile is one synthetic taxpayer row. The set is generated once at
// predictor construction from a seeded source and never mutated afterwards.
type TrainingProfile struct {
	Income                float64
	Investments80C        float64
	HealthInsurance       float64
	HRAExemption          float64
	HomeLoanInterest      float64
	EducationLoanInterest float64
	Age                   float64
	TotalDeductions       float64
	Label                 int // labelOld or labelNew
}

// Bounds for the synthetic draws. Income spans 3L to 25L; the deduction ranges
// approximate plausible Indian taxpayer profiles.
const (
	incomeMin      = 300_000
	incomeMax      = 2_500_000
	healthDrawMax  = 50_000
	hraDrawMax     = 200_000
	homeLoanMax    = 300_000
	eduLoanMax     = 100_000
	ageMin         = 22
	ageMax         = 70
	clip80C        = 150_000
	labelThreshold = 0.12
)

// synthesizeProfiles draws n profiles from rng, field by field: income uniform
// over [incomeMin, incomeMax); 80C as income times uniform [0.05, 0.15)
// clipped at 1.5L; the remaining deductions and age from independent bounded
// uniform integer ranges. The label rule is deliberately simpler than the
// bracket arithmetic: deductions above 12% of income favor the old regime.
func synthesizeProfiles(rng *rand.Rand, n int) []TrainingProfile {
	profiles := make([]TrainingProfile, n)
	for i := range profiles {
		p := &profiles[i]
		p.Income = float64(incomeMin + rng.Intn(incomeMax-incomeMin))

		p.Investments80C = p.Income * (0.05 + rng.Float64()*0.10)
		if p.Investments80C > clip80C {
			p.Investments80C = clip80C
		}

		p.HealthInsurance = float64(rng.Intn(healthDrawMax))
		p.HRAExemption = float64(rng.Intn(hraDrawMax))
		p.HomeLoanInterest = float64(rng.Intn(homeLoanMax))
		p.EducationLoanInterest = float64(rng.Intn(eduLoanMax))
		p.Age = float64(ageMin + rng.Intn(ageMax-ageMin))

		p.TotalDeductions = p.Investments80C + p.HealthInsurance + p.HRAExemption +
			p.HomeLoanInterest + p.EducationLoanInterest

		if p.TotalDeductions/p.Income > labelThreshold {
			p.Label = labelOld
		} else {
			p.Label = labelNew
		}
	}
	return profiles
}

// featureVector orders a profile's numeric fields the way the tree was fitted:
// income, 80C, health insurance, HRA, home loan, education loan, age, total
// deductions.
func (p TrainingProfile) featureVector() []float64 {
	return []float64{
		p.Income,
		p.Investments80C,
		p.HealthInsurance,
		p.HRAExemption,
		p.HomeLoanInterest,
		p.EducationLoanInterest,
		p.Age,
		p.TotalDeductions,
	}
}
