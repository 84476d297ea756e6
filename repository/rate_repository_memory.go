package repository

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
)

// RateRepositoryMemory serves rate tables from memory. Rates are percentages.
type RateRepositoryMemory struct {
	mu             sync.RWMutex
	interestRates  map[string]float64
	taxParameters  map[string]float64
	churchTaxRates map[string]float64
}

func interestRateKey(termYears, ltvPercent int) string {
	return fmt.Sprintf("%d_%d", termYears, ltvPercent)
}

// NewRateRepositoryMemory creates a repository seeded with a default
// interest matrix (terms 5-30 years, LTV 60-100 %) and the AfA rates.
func NewRateRepositoryMemory() *RateRepositoryMemory {
	baseRates := map[int]float64{5: 3.4, 10: 3.5, 15: 3.7, 20: 3.8, 25: 3.9, 30: 4.0}
	interest := make(map[string]float64)
	for term, base := range baseRates {
		for ltv := 60; ltv <= 100; ltv += 10 {
			surcharge := float64(ltv-60) / 10 * 0.15
			interest[interestRateKey(term, ltv)] = math.Round((base+surcharge)*100) / 100
		}
	}

	return &RateRepositoryMemory{
		interestRates: interest,
		taxParameters: map[string]float64{
			"AFA_LINEAR": 2,
			"AFA_7I":     9,
			"AFA_7H":     9,
			"AFA_7B":     5,
		},
		churchTaxRates: map[string]float64{
			"BY": 8,
			"BW": 8,
		},
	}
}

func (r *RateRepositoryMemory) SetInterestRate(termYears, ltvPercent int, rate float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.interestRates[interestRateKey(termYears, ltvPercent)] = rate
}

func (r *RateRepositoryMemory) SetTaxParameter(code string, value float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.taxParameters[code] = value
}

func (r *RateRepositoryMemory) SetChurchTaxRate(stateCode string, rate float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.churchTaxRates[strings.ToUpper(stateCode)] = rate
}

func (r *RateRepositoryMemory) InterestRate(_ context.Context, termYears, ltvPercent int) (float64, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rate, ok := r.interestRates[interestRateKey(termYears, ltvPercent)]
	return rate, ok, nil
}

func (r *RateRepositoryMemory) TaxParameters(_ context.Context) (map[string]float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	params := make(map[string]float64, len(r.taxParameters))
	for code, value := range r.taxParameters {
		params[code] = value
	}
	return params, nil
}

func (r *RateRepositoryMemory) ChurchTaxRate(_ context.Context, stateCode string) (float64, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rate, ok := r.churchTaxRates[strings.ToUpper(stateCode)]
	return rate, ok, nil
}
