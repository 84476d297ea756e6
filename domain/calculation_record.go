package domain

import "time"

// TaxCalculationRecord is a stored calculation, as returned by the service and
// kept in the calculation history.
type TaxCalculationRecord struct {
	ID        string               `json:"id"`
	TaxYear   int                  `json:"taxYear"`
	Input     TaxCalculationInput  `json:"input"`
	Result    TaxCalculationResult `json:"result"`
	Cached    bool                 `json:"cached"`
	CreatedAt time.Time            `json:"createdAt"`
}

type RateResult struct {
	TaxYear int     `json:"taxYear"`
	Rate    float64 `json:"rate"`
}

type TaxExplanation struct {
	Result      TaxCalculationResult `json:"result"`
	Explanation string               `json:"explanation"`
}
