package repository

import "context"

// RateRepository exposes the current financing and tax parameter tables.
// The bool results report whether a row exists.
type RateRepository interface {
	InterestRate(ctx context.Context, termYears, ltvPercent int) (float64, bool, error)
	TaxParameters(ctx context.Context) (map[string]float64, error)
	ChurchTaxRate(ctx context.Context, stateCode string) (float64, bool, error)
}
