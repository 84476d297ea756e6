package repository

import (
	"context"

	"tax-agent/domain"
)

type CalculationRepository interface {
	Save(ctx context.Context, record domain.TaxCalculationRecord) error
	// List returns at most limit records, newest first.
	List(ctx context.Context, limit int) ([]domain.TaxCalculationRecord, error)
}
