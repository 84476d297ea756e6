package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
)

// PostgresRateRepository reads the rate tables; rows with valid_until IS NULL are current.
type PostgresRateRepository struct {
	db *sql.DB
}

func NewPostgresRateRepository(db *sql.DB) *PostgresRateRepository {
	return &PostgresRateRepository{db: db}
}

func (r *PostgresRateRepository) InterestRate(ctx context.Context, termYears, ltvPercent int) (float64, bool, error) {
	query := `
		SELECT interest_rate
		FROM interest_rates
		WHERE term_years = $1 AND ltv_percent = $2 AND valid_until IS NULL
	`
	var rate float64
	err := r.db.QueryRowContext(ctx, query, termYears, ltvPercent).Scan(&rate)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"term_years":  termYears,
			"ltv_percent": ltvPercent,
		}).Error("failed to fetch interest rate")
		return 0, false, err
	}
	return rate, true, nil
}

func (r *PostgresRateRepository) TaxParameters(ctx context.Context) (map[string]float64, error) {
	query := `
		SELECT code, value
		FROM tax_parameters
		WHERE valid_until IS NULL
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		log.WithError(err).Error("failed to fetch tax parameters")
		return nil, err
	}
	defer rows.Close()

	params := make(map[string]float64)
	for rows.Next() {
		var code string
		var value float64
		if err := rows.Scan(&code, &value); err != nil {
			return nil, err
		}
		params[code] = value
	}
	return params, rows.Err()
}

func (r *PostgresRateRepository) ChurchTaxRate(ctx context.Context, stateCode string) (float64, bool, error) {
	query := `
		SELECT rate
		FROM church_tax_rates
		WHERE state_code = $1
	`
	var rate float64
	err := r.db.QueryRowContext(ctx, query, strings.ToUpper(stateCode)).Scan(&rate)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return rate, true, nil
}
