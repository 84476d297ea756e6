package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"tax-agent/domain"
)

// PostgresCalculationRepository implements CalculationRepository using PostgreSQL.
type PostgresCalculationRepository struct {
	db *sql.DB
}

func NewPostgresCalculationRepository(db *sql.DB) *PostgresCalculationRepository {
	return &PostgresCalculationRepository{db: db}
}

// Save inserts the record; input and result are stored as JSONB.
func (r *PostgresCalculationRepository) Save(ctx context.Context, record domain.TaxCalculationRecord) error {
	inputJSON, err := json.Marshal(record.Input)
	if err != nil {
		return fmt.Errorf("marshal input: %w", err)
	}
	resultJSON, err := json.Marshal(record.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	query := `
		INSERT INTO tax_calculations (id, tax_year, input, result, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = r.db.ExecContext(ctx, query,
		record.ID,
		record.TaxYear,
		inputJSON,
		resultJSON,
		record.CreatedAt,
	)
	if err != nil {
		log.WithError(err).WithField("calculation_id", record.ID).Error("failed to insert tax calculation")
		return err
	}
	return nil
}

func (r *PostgresCalculationRepository) List(ctx context.Context, limit int) ([]domain.TaxCalculationRecord, error) {
	query := `
		SELECT id, tax_year, input, result, created_at
		FROM tax_calculations
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.TaxCalculationRecord
	for rows.Next() {
		var record domain.TaxCalculationRecord
		var inputJSON, resultJSON []byte
		if err := rows.Scan(&record.ID, &record.TaxYear, &inputJSON, &resultJSON, &record.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(inputJSON, &record.Input); err != nil {
			return nil, fmt.Errorf("unmarshal input of %s: %w", record.ID, err)
		}
		if err := json.Unmarshal(resultJSON, &record.Result); err != nil {
			return nil, fmt.Errorf("unmarshal result of %s: %w", record.ID, err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
