package repository

import (
	"context"
	"sync"

	"tax-agent/domain"
)

// DefaultHistoryCapacity is the number of records the in-memory history keeps.
const DefaultHistoryCapacity = 500

// CalculationRepositoryMemory keeps the most recent calculations in a ring
// buffer; once full, each Save overwrites the oldest record.
type CalculationRepositoryMemory struct {
	mu    sync.RWMutex
	data  []domain.TaxCalculationRecord
	next  int
	count int
}

// NewCalculationRepositoryMemory creates a history holding DefaultHistoryCapacity records.
func NewCalculationRepositoryMemory() *CalculationRepositoryMemory {
	return NewCalculationRepositoryMemoryWithCapacity(DefaultHistoryCapacity)
}

// NewCalculationRepositoryMemoryWithCapacity creates a history holding at most
// capacity records; capacity <= 0 selects DefaultHistoryCapacity.
func NewCalculationRepositoryMemoryWithCapacity(capacity int) *CalculationRepositoryMemory {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &CalculationRepositoryMemory{
		data: make([]domain.TaxCalculationRecord, capacity),
	}
}

// Save stores the calculation in memory.
func (r *CalculationRepositoryMemory) Save(
	_ context.Context,
	record domain.TaxCalculationRecord,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[r.next] = record
	r.next = (r.next + 1) % len(r.data)
	if r.count < len(r.data) {
		r.count++
	}
	return nil
}

// List returns up to limit records, newest first; limit <= 0 returns all retained records.
func (r *CalculationRepositoryMemory) List(
	_ context.Context,
	limit int,
) ([]domain.TaxCalculationRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > r.count {
		limit = r.count
	}
	records := make([]domain.TaxCalculationRecord, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (r.next - i + len(r.data)) % len(r.data)
		records = append(records, r.data[idx])
	}
	return records, nil
}
