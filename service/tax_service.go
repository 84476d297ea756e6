package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tax-agent/domain"
	"tax-agent/metrics"
	"tax-agent/repository"
)

var log = logrus.WithField("module", "service")

var ErrInvalidInput = errors.New("invalid input")

type TaxService struct {
	years *TaxYearRegistry
	repo  repository.CalculationRepository
	cache repository.CacheRepository
	now   func() time.Time
}

// NewTaxService creates a TaxService. cache may be nil to disable caching.
func NewTaxService(
	years *TaxYearRegistry,
	repo repository.CalculationRepository,
	cache repository.CacheRepository,
) *TaxService {
	return &TaxService{years: years, repo: repo, cache: cache, now: time.Now}
}

// ValidateTaxInput checks a request against the limits every entry point enforces.
func ValidateTaxInput(input domain.TaxCalculationInput) error {
	if !input.AssessmentType.Valid() {
		return fmt.Errorf("%w: assessment type %q, expected EINZEL or SPLITTING", ErrInvalidInput, input.AssessmentType)
	}
	if input.TaxableIncome > MaxTaxableIncome {
		return fmt.Errorf("%w: taxable income exceeds %.0f", ErrInvalidInput, MaxTaxableIncome)
	}
	if input.ChildrenCount < 0 {
		return fmt.Errorf("%w: negative children count", ErrInvalidInput)
	}
	if input.ChildrenCount > MaxChildren {
		return fmt.Errorf("%w: children count exceeds %d", ErrInvalidInput, MaxChildren)
	}
	if input.Bundesland != "" && !domain.IsBundesland(input.Bundesland) {
		return fmt.Errorf("%w: unknown bundesland %q", ErrInvalidInput, input.Bundesland)
	}
	return nil
}

func (s *TaxService) resolve(input domain.TaxCalculationInput) (domain.TaxYearConfig, error) {
	if err := ValidateTaxInput(input); err != nil {
		return domain.TaxYearConfig{}, err
	}
	return s.years.Lookup(input.TaxYear)
}

// cacheKey identifies an input under a tariff year; the year is part of the key
// so that a changed default year does not serve stale results.
func cacheKey(year int, input domain.TaxCalculationInput) string {
	input.TaxYear = year
	data, _ := json.Marshal(input)
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}

func (s *TaxService) lookupCache(ctx context.Context, key string) (domain.TaxCalculationResult, bool) {
	if s.cache == nil {
		return domain.TaxCalculationResult{}, false
	}
	raw, ok := s.cache.Get(ctx, key)
	if !ok {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return domain.TaxCalculationResult{}, false
	}
	var result domain.TaxCalculationResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		log.WithError(err).WithField("key", key).Warn("discarding undecodable cache entry")
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return domain.TaxCalculationResult{}, false
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return result, true
}

func (s *TaxService) storeCache(ctx context.Context, key string, result domain.TaxCalculationResult) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(data)); err != nil {
		log.WithError(err).Warn("failed to cache tax result")
	}
}

// Calculate validates the input, computes the tax under the requested year and
// records the calculation. A failing history store does not fail the call.
func (s *TaxService) Calculate(
	ctx context.Context,
	input domain.TaxCalculationInput,
) (domain.TaxCalculationRecord, error) {
	cfg, err := s.resolve(input)
	if err != nil {
		return domain.TaxCalculationRecord{}, err
	}

	key := cacheKey(cfg.Year, input)
	result, cached := s.lookupCache(ctx, key)
	if !cached {
		result = CalculateTax(cfg, input)
		s.storeCache(ctx, key, result)
	}
	metrics.Calculations.WithLabelValues("tax", string(input.AssessmentType)).Inc()

	record := domain.TaxCalculationRecord{
		ID:        uuid.NewString(),
		TaxYear:   cfg.Year,
		Input:     input,
		Result:    result,
		Cached:    cached,
		CreatedAt: s.now().UTC(),
	}

	if err := s.repo.Save(ctx, record); err != nil {
		metrics.PersistenceFailures.Inc()
		log.WithError(err).WithField("calculation_id", record.ID).Warn("failed to save tax calculation")
	}

	return record, nil
}

func (s *TaxService) EffectiveRate(ctx context.Context, input domain.TaxCalculationInput) (domain.RateResult, error) {
	cfg, err := s.resolve(input)
	if err != nil {
		return domain.RateResult{}, err
	}
	metrics.Calculations.WithLabelValues("effective_rate", string(input.AssessmentType)).Inc()
	return domain.RateResult{TaxYear: cfg.Year, Rate: EffectiveTaxRate(cfg, input)}, nil
}

func (s *TaxService) MarginalRate(ctx context.Context, input domain.TaxCalculationInput) (domain.RateResult, error) {
	cfg, err := s.resolve(input)
	if err != nil {
		return domain.RateResult{}, err
	}
	metrics.Calculations.WithLabelValues("marginal_rate", string(input.AssessmentType)).Inc()
	return domain.RateResult{TaxYear: cfg.Year, Rate: MarginalTaxRate(cfg, input)}, nil
}

// History returns the most recent calculations; limit is clamped to MaxHistoryLimit.
func (s *TaxService) History(ctx context.Context, limit int) ([]domain.TaxCalculationRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	records, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list calculations: %w", err)
	}
	if records == nil {
		records = []domain.TaxCalculationRecord{}
	}
	return records, nil
}

func (s *TaxService) Years() []domain.TaxYearConfig {
	return s.years.Years()
}
