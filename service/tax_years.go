package service

import (
	"errors"
	"fmt"
	"sort"

	"github.com/samber/lo"

	"tax-agent/domain"
)

var ErrUnknownTaxYear = errors.New("unknown tax year")

const DefaultTaxYear = 2025

// Tariff2025 is the tariff the calculator applies by default: the 2025
// Grundfreibetrag combined with the §32a coefficients of 2024.
func Tariff2025() domain.TaxYearConfig {
	return domain.TaxYearConfig{
		Year:            2025,
		Grundfreibetrag: 12096,
		Zone2Limit:      17005,
		Zone3Limit:      66760,
		Zone4Limit:      277825,
		Zone2:           domain.Zone2Coefficients{A: 922.98, B: 1400},
		Zone3:           domain.Zone3Coefficients{A: 181.19, B: 2397, C: 1025.38},
		Zone4:           domain.LinearZone{Rate: 0.42, Deduction: 10602.13},
		Zone5:           domain.LinearZone{Rate: 0.45, Deduction: 18936.88},

		SoliThresholdSingle:    18130,
		SoliThresholdSplitting: 36260,
		SoliRate:               0.055,
		SoliMilderungRate:      0.119,

		ChurchTaxRate: 0.09,
		ChurchTaxRatesByState: map[string]float64{
			"BY": 0.08,
			"BW": 0.08,
		},

		ChildAllowancePerChild:        4656,
		ChildAllowanceIncomeThreshold: 60000,
	}
}

// Tariff2024 differs from 2025 only in the Grundfreibetrag.
func Tariff2024() domain.TaxYearConfig {
	cfg := Tariff2025()
	cfg.Year = 2024
	cfg.Grundfreibetrag = 11604
	return cfg
}

type TaxYearRegistry struct {
	years       map[int]domain.TaxYearConfig
	defaultYear int
}

// NewTaxYearRegistry overlays the configured years on the built-in tariffs.
// A defaultYear of 0 selects DefaultTaxYear.
func NewTaxYearRegistry(configured []domain.TaxYearConfig, defaultYear int) (*TaxYearRegistry, error) {
	years := map[int]domain.TaxYearConfig{
		2024: Tariff2024(),
		2025: Tariff2025(),
	}
	for _, cfg := range configured {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		years[cfg.Year] = cfg.Clone()
	}

	if defaultYear == 0 {
		defaultYear = DefaultTaxYear
	}
	if _, ok := years[defaultYear]; !ok {
		return nil, fmt.Errorf("%w: default %d", ErrUnknownTaxYear, defaultYear)
	}

	return &TaxYearRegistry{years: years, defaultYear: defaultYear}, nil
}

// Lookup returns a copy of the tariff for year; 0 selects the default year.
func (r *TaxYearRegistry) Lookup(year int) (domain.TaxYearConfig, error) {
	if year == 0 {
		year = r.defaultYear
	}
	cfg, ok := r.years[year]
	if !ok {
		return domain.TaxYearConfig{}, fmt.Errorf("%w: %d", ErrUnknownTaxYear, year)
	}
	return cfg.Clone(), nil
}

func (r *TaxYearRegistry) DefaultYear() int {
	return r.defaultYear
}

// Years lists the known tariffs in ascending order.
func (r *TaxYearRegistry) Years() []domain.TaxYearConfig {
	keys := lo.Keys(r.years)
	sort.Ints(keys)
	return lo.Map(keys, func(year int, _ int) domain.TaxYearConfig {
		return r.years[year].Clone()
	})
}
