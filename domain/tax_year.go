package domain

import (
	"errors"
	"fmt"
	"maps"
	"strings"
)

// Zone2Coefficients describe the first progression zone: (A*y + B)*y.
type Zone2Coefficients struct {
	A float64 `yaml:"a" json:"a"`
	B float64 `yaml:"b" json:"b"`
}

// Zone3Coefficients describe the second progression zone: (A*z + B)*z + C.
type Zone3Coefficients struct {
	A float64 `yaml:"a" json:"a"`
	B float64 `yaml:"b" json:"b"`
	C float64 `yaml:"c" json:"c"`
}

// LinearZone describes a proportional zone: Rate*zvE - Deduction.
type LinearZone struct {
	Rate      float64 `yaml:"rate" json:"rate"`
	Deduction float64 `yaml:"deduction" json:"deduction"`
}

// TaxYearConfig carries every statutory constant of one assessment year.
type TaxYearConfig struct {
	Year int `yaml:"year" json:"year"`

	Grundfreibetrag float64 `yaml:"grundfreibetrag" json:"grundfreibetrag"`
	Zone2Limit      float64 `yaml:"zone2_limit" json:"zone2Limit"`
	Zone3Limit      float64 `yaml:"zone3_limit" json:"zone3Limit"`
	Zone4Limit      float64 `yaml:"zone4_limit" json:"zone4Limit"`

	Zone2 Zone2Coefficients `yaml:"zone2" json:"zone2"`
	Zone3 Zone3Coefficients `yaml:"zone3" json:"zone3"`
	Zone4 LinearZone        `yaml:"zone4" json:"zone4"`
	Zone5 LinearZone        `yaml:"zone5" json:"zone5"`

	SoliThresholdSingle    float64 `yaml:"soli_threshold_single" json:"soliThresholdSingle"`
	SoliThresholdSplitting float64 `yaml:"soli_threshold_splitting" json:"soliThresholdSplitting"`
	SoliRate               float64 `yaml:"soli_rate" json:"soliRate"`
	SoliMilderungRate      float64 `yaml:"soli_milderung_rate" json:"soliMilderungRate"`

	ChurchTaxRate         float64            `yaml:"church_tax_rate" json:"churchTaxRate"`
	ChurchTaxRatesByState map[string]float64 `yaml:"church_tax_rates_by_state" json:"churchTaxRatesByState,omitempty"`

	ChildAllowancePerChild        float64 `yaml:"child_allowance_per_child" json:"childAllowancePerChild"`
	ChildAllowanceIncomeThreshold float64 `yaml:"child_allowance_income_threshold" json:"childAllowanceIncomeThreshold"`
}

var ErrInvalidTaxYearConfig = errors.New("invalid tax year config")

// Validate checks that the zone limits ascend and all rates are fractions.
func (c TaxYearConfig) Validate() error {
	if c.Year <= 0 {
		return fmt.Errorf("%w: year must be positive", ErrInvalidTaxYearConfig)
	}
	if c.Grundfreibetrag < 0 {
		return fmt.Errorf("%w: %d: negative grundfreibetrag", ErrInvalidTaxYearConfig, c.Year)
	}
	if !(c.Grundfreibetrag < c.Zone2Limit && c.Zone2Limit < c.Zone3Limit && c.Zone3Limit < c.Zone4Limit) {
		return fmt.Errorf("%w: %d: zone limits must ascend", ErrInvalidTaxYearConfig, c.Year)
	}

	rates := map[string]float64{
		"zone4 rate":          c.Zone4.Rate,
		"zone5 rate":          c.Zone5.Rate,
		"soli rate":           c.SoliRate,
		"soli milderung rate": c.SoliMilderungRate,
		"church tax rate":     c.ChurchTaxRate,
	}
	for state, rate := range c.ChurchTaxRatesByState {
		rates["church tax rate "+state] = rate
	}
	for name, rate := range rates {
		if rate < 0 || rate > 1 {
			return fmt.Errorf("%w: %d: %s %.4f out of range", ErrInvalidTaxYearConfig, c.Year, name, rate)
		}
	}

	if c.SoliThresholdSingle < 0 || c.SoliThresholdSplitting < 0 {
		return fmt.Errorf("%w: %d: negative soli threshold", ErrInvalidTaxYearConfig, c.Year)
	}
	if c.ChildAllowancePerChild < 0 || c.ChildAllowanceIncomeThreshold < 0 {
		return fmt.Errorf("%w: %d: negative child allowance", ErrInvalidTaxYearConfig, c.Year)
	}
	return nil
}

// Clone returns a copy that shares no map with c.
func (c TaxYearConfig) Clone() TaxYearConfig {
	c.ChurchTaxRatesByState = maps.Clone(c.ChurchTaxRatesByState)
	return c
}

// ChurchTaxRateFor returns the state's rate if one is configured, the uniform rate otherwise.
func (c TaxYearConfig) ChurchTaxRateFor(bundesland string) float64 {
	if bundesland != "" {
		if rate, ok := c.ChurchTaxRatesByState[strings.ToUpper(bundesland)]; ok {
			return rate
		}
	}
	return c.ChurchTaxRate
}

// SoliThreshold returns the exemption limit for the given assessment type.
func (c TaxYearConfig) SoliThreshold(assessment AssessmentType) float64 {
	if assessment == AssessmentSplitting {
		return c.SoliThresholdSplitting
	}
	return c.SoliThresholdSingle
}
