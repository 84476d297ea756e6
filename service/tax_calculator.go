package service

import (
	"math"

	"tax-agent/domain"
)

func roundTo2Decimals(value float64) float64 {
	return math.Round(value*100) / 100
}

func roundTo1Decimal(value float64) float64 {
	return math.Round(value*10) / 10
}

func floorToCents(value float64) float64 {
	return math.Floor(value*100) / 100
}

// Bracket returns the income tax of the basic tariff (§32a EStG) for zvE.
// Every zone truncates to whole euros.
func Bracket(cfg domain.TaxYearConfig, zvE float64) float64 {
	switch {
	case zvE <= cfg.Grundfreibetrag:
		return 0
	case zvE <= cfg.Zone2Limit:
		y := (zvE - cfg.Grundfreibetrag) / 10000
		return math.Floor((cfg.Zone2.A*y + cfg.Zone2.B) * y)
	case zvE <= cfg.Zone3Limit:
		z := (zvE - cfg.Zone2Limit) / 10000
		return math.Floor((cfg.Zone3.A*z+cfg.Zone3.B)*z + cfg.Zone3.C)
	case zvE <= cfg.Zone4Limit:
		return math.Floor(cfg.Zone4.Rate*zvE - cfg.Zone4.Deduction)
	default:
		return math.Floor(cfg.Zone5.Rate*zvE - cfg.Zone5.Deduction)
	}
}

// MarginalRate is the derivative of Bracket at zvE, as a fraction.
func MarginalRate(cfg domain.TaxYearConfig, zvE float64) float64 {
	switch {
	case zvE <= cfg.Grundfreibetrag:
		return 0
	case zvE <= cfg.Zone2Limit:
		y := (zvE - cfg.Grundfreibetrag) / 10000
		return (2*cfg.Zone2.A*y + cfg.Zone2.B) / 10000
	case zvE <= cfg.Zone3Limit:
		z := (zvE - cfg.Zone2Limit) / 10000
		return (2*cfg.Zone3.A*z + cfg.Zone3.B) / 10000
	case zvE <= cfg.Zone4Limit:
		return cfg.Zone4.Rate
	default:
		return cfg.Zone5.Rate
	}
}

// taxBase applies the simplified child allowance check: above the income
// threshold the allowance is always assumed to beat Kindergeld.
func taxBase(cfg domain.TaxYearConfig, input domain.TaxCalculationInput) (float64, bool) {
	if input.ChildrenCount > 0 && input.TaxableIncome > cfg.ChildAllowanceIncomeThreshold {
		base := input.TaxableIncome - float64(input.ChildrenCount)*cfg.ChildAllowancePerChild
		return math.Max(0, base), true
	}
	return input.TaxableIncome, false
}

func incomeTax(cfg domain.TaxYearConfig, assessment domain.AssessmentType, zvE float64) float64 {
	if assessment == domain.AssessmentSplitting {
		return 2 * Bracket(cfg, zvE/2)
	}
	return Bracket(cfg, zvE)
}

func tariffIncome(assessment domain.AssessmentType, zvE float64) float64 {
	if assessment == domain.AssessmentSplitting {
		return zvE / 2
	}
	return zvE
}

// solidaritySurcharge is capped by the Milderungszone: above the threshold
// only SoliMilderungRate of the excess is due until the full rate is cheaper.
func solidaritySurcharge(cfg domain.TaxYearConfig, assessment domain.AssessmentType, tax float64) float64 {
	threshold := cfg.SoliThreshold(assessment)
	if tax <= threshold {
		return 0
	}
	full := tax * cfg.SoliRate
	graduated := (tax - threshold) * cfg.SoliMilderungRate
	return floorToCents(math.Min(full, graduated))
}

func churchTax(cfg domain.TaxYearConfig, input domain.TaxCalculationInput, tax float64) float64 {
	if !input.ChurchTax {
		return 0
	}
	return floorToCents(tax * cfg.ChurchTaxRateFor(input.Bundesland))
}

// CalculateTax computes income tax, Soli, church tax and net income for one
// taxpayer. Any assessment type other than SPLITTING is assessed individually.
func CalculateTax(cfg domain.TaxYearConfig, input domain.TaxCalculationInput) domain.TaxCalculationResult {
	zvE, allowanceUsed := taxBase(cfg, input)

	tax := incomeTax(cfg, input.AssessmentType, zvE)
	soli := solidaritySurcharge(cfg, input.AssessmentType, tax)
	church := churchTax(cfg, input, tax)

	// Each component is rounded on its own so the total is their exact sum.
	roundedTax := math.Round(tax)
	roundedSoli := math.Round(soli)
	roundedChurch := math.Round(church)
	total := roundedTax + roundedSoli + roundedChurch

	effective := 0.0
	if input.TaxableIncome > 0 {
		effective = roundTo1Decimal(total / input.TaxableIncome * 100)
	}

	return domain.TaxCalculationResult{
		TaxableIncome:       input.TaxableIncome,
		IncomeTax:           roundedTax,
		SolidaritySurcharge: roundedSoli,
		ChurchTax:           roundedChurch,
		TotalTax:            total,
		MarginalTaxRate:     roundTo1Decimal(MarginalRate(cfg, tariffIncome(input.AssessmentType, zvE)) * 100),
		EffectiveTaxRate:    effective,
		NetIncome:           math.Round(input.TaxableIncome - total),
		ChildAllowanceUsed:  allowanceUsed,
	}
}

func EffectiveTaxRate(cfg domain.TaxYearConfig, input domain.TaxCalculationInput) float64 {
	return CalculateTax(cfg, input).EffectiveTaxRate
}

func MarginalTaxRate(cfg domain.TaxYearConfig, input domain.TaxCalculationInput) float64 {
	return CalculateTax(cfg, input).MarginalTaxRate
}
