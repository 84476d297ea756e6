package service

import (
	"context"
	"fmt"
	"math"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"tax-agent/domain"
	"tax-agent/metrics"
	"tax-agent/repository"
)

var defaultAfaRates = map[domain.AfaModel]struct {
	code string
	rate float64
}{
	domain.AfaLinear: {ParamAfaLinear, 2},
	domain.Afa7i:     {ParamAfa7i, 9},
	domain.Afa7h:     {ParamAfa7h, 9},
	domain.Afa7b:     {ParamAfa7b, 5},
}

// InvestmentService evaluates a buy-to-let purchase: financing, depreciation,
// the resulting change in income tax and a 40-year projection.
type InvestmentService struct {
	years *TaxYearRegistry
	rates repository.RateRepository
}

func NewInvestmentService(years *TaxYearRegistry, rates repository.RateRepository) *InvestmentService {
	return &InvestmentService{years: years, rates: rates}
}

func validateInvestmentInput(input domain.InvestmentInput) error {
	if input.PurchasePrice <= 0 {
		return fmt.Errorf("%w: purchase price must be positive", ErrInvalidInput)
	}
	if input.PurchasePrice > MaxPurchasePrice {
		return fmt.Errorf("%w: purchase price exceeds %.0f", ErrInvalidInput, MaxPurchasePrice)
	}
	if input.Equity <= 0 {
		return fmt.Errorf("%w: equity must be positive", ErrInvalidInput)
	}
	if input.Equity > input.PurchasePrice {
		return fmt.Errorf("%w: equity exceeds purchase price", ErrInvalidInput)
	}
	if input.MonthlyRent < 0 || input.ManagementCostMonthly < 0 {
		return fmt.Errorf("%w: rent and management cost must not be negative", ErrInvalidInput)
	}
	if !allowedTermYears[input.TermYears] {
		return fmt.Errorf("%w: term of %d years, expected 5, 10, 15, 20, 25 or 30", ErrInvalidInput, input.TermYears)
	}
	if input.RepaymentRate < 0 || input.RepaymentRate > MaxRepaymentRate {
		return fmt.Errorf("%w: repayment rate must be between 0 and %.0f%%", ErrInvalidInput, MaxRepaymentRate)
	}
	if input.TaxableIncome < 0 || input.TaxableIncome > MaxTaxableIncome {
		return fmt.Errorf("%w: taxable income out of range", ErrInvalidInput)
	}
	if input.MaritalStatus != domain.MaritalSingle && input.MaritalStatus != domain.MaritalMarried {
		return fmt.Errorf("%w: marital status %q, expected single or married", ErrInvalidInput, input.MaritalStatus)
	}
	if _, ok := defaultAfaRates[input.AfaModel]; !ok {
		return fmt.Errorf("%w: afa model %q", ErrInvalidInput, input.AfaModel)
	}
	if input.BuildingShare < 0 || input.BuildingShare > 1 {
		return fmt.Errorf("%w: building share must be between 0 and 1", ErrInvalidInput)
	}
	if math.Abs(input.ValueGrowthRate) > MaxGrowthRate || math.Abs(input.RentGrowthRate) > MaxGrowthRate {
		return fmt.Errorf("%w: growth rates are limited to %.0f%%", ErrInvalidInput, MaxGrowthRate)
	}
	if input.ChildrenCount < 0 || input.ChildrenCount > MaxChildren {
		return fmt.Errorf("%w: children count out of range", ErrInvalidInput)
	}
	if input.ChurchTaxState != "" && !domain.IsBundesland(input.ChurchTaxState) {
		return fmt.Errorf("%w: unknown bundesland %q", ErrInvalidInput, input.ChurchTaxState)
	}
	return nil
}

func ltvBracket(ltv int) int {
	bracket := int(math.Ceil(float64(ltv)/10)) * 10
	return min(MaxLTVBracket, max(MinLTVBracket, bracket))
}

func (s *InvestmentService) interestRate(ctx context.Context, termYears, ltv int) (float64, error) {
	rate, ok, err := s.rates.InterestRate(ctx, termYears, ltvBracket(ltv))
	if err != nil {
		return 0, fmt.Errorf("fetch interest rate: %w", err)
	}
	if !ok || rate <= 0 {
		return FallbackInterest, nil
	}
	return rate, nil
}

func (s *InvestmentService) afaRate(ctx context.Context, model domain.AfaModel) (float64, error) {
	params, err := s.rates.TaxParameters(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch tax parameters: %w", err)
	}
	fallback := defaultAfaRates[model]
	if rate, ok := params[fallback.code]; ok && rate > 0 {
		return rate, nil
	}
	return fallback.rate, nil
}

// churchTaxRate resolves the state's rate in percent: the rate table first,
// then the tariff's own state rates.
func (s *InvestmentService) churchTaxRate(ctx context.Context, cfg domain.TaxYearConfig, input domain.InvestmentInput) (float64, error) {
	rate := roundTo2Decimals(cfg.ChurchTaxRateFor(input.ChurchTaxState) * 100)
	if !input.HasChurchTax || input.ChurchTaxState == "" {
		return rate, nil
	}
	stored, ok, err := s.rates.ChurchTaxRate(ctx, input.ChurchTaxState)
	if err != nil {
		return 0, fmt.Errorf("fetch church tax rate: %w", err)
	}
	if ok {
		return stored, nil
	}
	return rate, nil
}

func (s *InvestmentService) Calculate(
	ctx context.Context,
	input domain.InvestmentInput,
) (domain.InvestmentResult, error) {
	if err := validateInvestmentInput(input); err != nil {
		return domain.InvestmentResult{}, err
	}
	cfg, err := s.years.Lookup(input.TaxYear)
	if err != nil {
		return domain.InvestmentResult{}, err
	}

	loanAmount := input.PurchasePrice - input.Equity
	ltv := int(math.Round(loanAmount / input.PurchasePrice * 100))

	var interestRate, afaRate, churchRate float64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		interestRate, err = s.interestRate(gctx, input.TermYears, ltv)
		return err
	})
	g.Go(func() (err error) {
		afaRate, err = s.afaRate(gctx, input.AfaModel)
		return err
	})
	g.Go(func() (err error) {
		churchRate, err = s.churchTaxRate(gctx, cfg, input)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.InvestmentResult{}, err
	}

	// The resolved state rate replaces the tariff's uniform rate.
	cfg.ChurchTaxRate = churchRate / 100
	cfg.ChurchTaxRatesByState = nil

	assessment := domain.AssessmentEinzel
	if input.MaritalStatus == domain.MaritalMarried {
		assessment = domain.AssessmentSplitting
	}
	taxFor := func(zvE float64) domain.TaxCalculationResult {
		return CalculateTax(cfg, domain.TaxCalculationInput{
			TaxableIncome:  math.Max(0, zvE),
			AssessmentType: assessment,
			ChurchTax:      input.HasChurchTax,
			ChildrenCount:  input.ChildrenCount,
		})
	}

	yearlyAfa := input.PurchasePrice * input.BuildingShare * (afaRate / 100)
	yearlyRent := input.MonthlyRent * 12
	yearlyManagement := input.ManagementCostMonthly * 12
	yearlyInterest := loanAmount * (interestRate / 100)
	yearlyRepayment := loanAmount * (input.RepaymentRate / 100)

	// Rental losses reduce the taxable income.
	taxBefore := taxFor(input.TaxableIncome)
	taxableRentalIncome := yearlyRent - yearlyInterest - yearlyManagement - yearlyAfa
	taxAfter := taxFor(input.TaxableIncome + taxableRentalIncome)
	yearlyTaxSavings := taxBefore.TotalTax - taxAfter.TotalTax

	cashFlowBeforeTax := yearlyRent - yearlyInterest - yearlyManagement - yearlyRepayment
	cashFlowAfterTax := cashFlowBeforeTax + yearlyTaxSavings
	monthlyBurden := -cashFlowAfterTax / 12

	operatingResult := yearlyRent - yearlyInterest - yearlyManagement
	roiBeforeTax := operatingResult / input.Equity * 100
	roiAfterTax := (operatingResult + yearlyTaxSavings) / input.Equity * 100

	projection := project(input, loanAmount, interestRate, yearlyAfa, taxBefore.TotalTax, taxFor)

	annuity := MonthlyAnnuity(loanAmount, interestRate, input.RepaymentRate)
	metrics.Calculations.WithLabelValues("investment", string(assessment)).Inc()

	return domain.InvestmentResult{
		Summary: domain.InvestmentSummary{
			MonthlyBurden:        math.Round(monthlyBurden),
			MonthlyAnnuity:       annuity,
			MonthsToPayoff:       MonthsToPayoff(loanAmount, interestRate, annuity),
			TotalInvestment:      math.Round(input.Equity),
			LoanAmount:           math.Round(loanAmount),
			LTV:                  ltv,
			InterestRate:         interestRate,
			ChurchTaxRate:        churchRate,
			YearlyRent:           math.Round(yearlyRent),
			YearlyInterest:       math.Round(yearlyInterest),
			YearlyRepayment:      math.Round(yearlyRepayment),
			YearlyAfa:            math.Round(yearlyAfa),
			YearlyTaxSavings:     math.Round(yearlyTaxSavings),
			CumulativeTaxSavings: lo.SumBy(projection, func(y domain.YearlyProjection) float64 { return y.TaxSavings }),
			ROIBeforeTax:         roundTo2Decimals(roiBeforeTax),
			ROIAfterTax:          roundTo2Decimals(roiAfterTax),
		},
		TaxBefore:  taxBefore,
		TaxAfter:   taxAfter,
		Projection: projection,
		Inputs:     input,
	}, nil
}

// project rolls the investment forward year by year. Growth applies from the
// second year; repayment is capped by the remaining debt.
func project(
	input domain.InvestmentInput,
	loanAmount, interestRate, yearlyAfa, totalTaxBefore float64,
	taxFor func(zvE float64) domain.TaxCalculationResult,
) []domain.YearlyProjection {
	yearlyManagement := input.ManagementCostMonthly * 12
	remainingDebt := loanAmount
	propertyValue := input.PurchasePrice
	rent := input.MonthlyRent * 12

	projection := make([]domain.YearlyProjection, 0, ProjectionYears)
	for year := 1; year <= ProjectionYears; year++ {
		if year > 1 {
			propertyValue *= 1 + input.ValueGrowthRate/100
			rent *= 1 + input.RentGrowthRate/100
		}

		interest := remainingDebt * (interestRate / 100)
		repayment := math.Min(remainingDebt, loanAmount*(input.RepaymentRate/100))
		remainingDebt = math.Max(0, remainingDebt-repayment)

		taxableRental := rent - interest - yearlyManagement - yearlyAfa
		taxSavings := totalTaxBefore - taxFor(input.TaxableIncome+taxableRental).TotalTax

		cashFlowBefore := rent - interest - yearlyManagement - repayment

		projection = append(projection, domain.YearlyProjection{
			Year:                year,
			Rent:                math.Round(rent),
			Interest:            math.Round(interest),
			Repayment:           math.Round(repayment),
			RemainingDebt:       math.Round(remainingDebt),
			ManagementCost:      math.Round(yearlyManagement),
			Afa:                 math.Round(yearlyAfa),
			TaxableRentalIncome: math.Round(taxableRental),
			TaxSavings:          math.Round(taxSavings),
			CashFlowBeforeTax:   math.Round(cashFlowBefore),
			CashFlowAfterTax:    math.Round(cashFlowBefore + taxSavings),
			PropertyValue:       math.Round(propertyValue),
			NetWealth:           math.Round(propertyValue - remainingDebt),
		})
	}
	return projection
}
