package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tax-agent/domain"
	"tax-agent/repository"
)

type failingRateRepository struct{}

func (failingRateRepository) InterestRate(context.Context, int, int) (float64, bool, error) {
	return 0, false, errors.New("connection refused")
}

func (failingRateRepository) TaxParameters(context.Context) (map[string]float64, error) {
	return nil, errors.New("connection refused")
}

func (failingRateRepository) ChurchTaxRate(context.Context, string) (float64, bool, error) {
	return 0, false, errors.New("connection refused")
}

type emptyRateRepository struct{}

func (emptyRateRepository) InterestRate(context.Context, int, int) (float64, bool, error) {
	return 0, false, nil
}

func (emptyRateRepository) TaxParameters(context.Context) (map[string]float64, error) {
	return map[string]float64{}, nil
}

func (emptyRateRepository) ChurchTaxRate(context.Context, string) (float64, bool, error) {
	return 0, false, nil
}

func newTestInvestmentService(t *testing.T, rates repository.RateRepository) *InvestmentService {
	t.Helper()
	years, err := NewTaxYearRegistry(nil, 0)
	require.NoError(t, err)
	return NewInvestmentService(years, rates)
}

func baseInvestment() domain.InvestmentInput {
	return domain.InvestmentInput{
		PurchasePrice:         300000,
		MonthlyRent:           1000,
		Equity:                60000,
		TermYears:             10,
		RepaymentRate:         2,
		TaxableIncome:         80000,
		MaritalStatus:         domain.MaritalSingle,
		AfaModel:              domain.AfaLinear,
		BuildingShare:         0.8,
		ManagementCostMonthly: 30,
		ValueGrowthRate:       2,
		RentGrowthRate:        1.5,
	}
}

func TestInvestmentCalculate_Single(t *testing.T) {
	svc := newTestInvestmentService(t, repository.NewRateRepositoryMemory())

	result, err := svc.Calculate(context.Background(), baseInvestment())
	require.NoError(t, err)

	s := result.Summary
	assert.Equal(t, 240000.0, s.LoanAmount)
	assert.Equal(t, 80, s.LTV)
	assert.Equal(t, 3.8, s.InterestRate)
	assert.Equal(t, 4800.0, s.YearlyAfa)
	assert.Equal(t, 12000.0, s.YearlyRent)
	assert.Equal(t, 9120.0, s.YearlyInterest)
	assert.Equal(t, 4800.0, s.YearlyRepayment)
	assert.Equal(t, 60000.0, s.TotalInvestment)

	assert.Equal(t, 23576.0, result.TaxBefore.TotalTax)
	assert.Equal(t, 22505.0, result.TaxAfter.TotalTax)
	assert.Equal(t, 1071.0, s.YearlyTaxSavings)
	assert.Equal(t, 101.0, s.MonthlyBurden)
	assert.Equal(t, 4.2, s.ROIBeforeTax)
	assert.InDelta(t, 5.99, s.ROIAfterTax, 0.011)

	assert.Equal(t, 1160.0, s.MonthlyAnnuity)
	assert.Equal(t, 337, s.MonthsToPayoff)
	assert.Equal(t, 9.0, s.ChurchTaxRate)
}

func TestInvestmentCalculate_Projection(t *testing.T) {
	svc := newTestInvestmentService(t, repository.NewRateRepositoryMemory())

	result, err := svc.Calculate(context.Background(), baseInvestment())
	require.NoError(t, err)
	require.Len(t, result.Projection, ProjectionYears)

	first := result.Projection[0]
	assert.Equal(t, 1, first.Year)
	assert.Equal(t, 12000.0, first.Rent)
	assert.Equal(t, 9120.0, first.Interest)
	assert.Equal(t, 235200.0, first.RemainingDebt)
	assert.Equal(t, 300000.0, first.PropertyValue)
	assert.Equal(t, result.Summary.YearlyTaxSavings, first.TaxSavings)

	second := result.Projection[1]
	assert.Equal(t, 12180.0, second.Rent)
	assert.Equal(t, 306000.0, second.PropertyValue)
	assert.Equal(t, 230400.0, second.RemainingDebt)

	last := result.Projection[ProjectionYears-1]
	assert.Equal(t, 48000.0, last.RemainingDebt)
	assert.InDelta(t, 649423.0, last.PropertyValue, 1)
	assert.Equal(t, last.PropertyValue-last.RemainingDebt, last.NetWealth)

	var sum float64
	for _, year := range result.Projection {
		sum += year.TaxSavings
		assert.Equal(t, year.CashFlowBeforeTax+year.TaxSavings, year.CashFlowAfterTax, "year %d", year.Year)
	}
	assert.Equal(t, sum, result.Summary.CumulativeTaxSavings)
}

func TestInvestmentCalculate_RepaymentStopsAtZero(t *testing.T) {
	svc := newTestInvestmentService(t, repository.NewRateRepositoryMemory())

	input := baseInvestment()
	input.RepaymentRate = 5
	result, err := svc.Calculate(context.Background(), input)
	require.NoError(t, err)

	year20 := result.Projection[19]
	assert.Equal(t, 0.0, year20.RemainingDebt)
	year21 := result.Projection[20]
	assert.Equal(t, 0.0, year21.Repayment)
	assert.Equal(t, 0.0, year21.Interest)
}

func TestInvestmentCalculate_MarriedWithStateChurchTax(t *testing.T) {
	svc := newTestInvestmentService(t, repository.NewRateRepositoryMemory())

	input := baseInvestment()
	input.MaritalStatus = domain.MaritalMarried
	input.HasChurchTax = true
	input.ChurchTaxState = "BY"

	result, err := svc.Calculate(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, 8.0, result.Summary.ChurchTaxRate)
	assert.Equal(t, 16189.0, result.TaxBefore.TotalTax)
	assert.Equal(t, 15399.0, result.TaxAfter.TotalTax)
	assert.Equal(t, 790.0, result.Summary.YearlyTaxSavings)
	assert.Equal(t, 124.0, result.Summary.MonthlyBurden)
}

func TestInvestmentCalculate_ChurchTaxRateFromTable(t *testing.T) {
	rates := repository.NewRateRepositoryMemory()
	rates.SetChurchTaxRate("HH", 8.5)
	svc := newTestInvestmentService(t, rates)

	input := baseInvestment()
	input.HasChurchTax = true
	input.ChurchTaxState = "HH"

	result, err := svc.Calculate(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 8.5, result.Summary.ChurchTaxRate)
}

func TestInvestmentCalculate_Fallbacks(t *testing.T) {
	svc := newTestInvestmentService(t, emptyRateRepository{})

	input := baseInvestment()
	input.AfaModel = domain.Afa7b
	result, err := svc.Calculate(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, FallbackInterest, result.Summary.InterestRate)
	assert.Equal(t, 12000.0, result.Summary.YearlyAfa)
}

func TestInvestmentCalculate_TaxParameterOverride(t *testing.T) {
	rates := repository.NewRateRepositoryMemory()
	rates.SetTaxParameter(ParamAfaLinear, 3)
	svc := newTestInvestmentService(t, rates)

	result, err := svc.Calculate(context.Background(), baseInvestment())
	require.NoError(t, err)
	assert.Equal(t, 7200.0, result.Summary.YearlyAfa)
}

func TestInvestmentCalculate_RepositoryError(t *testing.T) {
	svc := newTestInvestmentService(t, failingRateRepository{})

	_, err := svc.Calculate(context.Background(), baseInvestment())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidInput))
}

func TestInvestmentCalculate_InvalidInput(t *testing.T) {
	svc := newTestInvestmentService(t, repository.NewRateRepositoryMemory())

	tests := []struct {
		name   string
		mutate func(*domain.InvestmentInput)
	}{
		{"zero price", func(in *domain.InvestmentInput) { in.PurchasePrice = 0 }},
		{"zero equity", func(in *domain.InvestmentInput) { in.Equity = 0 }},
		{"equity above price", func(in *domain.InvestmentInput) { in.Equity = 400000 }},
		{"negative rent", func(in *domain.InvestmentInput) { in.MonthlyRent = -1 }},
		{"odd term", func(in *domain.InvestmentInput) { in.TermYears = 12 }},
		{"repayment too high", func(in *domain.InvestmentInput) { in.RepaymentRate = 11 }},
		{"unknown marital status", func(in *domain.InvestmentInput) { in.MaritalStatus = "divorced" }},
		{"unknown afa model", func(in *domain.InvestmentInput) { in.AfaModel = "7x" }},
		{"building share above one", func(in *domain.InvestmentInput) { in.BuildingShare = 1.2 }},
		{"growth too high", func(in *domain.InvestmentInput) { in.ValueGrowthRate = 25 }},
		{"unknown state", func(in *domain.InvestmentInput) { in.ChurchTaxState = "ZZ" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := baseInvestment()
			tt.mutate(&input)
			_, err := svc.Calculate(context.Background(), input)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestLTVBracket(t *testing.T) {
	tests := []struct {
		ltv  int
		want int
	}{
		{0, 60},
		{45, 60},
		{60, 60},
		{61, 70},
		{80, 80},
		{95, 100},
		{100, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ltvBracket(tt.ltv), "ltv %d", tt.ltv)
	}
}
