package domain

type MaritalStatus string

const (
	MaritalSingle  MaritalStatus = "single"
	MaritalMarried MaritalStatus = "married"
)

type AfaModel string

const (
	AfaLinear AfaModel = "linear"
	Afa7i     AfaModel = "7i"
	Afa7h     AfaModel = "7h"
	Afa7b     AfaModel = "7b"
)

type InvestmentInput struct {
	PurchasePrice         float64       `json:"purchasePrice"`
	MonthlyRent           float64       `json:"monthlyRent"`
	Equity                float64       `json:"equity"`
	TermYears             int           `json:"termYears"`     // 5, 10, 15, 20, 25, 30
	RepaymentRate         float64       `json:"repaymentRate"` // % p.a.
	TaxableIncome         float64       `json:"taxableIncome"`
	MaritalStatus         MaritalStatus `json:"maritalStatus"`
	HasChurchTax          bool          `json:"hasChurchTax"`
	ChurchTaxState        string        `json:"churchTaxState,omitempty"`
	AfaModel              AfaModel      `json:"afaModel"`
	BuildingShare         float64       `json:"buildingShare"` // 0-1
	ManagementCostMonthly float64       `json:"managementCostMonthly"`
	ValueGrowthRate       float64       `json:"valueGrowthRate"` // % p.a.
	RentGrowthRate        float64       `json:"rentGrowthRate"`  // % p.a.
	ChildrenCount         int           `json:"childrenCount"`
	TaxYear               int           `json:"taxYear,omitempty"`
}

type YearlyProjection struct {
	Year                int     `json:"year"`
	Rent                float64 `json:"rent"`
	Interest            float64 `json:"interest"`
	Repayment           float64 `json:"repayment"`
	RemainingDebt       float64 `json:"remainingDebt"`
	ManagementCost      float64 `json:"managementCost"`
	Afa                 float64 `json:"afa"`
	TaxableRentalIncome float64 `json:"taxableRentalIncome"`
	TaxSavings          float64 `json:"taxSavings"`
	CashFlowBeforeTax   float64 `json:"cashFlowBeforeTax"`
	CashFlowAfterTax    float64 `json:"cashFlowAfterTax"`
	PropertyValue       float64 `json:"propertyValue"`
	NetWealth           float64 `json:"netWealth"`
}

type InvestmentSummary struct {
	MonthlyBurden        float64 `json:"monthlyBurden"` // positive: investor pays, negative: investor receives
	MonthlyAnnuity       float64 `json:"monthlyAnnuity"`
	MonthsToPayoff       int     `json:"monthsToPayoff"` // -1 if the annuity never clears the loan
	TotalInvestment      float64 `json:"totalInvestment"`
	LoanAmount           float64 `json:"loanAmount"`
	LTV                  int     `json:"ltv"`
	InterestRate         float64 `json:"interestRate"`
	ChurchTaxRate        float64 `json:"churchTaxRate"`
	YearlyRent           float64 `json:"yearlyRent"`
	YearlyInterest       float64 `json:"yearlyInterest"`
	YearlyRepayment      float64 `json:"yearlyRepayment"`
	YearlyAfa            float64 `json:"yearlyAfa"`
	YearlyTaxSavings     float64 `json:"yearlyTaxSavings"`
	CumulativeTaxSavings float64 `json:"cumulativeTaxSavings"`
	ROIBeforeTax         float64 `json:"roiBeforeTax"`
	ROIAfterTax          float64 `json:"roiAfterTax"`
}

type InvestmentResult struct {
	Summary    InvestmentSummary    `json:"summary"`
	TaxBefore  TaxCalculationResult `json:"taxBefore"`
	TaxAfter   TaxCalculationResult `json:"taxAfter"`
	Projection []YearlyProjection   `json:"projection"`
	Inputs     InvestmentInput      `json:"inputs"`
}
