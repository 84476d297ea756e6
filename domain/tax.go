package domain

type AssessmentType string

const (
	AssessmentEinzel    AssessmentType = "EINZEL"
	AssessmentSplitting AssessmentType = "SPLITTING"
)

func (a AssessmentType) Valid() bool {
	return a == AssessmentEinzel || a == AssessmentSplitting
}

type TaxCalculationInput struct {
	TaxableIncome  float64        `json:"taxableIncome"`
	AssessmentType AssessmentType `json:"assessmentType"`
	ChurchTax      bool           `json:"churchTax"`
	ChildrenCount  int            `json:"childrenCount"`
	Bundesland     string         `json:"bundesland,omitempty"` // two-letter state code, e.g. "BY"
	TaxYear        int            `json:"taxYear,omitempty"`    // 0 selects the configured default
}

// TaxCalculationResult holds whole-euro amounts; rates are percentages with one decimal.
type TaxCalculationResult struct {
	TaxableIncome       float64 `json:"taxableIncome"`
	IncomeTax           float64 `json:"incomeTax"`
	SolidaritySurcharge float64 `json:"solidaritySurcharge"`
	ChurchTax           float64 `json:"churchTax"`
	TotalTax            float64 `json:"totalTax"`
	MarginalTaxRate     float64 `json:"marginalTaxRate"`
	EffectiveTaxRate    float64 `json:"effectiveTaxRate"`
	NetIncome           float64 `json:"netIncome"`
	ChildAllowanceUsed  bool    `json:"childAllowanceUsed"`
}
