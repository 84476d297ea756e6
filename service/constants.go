package service

const (
	MaxTaxableIncome = 1_000_000_000.0 // 1 Mrd. EUR
	MaxChildren      = 20

	MaxPurchasePrice = 100_000_000.0
	MaxRepaymentRate = 10.0 // % p.a.
	MaxGrowthRate    = 20.0 // % p.a.
	ProjectionYears  = 40
	FallbackInterest = 4.5 // % p.a. when the rate table has no entry

	MinLTVBracket = 60
	MaxLTVBracket = 100

	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

// Tax parameter codes as stored in the tax_parameters table.
const (
	ParamAfaLinear = "AFA_LINEAR"
	ParamAfa7i     = "AFA_7I"
	ParamAfa7h     = "AFA_7H"
	ParamAfa7b     = "AFA_7B"
)

var allowedTermYears = map[int]bool{5: true, 10: true, 15: true, 20: true, 25: true, 30: true}
