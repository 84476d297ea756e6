package service

import "math"

// MonthlyAnnuity returns the constant monthly instalment of an annuity loan
// whose first-year repayment is repaymentRate percent of the loan.
func MonthlyAnnuity(loanAmount, interestRate, repaymentRate float64) float64 {
	if loanAmount <= 0 {
		return 0
	}
	return roundTo2Decimals(loanAmount * (interestRate + repaymentRate) / 100 / 12)
}

// MonthsToPayoff returns how many monthly instalments of payment clear the loan.
// It returns -1 if the payment never covers the monthly interest.
func MonthsToPayoff(loanAmount, interestRate, payment float64) int {
	if loanAmount <= 0 {
		return 0
	}
	if payment <= 0 {
		return -1
	}
	if interestRate == 0 {
		return int(math.Ceil(loanAmount / payment))
	}

	monthlyRate := (interestRate / 100) / 12
	if payment <= loanAmount*monthlyRate {
		return -1
	}
	n := -math.Log(1-monthlyRate*loanAmount/payment) / math.Log(1+monthlyRate)
	return int(math.Ceil(n - 1e-9))
}
