package service

const (
	EmploymentSalaried     = "salaried"
	EmploymentSelfEmployed = "self_employed"

	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"

	// Rule-based scoring parameters.
	BaseScore               = 50
	SalariedBonus           = 20
	SelfEmployedBonus       = 10
	LongTenureBonus         = 15 // employment >= 24 months
	MidTenureBonus          = 10 // employment >= 12 months
	LongTenureMonths        = 24
	MidTenureMonths         = 12
	HighCreditBonus         = 15 // credit score >= 750
	GoodCreditBonus         = 10 // credit score >= 650
	LowCreditPenalty        = 20 // credit score < 600
	HighCreditScore         = 750
	GoodCreditScore         = 650
	LowCreditScore          = 600
	LowRiskThreshold        = 70
	MediumRiskThreshold     = 50
	AffordableIncomeShare   = 0.6 // share of free income that can service an EMI
	AssumedTenureMonths     = 60  // flat 5-year repayment assumption
	MinCreditScore          = 300
	MaxCreditScore          = 900
)
