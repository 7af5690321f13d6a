package service

// ExistingLoan is one of the applicant's current obligations.
type ExistingLoan struct {
	Type       string
	Amount     float64
	MonthlyEmi float64
}

// ApplicantProfile is the validated financial profile for a single
// assessment request. It lives only for the duration of that request.
type ApplicantProfile struct {
	MonthlyIncome            float64
	EmploymentType           string
	EmploymentDurationMonths int
	ExistingLoans            []ExistingLoan
	CreditScore              *int
	LoanAmountRequested      float64
	LoanPurpose              string
}

// EligibilityResult is the assessment outcome before the orchestrator merges
// in the locally derived debt-to-income ratio and timestamp.
type EligibilityResult struct {
	EligibilityScore  int
	RecommendedAmount float64
	RiskLevel         string
	Suggestions       []string
	SuitableProducts  []string
	Reasoning         string
}

// TotalExistingEmi sums the monthly EMIs of all existing loans.
func TotalExistingEmi(p ApplicantProfile) float64 {
	var total float64
	for _, loan := range p.ExistingLoans {
		total += loan.MonthlyEmi
	}
	return total
}

// DebtToIncomeRatio is the share of monthly income consumed by existing EMIs,
// as a percentage. Income is validated positive upstream; a non-positive
// income yields 0 rather than a division by zero.
func DebtToIncomeRatio(p ApplicantProfile) float64 {
	if p.MonthlyIncome <= 0 {
		return 0
	}
	return TotalExistingEmi(p) / p.MonthlyIncome * 100
}

// CalculateEligibility is the deterministic rule-based assessment. It is the
// baseline when the AI provider returns output that cannot be decoded, and it
// is pure: same profile in, same result out.
func CalculateEligibility(p ApplicantProfile) EligibilityResult {
	availableIncome := p.MonthlyIncome - TotalExistingEmi(p)
	maxEmi := availableIncome * AffordableIncomeShare
	recommended := maxEmi * float64(AssumedTenureMonths)
	if recommended > p.LoanAmountRequested {
		recommended = p.LoanAmountRequested
	}
	if recommended < 0 {
		recommended = 0
	}

	score := BaseScore
	switch p.EmploymentType {
	case EmploymentSalaried:
		score += SalariedBonus
	case EmploymentSelfEmployed:
		score += SelfEmployedBonus
	}

	if p.EmploymentDurationMonths >= LongTenureMonths {
		score += LongTenureBonus
	} else if p.EmploymentDurationMonths >= MidTenureMonths {
		score += MidTenureBonus
	}

	if p.CreditScore != nil {
		switch {
		case *p.CreditScore >= HighCreditScore:
			score += HighCreditBonus
		case *p.CreditScore >= GoodCreditScore:
			score += GoodCreditBonus
		case *p.CreditScore < LowCreditScore:
			score -= LowCreditPenalty
		}
	}

	score = ClampScore(score)

	return EligibilityResult{
		EligibilityScore:  score,
		RecommendedAmount: recommended,
		RiskLevel:         riskLevelFor(score),
		Suggestions: []string{
			"Maintain regular income",
			"Improve credit score",
			"Reduce existing debt",
		},
		SuitableProducts: []string{"Personal Loan", "Business Loan"},
		Reasoning:        "Basic rule-based assessment completed",
	}
}

// ClampScore bounds an eligibility score to [0,100].
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func riskLevelFor(score int) string {
	switch {
	case score >= LowRiskThreshold:
		return RiskLow
	case score >= MediumRiskThreshold:
		return RiskMedium
	default:
		return RiskHigh
	}
}
