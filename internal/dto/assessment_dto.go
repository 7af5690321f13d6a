package dto

// ExistingLoanDTO mirrors one entry of the applicant's existing obligations.
type ExistingLoanDTO struct {
	Type       string  `json:"type"`
	Amount     float64 `json:"amount" validate:"gte=0"`
	MonthlyEmi float64 `json:"monthlyEmi" validate:"gte=0"`
}

type AssessmentRequest struct {
	MonthlyIncome            float64           `json:"monthlyIncome" validate:"required,gt=0"`
	EmploymentType           string            `json:"employmentType" validate:"required"`
	EmploymentDurationMonths int               `json:"employmentDurationMonths" validate:"gte=0"`
	ExistingLoans            []ExistingLoanDTO `json:"existingLoans" validate:"dive"`
	CreditScore              *int              `json:"creditScore" validate:"omitempty,gte=300,lte=900"`
	LoanAmountRequested      float64           `json:"loanAmountRequested" validate:"required,gt=0"`
	LoanPurpose              string            `json:"loanPurpose"`
}

type AssessmentResponse struct {
	AssessmentID      *string  `json:"assessmentId"`
	EligibilityScore  int      `json:"eligibilityScore"`
	RecommendedAmount float64  `json:"recommendedAmount"`
	RiskLevel         string   `json:"riskLevel"`
	DebtToIncomeRatio float64  `json:"debtToIncomeRatio"`
	Suggestions       []string `json:"suggestions"`
	SuitableProducts  []string `json:"suitableProducts"`
	Reasoning         string   `json:"reasoning"`
}

type AssessmentHistoryItemDTO struct {
	ID                  string  `json:"id"`
	LoanAmountRequested float64 `json:"loanAmountRequested"`
	LoanPurpose         string  `json:"loanPurpose"`
	EligibilityScore    int     `json:"eligibilityScore"`
	RecommendedAmount   float64 `json:"recommendedAmount"`
	RiskLevel           string  `json:"riskLevel"`
	DebtToIncomeRatio   float64 `json:"debtToIncomeRatio"`
	CalculatedAt        string  `json:"calculatedAt"`
}
