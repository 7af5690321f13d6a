package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LoanAssessment is one append-only assessment record: the raw applicant
// profile alongside the final computed result.
type LoanAssessment struct {
	ID                       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID                   string    `gorm:"type:varchar(64);index" json:"user_id"`
	MonthlyIncome            float64   `gorm:"type:numeric" json:"monthly_income"`
	EmploymentType           string    `gorm:"type:varchar(50)" json:"employment_type"`
	EmploymentDurationMonths int       `json:"employment_duration_months"`
	ExistingLoans            string    `gorm:"type:jsonb" json:"existing_loans"`
	CreditScore              *int      `json:"credit_score"`
	LoanAmountRequested      float64   `gorm:"type:numeric" json:"loan_amount_requested"`
	LoanPurpose              string    `gorm:"type:text" json:"loan_purpose"`
	EligibilityScore         int       `json:"eligibility_score"`
	RecommendedAmount        float64   `gorm:"type:numeric" json:"recommended_amount"`
	RiskLevel                string    `gorm:"type:varchar(10)" json:"risk_level"`
	DebtToIncomeRatio        float64   `gorm:"type:numeric" json:"debt_to_income_ratio"`
	AssessmentResult         string    `gorm:"type:jsonb" json:"assessment_result"`
	CalculatedAt             time.Time `json:"calculated_at"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}

func (a *LoanAssessment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
